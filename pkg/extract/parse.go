package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/errors"
)

// rawExcerpt is how much of an unparseable reply is kept in the error.
const rawExcerpt = 500

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")

// Clean trims the reply and removes markdown code fences.
func Clean(content string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(content), ""))
}

// Parse decodes a model reply into a validated architecture. Any failure is
// an UPSTREAM_FAILURE carrying the start of the cleaned reply. A non-empty
// clientName fills a missing client_name.
func Parse(content, clientName string) (*Result, error) {
	cleaned := Clean(content)
	if cleaned == "" {
		return nil, errors.New(errors.ErrCodeUpstream, "completion returned no content")
	}

	a, err := arch.Decode([]byte(cleaned))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "failed to parse architecture response (raw: %s)", excerpt(cleaned))
	}
	if strings.TrimSpace(a.ClientName) == "" {
		a.ClientName = strings.TrimSpace(clientName)
	}
	return &Result{Architecture: a, Raw: []byte(cleaned)}, nil
}

// excerpt returns at most rawExcerpt bytes of s without splitting a rune.
func excerpt(s string) string {
	if len(s) <= rawExcerpt {
		return s
	}
	cut := rawExcerpt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
