package arch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Digest returns the sha256 hex digest of the architecture's RFC 8785
// canonical JSON form. Two descriptions that differ only in key order or
// whitespace share a digest.
func (a *Architecture) Digest() (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
