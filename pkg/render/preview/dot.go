package preview

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/render/styles"
)

// Options configures preview generation.
type Options struct {
	// Detailed adds account emails and purposes to node labels.
	// When false, only names are shown.
	Detailed bool
}

// ToDOT converts an architecture to Graphviz DOT source: the management
// account at the top, one node per OU below it, and each OU's accounts below
// that. All three OUs are always present.
func ToDOT(a *arch.Architecture, theme styles.Theme, opts Options) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if theme == nil {
		theme = styles.Default()
	}
	p := theme.Palette()
	client := a.Client()
	m := a.Management()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%s, color=%s, fontcolor=%s, fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n",
		quote(p.Surface), quote(p.Accent), quote(p.Ink))
	fmt.Fprintf(&buf, "  edge [color=%s, arrowhead=normal];\n", quote(p.Ink))
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%s, fontcolor=%s, penwidth=2];\n",
		quote("management"), quote(client+"\n"+m.Name+"\n"+m.Email), quote(p.AccentLight), quote(p.Accent))

	for _, c := range arch.Categories() {
		ou := "ou-" + c.Slug()
		fmt.Fprintf(&buf, "  %s [label=%s, style=\"rounded,dashed\", fontcolor=%s, penwidth=2];\n",
			quote(ou), quote(c.Label(client)), quote(p.Accent))
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote("management"), quote(ou))

		for i, acc := range a.AccountStructure.OU(c) {
			id := fmt.Sprintf("%s-%d", ou, i+1)
			fmt.Fprintf(&buf, "  %s [label=%s];\n", quote(id), quote(accountLabel(c, i, acc, opts.Detailed)))
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(ou), quote(id))
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func accountLabel(c arch.Category, i int, acc arch.Account, detailed bool) string {
	label := arch.AccountName(c, i, acc)
	if !detailed {
		return label
	}
	for _, extra := range []string{acc.Email, acc.Purpose} {
		if extra = strings.TrimSpace(extra); extra != "" {
			label += "\n" + extra
		}
	}
	return label
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// quote returns s as a DOT double-quoted string. Unlike %q it leaves
// non-ASCII text intact, which Graphviz reads as UTF-8.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz runtime.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render preview")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based root element with a
// unitless one so browsers scale the preview to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
