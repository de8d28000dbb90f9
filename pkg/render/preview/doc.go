// Package preview renders a quick node-link picture of an architecture.
//
// # Overview
//
// The draw.io document is the deliverable of a workshop; the preview is what
// the CLI and the HTTP API show before anyone opens an editor. It draws the
// organization tree (management account, the three OUs, their accounts)
// with Graphviz, colored by the selected theme.
//
// # Usage
//
//	dot, err := preview.ToDOT(architecture, styles.Default(), preview.Options{})
//	svg, err := preview.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The [ToDOT] output is plain Graphviz source with top-to-bottom layout. It
// can be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz as
// WebAssembly in-process. No system Graphviz install is required.
package preview
