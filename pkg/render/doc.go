// Package render groups the output stages of lzdraw.
//
//   - [layout]: places the management account, the three OU lanes and the
//     identity flow on a page and returns a [diagram.Document]
//   - [styles]: named palettes ("lzdw", "aws")
//   - [drawio]: mxfile XML that opens in diagrams.net
//   - [preview]: Graphviz SVG of the organization tree
//   - [terraform]: aws_organizations skeleton from the same architecture
//
// Every renderer is a pure function of its input; none of them does I/O.
//
// [layout]: github.com/lzdw/lzdraw/pkg/render/layout
// [styles]: github.com/lzdw/lzdraw/pkg/render/styles
// [drawio]: github.com/lzdw/lzdraw/pkg/render/drawio
// [preview]: github.com/lzdw/lzdraw/pkg/render/preview
// [terraform]: github.com/lzdw/lzdraw/pkg/render/terraform
// [diagram.Document]: github.com/lzdw/lzdraw/pkg/diagram#Document
package render
