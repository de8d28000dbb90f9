// Package pkg holds the libraries behind lzdraw, the AWS landing zone
// diagram generator.
//
// # Overview
//
// lzdraw turns Landing Zone Design Workshop output into an editable draw.io
// diagram of the AWS organization. The data flow is:
//
//	questionnaire text
//	         ↓
//	    [extract] (language model → Architecture JSON)
//	         ↓
//	    [arch] (schema validation, legacy normalization, digest)
//	         ↓
//	    [render/layout] (absolute geometry → [diagram] Document)
//	         ↓
//	    [render/drawio], [render/preview], [render/terraform]
//
// [pipeline] runs these stages with caching and is shared by the CLI, the
// HTTP API and the Lambda handler.
//
// # Quick Start
//
//	a, err := arch.Load("acme.json")
//	if err != nil {
//	    return err
//	}
//	doc, err := layout.Render(a, layout.WithTheme(styles.Default()))
//	if err != nil {
//	    return err
//	}
//	xml, err := drawio.Encode(doc)
//
// # Main Packages
//
// [arch] - The Architecture Description: types, embedded JSON Schema,
// YAML input and the canonical SHA-256 digest.
//
// [diagram] - The format-neutral diagram document: cells with parents,
// geometry, styles and edges.
//
// [render/layout] - The lane layout engine. [render/styles] holds the
// palettes, [render/drawio] writes mxfile XML, [render/preview] draws an SVG
// overview through Graphviz and [render/terraform] emits an AWS
// Organizations skeleton.
//
// [extract] - Completion-API clients (Groq and OpenAI over HTTP, Gemini
// through its SDK) built on [httputil].
//
// [cache] - File, Redis and no-op caches keyed by [cache.Keyer].
//
// [store] - The workshop archive behind the HTTP API (memory, file and
// MongoDB backends).
//
// [api] - The chi HTTP server.
//
// [config], [errors], [observability] and [buildinfo] are the shared plumbing.
//
// [arch]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/arch
// [diagram]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/diagram
// [extract]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/extract
// [httputil]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/httputil
// [pipeline]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/cache
// [cache.Keyer]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/cache#Keyer
// [store]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/store
// [api]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/api
// [config]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/config
// [errors]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/errors
// [observability]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/buildinfo
// [render/layout]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/render/layout
// [render/styles]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/render/styles
// [render/drawio]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/render/drawio
// [render/preview]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/render/preview
// [render/terraform]: https://pkg.go.dev/github.com/lzdw/lzdraw/pkg/render/terraform
package pkg
