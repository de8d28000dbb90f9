package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/buildinfo"
	"github.com/lzdw/lzdraw/pkg/diagram"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/render/drawio"
	"github.com/lzdw/lzdraw/pkg/render/preview"
	"github.com/lzdw/lzdraw/pkg/render/terraform"
)

// renderFormat is the renderer renderAll fans out to.
var renderFormat = RenderFormat

// safeRender runs renderFormat, turning a panic into an INTERNAL error so a
// failing renderer cannot take down the process from its goroutine.
func safeRender(ctx context.Context, format string, a *arch.Architecture, doc *diagram.Document, opts Options) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, errors.New(errors.ErrCodeInternal, "render %s panicked: %v", format, r)
		}
	}()
	return renderFormat(ctx, format, a, doc, opts)
}

// renderAll renders every format in opts concurrently. The document and
// architecture are only read.
func renderAll(ctx context.Context, a *arch.Architecture, doc *diagram.Document, opts Options) (map[string][]byte, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := safeRender(gctx, format, a, doc, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat produces one artifact. doc must be the layout of a.
func RenderFormat(ctx context.Context, format string, a *arch.Architecture, doc *diagram.Document, opts Options) ([]byte, error) {
	switch format {
	case FormatDrawio:
		return drawio.Encode(doc, drawio.WithAgent(buildinfo.UserAgent()), drawio.WithBackground(opts.theme().Palette().Background))
	case FormatJSON:
		return diagram.MarshalDocument(doc)
	case FormatSVG:
		dot, err := preview.ToDOT(a, opts.theme(), preview.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, err
		}
		return preview.RenderSVG(ctx, dot)
	case FormatTerraform:
		files, err := terraform.Generate(a)
		if err != nil {
			return nil, err
		}
		return terraform.Bundle(files), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

// ContentType returns the media type of a rendered format.
func ContentType(format string) string {
	switch format {
	case FormatDrawio:
		return drawio.MediaType
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatTerraform:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatTerraform:
		return ".tf"
	default:
		return "." + format
	}
}
