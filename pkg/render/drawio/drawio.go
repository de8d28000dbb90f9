// Package drawio encodes a Graph Document as a draw.io (mxGraph XML) file.
//
// The encoder is a single pass over an already-validated [diagram.Document]:
// every node becomes a vertex mxCell, every edge an edge mxCell, and the
// page size is copied from the document. Nodes carrying a tooltip are
// wrapped in an <object> element, which is how draw.io stores custom
// properties.
//
// All user text passes through [Escape]; the result is always well-formed
// XML regardless of what the architecture contained.
package drawio

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/lzdw/lzdraw/pkg/diagram"
	"github.com/lzdw/lzdraw/pkg/errors"
)

const (
	// MediaType is the Content-Type used when serving .drawio files.
	MediaType = "application/xml; charset=utf-8"
	// DefaultFilename is used when no client name is available.
	DefaultFilename = "aws-landing-zone.drawio"

	defaultHost    = "app.diagrams.net"
	defaultAgent   = "lzdraw"
	defaultVersion = "24.0.0"
	diagramID      = "aws-lz"
	rootLayer      = "1"
)

// Option configures Encode.
type Option func(*encoder)

type encoder struct {
	host       string
	agent      string
	background string
}

// WithHost sets the mxfile host attribute.
func WithHost(host string) Option { return func(e *encoder) { e.host = host } }

// WithAgent sets the mxfile agent attribute.
func WithAgent(agent string) Option { return func(e *encoder) { e.agent = agent } }

// WithBackground sets the page background color.
func WithBackground(color string) Option { return func(e *encoder) { e.background = color } }

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\r\n", "&#xa;",
	"\n", "&#xa;",
	"\r", "&#xa;",
	"\t", "&#x9;",
)

// Escape makes s safe for use inside a double-quoted XML attribute. Newlines
// become &#xa; so draw.io renders them as line breaks, and characters that
// XML 1.0 forbids are dropped.
func Escape(s string) string {
	return escaper.Replace(strings.Map(xmlChar, s))
}

func xmlChar(r rune) rune {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return r
	case r < 0x20, r >= 0xFFFE && r <= 0xFFFF, r >= 0xD800 && r <= 0xDFFF:
		return -1
	}
	return r
}

// Encode renders doc as a complete .drawio file. The document is validated
// first so that a broken document is rejected rather than written.
func Encode(doc *diagram.Document, opts ...Option) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	e := encoder{host: defaultHost, agent: defaultAgent, background: "#FFFFFF"}
	for _, opt := range opts {
		opt(&e)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<mxfile host="%s" agent="%s" version="%s">`+"\n",
		Escape(e.host), Escape(e.agent), defaultVersion)
	fmt.Fprintf(&buf, `  <diagram name="%s" id="%s">`+"\n", Escape(doc.Name), diagramID)
	fmt.Fprintf(&buf, `    <mxGraphModel dx="%d" dy="%d" grid="1" gridSize="10" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="%d" pageHeight="%d" background="%s" math="0" shadow="0">`+"\n",
		doc.PageWidth, doc.PageHeight, doc.PageWidth, doc.PageHeight, Escape(e.background))
	buf.WriteString("      <root>\n")
	buf.WriteString(`        <mxCell id="0"/>` + "\n")
	buf.WriteString(`        <mxCell id="1" parent="0"/>` + "\n")

	for _, n := range doc.Nodes {
		writeNode(&buf, n)
	}
	for _, ed := range doc.Edges {
		writeEdge(&buf, ed)
	}

	buf.WriteString("      </root>\n")
	buf.WriteString("    </mxGraphModel>\n")
	buf.WriteString("  </diagram>\n")
	buf.WriteString("</mxfile>\n")
	return buf.Bytes(), nil
}

func parentOf(id string) string {
	if id == "" {
		return rootLayer
	}
	return id
}

func writeNode(buf *bytes.Buffer, n diagram.Node) {
	g := n.Geometry
	geometry := fmt.Sprintf(`<mxGeometry x="%d" y="%d" width="%d" height="%d" as="geometry"/>`, g.X, g.Y, g.Width, g.Height)

	if n.Tooltip != "" {
		fmt.Fprintf(buf, `        <object label="%s" tooltip="%s" id="%s">`+"\n",
			Escape(n.Label), Escape(n.Tooltip), Escape(n.ID))
		fmt.Fprintf(buf, `          <mxCell style="%s" vertex="1" parent="%s">`+"\n",
			Escape(n.Style.String()), Escape(parentOf(n.Parent)))
		fmt.Fprintf(buf, "            %s\n", geometry)
		buf.WriteString("          </mxCell>\n")
		buf.WriteString("        </object>\n")
		return
	}

	fmt.Fprintf(buf, `        <mxCell id="%s" value="%s" style="%s" vertex="1" parent="%s">`+"\n",
		Escape(n.ID), Escape(n.Label), Escape(n.Style.String()), Escape(parentOf(n.Parent)))
	fmt.Fprintf(buf, "          %s\n", geometry)
	buf.WriteString("        </mxCell>\n")
}

func writeEdge(buf *bytes.Buffer, e diagram.Edge) {
	fmt.Fprintf(buf, `        <mxCell id="%s" value="%s" style="%s" edge="1" parent="%s" source="%s" target="%s">`+"\n",
		Escape(e.ID), Escape(e.Label), Escape(e.Style.String()), Escape(parentOf(e.Parent)), Escape(e.Source), Escape(e.Target))
	if len(e.Waypoints) == 0 {
		buf.WriteString(`          <mxGeometry relative="1" as="geometry"/>` + "\n")
	} else {
		buf.WriteString(`          <mxGeometry relative="1" as="geometry">` + "\n")
		buf.WriteString(`            <Array as="points">` + "\n")
		for _, p := range e.Waypoints {
			fmt.Fprintf(buf, `              <mxPoint x="%d" y="%d"/>`+"\n", p.X, p.Y)
		}
		buf.WriteString("            </Array>\n")
		buf.WriteString("          </mxGeometry>\n")
	}
	buf.WriteString("        </mxCell>\n")
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns the download name for a client's diagram, for example
// "Acme_AWS_Landing_Zone.drawio". Characters unsafe in a Content-Disposition
// header or a file system path collapse to a single underscore.
func Filename(client string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(client), "_"), "_.")
	if name == "" {
		return DefaultFilename
	}
	return name + "_AWS_Landing_Zone.drawio"
}
