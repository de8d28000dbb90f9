// Package styles provides the color palettes and draw.io style descriptors
// used by the layout generator and the preview renderer.
//
// A [Theme] maps every [diagram.Role] to a complete style. Two themes ship
// with lzdraw:
//
//   - "lzdw": the pink workshop palette (default)
//   - "aws": the standard AWS Architecture Icons colors
//
// Look a theme up by name with [Lookup]; use [Default] when none is given.
package styles

import (
	"sort"
	"strconv"

	"github.com/lzdw/lzdraw/pkg/diagram"
)

// Theme defines the visual appearance of a rendered landing zone.
type Theme interface {
	// Name returns the registry name.
	Name() string
	// Palette returns the raw colors, for renderers that do not speak draw.io.
	Palette() Palette
	// Node returns the base style for a node role.
	Node(role diagram.Role) diagram.Style
	// Edge returns the connector style; dashed edges mark optional trust.
	Edge(dashed bool) diagram.Style
}

// Palette is a small fixed set of colors.
type Palette struct {
	Accent      string // borders and headings
	AccentLight string // management and permission-set fill
	Surface     string // lane and account fill
	Ink         string // text, actors and connectors
	Governance  string // control tower and identity center icons
	AccountIcon string
	Background  string
}

const (
	DefaultTheme = "lzdw"
	fontSize     = 11
)

var registry = map[string]Theme{
	"lzdw": paletteTheme{name: "lzdw", p: Palette{
		Accent:      "#D6336C",
		AccentLight: "#F4E1E8",
		Surface:     "#FFFFFF",
		Ink:         "#232F3E",
		Governance:  "#BF0816",
		AccountIcon: "#E7157B",
		Background:  "#FFFFFF",
	}},
	"aws": paletteTheme{name: "aws", p: Palette{
		Accent:      "#CD2264",
		AccentLight: "#F2F3F3",
		Surface:     "#FFFFFF",
		Ink:         "#232F3E",
		Governance:  "#E7157B",
		AccountIcon: "#CD2264",
		Background:  "#FFFFFF",
	}},
}

// Lookup returns the theme registered under name.
func Lookup(name string) (Theme, bool) {
	t, ok := registry[name]
	return t, ok
}

// Default returns the default theme.
func Default() Theme {
	return registry[DefaultTheme]
}

// Names returns the registered theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type paletteTheme struct {
	name string
	p    Palette
}

func (t paletteTheme) Name() string     { return t.name }
func (t paletteTheme) Palette() Palette { return t.p }

// awsGroup is the shared prefix of AWS group containers.
func awsGroup() diagram.Style {
	return diagram.NewStyle(
		"points", "[[0,0],[0.25,0],[0.5,0],[0.75,0],[1,0],[1,0.25],[1,0.5],[1,0.75],[1,1],[0.75,1],[0.5,1],[0.25,1],[0,1],[0,0.75],[0,0.5],[0,0.25]]",
		"outlineConnect", "0",
		"gradientColor", "none",
		"html", "0",
		"whiteSpace", "wrap",
	)
}

// awsIcon is the shared prefix of AWS resource and user icons.
func awsIcon(ink, fill string) diagram.Style {
	return diagram.NewStyle(
		"sketch", "0",
		"outlineConnect", "0",
		"fontColor", ink,
		"gradientColor", "none",
		"fillColor", fill,
		"strokeColor", "none",
		"dashed", "0",
		"verticalLabelPosition", "bottom",
		"verticalAlign", "top",
		"align", "center",
		"html", "0",
		"fontSize", strconv.Itoa(fontSize),
		"aspect", "fixed",
		"pointerEvents", "1",
	)
}

func container(s diagram.Style) diagram.Style {
	return s.Merge(diagram.NewStyle("container", "1", "pointerEvents", "0", "collapsible", "0", "recursiveResize", "0"))
}

// Node labels are plain text (html=0): names from the architecture are
// shown verbatim and newlines break lines.
func (t paletteTheme) Node(role diagram.Role) diagram.Style {
	p := t.p
	switch role {
	case diagram.RoleCloud:
		return container(awsGroup().Merge(diagram.NewStyle(
			"fontSize", "14",
			"fontStyle", "1",
			"shape", "mxgraph.aws4.group",
			"grIcon", "mxgraph.aws4.group_aws_cloud_alt",
			"strokeColor", p.Ink,
			"fillColor", "none",
			"verticalAlign", "top",
			"align", "left",
			"spacingLeft", "30",
			"fontColor", p.Ink,
			"dashed", "1",
		)))
	case diagram.RoleManagement:
		return container(awsGroup().Merge(diagram.NewStyle(
			"fontSize", "13",
			"fontStyle", "1",
			"shape", "mxgraph.aws4.group",
			"grIcon", "mxgraph.aws4.group_account",
			"strokeColor", p.Accent,
			"fillColor", p.AccentLight,
			"verticalAlign", "top",
			"align", "left",
			"spacingLeft", "30",
			"fontColor", p.Accent,
			"dashed", "0",
		)))
	case diagram.RoleLane:
		return container(diagram.NewStyle(
			"rounded", "1",
			"arcSize", "4",
			"whiteSpace", "wrap",
			"html", "0",
			"fillColor", p.Surface,
			"strokeColor", p.Accent,
			"strokeWidth", "2",
			"dashed", "1",
			"dashPattern", "5 5",
			"fontSize", "12",
			"fontStyle", "1",
			"fontColor", p.Accent,
			"verticalAlign", "top",
			"align", "center",
			"spacingTop", "10",
		))
	case diagram.RoleAccount:
		return container(diagram.NewStyle(
			"rounded", "1",
			"whiteSpace", "wrap",
			"html", "0",
			"fillColor", p.Surface,
			"strokeColor", p.Accent,
			"strokeWidth", "1",
			"fontSize", strconv.Itoa(fontSize),
			"fontStyle", "1",
			"fontColor", p.Accent,
			"verticalAlign", "middle",
			"align", "left",
			"spacingLeft", "52",
		))
	case diagram.RoleAccountIcon:
		return awsIcon(p.Ink, p.AccountIcon).With("shape", "mxgraph.aws4.user")
	case diagram.RolePermissionSet:
		return diagram.NewStyle(
			"rounded", "1",
			"whiteSpace", "wrap",
			"html", "0",
			"fillColor", p.AccentLight,
			"strokeColor", p.Accent,
			"fontSize", strconv.Itoa(fontSize),
			"fontStyle", "1",
			"fontColor", p.Accent,
			"verticalAlign", "middle",
			"align", "center",
		)
	case diagram.RoleActor:
		return awsIcon(p.Ink, p.Ink).Merge(diagram.NewStyle("fontStyle", "0", "shape", "mxgraph.aws4.user"))
	case diagram.RoleDirectory:
		return awsIcon(p.Ink, p.Ink).Merge(diagram.NewStyle("fontStyle", "0", "shape", "mxgraph.aws4.traditional_server"))
	case diagram.RoleControlTower:
		return awsIcon(p.Ink, p.Governance).Merge(diagram.NewStyle(
			"fontStyle", "1",
			"shape", "mxgraph.aws4.resourceIcon",
			"resIcon", "mxgraph.aws4.control_tower",
		))
	case diagram.RoleIdentityCenter:
		return awsIcon(p.Ink, p.Governance).Merge(diagram.NewStyle(
			"fontStyle", "1",
			"shape", "mxgraph.aws4.resourceIcon",
			"resIcon", "mxgraph.aws4.identity_and_access_management",
		))
	}
	return diagram.NewStyle(
		"rounded", "0",
		"whiteSpace", "wrap",
		"html", "0",
		"fillColor", p.Surface,
		"strokeColor", p.Ink,
		"fontColor", p.Ink,
	)
}

func (t paletteTheme) Edge(dashed bool) diagram.Style {
	s := diagram.NewStyle(
		"edgeStyle", "orthogonalEdgeStyle",
		"rounded", "0",
		"orthogonalLoop", "1",
		"jettySize", "auto",
		"html", "1",
		"endArrow", "block",
		"endFill", "1",
	)
	if dashed {
		s = s.With("dashed", "1")
	}
	return s.Merge(diagram.NewStyle("strokeColor", t.p.Ink, "strokeWidth", "2"))
}
