// Package layout turns an Architecture Description into a positioned Graph
// Document.
//
// [Render] is a pure function: it performs no I/O, holds no shared state,
// and returns byte-for-byte identical documents for identical input, so it
// is safe to call concurrently. Every call allocates its own
// [diagram.Builder], which in turn owns the id allocator.
//
// # Structure
//
// The document always contains, in order:
//
//   - one cloud container holding everything but the actors
//   - the external actors, left of the cloud
//   - the permission sets and the optional directory, in the cloud's left column
//   - one management-account box with control-tower and identity-center icons
//   - exactly three OU lanes (Security, Workload, Networking) inside the
//     management box, each holding its accounts top to bottom
//
// Lane height is Config.LaneBase() plus one Config.AccountStep() per account;
// adding an account to one lane never moves anything in another lane.
package layout

import (
	"strconv"
	"strings"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/diagram"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/render/styles"
)

// DocumentName is the diagram page name.
const DocumentName = "AWS Landing Zone Architecture"

const (
	cloudLabel          = "AWS Cloud"
	controlTowerLabel   = "Control Tower"
	identityCenterLabel = "Identity Center"
)

var lanesInOrder = arch.Categories()

// Option configures a Render call.
type Option func(*options)

type options struct {
	theme  styles.Theme
	config Config
}

// WithTheme sets the theme. A nil theme selects styles.Default().
func WithTheme(t styles.Theme) Option {
	return func(o *options) {
		if t != nil {
			o.theme = t
		}
	}
}

// WithConfig replaces the spacing configuration.
func WithConfig(c Config) Option {
	return func(o *options) { o.config = c }
}

// Render lays out the architecture. It fails with INVALID_INPUT when a is
// nil or has no account structure, and with INVALID_CONFIG when the layout
// configuration is inconsistent.
func Render(a *arch.Architecture, opts ...Option) (*diagram.Document, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	o := options{theme: styles.Default(), config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	r := &renderer{
		cfg:   o.config,
		theme: o.theme,
		arch:  a,
		b:     diagram.NewBuilder(DocumentName),
	}
	doc := r.render()
	if err := doc.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout produced an inconsistent document")
	}
	return doc, nil
}

type renderer struct {
	cfg   Config
	theme styles.Theme
	arch  *arch.Architecture
	b     *diagram.Builder

	cloud, mgmt, identity string
	actors, permSets      []string
	directory             string
}

func (r *renderer) render() *diagram.Document {
	c := r.cfg
	structure := r.arch.AccountStructure

	rowHeight := c.LaneHeight(structure.MaxAccounts())
	mgmtW := c.ManagementWidth()
	mgmtH := c.ManagementBandHeight + rowHeight + c.ManagementPaddingBottom
	mgmtX := c.CloudPadding + c.PermSetWidth + c.ColumnGap
	leftTop := c.HeaderHeight + c.GovernanceIconY

	cloudW := mgmtX + mgmtW + c.CloudPadding
	cloudH := c.HeaderHeight + max(mgmtH, leftTop-c.HeaderHeight+r.leftColumnHeight()) + c.CloudPadding

	r.cloud = r.b.AddNode(diagram.Node{
		Kind:     diagram.KindContainer,
		Role:     diagram.RoleCloud,
		Label:    cloudLabel,
		Tooltip:  r.workshopTooltip(),
		Geometry: diagram.Geometry{X: c.Margin + c.ActorColumnWidth, Y: c.Margin, Width: cloudW, Height: cloudH},
		Style:    r.theme.Node(diagram.RoleCloud),
	})

	r.placeActors(c.Margin + leftTop)
	r.placeLeftColumn(leftTop)
	r.placeManagement(diagram.Geometry{X: mgmtX, Y: c.HeaderHeight, Width: mgmtW, Height: mgmtH})
	lanes := r.placeLanes()

	r.connectIdentity()
	r.connectLanes(lanes, mgmtW, mgmtH)

	return r.b.Document(c.Margin)
}

func (r *renderer) workshopTooltip() string {
	if d := strings.TrimSpace(r.arch.WorkshopDate); d != "" {
		return "Workshop date: " + d
	}
	return ""
}

// leftColumnHeight is the height of the permission sets plus the directory.
func (r *renderer) leftColumnHeight() int {
	c := r.cfg
	h := 0
	for i := range c.PermissionSets {
		if i > 0 {
			h += c.PermSetSpacing
		}
		h += c.PermSetHeight
	}
	if c.Directory != "" {
		if h > 0 {
			h += c.PermSetSpacing
		}
		h += c.ActorSize + c.DirectoryLabelRoom
	}
	return h
}

func (r *renderer) placeActors(top int) {
	c := r.cfg
	x := c.Margin + (c.ActorColumnWidth-c.ActorSize)/2
	y := top + max(0, (c.PermSetHeight-c.ActorSize)/2)
	for _, a := range c.Actors {
		id := r.b.AddNode(diagram.Node{
			Kind:     diagram.KindIcon,
			Role:     diagram.RoleActor,
			Label:    a.Label,
			Geometry: diagram.Geometry{X: x, Y: y, Width: c.ActorSize, Height: c.ActorSize},
			Style:    r.theme.Node(diagram.RoleActor).With("shape", "mxgraph.aws4."+a.Shape),
		})
		r.actors = append(r.actors, id)
		y += c.ActorSpacing
	}
}

func (r *renderer) placeLeftColumn(top int) {
	c := r.cfg
	y := top
	for i, label := range c.PermissionSets {
		if i > 0 {
			y += c.PermSetSpacing
		}
		id := r.b.AddNode(diagram.Node{
			Parent:   r.cloud,
			Kind:     diagram.KindBox,
			Role:     diagram.RolePermissionSet,
			Label:    label,
			Geometry: diagram.Geometry{X: c.CloudPadding, Y: y, Width: c.PermSetWidth, Height: c.PermSetHeight},
			Style:    r.theme.Node(diagram.RolePermissionSet),
		})
		r.permSets = append(r.permSets, id)
		y += c.PermSetHeight
	}

	if c.Directory == "" {
		return
	}
	if len(c.PermissionSets) > 0 {
		y += c.PermSetSpacing
	}
	r.directory = r.b.AddNode(diagram.Node{
		Parent:   r.cloud,
		Kind:     diagram.KindIcon,
		Role:     diagram.RoleDirectory,
		Label:    c.Directory,
		Geometry: diagram.Geometry{X: c.CloudPadding + (c.PermSetWidth-c.ActorSize)/2, Y: y, Width: c.ActorSize, Height: c.ActorSize},
		Style:    r.theme.Node(diagram.RoleDirectory),
	})
}

func (r *renderer) placeManagement(g diagram.Geometry) {
	c := r.cfg
	m := r.arch.Management()

	r.mgmt = r.b.AddNode(diagram.Node{
		Parent:   r.cloud,
		Kind:     diagram.KindContainer,
		Role:     diagram.RoleManagement,
		Label:    r.arch.Client() + "\n" + m.Name + "\n" + m.Email,
		Tooltip:  strings.TrimSpace(m.Purpose),
		Geometry: g,
		Style:    r.theme.Node(diagram.RoleManagement),
	})

	icon := diagram.Geometry{X: c.GovernanceIconX, Y: c.GovernanceIconY, Width: c.GovernanceIconSize, Height: c.GovernanceIconSize}
	r.b.AddNode(diagram.Node{
		Parent:   r.mgmt,
		Kind:     diagram.KindIcon,
		Role:     diagram.RoleControlTower,
		Label:    controlTowerLabel,
		Geometry: icon,
		Style:    r.theme.Node(diagram.RoleControlTower),
	})
	r.identity = r.b.AddNode(diagram.Node{
		Parent:   r.mgmt,
		Kind:     diagram.KindIcon,
		Role:     diagram.RoleIdentityCenter,
		Label:    identityCenterLabel,
		Geometry: icon.Offset(c.GovernanceIconSpacing, 0),
		Style:    r.theme.Node(diagram.RoleIdentityCenter),
	})
}

type lane struct {
	id       string
	geometry diagram.Geometry
	accounts int
}

func (r *renderer) placeLanes() []lane {
	c := r.cfg
	client := r.arch.Client()
	structure := r.arch.AccountStructure

	lanes := make([]lane, 0, len(lanesInOrder))
	for i, cat := range lanesInOrder {
		accounts := structure.OU(cat)
		g := diagram.Geometry{
			X:      c.LaneInset + i*(c.LaneWidth+c.LaneGutter),
			Y:      c.ManagementBandHeight,
			Width:  c.LaneWidth,
			Height: c.LaneHeight(len(accounts)),
		}
		id := r.b.AddNode(diagram.Node{
			Parent:   r.mgmt,
			Kind:     diagram.KindContainer,
			Role:     diagram.RoleLane,
			Label:    cat.Label(client),
			Geometry: g,
			Style:    r.theme.Node(diagram.RoleLane),
		})
		for j, acc := range accounts {
			r.placeAccount(id, cat, j, acc)
		}
		lanes = append(lanes, lane{id: id, geometry: g, accounts: len(accounts)})
	}
	return lanes
}

func (r *renderer) placeAccount(parent string, cat arch.Category, i int, acc arch.Account) {
	c := r.cfg
	id := r.b.AddNode(diagram.Node{
		Parent:  parent,
		Kind:    diagram.KindBox,
		Role:    diagram.RoleAccount,
		Label:   arch.AccountName(cat, i, acc),
		Tooltip: accountTooltip(acc),
		Geometry: diagram.Geometry{
			X:      c.AccountInset,
			Y:      c.LaneHeaderHeight + i*c.AccountStep(),
			Width:  c.LaneWidth - 2*c.AccountInset,
			Height: c.AccountHeight,
		},
		Style: r.theme.Node(diagram.RoleAccount),
	})
	r.b.AddNode(diagram.Node{
		Parent: id,
		Kind:   diagram.KindIcon,
		Role:   diagram.RoleAccountIcon,
		Geometry: diagram.Geometry{
			X:      c.AccountIconInset,
			Y:      (c.AccountHeight - c.AccountIconSize) / 2,
			Width:  c.AccountIconSize,
			Height: c.AccountIconSize,
		},
		Style: r.theme.Node(diagram.RoleAccountIcon),
	})
}

func accountTooltip(acc arch.Account) string {
	var parts []string
	for _, s := range []string{acc.Email, acc.Purpose} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// connectIdentity emits the fixed provisioning flow: actors to identity
// center, identity center to each permission set, each permission set to
// the management account, and identity center to the directory.
func (r *renderer) connectIdentity() {
	solid := r.theme.Edge(false)
	for _, a := range r.actors {
		r.b.AddEdge(diagram.Edge{Source: a, Target: r.identity, Style: solid})
	}
	for _, ps := range r.permSets {
		r.b.AddEdge(diagram.Edge{Parent: r.cloud, Source: r.identity, Target: ps, Style: solid})
	}
	for _, ps := range r.permSets {
		r.b.AddEdge(diagram.Edge{Parent: r.cloud, Source: ps, Target: r.mgmt, Style: solid})
	}
	if r.directory != "" {
		r.b.AddEdge(diagram.Edge{Parent: r.cloud, Source: r.identity, Target: r.directory, Style: r.theme.Edge(true)})
	}
}

// connectLanes draws one edge per non-empty lane. Each leaves the management
// box at a hub point just above the lanes, runs horizontally to the lane's
// center line, then drops into the lane's top edge.
func (r *renderer) connectLanes(lanes []lane, mgmtW, mgmtH int) {
	hubY := r.cfg.ManagementBandHeight - r.cfg.HubOffset
	style := r.theme.Edge(false).Merge(diagram.NewStyle(
		"exitX", "0.5",
		"exitY", ratio(hubY, mgmtH),
		"exitDx", "0",
		"exitDy", "0",
		"exitPerimeter", "0",
		"entryX", "0.5",
		"entryY", "0",
		"entryDx", "0",
		"entryDy", "0",
	))
	for _, l := range lanes {
		if l.accounts == 0 {
			continue
		}
		r.b.AddEdge(diagram.Edge{
			Parent:    r.mgmt,
			Source:    r.mgmt,
			Target:    l.id,
			Style:     style,
			Waypoints: []diagram.Point{{X: l.geometry.X + l.geometry.Width/2, Y: hubY}},
		})
	}
}

func ratio(n, d int) string {
	return strconv.FormatFloat(float64(n)/float64(d), 'f', 4, 64)
}
