// Package diagram provides the in-memory Graph Document produced by the
// layout generator.
//
// A [Document] is a flat, ordered list of positioned [Node] values and
// [Edge] connectors. Containment is expressed through Node.Parent and every
// Geometry is relative to its parent, matching how draw.io interprets
// mxGeometry. Encoders (draw.io XML, JSON, previews) only ever read a
// Document; nothing in this package knows about any particular output
// format.
//
// Documents are built once per render and treated as immutable afterwards,
// so a single Document may be encoded to several formats concurrently.
package diagram

// Kind classifies a node for encoders that do not understand styles.
type Kind string

const (
	KindContainer Kind = "container"
	KindBox       Kind = "box"
	KindIcon      Kind = "icon"
)

// Role names what a node or edge represents. Roles double as id prefixes.
type Role string

const (
	RoleCloud          Role = "cloud"
	RoleActor          Role = "actor"
	RolePermissionSet  Role = "permission-set"
	RoleDirectory      Role = "directory"
	RoleManagement     Role = "management"
	RoleControlTower   Role = "control-tower"
	RoleIdentityCenter Role = "identity-center"
	RoleLane           Role = "ou"
	RoleAccount        Role = "account"
	RoleAccountIcon    Role = "account-icon"

	RoleEdge Role = "edge"
)

// Geometry is an axis-aligned box relative to the parent's top-left corner.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns X + Width.
func (g Geometry) Right() int { return g.X + g.Width }

// Bottom returns Y + Height.
func (g Geometry) Bottom() int { return g.Y + g.Height }

// Overlaps reports whether g and o share interior area. Touching edges do
// not count as overlap.
func (g Geometry) Overlaps(o Geometry) bool {
	return g.X < o.Right() && o.X < g.Right() && g.Y < o.Bottom() && o.Y < g.Bottom()
}

// Contains reports whether child, expressed in g's coordinate space, lies
// entirely within g.
func (g Geometry) Contains(child Geometry) bool {
	return child.X >= 0 && child.Y >= 0 && child.Right() <= g.Width && child.Bottom() <= g.Height
}

// Offset returns g translated by (dx, dy).
func (g Geometry) Offset(dx, dy int) Geometry {
	g.X += dx
	g.Y += dy
	return g
}

// Point is a routing waypoint in the edge parent's coordinate space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is a vertex: a container, a box, an icon, or a free-standing label.
type Node struct {
	ID       string   `json:"id"`
	Parent   string   `json:"parent,omitempty"`
	Kind     Kind     `json:"kind"`
	Role     Role     `json:"role"`
	Label    string   `json:"label,omitempty"`
	Tooltip  string   `json:"tooltip,omitempty"`
	Geometry Geometry `json:"geometry"`
	Style    Style    `json:"style"`
}

// Edge is a directed connector between two nodes.
type Edge struct {
	ID        string  `json:"id"`
	Parent    string  `json:"parent,omitempty"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Label     string  `json:"label,omitempty"`
	Style     Style   `json:"style"`
	Waypoints []Point `json:"waypoints,omitempty"`
}

// Document is a complete Graph Document.
type Document struct {
	Name       string `json:"name"`
	PageWidth  int    `json:"pageWidth"`
	PageHeight int    `json:"pageHeight"`
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Children returns the direct children of parent in document order.
// Pass "" for top-level nodes.
func (d *Document) Children(parent string) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Parent == parent {
			out = append(out, n)
		}
	}
	return out
}

// NodesByRole returns every node with the given role in document order.
func (d *Document) NodesByRole(role Role) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Role == role {
			out = append(out, n)
		}
	}
	return out
}

// Absolute returns the node's geometry in page coordinates.
func (d *Document) Absolute(id string) (Geometry, bool) {
	n, ok := d.Node(id)
	if !ok {
		return Geometry{}, false
	}
	g := n.Geometry
	seen := map[string]bool{id: true}
	for p := n.Parent; p != ""; {
		if seen[p] {
			return Geometry{}, false
		}
		seen[p] = true
		parent, ok := d.Node(p)
		if !ok {
			return Geometry{}, false
		}
		g = g.Offset(parent.Geometry.X, parent.Geometry.Y)
		p = parent.Parent
	}
	return g, true
}

// Bounds returns the page-space bounding box of every node.
func (d *Document) Bounds() Geometry {
	var b Geometry
	first := true
	for _, n := range d.Nodes {
		g, ok := d.Absolute(n.ID)
		if !ok {
			continue
		}
		if first {
			b = g
			first = false
			continue
		}
		right, bottom := max(b.Right(), g.Right()), max(b.Bottom(), g.Bottom())
		b.X, b.Y = min(b.X, g.X), min(b.Y, g.Y)
		b.Width, b.Height = right-b.X, bottom-b.Y
	}
	return b
}
