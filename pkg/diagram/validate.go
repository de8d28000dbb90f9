package diagram

import (
	"fmt"

	"github.com/lzdw/lzdraw/pkg/errors"
)

// Validate checks the structural invariants every encoder relies on:
//
//   - ids are non-empty and unique across nodes and edges
//   - every node has a known kind
//   - a parent appears before its children
//   - every node has positive size and non-negative coordinates
//   - children lie inside their parent
//   - siblings do not overlap
//   - edges reference existing nodes and an existing parent
//   - the page covers every node
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInternal, "nil document")
	}

	seen := make(map[string]Node, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return invalid("node with empty id")
		}
		if _, dup := seen[n.ID]; dup {
			return invalid("duplicate id %q", n.ID)
		}
		switch n.Kind {
		case KindContainer, KindBox, KindIcon:
		default:
			return invalid("node %q has unknown kind %q", n.ID, n.Kind)
		}
		g := n.Geometry
		if g.Width <= 0 || g.Height <= 0 {
			return invalid("node %q has non-positive size %dx%d", n.ID, g.Width, g.Height)
		}
		if g.X < 0 || g.Y < 0 {
			return invalid("node %q has negative position (%d,%d)", n.ID, g.X, g.Y)
		}
		if n.Parent != "" {
			parent, ok := seen[n.Parent]
			if !ok {
				return invalid("node %q references parent %q before it is defined", n.ID, n.Parent)
			}
			if !parent.Geometry.Contains(g) {
				return invalid("node %q is not contained in parent %q", n.ID, n.Parent)
			}
		}
		seen[n.ID] = n
	}

	if err := d.checkSiblings(); err != nil {
		return err
	}

	edgeIDs := make(map[string]bool, len(d.Edges))
	for _, e := range d.Edges {
		if e.ID == "" {
			return invalid("edge with empty id")
		}
		if _, dup := seen[e.ID]; dup || edgeIDs[e.ID] {
			return invalid("duplicate id %q", e.ID)
		}
		edgeIDs[e.ID] = true
		if _, ok := seen[e.Source]; !ok {
			return invalid("edge %q references unknown source %q", e.ID, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return invalid("edge %q references unknown target %q", e.ID, e.Target)
		}
		if e.Parent != "" {
			if _, ok := seen[e.Parent]; !ok {
				return invalid("edge %q references unknown parent %q", e.ID, e.Parent)
			}
		}
		for _, p := range e.Waypoints {
			if p.X < 0 || p.Y < 0 {
				return invalid("edge %q has negative waypoint (%d,%d)", e.ID, p.X, p.Y)
			}
		}
	}

	b := d.Bounds()
	if b.Right() > d.PageWidth || b.Bottom() > d.PageHeight {
		return invalid("page %dx%d does not cover content %dx%d", d.PageWidth, d.PageHeight, b.Right(), b.Bottom())
	}
	return nil
}

func (d *Document) checkSiblings() error {
	byParent := make(map[string][]Node)
	for _, n := range d.Nodes {
		byParent[n.Parent] = append(byParent[n.Parent], n)
	}
	for parent, nodes := range byParent {
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				if nodes[i].Geometry.Overlaps(nodes[j].Geometry) {
					return invalid("siblings %q and %q overlap in %q", nodes[i].ID, nodes[j].ID, parent)
				}
			}
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInternal, "invalid document: %s", fmt.Sprintf(format, args...))
}
