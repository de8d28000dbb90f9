package diagram

// Builder accumulates nodes and edges for a single Document and assigns
// their identifiers. Nodes must be added parent-first; edges may be added at
// any time and are emitted after every node.
type Builder struct {
	doc Document
	ids *IDAllocator
}

// NewBuilder returns a builder for a document with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		doc: Document{Name: name},
		ids: NewIDAllocator(),
	}
}

// AddNode appends n, assigning an id from its role, and returns the id.
func (b *Builder) AddNode(n Node) string {
	n.ID = b.ids.Next(n.Role)
	b.doc.Nodes = append(b.doc.Nodes, n)
	return n.ID
}

// AddEdge appends e with a fresh edge id and returns the id.
func (b *Builder) AddEdge(e Edge) string {
	e.ID = b.ids.Next(RoleEdge)
	b.doc.Edges = append(b.doc.Edges, e)
	return e.ID
}

// Document finalizes the page size to cover every node plus margin and
// returns the built document. The builder must not be used afterwards.
func (b *Builder) Document(margin int) *Document {
	bounds := b.doc.Bounds()
	b.doc.PageWidth = bounds.Right() + margin
	b.doc.PageHeight = bounds.Bottom() + margin
	doc := b.doc
	return &doc
}
