// Package tree implements the structural document model for wiki pages.
//
// A page is a tree of tagged nodes mirroring its canonical XML form. Text
// interleaves with child elements through the text and tail slots, so the
// concatenation of all text and tail content in document order reproduces
// the page text exactly. Trees are produced by format parsers through the
// Builder, repaired by the Normalizer when the source is untrusted,
// transformed in place by the operations in this package, and consumed by
// dumpers through the Visitor protocol.
package tree

// Node is a single element of a parse tree.
//
// Text holds content before the first child, Tail holds content after the
// node's own close, up to the next sibling. The tail belongs to the scope
// of the parent node, not to the node itself.
type Node struct {
	Tag      Tag
	Attrs    Attrs
	Text     string
	Tail     string
	Children []*Node
}

// NewNode returns a node with the given tag and attributes.
func NewNode(tag Tag, attrs Attrs) *Node {
	return &Node{Tag: tag, Attrs: attrs}
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// LastChild returns the last child of n, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Remove deletes the first occurrence of child from n's children and
// reports whether it was found. The child's tail is discarded with it.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Insert places child at index i among n's children.
func (n *Node) Insert(i int, child *Node) {
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// Walk calls fn for n and every descendant in document order. Traversal
// stops early when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of n and its subtree, sharing no nodes or
// attribute storage with the original.
func (n *Node) Copy() *Node {
	out := &Node{
		Tag:   n.Tag,
		Attrs: n.Attrs.Copy(),
		Text:  n.Text,
		Tail:  n.Tail,
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Copy()
		}
	}
	return out
}

// Tree is a complete parse tree rooted at a zim-tree element.
type Tree struct {
	Root *Node
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{Root: NewNode(TagRoot, nil)}
}

// HasContent reports whether the tree contains any content at all.
func (t *Tree) HasContent() bool {
	return len(t.Root.Children) > 0 || t.Root.Text != ""
}

// IsPartial reports whether this tree is a fragment of a page, such as a
// paste buffer, rather than a complete page.
func (t *Tree) IsPartial() bool {
	return t.Root.Attrs.Bool(AttrPartial)
}

// IsRaw reports whether this tree is an editor-state dump that does not
// yet satisfy the structural invariants.
func (t *Tree) IsRaw() bool {
	return t.Root.Attrs.Bool(AttrRaw)
}

// Walk calls fn for every node in document order, root included.
// Traversal stops early when fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.Root.Walk(fn)
}

// Copy returns a deep copy sharing no nodes with the original.
func (t *Tree) Copy() *Tree {
	return &Tree{Root: t.Root.Copy()}
}

// String returns the XML serialization of the tree.
func (t *Tree) String() string {
	return t.ToXML()
}
