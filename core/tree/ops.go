package tree

import (
	"regexp"
	"strconv"
	"strings"
)

// headingElement returns the leading heading of the tree, if the tree
// starts with one at the given level or deeper and no real text precedes
// it.
func (t *Tree) headingElement(level int) *Node {
	root := t.Root
	if strings.TrimSpace(root.Text) != "" {
		return nil
	}
	if len(root.Children) > 0 {
		first := root.Children[0]
		if first.Tag == TagHeading && first.Attrs.Int(AttrLevel, 1) >= level {
			return first
		}
	}
	return nil
}

// GetHeading returns the text of the leading heading, or "" when the
// tree does not start with a heading at the given level or deeper.
func (t *Tree) GetHeading(level int) string {
	if h := t.headingElement(level); h != nil {
		return h.Text
	}
	return ""
}

// SetHeading sets the leading heading of the tree. An existing heading
// at the given level or deeper is retitled in place, otherwise a new
// heading is prepended and any leading root text moves behind it.
func (t *Tree) SetHeading(text string, level int) {
	if h := t.headingElement(level); h != nil {
		h.Text = text
		return
	}
	root := t.Root
	h := NewNode(TagHeading, Attrs{{AttrLevel, strconv.Itoa(level)}})
	h.Text = text
	h.Tail = root.Text
	root.Text = ""
	root.Insert(0, h)
}

// PopHeading removes the leading heading and returns its text and level.
// Only headings at the given level or shallower are taken; pass -1 to
// accept any level. Text trailing the removed heading becomes the new
// root text; trailing whitespace is dropped with the heading.
func (t *Tree) PopHeading(level int) (string, int, bool) {
	root := t.Root
	if strings.TrimSpace(root.Text) != "" || len(root.Children) == 0 {
		return "", 0, false
	}
	first := root.Children[0]
	if first.Tag != TagHeading {
		return "", 0, false
	}
	hLevel := first.Attrs.Int(AttrLevel, 1)
	if level != -1 && hLevel > level {
		return "", 0, false
	}
	root.Remove(first)
	if strings.TrimSpace(first.Tail) != "" {
		root.Text = first.Tail
	}
	return first.Text, hLevel, true
}

// RenumberHeadings rewrites heading levels so every heading nests
// directly under the previous shallower one, with no gaps in between.
// The top level maps to offset+1 and levels are clamped to max.
func (t *Tree) RenumberHeadings(offset, max int) {
	type levelPair struct {
		orig     int
		assigned int
	}
	var path []levelPair
	t.Walk(func(n *Node) bool {
		if n.Tag != TagHeading {
			return true
		}
		level := n.Attrs.Int(AttrLevel, 1)
		for len(path) > 0 && path[len(path)-1].orig >= level {
			path = path[:len(path)-1]
		}
		newLevel := offset + 1
		if len(path) > 0 {
			newLevel = path[len(path)-1].assigned + 1
		}
		if newLevel > max {
			newLevel = max
		}
		n.Attrs.SetInt(AttrLevel, newLevel)
		path = append(path, levelPair{orig: level, assigned: newLevel})
		return true
	})
}

// Extend moves the content of other onto the end of this tree. Leading
// text of other merges into the tail of this tree's last child. The
// nodes are moved, not copied; other must not be used afterwards.
func (t *Tree) Extend(other *Tree) *Tree {
	root := other.Root
	if root.Text != "" {
		if last := t.Root.LastChild(); last != nil {
			last.Tail += root.Text
		} else {
			t.Root.Text += root.Text
		}
	}
	for _, child := range root.Children {
		t.Root.Append(child)
	}
	return t
}

// EndsWithNewline reports whether the content of the tree ends in a line
// break. Headings and list items end on an implied one.
func (t *Tree) EndsWithNewline() bool {
	return endsWithNewline(t.Root)
}

func endsWithNewline(n *Node) bool {
	if n.Tail != "" {
		return strings.HasSuffix(n.Tail, "\n")
	}
	if n.Tag == TagListItem || n.Tag == TagHeading {
		return true
	}
	if last := n.LastChild(); last != nil {
		return endsWithNewline(last)
	}
	if n.Text != "" {
		return strings.HasSuffix(n.Text, "\n")
	}
	return false
}

// TransformLinks rewrites the target of every link through transform.
// When a link's visible text mirrored its old target, the text follows
// the new one.
func (t *Tree) TransformLinks(transform func(href string) string) {
	t.Walk(func(n *Node) bool {
		if n.Tag != TagLink {
			return true
		}
		href := n.Attrs.Get(AttrHref)
		newHref := transform(href)
		if newHref == href {
			return true
		}
		n.Attrs.Set(AttrHref, newHref)
		if n.Text == href {
			n.Text = newHref
		}
		return true
	})
}

// ResolveImages annotates every image with the resolved location of its
// source file. A nil resolver keeps the source as is. The annotation is
// hidden from serialization; UnresolveImages drops it again.
func (t *Tree) ResolveImages(resolve func(src string) string) {
	t.Walk(func(n *Node) bool {
		if n.Tag == TagImage {
			src := n.Attrs.Get(AttrSrc)
			if resolve != nil {
				src = resolve(src)
			}
			n.Attrs.Set(AttrSrcFile, src)
		}
		return true
	})
}

// UnresolveImages removes the annotations added by ResolveImages.
func (t *Tree) UnresolveImages() {
	t.Walk(func(n *Node) bool {
		if n.Tag == TagImage {
			n.Attrs.Del(AttrSrcFile)
		}
		return true
	})
}

// Count returns the number of occurrences of sub in the text content of
// the tree.
func (t *Tree) Count(sub string) int {
	count := 0
	t.Walk(func(n *Node) bool {
		count += strings.Count(n.Text, sub)
		count += strings.Count(n.Tail, sub)
		return true
	})
	return count
}

// CountRegexp returns the number of matches of re in the text content of
// the tree. Matches never span node boundaries.
func (t *Tree) CountRegexp(re *regexp.Regexp) int {
	count := 0
	t.Walk(func(n *Node) bool {
		count += len(re.FindAllStringIndex(n.Text, -1))
		count += len(re.FindAllStringIndex(n.Tail, -1))
		return true
	})
	return count
}

// ObjectIter walks the embedded object elements of a tree in document
// order. It is single use; obtain a fresh iterator to walk again.
type ObjectIter struct {
	stack   []*Node
	objType string
}

// FindObjects returns an iterator over the embedded objects of the tree,
// optionally restricted to one object type. An empty type matches all.
func (t *Tree) FindObjects(objType string) *ObjectIter {
	return &ObjectIter{stack: []*Node{t.Root}, objType: objType}
}

// Next returns the next matching object element, or nil when the tree is
// exhausted.
func (it *ObjectIter) Next() *Node {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		for i := len(n.Children) - 1; i >= 0; i-- {
			it.stack = append(it.stack, n.Children[i])
		}
		if n.Tag == TagObject {
			if it.objType == "" || n.Attrs.Get(AttrType) == it.objType {
				return n
			}
		}
	}
	return nil
}
