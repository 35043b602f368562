package tree

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/ggfazio/zim-desktop-wiki/core/encoding"
	"github.com/ggfazio/zim-desktop-wiki/core/errors"
)

// xmlProlog matches the canonical wire form byte for byte.
const xmlProlog = "<?xml version='1.0' encoding='utf-8'?>\n"

// ToXML serializes the tree to its canonical XML form. The output is not
// pretty printed; all whitespace in the tree is content. Hidden
// attributes are left out.
func (t *Tree) ToXML() string {
	var b strings.Builder
	b.WriteString(xmlProlog)
	writeNode(&b, t.Root)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(string(n.Tag))
	for _, kv := range n.Attrs {
		if isHiddenKey(kv.Key) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(kv.Key)
		b.WriteString(`="`)
		b.WriteString(encoding.EscapeXMLAttr(kv.Value))
		b.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
	b.WriteString(encoding.EscapeXMLText(n.Text))
	for _, child := range n.Children {
		writeNode(b, child)
		b.WriteString(encoding.EscapeXMLText(child.Tail))
	}
	b.WriteString("</")
	b.WriteString(string(n.Tag))
	b.WriteByte('>')
}

// FromXML parses the canonical XML form back into a tree. Whitespace in
// text content is preserved exactly.
func FromXML(s string) (*Tree, error) {
	doc, err := xmlquery.Parse(strings.NewReader(s))
	if err != nil {
		return nil, &errors.ParseError{Format: "xml", Message: "invalid document", Err: err}
	}

	var rootElem *xmlquery.Node
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			rootElem = child
			break
		}
	}
	if rootElem == nil {
		return nil, errors.NewParse("xml", "", "missing root element")
	}
	if rootElem.Data != string(TagRoot) {
		return nil, errors.NewStructural(rootElem.Data, "root element must be zim-tree")
	}
	return &Tree{Root: convertElement(rootElem)}, nil
}

// convertElement maps an xmlquery element to a Node, folding interleaved
// text nodes into the text and tail slots.
func convertElement(el *xmlquery.Node) *Node {
	n := NewNode(Tag(el.Data), nil)
	for _, a := range el.Attr {
		n.Attrs.Set(a.Name.Local, a.Value)
	}

	var last *Node
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			last = convertElement(child)
			n.Append(last)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if last != nil {
				last.Tail += child.Data
			} else {
				n.Text += child.Data
			}
		}
	}
	return n
}

// Select runs an XPath expression against the XML form of the tree and
// returns the matching fragments, each serialized back to XML.
func (t *Tree) Select(expr string) ([]string, error) {
	// Compile first so a bad expression reports as such rather than as a
	// query with no results.
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.Wrapf(err, "invalid xpath %q", expr)
	}

	doc, err := xmlquery.Parse(strings.NewReader(t.ToXML()))
	if err != nil {
		return nil, &errors.ParseError{Format: "xml", Message: "invalid document", Err: err}
	}
	nodes, err := xmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, errors.Wrapf(err, "xpath %q", expr)
	}

	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.OutputXML(true))
	}
	return out, nil
}
