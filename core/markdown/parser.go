package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Parser reads CommonMark text into a page tree. Strikethrough, task
// list and bare URL syntax are enabled on top of the core grammar.
//
// The goldmark syntax tree is replayed as page events through the
// normalizer, which owns the newline padding and drops constructs
// that come out empty.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(source string) (*tree.Tree, error) {
	src := []byte(source)
	md := goldmark.New(goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Linkify,
		extension.TaskList,
	))
	doc := md.Parser().Parse(text.NewReader(src))

	norm := tree.NewNormalizer()
	if _, err := norm.Start(tree.TagRoot, nil); err != nil {
		return nil, err
	}
	w := &walker{v: norm, src: src, lineBreak: "\n"}
	if err := w.blocks(doc, 0); err != nil {
		return nil, err
	}
	if err := norm.End(tree.TagRoot); err != nil {
		return nil, err
	}
	return norm.Tree()
}

// walker replays a goldmark syntax tree as page events.
type walker struct {
	v   tree.Visitor
	src []byte

	// lineBreak is what a line break inside inline content becomes. A
	// heading or list item may not span lines, so there it is a space.
	lineBreak string
}

// blocks walks the block children of parent. indent is the blockquote
// nesting the children sit in. Between blocks the separator text a
// line based source would carry is emitted, so the tree gets the same
// tails a native page has.
func (w *walker) blocks(parent ast.Node, indent int) error {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if err := w.block(n, indent); err != nil {
			return err
		}
		if sep := separator(n); sep != "" {
			if err := w.v.Text(sep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) block(n ast.Node, indent int) error {
	switch n := n.(type) {
	case *ast.Heading:
		return w.heading(n)
	case *ast.Paragraph:
		return w.paragraph(n, indent)
	case *ast.TextBlock:
		return w.paragraph(n, indent)
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
		return w.verbatim(n, indent)
	case *ast.List:
		return w.list(n, indent)
	case *ast.Blockquote:
		return w.blocks(n, indent+1)
	case *ast.ThematicBreak:
		// No page construct for a rule.
		return nil
	default:
		return w.blocks(n, indent)
	}
}

// separator returns the text following a block in line based notation:
// every block ends its line, a heading is followed by a blank line.
func separator(n ast.Node) string {
	switch n.(type) {
	case *ast.Heading:
		if n.NextSibling() != nil {
			return "\n\n"
		}
		return "\n"
	case *ast.Paragraph, *ast.List, *ast.Blockquote,
		*ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
		if n.NextSibling() != nil {
			return "\n"
		}
	}
	return ""
}

func (w *walker) heading(n *ast.Heading) error {
	attrs := tree.Attrs{{Key: tree.AttrLevel, Value: strconv.Itoa(n.Level)}}
	if _, err := w.v.Start(tree.TagHeading, attrs); err != nil {
		return err
	}
	// Setext headings may span source lines.
	prev := w.lineBreak
	w.lineBreak = " "
	err := w.inlineChildren(n)
	w.lineBreak = prev
	if err != nil {
		return err
	}
	return w.v.End(tree.TagHeading)
}

func (w *walker) paragraph(n ast.Node, indent int) error {
	var attrs tree.Attrs
	if indent > 0 {
		attrs.Set(tree.AttrIndent, strconv.Itoa(indent))
	}
	if _, err := w.v.Start(tree.TagParagraph, attrs); err != nil {
		return err
	}
	if err := w.inlineChildren(n); err != nil {
		return err
	}
	return w.v.End(tree.TagParagraph)
}

// verbatim reads the raw lines of a code or html block. Inline markup
// does not exist inside them, the source lines are the content.
func (w *walker) verbatim(n ast.Node, indent int) error {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.src))
	}
	if b.Len() == 0 {
		return nil
	}
	var attrs tree.Attrs
	if indent > 0 {
		attrs.Set(tree.AttrIndent, strconv.Itoa(indent))
	}
	_, err := w.v.Append(tree.TagVerbatimBlock, attrs, b.String())
	return err
}

func (w *walker) list(n *ast.List, indent int) error {
	tag := tree.TagBulletList
	var attrs tree.Attrs
	if n.IsOrdered() {
		tag = tree.TagNumberedList
		attrs.Set(tree.AttrStart, strconv.Itoa(n.Start))
	}
	if indent > 0 {
		attrs.Set(tree.AttrIndent, strconv.Itoa(indent))
	}
	if _, err := w.v.Start(tag, attrs); err != nil {
		return err
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		if err := w.listItem(item, n); err != nil {
			return err
		}
	}
	return w.v.End(tag)
}

// listItem emits one item. Nested lists are hoisted out of the item
// and walked after it closes, as its siblings; the other blocks
// markdown allows inside an item flatten into the item text.
func (w *walker) listItem(n *ast.ListItem, parent *ast.List) error {
	var attrs tree.Attrs
	if !parent.IsOrdered() {
		attrs.Set(tree.AttrBullet, itemBullet(n))
	}
	if _, err := w.v.Start(tree.TagListItem, attrs); err != nil {
		return err
	}

	prev := w.lineBreak
	w.lineBreak = " "
	var sublists []*ast.List
	first := true
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if sub, ok := c.(*ast.List); ok {
			sublists = append(sublists, sub)
			continue
		}
		if !first {
			if err := w.v.Text(" "); err != nil {
				w.lineBreak = prev
				return err
			}
		}
		first = false
		var err error
		switch c.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			err = w.itemBlock(c)
		default:
			err = w.flatten(c)
		}
		if err != nil {
			w.lineBreak = prev
			return err
		}
	}
	w.lineBreak = prev

	if err := w.v.End(tree.TagListItem); err != nil {
		return err
	}
	for _, sub := range sublists {
		if err := w.list(sub, 0); err != nil {
			return err
		}
	}
	return nil
}

// itemBlock emits the inline content of one block inside a list item.
// A leading task checkbox is consumed, it already became the bullet.
func (w *walker) itemBlock(block ast.Node) error {
	c := block.FirstChild()
	trim := false
	if _, ok := c.(*extast.TaskCheckBox); ok {
		c = c.NextSibling()
		trim = true
	}
	for ; c != nil; c = c.NextSibling() {
		if trim {
			trim = false
			if t, ok := c.(*ast.Text); ok {
				chunk := strings.TrimLeft(string(t.Segment.Value(w.src)), " ")
				if err := w.emitText(chunk, t); err != nil {
					return err
				}
				continue
			}
		}
		if err := w.inline(c); err != nil {
			return err
		}
	}
	return nil
}

// flatten keeps the text of a block construct the page model has no
// place for inside a list item.
func (w *walker) flatten(n ast.Node) error {
	var b strings.Builder
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(w.src))
		}
	}
	if b.Len() == 0 {
		b.WriteString(nodeText(n, w.src))
	}
	flat := strings.Join(strings.Fields(b.String()), " ")
	if flat == "" {
		return nil
	}
	return w.v.Text(flat)
}

func (w *walker) inlineChildren(n ast.Node) error {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := w.inline(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) inline(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Text:
		return w.emitText(string(n.Segment.Value(w.src)), n)
	case *ast.String:
		return w.v.Text(string(n.Value))
	case *ast.CodeSpan:
		_, err := w.v.Append(tree.TagVerbatim, nil, nodeText(n, w.src))
		return err
	case *ast.Emphasis:
		tag := tree.TagEmphasis
		if n.Level >= 2 {
			tag = tree.TagStrong
		}
		return w.wrap(tag, n)
	case *extast.Strikethrough:
		return w.wrap(tree.TagStrike, n)
	case *ast.Link:
		return w.link(n)
	case *ast.AutoLink:
		target := string(n.URL(w.src))
		attrs := tree.Attrs{{Key: tree.AttrHref, Value: target}}
		_, err := w.v.Append(tree.TagLink, attrs, string(n.Label(w.src)))
		return err
	case *ast.Image:
		return w.image(n, "")
	case *ast.RawHTML:
		return w.rawHTML(n)
	case *extast.TaskCheckBox:
		// Consumed by the list item bullet.
		return nil
	default:
		return w.inlineChildren(n)
	}
}

// emitText sends a text chunk plus the line break the node carries.
func (w *walker) emitText(chunk string, t *ast.Text) error {
	if chunk != "" {
		if err := w.v.Text(chunk); err != nil {
			return err
		}
	}
	if t.SoftLineBreak() || t.HardLineBreak() {
		return w.v.Text(w.lineBreak)
	}
	return nil
}

func (w *walker) wrap(tag tree.Tag, n ast.Node) error {
	if _, err := w.v.Start(tag, nil); err != nil {
		return err
	}
	if err := w.inlineChildren(n); err != nil {
		return err
	}
	return w.v.End(tag)
}

func (w *walker) link(n *ast.Link) error {
	href := string(n.Destination)
	if img, ok := onlyChild(n).(*ast.Image); ok {
		return w.image(img, href)
	}
	attrs := tree.Attrs{{Key: tree.AttrHref, Value: href}}
	if n.FirstChild() == nil {
		_, err := w.v.Append(tree.TagLink, attrs, href)
		return err
	}
	if _, err := w.v.Start(tree.TagLink, attrs); err != nil {
		return err
	}
	if err := w.inlineChildren(n); err != nil {
		return err
	}
	return w.v.End(tree.TagLink)
}

func (w *walker) image(n *ast.Image, href string) error {
	attrs := tree.Attrs{{Key: tree.AttrSrc, Value: string(n.Destination)}}
	if alt := nodeText(n, w.src); alt != "" {
		attrs.Set(tree.AttrAlt, alt)
	}
	if href != "" {
		attrs.Set(tree.AttrHref, href)
	}
	_, err := w.v.Append(tree.TagImage, attrs, "")
	return err
}

// rawHTML keeps inline html literal, except a lone break tag, which
// becomes the line break it stands for.
func (w *walker) rawHTML(n *ast.RawHTML) error {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(w.src))
	}
	raw := b.String()
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "<br>", "<br/>", "<br />":
		return w.v.Text(w.lineBreak)
	}
	return w.v.Text(raw)
}

// itemBullet derives the bullet of an item from a leading task
// checkbox in its first block.
func itemBullet(n *ast.ListItem) string {
	block := n.FirstChild()
	if block == nil {
		return tree.BulletNormal
	}
	if box, ok := block.FirstChild().(*extast.TaskCheckBox); ok {
		if box.IsChecked {
			return tree.CheckedBox
		}
		return tree.UncheckedBox
	}
	return tree.BulletNormal
}

// nodeText concatenates the raw text of the inline descendants of n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return b.String()
}

func onlyChild(n ast.Node) ast.Node {
	if c := n.FirstChild(); c != nil && c == n.LastChild() {
		return c
	}
	return nil
}
