package html

import (
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Parser imports HTML sources. Elements with no place in the page
// model are transparent, so their content is kept; head, script and
// style subtrees are skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(text string) (*tree.Tree, error) {
	doc, err := xhtml.Parse(strings.NewReader(text))
	if err != nil {
		return nil, errors.NewParse("html", "", err.Error())
	}

	n := tree.NewNormalizer()
	if _, err := n.Start(tree.TagRoot, nil); err != nil {
		return nil, err
	}
	w := walker{v: n}
	if err := w.walk(doc); err != nil {
		return nil, err
	}
	if err := n.End(tree.TagRoot); err != nil {
		return nil, err
	}
	return n.Tree()
}

// walker emits normalizer events for the html node tree. It collapses
// whitespace the way a browser renders it and puts the separators a
// text notation would carry between top level blocks.
type walker struct {
	v tree.Visitor

	depth     int  // open emitted elements, 0 at top level
	listDepth int  // open list items
	atStart   bool // no text yet on the current line
}

func (w *walker) walk(n *xhtml.Node) error {
	switch n.Type {
	case xhtml.TextNode:
		return w.text(n)
	case xhtml.ElementNode:
		return w.element(n)
	case xhtml.DocumentNode:
		return w.children(n)
	default:
		// Comments and doctypes carry no page content.
		return nil
	}
}

func (w *walker) children(n *xhtml.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) element(n *xhtml.Node) error {
	switch n.Data {
	case "head", "script", "style", "template":
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := string(n.Data[1])
		return w.emit(n, tree.TagHeading, tree.Attrs{{Key: tree.AttrLevel, Value: level}})
	case "p":
		if w.listDepth > 0 {
			// Loose list markup wraps item content in paragraphs; the
			// item itself is the paragraph here.
			return w.flatParagraph(n)
		}
		return w.emit(n, tree.TagParagraph, indentAttrs(n))
	case "blockquote":
		return w.quoted(n, 1)
	case "div":
		if attrs := indentAttrs(n); attrs != nil {
			return w.quoted(n, attrs.Int(tree.AttrIndent, 1))
		}
		return w.children(n)
	case "pre":
		return w.pre(n)
	case "b", "strong":
		return w.emit(n, tree.TagStrong, nil)
	case "i", "em":
		return w.emit(n, tree.TagEmphasis, nil)
	case "u", "mark":
		return w.emit(n, tree.TagMark, nil)
	case "s", "strike", "del":
		return w.emit(n, tree.TagStrike, nil)
	case "code", "tt", "kbd", "samp":
		return w.emit(n, tree.TagVerbatim, nil)
	case "sub":
		return w.emit(n, tree.TagSubscript, nil)
	case "sup":
		return w.emit(n, tree.TagSuperscript, nil)
	case "span":
		if hasClass(n, "zim-tag") {
			return w.zimTag(n)
		}
		return w.children(n)
	case "a":
		return w.anchor(n)
	case "img":
		return w.image(n, "")
	case "br":
		w.atStart = true
		return w.v.Text("\n")
	case "ul":
		return w.emit(n, tree.TagBulletList, nil)
	case "ol":
		return w.emit(n, tree.TagNumberedList, listStart(n))
	case "li":
		return w.listItem(n)
	case "td", "th":
		// No table model; cells flatten into space separated text.
		if err := w.children(n); err != nil {
			return err
		}
		if nextElement(n) != nil {
			return w.v.Text(" ")
		}
		return nil
	case "tr":
		if err := w.children(n); err != nil {
			return err
		}
		w.atStart = true
		return w.v.Text("\n")
	default:
		return w.children(n)
	}
}

// emit opens a tree element for the node, walks its children and
// closes it again, with block separation at top level.
func (w *walker) emit(n *xhtml.Node, tag tree.Tag, attrs tree.Attrs) error {
	if _, err := w.v.Start(tag, attrs); err != nil {
		return err
	}
	if tag.IsBlockLevel() || tag == tree.TagBulletList || tag == tree.TagNumberedList {
		w.atStart = true
	}
	w.depth++
	err := w.children(n)
	w.depth--
	if err != nil {
		return err
	}
	if err := w.v.End(tag); err != nil {
		return err
	}
	return w.separate(tag, n)
}

// separate emits the line breaks a text notation would carry after a
// top level block. A heading always terminates its line; other blocks
// only get a separator when more content follows.
func (w *walker) separate(tag tree.Tag, n *xhtml.Node) error {
	if w.depth > 0 {
		return nil
	}
	switch tag {
	case tree.TagHeading:
		if hasFollowingContent(n) {
			return w.v.Text("\n\n")
		}
		return w.v.Text("\n")
	case tree.TagParagraph, tree.TagBlock, tree.TagVerbatimBlock, tree.TagObject,
		tree.TagBulletList, tree.TagNumberedList, tree.TagImage:
		if hasFollowingContent(n) {
			return w.v.Text("\n")
		}
	}
	return nil
}

// quoted maps blockquote style elements. With block children inside it
// becomes a div carrying the indent; bare inline content becomes an
// indented paragraph, the form the native notation uses.
func (w *walker) quoted(n *xhtml.Node, indent int) error {
	attrs := tree.Attrs{{Key: tree.AttrIndent, Value: strconv.Itoa(indent)}}
	if hasBlockChild(n) {
		return w.emit(n, tree.TagBlock, attrs)
	}
	return w.emit(n, tree.TagParagraph, attrs)
}

// flatParagraph walks a paragraph without emitting one, joining
// adjacent paragraphs with a space.
func (w *walker) flatParagraph(n *xhtml.Node) error {
	if err := w.children(n); err != nil {
		return err
	}
	if next := nextElement(n); next != nil && next.Data == "p" {
		return w.v.Text(" ")
	}
	return nil
}

// pre imports verbatim blocks with their whitespace kept. A pre typed
// by an export run comes back as the object it was.
func (w *walker) pre(n *xhtml.Node) error {
	text := nodeText(n)
	if typ := attrValue(n, "data-type"); typ != "" {
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		attrs := tree.Attrs{{Key: tree.AttrType, Value: typ}}
		if _, err := w.v.Append(tree.TagObject, attrs, text); err != nil {
			return err
		}
		return w.separate(tree.TagObject, n)
	}
	if _, err := w.v.Append(tree.TagVerbatimBlock, indentAttrs(n), text); err != nil {
		return err
	}
	return w.separate(tree.TagVerbatimBlock, n)
}

func (w *walker) zimTag(n *xhtml.Node) error {
	text := nodeText(n)
	var attrs tree.Attrs
	if name, ok := strings.CutPrefix(strings.TrimSpace(text), "@"); ok && name != "" {
		attrs = tree.Attrs{{Key: tree.AttrName, Value: name}}
	}
	_, err := w.v.Append(tree.TagTag, attrs, text)
	return err
}

// anchor dispatches the three shapes of <a>: a target makes a link, an
// anchor wrapping a lone image moves the target onto the image, and a
// bare id makes a named anchor.
func (w *walker) anchor(n *xhtml.Node) error {
	href := attrValue(n, "href")
	if href == "" {
		if id := attrValue(n, "id"); id != "" {
			return w.emit(n, tree.TagAnchor, tree.Attrs{{Key: tree.AttrName, Value: id}})
		}
		if name := attrValue(n, "name"); name != "" {
			return w.emit(n, tree.TagAnchor, tree.Attrs{{Key: tree.AttrName, Value: name}})
		}
		return w.children(n)
	}
	if img := loneImage(n); img != nil {
		return w.image(img, href)
	}
	return w.emit(n, tree.TagLink, tree.Attrs{{Key: tree.AttrHref, Value: href}})
}

func (w *walker) image(n *xhtml.Node, href string) error {
	attrs := tree.Attrs{{Key: tree.AttrSrc, Value: attrValue(n, "src")}}
	if alt := attrValue(n, "alt"); alt != "" {
		attrs.Set(tree.AttrAlt, alt)
	}
	for _, key := range []string{"width", "height"} {
		if v := attrValue(n, key); v != "" {
			attrs.Set(key, v)
		}
	}
	if href != "" {
		attrs.Set(tree.AttrHref, href)
	}
	if _, err := w.v.Append(tree.TagImage, attrs, ""); err != nil {
		return err
	}
	return w.separate(tree.TagImage, n)
}

// listItem walks an item. Checkbox state comes from the class an
// export run put on it, or from a leading checkbox input. Sublists
// move behind the closed item, siblings of it, the shape nested lists
// take in the page model.
func (w *walker) listItem(n *xhtml.Node) error {
	attrs, box := itemBullet(n)
	if attrs == nil && n.Parent != nil && n.Parent.Data == "ul" {
		attrs = tree.Attrs{{Key: tree.AttrBullet, Value: tree.BulletNormal}}
	}

	if _, err := w.v.Start(tree.TagListItem, attrs); err != nil {
		return err
	}
	w.atStart = true
	w.depth++
	w.listDepth++
	var sublists []*xhtml.Node
	var err error
	for c := n.FirstChild; c != nil && err == nil; c = c.NextSibling {
		if c == box {
			continue
		}
		if c.Type == xhtml.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			sublists = append(sublists, c)
			continue
		}
		err = w.walk(c)
	}
	w.listDepth--
	w.depth--
	if err != nil {
		return err
	}
	if err := w.v.End(tree.TagListItem); err != nil {
		return err
	}

	for _, c := range sublists {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// text collapses whitespace runs to single spaces and trims at block
// boundaries, following rendered rather than source whitespace.
func (w *walker) text(n *xhtml.Node) error {
	s := collapseSpace(n.Data)
	if w.atStart || atBlockEdge(n.PrevSibling, n.Parent) {
		s = strings.TrimLeft(s, " ")
	}
	if atBlockEdge(n.NextSibling, n.Parent) {
		s = strings.TrimRight(s, " ")
	}
	if s == "" {
		return nil
	}
	w.atStart = false
	return w.v.Text(s)
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

// blockNames are the elements rendered as blocks, where surrounding
// whitespace is not part of the content.
var blockNames = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "div": true, "dd": true, "dl": true, "dt": true,
	"fieldset": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "html": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

// atBlockEdge reports whether the given sibling slot borders a block:
// either a block element sits there, or there is no sibling and the
// parent itself is a block.
func atBlockEdge(sibling, parent *xhtml.Node) bool {
	if sibling == nil {
		return parent != nil && parent.Type == xhtml.ElementNode && blockNames[parent.Data]
	}
	if sibling.Type == xhtml.TextNode {
		return false
	}
	return sibling.Type != xhtml.ElementNode || blockNames[sibling.Data]
}

func hasBlockChild(n *xhtml.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.ElementNode && blockNames[c.Data] {
			return true
		}
	}
	return false
}

func hasFollowingContent(n *xhtml.Node) bool {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		switch s.Type {
		case xhtml.ElementNode:
			return true
		case xhtml.TextNode:
			if strings.TrimSpace(s.Data) != "" {
				return true
			}
		}
	}
	return false
}

func nextElement(n *xhtml.Node) *xhtml.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == xhtml.ElementNode {
			return s
		}
		if s.Type == xhtml.TextNode && strings.TrimSpace(s.Data) != "" {
			return nil
		}
	}
	return nil
}

// itemBullet reads the checkbox state of a list item. The input node
// returned, if any, represents the state and is not content.
func itemBullet(n *xhtml.Node) (tree.Attrs, *xhtml.Node) {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		switch c {
		case tree.UncheckedBox, tree.CheckedBox, tree.XCheckedBox:
			return tree.Attrs{{Key: tree.AttrBullet, Value: c}}, nil
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.Type == xhtml.ElementNode && c.Data == "input" && attrValue(c, "type") == "checkbox" {
			bullet := tree.UncheckedBox
			if hasAttr(c, "checked") {
				bullet = tree.CheckedBox
			}
			return tree.Attrs{{Key: tree.AttrBullet, Value: bullet}}, c
		}
		break
	}
	return nil, nil
}

// listStart reads the start of an ordered list, mapping a letter type
// back to the letter marker.
func listStart(n *xhtml.Node) tree.Attrs {
	start := attrValue(n, "start")
	typ := attrValue(n, "type")
	if num, err := strconv.Atoi(start); err == nil && num >= 1 && num <= 26 {
		switch typ {
		case "a":
			return tree.Attrs{{Key: tree.AttrStart, Value: string(rune('a' + num - 1))}}
		case "A":
			return tree.Attrs{{Key: tree.AttrStart, Value: string(rune('A' + num - 1))}}
		}
	}
	if start != "" {
		return tree.Attrs{{Key: tree.AttrStart, Value: start}}
	}
	return nil
}

// indentAttrs recovers an indent level from the padding-left style the
// dumper emits.
func indentAttrs(n *xhtml.Node) tree.Attrs {
	style := attrValue(n, "style")
	i := strings.Index(style, "padding-left:")
	if i < 0 {
		return nil
	}
	v := style[i+len("padding-left:"):]
	if j := strings.IndexByte(v, ';'); j >= 0 {
		v = v[:j]
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), "pt")
	pts, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || pts < 30 {
		return nil
	}
	return tree.Attrs{{Key: tree.AttrIndent, Value: strconv.Itoa(pts / 30)}}
}

// loneImage returns the single image wrapped by the node, or nil when
// it holds anything else.
func loneImage(n *xhtml.Node) *xhtml.Node {
	var img *xhtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == xhtml.ElementNode && c.Data == "img" && img == nil:
			img = c
		case c.Type == xhtml.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == xhtml.CommentNode:
		default:
			return nil
		}
	}
	return img
}

func nodeText(n *xhtml.Node) string {
	var b strings.Builder
	var visit func(*xhtml.Node)
	visit = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func attrValue(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *xhtml.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *xhtml.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
