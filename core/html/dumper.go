package html

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/bidi"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/encoding"
	"github.com/ggfazio/zim-desktop-wiki/core/link"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Dumper writes a page tree as an HTML body fragment. Headings and
// paragraphs opening in a right-to-left script get a dir attribute.
type Dumper struct {
	*dump.Dumper
}

func NewDumper(opts dump.Options) *Dumper {
	d := &Dumper{Dumper: dump.New("html", opts)}
	d.Encode = func(tag tree.Tag, text string) string { return encoding.EscapeXMLText(text) }
	d.IsRTL = isRTL
	d.Wraps = map[tree.Tag]dump.Wrap{
		tree.TagEmphasis:    {Start: "<i>", End: "</i>"},
		tree.TagStrong:      {Start: "<b>", End: "</b>"},
		tree.TagMark:        {Start: "<u>", End: "</u>"},
		tree.TagStrike:      {Start: "<strike>", End: "</strike>"},
		tree.TagVerbatim:    {Start: "<code>", End: "</code>"},
		tree.TagSubscript:   {Start: "<sub>", End: "</sub>"},
		tree.TagSuperscript: {Start: "<sup>", End: "</sup>"},
	}
	d.Handlers = map[tree.Tag]dump.Handler{
		tree.TagHeading:       d.dumpHeading,
		tree.TagParagraph:     d.dumpParagraph,
		tree.TagBlock:         d.dumpBlock,
		tree.TagVerbatimBlock: d.dumpPre,
		tree.TagBulletList:    d.dumpBulletList,
		tree.TagNumberedList:  d.dumpNumberedList,
		tree.TagListItem:      d.dumpListItem,
		tree.TagLink:          d.dumpLink,
		tree.TagImage:         d.dumpImage,
		tree.TagTag:           d.dumpTag,
		tree.TagAnchor:        d.dumpAnchor,
	}
	d.ObjectFallback = d.dumpObject
	return d
}

func (d *Dumper) dumpHeading(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	level := attrs.Int(tree.AttrLevel, 1)
	if level < 1 {
		level = 1
	} else if level > 6 {
		level = 6
	}
	name := "h" + strconv.Itoa(level)

	out := make([]string, 0, len(content)+2)
	out = append(out, "<"+name+d.dirAttr(content)+">")
	out = append(out, content...)
	return append(out, "</"+name+">"), nil
}

// dumpParagraph keeps the paragraph's line structure with <br>. The
// markup emitted for inline elements never spans lines, so the
// replacement only touches text content.
func (d *Dumper) dumpParagraph(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	body := strings.TrimSuffix(strings.Join(content, ""), "\n")
	body = strings.ReplaceAll(body, "\n", "<br>\n")
	open := "<p" + d.styleAttr(attrs) + d.dirAttr(content) + ">\n"
	return []string{open, body, "\n</p>\n"}, nil
}

func (d *Dumper) dumpBlock(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	out := make([]string, 0, len(content)+2)
	out = append(out, "<div"+d.styleAttr(attrs)+">\n")
	out = append(out, content...)
	return append(out, "</div>\n"), nil
}

func (d *Dumper) dumpPre(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	out := make([]string, 0, len(content)+2)
	out = append(out, "<pre"+d.styleAttr(attrs)+">\n")
	out = append(out, content...)
	return append(out, "</pre>\n"), nil
}

func (d *Dumper) dumpBulletList(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	return d.dumpList("<ul"+d.styleAttr(attrs)+">\n", "</ul>\n", content), nil
}

// dumpNumberedList translates a letter start into the type attribute,
// since the HTML start attribute only counts.
func (d *Dumper) dumpNumberedList(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	open := "<ol"
	start := attrs.Get(tree.AttrStart)
	switch {
	case len(start) == 1 && start[0] >= 'a' && start[0] <= 'z':
		open += ` type="a" start="` + strconv.Itoa(int(start[0]-'a')+1) + `"`
	case len(start) == 1 && start[0] >= 'A' && start[0] <= 'Z':
		open += ` type="A" start="` + strconv.Itoa(int(start[0]-'A')+1) + `"`
	case start != "":
		open += ` start="` + encoding.EscapeHTML(start) + `"`
	}
	return d.dumpList(open+d.styleAttr(attrs)+">\n", "</ol>\n", content), nil
}

func (d *Dumper) dumpList(open, close string, content []string) []string {
	out := make([]string, 0, len(content)+2)
	out = append(out, open)
	out = append(out, content...)
	return append(out, close)
}

// dumpListItem marks checkbox items with their bullet as class and the
// matching icon as list image.
func (d *Dumper) dumpListItem(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	open := "<li>"
	bullet := attrs.Get(tree.AttrBullet)
	if d.ParentTag() == tree.TagBulletList && bullet != "" && bullet != tree.BulletNormal {
		open = `<li class="` + encoding.EscapeHTML(bullet) + `"`
		if d.Linker != nil {
			icon := d.Linker.IconURL(bullet)
			open += ` style="list-style-image: url(` + encoding.EscapeHTML(icon) + `)"`
		}
		open += ">"
	}

	out := make([]string, 0, len(content)+2)
	out = append(out, open)
	out = append(out, content...)
	return append(out, "</li>\n"), nil
}

func (d *Dumper) dumpLink(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	href := attrs.Get(tree.AttrHref)
	if len(content) == 0 {
		content = []string{encoding.EscapeXMLText(href)}
	}
	open := `<a href="` + encoding.EscapeHTML(d.resolve(href)) +
		`" class="` + encoding.EscapeHTML(link.Type(href)) + `">`

	out := make([]string, 0, len(content)+2)
	out = append(out, open)
	out = append(out, content...)
	return append(out, "</a>"), nil
}

func (d *Dumper) dumpImage(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	src := attrs.Get(tree.AttrSrc)
	if d.Linker != nil {
		src = d.Linker.Img(src)
	}
	img := `<img src="` + encoding.EscapeHTML(src) +
		`" alt="` + encoding.EscapeHTML(attrs.Get(tree.AttrAlt)) + `"`
	for _, key := range []string{"width", "height"} {
		if v := attrs.Get(key); v != "" {
			img += " " + key + `="` + encoding.EscapeHTML(v) + `"`
		}
	}
	img += ">"

	if href := attrs.Get(tree.AttrHref); href != "" {
		return []string{`<a href="` + encoding.EscapeHTML(d.resolve(href)) + `">`, img, "</a>"}, nil
	}
	return []string{img}, nil
}

func (d *Dumper) dumpTag(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if len(content) == 0 {
		content = []string{encoding.EscapeXMLText("@" + attrs.Get(tree.AttrName))}
	}
	out := make([]string, 0, len(content)+2)
	out = append(out, `<span class="zim-tag">`)
	out = append(out, content...)
	return append(out, "</span>"), nil
}

func (d *Dumper) dumpAnchor(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	out := make([]string, 0, len(content)+2)
	out = append(out, `<a id="`+encoding.EscapeHTML(attrs.Get(tree.AttrName))+`">`)
	out = append(out, content...)
	return append(out, "</a>"), nil
}

// dumpObject keeps unknown objects verbatim, typed so an import run
// can pick them back up.
func (d *Dumper) dumpObject(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	open := `<pre class="zim-object"`
	if typ := attrs.Get(tree.AttrType); typ != "" {
		open += ` data-type="` + encoding.EscapeHTML(typ) + `"`
	}
	out := make([]string, 0, len(content)+2)
	out = append(out, open+">\n")
	out = append(out, content...)
	return append(out, "</pre>\n"), nil
}

func (d *Dumper) resolve(href string) string {
	if d.Linker == nil {
		return href
	}
	return d.Linker.Link(href)
}

func (d *Dumper) styleAttr(attrs tree.Attrs) string {
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		return ` style="padding-left: ` + strconv.Itoa(30*indent) + `pt"`
	}
	return ""
}

func (d *Dumper) dirAttr(content []string) string {
	if d.IsRTL != nil && d.IsRTL(strings.Join(content, "")) {
		return ` dir="rtl"`
	}
	return ""
}

// isRTL reports whether the first character with a strong direction is
// right-to-left.
func isRTL(text string) bool {
	for len(text) > 0 {
		p, sz := bidi.LookupString(text)
		if sz == 0 {
			return false
		}
		switch p.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
		text = text[sz:]
	}
	return false
}
