package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Dumper renders a page tree as pandoc flavored markdown. Highlight
// and sub/superscript use the pandoc notation, checkboxes the task
// list notation, so the output survives a round trip through the
// parser where the syntax allows it at all.
type Dumper struct {
	*dump.Dumper
}

func NewDumper(opts dump.Options) *Dumper {
	d := &Dumper{Dumper: dump.New("markdown", opts)}
	d.Wraps = map[tree.Tag]dump.Wrap{
		tree.TagEmphasis:    {Start: "*", End: "*"},
		tree.TagStrong:      {Start: "**", End: "**"},
		tree.TagMark:        {Start: "__", End: "__"},
		tree.TagStrike:      {Start: "~~", End: "~~"},
		tree.TagVerbatim:    {Start: "``", End: "``"},
		tree.TagTag:         {},
		tree.TagSubscript:   {Start: "~", End: "~"},
		tree.TagSuperscript: {Start: "^", End: "^"},
	}
	d.Handlers = map[tree.Tag]dump.Handler{
		tree.TagHeading:       d.dumpHeading,
		tree.TagParagraph:     d.dumpIndented,
		tree.TagBlock:         d.dumpIndented,
		tree.TagVerbatimBlock: d.dumpPre,
		tree.TagBulletList:    d.dumpIndented,
		tree.TagNumberedList:  d.dumpIndented,
		tree.TagListItem:      d.dumpListItem,
		tree.TagLink:          d.dumpLink,
		tree.TagImage:         d.dumpImage,
		tree.TagAnchor:        d.dumpContent,
	}
	d.ObjectFallback = d.dumpPre
	return d
}

func (d *Dumper) dumpContent(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	return content, nil
}

// dumpHeading writes setext headings for the top two levels and atx
// headings below that. Both carry their own line ending; the blank
// line after comes from the tree.
func (d *Dumper) dumpHeading(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	level := attrs.Int(tree.AttrLevel, 1)
	if level < 1 {
		level = 1
	} else if level > 5 {
		level = 5
	}

	if level <= 2 {
		char := "="
		if level == 2 {
			char = "-"
		}
		heading := strings.Join(content, "")
		underline := strings.Repeat(char, utf8.RuneCountInString(heading))
		return []string{heading + "\n", underline + "\n"}, nil
	}

	out := make([]string, 0, len(content)+2)
	out = append(out, strings.Repeat("#", level)+" ")
	out = append(out, content...)
	return append(out, "\n"), nil
}

// dumpIndented renders indent as blockquote markers. A tab prefix
// would read back as a code block, a quote level reads back as the
// same indent.
func (d *Dumper) dumpIndented(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		return dump.PrefixLines(strings.Repeat("> ", indent), content), nil
	}
	return content, nil
}

func (d *Dumper) dumpPre(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	prefix := strings.Repeat("> ", attrs.Int(tree.AttrIndent, 0)) + "\t"
	out := dump.PrefixLines(prefix, content)
	return append(out, "\n"), nil
}

func (d *Dumper) dumpListItem(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	depth := d.CountOpen(tree.TagBulletList, tree.TagNumberedList)
	if depth > 0 {
		depth--
	}

	var marker string
	if d.ParentTag() == tree.TagNumberedList {
		marker = d.NumberedMarker()
	} else {
		marker = bulletMarker(attrs.Get(tree.AttrBullet))
	}

	out := make([]string, 0, len(content)+4)
	out = append(out, strings.Repeat("\t", depth), marker, " ")
	out = append(out, content...)
	return append(out, "\n"), nil
}

func (d *Dumper) dumpLink(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	href := attrs.Get(tree.AttrHref)
	if d.Linker != nil {
		href = d.Linker.Link(href)
	}
	text := strings.Join(content, "")
	if text == "" {
		text = href
	}
	return []string{"[" + text + "](" + href + ")"}, nil
}

func (d *Dumper) dumpImage(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	src := attrs.Get(tree.AttrSrc)
	if d.Linker != nil {
		src = d.Linker.Img(src)
	}
	out := "![" + attrs.Get(tree.AttrAlt) + "](" + src + ")"
	if href := attrs.Get(tree.AttrHref); href != "" {
		if d.Linker != nil {
			href = d.Linker.Link(href)
		}
		out = "[" + out + "](" + href + ")"
	}
	return []string{out}, nil
}

// bulletMarker maps bullets to markdown. Checkboxes use the task list
// notation except the crossed out state, which has none and keeps its
// display character.
func bulletMarker(bullet string) string {
	switch bullet {
	case tree.UncheckedBox:
		return "- [ ]"
	case tree.CheckedBox:
		return "- [x]"
	case tree.XCheckedBox:
		return "- ☒"
	case "", tree.BulletNormal:
		return "-"
	}
	return bullet
}
