package wiki

import (
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/link"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Dumper writes a page tree back out as wiki notation. Dumping a tree
// that came from Parser reproduces the source, up to list renumbering
// and the order of image options.
type Dumper struct {
	*dump.Dumper
}

func NewDumper(opts dump.Options) *Dumper {
	d := &Dumper{Dumper: dump.New("wiki", opts)}
	d.Wraps = map[tree.Tag]dump.Wrap{
		tree.TagEmphasis:    {Start: "//", End: "//"},
		tree.TagStrong:      {Start: "**", End: "**"},
		tree.TagMark:        {Start: "__", End: "__"},
		tree.TagStrike:      {Start: "~~", End: "~~"},
		tree.TagVerbatim:    {Start: "''", End: "''"},
		tree.TagSubscript:   {Start: "_{", End: "}"},
		tree.TagSuperscript: {Start: "^{", End: "}"},
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
		tree.TagTag:           d.dumpTag,
		tree.TagAnchor:        d.dumpAnchor,
	}
	d.ObjectFallback = d.dumpObject
	return d
}

// dumpHeading frames the text in "=" runs, six for level one down to
// two for level five. Deeper levels clamp to five.
func (d *Dumper) dumpHeading(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	level := attrs.Int(tree.AttrLevel, 1)
	if level < 1 {
		level = 1
	} else if level > 5 {
		level = 5
	}
	marker := strings.Repeat("=", 7-level)

	out := make([]string, 0, len(content)+4)
	out = append(out, marker, " ")
	out = append(out, content...)
	return append(out, " ", marker), nil
}

// dumpIndented covers the block containers that only contribute their
// indent: paragraphs, divs and both list kinds.
func (d *Dumper) dumpIndented(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		return dump.PrefixLines(strings.Repeat("\t", indent), content), nil
	}
	return content, nil
}

func (d *Dumper) dumpPre(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	out := make([]string, 0, len(content)+2)
	out = append(out, "'''\n")
	out = append(out, content...)
	out = append(out, "'''\n")
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		return dump.PrefixLines(strings.Repeat("\t", indent), out), nil
	}
	return out, nil
}

// dumpListItem prefixes one tab per enclosing list and the bullet, and
// terminates the line the tree left implied. In a numbered list the
// running marker lives on the parent frame, so the start attribute of
// the tree stays untouched.
func (d *Dumper) dumpListItem(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	depth := d.CountOpen(tree.TagBulletList, tree.TagNumberedList)
	if depth > 0 {
		depth--
	}

	var marker string
	if d.ParentTag() == tree.TagNumberedList {
		marker = d.NumberedMarker()
	} else {
		marker = dump.BulletMarker(attrs.Get(tree.AttrBullet))
	}

	out := make([]string, 0, len(content)+4)
	out = append(out, strings.Repeat("\t", depth), marker, " ")
	out = append(out, content...)
	return append(out, "\n"), nil
}

// dumpLink writes [[href]] or [[href|text]]. URLs and mail addresses
// whose text mirrors the target stay bare, the way the parser found
// them.
func (d *Dumper) dumpLink(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	href := attrs.Get(tree.AttrHref)
	text := strings.Join(content, "")
	if text == "" || text == href {
		if link.IsURL(href) || link.Type(href) == link.TypeMailto {
			return []string{href}, nil
		}
		return []string{"[[", href, "]]"}, nil
	}
	return []string{"[[", href, "|", text, "]]"}, nil
}

func (d *Dumper) dumpImage(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	src := attrs.Get(tree.AttrSrc)
	var opts []string
	for _, kv := range attrs {
		if kv.Key == tree.AttrSrc || kv.Key == tree.AttrAlt ||
			strings.HasPrefix(kv.Key, "_") || kv.Value == "" {
			continue
		}
		opts = append(opts, kv.Key+"="+kv.Value)
	}
	if len(opts) > 0 {
		src += "?" + strings.Join(opts, "&")
	}
	if alt := attrs.Get(tree.AttrAlt); alt != "" {
		return []string{"{{", src, "|", alt, "}}"}, nil
	}
	return []string{"{{", src, "}}"}, nil
}

func (d *Dumper) dumpTag(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if len(content) == 0 {
		return []string{"@" + attrs.Get(tree.AttrName)}, nil
	}
	return content, nil
}

// dumpAnchor keeps the visible text. The notation has no syntax for
// anchors; they only appear in trees built by other formats.
func (d *Dumper) dumpAnchor(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	return content, nil
}

func (d *Dumper) dumpObject(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	var header strings.Builder
	header.WriteString("{{{")
	header.WriteString(attrs.Get(tree.AttrType))
	header.WriteString(":")
	for _, kv := range attrs {
		if kv.Key == tree.AttrType || kv.Key == tree.AttrIndent ||
			strings.HasPrefix(kv.Key, "_") {
			continue
		}
		header.WriteString(" ")
		header.WriteString(kv.Key)
		header.WriteString(`="`)
		header.WriteString(kv.Value)
		header.WriteString(`"`)
	}
	header.WriteString("\n")

	out := make([]string, 0, len(content)+2)
	out = append(out, header.String())
	out = append(out, content...)
	return append(out, "}}}\n"), nil
}
