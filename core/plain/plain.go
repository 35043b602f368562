// Package plain reads and writes plain text. The parser keeps all
// markup characters literal and only links bare URLs and mail
// addresses. The dumper drops style markers and keeps the visible
// text, which also makes it the fallback rendering for trees built by
// richer formats.
package plain

import (
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
	"github.com/ggfazio/zim-desktop-wiki/core/link"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

func init() {
	format.Register(&format.Format{
		Name:        "plain",
		DisplayName: "Text",
		Flags:       format.Export | format.Import | format.Text,
		NewParser:   func() format.Parser { return NewParser() },
		NewDumper:   func(opts dump.Options) format.Dumper { return NewDumper(opts) },
	})
}

// Parser reads plain text into a page tree.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse wraps runs of non blank lines in paragraphs.
func (p *Parser) Parse(text string) (*tree.Tree, error) {
	b := tree.NewBuilder()
	if err := emitBlocks(b, text); err != nil {
		return nil, err
	}
	return b.Tree()
}

func emitBlocks(v tree.Visitor, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if _, err := v.Start(tree.TagRoot, nil); err != nil {
		return err
	}
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			if err := v.Text(lines[i] + "\n"); err != nil {
				return err
			}
			i++
			continue
		}
		var err error
		i, err = emitParagraph(v, lines, i)
		if err != nil {
			return err
		}
	}
	return v.End(tree.TagRoot)
}

func emitParagraph(v tree.Visitor, lines []string, start int) (int, error) {
	i := start
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			break
		}
	}
	if _, err := v.Start(tree.TagParagraph, nil); err != nil {
		return i, err
	}
	for j := start; j < i; j++ {
		if err := emitLine(v, lines[j]); err != nil {
			return i, err
		}
	}
	return i, v.End(tree.TagParagraph)
}

// emitLine sends one line with its terminator, linking bare targets.
func emitLine(v tree.Visitor, line string) error {
	pos := 0
	for _, s := range link.AutoLinkSpans(line) {
		if s[0] > pos {
			if err := v.Text(line[pos:s[0]]); err != nil {
				return err
			}
		}
		target := line[s[0]:s[1]]
		attrs := tree.Attrs{{Key: tree.AttrHref, Value: target}}
		if _, err := v.Append(tree.TagLink, attrs, target); err != nil {
			return err
		}
		pos = s[1]
	}
	return v.Text(line[pos:] + "\n")
}

// Dumper renders a page tree as plain text. Every element is handled,
// so trees from any format flatten cleanly.
type Dumper struct {
	*dump.Dumper
}

func NewDumper(opts dump.Options) *Dumper {
	d := &Dumper{Dumper: dump.New("plain", opts)}
	d.Wraps = map[tree.Tag]dump.Wrap{
		tree.TagEmphasis:    {},
		tree.TagStrong:      {},
		tree.TagMark:        {},
		tree.TagStrike:      {},
		tree.TagVerbatim:    {},
		tree.TagTag:         {},
		tree.TagSubscript:   {Start: "_{", End: "}"},
		tree.TagSuperscript: {Start: "^{", End: "}"},
	}
	d.Handlers = map[tree.Tag]dump.Handler{
		tree.TagHeading:       d.dumpContent,
		tree.TagParagraph:     d.dumpIndented,
		tree.TagBlock:         d.dumpIndented,
		tree.TagVerbatimBlock: d.dumpIndented,
		tree.TagBulletList:    d.dumpIndented,
		tree.TagNumberedList:  d.dumpIndented,
		tree.TagListItem:      d.dumpListItem,
		tree.TagLink:          d.dumpLink,
		tree.TagImage:         d.dumpImage,
		tree.TagAnchor:        d.dumpContent,
	}
	d.ObjectFallback = d.dumpContent
	return d
}

func (d *Dumper) dumpContent(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	return content, nil
}

func (d *Dumper) dumpIndented(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if indent := attrs.Int(tree.AttrIndent, 0); indent > 0 {
		return dump.PrefixLines(strings.Repeat("\t", indent), content), nil
	}
	return content, nil
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
		marker = dump.BulletMarker(attrs.Get(tree.AttrBullet))
	}

	out := make([]string, 0, len(content)+4)
	out = append(out, strings.Repeat("\t", depth), marker, " ")
	out = append(out, content...)
	return append(out, "\n"), nil
}

// dumpLink keeps the visible text, or the target when the link carries
// none of its own.
func (d *Dumper) dumpLink(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if len(content) == 0 {
		return []string{attrs.Get(tree.AttrHref)}, nil
	}
	return content, nil
}

func (d *Dumper) dumpImage(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if alt := attrs.Get(tree.AttrAlt); alt != "" {
		return []string{alt}, nil
	}
	return []string{attrs.Get(tree.AttrSrc)}, nil
}
