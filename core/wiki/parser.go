package wiki

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

var (
	headingRe = regexp.MustCompile(`^(={2,})[ \t]+(.*?)(?:[ \t]+=+)?[ \t]*$`)
	fenceRe   = regexp.MustCompile(`^(\t*)'''[ \t]*$`)
	objectRe  = regexp.MustCompile(`^\{\{\{([^:\s}]+):[ \t]*(.*)$`)
	bulletRe  = regexp.MustCompile(`^(\t*)(\*|\[[ *x]\]|\d+\.|[A-Za-z]\.)[ \t]+(.*)$`)
	attrRe    = regexp.MustCompile(`([\w-]+)="([^"]*)"`)
)

// Parser reads wiki notation into a page tree.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse builds the tree for a complete page. The event stream the
// scanner produces is well formed by construction, so it feeds a
// Builder directly.
func (p *Parser) Parse(text string) (*tree.Tree, error) {
	b := tree.NewBuilder()
	if err := emitBlocks(b, text); err != nil {
		return nil, err
	}
	return b.Tree()
}

// emitBlocks scans text line by line and sends the resulting events to
// v. Blank lines become tail text between blocks.
func emitBlocks(v tree.Visitor, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if _, err := v.Start(tree.TagRoot, nil); err != nil {
		return err
	}

	lines := strings.Split(text, "\n")
	// A trailing newline yields an empty final element, not a line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		var err error
		switch {
		case strings.TrimSpace(line) == "":
			err = v.Text(line + "\n")
			i++
		case fenceRe.MatchString(line):
			i, err = emitPre(v, lines, i)
		case objectRe.MatchString(line):
			i, err = emitObject(v, lines, i)
		case headingRe.MatchString(line):
			err = emitHeading(v, line)
			i++
		case bulletRe.MatchString(line):
			i, err = emitList(v, lines, i)
		default:
			i, err = emitParagraph(v, lines, i)
		}
		if err != nil {
			return err
		}
	}
	return v.End(tree.TagRoot)
}

// emitHeading parses one heading line. Six markers make a level one
// heading, two make level five; longer runs clamp to level one.
func emitHeading(v tree.Visitor, line string) error {
	m := headingRe.FindStringSubmatch(line)
	level := 7 - len(m[1])
	if level < 1 {
		level = 1
	}
	attrs := tree.Attrs{{Key: tree.AttrLevel, Value: strconv.Itoa(level)}}
	if _, err := v.Start(tree.TagHeading, attrs); err != nil {
		return err
	}
	if err := emitInline(v, m[2]); err != nil {
		return err
	}
	return v.End(tree.TagHeading)
}

// emitPre consumes a ''' fenced block. A missing closing fence swallows
// the rest of the page.
func emitPre(v tree.Visitor, lines []string, start int) (int, error) {
	m := fenceRe.FindStringSubmatch(lines[start])
	indent := len(m[1])

	var body strings.Builder
	i := start + 1
	for ; i < len(lines); i++ {
		if fenceRe.MatchString(lines[i]) {
			i++
			break
		}
		body.WriteString(stripIndent(lines[i], indent))
		body.WriteByte('\n')
	}

	var attrs tree.Attrs
	if indent > 0 {
		attrs = tree.Attrs{{Key: tree.AttrIndent, Value: strconv.Itoa(indent)}}
	}
	_, err := v.Append(tree.TagVerbatimBlock, attrs, body.String())
	return i, err
}

// emitObject consumes a {{{type: block. The rest of the opening line
// holds key="value" pairs; the payload runs until the }}} line.
func emitObject(v tree.Visitor, lines []string, start int) (int, error) {
	m := objectRe.FindStringSubmatch(lines[start])
	attrs := tree.Attrs{{Key: tree.AttrType, Value: m[1]}}
	for _, kv := range attrRe.FindAllStringSubmatch(m[2], -1) {
		attrs.Set(kv[1], kv[2])
	}

	var body strings.Builder
	i := start + 1
	for ; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == "}}}" {
			i++
			break
		}
		body.WriteString(lines[i])
		body.WriteByte('\n')
	}
	_, err := v.Append(tree.TagObject, attrs, body.String())
	return i, err
}

// emitList consumes a run of list lines. Tab indent nests; a nested
// list is a child of the enclosing list, next to its items. Indent
// jumps open one list per missing level.
func emitList(v tree.Visitor, lines []string, start int) (int, error) {
	type openList struct {
		tag    tree.Tag
		indent int
	}
	var stack []openList

	closeTop := func() error {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v.End(top.tag)
	}

	i := start
	for ; i < len(lines); i++ {
		m := bulletRe.FindStringSubmatch(lines[i])
		if m == nil {
			break
		}
		indent, marker, rest := len(m[1]), m[2], m[3]

		kind := tree.TagBulletList
		if marker[0] != '*' && marker[0] != '[' {
			kind = tree.TagNumberedList
		}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.indent > indent || (top.indent == indent && top.tag != kind) {
				if err := closeTop(); err != nil {
					return i, err
				}
				continue
			}
			break
		}
		for len(stack) == 0 || stack[len(stack)-1].indent < indent {
			level := 0
			if len(stack) > 0 {
				level = stack[len(stack)-1].indent + 1
			}
			var attrs tree.Attrs
			if kind == tree.TagNumberedList && level == indent {
				attrs = tree.Attrs{{Key: tree.AttrStart, Value: strings.TrimSuffix(marker, ".")}}
			}
			if _, err := v.Start(kind, attrs); err != nil {
				return i, err
			}
			stack = append(stack, openList{tag: kind, indent: level})
		}

		var attrs tree.Attrs
		if kind == tree.TagBulletList {
			attrs = tree.Attrs{{Key: tree.AttrBullet, Value: bulletValue(marker)}}
		}
		// The line break after an item is implied; dumpers add it back.
		if _, err := v.Start(tree.TagListItem, attrs); err != nil {
			return i, err
		}
		if err := emitInline(v, rest); err != nil {
			return i, err
		}
		if err := v.End(tree.TagListItem); err != nil {
			return i, err
		}
	}

	for len(stack) > 0 {
		if err := closeTop(); err != nil {
			return i, err
		}
	}
	return i, nil
}

// emitParagraph consumes a run of plain lines of equal indent.
func emitParagraph(v tree.Visitor, lines []string, start int) (int, error) {
	indent := countIndent(lines[start])
	i := start
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" ||
			fenceRe.MatchString(line) ||
			objectRe.MatchString(line) ||
			headingRe.MatchString(line) ||
			bulletRe.MatchString(line) ||
			countIndent(line) != indent {
			break
		}
	}

	var attrs tree.Attrs
	if indent > 0 {
		attrs = tree.Attrs{{Key: tree.AttrIndent, Value: strconv.Itoa(indent)}}
	}
	if _, err := v.Start(tree.TagParagraph, attrs); err != nil {
		return i, err
	}
	for j := start; j < i; j++ {
		if err := emitInline(v, stripIndent(lines[j], indent)); err != nil {
			return i, err
		}
		if err := v.Text("\n"); err != nil {
			return i, err
		}
	}
	return i, v.End(tree.TagParagraph)
}

func bulletValue(marker string) string {
	switch marker {
	case "[ ]":
		return tree.UncheckedBox
	case "[*]":
		return tree.CheckedBox
	case "[x]":
		return tree.XCheckedBox
	}
	return tree.BulletNormal
}

func countIndent(line string) int {
	n := 0
	for n < len(line) && line[n] == '\t' {
		n++
	}
	return n
}

func stripIndent(line string, n int) string {
	for i := 0; i < n && strings.HasPrefix(line, "\t"); i++ {
		line = line[1:]
	}
	return line
}
