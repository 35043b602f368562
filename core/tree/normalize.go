package tree

import (
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
)

// Normalizer builds a Tree from a dirty event stream, repairing it on
// the fly. The main source of dirty streams is the editor buffer, but it
// serves any producer that cannot guarantee well formed events.
//
// Repairs performed:
//
//   - elements that may not span lines (headings, inline formatting) are
//     split into one element per line
//   - elements that are empty or whitespace-only are dropped, except for
//     img and object which carry their payload in attributes
//   - a heading is preceded by an empty line, p and pre start on a fresh
//     line and end with a newline
//   - a newline directly following a list item is removed
//   - _ignore_ regions are dropped while their content is kept
//   - missing mandatory attributes are substituted with sentinel values
//
// A mismatched end tag is not repaired; it fails the whole build.
type Normalizer struct {
	root  *Node
	stack []*Node // open elements

	last    *Node    // element last opened, closed or split
	data    []string // pending text, not yet attached
	tail    bool     // pending text belongs after last, not inside it
	seenEOL int      // newlines trailing the flushed output so far
	repairs []error
	done    bool
}

// NewNormalizer returns a normalizer for a fresh event stream.
func NewNormalizer() *Normalizer {
	// seenEOL starts satisfied so the first element needs no separator.
	return &Normalizer{seenEOL: 2}
}

// Repairs returns the attribute repairs performed so far, one
// AttributeError per substituted sentinel.
func (n *Normalizer) Repairs() []error {
	return n.repairs
}

// Start opens an element. Headings demand an empty line before them,
// p and pre a fresh line; missing separation is padded in. A heading
// without a level and a link without a target get sentinel attributes.
func (n *Normalizer) Start(tag Tag, attrs Attrs) (VisitResult, error) {
	if n.done {
		return VisitStop, errors.NewStructural(string(tag), "builder already closed")
	}
	if tag == TagIgnore {
		return VisitContinue, nil
	}

	var err error
	switch tag {
	case TagHeading:
		err = n.flush(2)
	case TagParagraph, TagVerbatimBlock:
		err = n.flush(1)
	default:
		err = n.flush(0)
	}
	if err != nil {
		return VisitStop, err
	}

	attrs = attrs.Copy()
	switch tag {
	case TagHeading:
		if !attrs.Has(AttrLevel) {
			n.repair(tag, AttrLevel, "1")
			attrs.Set(AttrLevel, "1")
		}
	case TagLink:
		if !attrs.Has(AttrHref) {
			n.repair(tag, AttrHref, "404")
			attrs.Set(AttrHref, "404")
		}
	}

	elem := NewNode(tag, attrs)
	if len(n.stack) > 0 {
		n.stack[len(n.stack)-1].Append(elem)
	} else {
		if n.root != nil {
			return VisitStop, errors.NewStructural(string(tag), "content after root element")
		}
		if tag != TagRoot {
			return VisitStop, errors.NewStructural(string(tag), "root element must be zim-tree")
		}
		n.root = elem
	}
	n.stack = append(n.stack, elem)
	n.last = elem
	n.tail = false
	return VisitContinue, nil
}

// Text buffers text content. All repair happens on flush.
func (n *Normalizer) Text(text string) error {
	if n.done {
		return errors.NewStructural("", "builder already closed")
	}
	if text != "" {
		n.data = append(n.data, text)
	}
	return nil
}

// End closes the innermost open element, dropping it when it turned out
// empty. Whitespace held by a dropped element is reattached to the
// previous sibling's tail, and the sibling (or the parent's text) is
// reopened for further content.
func (n *Normalizer) End(tag Tag) error {
	if n.done {
		return errors.NewStructural(string(tag), "builder already closed")
	}
	if tag == TagIgnore {
		return nil
	}

	var err error
	switch tag {
	case TagParagraph, TagVerbatimBlock:
		err = n.flush(1)
	default:
		err = n.flush(0)
	}
	if err != nil {
		return err
	}

	if len(n.stack) == 0 {
		return errors.NewMismatchedTag(string(tag), "")
	}
	top := n.stack[len(n.stack)-1]
	if top.Tag != tag {
		return errors.NewMismatchedTag(string(tag), string(top.Tag))
	}
	n.last = top
	n.tail = true

	if len(n.stack) > 1 && !top.Tag.IsVoid() &&
		strings.TrimSpace(top.Text) == "" && len(top.Children) == 0 {
		// Drop the empty element, keeping any whitespace it held.
		if top.Text != "" {
			n.appendToPrevious(top.Text)
		}
		n.stack = n.stack[:len(n.stack)-1]
		parent := n.stack[len(n.stack)-1]
		parent.Remove(top)

		// Reopen the previous sibling's tail, or the parent's text, so
		// content on both sides of the dropped element joins up.
		if prev := parent.LastChild(); prev != nil {
			n.last = prev
			if prev.Tail != "" {
				n.data = append(n.data[:0], prev.Tail)
				prev.Tail = ""
			}
		} else {
			n.last = parent
			if parent.Text != "" {
				n.data = append(n.data[:0], parent.Text)
				parent.Text = ""
			}
			n.tail = false
		}
		return nil
	}

	n.stack = n.stack[:len(n.stack)-1]
	return nil
}

// Append adds a complete childless element in one event.
func (n *Normalizer) Append(tag Tag, attrs Attrs, text string) (VisitResult, error) {
	res, err := n.Start(tag, attrs)
	if err != nil {
		return res, err
	}
	if text != "" {
		if err := n.Text(text); err != nil {
			return VisitStop, err
		}
	}
	if err := n.End(tag); err != nil {
		return VisitStop, err
	}
	return VisitContinue, nil
}

// Tree returns the repaired tree. The normalizer can not be used
// afterwards.
func (n *Normalizer) Tree() (*Tree, error) {
	if n.done {
		return nil, errors.NewStructural("", "builder already closed")
	}
	if len(n.stack) > 0 {
		open := n.stack[len(n.stack)-1]
		return nil, errors.NewStructural(string(open.Tag), "missing end tag")
	}
	if n.root == nil {
		return nil, errors.NewStructural("", "missing root element")
	}
	n.done = true
	return &Tree{Root: n.root}, nil
}

// flush attaches pending text at an element boundary, applying the
// newline and line splitting repairs. needEOL is the number of newlines
// the output must end with before the next element may open.
func (n *Normalizer) flush(needEOL int) error {
	text := strings.Join(n.data, "")

	// A newline opening a heading's own text is dropped; the separation
	// before the heading is handled by padding, never by its content.
	if !n.tail && n.last != nil && n.last.Tag == TagHeading &&
		strings.HasPrefix(text, "\n") {
		text = text[1:]
	}

	if text != "" {
		trailing := countTrailingNewlines(text)
		if trailing == len(text) {
			// Pure newlines extend the run already flushed; counting
			// them alone would pad separators that are already there.
			n.seenEOL += trailing
		} else {
			n.seenEOL = trailing
		}
	}
	if needEOL > n.seenEOL {
		text += strings.Repeat("\n", needEOL-n.seenEOL)
		n.seenEOL = needEOL
	}

	// Fix prefix newlines. After a closed heading or paragraph the tail
	// must open with a line break; directly after a list item a leading
	// newline is surplus.
	if n.tail && n.last != nil &&
		(n.last.Tag == TagHeading || n.last.Tag == TagParagraph) &&
		!strings.HasPrefix(text, "\n") {
		if text != "" {
			text = "\n" + text
		} else {
			text = "\n"
			n.seenEOL = 1
		}
	} else if n.tail && n.last != nil && n.last.Tag == TagListItem &&
		strings.HasPrefix(text, "\n") {
		text = text[1:]
		if strings.Trim(text, "\n") == "" {
			n.seenEOL--
		}
	}

	if text == "" {
		n.data = n.data[:0]
		return nil
	}
	if n.last == nil {
		return errors.NewStructural("", "content before root element")
	}
	n.data = n.data[:0]

	if !n.tail && noNewlineTags[n.last.Tag] {
		// The open element may not span lines: split it into one sibling
		// copy per non-blank line. Trailing newlines stay in the buffer
		// and blank lines merge into the preceding tail instead of
		// producing elements.
		if n.seenEOL > 0 {
			text = strings.TrimRight(text, "\n")
			n.data = append(n.data, strings.Repeat("\n", n.seenEOL))
			n.seenEOL = 0
		}
		lines := strings.Split(text, "\n")
		for _, line := range lines[:len(lines)-1] {
			if strings.TrimSpace(line) != "" {
				n.last.Text = line
				n.last.Tail = "\n"
				sibling := NewNode(n.last.Tag, n.last.Attrs.Copy())
				n.stack[len(n.stack)-2].Append(sibling)
				n.stack[len(n.stack)-1] = sibling
				n.last = sibling
			} else {
				n.appendToPrevious(line + "\n")
			}
		}
		n.last.Text = lines[len(lines)-1]
	} else {
		if n.tail {
			n.last.Tail = text
		} else {
			n.last.Text = text
		}
	}
	return nil
}

// appendToPrevious adds text before the current element, on the tail of
// the nearest preceding sibling or, failing that, the parent's text.
func (n *Normalizer) appendToPrevious(text string) {
	parent := n.stack[len(n.stack)-2]
	children := parent.Children[:len(parent.Children)-1]
	if len(children) > 0 {
		children[len(children)-1].Tail += text
	} else {
		parent.Text += text
	}
}

func (n *Normalizer) repair(tag Tag, attr, sentinel string) {
	n.repairs = append(n.repairs, errors.NewMissingAttr(string(tag), attr, sentinel))
	logging.AttrRepaired(string(tag), attr, sentinel)
}

func countTrailingNewlines(s string) int {
	count := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\n'; i-- {
		count++
	}
	return count
}
