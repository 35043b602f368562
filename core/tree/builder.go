package tree

import (
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
)

// Builder assembles a Tree from a well formed event stream. It enforces
// the invariants a trusted source must already satisfy: block level
// content ends with a newline and a heading is followed by exactly one.
// Event streams from untrusted sources go through a Normalizer instead.
//
// A Builder is single use; it rejects events after Tree has been called.
type Builder struct {
	partial bool

	root  *Node
	stack []*Node // open elements

	data     []string // pending text, not yet attached
	last     *Node    // element last opened or closed
	tail     bool     // pending text belongs after last, not inside it
	lastChar byte     // last byte of text seen in the current block, 0 if none
	done     bool
}

// NewBuilder returns a builder for a complete page.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewPartialBuilder returns a builder for a page fragment, such as a
// paste buffer. Partial content may end without a trailing newline.
func NewPartialBuilder() *Builder {
	return &Builder{partial: true}
}

// Start opens an element. The first element must be the zim-tree root.
func (b *Builder) Start(tag Tag, attrs Attrs) (VisitResult, error) {
	if b.done {
		return VisitStop, errors.NewStructural(string(tag), "builder already closed")
	}
	b.flush()

	elem := NewNode(tag, attrs.Copy())
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].Append(elem)
	} else {
		if b.root != nil {
			return VisitStop, errors.NewStructural(string(tag), "content after root element")
		}
		if tag != TagRoot {
			return VisitStop, errors.NewStructural(string(tag), "root element must be zim-tree")
		}
		b.root = elem
	}
	b.stack = append(b.stack, elem)
	b.last = elem
	b.tail = false
	if tag.IsBlockLevel() {
		b.lastChar = 0
	}
	return VisitContinue, nil
}

// Text buffers text content for the innermost open element. Headings and
// list items never keep surrounding newlines; their line break is implied.
func (b *Builder) Text(text string) error {
	if b.done {
		return errors.NewStructural("", "builder already closed")
	}
	if text == "" {
		return nil
	}
	b.lastChar = text[len(text)-1]

	if len(b.stack) > 0 {
		switch b.stack[len(b.stack)-1].Tag {
		case TagHeading, TagListItem:
			text = strings.Trim(text, "\n")
		}
	}
	b.data = append(b.data, text)
	return nil
}

// End closes the innermost open element. Closing any other tag is a
// structural error. Block level elements get their terminating newline
// appended when the source left it out; a closed heading is always
// followed by exactly one newline.
func (b *Builder) End(tag Tag) error {
	if b.done {
		return errors.NewStructural(string(tag), "builder already closed")
	}
	if len(b.stack) == 0 {
		return errors.NewMismatchedTag(string(tag), "")
	}
	top := b.stack[len(b.stack)-1]
	if top.Tag != tag {
		return errors.NewMismatchedTag(string(tag), string(top.Tag))
	}

	if tag.IsBlockLevel() && b.lastChar != 0 && !b.partial {
		if b.lastChar != '\n' && tag != TagHeading && tag != TagListItem {
			b.data = append(b.data, "\n")
		}
	}
	b.flush()
	b.stack = b.stack[:len(b.stack)-1]
	b.last = top
	b.tail = true

	if tag == TagHeading {
		b.data = append(b.data, "\n")
	}
	b.lastChar = 0
	return nil
}

// Append adds a complete childless element in one event.
func (b *Builder) Append(tag Tag, attrs Attrs, text string) (VisitResult, error) {
	if b.done {
		return VisitStop, errors.NewStructural(string(tag), "builder already closed")
	}
	if tag.IsBlockLevel() && text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if text != "" && (tag == TagHeading || tag == TagListItem) {
		text = strings.Trim(text, "\n")
	}

	b.flush()
	elem := NewNode(tag, attrs.Copy())
	if len(b.stack) > 0 {
		b.stack[len(b.stack)-1].Append(elem)
	} else {
		if b.root != nil {
			return VisitStop, errors.NewStructural(string(tag), "content after root element")
		}
		if tag != TagRoot {
			return VisitStop, errors.NewStructural(string(tag), "root element must be zim-tree")
		}
		b.root = elem
	}
	elem.Text = text
	b.last = elem
	b.tail = true

	if tag == TagHeading {
		b.data = append(b.data, "\n")
	}
	b.lastChar = 0
	return VisitContinue, nil
}

// Tree returns the finished tree. The builder can not be used afterwards.
func (b *Builder) Tree() (*Tree, error) {
	if b.done {
		return nil, errors.NewStructural("", "builder already closed")
	}
	if len(b.stack) > 0 {
		open := b.stack[len(b.stack)-1]
		return nil, errors.NewStructural(string(open.Tag), "missing end tag")
	}
	if b.root == nil {
		return nil, errors.NewStructural("", "missing root element")
	}
	b.done = true
	return &Tree{Root: b.root}, nil
}

// flush attaches pending text to the last element, as body text when the
// element is still open and as tail text when it has been closed. Text
// seen before the root element is dropped.
func (b *Builder) flush() {
	if len(b.data) == 0 {
		return
	}
	if b.last != nil {
		text := strings.Join(b.data, "")
		if text != "" {
			if b.tail {
				b.last.Tail += text
			} else {
				b.last.Text += text
			}
		}
	}
	b.data = b.data[:0]
}
