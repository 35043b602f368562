// Package dump drives a tree traversal into formatted text output.
//
// A format's dumper is a Dumper with its wrap table, tag handlers and
// escaping hook filled in. The machinery keeps the frame stack, copies
// attributes at every handoff and turns unhandled tags into errors
// instead of silent omissions.
package dump

import (
	"strconv"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Wrap is a literal start/end pair placed around the rendered content
// of an inline element.
type Wrap struct {
	Start string
	End   string
}

// Handler renders one element into output fragments. attrs is the
// element's own copy and may be modified freely. content holds the
// rendered fragments of the element body, nil for an element without
// content. Returning a nil slice with a nil error emits nothing.
type Handler func(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error)

// frame accumulates the output of one open element.
type frame struct {
	tag   tree.Tag
	attrs tree.Attrs
	parts []string
}

// Options configure a dumper independently of its format.
type Options struct {
	// Linker translates link targets, image sources and icon names to
	// output URLs. Nil leaves them as written.
	Linker Linker

	// Objects resolves typed objects to per-format renderings. Nil
	// sends every object to the format's fallback handler.
	Objects *Registry

	// Template carries free-form rendering options from the caller,
	// e.g. the latex document class.
	Template map[string]string
}

// Dumper turns a tree into lines of formatted text. It implements
// tree.Visitor; formats embed it and fill in the tables.
//
// The frame stack is reset by Dump, so one Dumper can render any
// number of trees in sequence. It must not be shared between
// goroutines.
type Dumper struct {
	// Format is the canonical name of the target format. Object
	// renderings are selected by it.
	Format string

	Linker   Linker
	Objects  *Registry
	Template map[string]string

	// Wraps maps inline tags to their literal start/end sequences.
	Wraps map[tree.Tag]Wrap

	// Handlers maps the remaining tags to rendering functions. A tag
	// with neither a wrap nor a handler fails the dump with an
	// UnknownTagError.
	Handlers map[tree.Tag]Handler

	// Encode escapes a text chunk for the output format. It receives
	// the tag of the element holding the text, so formats can leave
	// verbatim content alone. Nil is identity.
	Encode func(tag tree.Tag, text string) string

	// ObjectFallback renders objects the registry has no rendering
	// for. Nil fails the dump when such an object is reached.
	ObjectFallback Handler

	// IsRTL reports whether text opens in a right-to-left script.
	// Nil leaves direction detection off.
	IsRTL func(text string) bool

	stack []frame
}

// New returns a Dumper for the named format with the given options.
// The format fills in its tables after construction.
func New(format string, opts Options) *Dumper {
	return &Dumper{
		Format:   format,
		Linker:   opts.Linker,
		Objects:  opts.Objects,
		Template: opts.Template,
	}
}

// Dump renders the tree and returns the output as lines, each line
// ending in its own terminator.
func (d *Dumper) Dump(t *tree.Tree) ([]string, error) {
	d.stack = d.stack[:0]
	d.stack = append(d.stack, frame{})
	if err := t.Visit(d); err != nil {
		return nil, err
	}
	if len(d.stack) != 1 {
		return nil, errors.NewStructural(string(d.stack[len(d.stack)-1].tag), "unclosed tags on tree")
	}
	return d.GetLines(), nil
}

// GetLines returns the accumulated output split into lines, each line
// keeping its terminator. Only meaningful after the root element
// closed.
func (d *Dumper) GetLines() []string {
	if len(d.stack) == 0 {
		return nil
	}
	return SplitLines(strings.Join(d.stack[0].parts, ""))
}

// Start pushes a frame for tag. The attribute list is copied so
// handlers can never touch the live tree.
func (d *Dumper) Start(tag tree.Tag, attrs tree.Attrs) (tree.VisitResult, error) {
	d.stack = append(d.stack, frame{tag: tag, attrs: attrs.Copy()})
	return tree.VisitContinue, nil
}

// Text encodes the chunk and appends it to the current frame.
func (d *Dumper) Text(text string) error {
	top := &d.stack[len(d.stack)-1]
	top.parts = append(top.parts, d.encode(top.tag, text))
	return nil
}

// End pops the frame for tag and renders it into the parent frame.
func (d *Dumper) End(tag tree.Tag) error {
	if len(d.stack) < 2 {
		return errors.NewMismatchedTag(string(tag), "")
	}
	top := d.stack[len(d.stack)-1]
	if top.tag != tag {
		return errors.NewMismatchedTag(string(tag), string(top.tag))
	}
	d.stack = d.stack[:len(d.stack)-1]

	parts := top.parts
	if wrap, ok := d.Wraps[tag]; ok {
		if len(parts) == 0 {
			return errors.NewStructural(string(tag), "empty element")
		}
		parts = append([]string{wrap.Start}, parts...)
		parts = append(parts, wrap.End)
	} else if tag != tree.TagRoot {
		out, err := d.dispatch(tag, top.attrs, parts)
		if err != nil {
			return err
		}
		parts = out
	}

	parent := &d.stack[len(d.stack)-1]
	parent.parts = append(parent.parts, parts...)
	return nil
}

// Append renders a childless node in one step.
func (d *Dumper) Append(tag tree.Tag, attrs tree.Attrs, text string) (tree.VisitResult, error) {
	var parts []string
	if wrap, ok := d.Wraps[tag]; ok {
		if text != "" {
			parts = []string{wrap.Start, d.encode(tag, text), wrap.End}
		}
	} else if tag == tree.TagRoot {
		if text != "" {
			parts = []string{d.encode(tag, text)}
		}
	} else {
		var content []string
		if text != "" {
			content = []string{d.encode(tag, text)}
		}
		out, err := d.dispatch(tag, attrs.Copy(), content)
		if err != nil {
			return tree.VisitStop, err
		}
		parts = out
	}
	top := &d.stack[len(d.stack)-1]
	top.parts = append(top.parts, parts...)
	return tree.VisitContinue, nil
}

// dispatch renders a popped element through its handler. Objects with
// no explicit handler go through the registry.
func (d *Dumper) dispatch(tag tree.Tag, attrs tree.Attrs, content []string) ([]string, error) {
	if h, ok := d.Handlers[tag]; ok {
		return h(tag, attrs, content)
	}
	if tag == tree.TagObject {
		return d.dumpObject(attrs, content)
	}
	return nil, errors.NewUnknownTag(d.Format, string(tag))
}

// dumpObject resolves a typed object through the registry and falls
// back to the format's generic object handler when the registry has no
// rendering for it.
func (d *Dumper) dumpObject(attrs tree.Attrs, content []string) ([]string, error) {
	if typ, ok := attrs.Lookup(tree.AttrType); ok && d.Objects != nil {
		if obj, ok := d.Objects.Get(typ, attrs, strings.Join(content, "")); ok {
			if out, ok := obj.Render(d.Format, d, d.Linker); ok {
				return []string{out}, nil
			}
		}
	}
	if d.ObjectFallback == nil {
		return nil, errors.NewUnknownTag(d.Format, string(tree.TagObject))
	}
	return d.ObjectFallback(tree.TagObject, attrs, content)
}

func (d *Dumper) encode(tag tree.Tag, text string) string {
	if d.Encode == nil {
		return text
	}
	return d.Encode(tag, text)
}

// ParentTag returns the tag of the innermost open frame. During a
// handler call that is the parent of the element being rendered.
func (d *Dumper) ParentTag() tree.Tag {
	return d.stack[len(d.stack)-1].tag
}

// ParentAttrs returns the attributes of the innermost open frame. The
// frame holds its own copy, so handlers are free to keep rendering
// state in it, e.g. the running marker of a numbered list.
func (d *Dumper) ParentAttrs() *tree.Attrs {
	return &d.stack[len(d.stack)-1].attrs
}

// CountOpen returns the number of open frames carrying any of the
// given tags. List handlers derive their nesting depth from it.
func (d *Dumper) CountOpen(tags ...tree.Tag) int {
	count := 0
	for _, f := range d.stack {
		for _, tag := range tags {
			if f.tag == tag {
				count++
				break
			}
		}
	}
	return count
}

// SplitLines splits text into lines, each keeping its terminator. A
// final line without one is returned as is; empty text yields nothing.
func SplitLines(text string) []string {
	var lines []string
	for text != "" {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return append(lines, text)
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return lines
}

// PrefixLines joins fragments, splits them back into lines and puts
// prefix in front of each. Used for indent and quoting constructs.
func PrefixLines(prefix string, fragments []string) []string {
	lines := SplitLines(strings.Join(fragments, ""))
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return lines
}

// listLetters is the marker alphabet of lettered lists, lowercase
// before uppercase.
const listLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NextListIter returns the marker following the given one in a
// numbered list. Numbers count up, letters advance through lowercase
// into uppercase and wrap from "Z" back to "a". Markers that are
// neither are reported as not advanceable.
func NextListIter(marker string) (string, bool) {
	if n, err := strconv.Atoi(marker); err == nil {
		return strconv.Itoa(n + 1), true
	}
	i := strings.Index(listLetters, marker)
	if i < 0 {
		return "", false
	}
	if i+1 >= len(listLetters) {
		return listLetters[:1], true
	}
	return listLetters[i+1 : i+2], true
}

// BulletMarker maps a list item bullet value to its text notation.
// Unknown values pass through so exotic bullets survive a round trip.
func BulletMarker(bullet string) string {
	switch bullet {
	case tree.UncheckedBox:
		return "[ ]"
	case tree.CheckedBox:
		return "[*]"
	case tree.XCheckedBox:
		return "[x]"
	case "", tree.BulletNormal:
		return "*"
	}
	return bullet
}

// NumberedMarker returns the marker for the current item of a numbered
// list, "1." style, and advances the running counter. The counter lives
// on the parent frame under a hidden key, so the start attribute of the
// tree is never touched.
func (d *Dumper) NumberedMarker() string {
	parent := d.ParentAttrs()
	iter := parent.Get("_iter")
	if iter == "" {
		iter = parent.Get(tree.AttrStart)
		if iter == "" {
			iter = "1"
		}
	}
	if next, ok := NextListIter(iter); ok {
		parent.Set("_iter", next)
	} else {
		parent.Set("_iter", iter)
	}
	return iter + "."
}
