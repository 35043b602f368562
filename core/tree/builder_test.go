package tree

import (
	"strings"
	"testing"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
)

// feed drives a builder with a compact event script. Each step is either
// "+tag" (start), "-tag" (end), "=tag text" (append) or plain text.
func feed(t *testing.T, v Visitor, steps ...string) {
	t.Helper()
	for _, step := range steps {
		var err error
		switch {
		case strings.HasPrefix(step, "+"):
			_, err = v.Start(Tag(step[1:]), nil)
		case strings.HasPrefix(step, "-"):
			err = v.End(Tag(step[1:]))
		case strings.HasPrefix(step, "="):
			rest := step[1:]
			tag, text, _ := strings.Cut(rest, " ")
			_, err = v.Append(Tag(tag), nil, text)
		default:
			err = v.Text(step)
		}
		if err != nil {
			t.Fatalf("step %q: %v", step, err)
		}
	}
}

func TestBuilderSimplePage(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Start(TagRoot, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Start(TagHeading, Attrs{{AttrLevel, "1"}}); err != nil {
		t.Fatal(err)
	}
	feed(t, b, "Title\n", "-h", "+p", "para\n", "-p", "-zim-tree")

	tr, err := b.Tree()
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}

	root := tr.Root
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	h, p := root.Children[0], root.Children[1]
	if h.Text != "Title" {
		t.Errorf("heading text = %q, want %q (newlines implied)", h.Text, "Title")
	}
	if h.Tail != "\n" {
		t.Errorf("heading tail = %q, want single newline", h.Tail)
	}
	if p.Text != "para\n" {
		t.Errorf("paragraph text = %q, want %q", p.Text, "para\n")
	}
}

func TestBuilderAddsBlockNewline(t *testing.T) {
	b := NewBuilder()
	feed(t, b, "+zim-tree", "+p", "no newline", "-p", "-zim-tree")

	tr, err := b.Tree()
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.Root.Children[0].Text; got != "no newline\n" {
		t.Errorf("paragraph text = %q, want terminating newline appended", got)
	}
}

func TestPartialBuilderKeepsMissingNewline(t *testing.T) {
	b := NewPartialBuilder()
	feed(t, b, "+zim-tree", "+p", "no newline", "-p", "-zim-tree")

	tr, err := b.Tree()
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.Root.Children[0].Text; got != "no newline" {
		t.Errorf("paragraph text = %q, want %q", got, "no newline")
	}
}

func TestBuilderStripsHeadingNewlines(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Start(TagRoot, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Append(TagHeading, Attrs{{AttrLevel, "2"}}, "\nDeep\n"); err != nil {
		t.Fatal(err)
	}
	feed(t, b, "-zim-tree")

	tr, err := b.Tree()
	if err != nil {
		t.Fatal(err)
	}
	h := tr.Root.Children[0]
	if h.Text != "Deep" {
		t.Errorf("heading text = %q, want %q", h.Text, "Deep")
	}
	if h.Tail != "\n" {
		t.Errorf("heading tail = %q, want %q", h.Tail, "\n")
	}
}

func TestBuilderMismatchedEnd(t *testing.T) {
	b := NewBuilder()
	feed(t, b, "+zim-tree", "+p")

	err := b.End(TagStrong)
	if err == nil {
		t.Fatal("End(strong) inside p: error = nil, want mismatch")
	}
	if !errors.Is(err, errors.ErrStructure) {
		t.Errorf("error = %v, want ErrStructure kind", err)
	}
	var structural *errors.StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("error %T does not unwrap to StructuralError", err)
	}
	if structural.Tag != "strong" || structural.Expected != "p" {
		t.Errorf("got </%s> expected </%s>, want </strong> and </p>", structural.Tag, structural.Expected)
	}
}

func TestBuilderRequiresRoot(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Start(TagParagraph, nil); err == nil {
		t.Error("Start(p) as first element: error = nil, want structural error")
	}
}

func TestBuilderMissingEndTag(t *testing.T) {
	b := NewBuilder()
	feed(t, b, "+zim-tree", "+p", "text\n")

	if _, err := b.Tree(); err == nil {
		t.Error("Tree() with open elements: error = nil, want structural error")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := NewBuilder()
	feed(t, b, "+zim-tree", "-zim-tree")

	if _, err := b.Tree(); err != nil {
		t.Fatalf("first Tree() error = %v", err)
	}
	if _, err := b.Tree(); err == nil {
		t.Error("second Tree() error = nil, want rejection")
	}
	if _, err := b.Start(TagParagraph, nil); err == nil {
		t.Error("Start after Tree(): error = nil, want rejection")
	}
}

func TestBuilderRoundTripsVisit(t *testing.T) {
	src := fixtureTree()

	b := NewBuilder()
	if err := src.Visit(b); err != nil {
		t.Fatalf("Visit(builder) error = %v", err)
	}
	rebuilt, err := b.Tree()
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}

	if got, want := rebuilt.ToXML(), src.ToXML(); got != want {
		t.Errorf("rebuilt tree differs:\ngot  %q\nwant %q", got, want)
	}
}
