package plain

import (
	"strings"
	"testing"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/format"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
	"github.com/ggfazio/zim-desktop-wiki/core/wiki"
)

const prolog = "<?xml version='1.0' encoding='utf-8'?>\n"

func parseToXML(t *testing.T, src string) string {
	t.Helper()
	tr, err := NewParser().Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tr.ToXML()
}

func dumpAll(t *testing.T, tr *tree.Tree) string {
	t.Helper()
	lines, err := NewDumper(dump.Options{}).Dump(tr)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	return strings.Join(lines, "")
}

func dumpWikiSource(t *testing.T, src string) string {
	t.Helper()
	tr, err := wiki.NewParser().Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return dumpAll(t, tr)
}

func TestParseKeepsMarkupLiteral(t *testing.T) {
	want := prolog + "<zim-tree><p>**x** [[link]]\n</p></zim-tree>"
	if got := parseToXML(t, "**x** [[link]]\n"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseAutoLink(t *testing.T) {
	want := prolog + `<zim-tree><p>See <link href="http://x.org">http://x.org</link>.` +
		"\n</p></zim-tree>"
	if got := parseToXML(t, "See http://x.org.\n"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseParagraphs(t *testing.T) {
	want := prolog + "<zim-tree><p>a\nb\n</p>\n<p>c\n</p></zim-tree>"
	if got := parseToXML(t, "a\nb\n\nc\n"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"just text\n\nmore text\n",
		"See http://x.org now\n",
		"mail bob@example.org\n",
	}
	for _, src := range sources {
		tr, err := NewParser().Parse(src)
		if err != nil {
			t.Errorf("%q: Parse: %v", src, err)
			continue
		}
		if got := dumpAll(t, tr); got != src {
			t.Errorf("round trip changed %q into %q", src, got)
		}
	}
}

// TestDumpStripsWikiMarkup renders wiki pages as plain text.
func TestDumpStripsWikiMarkup(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"Text **bold**, //it//, ''c'' end.\n", "Text bold, it, c end.\n"},
		{"====== Top ======\n\nbody\n", "Top\n\nbody\n"},
		{"* a\n\t* b\n1. c\n", "* a\n\t* b\n1. c\n"},
		{"x_{2} and y^{3}\n", "x_{2} and y^{3}\n"},
		{"see @home\n", "see @home\n"},
		{"[[Page:Name|the page]]\n", "the page\n"},
		{"{{pic.png?width=4|a shot}}\n", "a shot\n"},
		{"{{{code: lang=\"x\"\npayload line\n}}}\n", "payload line\n"},
	}
	for _, c := range cases {
		if got := dumpWikiSource(t, c.src); got != c.want {
			t.Errorf("%q: got %q, want %q", c.src, got, c.want)
		}
	}
}

func TestDumpLinkTextOrHref(t *testing.T) {
	tr, err := tree.FromXML(`<zim-tree><link href="Page">label</link> <link href="Other" /></zim-tree>`)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	if got := dumpAll(t, tr); got != "label Other" {
		t.Errorf("got %q, want %q", got, "label Other")
	}
}

func TestDumpImageAltOrSrc(t *testing.T) {
	tr, err := tree.FromXML(`<zim-tree><img src="a.png" /> <img src="b.png" alt="pic" /></zim-tree>`)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	if got := dumpAll(t, tr); got != "a.png pic" {
		t.Errorf("got %q, want %q", got, "a.png pic")
	}
}

func TestRegistration(t *testing.T) {
	f, err := format.Get("plain")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := format.Export | format.Import | format.Text
	if f.Flags != want {
		t.Errorf("flags = %v, want %v", f.Flags, want)
	}
	// The canonical alias resolves here too.
	if !format.Has("Text") {
		t.Error(`Has("Text") = false`)
	}
}
