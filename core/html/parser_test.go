package html

import (
	"testing"
)

const prolog = "<?xml version='1.0' encoding='utf-8'?>\n"

func parseToXML(t *testing.T, src string) string {
	t.Helper()
	tr, err := NewParser().Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tr.ToXML()
}

func TestParseDocument(t *testing.T) {
	src := "<h1>Title</h1>\n<p>Hello <b>world</b></p>\n"
	want := prolog + `<zim-tree><h level="1">Title</h>` + "\n\n" +
		`<p>Hello <strong>world</strong>` + "\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseSkipsHeadAndCollapsesWhitespace(t *testing.T) {
	src := "<html><head><title>x</title><style>p {}</style></head><body>\n" +
		"  <p>\n    line one\n    line two\n  </p>\n" +
		"  <p>second</p>\n" +
		"</body></html>"
	want := prolog + "<zim-tree><p>line one line two\n</p>\n<p>second\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseLineBreak(t *testing.T) {
	src := "<p>line one<br>line two</p>"
	want := prolog + "<zim-tree><p>line one\nline two\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseHeadingLevels(t *testing.T) {
	src := "<h2>two</h2>\n<h6>six</h6>"
	want := prolog + `<zim-tree><h level="2">two</h>` + "\n\n" +
		`<h level="6">six</h>` + "\n</zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseList(t *testing.T) {
	src := "<ul>\n" +
		`<li class="checked-box">done</li>` + "\n" +
		`<li><input type="checkbox"> open task</li>` + "\n" +
		"</ul>"
	want := prolog + `<zim-tree><ul><li bullet="checked-box">done</li>` +
		`<li bullet="unchecked-box">open task</li></ul></zim-tree>`
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseNestedAndLetteredList(t *testing.T) {
	src := `<ol type="a" start="3"><li>cc</li><li>dd<ul><li>deep</li></ul></li></ol>`
	want := prolog + `<zim-tree><ol start="c"><li>cc</li><li>dd</li>` +
		`<ul><li bullet="*">deep</li></ul></ol></zim-tree>`
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseLooseItemParagraphs(t *testing.T) {
	src := "<ul><li><p>first</p><p>second</p></li></ul>"
	want := prolog + `<zim-tree><ul><li bullet="*">first second</li></ul></zim-tree>`
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseLinksAndAnchors(t *testing.T) {
	src := `<p>See <a href="Some:Page">the page</a>, <a href="http://example.com">it</a> or <a id="mark">here</a></p>`
	want := prolog + `<zim-tree><p>See <link href="Some:Page">the page</link>, ` +
		`<link href="http://example.com">it</link> or <anchor name="mark">here</anchor>` +
		"\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseDropsEmptyAnchor(t *testing.T) {
	// The normalizer drops empty elements; content joins around them.
	src := `<p>a <img src="pic.png" alt="Pic" width="40"> <a id="x"></a>b</p>`
	want := prolog + `<zim-tree><p>a <img src="pic.png" alt="Pic" width="40" /> b` +
		"\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseLoneImageLink(t *testing.T) {
	src := `<p><a href="http://x.org"><img src="p.png"></a></p>`
	want := prolog + `<zim-tree><p><img src="p.png" href="http://x.org" />` +
		"\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParsePre(t *testing.T) {
	src := "<pre>x = 1\ny = 2</pre>"
	want := prolog + "<zim-tree><pre>x = 1\ny = 2\n</pre></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseTypedPreAsObject(t *testing.T) {
	src := `<pre class="zim-object" data-type="equation">E = mc^2</pre>`
	want := prolog + `<zim-tree><object type="equation">E = mc^2` + "\n</object></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseBlockquote(t *testing.T) {
	src := "<blockquote>quoted text</blockquote>"
	want := prolog + `<zim-tree><p indent="1">quoted text` + "\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParsePaddingStyleAsIndent(t *testing.T) {
	src := `<p style="padding-left: 60pt">deep</p>`
	want := prolog + `<zim-tree><p indent="2">deep` + "\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseTagSpan(t *testing.T) {
	src := `<p><span class="zim-tag">@todo</span> next</p>`
	want := prolog + `<zim-tree><p><tag name="todo">@todo</tag> next` + "\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseTableFlattens(t *testing.T) {
	src := "<table><tr><td>a</td><td>b</td></tr><tr><td>c</td></tr></table>"
	want := prolog + "<zim-tree>a b\nc\n</zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseEntities(t *testing.T) {
	src := "<p>a &amp; b &lt;tag&gt;</p>"
	want := prolog + "<zim-tree><p>a &amp; b &lt;tag&gt;\n</p></zim-tree>"
	if got := parseToXML(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
