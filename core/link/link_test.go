package link

import (
	"testing"

	"github.com/ggfazio/zim-desktop-wiki/core/encoding"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

func TestType(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"http://example.com", "http"},
		{"https://example.com/page?q=1", "https"},
		{"ftp://host/file", "ftp"},
		{"file:///home/user/doc.txt", "file"},
		{"smb://host/share", "smb"},
		{"zim+file://notebook?Page", TypeNotebook},
		{"mailto:user@example.com", TypeMailto},
		{"user@example.com", TypeMailto},
		{"/absolute/path", TypeFile},
		{"./relative/doc.pdf", TypeFile},
		{"../up/doc.pdf", TypeFile},
		{"~/notes/file.txt", TypeFile},
		{`C:\Windows\notes.txt`, TypeFile},
		{`\\server\share\doc`, TypeSMB},
		{"wp?Main Page", TypeInterwiki},
		{"Foo", TypePage},
		{"Foo:Bar", TypePage},
		{"+Child", TypePage},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := Type(tt.link); got != tt.want {
				t.Errorf("Type(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("http://example.com") {
		t.Error("IsURL(http url) = false")
	}
	if IsURL("Foo:Bar") {
		t.Error("IsURL(page link) = true")
	}
	if IsURL("user@example.com") {
		t.Error("IsURL(email) = true")
	}
}

func TestInterwikiTarget(t *testing.T) {
	wiki, target, ok := InterwikiTarget("wp?Main Page")
	if !ok || wiki != "wp" || target != "Main Page" {
		t.Errorf("InterwikiTarget(wp?Main Page) = %q, %q, %v", wiki, target, ok)
	}

	if _, _, ok := InterwikiTarget("Foo:Bar"); ok {
		t.Error("InterwikiTarget(page link) = ok")
	}
}

func urlFixture(t *testing.T, href, text string) *tree.Tree {
	t.Helper()
	tr := tree.New()
	p := tree.NewNode(tree.TagParagraph, nil)
	l := tree.NewNode(tree.TagLink, tree.Attrs{{Key: tree.AttrHref, Value: href}})
	l.Text = text
	l.Tail = "\n"
	p.Append(l)
	tr.Root.Append(p)
	return tr
}

func firstLink(tr *tree.Tree) *tree.Node {
	return tr.Root.Children[0].Children[0]
}

func TestEncodeURLs(t *testing.T) {
	tr := urlFixture(t, "http://example.com/a b", "http://example.com/a b")

	EncodeURLs(tr, encoding.URLEncodeReadable)

	l := firstLink(tr)
	if got := l.Attrs.Get(tree.AttrHref); got != "http://example.com/a%20b" {
		t.Errorf("href = %q, want encoded", got)
	}
	if l.Text != "http://example.com/a%20b" {
		t.Errorf("text = %q, want synced with href", l.Text)
	}
}

func TestEncodeURLsSkipsPageLinks(t *testing.T) {
	tr := urlFixture(t, "My Page:Sub", "label")

	EncodeURLs(tr, encoding.URLEncodeReadable)

	if got := firstLink(tr).Attrs.Get(tree.AttrHref); got != "My Page:Sub" {
		t.Errorf("href = %q, want page link untouched", got)
	}
}

func TestDecodeURLs(t *testing.T) {
	tr := urlFixture(t, "http://example.com/a%20b", "label")

	DecodeURLs(tr, encoding.URLEncodeReadable)

	l := firstLink(tr)
	if got := l.Attrs.Get(tree.AttrHref); got != "http://example.com/a b" {
		t.Errorf("href = %q, want decoded", got)
	}
	if l.Text != "label" {
		t.Errorf("text = %q, want label untouched", l.Text)
	}
}
