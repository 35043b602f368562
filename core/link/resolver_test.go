package link

import (
	"strings"
	"testing"
)

func TestResolverZeroValueIsIdentity(t *testing.T) {
	var r Resolver
	for _, target := range []string{"Foo:Bar", "./doc.pdf", "http://example.com", "user@example.com"} {
		if got := r.Link(target); got != target {
			t.Errorf("Link(%q) = %q, want unchanged", target, got)
		}
	}
	if got := r.Img("./pic.png"); got != "./pic.png" {
		t.Errorf("Img = %q, want unchanged", got)
	}
	if got := r.IconURL("checked-box"); got != "checked-box" {
		t.Errorf("IconURL = %q, want unchanged", got)
	}
}

func TestResolverDispatch(t *testing.T) {
	r := NewResolver()
	r.Page = func(ref string) string { return "page:" + ref }
	r.File = func(path string) string { return "file:" + path }
	r.Mailto = func(uri string) string { return "sent:" + uri }
	r.Notebook = func(uri string) string { return "nb:" + uri }
	r.URL = func(scheme, url string) string { return scheme + ">" + url }

	tests := []struct {
		target string
		want   string
	}{
		{"Foo:Bar", "page:Foo:Bar"},
		{"./doc.pdf", "file:./doc.pdf"},
		{"mailto:user@example.com", "sent:mailto:user@example.com"},
		{"user@example.com", "sent:mailto:user@example.com"},
		{"zim+file://other?Page", "nb:zim+file://other?Page"},
		{"http://example.com", "http>http://example.com"},
	}

	for _, tt := range tests {
		if got := r.Link(tt.target); got != tt.want {
			t.Errorf("Link(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestResolverMemoClearedBySetPath(t *testing.T) {
	calls := 0
	r := NewResolver()
	r.Page = func(ref string) string {
		calls++
		return "page:" + ref
	}
	r.SetPath("Home")

	r.Link("Foo")
	r.Link("Foo")
	if calls != 1 {
		t.Errorf("hook called %d times, want memoized single call", calls)
	}

	r.SetPath("Other")
	r.Link("Foo")
	if calls != 2 {
		t.Errorf("hook called %d times after SetPath, want fresh call", calls)
	}
	if r.Path() != "Other" {
		t.Errorf("Path() = %q, want %q", r.Path(), "Other")
	}
}

func TestResolverInterwiki(t *testing.T) {
	r := NewResolver()
	r.Interwiki = func(link string) string {
		if rest, ok := strings.CutPrefix(link, "wp?"); ok {
			return "http://en.wikipedia.org/wiki/" + rest
		}
		return ""
	}
	r.URL = func(scheme, url string) string { return "out:" + url }

	// The expansion is dispatched again, here through the URL hook.
	if got := r.Link("wp?Golang"); got != "out:http://en.wikipedia.org/wiki/Golang" {
		t.Errorf("Link(wp?Golang) = %q", got)
	}

	// Unknown wiki names leave the link unchanged.
	if got := r.Link("unknown?Page"); got != "unknown?Page" {
		t.Errorf("Link(unknown wiki) = %q, want unchanged", got)
	}
}

func TestResolverInterwikiRecursesOnce(t *testing.T) {
	calls := 0
	r := NewResolver()
	r.Interwiki = func(link string) string {
		calls++
		return "next?" + link
	}

	got := r.Link("first?x")
	if calls != 1 {
		t.Errorf("interwiki hook called %d times, want 1", calls)
	}
	if got != "next?first?x" {
		t.Errorf("Link = %q, want single expansion", got)
	}
}

func TestResolverImgUsesFileHook(t *testing.T) {
	r := NewResolver()
	r.File = func(path string) string { return "/resolved" + path }

	if got := r.Img("/pic.png"); got != "/resolved/pic.png" {
		t.Errorf("Img = %q", got)
	}
}

func TestResolverIconMemo(t *testing.T) {
	calls := 0
	r := NewResolver()
	r.Icon = func(name string) string {
		calls++
		return "/icons/" + name + ".png"
	}

	first := r.IconURL("checked-box")
	second := r.IconURL("checked-box")
	if first != "/icons/checked-box.png" || second != first {
		t.Errorf("IconURL = %q, %q", first, second)
	}
	if calls != 1 {
		t.Errorf("icon hook called %d times, want 1", calls)
	}

	// Icons survive a path change.
	r.SetPath("Other")
	r.IconURL("checked-box")
	if calls != 1 {
		t.Errorf("icon hook called %d times after SetPath, want still 1", calls)
	}
}

func TestResolverAttachment(t *testing.T) {
	r := NewResolver()
	if _, ok := r.ResolveAttachment("./eq.png"); ok {
		t.Error("ResolveAttachment without hook reported a file")
	}

	r.AttachmentFile = func(path string) (string, bool) {
		return "/notebook/attachments" + strings.TrimPrefix(path, "."), true
	}
	got, ok := r.ResolveAttachment("./eq.png")
	if !ok || got != "/notebook/attachments/eq.png" {
		t.Errorf("ResolveAttachment = %q, %v", got, ok)
	}
}

func TestResolverBaseSettings(t *testing.T) {
	r := NewResolver()
	r.SetBase("/export/files")
	r.SetUseBase(true)

	if r.Base() != "/export/files" {
		t.Errorf("Base() = %q", r.Base())
	}
	if !r.UseBase() {
		t.Error("UseBase() = false after SetUseBase(true)")
	}
}
