package index

import (
	"path/filepath"
	"testing"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

const prolog = "<?xml version='1.0' encoding='utf-8'?>\n"

func openTest(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func parseXML(body string) func() (*tree.Tree, error) {
	return func() (*tree.Tree, error) {
		return tree.FromXML(prolog + body)
	}
}

func mustUpdate(t *testing.T, ix *Index, name, source, body string) {
	t.Helper()
	if _, err := ix.Update(name, source, 0, parseXML(body)); err != nil {
		t.Fatalf("Update %s: %v", name, err)
	}
}

func TestUpdateAndLookup(t *testing.T) {
	ix := openTest(t)

	source := "====== Test Page ======\ncontent\n"
	changed, err := ix.Update("Home:Notes", source, 1234, parseXML(
		`<zim-tree><h level="1">Test Page</h>
<p>see <link href="Foo:Bar">Foo:Bar</link> and <tag name="todo">@todo</tag>
</p></zim-tree>`))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed {
		t.Error("Update on a new page reported no change")
	}

	p, err := ix.Lookup("Home:Notes")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Name != "Home:Notes" || p.Title != "Test Page" {
		t.Errorf("page = %q titled %q, want Home:Notes titled Test Page", p.Name, p.Title)
	}
	if p.Fingerprint != Fingerprint(source) {
		t.Errorf("fingerprint = %q, want the sum of the source", p.Fingerprint)
	}
	if p.MTime != 1234 {
		t.Errorf("mtime = %d, want 1234", p.MTime)
	}
}

func TestUpdateSkipsUnchanged(t *testing.T) {
	ix := openTest(t)

	parsed := false
	parse := func() (*tree.Tree, error) {
		parsed = true
		return tree.FromXML(prolog + `<zim-tree><h level="1">A</h>
</zim-tree>`)
	}

	if _, err := ix.Update("Page", "body v1", 0, parse); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !parsed {
		t.Fatal("first update did not parse the page")
	}

	parsed = false
	changed, err := ix.Update("Page", "body v1", 0, parse)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if changed || parsed {
		t.Errorf("unchanged source: changed = %v, parsed = %v, want false, false", changed, parsed)
	}

	changed, err = ix.Update("Page", "body v2", 0, parse)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed || !parsed {
		t.Errorf("changed source: changed = %v, parsed = %v, want true, true", changed, parsed)
	}
	p, err := ix.Lookup("Page")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Fingerprint != Fingerprint("body v2") {
		t.Error("fingerprint not refreshed after a changed update")
	}
}

func TestRemove(t *testing.T) {
	ix := openTest(t)

	mustUpdate(t, ix, "Gone", "text", `<zim-tree><h level="1">Gone</h>
<p><tag name="x">@x</tag></p></zim-tree>`)
	if err := ix.Remove("Gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := ix.Lookup("Gone"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Lookup after Remove = %v, want not found", err)
	}
	if pages, err := ix.PagesByTag("x"); err != nil || len(pages) != 0 {
		t.Errorf("PagesByTag after Remove = %v, %v, want empty", pages, err)
	}

	// Removing an unknown page is a no-op.
	if err := ix.Remove("Gone"); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestBacklinks(t *testing.T) {
	ix := openTest(t)

	mustUpdate(t, ix, "B", "b", `<zim-tree><p><link href="Target">t</link> and <link href="Target">again</link>
</p></zim-tree>`)
	mustUpdate(t, ix, "A", "a", `<zim-tree><p><link href="Target">t</link>
</p></zim-tree>`)
	mustUpdate(t, ix, "C", "c", `<zim-tree><p><link href="Other">o</link>
</p></zim-tree>`)

	got, err := ix.Backlinks("Target")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	want := []string{"A", "B"}
	if len(got) != len(want) {
		t.Fatalf("Backlinks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Backlinks[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPagesByTag(t *testing.T) {
	ix := openTest(t)

	mustUpdate(t, ix, "Second", "2", `<zim-tree><p><tag name="todo">@todo</tag>
</p></zim-tree>`)
	mustUpdate(t, ix, "First", "1", `<zim-tree><p><tag name="todo">@todo</tag> <tag name="urgent">@urgent</tag>
</p></zim-tree>`)
	mustUpdate(t, ix, "Plain", "3", `<zim-tree><p>nothing here
</p></zim-tree>`)

	got, err := ix.PagesByTag("todo")
	if err != nil {
		t.Fatalf("PagesByTag: %v", err)
	}
	if len(got) != 2 || got[0].Name != "First" || got[1].Name != "Second" {
		t.Errorf("PagesByTag(todo) = %v, want First, Second", got)
	}

	got, err = ix.PagesByTag("urgent")
	if err != nil {
		t.Fatalf("PagesByTag: %v", err)
	}
	if len(got) != 1 || got[0].Name != "First" {
		t.Errorf("PagesByTag(urgent) = %v, want First", got)
	}
}

func TestSearch(t *testing.T) {
	ix := openTest(t)

	mustUpdate(t, ix, "Journal", "j", `<zim-tree><h level="1">Journal</h>
<h level="2">Meeting notes</h>
<p>zeppelin
</p></zim-tree>`)
	mustUpdate(t, ix, "Work", "w", `<zim-tree><h level="1">Work log</h>
</zim-tree>`)

	got, err := ix.Search("MEETING")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Journal" {
		t.Errorf("Search(MEETING) = %v, want Journal", got)
	}

	got, err = ix.Search("log")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Work" {
		t.Errorf("Search(log) = %v, want Work", got)
	}

	// Body text is not indexed, only titles and headings.
	got, err = ix.Search("zeppelin")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Search(zeppelin) = %v, want no matches", got)
	}
}

func TestList(t *testing.T) {
	ix := openTest(t)

	for _, name := range []string{"C", "A", "B"} {
		mustUpdate(t, ix, name, name, `<zim-tree><p>x
</p></zim-tree>`)
	}

	got, err := ix.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("List returned %d pages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, got[i].Name, want[i])
		}
	}
}

func TestLookupMissing(t *testing.T) {
	ix := openTest(t)

	_, err := ix.Lookup("No:Such:Page")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Lookup = %v, want not found", err)
	}
}

func TestHeadings(t *testing.T) {
	ix := openTest(t)

	mustUpdate(t, ix, "Doc", "d", `<zim-tree><h level="1">Title</h>
<h level="2">First Section</h>
<h level="2">Second Section</h>
</zim-tree>`)

	got, err := ix.Headings("Doc")
	if err != nil {
		t.Fatalf("Headings: %v", err)
	}
	want := []Heading{
		{Level: 1, Text: "Title", Anchor: "title"},
		{Level: 2, Text: "First Section", Anchor: "first-section"},
		{Level: 2, Text: "Second Section", Anchor: "second-section"},
	}
	if len(got) != len(want) {
		t.Fatalf("Headings returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Headings[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
