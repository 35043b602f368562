package link

import (
	"reflect"
	"testing"
)

func TestAutoLinkSpans(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"see http://example.com/a today", []string{"http://example.com/a"}},
		{"see http://example.com/a.", []string{"http://example.com/a"}},
		{"(https://x.org/p?q=1)", []string{"https://x.org/p?q=1"}},
		{"mail bob@example.org now", []string{"bob@example.org"}},
		{"mailto:bob@example.org", []string{"mailto:bob@example.org"}},
		{"a http://x.org and bob@y.de", []string{"http://x.org", "bob@y.de"}},
		// The credentials part of a URL is not a separate address.
		{"ftp://user:pw@host.com/x", []string{"ftp://user:pw@host.com/x"}},
		{"no links here", nil},
		{"not-a-scheme:<-//x", nil},
		// After a non boundary character the match stays text.
		{"q=http://example.com", nil},
		{"key=bob@example.org", nil},
	}
	for _, c := range cases {
		var got []string
		for _, s := range AutoLinkSpans(c.text) {
			got = append(got, c.text[s[0]:s[1]])
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%q: got %v, want %v", c.text, got, c.want)
		}
	}
}
