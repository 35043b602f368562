// Package link classifies link targets, parses page references and
// translates links to output URLs.
package link

import (
	"regexp"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/encoding"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Link categories returned by Type. URLs with other schemes classify as
// the scheme itself.
const (
	TypePage      = "page"
	TypeFile      = "file"
	TypeMailto    = "mailto"
	TypeInterwiki = "interwiki"
	TypeNotebook  = "notebook"
	TypeSMB       = "smb"
)

var (
	urlRe       = regexp.MustCompile(`^(\w[\w+\-.]*)://`)
	emailRe     = regexp.MustCompile(`^(mailto:)?(\S+)@(\S+\.\w+)$`)
	pathRe      = regexp.MustCompile(`^(/|\.\.?[/\\]|~.*[/\\]|[A-Za-z]:\\)`)
	winShareRe  = regexp.MustCompile(`^\\\\[^\\]+\\.+`)
	interwikiRe = regexp.MustCompile(`^(\w[\w+\-.]*)\?(.*)$`)
)

// IsURL reports whether the link target carries a URL scheme.
func IsURL(link string) bool {
	return urlRe.MatchString(link)
}

// Type classifies a link target. URLs yield their scheme, except
// cross-notebook "zim+" URIs which classify as notebook links. Email
// addresses, with or without the mailto prefix, are mailto links. File
// system paths, absolute or relative or drive-lettered, are file links.
// UNC share paths are smb links. A "name?target" form is an interwiki
// reference. Everything else names a page.
func Type(link string) string {
	switch {
	case urlRe.MatchString(link):
		if strings.HasPrefix(link, "zim+") {
			return TypeNotebook
		}
		return urlRe.FindStringSubmatch(link)[1]
	case emailRe.MatchString(link):
		return TypeMailto
	case pathRe.MatchString(link):
		return TypeFile
	case winShareRe.MatchString(link):
		return TypeSMB
	case interwikiRe.MatchString(link):
		return TypeInterwiki
	default:
		return TypePage
	}
}

// InterwikiTarget splits an interwiki reference into its wiki name and
// the target within that wiki. ok is false when the link is not an
// interwiki reference.
func InterwikiTarget(link string) (wiki, target string, ok bool) {
	m := interwikiRe.FindStringSubmatch(link)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// EncodeURLs percent-encodes the target of every link in the tree that
// carries a URL. Link text that mirrored the old target follows the new
// one.
func EncodeURLs(t *tree.Tree, mode encoding.URLEncodeMode) {
	t.TransformLinks(func(href string) string {
		if !IsURL(href) {
			return href
		}
		return encoding.EncodeURL(href, mode)
	})
}

// DecodeURLs reverses EncodeURLs on every link in the tree that carries
// a URL.
func DecodeURLs(t *tree.Tree, mode encoding.URLEncodeMode) {
	t.TransformLinks(func(href string) string {
		if !IsURL(href) {
			return href
		}
		return encoding.DecodeURL(href, mode)
	})
}
