package server

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/link"
)

// newLinker returns a resolver that translates page links into server
// routes. Relative references resolve against the current page.
func (s *Server) newLinker(page string) *link.Resolver {
	r := link.NewResolver()
	r.SetPath(page)
	r.Page = func(ref string) string { return pageHref(page, ref) }
	r.File = fileHref
	r.Mailto = func(uri string) string { return uri }
	r.Icon = func(name string) string { return "/icon/" + name + ".svg" }
	r.Resource = func(path string) string { return path }
	return r
}

// pageHref resolves a page reference against the current page and
// returns the route serving it. Unparseable references pass through
// so the browser shows what the page author wrote.
func pageHref(current, ref string) string {
	pr, err := link.ParsePageRef(ref)
	if err != nil {
		return ref
	}

	var parts []string
	switch {
	case len(pr.Parts) == 0:
		// Fragment within the current page.
		return "#" + pr.Anchor
	case pr.Absolute:
		parts = pr.Parts
	case pr.Sub:
		parts = append(splitName(current), pr.Parts...)
	default:
		// Floating references resolve as siblings of the current page.
		if ns := splitName(current); len(ns) > 1 {
			parts = append(ns[:len(ns)-1], pr.Parts...)
		} else {
			parts = pr.Parts
		}
	}

	href := pageRoute(parts)
	if pr.Anchor != "" {
		href += "#" + pr.Anchor
	}
	return href
}

// pageRoute builds the /page/ path for the given name segments.
func pageRoute(parts []string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = url.PathEscape(part)
	}
	return "/page/" + strings.Join(escaped, "/")
}

func splitName(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, ":")
}

// fileHref maps relative file paths into the /file/ route. Absolute
// paths and URLs pass through untouched.
func fileHref(path string) string {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "~") || link.IsURL(path) {
		return path
	}
	return "/file/" + strings.TrimPrefix(filepath.ToSlash(path), "./")
}
