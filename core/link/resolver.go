package link

import (
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/cache"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
)

// Resolver translates link targets in pages to output URLs. It
// dispatches on the link category and memoizes results; the memo is
// scoped to the current page path and cleared when the path changes.
//
// The per-category hooks are optional. A nil hook passes the target
// through unchanged, so a zero Resolver is usable as an identity
// translator.
type Resolver struct {
	// Page translates an internal page reference.
	Page func(ref string) string

	// File translates a file path. Also used for image sources.
	File func(path string) string

	// Mailto translates a mailto URI. The dispatcher prepends the
	// "mailto:" scheme to bare addresses before calling it.
	Mailto func(uri string) string

	// Notebook translates a cross-notebook "zim+" URI.
	Notebook func(uri string) string

	// Interwiki expands an interwiki reference to its target link, or
	// returns "" when the wiki name is unknown. The expansion is
	// dispatched again, once.
	Interwiki func(link string) string

	// URL translates URLs of any other scheme. Most outputs leave these
	// untouched.
	URL func(scheme, url string) string

	// Icon translates an icon name used for checkbox bullets and the
	// like.
	Icon func(name string) string

	// Resource translates a path to a template resource.
	Resource func(path string) string

	// AttachmentFile locates the source file behind an attachment link,
	// for outputs that inline file content. Not for link resolution.
	AttachmentFile func(path string) (string, bool)

	path    string
	base    string
	useBase bool
	memo    cache.Cache[string, string]
	icons   map[string]string
}

// NewResolver returns a Resolver with an empty memo.
func NewResolver() *Resolver {
	return &Resolver{
		memo:  cache.NewLRUCache[string, string](cache.Config{MaxSize: 256}),
		icons: make(map[string]string),
	}
}

// SetPath sets the page path links are resolved against and clears the
// memo.
func (r *Resolver) SetPath(path string) {
	r.path = path
	if r.memo != nil {
		r.memo.Clear()
	}
}

// Path returns the page path links are resolved against.
func (r *Resolver) Path() string {
	return r.path
}

// SetBase sets a directory to use as base for file links.
func (r *Resolver) SetBase(dir string) {
	r.base = dir
}

// Base returns the base directory for file links.
func (r *Resolver) Base() string {
	return r.base
}

// SetUseBase sets whether the output format supports relative file
// links.
func (r *Resolver) SetUseBase(use bool) {
	r.useBase = use
}

// UseBase reports whether the output format supports relative file
// links.
func (r *Resolver) UseBase() bool {
	return r.useBase
}

// Link translates a link target of any category to an output URL.
// Results are memoized until the resolver moves to another page.
func (r *Resolver) Link(target string) string {
	if r.memo != nil {
		if href, ok := r.memo.Get(target); ok {
			return href
		}
	}
	href := r.dispatch(target, false)
	if r.memo != nil {
		r.memo.Put(target, href)
	}
	return href
}

func (r *Resolver) dispatch(target string, nested bool) string {
	switch kind := Type(target); kind {
	case TypePage:
		if r.Page != nil {
			return r.Page(target)
		}
	case TypeFile:
		if r.File != nil {
			return r.File(target)
		}
	case TypeMailto:
		if r.Mailto != nil {
			if !strings.HasPrefix(target, "mailto:") {
				target = "mailto:" + target
			}
			return r.Mailto(target)
		}
	case TypeNotebook:
		if r.Notebook != nil {
			return r.Notebook(target)
		}
	case TypeInterwiki:
		if nested || r.Interwiki == nil {
			break
		}
		expanded := r.Interwiki(target)
		if expanded != "" && expanded != target {
			return r.dispatch(expanded, true)
		}
		logging.Warn("no url for interwiki link", "link", target)
	default:
		if r.URL != nil {
			return r.URL(kind, target)
		}
	}
	return target
}

// Img translates an image source, which is always a file path.
func (r *Resolver) Img(src string) string {
	if r.File != nil {
		return r.File(src)
	}
	return src
}

// IconURL translates an icon name to an URL. Results are kept for the
// lifetime of the resolver; icons do not depend on the current path.
func (r *Resolver) IconURL(name string) string {
	if href, ok := r.icons[name]; ok {
		return href
	}
	href := name
	if r.Icon != nil {
		href = r.Icon(name)
	}
	if r.icons == nil {
		r.icons = make(map[string]string)
	}
	r.icons[name] = href
	return href
}

// ResourceURL translates a template resource path.
func (r *Resolver) ResourceURL(path string) string {
	if r.Resource != nil {
		return r.Resource(path)
	}
	return path
}

// ResolveAttachment locates the source file behind an attachment link.
// The second return is false when no file could be found or no hook is
// installed.
func (r *Resolver) ResolveAttachment(path string) (string, bool) {
	if r.AttachmentFile != nil {
		return r.AttachmentFile(path)
	}
	return "", false
}
