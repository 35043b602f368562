package dump

import (
	"github.com/ggfazio/zim-desktop-wiki/core/link"
)

// Linker translates link targets, image sources and icon names into
// URLs valid in the output document. link.Resolver satisfies it.
type Linker interface {
	// Link translates a link target of any category.
	Link(target string) string

	// Img translates an image source path.
	Img(src string) string

	// IconURL translates an icon name, e.g. for checkbox bullets.
	IconURL(name string) string

	// ResourceURL translates a template resource path.
	ResourceURL(path string) string

	// ResolveAttachment locates the source file behind an attachment
	// link, for formats that inline file content. Not for links.
	ResolveAttachment(path string) (string, bool)
}

// NewStubLinker returns a Linker that resolves links to themselves
// through the usual category dispatch and marks icons with an "icon:"
// prefix. For tests and rendering without an export context.
func NewStubLinker() *link.Resolver {
	r := link.NewResolver()
	r.SetPath("<PATH>")
	// Identity hook so bare addresses still gain their mailto: scheme.
	r.Mailto = func(uri string) string { return uri }
	r.Icon = func(name string) string { return "icon:" + name }
	r.Resource = func(path string) string { return path }
	r.AttachmentFile = func(path string) (string, bool) { return path, true }
	return r
}
