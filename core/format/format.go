// Package format registers the available markup formats and hands out
// their parsers and dumpers.
//
// Formats register themselves at init time; there is no runtime
// discovery. Importing a format package for side effects is enough to
// make it available.
package format

import (
	"sort"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/dump"
	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
)

// Flags is the capability bitmask of a format.
type Flags int

const (
	// Export marks a format pages can be dumped to.
	Export Flags = 1 << iota
	// Import marks a format foreign sources can be parsed from.
	Import
	// Native marks a format that round trips the full tree.
	Native
	// Text marks a format representing plain text content.
	Text
)

// Has reports whether f carries every capability in flags.
func (f Flags) Has(flags Flags) bool {
	return f&flags == flags
}

func (f Flags) String() string {
	var names []string
	for _, c := range []struct {
		flag Flags
		name string
	}{
		{Export, "export"},
		{Import, "import"},
		{Native, "native"},
		{Text, "text"},
	} {
		if f&c.flag != 0 {
			names = append(names, c.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Parser turns source text into a document tree.
type Parser interface {
	Parse(text string) (*tree.Tree, error)
}

// Dumper renders a document tree to output lines, each line ending in
// its own terminator.
type Dumper interface {
	Dump(t *tree.Tree) ([]string, error)
}

// Format describes one registered markup format.
type Format struct {
	// Name is the canonical format name, e.g. "wiki".
	Name string

	// DisplayName is the name shown in listings, e.g. "Markdown
	// (pandoc)". Canonical folds it back to Name.
	DisplayName string

	// Flags are the format's capabilities.
	Flags Flags

	// NewParser returns a fresh parser. Nil for dump-only formats.
	NewParser func() Parser

	// NewDumper returns a fresh dumper with the given options.
	NewDumper func(opts dump.Options) Dumper
}

// registry holds all registered formats keyed by canonical name.
var registry = make(map[string]*Format)

// Register adds a format under its canonical name, replacing any
// previous registration.
func Register(f *Format) {
	if f != nil && f.Name != "" {
		registry[Canonical(f.Name)] = f
	}
}

// Has reports whether name resolves to a registered format.
func Has(name string) bool {
	_, ok := registry[Canonical(name)]
	return ok
}

// Get returns the format registered under name. Display names and case
// variants fold to the canonical name first.
func Get(name string) (*Format, error) {
	f, ok := registry[Canonical(name)]
	if !ok {
		return nil, errors.NewNoSuchFormat(name)
	}
	return f, nil
}

// List returns the canonical names of the formats carrying every given
// capability, sorted. Zero flags list all formats.
func List(flags Flags) []string {
	names := make([]string, 0, len(registry))
	for name, f := range registry {
		if f.Flags.Has(flags) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetParser returns a fresh parser for the named format.
func GetParser(name string) (Parser, error) {
	f, err := Get(name)
	if err != nil {
		return nil, err
	}
	if f.NewParser == nil {
		return nil, errors.NewNotFound("parser", f.Name)
	}
	return f.NewParser(), nil
}

// GetDumper returns a fresh dumper for the named format.
func GetDumper(name string, opts dump.Options) (Dumper, error) {
	f, err := Get(name)
	if err != nil {
		return nil, err
	}
	if f.NewDumper == nil {
		return nil, errors.NewNotFound("dumper", f.Name)
	}
	return f.NewDumper(opts), nil
}

// Clear empties the registry. For tests.
func Clear() {
	registry = make(map[string]*Format)
}

// Canonical folds a format name to its registry key. Names are
// lowercased and cut at the first space, so display names like
// "Markdown (pandoc)" resolve to "markdown". The historic "text" alias
// maps to plain.
func Canonical(name string) string {
	name = strings.ToLower(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	if name == "text" {
		return "plain"
	}
	return name
}

// imageOptions are the option keys recognized in an image URL.
var imageOptions = map[string]bool{
	"width":  true,
	"height": true,
	"type":   true,
	"href":   true,
}

// ParseImageURL splits URL style options off an image source, e.g.
// "foo.png?width=500". The returned attributes carry the bare source
// under "src" plus any recognized options. Unknown options are dropped
// with a warning; a malformed option stops processing of the rest.
func ParseImageURL(url string) tree.Attrs {
	i := strings.IndexByte(url, '?')
	if i <= 0 {
		return tree.Attrs{{Key: tree.AttrSrc, Value: url}}
	}
	attrs := tree.Attrs{{Key: tree.AttrSrc, Value: url[:i]}}
	for _, option := range strings.Split(url[i+1:], "&") {
		k, v, found := strings.Cut(option, "=")
		if !found {
			logging.Warn("malformed image options", "url", url)
			break
		}
		if !imageOptions[k] {
			logging.Warn("unknown image attribute", "attr", k, "url", url)
			continue
		}
		if v != "" {
			attrs.Set(k, v)
		}
	}
	return attrs
}
