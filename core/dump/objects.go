package dump

import (
	"sort"
	"strings"

	"github.com/ggfazio/zim-desktop-wiki/core/tree"
)

// Object is a typed embedded object resolved from the registry, able
// to render itself per output format.
type Object interface {
	// Render returns the output fragment for the named format. ok
	// false means the object has no rendering for this format and the
	// dumper's fallback applies.
	Render(format string, d *Dumper, l Linker) (string, bool)
}

// ObjectFactory builds an Object from its attributes and payload, or
// declines it, e.g. on malformed attributes.
type ObjectFactory func(attrs tree.Attrs, payload string) (Object, bool)

// Registry resolves object types to factories. Type names are matched
// case-insensitively. The zero value is an empty registry.
type Registry struct {
	factories map[string]ObjectFactory
}

// NewRegistry returns an empty object registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ObjectFactory)}
}

// Register binds an object type to its factory, replacing any previous
// binding.
func (r *Registry) Register(typ string, f ObjectFactory) {
	if r.factories == nil {
		r.factories = make(map[string]ObjectFactory)
	}
	r.factories[strings.ToLower(typ)] = f
}

// Has reports whether the type has a registered factory.
func (r *Registry) Has(typ string) bool {
	if r == nil {
		return false
	}
	_, ok := r.factories[strings.ToLower(typ)]
	return ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Get resolves a typed object. ok is false when the type has no
// factory or the factory declines the object.
func (r *Registry) Get(typ string, attrs tree.Attrs, payload string) (Object, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[strings.ToLower(typ)]
	if !ok {
		return nil, false
	}
	return f(attrs, payload)
}

// Enumerate resolves the typed objects of a tree in document order,
// optionally restricted to one type. Objects the registry cannot
// resolve are skipped. The sequence is single use.
func (r *Registry) Enumerate(t *tree.Tree, typeFilter string) *ObjectSeq {
	return &ObjectSeq{iter: t.FindObjects(typeFilter), reg: r}
}

// ObjectSeq walks the resolved objects of one tree.
type ObjectSeq struct {
	iter *tree.ObjectIter
	reg  *Registry
}

// Next returns the next resolved object, or false when the tree is
// exhausted. The attributes handed to the factory are a copy; resolving
// never touches the tree.
func (s *ObjectSeq) Next() (Object, bool) {
	for {
		n := s.iter.Next()
		if n == nil {
			return nil, false
		}
		typ, ok := n.Attrs.Lookup(tree.AttrType)
		if !ok {
			continue
		}
		if obj, ok := s.reg.Get(typ, n.Attrs.Copy(), n.Text); ok {
			return obj, true
		}
	}
}
