package tree

import (
	"strconv"
	"strings"
)

// Attr is a single key/value attribute.
type Attr struct {
	Key   string
	Value string
}

// Attrs holds element attributes as an ordered list. Keys are unique and
// insertion order is preserved, so serializing a tree twice yields
// byte-identical output.
//
// Keys starting with "_" are runtime-only annotations and are skipped by
// the XML writer.
type Attrs []Attr

// Lookup returns the value for key and whether it was present.
func (a Attrs) Lookup(key string) (string, bool) {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Get returns the value for key, or "" if absent.
func (a Attrs) Get(key string) string {
	v, _ := a.Lookup(key)
	return v
}

// Has reports whether key is present.
func (a Attrs) Has(key string) bool {
	_, ok := a.Lookup(key)
	return ok
}

// Int returns the value for key parsed as an integer, or def if the key
// is absent or not numeric.
func (a Attrs) Int(key string, def int) int {
	v, ok := a.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool reports whether key is present with a true-ish value.
func (a Attrs) Bool(key string) bool {
	switch a.Get(key) {
	case "True", "true", "1":
		return true
	}
	return false
}

// Set stores value under key, replacing any previous value while keeping
// the key's original position.
func (a *Attrs) Set(key, value string) {
	for i, kv := range *a {
		if kv.Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: value})
}

// SetInt stores the decimal form of value under key.
func (a *Attrs) SetInt(key string, value int) {
	a.Set(key, strconv.Itoa(value))
}

// Del removes key and reports whether it was present.
func (a *Attrs) Del(key string) bool {
	for i, kv := range *a {
		if kv.Key == key {
			*a = append((*a)[:i], (*a)[i+1:]...)
			return true
		}
	}
	return false
}

// Copy returns an independent copy of the attribute list.
func (a Attrs) Copy() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	copy(out, a)
	return out
}

func isHiddenKey(key string) bool {
	return strings.HasPrefix(key, "_")
}
