// Package env implements the immutable name-to-value mappings that code
// fragments are evaluated against.
package env

import (
	"sort"

	"github.com/xiaq/persistent/hash"
	"github.com/xiaq/persistent/hashmap"
)

// Env maps names to values. It is immutable: methods that change an Env
// return a new Env sharing most of its structure with the old one, so
// environments can be handed out freely without later changes leaking into
// them.
//
// The zero value is not usable; start from Empty or FromMap.
type Env struct {
	m hashmap.Map
}

// Binding associates a name with a value.
type Binding struct {
	Name  string
	Value any
}

// Empty is an Env with no bindings.
var Empty = Env{hashmap.New(equalName, hashName)}

func equalName(k1, k2 any) bool { return k1.(string) == k2.(string) }

func hashName(k any) uint32 { return hash.String(k.(string)) }

// FromMap builds an Env from a Go map.
func FromMap(m map[string]any) Env {
	e := Empty
	for name, v := range m {
		e = e.Assoc(name, v)
	}
	return e
}

// Assoc returns an Env where name is bound to v, replacing any earlier
// binding of name.
func (e Env) Assoc(name string, v any) Env {
	return Env{e.m.Assoc(name, v)}
}

// Layer returns an Env with the bindings added in order, so that a later
// binding of a name wins over an earlier one.
func (e Env) Layer(bindings ...Binding) Env {
	for _, b := range bindings {
		e = e.Assoc(b.Name, b.Value)
	}
	return e
}

// Merge returns an Env with all bindings of other layered over e.
func (e Env) Merge(other Env) Env {
	for it := other.m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		e = Env{e.m.Assoc(k, v)}
	}
	return e
}

// Index returns the value bound to name.
func (e Env) Index(name string) (any, bool) {
	return e.m.Index(name)
}

// Len returns the number of bindings.
func (e Env) Len() int { return e.m.Len() }

// Names returns all the bound names, sorted.
func (e Env) Names() []string {
	names := make([]string, 0, e.m.Len())
	for it := e.m.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		names = append(names, k.(string))
	}
	sort.Strings(names)
	return names
}

// Bindings returns all the bindings, sorted by name.
func (e Env) Bindings() []Binding {
	names := e.Names()
	bindings := make([]Binding, len(names))
	for i, name := range names {
		v, _ := e.m.Index(name)
		bindings[i] = Binding{name, v}
	}
	return bindings
}

// Map copies the bindings into a new Go map.
func (e Env) Map() map[string]any {
	m := make(map[string]any, e.m.Len())
	for it := e.m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		m[k.(string)] = v
	}
	return m
}
