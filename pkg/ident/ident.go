// Package ident provides interned identifier names.
// Interning guarantees that two equal identifiers share a single canonical
// string, so name comparison degrades to pointer comparison in practice and
// symbol tables never hold duplicate copies of hot names such as "this".
package ident

import "sync"

// Name is a canonical identifier. The zero value is the absent name.
type Name string

// NoName is the absent identifier.
const NoName Name = ""

// IsEmpty reports whether the name is absent.
func (n Name) IsEmpty() bool {
	return n == NoName
}

func (n Name) String() string {
	return string(n)
}

// Table interns identifier strings. Interning is monotonic and idempotent:
// the same bytes always yield the same Name, and entries are never removed
// for the lifetime of a compilation.
type Table struct {
	mu       sync.Mutex
	interned map[string]Name
}

// NewTable creates an empty intern table.
func NewTable() *Table {
	return &Table{
		interned: make(map[string]Name),
	}
}

// Get returns the canonical Name for s, interning it on first use.
func (t *Table) Get(s string) Name {
	if s == "" {
		return NoName
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.interned[s]; ok {
		return n
	}

	n := Name(s)
	t.interned[s] = n
	return n
}

// Len returns the number of distinct interned names.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.interned)
}
