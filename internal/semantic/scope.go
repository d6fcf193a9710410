package semantic

import (
	"github.com/cwbudde/go-sdc/pkg/ident"
)

// Scope is a symbol container. A name maps to a single symbol, or to an
// OverloadSet when several overloadable symbols share it. Scopes form a
// parent chain; closure scopes additionally mark that symbols declared
// inside them may close over the owner's frame.
type Scope struct {
	parent  *Scope
	owner   Symbol
	closure bool
	symbols map[ident.Name]Symbol
	imports []*Module
}

// NewScope creates a symbol scope owned by owner.
func NewScope(parent *Scope, owner Symbol) *Scope {
	return &Scope{
		parent:  parent,
		owner:   owner,
		symbols: make(map[ident.Name]Symbol),
	}
}

// NewClosureScope creates a scope whose enclosed symbols may close over
// the owner's frame.
func NewClosureScope(parent *Scope, owner Symbol) *Scope {
	s := NewScope(parent, owner)
	s.closure = true
	return s
}

// Parent returns the enclosing scope, nil at module level.
func (s *Scope) Parent() *Scope { return s.parent }

// Owner returns the symbol owning this scope.
func (s *Scope) Owner() Symbol { return s.owner }

// IsClosure reports whether this scope is a capture boundary.
func (s *Scope) IsClosure() bool { return s.closure }

// AddImport makes a module's public members visible to lookups that fall
// through this scope.
func (s *Scope) AddImport(m *Module) {
	s.imports = append(s.imports, m)
}

// Imports returns the modules imported into this scope.
func (s *Scope) Imports() []*Module { return s.imports }

// Add registers a non-overloadable symbol. Colliding with any existing
// entry is a DuplicateSymbol error.
func (s *Scope) Add(sym Symbol) error {
	name := sym.Common().Name
	if _, exists := s.symbols[name]; exists {
		return NewDuplicateSymbol(sym.Common().Location, name.String())
	}
	s.symbols[name] = sym
	return nil
}

// AddOverloadable registers a function or template symbol, merging it into
// an OverloadSet when the name is already taken by another overloadable
// symbol. Colliding with a non-overloadable symbol is a DuplicateSymbol
// error.
func (s *Scope) AddOverloadable(sym Symbol) error {
	name := sym.Common().Name
	existing, exists := s.symbols[name]
	if !exists {
		s.symbols[name] = sym
		return nil
	}

	switch prev := existing.(type) {
	case *OverloadSet:
		prev.Set = append(prev.Set, sym)
		return nil
	case *Function, *Method, *Template:
		set := &OverloadSet{
			SymbolBase: SymbolBase{
				Location: prev.Common().Location,
				Name:     name,
				Step:     Processed,
			},
			Set: []Symbol{existing, sym},
		}
		s.symbols[name] = set
		return nil
	default:
		return NewDuplicateSymbol(sym.Common().Location, name.String())
	}
}

// Replace overwrites the entry for a name. Used by override resolution to
// install a rebuilt overload set; the previous set is left unmodified.
func (s *Scope) Replace(name ident.Name, sym Symbol) {
	s.symbols[name] = sym
}

// Lookup finds a symbol in this scope only.
func (s *Scope) Lookup(name ident.Name) Symbol {
	return s.symbols[name]
}

// Resolve walks this scope and its parents. Imported modules are not
// consulted; the identifier resolver handles those because import lookups
// may demand stage advancement.
func (s *Scope) Resolve(name ident.Name) Symbol {
	for cur := s; cur != nil; cur = cur.parent {
		if sym := cur.symbols[name]; sym != nil {
			return sym
		}
	}
	return nil
}

// Len returns the number of entries in this scope alone.
func (s *Scope) Len() int { return len(s.symbols) }
