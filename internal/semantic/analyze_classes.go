package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// analyzeClass is the task body for class declarations: inheritance
// resolution, member flattening and method override resolution.
func (b *analysis) analyzeClass(decl *ast.ClassDecl, c *Class) error {
	base, err := b.resolveBaseClass(decl, c)
	if err != nil {
		return err
	}
	c.Base = base

	// The base must be fully known before slots can be laid out. Object
	// is its own base and skips the wait.
	if base != c {
		if err := b.require(base, Processed); err != nil {
			return err
		}
	}

	c.Scope = NewScope(b.scope, c)
	b.appendMangle(c.Name.String())
	c.Mangle = b.intern(b.manglePrefix)

	aggType := types.NewAggregate(c)
	b.thisType = aggType
	b.ctxSym = c
	b.scope = c.Scope

	fieldStart := 0
	methodStart := 1
	var baseFields []*Field
	var candidates []*Method

	if base == c {
		// The root Object class owns the vtable pointer at slot 0.
		vtbl := b.synthesizeVtblField(decl.Loc())
		baseFields = append(baseFields, vtbl)
		if err := c.Scope.Add(vtbl); err != nil {
			return err
		}
		fieldStart = 1
	} else {
		// Copy base fields and methods into candidate slots and continue
		// numbering past the highest inherited index.
		baseFields = append(baseFields, base.Fields...)
		for _, f := range base.Fields {
			if f.Index >= fieldStart {
				fieldStart = f.Index + 1
			}
			if err := c.Scope.Add(f); err != nil {
				return err
			}
		}
		for _, m := range base.Methods {
			if m == nil {
				continue
			}
			candidates = append(candidates, m)
			if m.Index >= methodStart {
				methodStart = m.Index + 1
			}
			if err := c.Scope.AddOverloadable(m); err != nil {
				return err
			}
		}
	}

	fl, err := b.flattenInto(c.Scope, c, fieldStart, methodStart, decl.Members)
	if err != nil {
		return err
	}
	newMembers := fl.members

	fields, _ := partitionFields(newMembers)
	c.Fields = append(append([]*Field{}, baseFields...), fields...)
	b.publish(c, Populated)

	for _, f := range fields {
		if err := b.require(f, Signed); err != nil {
			return err
		}
	}

	// Override resolution mutates the candidate slots; matched base
	// methods leave both the slot and the overload set.
	candidates, err = b.resolveOverrides(c, candidates, newMembers)
	if err != nil {
		return err
	}

	// Final member order: base fields, surviving base methods, new
	// members.
	compacted := make([]*Method, 0, len(candidates))
	c.Members = c.Members[:0]
	for _, f := range baseFields {
		c.Members = append(c.Members, f)
	}
	for _, m := range candidates {
		if m != nil {
			compacted = append(compacted, m)
			c.Members = append(c.Members, m)
		}
	}
	c.Members = append(c.Members, newMembers...)

	c.Methods = compacted
	for _, m := range newMembers {
		if method, ok := m.(*Method); ok {
			c.Methods = append(c.Methods, method)
		}
	}

	b.publish(c, Signed)

	for _, f := range fields {
		if err := b.require(f, Processed); err != nil {
			return err
		}
	}
	for _, m := range newMembers {
		if _, ok := m.(*Field); ok {
			continue
		}
		if err := b.require(m, Processed); err != nil {
			return err
		}
	}
	b.publish(c, Processed)
	return nil
}

// resolveBaseClass finds the declared base, defaulting to the builtin
// Object class.
func (b *analysis) resolveBaseClass(decl *ast.ClassDecl, c *Class) (*Class, error) {
	if len(decl.Bases) == 0 {
		return b.pass.Object.Get()
	}
	if len(decl.Bases) > 1 {
		return nil, NewUnsupported(decl.Loc(), "interface implementations are not supported yet")
	}

	t, err := b.resolveType(decl.Bases[0])
	if err != nil {
		return nil, err
	}
	base, ok := classOf(t)
	if !ok {
		return nil, NewUnsupported(decl.Bases[0].Loc(), "base of '%s' is not a class", c.Name)
	}
	return base, nil
}

// resolveOverrides matches the class's new methods against the inherited
// candidate slots. A match adopts the base method's vtable index, empties
// the slot and removes the base method from the overload set. A method
// whose index is still 0 after a failed search must override and is
// rejected.
func (b *analysis) resolveOverrides(c *Class, candidates []*Method, newMembers []Symbol) ([]*Method, error) {
	for _, member := range newMembers {
		m, ok := member.(*Method)
		if !ok {
			continue
		}
		if err := b.require(m, Signed); err != nil {
			return nil, err
		}

		matched := -1
		for i, cand := range candidates {
			if cand == nil {
				continue
			}
			if b.overrides(m, cand) {
				matched = i
				break
			}
		}

		if matched >= 0 {
			cand := candidates[matched]
			if m.Index != 0 {
				return nil, NewMissingOverride(m.Location, m.Name.String())
			}
			m.Index = cand.Index
			candidates[matched] = nil
			b.removeFromOverloadSet(c.Scope, cand)
		} else if m.Index == 0 && m.Name != b.intern("this") {
			return nil, NewOverrideNotFound(m.Location, m.Name.String())
		}
	}
	return candidates, nil
}

// overrides reports whether m can take cand's vtable slot: identical
// name, variadic flag, ref-return flag and parameter count, identical
// per-parameter ref flags, and return and parameter types that convert
// exactly (not lossily).
func (b *analysis) overrides(m, cand *Method) bool {
	if m.Name != cand.Name {
		return false
	}
	mt, ct := m.Type, cand.Type
	if mt == nil || ct == nil {
		return false
	}
	if mt.IsVariadic != ct.IsVariadic {
		return false
	}
	if mt.Return.IsRef != ct.Return.IsRef {
		return false
	}
	mp, cp := mt.Params[mt.Contexts:], ct.Params[ct.Contexts:]
	if len(mp) != len(cp) {
		return false
	}
	if !kindIsExact(castKind(mt.Return.Type, ct.Return.Type)) {
		return false
	}
	for i := range mp {
		if mp[i].IsRef != cp[i].IsRef {
			return false
		}
		if !kindIsExact(castKind(mp[i].Type, cp[i].Type)) {
			return false
		}
	}
	return true
}

// removeFromOverloadSet rebuilds a scope entry without the overridden
// base method. The previous overload set is not modified in place, so
// observers of the base class never see it shrink.
func (b *analysis) removeFromOverloadSet(scope *Scope, cand *Method) {
	entry := scope.Lookup(cand.Name)
	switch e := entry.(type) {
	case *Method:
		if e == cand {
			// The derived method replaced the entry already when it was
			// added as an overload; nothing to do.
			return
		}
	case *OverloadSet:
		kept := make([]Symbol, 0, len(e.Set))
		for _, s := range e.Set {
			if s != Symbol(cand) {
				kept = append(kept, s)
			}
		}
		if len(kept) == 1 {
			scope.Replace(cand.Name, kept[0])
			return
		}
		rebuilt := &OverloadSet{SymbolBase: e.SymbolBase, Set: kept}
		scope.Replace(cand.Name, rebuilt)
	}
}

// synthesizeVtblField builds Object's implicit vtable pointer field.
func (b *analysis) synthesizeVtblField(loc token.Span) *Field {
	t := types.NewPointer(types.GetBuiltin(types.Void))
	f := &Field{
		Variable: Variable{
			SymbolBase: SymbolBase{
				Location:   loc,
				Name:       b.intern("__vtbl"),
				Linkage:    types.LinkageD,
				Storage:    StorageLocal,
				Visibility: Private,
				Step:       Processed,
			},
			Type: t,
			Value: &CastExpression{
				Location: loc,
				Kind:     CastBit,
				Operand:  &NullLiteral{Location: loc},
				T:        t,
			},
		},
		Index: 0,
	}
	f.Mangle = f.Name
	return f
}
