package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// analyzeStruct is the task body for struct declarations.
func (b *analysis) analyzeStruct(decl *ast.StructDecl, s *Struct) error {
	s.Scope = NewScope(b.scope, s)
	b.appendMangle(s.Name.String())
	s.Mangle = b.intern(b.manglePrefix)

	aggType := types.NewAggregate(s)
	b.thisType = aggType
	b.ctxSym = s
	b.scope = s.Scope

	fieldStart := 0
	var members []Symbol

	// Nested aggregates carry their enclosing frame in a leading __ctx
	// field.
	if s.HasContext {
		ctxField, err := b.synthesizeContextField(decl.Loc(), s)
		if err != nil {
			return err
		}
		members = append(members, ctxField)
		fieldStart = 1
	}

	fl, err := b.flattenInto(s.Scope, s, fieldStart, 1, decl.Members)
	if err != nil {
		return err
	}
	members = append(members, fl.members...)

	fields, others := partitionFields(members)
	s.Fields = fields
	b.publish(s, Populated)

	// Field types and defaults must be settled before the init tuple can
	// be computed.
	for _, f := range fields {
		if err := b.require(f, Signed); err != nil {
			return err
		}
	}

	values := make([]Expression, len(fields))
	for i, f := range fields {
		values[i] = f.Value
	}
	s.Init = b.synthesizeInit(decl.Loc(), s, aggType, &TupleExpression{
		Location: decl.Loc(),
		Values:   values,
		T:        aggType,
	})

	s.Members = make([]Symbol, 0, len(members)+1)
	s.Members = append(s.Members, s.Init)
	for _, f := range fields {
		s.Members = append(s.Members, f)
	}
	s.Members = append(s.Members, others...)
	b.publish(s, Signed)

	// Fields finish before the other members, so methods can use field
	// types and values without cycling on the aggregate itself.
	for _, f := range fields {
		if err := b.require(f, Processed); err != nil {
			return err
		}
	}
	for _, o := range others {
		if err := b.require(o, Processed); err != nil {
			return err
		}
	}
	b.publish(s, Processed)
	return nil
}

// analyzeUnion is the task body for union declarations. Unions follow the
// struct path but initialize as void.
func (b *analysis) analyzeUnion(decl *ast.UnionDecl, u *Union) error {
	u.Scope = NewScope(b.scope, u)
	b.appendMangle(u.Name.String())
	u.Mangle = b.intern(b.manglePrefix)

	aggType := types.NewAggregate(u)
	b.thisType = aggType
	b.ctxSym = u
	b.scope = u.Scope

	fieldStart := 0
	var members []Symbol
	if u.HasContext {
		ctxField, err := b.synthesizeContextField(decl.Loc(), u)
		if err != nil {
			return err
		}
		members = append(members, ctxField)
		fieldStart = 1
	}

	fl, err := b.flattenInto(u.Scope, u, fieldStart, 1, decl.Members)
	if err != nil {
		return err
	}
	members = append(members, fl.members...)

	fields, others := partitionFields(members)
	u.Fields = fields
	b.publish(u, Populated)

	for _, f := range fields {
		if err := b.require(f, Signed); err != nil {
			return err
		}
	}

	u.Init = b.synthesizeInit(decl.Loc(), u, aggType, &VoidInitializer{
		Location: decl.Loc(),
		T:        aggType,
	})

	u.Members = make([]Symbol, 0, len(members)+1)
	u.Members = append(u.Members, u.Init)
	for _, f := range fields {
		u.Members = append(u.Members, f)
	}
	u.Members = append(u.Members, others...)
	b.publish(u, Signed)

	for _, f := range fields {
		if err := b.require(f, Processed); err != nil {
			return err
		}
	}
	for _, o := range others {
		if err := b.require(o, Processed); err != nil {
			return err
		}
	}
	b.publish(u, Processed)
	return nil
}

// analyzeInterface is the task body for interface declarations. Member
// and inheritance analysis is reserved; only the mangle is assigned.
func (b *analysis) analyzeInterface(decl *ast.InterfaceDecl, i *Interface) error {
	if len(decl.Members) > 0 || len(decl.Bases) > 0 {
		return NewUnsupported(decl.Loc(), "interface members are not supported yet")
	}

	i.Scope = NewScope(b.scope, i)
	b.appendMangle(i.Name.String())
	i.Mangle = b.intern(b.manglePrefix)

	b.publish(i, Populated)
	b.publish(i, Signed)
	b.publish(i, Processed)
	return nil
}

// synthesizeContextField builds the implicit __ctx field of a nested
// aggregate.
func (b *analysis) synthesizeContextField(loc token.Span, agg Symbol) (*Field, error) {
	owner := b.enclosingContextOwner()
	if owner == nil {
		return nil, newInternal(loc, "'%s' has context but no enclosing frame", agg.Common().Name)
	}

	ctxType := types.NewPointer(types.NewContext(owner))
	f := &Field{
		Variable: Variable{
			SymbolBase: SymbolBase{
				Location:   loc,
				Name:       b.intern("__ctx"),
				Linkage:    types.LinkageD,
				Storage:    StorageLocal,
				Visibility: Public,
				Step:       Processed,
			},
			Type: ctxType,
			Value: &CastExpression{
				Location: loc,
				Kind:     CastBit,
				Operand:  &NullLiteral{Location: loc},
				T:        ctxType,
			},
		},
		Index: 0,
	}
	f.Mangle = f.Name
	return f, nil
}

// synthesizeInit builds the compile-time init variable of an aggregate.
func (b *analysis) synthesizeInit(loc token.Span, agg Symbol, t types.Type, value Expression) *Variable {
	init := &Variable{
		SymbolBase: SymbolBase{
			Location:   loc,
			Name:       b.intern("init"),
			Linkage:    types.LinkageD,
			Storage:    StorageStatic,
			Visibility: Public,
			Step:       Processed,
		},
		Type:    t,
		Value:   value,
		IsFinal: true,
	}
	init.Mangle = b.intern("_D" + b.manglePrefix + "6__initZ")
	return init
}

// partitionFields splits aggregate members into fields and the rest,
// preserving source order.
func partitionFields(members []Symbol) ([]*Field, []Symbol) {
	var fields []*Field
	var others []Symbol
	for _, m := range members {
		if f, ok := m.(*Field); ok {
			fields = append(fields, f)
		} else {
			others = append(others, m)
		}
	}
	return fields, others
}
