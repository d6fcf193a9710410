package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
)

// analyzeEnum is the task body for enum declarations. Entries form an
// arithmetic chain: the first defaults to 0, each subsequent one to its
// predecessor plus one.
func (b *analysis) analyzeEnum(decl *ast.EnumDecl, e *Enum) error {
	underlying := types.Type(types.GetBuiltin(types.Int))
	if decl.Base != nil {
		t, err := b.resolveType(decl.Base)
		if err != nil {
			return err
		}
		underlying = t
	}

	base, ok := types.AsBuiltin(underlying)
	if !ok || (!base.IsIntegral() && base != types.Bool) {
		return NewUnsupported(decl.Loc(), "enum '%s' has non-integral base type %s", e.Name, underlying)
	}
	e.Underlying = underlying

	e.Scope = NewScope(b.scope, e)
	b.appendMangle(e.Name.String())
	e.Mangle = b.intern(b.manglePrefix)

	aggType := types.NewAggregate(e)
	b.scope = e.Scope

	// Create and schedule the entry chain.
	entries := make([]*Variable, len(decl.Entries))
	for i, entry := range decl.Entries {
		v := &Variable{
			SymbolBase: SymbolBase{
				Location:   entry.Location,
				Name:       b.intern(entry.Name),
				Linkage:    types.LinkageD,
				Storage:    StorageEnum,
				Visibility: Public,
			},
			Type:    aggType,
			IsFinal: true,
		}
		if err := e.Scope.Add(v); err != nil {
			return err
		}
		entries[i] = v
	}
	e.Entries = entries

	for i, entry := range decl.Entries {
		v := entries[i]
		var prev *Variable
		if i > 0 {
			prev = entries[i-1]
		}
		expr := entry.Value
		b.schedule(v, func(c *analysis) error {
			return c.analyzeEnumEntry(e, v, prev, expr)
		})
	}

	b.publish(e, Populated)
	b.publish(e, Signed)

	for _, v := range entries {
		if err := b.require(v, Signed); err != nil {
			return err
		}
	}
	b.publish(e, Processed)
	return nil
}

// analyzeEnumEntry is the task body for one enum entry. Explicit values
// are compile-time evaluated against the underlying type; implicit ones
// continue the chain from the previous entry.
func (b *analysis) analyzeEnumEntry(e *Enum, v *Variable, prev *Variable, expr ast.Expression) error {
	var value Expression
	var err error

	switch {
	case expr != nil:
		if value, err = b.analyzeExpression(expr); err != nil {
			return err
		}
		if value, err = b.implicitCastTo(value, e.Underlying); err != nil {
			return err
		}
	case prev == nil:
		value = &IntegerLiteral{Location: v.Location, Value: 0, T: e.Underlying}
	default:
		// previous + 1, which needs the previous entry's value settled.
		if err = b.require(prev, Signed); err != nil {
			return err
		}
		value = &BinaryExpression{
			Location: v.Location,
			Op:       ast.OpAdd,
			LHS:      &VariableRef{Location: v.Location, Var: prev},
			RHS:      &IntegerLiteral{Location: v.Location, Value: 1, T: e.Underlying},
			T:        e.Underlying,
		}
	}

	if value, err = b.evaluate(value); err != nil {
		return err
	}

	// Entries carry the enum type; the folded value keeps the underlying
	// representation.
	aggType := types.NewAggregate(e)
	if lit, ok := value.(*IntegerLiteral); ok {
		value = &IntegerLiteral{Location: lit.Location, Value: lit.Value, T: aggType}
	} else if !value.Type().Equals(aggType) {
		value = &CastExpression{Location: v.Location, Kind: CastBit, Operand: value, T: aggType}
	}

	b.appendMangle(v.Name.String())
	v.Mangle = b.intern(b.manglePrefix)
	v.Value = value

	b.publish(v, Populated)
	b.publish(v, Signed)
	b.publish(v, Processed)
	return nil
}
