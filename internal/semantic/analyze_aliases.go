package semantic

import (
	"fmt"

	"github.com/cwbudde/go-sdc/internal/ast"
)

// analyzeTypeAlias is the task body for type aliases: resolve the type,
// mangle it, done.
func (b *analysis) analyzeTypeAlias(decl *ast.TypeAliasDecl, a *TypeAlias) error {
	t, err := b.resolveType(decl.Type)
	if err != nil {
		return err
	}
	a.Type = t

	if err := b.requireTypeMangle(t); err != nil {
		return err
	}
	mangle, err := mangleType(t)
	if err != nil {
		return NewUnsupported(decl.Loc(), "cannot mangle alias '%s': %v", a.Name, err)
	}
	a.Mangle = b.intern(mangle)

	b.publish(a, Populated)
	b.publish(a, Signed)
	b.publish(a, Processed)
	return nil
}

// analyzeValueAlias is the task body for manifest value aliases: evaluate
// the expression and mangle type and value together.
func (b *analysis) analyzeValueAlias(decl *ast.ValueAliasDecl, a *ValueAlias) error {
	value, err := b.analyzeExpression(decl.Value)
	if err != nil {
		return err
	}
	if value, err = b.evaluate(value); err != nil {
		return err
	}
	a.Value = value

	if err := b.requireTypeMangle(value.Type()); err != nil {
		return err
	}
	typePart, err := mangleType(value.Type())
	if err != nil {
		return NewUnsupported(decl.Loc(), "cannot mangle alias '%s': %v", a.Name, err)
	}
	a.Mangle = b.intern(typePart + mangleValue(value))

	b.publish(a, Populated)
	b.publish(a, Signed)
	b.publish(a, Processed)
	return nil
}

// analyzeSymbolAlias is the task body for symbol aliases. The alias
// adopts the target's mangle at Populated and its context flag at Signed.
func (b *analysis) analyzeSymbolAlias(decl *ast.SymbolAliasDecl, a *SymbolAlias) error {
	target, err := b.resolveAliasTarget(decl.Target)
	if err != nil {
		return err
	}
	a.Target = target

	if err := b.require(target, Signed); err != nil {
		return err
	}
	a.Mangle = target.Common().Mangle
	b.publish(a, Populated)

	a.HasContext = target.Common().HasContext
	b.publish(a, Signed)
	b.publish(a, Processed)
	return nil
}

// resolveAliasTarget resolves the aliased symbol from an identifier path.
func (b *analysis) resolveAliasTarget(e ast.Expression) (Symbol, error) {
	switch expr := e.(type) {
	case *ast.Identifier:
		return b.resolveIdentifier(expr.Loc(), expr.Name)
	case *ast.DotExpression:
		base, err := b.resolveAliasTarget(expr.Base)
		if err != nil {
			return nil, err
		}
		return b.resolveMember(expr.Loc(), base, expr.Name)
	case *ast.InstantiateExpression:
		return b.instantiateFromAst(expr.Loc(), expr.Target, expr.Arguments)
	default:
		return nil, NewUnsupported(e.Loc(), "alias target must name a symbol")
	}
}

// mangleValue encodes a folded literal for value alias mangles.
func mangleValue(e Expression) string {
	switch v := e.(type) {
	case *IntegerLiteral:
		return fmt.Sprintf("V%d", v.Value)
	case *BoolLiteral:
		if v.Value {
			return "V1"
		}
		return "V0"
	case *CharLiteral:
		return fmt.Sprintf("V%d", v.Value)
	case *StringLiteral:
		return fmt.Sprintf("V%d_%x", len(v.Value), v.Value)
	case *NullLiteral:
		return "Vn"
	default:
		return "V_"
	}
}
