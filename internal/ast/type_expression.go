package ast

import (
	"strings"

	"github.com/cwbudde/go-sdc/pkg/token"
)

// NamedType names a type by a possibly qualified identifier path.
type NamedType struct {
	Location token.Span
	Path     []string
}

func (t *NamedType) typeExpressionNode() {}
func (t *NamedType) Loc() token.Span     { return t.Location }
func (t *NamedType) String() string      { return strings.Join(t.Path, ".") }

// AutoType is the placeholder for a type inferred later.
type AutoType struct {
	Location token.Span
}

func (t *AutoType) typeExpressionNode() {}
func (t *AutoType) Loc() token.Span     { return t.Location }
func (t *AutoType) String() string      { return "auto" }

// PointerTypeExpr is a pointer to an element type.
type PointerTypeExpr struct {
	Location token.Span
	Elem     TypeExpression
}

func (t *PointerTypeExpr) typeExpressionNode() {}
func (t *PointerTypeExpr) Loc() token.Span     { return t.Location }
func (t *PointerTypeExpr) String() string      { return t.Elem.String() + "*" }

// SliceTypeExpr is a slice of an element type.
type SliceTypeExpr struct {
	Location token.Span
	Elem     TypeExpression
}

func (t *SliceTypeExpr) typeExpressionNode() {}
func (t *SliceTypeExpr) Loc() token.Span     { return t.Location }
func (t *SliceTypeExpr) String() string      { return t.Elem.String() + "[]" }

// ArrayTypeExpr is a fixed-size array; Size is a compile-time expression.
type ArrayTypeExpr struct {
	Location token.Span
	Elem     TypeExpression
	Size     Expression
}

func (t *ArrayTypeExpr) typeExpressionNode() {}
func (t *ArrayTypeExpr) Loc() token.Span     { return t.Location }
func (t *ArrayTypeExpr) String() string      { return t.Elem.String() + "[...]" }

// InstantiateType names a template instantiation used as a type.
type InstantiateType struct {
	Location  token.Span
	Target    Expression
	Arguments []TemplateArgument
}

func (t *InstantiateType) typeExpressionNode() {}
func (t *InstantiateType) Loc() token.Span     { return t.Location }
func (t *InstantiateType) String() string      { return t.Target.String() + "!(...)" }
