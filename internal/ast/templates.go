package ast

import "github.com/cwbudde/go-sdc/pkg/token"

// TemplateParamKind discriminates the template parameter variants.
type TemplateParamKind int

const (
	// TemplateParamType matches a type argument.
	TemplateParamType TemplateParamKind = iota
	// TemplateParamValue matches a compile-time value of a declared type.
	TemplateParamValue
	// TemplateParamAlias matches any symbol.
	TemplateParamAlias
	// TemplateParamTypedAlias matches a symbol whose type is constrained.
	TemplateParamTypedAlias
)

func (k TemplateParamKind) String() string {
	switch k {
	case TemplateParamValue:
		return "value"
	case TemplateParamAlias:
		return "alias"
	case TemplateParamTypedAlias:
		return "typed alias"
	}
	return "type"
}

// TemplateParam is one formal parameter of a template declaration.
// Type is the declared value type for value parameters and the constraint
// for typed alias parameters; it is nil otherwise.
type TemplateParam struct {
	Location token.Span
	Kind     TemplateParamKind
	Name     string
	Type     TypeExpression
}

// TemplateDecl declares a template. Members are kept unanalyzed; each
// instantiation flattens them against a fresh scope.
type TemplateDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Params     []TemplateParam
	Members    []Declaration
}

func (d *TemplateDecl) declarationNode() {}
func (d *TemplateDecl) Loc() token.Span  { return d.Location }
func (d *TemplateDecl) String() string   { return "template " + d.Name }

// TemplateArgument is one actual argument of an instantiation: either a
// type expression or a value expression.
type TemplateArgument struct {
	Location token.Span
	Type     TypeExpression // exactly one of Type, Value is set
	Value    Expression
}

// InstantiateExpression instantiates a template: Target!(Arguments...).
type InstantiateExpression struct {
	Location  token.Span
	Target    Expression
	Arguments []TemplateArgument
}

func (e *InstantiateExpression) expressionNode() {}
func (e *InstantiateExpression) Loc() token.Span { return e.Location }
func (e *InstantiateExpression) String() string  { return e.Target.String() + "!(...)" }
