package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// Expression is a fully resolved, typed IR expression.
type Expression interface {
	Loc() token.Span
	Type() types.Type
}

// IntegerLiteral is a resolved integer constant. Value holds the two's
// complement bit pattern in 64 bits regardless of the carried type.
type IntegerLiteral struct {
	Location token.Span
	Value    uint64
	T        types.Type
}

func (e *IntegerLiteral) Loc() token.Span  { return e.Location }
func (e *IntegerLiteral) Type() types.Type { return e.T }

// BoolLiteral is a resolved boolean constant.
type BoolLiteral struct {
	Location token.Span
	Value    bool
}

func (e *BoolLiteral) Loc() token.Span  { return e.Location }
func (e *BoolLiteral) Type() types.Type { return types.GetBuiltin(types.Bool) }

// CharLiteral is a resolved character constant.
type CharLiteral struct {
	Location token.Span
	Value    rune
	T        types.Type
}

func (e *CharLiteral) Loc() token.Span  { return e.Location }
func (e *CharLiteral) Type() types.Type { return e.T }

// StringLiteral is a resolved string constant, typed as an immutable
// character slice.
type StringLiteral struct {
	Location token.Span
	Value    string
}

func (e *StringLiteral) Loc() token.Span { return e.Location }
func (e *StringLiteral) Type() types.Type {
	return &types.SliceType{Elem: types.GetBuiltin(types.Char), Qual: types.Immutable}
}

// NullLiteral is the resolved null constant.
type NullLiteral struct {
	Location token.Span
}

func (e *NullLiteral) Loc() token.Span  { return e.Location }
func (e *NullLiteral) Type() types.Type { return types.GetBuiltin(types.Null) }

// VoidInitializer marks storage left deliberately uninitialized.
type VoidInitializer struct {
	Location token.Span
	T        types.Type
}

func (e *VoidInitializer) Loc() token.Span  { return e.Location }
func (e *VoidInitializer) Type() types.Type { return e.T }

// TupleExpression aggregates a fixed list of values, e.g. a struct's
// compile-time init tuple.
type TupleExpression struct {
	Location token.Span
	Values   []Expression
	T        types.Type
}

func (e *TupleExpression) Loc() token.Span  { return e.Location }
func (e *TupleExpression) Type() types.Type { return e.T }

// VariableRef reads a variable.
type VariableRef struct {
	Location token.Span
	Var      *Variable
}

func (e *VariableRef) Loc() token.Span  { return e.Location }
func (e *VariableRef) Type() types.Type { return e.Var.Type }

// FieldRef reads a field of an aggregate value. Base is nil in contexts
// where the field is addressed declaratively (init tuples).
type FieldRef struct {
	Location token.Span
	Base     Expression
	Field    *Field
}

func (e *FieldRef) Loc() token.Span  { return e.Location }
func (e *FieldRef) Type() types.Type { return e.Field.Type }

// FunctionRef names a function value.
type FunctionRef struct {
	Location token.Span
	Fn       *Function
}

func (e *FunctionRef) Loc() token.Span  { return e.Location }
func (e *FunctionRef) Type() types.Type { return e.Fn.Type }

// MethodRef names a bound method of a receiver expression.
type MethodRef struct {
	Location token.Span
	Base     Expression
	Method   *Method
}

func (e *MethodRef) Loc() token.Span  { return e.Location }
func (e *MethodRef) Type() types.Type { return e.Method.Type }

// SetRef names an overload set before call resolution picks a member.
type SetRef struct {
	Location token.Span
	Set      *OverloadSet
}

func (e *SetRef) Loc() token.Span  { return e.Location }
func (e *SetRef) Type() types.Type { return types.GetBuiltin(types.None) }

// TypeRef names a type used in expression position (enum member access,
// static member lookup).
type TypeRef struct {
	Location token.Span
	T        types.Type
	Sym      Symbol
}

func (e *TypeRef) Loc() token.Span  { return e.Location }
func (e *TypeRef) Type() types.Type { return e.T }

// ModuleRef names a module used as a lookup base.
type ModuleRef struct {
	Location token.Span
	Module   *Module
}

func (e *ModuleRef) Loc() token.Span  { return e.Location }
func (e *ModuleRef) Type() types.Type { return types.GetBuiltin(types.None) }

// BinaryExpression applies a resolved binary operator.
type BinaryExpression struct {
	Location token.Span
	Op       ast.BinaryOp
	LHS      Expression
	RHS      Expression
	T        types.Type
}

func (e *BinaryExpression) Loc() token.Span  { return e.Location }
func (e *BinaryExpression) Type() types.Type { return e.T }

// UnaryExpression applies a resolved prefix operator.
type UnaryExpression struct {
	Location token.Span
	Op       ast.UnaryOp
	Operand  Expression
	T        types.Type
}

func (e *UnaryExpression) Loc() token.Span  { return e.Location }
func (e *UnaryExpression) Type() types.Type { return e.T }

// CallExpression invokes a resolved callee.
type CallExpression struct {
	Location token.Span
	Callee   Expression
	Args     []Expression
	T        types.Type
}

func (e *CallExpression) Loc() token.Span  { return e.Location }
func (e *CallExpression) Type() types.Type { return e.T }

// IndexExpression indexes a slice or array.
type IndexExpression struct {
	Location token.Span
	Base     Expression
	Index    Expression
	T        types.Type
}

func (e *IndexExpression) Loc() token.Span  { return e.Location }
func (e *IndexExpression) Type() types.Type { return e.T }

// CastExpression converts a value. Kind records how the conversion was
// justified; implicit truncating casts carry the VRP proof implicitly.
type CastExpression struct {
	Location token.Span
	Kind     CastKind
	Operand  Expression
	T        types.Type
}

func (e *CastExpression) Loc() token.Span  { return e.Location }
func (e *CastExpression) Type() types.Type { return e.T }

// NewExpression allocates a class instance.
type NewExpression struct {
	Location token.Span
	Ctor     *Method // nil for a class without constructors
	Args     []Expression
	T        types.Type
}

func (e *NewExpression) Loc() token.Span  { return e.Location }
func (e *NewExpression) Type() types.Type { return e.T }

// ============================================================================
// Statements
// ============================================================================

// Statement is a resolved IR statement.
type Statement interface {
	Loc() token.Span
	statementNode()
}

// BlockStatement is a resolved statement list with its own scope.
type BlockStatement struct {
	Location   token.Span
	Scope      *Scope
	Statements []Statement
}

func (s *BlockStatement) statementNode() {}
func (s *BlockStatement) Loc() token.Span { return s.Location }

// ExpressionStatement evaluates an expression for effect.
type ExpressionStatement struct {
	Location   token.Span
	Expression Expression
}

func (s *ExpressionStatement) statementNode() {}
func (s *ExpressionStatement) Loc() token.Span { return s.Location }

// VariableStatement declares a local variable.
type VariableStatement struct {
	Location token.Span
	Var      *Variable
}

func (s *VariableStatement) statementNode() {}
func (s *VariableStatement) Loc() token.Span { return s.Location }

// ReturnStatement leaves the enclosing function.
type ReturnStatement struct {
	Location token.Span
	Value    Expression // nil for a void return
}

func (s *ReturnStatement) statementNode() {}
func (s *ReturnStatement) Loc() token.Span { return s.Location }

// IfStatement branches on a boolean condition.
type IfStatement struct {
	Location  token.Span
	Condition Expression
	Then      Statement
	Else      Statement
}

func (s *IfStatement) statementNode() {}
func (s *IfStatement) Loc() token.Span { return s.Location }

// WhileStatement loops on a boolean condition.
type WhileStatement struct {
	Location  token.Span
	Condition Expression
	Body      Statement
}

func (s *WhileStatement) statementNode() {}
func (s *WhileStatement) Loc() token.Span { return s.Location }
