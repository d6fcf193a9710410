package ast

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/go-sdc/pkg/token"
)

// IntegerLiteral is an integer constant. Unsuffixed literals carry
// IsLong=false and are typed int unless the value needs 64 bits.
type IntegerLiteral struct {
	Location   token.Span
	Value      uint64
	IsLong     bool // explicit L suffix
	IsUnsigned bool // explicit U suffix
}

func (e *IntegerLiteral) expressionNode() {}
func (e *IntegerLiteral) Loc() token.Span { return e.Location }
func (e *IntegerLiteral) String() string  { return strconv.FormatUint(e.Value, 10) }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Location token.Span
	Value    bool
}

func (e *BoolLiteral) expressionNode() {}
func (e *BoolLiteral) Loc() token.Span { return e.Location }
func (e *BoolLiteral) String() string  { return strconv.FormatBool(e.Value) }

// CharLiteral is a character constant.
type CharLiteral struct {
	Location token.Span
	Value    rune
}

func (e *CharLiteral) expressionNode() {}
func (e *CharLiteral) Loc() token.Span { return e.Location }
func (e *CharLiteral) String() string  { return strconv.QuoteRune(e.Value) }

// StringLiteral is a string constant.
type StringLiteral struct {
	Location token.Span
	Value    string
}

func (e *StringLiteral) expressionNode() {}
func (e *StringLiteral) Loc() token.Span { return e.Location }
func (e *StringLiteral) String() string  { return strconv.Quote(e.Value) }

// NullLiteral is the null constant.
type NullLiteral struct {
	Location token.Span
}

func (e *NullLiteral) expressionNode() {}
func (e *NullLiteral) Loc() token.Span { return e.Location }
func (e *NullLiteral) String() string  { return "null" }

// Identifier names a symbol to be resolved against the enclosing scopes.
type Identifier struct {
	Location token.Span
	Name     string
}

func (e *Identifier) expressionNode() {}
func (e *Identifier) Loc() token.Span { return e.Location }
func (e *Identifier) String() string  { return e.Name }

// DotExpression selects a member of a value, type or module.
type DotExpression struct {
	Location token.Span
	Base     Expression
	Name     string
}

func (e *DotExpression) expressionNode() {}
func (e *DotExpression) Loc() token.Span { return e.Location }
func (e *DotExpression) String() string  { return e.Base.String() + "." + e.Name }

// ThisExpression refers to the receiver of the enclosing method.
type ThisExpression struct {
	Location token.Span
}

func (e *ThisExpression) expressionNode() {}
func (e *ThisExpression) Loc() token.Span { return e.Location }
func (e *ThisExpression) String() string  { return "this" }

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAssign
	OpComma
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpLogicalAnd
	OpLogicalOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLeftShift
	OpRightShift
)

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpAssign: "=", OpComma: ",", OpEqual: "==", OpNotEqual: "!=",
	OpLess: "<", OpLessEqual: "<=", OpGreater: ">", OpGreaterEqual: ">=",
	OpLogicalAnd: "&&", OpLogicalOr: "||",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^",
	OpLeftShift: "<<", OpRightShift: ">>",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// BinaryExpression applies a binary operator.
type BinaryExpression struct {
	Location token.Span
	Op       BinaryOp
	LHS      Expression
	RHS      Expression
}

func (e *BinaryExpression) expressionNode() {}
func (e *BinaryExpression) Loc() token.Span { return e.Location }
func (e *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.LHS, e.Op, e.RHS)
}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	OpMinus UnaryOp = iota
	OpPlus
	OpNot
	OpComplement
	OpAddressOf
	OpDereference
)

var unaryOpNames = map[UnaryOp]string{
	OpMinus: "-", OpPlus: "+", OpNot: "!", OpComplement: "~",
	OpAddressOf: "&", OpDereference: "*",
}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// UnaryExpression applies a prefix operator.
type UnaryExpression struct {
	Location token.Span
	Op       UnaryOp
	Operand  Expression
}

func (e *UnaryExpression) expressionNode() {}
func (e *UnaryExpression) Loc() token.Span { return e.Location }
func (e *UnaryExpression) String() string  { return e.Op.String() + e.Operand.String() }

// CallExpression invokes a callable with arguments.
type CallExpression struct {
	Location  token.Span
	Callee    Expression
	Arguments []Expression
}

func (e *CallExpression) expressionNode() {}
func (e *CallExpression) Loc() token.Span { return e.Location }
func (e *CallExpression) String() string  { return e.Callee.String() + "(...)" }

// IndexExpression indexes into a slice or array.
type IndexExpression struct {
	Location token.Span
	Base     Expression
	Index    Expression
}

func (e *IndexExpression) expressionNode() {}
func (e *IndexExpression) Loc() token.Span { return e.Location }
func (e *IndexExpression) String() string  { return e.Base.String() + "[...]" }

// CastExpression converts a value to an explicitly named type.
type CastExpression struct {
	Location token.Span
	Type     TypeExpression
	Operand  Expression
}

func (e *CastExpression) expressionNode() {}
func (e *CastExpression) Loc() token.Span { return e.Location }
func (e *CastExpression) String() string {
	return fmt.Sprintf("cast(%s) %s", e.Type, e.Operand)
}

// NewExpression allocates a class instance.
type NewExpression struct {
	Location  token.Span
	Type      TypeExpression
	Arguments []Expression
}

func (e *NewExpression) expressionNode() {}
func (e *NewExpression) Loc() token.Span { return e.Location }
func (e *NewExpression) String() string  { return "new " + e.Type.String() }
