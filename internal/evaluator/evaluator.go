// Package evaluator provides the compile-time constant folder consumed by
// the semantic pass. It folds the integer, boolean, character and string
// subset of the IR expression language; anything it cannot settle is a
// compile-time evaluation failure surfaced to the analyzer.
package evaluator

import (
	"fmt"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

// Folder folds IR expressions to literals.
type Folder struct {
	pass *semantic.SemanticPass
}

// Builder constructs the folder for a pass; hand it to semantic.NewPass.
func Builder(p *semantic.SemanticPass) semantic.Evaluator {
	return &Folder{pass: p}
}

// New creates a standalone folder, useful in tests.
func New() *Folder {
	return &Folder{}
}

// Evaluate folds an expression to a literal form.
func (f *Folder) Evaluate(e semantic.Expression) (semantic.Expression, error) {
	switch ex := e.(type) {
	case *semantic.IntegerLiteral, *semantic.BoolLiteral, *semantic.CharLiteral,
		*semantic.StringLiteral, *semantic.NullLiteral, *semantic.VoidInitializer:
		return e, nil

	case *semantic.TupleExpression:
		values := make([]semantic.Expression, len(ex.Values))
		for i, v := range ex.Values {
			folded, err := f.Evaluate(v)
			if err != nil {
				return nil, err
			}
			values[i] = folded
		}
		return &semantic.TupleExpression{Location: ex.Location, Values: values, T: ex.T}, nil

	case *semantic.VariableRef:
		v := ex.Var
		if v.Storage != semantic.StorageEnum && !v.IsFinal && v.Storage != semantic.StorageStatic {
			return nil, fmt.Errorf("variable '%s' is not a compile-time constant", v.Name)
		}
		if v.Value == nil {
			return nil, fmt.Errorf("variable '%s' has no compile-time value", v.Name)
		}
		return f.Evaluate(v.Value)

	case *semantic.CastExpression:
		return f.foldCast(ex)

	case *semantic.UnaryExpression:
		return f.foldUnary(ex)

	case *semantic.BinaryExpression:
		return f.foldBinary(ex)

	default:
		return nil, fmt.Errorf("expression cannot be folded")
	}
}

// EvalIntegral folds an expression to its 64-bit integer bit pattern.
func (f *Folder) EvalIntegral(e semantic.Expression) (uint64, error) {
	folded, err := f.Evaluate(e)
	if err != nil {
		return 0, err
	}
	switch v := folded.(type) {
	case *semantic.IntegerLiteral:
		return v.Value, nil
	case *semantic.BoolLiteral:
		if v.Value {
			return 1, nil
		}
		return 0, nil
	case *semantic.CharLiteral:
		return uint64(v.Value), nil
	default:
		return 0, fmt.Errorf("expression is not an integral constant")
	}
}

// EvalString folds an expression to a string value.
func (f *Folder) EvalString(e semantic.Expression) (string, error) {
	folded, err := f.Evaluate(e)
	if err != nil {
		return "", err
	}
	if s, ok := folded.(*semantic.StringLiteral); ok {
		return s.Value, nil
	}
	return "", fmt.Errorf("expression is not a string constant")
}

// foldCast folds a cast by repacking the operand's bit pattern into the
// target representation.
func (f *Folder) foldCast(e *semantic.CastExpression) (semantic.Expression, error) {
	operand, err := f.Evaluate(e.Operand)
	if err != nil {
		return nil, err
	}

	switch v := operand.(type) {
	case *semantic.IntegerLiteral:
		return &semantic.IntegerLiteral{
			Location: e.Location,
			Value:    truncate(v.Value, e.T),
			T:        e.T,
		}, nil
	case *semantic.BoolLiteral:
		bits := uint64(0)
		if v.Value {
			bits = 1
		}
		if b, ok := types.AsBuiltin(e.T); ok && b == types.Bool {
			return v, nil
		}
		return &semantic.IntegerLiteral{Location: e.Location, Value: bits, T: e.T}, nil
	case *semantic.CharLiteral:
		if b, ok := types.AsBuiltin(e.T); ok && b.IsChar() {
			return &semantic.CharLiteral{Location: e.Location, Value: v.Value, T: e.T}, nil
		}
		return &semantic.IntegerLiteral{
			Location: e.Location,
			Value:    truncate(uint64(v.Value), e.T),
			T:        e.T,
		}, nil
	case *semantic.NullLiteral:
		return v, nil
	default:
		return nil, fmt.Errorf("cast operand cannot be folded")
	}
}

func (f *Folder) foldUnary(e *semantic.UnaryExpression) (semantic.Expression, error) {
	v, err := f.EvalIntegral(e.Operand)
	if err != nil {
		return nil, err
	}

	var out uint64
	switch e.Op {
	case ast.OpMinus:
		out = -v
	case ast.OpComplement:
		out = ^v
	case ast.OpPlus:
		out = v
	case ast.OpNot:
		if v == 0 {
			return &semantic.BoolLiteral{Location: e.Location, Value: true}, nil
		}
		return &semantic.BoolLiteral{Location: e.Location, Value: false}, nil
	default:
		return nil, fmt.Errorf("operator %s cannot be folded", e.Op)
	}

	return &semantic.IntegerLiteral{
		Location: e.Location,
		Value:    truncate(out, e.Type()),
		T:        e.Type(),
	}, nil
}

func (f *Folder) foldBinary(e *semantic.BinaryExpression) (semantic.Expression, error) {
	switch e.Op {
	case ast.OpComma:
		if _, err := f.Evaluate(e.LHS); err != nil {
			return nil, err
		}
		return f.Evaluate(e.RHS)
	case ast.OpAssign:
		return nil, fmt.Errorf("assignment is not a compile-time constant")
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		return f.foldLogical(e)
	}

	l, err := f.EvalIntegral(e.LHS)
	if err != nil {
		return nil, err
	}
	r, err := f.EvalIntegral(e.RHS)
	if err != nil {
		return nil, err
	}

	signed := isSignedOperand(e.LHS.Type())

	var out uint64
	switch e.Op {
	case ast.OpAdd:
		out = l + r
	case ast.OpSub:
		out = l - r
	case ast.OpMul:
		out = l * r
	case ast.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if signed {
			out = uint64(int64(l) / int64(r))
		} else {
			out = l / r
		}
	case ast.OpMod:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if signed {
			out = uint64(int64(l) % int64(r))
		} else {
			out = l % r
		}
	case ast.OpBitAnd:
		out = l & r
	case ast.OpBitOr:
		out = l | r
	case ast.OpBitXor:
		out = l ^ r
	case ast.OpLeftShift:
		out = l << (r & 63)
	case ast.OpRightShift:
		if signed {
			out = uint64(int64(l) >> (r & 63))
		} else {
			out = l >> (r & 63)
		}
	case ast.OpEqual, ast.OpNotEqual, ast.OpLess, ast.OpLessEqual,
		ast.OpGreater, ast.OpGreaterEqual:
		return &semantic.BoolLiteral{
			Location: e.Location,
			Value:    compare(e.Op, l, r, signed),
		}, nil
	default:
		return nil, fmt.Errorf("operator %s cannot be folded", e.Op)
	}

	return &semantic.IntegerLiteral{
		Location: e.Location,
		Value:    truncate(out, e.Type()),
		T:        e.Type(),
	}, nil
}

func (f *Folder) foldLogical(e *semantic.BinaryExpression) (semantic.Expression, error) {
	l, err := f.EvalIntegral(e.LHS)
	if err != nil {
		return nil, err
	}
	// Short-circuit like the runtime would.
	if e.Op == ast.OpLogicalAnd && l == 0 {
		return &semantic.BoolLiteral{Location: e.Location, Value: false}, nil
	}
	if e.Op == ast.OpLogicalOr && l != 0 {
		return &semantic.BoolLiteral{Location: e.Location, Value: true}, nil
	}
	r, err := f.EvalIntegral(e.RHS)
	if err != nil {
		return nil, err
	}
	return &semantic.BoolLiteral{Location: e.Location, Value: r != 0}, nil
}

func compare(op ast.BinaryOp, l, r uint64, signed bool) bool {
	switch op {
	case ast.OpEqual:
		return l == r
	case ast.OpNotEqual:
		return l != r
	}
	if signed {
		li, ri := int64(l), int64(r)
		switch op {
		case ast.OpLess:
			return li < ri
		case ast.OpLessEqual:
			return li <= ri
		case ast.OpGreater:
			return li > ri
		case ast.OpGreaterEqual:
			return li >= ri
		}
	}
	switch op {
	case ast.OpLess:
		return l < r
	case ast.OpLessEqual:
		return l <= r
	case ast.OpGreater:
		return l > r
	case ast.OpGreaterEqual:
		return l >= r
	}
	return false
}

func isSignedOperand(t types.Type) bool {
	b, ok := types.AsBuiltin(types.Unqual(t))
	return ok && b.IsIntegral() && !b.IsUnsigned()
}

// truncate reduces a 64-bit pattern to the target type's width, keeping
// two's complement sign extension for signed targets.
func truncate(v uint64, t types.Type) uint64 {
	b, ok := types.AsBuiltin(types.Unqual(t))
	if !ok {
		return v
	}
	width := b.BitWidth()
	if width == 0 || width >= 64 {
		return v
	}
	mask := (uint64(1) << width) - 1
	v &= mask
	if !b.IsUnsigned() && !b.IsChar() && b != types.Bool {
		sign := uint64(1) << (width - 1)
		if v&sign != 0 {
			v |= ^mask
		}
	}
	return v
}
