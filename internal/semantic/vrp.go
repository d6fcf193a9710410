package semantic

import (
	"fmt"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
)

// Value range propagation: a conservative abstract interpreter over
// integer expressions. Every expression gets a [min, max] interval in
// 64-bit modular arithmetic; the cast layer consults canFit to decide
// whether an implicit narrowing is provably safe.
//
// Only Add, Sub, Comma, Assign, unary minus, casts and leaf expressions
// are interpreted. Everything else pessimizes by failing, which makes
// canFit answer false.

// ValueRange is an interval over unsigned 64-bit modular integers. The
// wrap-around full range is encoded as (Min − Max) mod 2⁶⁴ == 1.
type ValueRange struct {
	Min uint64
	Max uint64
}

// IsFull reports whether the range covers every representable value.
func (r ValueRange) IsFull() bool {
	return r.Min-r.Max == 1
}

// Equals compares ranges: two ranges are equal iff both are full, or min
// and max match exactly.
func (r ValueRange) Equals(o ValueRange) bool {
	if r.IsFull() && o.IsFull() {
		return true
	}
	return r.Min == o.Min && r.Max == o.Max
}

func (r ValueRange) String() string {
	if r.IsFull() {
		return "[full]"
	}
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// fullRange is the canonical full interval for a mask.
func fullRange(mask uint64) ValueRange {
	return ValueRange{Min: 0, Max: mask}
}

// typeMask returns the bit mask of a type's representation: the unsigned
// mask of the builtin's width, the pointer mask for pointer-ABI types, and
// the underlying mask for enums.
func typeMask(t types.Type) (uint64, error) {
	if types.HasPointerABI(t) {
		return ^uint64(0), nil
	}

	b, ok := types.AsBuiltin(t)
	if !ok {
		return 0, fmt.Errorf("type %s has no value range", t)
	}
	switch {
	case b == types.Bool:
		return 1, nil
	case b.IsIntegral() || b.IsChar():
		width := b.BitWidth()
		if width >= 64 {
			return ^uint64(0), nil
		}
		return (uint64(1) << width) - 1, nil
	default:
		return 0, fmt.Errorf("type %s has no value range", t)
	}
}

// repack reduces a range to the canonical representation within a target
// mask. Ranges whose bounds share the same overflow class keep their
// tightness; everything else collapses to the target's full range.
func repack(r ValueRange, mask uint64) ValueRange {
	if r.IsFull() {
		return fullRange(mask)
	}
	if r.Min&^mask == r.Max&^mask {
		return ValueRange{Min: r.Min & mask, Max: r.Max & mask}
	}
	return fullRange(mask)
}

// complementRange negates a range in two's complement and repacks it.
func complementRange(r ValueRange, mask uint64) ValueRange {
	return repack(ValueRange{Min: 1 + ^r.Max, Max: 1 + ^r.Min}, mask)
}

// addRanges adds two ranges. When the widths of the operand intervals sum
// past 64 bits of slack the result pessimizes to the full range; the check
// is deliberately conservative so the abstraction stays a fixed-width
// interval over modular integers.
func addRanges(a, b ValueRange, mask uint64) ValueRange {
	ra := a.Max - a.Min
	rb := b.Max - b.Min
	if ra+rb < ra {
		return fullRange(mask)
	}
	return repack(ValueRange{Min: a.Min + b.Min, Max: a.Max + b.Max}, mask)
}

// subRanges subtracts b from a via the two's complement of b.
func subRanges(a, b ValueRange, mask uint64) ValueRange {
	return addRanges(a, complementRange(b, mask), mask)
}

// rangeOf computes the conservative value range of an IR expression.
func rangeOf(e Expression) (ValueRange, error) {
	mask, err := typeMask(e.Type())
	if err != nil {
		return ValueRange{}, err
	}

	switch ex := e.(type) {
	case *IntegerLiteral:
		return repack(ValueRange{Min: ex.Value, Max: ex.Value}, mask), nil

	case *BoolLiteral:
		if ex.Value {
			return ValueRange{Min: 1, Max: 1}, nil
		}
		return ValueRange{Min: 0, Max: 0}, nil

	case *CharLiteral:
		v := uint64(ex.Value)
		return repack(ValueRange{Min: v, Max: v}, mask), nil

	case *VariableRef:
		// Enum-storage and final variables have a known value; everything
		// else may hold anything its type allows.
		v := ex.Var
		if (v.Storage == StorageEnum || v.IsFinal) && v.Value != nil {
			r, err := rangeOf(v.Value)
			if err != nil {
				return ValueRange{}, err
			}
			return repack(r, mask), nil
		}
		return fullRange(mask), nil

	case *CastExpression:
		r, err := rangeOf(ex.Operand)
		if err != nil {
			return ValueRange{}, err
		}
		return repack(r, mask), nil

	case *UnaryExpression:
		if ex.Op != ast.OpMinus {
			return ValueRange{}, fmt.Errorf("operator %s is not range-tracked", ex.Op)
		}
		r, err := rangeOf(ex.Operand)
		if err != nil {
			return ValueRange{}, err
		}
		return complementRange(r, mask), nil

	case *BinaryExpression:
		switch ex.Op {
		case ast.OpAdd:
			l, err := rangeOf(ex.LHS)
			if err != nil {
				return ValueRange{}, err
			}
			r, err := rangeOf(ex.RHS)
			if err != nil {
				return ValueRange{}, err
			}
			return addRanges(l, r, mask), nil
		case ast.OpSub:
			l, err := rangeOf(ex.LHS)
			if err != nil {
				return ValueRange{}, err
			}
			r, err := rangeOf(ex.RHS)
			if err != nil {
				return ValueRange{}, err
			}
			return subRanges(l, r, mask), nil
		case ast.OpAssign, ast.OpComma:
			r, err := rangeOf(ex.RHS)
			if err != nil {
				return ValueRange{}, err
			}
			return repack(r, mask), nil
		default:
			return ValueRange{}, fmt.Errorf("operator %s is not range-tracked", ex.Op)
		}

	default:
		return ValueRange{}, fmt.Errorf("expression is not range-tracked")
	}
}

// canFit reports whether every possible value of e fits the target type
// without truncation. Failures of the range computation answer false; the
// cast is then rejected rather than guessed about.
func (b *analysis) canFit(e Expression, to types.Type) bool {
	return canFit(e, to)
}

func canFit(e Expression, to types.Type) bool {
	mask, err := typeMask(to)
	if err != nil {
		return false
	}
	r, err := rangeOf(e)
	if err != nil {
		return false
	}
	if r.IsFull() {
		return false
	}
	return r.Min <= r.Max && r.Max <= mask
}
