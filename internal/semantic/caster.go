package semantic

import (
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// CastKind grades a conversion from worst to best. Everything from CastPad
// up is implicitly allowed; CastTrunc additionally needs a value range
// proof from the VRP.
type CastKind int

const (
	CastInvalid CastKind = iota
	CastDown             // class downcast, explicit only
	CastTrunc            // integral narrowing, implicit only with VRP proof
	CastPad              // widening or bool-to-integer
	CastBit              // same representation, different nominal type
	CastQual             // qualifier widening only
	CastExact            // identical types
)

func (k CastKind) String() string {
	switch k {
	case CastDown:
		return "down"
	case CastTrunc:
		return "trunc"
	case CastPad:
		return "pad"
	case CastBit:
		return "bit"
	case CastQual:
		return "qual"
	case CastExact:
		return "exact"
	}
	return "invalid"
}

// kindAllowsImplicit reports whether a conversion of this grade may be
// inserted without an explicit cast or a range proof.
func kindAllowsImplicit(k CastKind) bool {
	return k >= CastPad
}

// kindIsExact reports whether a conversion is lossless renaming only.
// Override matching demands this grade for parameter and return types.
func kindIsExact(k CastKind) bool {
	return k >= CastQual
}

// castKind grades the conversion from one type to another.
func castKind(from, to types.Type) CastKind {
	if from.Equals(to) {
		return CastExact
	}

	// Enums convert to their underlying type freely; nothing converts to
	// an enum implicitly.
	if types.IsEnum(to) {
		return CastInvalid
	}
	if types.IsEnum(from) {
		k := castKind(types.Unqual(from), to)
		if k > CastBit {
			return CastBit
		}
		return k
	}

	// Null converts to anything pointer-shaped.
	if types.IsNull(from) && (types.HasPointerABI(to) || isSlice(to)) {
		return CastBit
	}

	fb, fok := types.AsBuiltin(from)
	tb, tok := types.AsBuiltin(to)
	if fok && tok {
		return builtinCastKind(fb, tb)
	}

	switch ft := from.(type) {
	case *types.PointerType:
		if tt, ok := to.(*types.PointerType); ok {
			if ft.Elem.Equals(tt.Elem) {
				if qualWidens(ft.Qual, tt.Qual) {
					return CastQual
				}
				return CastInvalid
			}
			if types.IsVoid(tt.Elem) {
				return CastBit
			}
		}
	case *types.SliceType:
		if tt, ok := to.(*types.SliceType); ok {
			if ft.Elem.Equals(tt.Elem) && qualWidens(ft.Qual, tt.Qual) {
				return CastQual
			}
		}
	case *types.AggregateType:
		fc, fok := ft.Agg.(*Class)
		if !fok {
			return CastInvalid
		}
		tagg, ok := to.(*types.AggregateType)
		if !ok {
			return CastInvalid
		}
		tc, ok := tagg.Agg.(*Class)
		if !ok {
			return CastInvalid
		}
		if fc.DerivesFrom(tc) {
			return CastBit
		}
		if tc.DerivesFrom(fc) {
			return CastDown
		}
	case *types.FunctionType:
		if tt, ok := to.(*types.FunctionType); ok && ft.Equals(tt) {
			return CastExact
		}
	}

	return CastInvalid
}

// builtinCastKind grades conversions between primitive types.
func builtinCastKind(from, to types.Builtin) CastKind {
	if from == to {
		return CastExact
	}
	if to == types.Void {
		return CastBit
	}
	if from == types.Bool && (to.IsIntegral() || to.IsChar()) {
		return CastPad
	}
	if to == types.Bool {
		return CastInvalid
	}

	fromArith := from.IsIntegral() || from.IsChar()
	toArith := to.IsIntegral() || to.IsChar()
	if !fromArith || !toArith {
		return CastInvalid
	}

	fw, tw := from.BitWidth(), to.BitWidth()
	switch {
	case fw < tw:
		// Widening an unsigned value into a wider type is always
		// representable; widening a signed value into an unsigned type
		// changes meaning only for negatives, which the language accepts
		// as a bit reinterpretation.
		return CastPad
	case fw == tw:
		return CastBit
	default:
		return CastTrunc
	}
}

func qualWidens(from, to types.Qualifier) bool {
	if from == to {
		return true
	}
	return to == types.Const
}

func isSlice(t types.Type) bool {
	_, ok := t.(*types.SliceType)
	return ok
}

// implicitCastTo converts an expression to a target type, inserting a cast
// node when the representation or nominal type changes. Integral
// narrowings are permitted only when the value range propagator proves
// every possible value fits the target.
func (b *analysis) implicitCastTo(e Expression, to types.Type) (Expression, error) {
	k := castKind(e.Type(), to)
	switch {
	case k == CastExact && e.Type().Equals(to):
		return e, nil
	case kindAllowsImplicit(k):
		return &CastExpression{Location: e.Loc(), Kind: k, Operand: e, T: to}, nil
	case k == CastTrunc:
		if b.canFit(e, to) {
			return &CastExpression{Location: e.Loc(), Kind: CastTrunc, Operand: e, T: to}, nil
		}
		return nil, NewTypeMismatch(e.Loc(), e.Type(), to)
	default:
		return nil, NewTypeMismatch(e.Loc(), e.Type(), to)
	}
}

// explicitCastTo converts under an explicit cast, which additionally
// permits lossy narrowing and class downcasts.
func (b *analysis) explicitCastTo(loc token.Span, e Expression, to types.Type) (Expression, error) {
	k := castKind(e.Type(), to)
	if k == CastInvalid {
		// Explicit casts between same-width integrals and enum retyping
		// fall back to bit reinterpretation when both sides are integral.
		if types.IsIntegral(types.Unqual(e.Type())) && types.IsIntegral(types.Unqual(to)) {
			k = CastBit
		} else {
			return nil, NewTypeMismatch(loc, e.Type(), to)
		}
	}
	if k == CastExact && e.Type().Equals(to) {
		return e, nil
	}
	return &CastExpression{Location: loc, Kind: k, Operand: e, T: to}, nil
}
