package types

// AsBuiltin unwraps a builtin type, looking through enum aggregates.
// Returns (builtin, true) on success.
func AsBuiltin(t Type) (Builtin, bool) {
	switch tt := t.(type) {
	case *BuiltinType:
		return tt.B, true
	case *AggregateType:
		if tt.Agg.AggregateKind() == AggEnum {
			if u := tt.Agg.UnderlyingType(); u != nil {
				return AsBuiltin(u)
			}
		}
	}
	return Void, false
}

// IsIntegral reports whether t is an integer type, looking through enums.
func IsIntegral(t Type) bool {
	b, ok := AsBuiltin(t)
	return ok && b.IsIntegral()
}

// IsAuto reports whether t is the not-yet-inferred sentinel.
func IsAuto(t Type) bool {
	bt, ok := t.(*BuiltinType)
	return ok && bt.B == None
}

// IsVoid reports whether t is void.
func IsVoid(t Type) bool {
	bt, ok := t.(*BuiltinType)
	return ok && bt.B == Void
}

// IsNull reports whether t is the type of the null literal.
func IsNull(t Type) bool {
	bt, ok := t.(*BuiltinType)
	return ok && bt.B == Null
}

// IsClass reports whether t refers to a class declaration.
func IsClass(t Type) bool {
	at, ok := t.(*AggregateType)
	return ok && at.Agg.AggregateKind() == AggClass
}

// IsEnum reports whether t refers to an enum declaration.
func IsEnum(t Type) bool {
	at, ok := t.(*AggregateType)
	return ok && at.Agg.AggregateKind() == AggEnum
}

// HasPointerABI reports whether values of t are represented as a single
// machine pointer (pointers, class and interface references, contexts,
// function values, null).
func HasPointerABI(t Type) bool {
	switch tt := t.(type) {
	case *PointerType, *FunctionType, *ContextType:
		return true
	case *BuiltinType:
		return tt.B == Null
	case *AggregateType:
		k := tt.Agg.AggregateKind()
		return k == AggClass || k == AggInterface
	}
	return false
}

// Unqual strips enum wrappers down to the underlying type, leaving all
// other types untouched. Used where arithmetic semantics are decided.
func Unqual(t Type) Type {
	if at, ok := t.(*AggregateType); ok && at.Agg.AggregateKind() == AggEnum {
		if u := at.Agg.UnderlyingType(); u != nil {
			return Unqual(u)
		}
	}
	return t
}
