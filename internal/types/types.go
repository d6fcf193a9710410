package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the variants of the Type sum.
type Kind int

const (
	KindBuiltin Kind = iota
	KindPointer
	KindSlice
	KindArray
	KindFunction
	KindAggregate
	KindContext
)

// Qualifier is the mutability qualifier carried by indirections.
type Qualifier int

const (
	Mutable Qualifier = iota
	Const
	Immutable
)

func (q Qualifier) String() string {
	switch q {
	case Const:
		return "const"
	case Immutable:
		return "immutable"
	}
	return ""
}

// Linkage selects the ABI a function symbol is mangled and called under.
type Linkage int

const (
	LinkageD Linkage = iota
	LinkageC
)

func (l Linkage) String() string {
	switch l {
	case LinkageC:
		return "C"
	default:
		return "D"
	}
}

// Type is the resolved type of an expression or symbol.
type Type interface {
	Kind() Kind
	Equals(Type) bool
	String() string
}

// ============================================================================
// Builtin
// ============================================================================

// BuiltinType wraps a primitive type.
type BuiltinType struct {
	B Builtin
}

var builtinCache [Null + 1]*BuiltinType

func init() {
	for b := Void; b <= Null; b++ {
		builtinCache[b] = &BuiltinType{B: b}
	}
}

// GetBuiltin returns the shared instance for a primitive type.
func GetBuiltin(b Builtin) *BuiltinType {
	return builtinCache[b]
}

func (t *BuiltinType) Kind() Kind { return KindBuiltin }

func (t *BuiltinType) Equals(o Type) bool {
	ot, ok := o.(*BuiltinType)
	return ok && ot.B == t.B
}

func (t *BuiltinType) String() string { return t.B.String() }

// ============================================================================
// Indirections
// ============================================================================

// PointerType is a raw pointer to an element type.
type PointerType struct {
	Elem Type
	Qual Qualifier
}

// NewPointer builds a mutable pointer type.
func NewPointer(elem Type) *PointerType {
	return &PointerType{Elem: elem}
}

func (t *PointerType) Kind() Kind { return KindPointer }

func (t *PointerType) Equals(o Type) bool {
	ot, ok := o.(*PointerType)
	return ok && ot.Qual == t.Qual && ot.Elem.Equals(t.Elem)
}

func (t *PointerType) String() string {
	if t.Qual != Mutable {
		return fmt.Sprintf("%s(%s)*", t.Qual, t.Elem)
	}
	return t.Elem.String() + "*"
}

// SliceType is a length-carrying view over contiguous elements.
type SliceType struct {
	Elem Type
	Qual Qualifier
}

// NewSlice builds a mutable slice type.
func NewSlice(elem Type) *SliceType {
	return &SliceType{Elem: elem}
}

func (t *SliceType) Kind() Kind { return KindSlice }

func (t *SliceType) Equals(o Type) bool {
	ot, ok := o.(*SliceType)
	return ok && ot.Qual == t.Qual && ot.Elem.Equals(t.Elem)
}

func (t *SliceType) String() string { return t.Elem.String() + "[]" }

// ArrayType is a fixed-length array.
type ArrayType struct {
	Elem Type
	Size uint64
}

// NewArray builds an array of size elements.
func NewArray(elem Type, size uint64) *ArrayType {
	return &ArrayType{Elem: elem, Size: size}
}

func (t *ArrayType) Kind() Kind { return KindArray }

func (t *ArrayType) Equals(o Type) bool {
	ot, ok := o.(*ArrayType)
	return ok && ot.Size == t.Size && ot.Elem.Equals(t.Elem)
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", t.Elem, t.Size)
}

// ============================================================================
// Functions
// ============================================================================

// ParamType wraps a type with its parameter passing convention.
type ParamType struct {
	Type    Type
	IsRef   bool
	IsFinal bool
}

// NewParamType wraps a plain by-value parameter.
func NewParamType(t Type) ParamType {
	return ParamType{Type: t}
}

// Equals reports structural equality including the passing convention.
func (p ParamType) Equals(o ParamType) bool {
	return p.IsRef == o.IsRef && p.IsFinal == o.IsFinal && p.Type.Equals(o.Type)
}

func (p ParamType) String() string {
	var sb strings.Builder
	if p.IsRef {
		sb.WriteString("ref ")
	}
	if p.IsFinal {
		sb.WriteString("final ")
	}
	sb.WriteString(p.Type.String())
	return sb.String()
}

// FunctionType is the signature of a function, method or constructor.
// Contexts counts the leading synthetic parameters (enclosing frame or
// this reference) that are not part of the user-visible parameter list.
type FunctionType struct {
	Return     ParamType
	Params     []ParamType
	Linkage    Linkage
	Contexts   int
	IsVariadic bool
}

func (t *FunctionType) Kind() Kind { return KindFunction }

func (t *FunctionType) Equals(o Type) bool {
	ot, ok := o.(*FunctionType)
	if !ok {
		return false
	}
	if ot.Linkage != t.Linkage || ot.IsVariadic != t.IsVariadic ||
		ot.Contexts != t.Contexts || len(ot.Params) != len(t.Params) {
		return false
	}
	if !ot.Return.Equals(t.Return) {
		return false
	}
	for i := range t.Params {
		if !ot.Params[i].Equals(t.Params[i]) {
			return false
		}
	}
	return true
}

func (t *FunctionType) String() string {
	var sb strings.Builder
	sb.WriteString(t.Return.String())
	sb.WriteString(" function(")
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	if t.IsVariadic {
		if len(t.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")")
	return sb.String()
}

// ============================================================================
// Aggregates
// ============================================================================

// AggregateKind identifies which declaration family backs an aggregate type.
type AggregateKind int

const (
	AggStruct AggregateKind = iota
	AggUnion
	AggClass
	AggInterface
	AggEnum
)

func (k AggregateKind) String() string {
	switch k {
	case AggStruct:
		return "struct"
	case AggUnion:
		return "union"
	case AggClass:
		return "class"
	case AggInterface:
		return "interface"
	case AggEnum:
		return "enum"
	}
	return "aggregate"
}

// Aggregate is implemented by the semantic symbols that back aggregate
// types (struct, union, class, interface, enum). The type model keeps only
// this narrow view so it does not depend on the symbol representation.
type Aggregate interface {
	// AggregateName returns the declared name, for diagnostics.
	AggregateName() string

	// AggregateMangle returns the qualified mangle chain of the declaration.
	AggregateMangle() string

	// AggregateKind identifies the declaration family.
	AggregateKind() AggregateKind

	// UnderlyingType returns the base type of an enum, nil otherwise.
	UnderlyingType() Type

	// FieldTypes returns the field types in slot order, for data layout.
	FieldTypes() []Type
}

// AggregateType refers to an aggregate declaration. Two aggregate types are
// equal exactly when they refer to the same declaration.
type AggregateType struct {
	Agg Aggregate
}

// NewAggregate wraps an aggregate declaration as a type.
func NewAggregate(agg Aggregate) *AggregateType {
	return &AggregateType{Agg: agg}
}

func (t *AggregateType) Kind() Kind { return KindAggregate }

func (t *AggregateType) Equals(o Type) bool {
	ot, ok := o.(*AggregateType)
	return ok && ot.Agg == t.Agg
}

func (t *AggregateType) String() string { return t.Agg.AggregateName() }

// ============================================================================
// Contexts
// ============================================================================

// ContextOwner is implemented by function symbols whose frame can be
// captured by nested declarations.
type ContextOwner interface {
	ContextName() string
	ContextMangle() string
}

// ContextType is the type of a captured enclosing frame.
type ContextType struct {
	Fn ContextOwner
}

// NewContext wraps a function's frame as a type.
func NewContext(fn ContextOwner) *ContextType {
	return &ContextType{Fn: fn}
}

func (t *ContextType) Kind() Kind { return KindContext }

func (t *ContextType) Equals(o Type) bool {
	ot, ok := o.(*ContextType)
	return ok && ot.Fn == t.Fn
}

func (t *ContextType) String() string {
	return fmt.Sprintf("context(%s)", t.Fn.ContextName())
}
