package semantic

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// Name mangling follows the D ABI conventions: length-prefixed identifier
// chains for lexical enclosure, one-letter codes for builtins, and the
// S/C/I/E tags for aggregates. The contract is injectivity: two types
// mangle identically exactly when they are structurally identical.

var builtinMangles = map[types.Builtin]string{
	types.Void:   "v",
	types.Bool:   "b",
	types.Char:   "a",
	types.Wchar:  "u",
	types.Dchar:  "w",
	types.Byte:   "g",
	types.Ubyte:  "h",
	types.Short:  "s",
	types.Ushort: "t",
	types.Int:    "i",
	types.Uint:   "k",
	types.Long:   "l",
	types.Ulong:  "m",
	types.Cent:   "zi",
	types.Ucent:  "zk",
	types.Null:   "n",
}

var aggregateTags = map[types.AggregateKind]string{
	types.AggStruct:    "S",
	types.AggUnion:     "S",
	types.AggClass:     "C",
	types.AggInterface: "I",
	types.AggEnum:      "E",
}

// mangleType encodes a type. Errors indicate types that have no external
// representation (unresolved auto, template parameter placeholders).
func mangleType(t types.Type) (string, error) {
	switch tt := t.(type) {
	case *types.BuiltinType:
		code, ok := builtinMangles[tt.B]
		if !ok {
			return "", fmt.Errorf("type %s is not mangleable", t)
		}
		return code, nil

	case *types.PointerType:
		elem, err := mangleType(tt.Elem)
		if err != nil {
			return "", err
		}
		return qualTag(tt.Qual) + "P" + elem, nil

	case *types.SliceType:
		elem, err := mangleType(tt.Elem)
		if err != nil {
			return "", err
		}
		return qualTag(tt.Qual) + "A" + elem, nil

	case *types.ArrayType:
		elem, err := mangleType(tt.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("G%d%s", tt.Size, elem), nil

	case *types.FunctionType:
		return mangleFunctionType(tt)

	case *types.AggregateType:
		tag := aggregateTags[tt.Agg.AggregateKind()]
		chain := tt.Agg.AggregateMangle()
		if chain == "" {
			return "", fmt.Errorf("aggregate %s has no mangle yet", tt.Agg.AggregateName())
		}
		return tag + chain, nil

	case *types.ContextType:
		chain := tt.Fn.ContextMangle()
		if chain == "" {
			return "", fmt.Errorf("context of %s has no mangle yet", tt.Fn.ContextName())
		}
		return "PQ" + chain, nil

	default:
		return "", fmt.Errorf("type %s is not mangleable", t)
	}
}

// mangleFunctionType encodes a signature: linkage tag, parameters, Z and
// the return type.
func mangleFunctionType(ft *types.FunctionType) (string, error) {
	var sb strings.Builder
	switch ft.Linkage {
	case types.LinkageC:
		sb.WriteString("U")
	default:
		sb.WriteString("F")
	}

	for _, p := range ft.Params {
		part, err := mangleParamType(p)
		if err != nil {
			return "", err
		}
		sb.WriteString(part)
	}
	if ft.IsVariadic {
		sb.WriteString("Y")
	}
	sb.WriteString("Z")

	ret, err := mangleParamType(ft.Return)
	if err != nil {
		return "", err
	}
	sb.WriteString(ret)
	return sb.String(), nil
}

func mangleParamType(p types.ParamType) (string, error) {
	inner, err := mangleType(p.Type)
	if err != nil {
		return "", err
	}
	if p.IsRef {
		return "K" + inner, nil
	}
	return inner, nil
}

func qualTag(q types.Qualifier) string {
	switch q {
	case types.Const:
		return "x"
	case types.Immutable:
		return "y"
	}
	return ""
}

// lengthPrefixed encodes one identifier segment of a qualified chain.
func lengthPrefixed(name string) string {
	return fmt.Sprintf("%d%s", len(name), name)
}

// MangleType encodes a resolved type. Exposed for driver tooling.
func MangleType(t types.Type) (string, error) {
	return mangleType(t)
}

// MangleQualified encodes a D-linkage symbol from its qualified path and
// signature. Exposed for driver tooling.
func MangleQualified(path []string, ft *types.FunctionType) (string, error) {
	prefix := ""
	for _, part := range path {
		prefix += lengthPrefixed(part)
	}
	typePart, err := mangleFunctionType(ft)
	if err != nil {
		return "", err
	}
	return "_D" + prefix + typePart, nil
}

// requireTypeMangle advances every aggregate named inside a type far
// enough for its mangle chain to exist. Aggregates assign the chain
// before publishing Populated, so that stage suffices.
func (b *analysis) requireTypeMangle(t types.Type) error {
	switch tt := t.(type) {
	case *types.PointerType:
		return b.requireTypeMangle(tt.Elem)
	case *types.SliceType:
		return b.requireTypeMangle(tt.Elem)
	case *types.ArrayType:
		return b.requireTypeMangle(tt.Elem)
	case *types.FunctionType:
		for _, p := range tt.Params {
			if err := b.requireTypeMangle(p.Type); err != nil {
				return err
			}
		}
		return b.requireTypeMangle(tt.Return.Type)
	case *types.AggregateType:
		if sym, ok := tt.Agg.(Symbol); ok {
			return b.require(sym, Populated)
		}
	}
	return nil
}

// computeFunctionMangle assigns the external name of a function symbol
// from the accumulated prefix. D linkage produces _D plus the qualified
// chain and the type mangle; C linkage uses the bare unqualified name.
// Other linkages are rejected upstream.
func (b *analysis) computeFunctionMangle(loc token.Span, fn *Function) error {
	switch fn.Linkage {
	case types.LinkageC:
		fn.Mangle = fn.Name
		return nil
	case types.LinkageD:
		if err := b.requireTypeMangle(fn.Type); err != nil {
			return err
		}
		typePart, err := mangleFunctionType(fn.Type)
		if err != nil {
			return NewUnsupported(loc, "cannot mangle '%s': %v", fn.Name, err)
		}
		fn.Mangle = b.intern("_D" + b.manglePrefix + typePart)
		return nil
	default:
		return NewUnsupported(loc, "unsupported linkage on '%s'", fn.Name)
	}
}

// computeVariableMangle assigns the external name of a static variable.
func (b *analysis) computeVariableMangle(loc token.Span, v *Variable) error {
	if v.Storage != StorageStatic && v.Storage != StorageEnum {
		v.Mangle = v.Name
		return nil
	}
	switch v.Linkage {
	case types.LinkageC:
		v.Mangle = v.Name
		return nil
	case types.LinkageD:
		if err := b.requireTypeMangle(v.Type); err != nil {
			return err
		}
		typePart, err := mangleType(v.Type)
		if err != nil {
			return NewUnsupported(loc, "cannot mangle '%s': %v", v.Name, err)
		}
		v.Mangle = b.intern("_D" + b.manglePrefix + typePart)
		return nil
	default:
		return NewUnsupported(loc, "unsupported linkage on '%s'", v.Name)
	}
}
