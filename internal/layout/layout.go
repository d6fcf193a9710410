// Package layout computes sizes and alignments of resolved types for the
// default X86_64 / D_LP64 target. It implements the DataLayout interface
// consumed by the semantic pass.
package layout

import (
	"fmt"

	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

const pointerSize = 8

// Target is the LP64 data layout.
type Target struct{}

// Builder constructs the layout for a pass; hand it to semantic.NewPass.
func Builder(*semantic.SemanticPass) semantic.DataLayout {
	return Target{}
}

// Size returns the storage size of a type in bytes.
func (t Target) Size(typ types.Type) (uint64, error) {
	switch tt := typ.(type) {
	case *types.BuiltinType:
		if s := tt.B.Size(); s > 0 {
			return uint64(s), nil
		}
		return 0, fmt.Errorf("type %s has no size", typ)

	case *types.PointerType, *types.ContextType, *types.FunctionType:
		return pointerSize, nil

	case *types.SliceType:
		// Length plus data pointer.
		return 2 * pointerSize, nil

	case *types.ArrayType:
		elem, err := t.Size(tt.Elem)
		if err != nil {
			return 0, err
		}
		return elem * tt.Size, nil

	case *types.AggregateType:
		return t.aggregateSize(tt.Agg)

	default:
		return 0, fmt.Errorf("type %s has no size", typ)
	}
}

// Align returns the alignment of a type in bytes.
func (t Target) Align(typ types.Type) (uint64, error) {
	switch tt := typ.(type) {
	case *types.ArrayType:
		return t.Align(tt.Elem)
	case *types.SliceType:
		return pointerSize, nil
	case *types.AggregateType:
		return t.aggregateAlign(tt.Agg)
	default:
		size, err := t.Size(typ)
		if err != nil {
			return 0, err
		}
		if size > pointerSize {
			return pointerSize, nil
		}
		return size, nil
	}
}

func (t Target) aggregateSize(agg types.Aggregate) (uint64, error) {
	switch agg.AggregateKind() {
	case types.AggClass, types.AggInterface:
		return pointerSize, nil
	case types.AggEnum:
		return t.Size(agg.UnderlyingType())
	case types.AggUnion:
		var max uint64
		for _, ft := range agg.FieldTypes() {
			s, err := t.Size(ft)
			if err != nil {
				return 0, err
			}
			if s > max {
				max = s
			}
		}
		align, err := t.aggregateAlign(agg)
		if err != nil {
			return 0, err
		}
		return roundUp(max, align), nil
	default:
		var offset uint64
		for _, ft := range agg.FieldTypes() {
			s, err := t.Size(ft)
			if err != nil {
				return 0, err
			}
			a, err := t.Align(ft)
			if err != nil {
				return 0, err
			}
			offset = roundUp(offset, a) + s
		}
		align, err := t.aggregateAlign(agg)
		if err != nil {
			return 0, err
		}
		if offset == 0 {
			return 1, nil
		}
		return roundUp(offset, align), nil
	}
}

func (t Target) aggregateAlign(agg types.Aggregate) (uint64, error) {
	switch agg.AggregateKind() {
	case types.AggClass, types.AggInterface:
		return pointerSize, nil
	case types.AggEnum:
		return t.Align(agg.UnderlyingType())
	default:
		align := uint64(1)
		for _, ft := range agg.FieldTypes() {
			a, err := t.Align(ft)
			if err != nil {
				return 0, err
			}
			if a > align {
				align = a
			}
		}
		return align, nil
	}
}

func roundUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
