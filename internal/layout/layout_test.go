package layout

import (
	"testing"

	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

func TestBuiltinSizes(t *testing.T) {
	tests := []struct {
		b    types.Builtin
		want uint64
	}{
		{types.Bool, 1},
		{types.Byte, 1},
		{types.Short, 2},
		{types.Int, 4},
		{types.Long, 8},
		{types.Cent, 16},
	}

	var l Target
	for _, tt := range tests {
		got, err := l.Size(types.GetBuiltin(tt.b))
		if err != nil {
			t.Fatalf("Size(%s): %v", tt.b, err)
		}
		if got != tt.want {
			t.Errorf("Size(%s) = %d, want %d", tt.b, got, tt.want)
		}
	}
}

func TestPointerShapes(t *testing.T) {
	var l Target
	intT := types.GetBuiltin(types.Int)

	if s, _ := l.Size(types.NewPointer(intT)); s != 8 {
		t.Errorf("pointer size = %d, want 8", s)
	}
	if s, _ := l.Size(types.NewSlice(intT)); s != 16 {
		t.Errorf("slice size = %d, want 16", s)
	}
	if s, _ := l.Size(types.NewArray(intT, 6)); s != 24 {
		t.Errorf("int[6] size = %d, want 24", s)
	}
}

func TestStructLayout(t *testing.T) {
	var l Target

	// struct { byte b; long l; } pads to 16 with 8-byte alignment.
	s := &semantic.Struct{SymbolBase: semantic.SymbolBase{Name: "S"}}
	s.Fields = []*semantic.Field{
		{Variable: semantic.Variable{Type: types.GetBuiltin(types.Byte)}},
		{Variable: semantic.Variable{Type: types.GetBuiltin(types.Long)}},
	}

	size, err := l.Size(types.NewAggregate(s))
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 16 {
		t.Errorf("size = %d, want 16", size)
	}

	align, err := l.Align(types.NewAggregate(s))
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if align != 8 {
		t.Errorf("align = %d, want 8", align)
	}
}

func TestUnionLayout(t *testing.T) {
	var l Target

	u := &semantic.Union{SymbolBase: semantic.SymbolBase{Name: "U"}}
	u.Fields = []*semantic.Field{
		{Variable: semantic.Variable{Type: types.GetBuiltin(types.Int)}},
		{Variable: semantic.Variable{Type: types.GetBuiltin(types.Long)}},
	}

	size, err := l.Size(types.NewAggregate(u))
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 8 {
		t.Errorf("union size = %d, want 8", size)
	}
}

func TestClassIsAReference(t *testing.T) {
	var l Target
	c := &semantic.Class{SymbolBase: semantic.SymbolBase{Name: "C"}}

	size, err := l.Size(types.NewAggregate(c))
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 8 {
		t.Errorf("class reference size = %d, want 8", size)
	}
}

func TestEnumFollowsBase(t *testing.T) {
	var l Target
	e := &semantic.Enum{
		SymbolBase: semantic.SymbolBase{Name: "E"},
		Underlying: types.GetBuiltin(types.Short),
	}

	size, err := l.Size(types.NewAggregate(e))
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 2 {
		t.Errorf("enum size = %d, want 2", size)
	}
}
