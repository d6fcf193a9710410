package semantic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-sdc/internal/types"
)

// ============================================================================
// Type Mangling
// ============================================================================

func TestBuiltinMangles(t *testing.T) {
	tests := []struct {
		b    types.Builtin
		want string
	}{
		{types.Void, "v"},
		{types.Bool, "b"},
		{types.Char, "a"},
		{types.Wchar, "u"},
		{types.Dchar, "w"},
		{types.Byte, "g"},
		{types.Ubyte, "h"},
		{types.Short, "s"},
		{types.Ushort, "t"},
		{types.Int, "i"},
		{types.Uint, "k"},
		{types.Long, "l"},
		{types.Ulong, "m"},
		{types.Cent, "zi"},
		{types.Ucent, "zk"},
	}

	for _, tt := range tests {
		t.Run(tt.b.String(), func(t *testing.T) {
			got, err := mangleType(types.GetBuiltin(tt.b))
			if err != nil {
				t.Fatalf("mangleType: %v", err)
			}
			if got != tt.want {
				t.Errorf("mangleType(%s) = %q, want %q", tt.b, got, tt.want)
			}
		})
	}
}

// TestMangleInjective checks the core contract: structurally identical
// types mangle identically, structurally different types do not.
func TestMangleInjective(t *testing.T) {
	intT := types.GetBuiltin(types.Int)
	longT := types.GetBuiltin(types.Long)

	samples := []types.Type{
		intT,
		longT,
		types.NewPointer(intT),
		types.NewPointer(longT),
		types.NewPointer(types.NewPointer(intT)),
		types.NewSlice(intT),
		types.NewArray(intT, 4),
		types.NewArray(intT, 8),
		&types.FunctionType{Linkage: types.LinkageD, Return: types.NewParamType(intT)},
		&types.FunctionType{Linkage: types.LinkageC, Return: types.NewParamType(intT)},
		&types.FunctionType{
			Linkage: types.LinkageD,
			Return:  types.NewParamType(types.GetBuiltin(types.Void)),
			Params:  []types.ParamType{types.NewParamType(intT)},
		},
		&types.FunctionType{
			Linkage: types.LinkageD,
			Return:  types.NewParamType(types.GetBuiltin(types.Void)),
			Params:  []types.ParamType{{Type: intT, IsRef: true}},
		},
	}

	mangles := make([]string, len(samples))
	for i, s := range samples {
		m, err := mangleType(s)
		if err != nil {
			t.Fatalf("mangleType(%s): %v", s, err)
		}
		mangles[i] = m
	}

	for i := range samples {
		for j := range samples {
			equalTypes := samples[i].Equals(samples[j])
			equalMangles := mangles[i] == mangles[j]
			if equalTypes != equalMangles {
				t.Errorf("types %s / %s: Equals=%v but mangles %q / %q",
					samples[i], samples[j], equalTypes, mangles[i], mangles[j])
			}
		}
	}
}

func TestAggregateMangleTags(t *testing.T) {
	strct := &Struct{SymbolBase: SymbolBase{Name: "S", Mangle: "4test1S"}}
	class := &Class{SymbolBase: SymbolBase{Name: "C", Mangle: "4test1C"}}
	iface := &Interface{SymbolBase: SymbolBase{Name: "I", Mangle: "4test1I"}}
	enum := &Enum{
		SymbolBase: SymbolBase{Name: "E", Mangle: "4test1E"},
		Underlying: types.GetBuiltin(types.Int),
	}

	tests := []struct {
		name string
		t    types.Type
		want string
	}{
		{"struct", types.NewAggregate(strct), "S4test1S"},
		{"class", types.NewAggregate(class), "C4test1C"},
		{"interface", types.NewAggregate(iface), "I4test1I"},
		{"enum", types.NewAggregate(enum), "E4test1E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mangleType(tt.t)
			if err != nil {
				t.Fatalf("mangleType: %v", err)
			}
			if got != tt.want {
				t.Errorf("mangleType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMangleQualified(t *testing.T) {
	ft := &types.FunctionType{
		Linkage: types.LinkageD,
		Return:  types.NewParamType(types.GetBuiltin(types.Void)),
		Params: []types.ParamType{
			types.NewParamType(types.GetBuiltin(types.Int)),
			types.NewParamType(types.GetBuiltin(types.Long)),
		},
	}

	got, err := MangleQualified([]string{"test", "foo"}, ft)
	if err != nil {
		t.Fatalf("MangleQualified: %v", err)
	}

	if !strings.HasPrefix(got, "_D") {
		t.Errorf("D-linkage mangle %q must start with _D", got)
	}
	if !strings.Contains(got, "4test3foo") {
		t.Errorf("mangle %q must contain the scope prefix verbatim", got)
	}
	if got != "_D4test3fooFilZv" {
		t.Errorf("mangle = %q, want %q", got, "_D4test3fooFilZv")
	}
}

// TestMangleTable snapshots a table of representative mangles so ABI
// regressions show up as a diff.
func TestMangleTable(t *testing.T) {
	intT := types.GetBuiltin(types.Int)
	voidT := types.GetBuiltin(types.Void)

	var sb strings.Builder
	cases := []types.Type{
		intT,
		types.NewPointer(intT),
		&types.PointerType{Elem: intT, Qual: types.Const},
		&types.PointerType{Elem: intT, Qual: types.Immutable},
		types.NewSlice(types.GetBuiltin(types.Char)),
		types.NewArray(types.GetBuiltin(types.Ubyte), 16),
		&types.FunctionType{
			Linkage:    types.LinkageD,
			Return:     types.NewParamType(voidT),
			Params:     []types.ParamType{types.NewParamType(intT), {Type: intT, IsRef: true}},
			IsVariadic: true,
		},
	}
	for _, c := range cases {
		m, err := mangleType(c)
		if err != nil {
			t.Fatalf("mangleType(%s): %v", c, err)
		}
		fmt.Fprintf(&sb, "%-24s %s\n", c.String(), m)
	}

	snaps.MatchSnapshot(t, sb.String())
}
