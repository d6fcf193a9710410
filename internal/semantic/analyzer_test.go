package semantic_test

import (
	"errors"
	"testing"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/evaluator"
	"github.com/cwbudde/go-sdc/internal/layout"
	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

// ============================================================================
// Test Harness
// ============================================================================

func newTestPass() *semantic.SemanticPass {
	return semantic.NewPass(semantic.NewContext(), evaluator.Builder, layout.Builder, nil)
}

// analyze registers a module named test and drives the pass to completion.
func analyze(t *testing.T, decls ...ast.Declaration) (*semantic.SemanticPass, *semantic.Module) {
	t.Helper()
	pass, mod, err := tryAnalyze(decls...)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	return pass, mod
}

func tryAnalyze(decls ...ast.Declaration) (*semantic.SemanticPass, *semantic.Module, error) {
	pass := newTestPass()
	mod, err := pass.AddModule(&ast.Module{Name: "test", Declarations: decls})
	if err != nil {
		return nil, nil, err
	}
	if err := pass.Terminate(); err != nil {
		return nil, nil, err
	}
	return pass, mod, nil
}

// expectError runs analysis and asserts it fails with the given kind.
func expectError(t *testing.T, kind semantic.ErrorKind, decls ...ast.Declaration) {
	t.Helper()
	_, _, err := tryAnalyze(decls...)
	if err == nil {
		t.Fatal("expected an analysis error")
	}
	var semErr *semantic.SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected a semantic error, got %v", err)
	}
	if semErr.Kind != kind {
		t.Fatalf("expected %v, got %v (%v)", kind, semErr.Kind, err)
	}
}

func lookup(t *testing.T, pass *semantic.SemanticPass, mod *semantic.Module, name string) semantic.Symbol {
	t.Helper()
	sym := mod.Scope.Lookup(pass.Context.GetName(name))
	if sym == nil {
		t.Fatalf("symbol '%s' not found in module scope", name)
	}
	return sym
}

// AST shorthands.

func named(name string) *ast.NamedType {
	return &ast.NamedType{Path: []string{name}}
}

func intLit(v uint64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: v}
}

func binary(op ast.BinaryOp, lhs, rhs ast.Expression) *ast.BinaryExpression {
	return &ast.BinaryExpression{Op: op, LHS: lhs, RHS: rhs}
}

func identifier(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func entryValue(t *testing.T, v *semantic.Variable) uint64 {
	t.Helper()
	lit, ok := v.Value.(*semantic.IntegerLiteral)
	if !ok {
		t.Fatalf("entry '%s' value is %T, want integer literal", v.Name, v.Value)
	}
	return lit.Value
}

// ============================================================================
// Enums
// ============================================================================

func TestEnumChain(t *testing.T) {
	pass, mod := analyze(t, &ast.EnumDecl{
		Name: "E",
		Entries: []ast.EnumEntry{
			{Name: "A"},
			{Name: "B"},
			{Name: "C", Value: intLit(5)},
			{Name: "D"},
		},
	})

	e, ok := lookup(t, pass, mod, "E").(*semantic.Enum)
	if !ok {
		t.Fatal("E is not an enum symbol")
	}

	if !e.Underlying.Equals(types.GetBuiltin(types.Int)) {
		t.Errorf("underlying type = %s, want int", e.Underlying)
	}

	want := []uint64{0, 1, 5, 6}
	if len(e.Entries) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(e.Entries), len(want))
	}
	for i, w := range want {
		if got := entryValue(t, e.Entries[i]); got != w {
			t.Errorf("entry %d value = %d, want %d", i, got, w)
		}
	}

	if e.Mangle.String() != "4test1E" {
		t.Errorf("enum mangle chain = %q, want %q", e.Mangle, "4test1E")
	}
	mangled, err := semantic.MangleType(types.NewAggregate(e))
	if err != nil {
		t.Fatalf("MangleType: %v", err)
	}
	if mangled != "E4test1E" {
		t.Errorf("enum type mangle = %q, want %q", mangled, "E4test1E")
	}
}

func TestEnumEntriesReferencingEarlierEntries(t *testing.T) {
	pass, mod := analyze(t, &ast.EnumDecl{
		Name: "E",
		Entries: []ast.EnumEntry{
			{Name: "A", Value: intLit(2)},
			{Name: "B", Value: binary(ast.OpAdd, identifier("A"), intLit(3))},
		},
	})

	e := lookup(t, pass, mod, "E").(*semantic.Enum)
	if got := entryValue(t, e.Entries[1]); got != 5 {
		t.Errorf("B = %d, want 5", got)
	}
}

func TestEnumForwardReferenceCycles(t *testing.T) {
	// A = B while B = A + 1: a genuine cycle through the entry chain.
	expectError(t, semantic.ErrCycle, &ast.EnumDecl{
		Name: "E",
		Entries: []ast.EnumEntry{
			{Name: "A", Value: identifier("B")},
			{Name: "B"},
		},
	})
}

func TestEnumRejectsNonIntegralBase(t *testing.T) {
	expectError(t, semantic.ErrUnsupportedConstruct, &ast.EnumDecl{
		Name: "E",
		Base: &ast.SliceTypeExpr{Elem: named("char")},
		Entries: []ast.EnumEntry{
			{Name: "A"},
		},
	})
}

func TestEnumBoolBase(t *testing.T) {
	pass, mod := analyze(t, &ast.EnumDecl{
		Name: "Flag",
		Base: named("bool"),
		Entries: []ast.EnumEntry{
			{Name: "No", Value: &ast.BoolLiteral{Value: false}},
		},
	})

	e := lookup(t, pass, mod, "Flag").(*semantic.Enum)
	if b, _ := types.AsBuiltin(e.Underlying); b != types.Bool {
		t.Errorf("underlying = %s, want bool", e.Underlying)
	}
}

// ============================================================================
// Variables and Narrowing
// ============================================================================

func TestVariableNarrowingWithProof(t *testing.T) {
	pass, mod := analyze(t, &ast.VariableDecl{
		Name:  "b",
		Type:  named("byte"),
		Value: binary(ast.OpAdd, intLit(5), intLit(6)),
	})

	v := lookup(t, pass, mod, "b").(*semantic.Variable)
	lit, ok := v.Value.(*semantic.IntegerLiteral)
	if !ok {
		t.Fatalf("value is %T, want folded literal", v.Value)
	}
	if lit.Value != 11 {
		t.Errorf("value = %d, want 11", lit.Value)
	}
}

func TestVariableNarrowingRejected(t *testing.T) {
	expectError(t, semantic.ErrTypeMismatch, &ast.VariableDecl{
		Name:  "b",
		Type:  named("byte"),
		Value: binary(ast.OpAdd, intLit(300), intLit(0)),
	})
}

func TestVariableAutoInference(t *testing.T) {
	pass, mod := analyze(t, &ast.VariableDecl{
		Name:  "x",
		Value: intLit(42),
	})

	v := lookup(t, pass, mod, "x").(*semantic.Variable)
	if !v.Type.Equals(types.GetBuiltin(types.Int)) {
		t.Errorf("inferred type = %s, want int", v.Type)
	}
}

func TestVariableDefaultInitializer(t *testing.T) {
	pass, mod := analyze(t, &ast.VariableDecl{
		Name: "x",
		Type: named("long"),
	})

	v := lookup(t, pass, mod, "x").(*semantic.Variable)
	lit, ok := v.Value.(*semantic.IntegerLiteral)
	if !ok {
		t.Fatalf("default value is %T, want integer literal", v.Value)
	}
	if lit.Value != 0 {
		t.Errorf("default = %d, want 0", lit.Value)
	}
}

func TestUnresolvedIdentifier(t *testing.T) {
	expectError(t, semantic.ErrUnresolvedIdentifier, &ast.VariableDecl{
		Name:  "x",
		Value: identifier("missing"),
	})
}

func TestDuplicateSymbol(t *testing.T) {
	expectError(t, semantic.ErrDuplicateSymbol,
		&ast.VariableDecl{Name: "x", Value: intLit(1)},
		&ast.VariableDecl{Name: "x", Value: intLit(2)},
	)
}

// ============================================================================
// Conditional Declarations
// ============================================================================

func TestStaticIfSelectsBranch(t *testing.T) {
	pass, mod := analyze(t, &ast.StaticIfDecl{
		Condition: &ast.BoolLiteral{Value: true},
		Then:      []ast.Declaration{&ast.VariableDecl{Name: "yes", Value: intLit(1)}},
		Else:      []ast.Declaration{&ast.VariableDecl{Name: "no", Value: intLit(2)}},
	})

	lookup(t, pass, mod, "yes")
	if mod.Scope.Lookup(pass.Context.GetName("no")) != nil {
		t.Error("else branch must not be declared")
	}
}

func TestStaticIfOnManifestConstant(t *testing.T) {
	pass, mod := analyze(t,
		&ast.ValueAliasDecl{Name: "enabled", Value: &ast.BoolLiteral{Value: true}},
		&ast.StaticIfDecl{
			Condition: identifier("enabled"),
			Then:      []ast.Declaration{&ast.VariableDecl{Name: "yes", Value: intLit(1)}},
		},
	)
	lookup(t, pass, mod, "yes")
}

func TestVersionBlocks(t *testing.T) {
	pass, mod := analyze(t,
		&ast.VersionDecl{
			Ident: "SDC",
			Then:  []ast.Declaration{&ast.VariableDecl{Name: "onSDC", Value: intLit(1)}},
		},
		&ast.VersionDecl{
			Ident: "NoSuchVersion",
			Then:  []ast.Declaration{&ast.VariableDecl{Name: "off", Value: intLit(1)}},
			Else:  []ast.Declaration{&ast.VariableDecl{Name: "fallback", Value: intLit(2)}},
		},
	)

	lookup(t, pass, mod, "onSDC")
	lookup(t, pass, mod, "fallback")
	if mod.Scope.Lookup(pass.Context.GetName("off")) != nil {
		t.Error("disabled version branch must not be declared")
	}
}

// ============================================================================
// Structs
// ============================================================================

func TestSelfReferentialStruct(t *testing.T) {
	// A struct containing a pointer to its own type converges through the
	// stage lattice without deadlock.
	pass, mod := analyze(t, &ast.StructDecl{
		Name: "Node",
		Members: []ast.Declaration{
			&ast.VariableDecl{Name: "next", Type: &ast.PointerTypeExpr{Elem: named("Node")}},
			&ast.VariableDecl{Name: "value", Type: named("int")},
		},
	})

	s, ok := lookup(t, pass, mod, "Node").(*semantic.Struct)
	if !ok {
		t.Fatal("Node is not a struct symbol")
	}
	if s.Step != semantic.Processed {
		t.Fatalf("struct stopped at %v", s.Step)
	}

	if len(s.Fields) != 2 {
		t.Fatalf("field count = %d, want 2", len(s.Fields))
	}
	ptr, ok := s.Fields[0].Type.(*types.PointerType)
	if !ok {
		t.Fatalf("next field type = %s, want pointer", s.Fields[0].Type)
	}
	agg, ok := ptr.Elem.(*types.AggregateType)
	if !ok || agg.Agg != types.Aggregate(s) {
		t.Errorf("next field must point back at Node, got %s", ptr.Elem)
	}
}

func TestStructInitTuple(t *testing.T) {
	pass, mod := analyze(t, &ast.StructDecl{
		Name: "P",
		Members: []ast.Declaration{
			&ast.VariableDecl{Name: "x", Type: named("int"), Value: intLit(3)},
			&ast.VariableDecl{Name: "y", Type: named("int")},
		},
	})

	s := lookup(t, pass, mod, "P").(*semantic.Struct)
	if s.Init == nil {
		t.Fatal("struct has no init variable")
	}
	tuple, ok := s.Init.Value.(*semantic.TupleExpression)
	if !ok {
		t.Fatalf("init value is %T, want tuple", s.Init.Value)
	}
	if len(tuple.Values) != 2 {
		t.Fatalf("init tuple arity = %d, want 2", len(tuple.Values))
	}
	if got := tuple.Values[0].(*semantic.IntegerLiteral).Value; got != 3 {
		t.Errorf("x default = %d, want 3", got)
	}

	// Member order: init first, then fields.
	if s.Members[0] != semantic.Symbol(s.Init) {
		t.Error("init must be the first member")
	}
}

func TestUnionVoidInit(t *testing.T) {
	pass, mod := analyze(t, &ast.UnionDecl{
		Name: "U",
		Members: []ast.Declaration{
			&ast.VariableDecl{Name: "i", Type: named("int")},
			&ast.VariableDecl{Name: "l", Type: named("long")},
		},
	})

	u := lookup(t, pass, mod, "U").(*semantic.Union)
	if _, ok := u.Init.Value.(*semantic.VoidInitializer); !ok {
		t.Errorf("union init is %T, want void initializer", u.Init.Value)
	}
}

// ============================================================================
// Aliases
// ============================================================================

func TestValueAlias(t *testing.T) {
	pass, mod := analyze(t, &ast.ValueAliasDecl{
		Name:  "answer",
		Value: binary(ast.OpAdd, intLit(40), intLit(2)),
	})

	a := lookup(t, pass, mod, "answer").(*semantic.ValueAlias)
	if got := a.Value.(*semantic.IntegerLiteral).Value; got != 42 {
		t.Errorf("value = %d, want 42", got)
	}
	if a.Mangle.String() != "iV42" {
		t.Errorf("mangle = %q, want %q", a.Mangle, "iV42")
	}
}

func TestTypeAlias(t *testing.T) {
	pass, mod := analyze(t, &ast.TypeAliasDecl{
		Name: "Size",
		Type: named("ulong"),
	})

	a := lookup(t, pass, mod, "Size").(*semantic.TypeAlias)
	if !a.Type.Equals(types.GetBuiltin(types.Ulong)) {
		t.Errorf("aliased type = %s, want ulong", a.Type)
	}
	if a.Mangle.String() != "m" {
		t.Errorf("mangle = %q, want %q", a.Mangle, "m")
	}
}

func TestSymbolAliasAdoptsMangle(t *testing.T) {
	pass, mod := analyze(t,
		&ast.VariableDecl{Name: "target", Type: named("int"), Value: intLit(1)},
		&ast.SymbolAliasDecl{Name: "alias_", Target: identifier("target")},
	)

	target := lookup(t, pass, mod, "target").(*semantic.Variable)
	alias := lookup(t, pass, mod, "alias_").(*semantic.SymbolAlias)
	if alias.Target != semantic.Symbol(target) {
		t.Error("alias target mismatch")
	}
	if alias.Mangle != target.Mangle {
		t.Errorf("alias mangle = %q, want %q", alias.Mangle, target.Mangle)
	}
}
