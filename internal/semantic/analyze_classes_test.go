package semantic_test

import (
	"testing"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

// ============================================================================
// Class Analysis Tests
// ============================================================================

func methodDecl(name string, override bool, ret string, params ...string) *ast.FunctionDecl {
	d := &ast.FunctionDecl{
		Name:       name,
		ReturnType: named(ret),
		IsOverride: override,
	}
	for i, p := range params {
		d.Params = append(d.Params, ast.Param{
			Name: string(rune('a' + i)),
			Type: named(p),
		})
	}
	return d
}

func findMethod(t *testing.T, c *semantic.Class, name string) *semantic.Method {
	t.Helper()
	for _, m := range c.Methods {
		if m != nil && m.Name.String() == name {
			return m
		}
	}
	t.Fatalf("method '%s' not found in class '%s'", name, c.Name)
	return nil
}

func TestClassInheritsFromObjectImplicitly(t *testing.T) {
	pass, mod := analyze(t, &ast.ClassDecl{Name: "A"})

	a := lookup(t, pass, mod, "A").(*semantic.Class)
	if a.Base == nil || a.Base.Name.String() != "Object" {
		t.Fatalf("base = %v, want Object", a.Base)
	}

	// Object's first slot is the vtable field; A inherits it.
	if len(a.Fields) == 0 {
		t.Fatal("class has no fields")
	}
	vtbl := a.Fields[0]
	if vtbl.Name.String() != "__vtbl" || vtbl.Index != 0 {
		t.Errorf("first field = %s at %d, want __vtbl at 0", vtbl.Name, vtbl.Index)
	}
}

func TestFieldIndicesExceedBaseIndices(t *testing.T) {
	pass, mod := analyze(t,
		&ast.ClassDecl{
			Name: "A",
			Members: []ast.Declaration{
				&ast.VariableDecl{Name: "x", Type: named("int")},
			},
		},
		&ast.ClassDecl{
			Name:  "B",
			Bases: []ast.TypeExpression{named("A")},
			Members: []ast.Declaration{
				&ast.VariableDecl{Name: "y", Type: named("int")},
			},
		},
	)

	a := lookup(t, pass, mod, "A").(*semantic.Class)
	b := lookup(t, pass, mod, "B").(*semantic.Class)

	maxBase := 0
	for _, f := range a.Fields {
		if f.Index > maxBase {
			maxBase = f.Index
		}
	}

	var y *semantic.Field
	for _, f := range b.Fields {
		if f.Name.String() == "y" {
			y = f
		}
	}
	if y == nil {
		t.Fatal("field y not found")
	}
	if y.Index <= maxBase {
		t.Errorf("y.Index = %d, must exceed every base index (max %d)", y.Index, maxBase)
	}
}

func TestOverrideAdoptsVtableIndex(t *testing.T) {
	pass, mod := analyze(t,
		&ast.ClassDecl{
			Name: "A",
			Members: []ast.Declaration{
				methodDecl("foo", false, "int", "int"),
			},
		},
		&ast.ClassDecl{
			Name:  "B",
			Bases: []ast.TypeExpression{named("A")},
			Members: []ast.Declaration{
				methodDecl("foo", true, "int", "int"),
			},
		},
	)

	a := lookup(t, pass, mod, "A").(*semantic.Class)
	b := lookup(t, pass, mod, "B").(*semantic.Class)

	aFoo := findMethod(t, a, "foo")
	bFoo := findMethod(t, b, "foo")

	if bFoo == aFoo {
		t.Fatal("B must declare its own foo")
	}
	if bFoo.Index != aFoo.Index {
		t.Errorf("override index = %d, want base index %d", bFoo.Index, aFoo.Index)
	}

	// The base method left B's overload set: lookup resolves to B's foo
	// alone.
	entry := b.Scope.Lookup(pass.Context.GetName("foo"))
	m, ok := entry.(*semantic.Method)
	if !ok {
		t.Fatalf("scope entry for foo is %T, want single method", entry)
	}
	if m != bFoo {
		t.Error("scope entry must be the overriding method")
	}
}

func TestOverrideWithoutBaseMatchRejected(t *testing.T) {
	expectError(t, semantic.ErrOverrideNotFound,
		&ast.ClassDecl{
			Name: "A",
			Members: []ast.Declaration{
				methodDecl("bar", true, "void"),
			},
		},
	)
}

func TestMatchingMethodWithoutOverrideMarkerRejected(t *testing.T) {
	expectError(t, semantic.ErrMissingOverride,
		&ast.ClassDecl{
			Name: "A",
			Members: []ast.Declaration{
				methodDecl("foo", false, "int", "int"),
			},
		},
		&ast.ClassDecl{
			Name:  "B",
			Bases: []ast.TypeExpression{named("A")},
			Members: []ast.Declaration{
				methodDecl("foo", false, "int", "int"),
			},
		},
	)
}

func TestDifferentSignatureIsNoOverride(t *testing.T) {
	// foo(long) does not match foo(int): it gets a fresh slot and needs
	// no override marker.
	pass, mod := analyze(t,
		&ast.ClassDecl{
			Name: "A",
			Members: []ast.Declaration{
				methodDecl("foo", false, "int", "int"),
			},
		},
		&ast.ClassDecl{
			Name:  "B",
			Bases: []ast.TypeExpression{named("A")},
			Members: []ast.Declaration{
				methodDecl("foo", false, "int", "long"),
			},
		},
	)

	a := lookup(t, pass, mod, "A").(*semantic.Class)
	b := lookup(t, pass, mod, "B").(*semantic.Class)

	aFoo := findMethod(t, a, "foo")

	var fresh *semantic.Method
	for _, m := range b.Methods {
		if m != nil && m.Name.String() == "foo" && m != aFoo {
			fresh = m
		}
	}
	if fresh == nil {
		t.Fatal("B's foo not found")
	}
	if fresh.Index == aFoo.Index {
		t.Error("distinct signature must not share the base slot")
	}
	if fresh.Index == 0 {
		t.Error("fresh method must have a real vtable index")
	}
}

func TestMethodThisParameter(t *testing.T) {
	pass, mod := analyze(t,
		&ast.ClassDecl{
			Name: "A",
			Members: []ast.Declaration{
				methodDecl("foo", false, "void"),
			},
		},
	)

	a := lookup(t, pass, mod, "A").(*semantic.Class)
	foo := findMethod(t, a, "foo")

	if foo.Type.Contexts != 1 {
		t.Fatalf("contexts = %d, want 1", foo.Type.Contexts)
	}
	this := foo.Params[0]
	if this.Name.String() != "this" {
		t.Fatalf("first parameter = %s, want this", this.Name)
	}
	agg, ok := this.Type.(*types.AggregateType)
	if !ok || agg.Agg != types.Aggregate(a) {
		t.Errorf("this type = %s, want A", this.Type)
	}
	if this.IsRef {
		t.Error("class receivers pass by reference semantics already")
	}
}

func TestStructMethodThisIsRef(t *testing.T) {
	pass, mod := analyze(t,
		&ast.StructDecl{
			Name: "S",
			Members: []ast.Declaration{
				methodDecl("get", false, "int"),
			},
		},
	)

	s := lookup(t, pass, mod, "S").(*semantic.Struct)
	sym := s.Scope.Lookup(pass.Context.GetName("get"))
	fn, ok := sym.(*semantic.Function)
	if !ok {
		t.Fatalf("struct member is %T, want function", sym)
	}
	if len(fn.Params) == 0 || !fn.Params[0].IsRef {
		t.Error("struct receivers must be ref")
	}
}

func TestClassMangle(t *testing.T) {
	pass, mod := analyze(t, &ast.ClassDecl{Name: "A"})

	a := lookup(t, pass, mod, "A").(*semantic.Class)
	mangled, err := semantic.MangleType(types.NewAggregate(a))
	if err != nil {
		t.Fatalf("MangleType: %v", err)
	}
	if mangled != "C4test1A" {
		t.Errorf("class mangle = %q, want %q", mangled, "C4test1A")
	}
}
