package semantic_test

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

// ============================================================================
// Function Analysis Tests
// ============================================================================

func returnStmt(v ast.Expression) *ast.ReturnStatement {
	return &ast.ReturnStatement{Value: v}
}

func body(stmts ...ast.Statement) *ast.BlockStatement {
	return &ast.BlockStatement{Statements: stmts}
}

func TestFunctionMangleContainsScopePrefix(t *testing.T) {
	pass, mod := analyze(t, &ast.FunctionDecl{
		Name:       "foo",
		ReturnType: named("void"),
		Params: []ast.Param{
			{Name: "a", Type: named("int")},
			{Name: "b", Type: named("long")},
		},
	})

	fn := lookup(t, pass, mod, "foo").(*semantic.Function)
	mangle := fn.Mangle.String()
	if !strings.HasPrefix(mangle, "_D") {
		t.Errorf("mangle %q must start with _D", mangle)
	}
	if !strings.Contains(mangle, "4test3foo") {
		t.Errorf("mangle %q must contain the enclosing scope prefix", mangle)
	}
	if mangle != "_D4test3fooFilZv" {
		t.Errorf("mangle = %q, want _D4test3fooFilZv", mangle)
	}
}

func TestCLinkageManglesToBareName(t *testing.T) {
	pass, mod := analyze(t, &ast.FunctionDecl{
		Name:       "puts",
		Linkage:    ast.LinkageC,
		ReturnType: named("int"),
		Params: []ast.Param{
			{Name: "s", Type: &ast.PointerTypeExpr{Elem: named("char")}},
		},
	})

	fn := lookup(t, pass, mod, "puts").(*semantic.Function)
	if fn.Mangle.String() != "puts" {
		t.Errorf("C mangle = %q, want bare name", fn.Mangle)
	}
}

func TestAutoReturnInference(t *testing.T) {
	pass, mod := analyze(t, &ast.FunctionDecl{
		Name: "f",
		Body: body(returnStmt(intLit(42))),
	})

	fn := lookup(t, pass, mod, "f").(*semantic.Function)
	if !fn.Return.Type.Equals(types.GetBuiltin(types.Int)) {
		t.Errorf("inferred return = %s, want int", fn.Return.Type)
	}
}

func TestAutoReturnDefaultsToVoid(t *testing.T) {
	pass, mod := analyze(t, &ast.FunctionDecl{
		Name: "f",
		Body: body(),
	})

	fn := lookup(t, pass, mod, "f").(*semantic.Function)
	if !types.IsVoid(fn.Return.Type) {
		t.Errorf("inferred return = %s, want void", fn.Return.Type)
	}
}

func TestAutoReturnPromotesAcrossReturns(t *testing.T) {
	pass, mod := analyze(t, &ast.FunctionDecl{
		Name: "f",
		Body: body(
			&ast.IfStatement{
				Condition: &ast.BoolLiteral{Value: true},
				Then:      returnStmt(intLit(1)),
			},
			returnStmt(&ast.IntegerLiteral{Value: 2, IsLong: true}),
		),
	})

	fn := lookup(t, pass, mod, "f").(*semantic.Function)
	if !fn.Return.Type.Equals(types.GetBuiltin(types.Long)) {
		t.Errorf("inferred return = %s, want long", fn.Return.Type)
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	expectError(t, semantic.ErrTypeMismatch, &ast.FunctionDecl{
		Name:       "f",
		ReturnType: named("byte"),
		Body:       body(returnStmt(intLit(300))),
	})
}

func TestParameterDefaultsAreChecked(t *testing.T) {
	expectError(t, semantic.ErrTypeMismatch, &ast.FunctionDecl{
		Name:       "f",
		ReturnType: named("void"),
		Params: []ast.Param{
			{Name: "b", Type: named("byte"), Default: intLit(1000)},
		},
	})
}

func TestLocalVariablesAndCalls(t *testing.T) {
	// int double_(int x) { return x + x; }
	// int use() { int v = 3; return double_(v); }
	pass, mod := analyze(t,
		&ast.FunctionDecl{
			Name:       "double_",
			ReturnType: named("int"),
			Params:     []ast.Param{{Name: "x", Type: named("int")}},
			Body: body(
				returnStmt(binary(ast.OpAdd, identifier("x"), identifier("x"))),
			),
		},
		&ast.FunctionDecl{
			Name:       "use",
			ReturnType: named("int"),
			Body: body(
				&ast.DeclarationStatement{
					Declaration: &ast.VariableDecl{Name: "v", Type: named("int"), Value: intLit(3)},
				},
				returnStmt(&ast.CallExpression{
					Callee:    identifier("double_"),
					Arguments: []ast.Expression{identifier("v")},
				}),
			),
		},
	)

	use := lookup(t, pass, mod, "use").(*semantic.Function)
	if use.Step != semantic.Processed {
		t.Fatalf("use stopped at %v", use.Step)
	}
	if use.Body == nil || len(use.Body.Statements) != 2 {
		t.Fatal("body not lowered")
	}
	ret, ok := use.Body.Statements[1].(*semantic.ReturnStatement)
	if !ok {
		t.Fatal("second statement is not a return")
	}
	if _, ok := ret.Value.(*semantic.CallExpression); !ok {
		t.Fatalf("return value is %T, want call", ret.Value)
	}
}

func TestNestedFunctionCapture(t *testing.T) {
	// int outer() { int captured = 1; int inner() { return captured; } return inner(); }
	pass, mod := analyze(t, &ast.FunctionDecl{
		Name:       "outer",
		ReturnType: named("int"),
		Body: body(
			&ast.DeclarationStatement{
				Declaration: &ast.VariableDecl{Name: "captured", Type: named("int"), Value: intLit(1)},
			},
			&ast.DeclarationStatement{
				Declaration: &ast.FunctionDecl{
					Name:       "inner",
					ReturnType: named("int"),
					Body:       body(returnStmt(identifier("captured"))),
				},
			},
			returnStmt(&ast.CallExpression{Callee: identifier("inner")}),
		),
	})

	outer := lookup(t, pass, mod, "outer").(*semantic.Function)
	if outer.Scope == nil {
		t.Fatal("outer has no scope")
	}
	inner, ok := outer.Body.Scope.Lookup(pass.Context.GetName("inner")).(*semantic.Function)
	if !ok {
		t.Fatal("inner not found")
	}

	if !inner.HasContext {
		t.Error("inner must carry a context")
	}
	if inner.Type.Contexts != 1 {
		t.Errorf("inner contexts = %d, want 1", inner.Type.Contexts)
	}
	if inner.Params[0].Name.String() != "__ctx" {
		t.Errorf("first parameter = %s, want __ctx", inner.Params[0].Name)
	}

	captured := false
	for _, c := range outer.Captures {
		if c.Name.String() == "captured" {
			captured = true
			if c.Storage != semantic.StorageCapture {
				t.Errorf("captured storage = %v, want capture", c.Storage)
			}
		}
	}
	if !captured {
		t.Error("outer's closure set must contain 'captured'")
	}
}

// ============================================================================
// buildMain
// ============================================================================

func TestBuildMainVoid(t *testing.T) {
	pass, _ := analyze(t, &ast.FunctionDecl{
		Name:       "main",
		ReturnType: named("void"),
		Body:       body(),
	})

	boot, err := pass.BuildMain()
	if err != nil {
		t.Fatalf("BuildMain: %v", err)
	}
	if boot.Name.String() != "_Dmain" || boot.Linkage != types.LinkageC {
		t.Errorf("bootstrap = %s (%s linkage), want C-linkage _Dmain", boot.Name, boot.Linkage)
	}
	if !boot.Return.Type.Equals(types.GetBuiltin(types.Int)) {
		t.Errorf("bootstrap returns %s, want int", boot.Return.Type)
	}

	// void main: call then return 0.
	if len(boot.Body.Statements) != 2 {
		t.Fatalf("bootstrap body has %d statements, want 2", len(boot.Body.Statements))
	}
	ret := boot.Body.Statements[1].(*semantic.ReturnStatement)
	lit, ok := ret.Value.(*semantic.IntegerLiteral)
	if !ok || lit.Value != 0 {
		t.Error("void main bootstrap must return 0")
	}
}

func TestBuildMainInt(t *testing.T) {
	pass, _ := analyze(t, &ast.FunctionDecl{
		Name:       "main",
		ReturnType: named("int"),
		Body:       body(returnStmt(intLit(7))),
	})

	boot, err := pass.BuildMain()
	if err != nil {
		t.Fatalf("BuildMain: %v", err)
	}
	if len(boot.Body.Statements) != 1 {
		t.Fatalf("bootstrap body has %d statements, want 1", len(boot.Body.Statements))
	}
	ret := boot.Body.Statements[0].(*semantic.ReturnStatement)
	if _, ok := ret.Value.(*semantic.CallExpression); !ok {
		t.Error("int main bootstrap must return main's value directly")
	}
}

func TestBuildMainMissing(t *testing.T) {
	pass, _ := analyze(t, &ast.VariableDecl{Name: "x", Value: intLit(1)})

	if _, err := pass.BuildMain(); err == nil {
		t.Fatal("expected an error for a missing main")
	}
}
