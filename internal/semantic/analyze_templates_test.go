package semantic_test

import (
	"testing"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

// ============================================================================
// Template Analysis Tests
// ============================================================================

// boxTemplate declares: template Box(T) { struct Box { T value; } }
func boxTemplate() *ast.TemplateDecl {
	return &ast.TemplateDecl{
		Name: "Box",
		Params: []ast.TemplateParam{
			{Kind: ast.TemplateParamType, Name: "T"},
		},
		Members: []ast.Declaration{
			&ast.StructDecl{
				Name: "Box",
				Members: []ast.Declaration{
					&ast.VariableDecl{Name: "value", Type: named("T")},
				},
			},
		},
	}
}

func instantiate(target string, args ...ast.TypeExpression) *ast.InstantiateType {
	tArgs := make([]ast.TemplateArgument, len(args))
	for i, a := range args {
		tArgs[i] = ast.TemplateArgument{Type: a}
	}
	return &ast.InstantiateType{
		Target:    &ast.Identifier{Name: target},
		Arguments: tArgs,
	}
}

func TestTemplateInstantiation(t *testing.T) {
	pass, mod := analyze(t,
		boxTemplate(),
		&ast.TypeAliasDecl{Name: "IntBox", Type: instantiate("Box", named("int"))},
	)

	alias := lookup(t, pass, mod, "IntBox").(*semantic.TypeAlias)
	agg, ok := alias.Type.(*types.AggregateType)
	if !ok {
		t.Fatalf("aliased type = %s, want aggregate", alias.Type)
	}
	box, ok := agg.Agg.(*semantic.Struct)
	if !ok {
		t.Fatalf("instance member is %T, want struct", agg.Agg)
	}
	if len(box.Fields) != 1 {
		t.Fatalf("field count = %d, want 1", len(box.Fields))
	}
	if !box.Fields[0].Type.Equals(types.GetBuiltin(types.Int)) {
		t.Errorf("value field type = %s, want int", box.Fields[0].Type)
	}
}

func TestInstantiationDeduplicates(t *testing.T) {
	pass, mod := analyze(t,
		boxTemplate(),
		&ast.TypeAliasDecl{Name: "A", Type: instantiate("Box", named("int"))},
		&ast.TypeAliasDecl{Name: "B", Type: instantiate("Box", named("int"))},
		&ast.TypeAliasDecl{Name: "C", Type: instantiate("Box", named("long"))},
	)

	a := lookup(t, pass, mod, "A").(*semantic.TypeAlias)
	b := lookup(t, pass, mod, "B").(*semantic.TypeAlias)
	c := lookup(t, pass, mod, "C").(*semantic.TypeAlias)

	if !a.Type.Equals(b.Type) {
		t.Error("identical instantiations must share one instance")
	}
	if a.Type.Equals(c.Type) {
		t.Error("different arguments must produce different instances")
	}

	tpl := lookup(t, pass, mod, "Box").(*semantic.Template)
	if len(tpl.Instances) != 2 {
		t.Errorf("instance count = %d, want 2", len(tpl.Instances))
	}
}

func TestValueTemplateParameter(t *testing.T) {
	// template Fill(int n) { enum count = n; }
	pass, mod := analyze(t,
		&ast.TemplateDecl{
			Name: "Fill",
			Params: []ast.TemplateParam{
				{Kind: ast.TemplateParamValue, Name: "n", Type: named("int")},
			},
			Members: []ast.Declaration{
				&ast.ValueAliasDecl{Name: "count", Value: &ast.Identifier{Name: "n"}},
			},
		},
		&ast.SymbolAliasDecl{
			Name: "five",
			Target: &ast.InstantiateExpression{
				Target:    &ast.Identifier{Name: "Fill"},
				Arguments: []ast.TemplateArgument{{Value: intLit(5)}},
			},
		},
	)

	alias := lookup(t, pass, mod, "five").(*semantic.SymbolAlias)
	inst, ok := alias.Target.(*semantic.TemplateInstance)
	if !ok {
		t.Fatalf("alias target is %T, want template instance", alias.Target)
	}

	count, ok := inst.Scope.Lookup(pass.Context.GetName("count")).(*semantic.ValueAlias)
	if !ok {
		t.Fatal("instance has no count member")
	}
	lit, ok := count.Value.(*semantic.IntegerLiteral)
	if !ok || lit.Value != 5 {
		t.Errorf("count = %v, want 5", count.Value)
	}
}

func TestTemplateArgumentCountMismatch(t *testing.T) {
	expectError(t, semantic.ErrUnsupportedConstruct,
		boxTemplate(),
		&ast.TypeAliasDecl{Name: "Bad", Type: instantiate("Box", named("int"), named("long"))},
	)
}

func TestTemplateMixinSplicesMembers(t *testing.T) {
	// template Common() { int shared_; }  mixin Common;
	pass, mod := analyze(t,
		&ast.TemplateDecl{
			Name: "Common",
			Members: []ast.Declaration{
				&ast.VariableDecl{Name: "shared_", Type: named("int")},
			},
		},
		&ast.TemplateMixinDecl{Target: &ast.Identifier{Name: "Common"}},
	)

	lookup(t, pass, mod, "shared_")
}
