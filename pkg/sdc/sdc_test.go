package sdc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
)

func TestEngineAnalyzesModules(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mod, err := engine.AddModule(&ast.Module{
		Name: "app",
		Declarations: []ast.Declaration{
			&ast.VariableDecl{Name: "x", Value: &ast.IntegerLiteral{Value: 1}},
		},
	})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if err := engine.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	if mod.Scope.Lookup(engine.Pass().Context.GetName("x")) == nil {
		t.Error("module does not contain x")
	}
}

func TestAddWithoutParserFails(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := engine.Add("missing.d", nil); err == nil {
		t.Fatal("Add must fail without a registered parser")
	}
}

func TestWithVersions(t *testing.T) {
	engine, err := New(WithVersions("CustomTag"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !engine.Pass().Versions["CustomTag"] {
		t.Error("custom version identifier not registered")
	}
	if !engine.Pass().Versions["SDC"] {
		t.Error("default version identifiers must survive the options")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sdc.yaml")
	content := "include:\n  - /usr/include/d\nversions:\n  - Tracing\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.IncludePaths) != 1 || cfg.IncludePaths[0] != "/usr/include/d" {
		t.Errorf("include paths = %v", cfg.IncludePaths)
	}
	if len(cfg.Versions) != 1 || cfg.Versions[0] != "Tracing" {
		t.Errorf("versions = %v", cfg.Versions)
	}

	engine, err := New(WithConfig(cfg))
	if err != nil {
		t.Fatalf("New(WithConfig): %v", err)
	}
	if !engine.Pass().Versions["Tracing"] {
		t.Error("config versions not applied")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/no/such/sdc.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestBuildMainThroughEngine(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = engine.AddModule(&ast.Module{
		Name: "app",
		Declarations: []ast.Declaration{
			&ast.FunctionDecl{
				Name:       "main",
				ReturnType: &ast.NamedType{Path: []string{"int"}},
				Body: &ast.BlockStatement{Statements: []ast.Statement{
					&ast.ReturnStatement{Value: &ast.IntegerLiteral{Value: 0}},
				}},
			},
		},
	})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if err := engine.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	boot, err := engine.BuildMain()
	if err != nil {
		t.Fatalf("BuildMain: %v", err)
	}
	if boot.Linkage != types.LinkageC {
		t.Error("bootstrap must use C linkage")
	}
}
