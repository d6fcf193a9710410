package semantic

import (
	"runtime"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/ident"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// Context owns the identifier interner and the registered source files.
// It is shared by every component of the pass; its operations are
// monotonic and idempotent.
type Context struct {
	Names *ident.Table
	files map[string]string
}

// NewContext creates an empty compilation context.
func NewContext() *Context {
	return &Context{
		Names: ident.NewTable(),
		files: make(map[string]string),
	}
}

// GetName interns an identifier.
func (c *Context) GetName(s string) ident.Name {
	return c.Names.Get(s)
}

// RegisterFile records the source text of a file for diagnostics.
func (c *Context) RegisterFile(path, source string) {
	c.files[path] = source
}

// Source returns the registered source text of a file, "" if unknown.
func (c *Context) Source(path string) string {
	return c.files[path]
}

// Evaluator folds expressions at compile time. It is an external
// collaborator; the pass only depends on this interface.
type Evaluator interface {
	// Evaluate folds an expression to a literal form.
	Evaluate(Expression) (Expression, error)

	// EvalIntegral folds an expression to its 64-bit integer bit pattern.
	EvalIntegral(Expression) (uint64, error)

	// EvalString folds an expression to a string value.
	EvalString(Expression) (string, error)
}

// EvaluatorBuilder constructs the evaluator once the pass exists, so the
// evaluator can resolve symbols through it.
type EvaluatorBuilder func(*SemanticPass) Evaluator

// DataLayout computes sizes and alignments of resolved types.
type DataLayout interface {
	Size(types.Type) (uint64, error)
	Align(types.Type) (uint64, error)
}

// DataLayoutBuilder constructs the data layout once the pass exists.
type DataLayoutBuilder func(*SemanticPass) DataLayout

// Parser turns a source file into an AST module. Parsing is outside the
// front-end; drivers inject an implementation.
type Parser interface {
	Parse(filename string, packages []string) (*ast.Module, error)
}

// MixinParser parses declaration text produced by string mixins. Without
// one registered, string mixins are rejected as unsupported.
type MixinParser interface {
	ParseDeclarations(loc token.Span, source string) ([]ast.Declaration, error)
}

// ObjectReference is the handle to the root Object class, resolved lazily
// from the builtin object module.
type ObjectReference struct {
	pass *SemanticPass
	cls  *Class
}

// Get resolves the root Object class.
func (o *ObjectReference) Get() (*Class, error) {
	if o.cls != nil {
		return o.cls, nil
	}

	mod, err := o.pass.objectModule()
	if err != nil {
		return nil, err
	}
	if err := o.pass.Scheduler.Require(nil, mod, Populated); err != nil {
		return nil, err
	}

	sym := mod.Scope.Lookup(o.pass.Context.GetName("Object"))
	cls, ok := sym.(*Class)
	if !ok {
		return nil, newInternal(mod.Location, "object module does not declare class Object")
	}
	o.cls = cls
	return cls, nil
}

// DefaultVersions returns the compile-time predicate set consumed by
// conditional declarations, including the host OS tags.
func DefaultVersions() map[string]bool {
	versions := map[string]bool{
		"SDC":    true,
		"D_LP64": true,
		"X86_64": true,
	}
	switch runtime.GOOS {
	case "linux":
		versions["Posix"] = true
		versions["linux"] = true
	case "darwin":
		versions["Posix"] = true
		versions["OSX"] = true
	case "freebsd":
		versions["Posix"] = true
		versions["FreeBSD"] = true
	case "windows":
		versions["Windows"] = true
	default:
		versions["Posix"] = true
	}
	return versions
}
