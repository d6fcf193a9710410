package semantic

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// SemanticPass is the front-end entry point. It owns the scheduler, the
// module table and the collaborator interfaces, and drives every
// registered module to Processed.
type SemanticPass struct {
	Context   *Context
	Evaluator Evaluator
	Layout    DataLayout
	Object    *ObjectReference
	Scheduler *Scheduler
	Versions  map[string]bool

	modules      map[string]*Module
	includePaths []string
	parser       Parser
	mixinParser  MixinParser
}

// NewPass creates a semantic pass. The evaluator and data layout are
// constructed through builders so they can call back into the pass.
func NewPass(ctx *Context, evalBuilder EvaluatorBuilder, layoutBuilder DataLayoutBuilder, includePaths []string) *SemanticPass {
	p := &SemanticPass{
		Context:      ctx,
		Scheduler:    NewScheduler(),
		Versions:     DefaultVersions(),
		modules:      make(map[string]*Module),
		includePaths: includePaths,
	}
	p.Object = &ObjectReference{pass: p}
	if evalBuilder != nil {
		p.Evaluator = evalBuilder(p)
	}
	if layoutBuilder != nil {
		p.Layout = layoutBuilder(p)
	}
	return p
}

// SetParser registers the parser collaborator used by Add and imports.
func (p *SemanticPass) SetParser(parser Parser) {
	p.parser = parser
}

// SetMixinParser registers the parser used to expand string mixins.
func (p *SemanticPass) SetMixinParser(mp MixinParser) {
	p.mixinParser = mp
}

// Add begins analysis of a source file and returns its module symbol.
func (p *SemanticPass) Add(filename string, packages []string) (*Module, error) {
	if p.parser == nil {
		return nil, newInternal(token.Span{}, "no parser registered")
	}

	astMod, err := p.parser.Parse(filename, packages)
	if err != nil {
		return nil, NewSyntaxError(filename, err)
	}

	if source, err := os.ReadFile(filename); err == nil {
		p.Context.RegisterFile(filename, string(source))
	}

	return p.AddModule(astMod)
}

// AddModule begins analysis of an already parsed module. The module is
// flattened immediately (it reaches Populated before AddModule returns)
// and driven to Processed by Terminate.
func (p *SemanticPass) AddModule(astMod *ast.Module) (*Module, error) {
	p.Scheduler.acquire()
	defer p.Scheduler.release()

	m, err := p.addModuleLocked(astMod)
	if err != nil {
		return nil, err
	}
	if err := p.Scheduler.Require(nil, m, Populated); err != nil {
		return nil, err
	}
	return m, nil
}

// addModuleLocked registers a module and schedules its analysis without
// waiting for any stage. The caller holds the run token.
func (p *SemanticPass) addModuleLocked(astMod *ast.Module) (*Module, error) {
	if m, ok := p.modules[astMod.FullName()]; ok {
		return m, nil
	}

	m := &Module{
		SymbolBase: SymbolBase{
			Location:   astMod.Loc(),
			Name:       p.Context.GetName(astMod.Name),
			Linkage:    types.LinkageD,
			Storage:    StorageStatic,
			Visibility: Public,
		},
		Packages: astMod.Packages,
	}
	p.modules[astMod.FullName()] = m

	a := &analysis{pass: p}
	a.schedule(m, func(b *analysis) error {
		return b.analyzeModule(astMod, m)
	})
	return m, nil
}

// Terminate drives all scheduled symbols to Processed.
func (p *SemanticPass) Terminate() error {
	p.Scheduler.acquire()
	defer p.Scheduler.release()
	return p.Scheduler.Terminate()
}

// Modules returns the registered modules keyed by qualified name.
func (p *SemanticPass) Modules() map[string]*Module {
	return p.modules
}

// analyzeModule is the task body of a module symbol.
func (b *analysis) analyzeModule(astMod *ast.Module, m *Module) error {
	m.Scope = NewScope(nil, m)
	b.scope = m.Scope

	for _, pkg := range astMod.Packages {
		b.appendMangle(pkg)
	}
	b.appendMangle(astMod.Name)
	m.Mangle = b.intern(b.manglePrefix)

	// Every module imports the builtin object module implicitly.
	if astMod.FullName() != "object" {
		objMod, err := b.pass.objectModule()
		if err != nil {
			return err
		}
		m.Scope.AddImport(objMod)
	}

	fl, err := b.flattenInto(m.Scope, nil, 0, 1, astMod.Declarations)
	if err != nil {
		return err
	}
	m.Members = fl.members
	b.publish(m, Populated)
	b.publish(m, Signed)

	for _, member := range m.Members {
		if err := b.require(member, Processed); err != nil {
			return err
		}
	}
	b.publish(m, Processed)
	return nil
}

// importModule resolves a qualified import path against the registered
// modules, falling back to the include paths through the parser.
func (p *SemanticPass) importModule(loc token.Span, path []string) (*Module, error) {
	name := strings.Join(path, ".")
	if name == "object" {
		return p.objectModule()
	}
	if m, ok := p.modules[name]; ok {
		return m, nil
	}

	if p.parser != nil {
		rel := filepath.Join(path...) + ".d"
		for _, dir := range p.includePaths {
			candidate := filepath.Join(dir, rel)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			astMod, err := p.parser.Parse(candidate, path[:len(path)-1])
			if err != nil {
				return nil, NewSyntaxError(candidate, err)
			}
			return p.addModuleLocked(astMod)
		}
	}

	return nil, NewUnresolvedIdentifier(loc, name)
}

// objectModule returns the builtin object module, synthesizing it on
// first use. It declares the root Object class; Object's analysis adds
// the implicit __vtbl field at slot 0.
func (p *SemanticPass) objectModule() (*Module, error) {
	if m, ok := p.modules["object"]; ok {
		return m, nil
	}

	astMod := &ast.Module{
		Name: "object",
		Declarations: []ast.Declaration{
			&ast.ClassDecl{Name: "Object"},
		},
	}
	return p.addModuleLocked(astMod)
}

// BuildMain locates the unique top-level main function and wraps it in a
// C-linkage _Dmain bootstrap returning int: a void main is called and 0
// returned, otherwise main's value is returned directly.
func (p *SemanticPass) BuildMain() (*Function, error) {
	p.Scheduler.acquire()
	defer p.Scheduler.release()

	mainName := p.Context.GetName("main")
	var mains []*Function
	for _, m := range p.modules {
		if m.Scope == nil {
			continue
		}
		switch sym := m.Scope.Lookup(mainName).(type) {
		case *Function:
			mains = append(mains, sym)
		case *OverloadSet:
			for _, s := range sym.Set {
				if fn, ok := s.(*Function); ok {
					mains = append(mains, fn)
				}
			}
		}
	}

	if len(mains) == 0 {
		return nil, NewUnresolvedIdentifier(token.Span{}, "main")
	}
	if len(mains) > 1 {
		return nil, NewDuplicateSymbol(mains[1].Location, "main")
	}

	main := mains[0]
	if err := p.Scheduler.Require(nil, main, Processed); err != nil {
		return nil, err
	}

	intType := types.GetBuiltin(types.Int)
	call := &CallExpression{
		Location: main.Location,
		Callee:   &FunctionRef{Location: main.Location, Fn: main},
		T:        main.Return.Type,
	}

	var body []Statement
	if types.IsVoid(main.Return.Type) {
		body = []Statement{
			&ExpressionStatement{Location: main.Location, Expression: call},
			&ReturnStatement{
				Location: main.Location,
				Value:    &IntegerLiteral{Location: main.Location, Value: 0, T: intType},
			},
		}
	} else {
		body = []Statement{
			&ReturnStatement{Location: main.Location, Value: call},
		}
	}

	boot := &Function{
		SymbolBase: SymbolBase{
			Location:   main.Location,
			Name:       p.Context.GetName("_Dmain"),
			Linkage:    types.LinkageC,
			Storage:    StorageStatic,
			Visibility: Public,
			Step:       Processed,
		},
		Return: types.NewParamType(intType),
		Type: &types.FunctionType{
			Linkage: types.LinkageC,
			Return:  types.NewParamType(intType),
		},
		Body: &BlockStatement{Location: main.Location, Statements: body},
	}
	boot.Mangle = p.Context.GetName("_Dmain")
	return boot, nil
}
