package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
)

// flattener turns a declaration list into symbol stubs registered in a
// scope, expanding conditional and mixin declarations on the way. Field
// and method indices are assigned in source order from the parent-provided
// counters.
type flattener struct {
	a           *analysis
	scope       *Scope
	aggregate   Symbol // non-nil while flattening aggregate members
	members     []Symbol
	fieldIndex  int
	methodIndex int
}

// flattenInto flattens decls into scope. agg is the enclosing aggregate
// symbol for member declarations, nil elsewhere. fieldStart and
// methodStart seed the slot counters.
func (a *analysis) flattenInto(scope *Scope, agg Symbol, fieldStart, methodStart int, decls []ast.Declaration) (*flattener, error) {
	f := &flattener{
		a:           a,
		scope:       scope,
		aggregate:   agg,
		fieldIndex:  fieldStart,
		methodIndex: methodStart,
	}
	if err := f.flatten(decls); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *flattener) flatten(decls []ast.Declaration) error {
	for _, d := range decls {
		if err := f.visit(d); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) visit(d ast.Declaration) error {
	switch decl := d.(type) {
	case *ast.ImportDecl:
		return f.visitImport(decl)
	case *ast.FunctionDecl:
		return f.visitFunction(decl)
	case *ast.VariableDecl:
		return f.visitVariable(decl)
	case *ast.StructDecl:
		return f.visitStruct(decl)
	case *ast.UnionDecl:
		return f.visitUnion(decl)
	case *ast.ClassDecl:
		return f.visitClass(decl)
	case *ast.InterfaceDecl:
		return f.visitInterface(decl)
	case *ast.EnumDecl:
		return f.visitEnum(decl)
	case *ast.TemplateDecl:
		return f.visitTemplate(decl)
	case *ast.TypeAliasDecl:
		return f.visitTypeAlias(decl)
	case *ast.ValueAliasDecl:
		return f.visitValueAlias(decl)
	case *ast.SymbolAliasDecl:
		return f.visitSymbolAlias(decl)
	case *ast.StaticIfDecl:
		return f.visitStaticIf(decl)
	case *ast.VersionDecl:
		return f.visitVersion(decl)
	case *ast.MixinDecl:
		return f.visitMixin(decl)
	case *ast.TemplateMixinDecl:
		return f.visitTemplateMixin(decl)
	default:
		return NewUnsupported(d.Loc(), "unsupported declaration %s", d)
	}
}

// stub fills the attributes every fresh symbol starts with.
func (f *flattener) stub(d ast.Declaration, name string, vis ast.Visibility) SymbolBase {
	storage := StorageStatic
	if f.a.fun != nil {
		storage = StorageLocal
	}
	return SymbolBase{
		Location:   d.Loc(),
		Name:       f.a.intern(name),
		Linkage:    resolveLinkage(ast.LinkageDefault),
		Visibility: resolveVisibility(vis),
		Storage:    storage,
		Step:       Parsed,
	}
}

func resolveVisibility(v ast.Visibility) Visibility {
	switch v {
	case ast.VisibilityProtected:
		return Protected
	case ast.VisibilityPrivate:
		return Private
	case ast.VisibilityPackage:
		return Package
	}
	return Public
}

func resolveLinkage(l ast.Linkage) types.Linkage {
	if l == ast.LinkageC {
		return types.LinkageC
	}
	return types.LinkageD
}

func (f *flattener) visitImport(decl *ast.ImportDecl) error {
	for _, path := range decl.Modules {
		m, err := f.a.pass.importModule(decl.Loc(), path)
		if err != nil {
			return err
		}
		f.scope.AddImport(m)
	}
	return nil
}

func (f *flattener) visitFunction(decl *ast.FunctionDecl) error {
	if decl.Linkage == ast.LinkageOther {
		return NewUnsupported(decl.Loc(), "unsupported linkage on '%s'", decl.Name)
	}

	name := decl.Name
	if decl.IsConstructor {
		name = "this"
	}

	base := f.stub(decl, name, decl.Visibility)
	base.Linkage = resolveLinkage(decl.Linkage)
	// A function closes over its surroundings when it is declared directly
	// inside a function body. Aggregate members never get a context of
	// their own, even when the aggregate itself carries one.
	base.HasContext = !decl.IsStatic && f.aggregate == nil && f.a.fun != nil

	var sym Symbol
	if f.aggregate != nil && !decl.IsStatic && isClassSymbol(f.aggregate) {
		index := 0
		if !decl.IsOverride && !decl.IsConstructor {
			index = f.methodIndex
			f.methodIndex++
		}
		sym = &Method{Function: Function{SymbolBase: base}, Index: index}
	} else {
		sym = &Function{SymbolBase: base}
	}

	if err := f.scope.AddOverloadable(sym); err != nil {
		return err
	}
	f.members = append(f.members, sym)

	f.a.schedule(sym, func(b *analysis) error {
		return b.analyzeFunction(decl, sym)
	})
	return nil
}

func isClassSymbol(s Symbol) bool {
	_, ok := s.(*Class)
	return ok
}

func (f *flattener) visitVariable(decl *ast.VariableDecl) error {
	base := f.stub(decl, decl.Name, decl.Visibility)

	switch {
	case decl.IsEnum:
		base.Storage = StorageEnum
	case decl.IsStatic:
		base.Storage = StorageStatic
	}

	var sym Symbol
	if f.aggregate != nil && !decl.IsStatic && !decl.IsEnum {
		base.Storage = StorageLocal
		fld := &Field{Variable: Variable{SymbolBase: base}, Index: f.fieldIndex}
		f.fieldIndex++
		sym = fld
	} else {
		sym = &Variable{SymbolBase: base}
	}

	if err := f.scope.Add(sym); err != nil {
		return err
	}
	f.members = append(f.members, sym)

	f.a.schedule(sym, func(b *analysis) error {
		return b.analyzeVariable(decl, sym)
	})
	return nil
}

func (f *flattener) visitStruct(decl *ast.StructDecl) error {
	s := &Struct{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}
	s.HasContext = f.a.fun != nil

	if err := f.scope.Add(s); err != nil {
		return err
	}
	f.members = append(f.members, s)

	f.a.schedule(s, func(b *analysis) error {
		return b.analyzeStruct(decl, s)
	})
	return nil
}

func (f *flattener) visitUnion(decl *ast.UnionDecl) error {
	u := &Union{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}
	u.HasContext = f.a.fun != nil

	if err := f.scope.Add(u); err != nil {
		return err
	}
	f.members = append(f.members, u)

	f.a.schedule(u, func(b *analysis) error {
		return b.analyzeUnion(decl, u)
	})
	return nil
}

func (f *flattener) visitClass(decl *ast.ClassDecl) error {
	c := &Class{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}

	if err := f.scope.Add(c); err != nil {
		return err
	}
	f.members = append(f.members, c)

	f.a.schedule(c, func(b *analysis) error {
		return b.analyzeClass(decl, c)
	})
	return nil
}

func (f *flattener) visitInterface(decl *ast.InterfaceDecl) error {
	i := &Interface{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}

	if err := f.scope.Add(i); err != nil {
		return err
	}
	f.members = append(f.members, i)

	f.a.schedule(i, func(b *analysis) error {
		return b.analyzeInterface(decl, i)
	})
	return nil
}

func (f *flattener) visitEnum(decl *ast.EnumDecl) error {
	e := &Enum{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}

	if err := f.scope.Add(e); err != nil {
		return err
	}
	f.members = append(f.members, e)

	f.a.schedule(e, func(b *analysis) error {
		return b.analyzeEnum(decl, e)
	})
	return nil
}

func (f *flattener) visitTemplate(decl *ast.TemplateDecl) error {
	t := &Template{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}
	t.HasContext = f.a.fun != nil

	if err := f.scope.AddOverloadable(t); err != nil {
		return err
	}
	f.members = append(f.members, t)

	f.a.schedule(t, func(b *analysis) error {
		return b.analyzeTemplate(decl, t)
	})
	return nil
}

func (f *flattener) visitTypeAlias(decl *ast.TypeAliasDecl) error {
	a := &TypeAlias{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}

	if err := f.scope.Add(a); err != nil {
		return err
	}
	f.members = append(f.members, a)

	f.a.schedule(a, func(b *analysis) error {
		return b.analyzeTypeAlias(decl, a)
	})
	return nil
}

func (f *flattener) visitValueAlias(decl *ast.ValueAliasDecl) error {
	a := &ValueAlias{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}
	a.Storage = StorageEnum

	if err := f.scope.Add(a); err != nil {
		return err
	}
	f.members = append(f.members, a)

	f.a.schedule(a, func(b *analysis) error {
		return b.analyzeValueAlias(decl, a)
	})
	return nil
}

func (f *flattener) visitSymbolAlias(decl *ast.SymbolAliasDecl) error {
	a := &SymbolAlias{SymbolBase: f.stub(decl, decl.Name, decl.Visibility)}

	if err := f.scope.Add(a); err != nil {
		return err
	}
	f.members = append(f.members, a)

	f.a.schedule(a, func(b *analysis) error {
		return b.analyzeSymbolAlias(decl, a)
	})
	return nil
}

// visitStaticIf evaluates the condition against compile-time constants and
// flattens the selected branch in place.
func (f *flattener) visitStaticIf(decl *ast.StaticIfDecl) error {
	cond, err := f.a.analyzeExpression(decl.Condition)
	if err != nil {
		return err
	}
	value, err := f.a.evalBool(cond)
	if err != nil {
		return err
	}
	if value {
		return f.flatten(decl.Then)
	}
	return f.flatten(decl.Else)
}

// visitVersion selects a branch against the version identifier set.
func (f *flattener) visitVersion(decl *ast.VersionDecl) error {
	if f.a.pass.Versions[decl.Ident] {
		return f.flatten(decl.Then)
	}
	return f.flatten(decl.Else)
}

// visitMixin expands a string mixin through the registered mixin parser.
func (f *flattener) visitMixin(decl *ast.MixinDecl) error {
	if f.a.pass.mixinParser == nil {
		return NewUnsupported(decl.Loc(), "string mixins require a mixin parser")
	}

	value, err := f.a.analyzeExpression(decl.Value)
	if err != nil {
		return err
	}
	source, err := f.a.pass.Evaluator.EvalString(value)
	if err != nil {
		return NewEvalError(decl.Loc(), err)
	}
	decls, err := f.a.pass.mixinParser.ParseDeclarations(decl.Loc(), source)
	if err != nil {
		return NewSyntaxError("mixin", err)
	}
	return f.flatten(decls)
}

// visitTemplateMixin splices a template's members into the current scope.
// The members are flattened against the mixin site, so they see the
// enclosing declarations directly.
func (f *flattener) visitTemplateMixin(decl *ast.TemplateMixinDecl) error {
	target, ok := decl.Target.(*ast.Identifier)
	if !ok {
		return NewUnsupported(decl.Loc(), "template mixins with arguments are not supported")
	}

	sym := f.scope.Resolve(f.a.intern(target.Name))
	if sym == nil {
		sym = f.a.resolveInImports(f.scope, decl.Loc(), f.a.intern(target.Name))
	}
	tpl, ok := sym.(*Template)
	if !ok {
		return NewUnsupported(decl.Loc(), "'%s' is not a template", target.Name)
	}
	if err := f.a.require(tpl, Populated); err != nil {
		return err
	}
	return f.flatten(tpl.Members)
}
