package semantic

import (
	"strings"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// analyzeTemplate is the task body for template declarations. Parameters
// are resolved and registered; members stay unanalyzed until an
// instantiation flattens them.
func (b *analysis) analyzeTemplate(decl *ast.TemplateDecl, t *Template) error {
	t.Scope = NewScope(b.scope, t)
	b.appendMangle(t.Name.String())
	t.Mangle = b.intern(b.manglePrefix)
	t.Members = decl.Members
	t.Instances = make(map[string]*TemplateInstance)

	// Register parameter stubs first so value parameter types may refer
	// to earlier type parameters.
	params := make([]Symbol, 0, len(decl.Params))
	for _, p := range decl.Params {
		base := SymbolBase{
			Location:   p.Location,
			Name:       b.intern(p.Name),
			Linkage:    types.LinkageD,
			Storage:    StorageLocal,
			Visibility: Public,
			Step:       Processed,
		}
		var sym Symbol
		switch p.Kind {
		case ast.TemplateParamType:
			sym = &TypeTemplateParam{SymbolBase: base}
		case ast.TemplateParamValue:
			sym = &ValueTemplateParam{SymbolBase: base}
		case ast.TemplateParamAlias:
			sym = &AliasTemplateParam{SymbolBase: base}
		case ast.TemplateParamTypedAlias:
			sym = &TypedAliasTemplateParam{SymbolBase: base}
		default:
			return NewUnsupported(p.Location, "unsupported template parameter kind %s", p.Kind)
		}
		if err := t.Scope.Add(sym); err != nil {
			return err
		}
		params = append(params, sym)
	}
	t.Params = params

	scoped := *b
	scoped.scope = t.Scope
	for i, p := range decl.Params {
		if p.Type == nil {
			continue
		}
		pt, err := scoped.resolveType(p.Type)
		if err != nil {
			return err
		}
		switch sym := params[i].(type) {
		case *ValueTemplateParam:
			sym.Type = pt
		case *TypedAliasTemplateParam:
			sym.Type = pt
		}
	}

	b.publish(t, Populated)

	// IFTI hint: the parameter shape of the first member function named
	// like the template, when its parameter types resolve without the
	// template arguments bound.
	t.IFTI = b.computeIFTI(&scoped, decl)

	b.publish(t, Signed)
	b.publish(t, Processed)
	return nil
}

// computeIFTI caches the matching shape for implicit instantiation.
// When any parameter is untyped or its type does not resolve without the
// template arguments bound, the hint degrades to arity only (shapeOfArity).
func (b *analysis) computeIFTI(scoped *analysis, decl *ast.TemplateDecl) []types.ParamType {
	for _, member := range decl.Members {
		fn, ok := member.(*ast.FunctionDecl)
		if !ok || fn.Name != decl.Name {
			continue
		}
		shape := make([]types.ParamType, 0, len(fn.Params))
		for _, p := range fn.Params {
			if p.Type == nil {
				return shapeOfArity(len(fn.Params))
			}
			pt, err := scoped.resolveType(p.Type)
			if err != nil {
				return shapeOfArity(len(fn.Params))
			}
			shape = append(shape, types.ParamType{Type: pt, IsRef: p.IsRef, IsFinal: p.IsFinal})
		}
		return shape
	}
	return nil
}

// shapeOfArity is the degenerate IFTI hint: arity known, types not.
func shapeOfArity(n int) []types.ParamType {
	shape := make([]types.ParamType, n)
	auto := types.NewParamType(types.GetBuiltin(types.None))
	for i := range shape {
		shape[i] = auto
	}
	return shape
}

// instantiateFromAst resolves the target of an instantiation expression
// and instantiates it.
func (b *analysis) instantiateFromAst(loc token.Span, target ast.Expression, args []ast.TemplateArgument) (*TemplateInstance, error) {
	sym, err := b.resolveAliasTarget(target)
	if err != nil {
		return nil, err
	}

	var tpl *Template
	switch s := sym.(type) {
	case *Template:
		tpl = s
	case *OverloadSet:
		for _, cand := range s.Set {
			if t, ok := cand.(*Template); ok {
				tpl = t
				break
			}
		}
	}
	if tpl == nil {
		return nil, NewUnsupported(loc, "'%s' is not a template", sym.Common().Name)
	}
	return b.instantiateTemplate(loc, tpl, args)
}

// instantiateTemplate matches arguments against the template parameters
// and returns the (possibly cached) instance. Instances are keyed by the
// mangled argument list, so structurally identical instantiations share
// one symbol.
func (b *analysis) instantiateTemplate(loc token.Span, tpl *Template, args []ast.TemplateArgument) (*TemplateInstance, error) {
	if err := b.require(tpl, Populated); err != nil {
		return nil, err
	}
	if len(args) != len(tpl.Params) {
		return nil, NewUnsupported(loc, "template '%s' expects %d arguments, got %d",
			tpl.Name, len(tpl.Params), len(args))
	}

	bound := make([]Symbol, len(args))
	keyParts := make([]string, len(args))
	hasContext := false

	for i, arg := range args {
		param := tpl.Params[i]
		base := SymbolBase{
			Location:   loc,
			Name:       param.Common().Name,
			Linkage:    types.LinkageD,
			Storage:    StorageLocal,
			Visibility: Public,
			Step:       Processed,
		}

		switch p := param.(type) {
		case *TypeTemplateParam:
			if arg.Type == nil {
				return nil, NewUnsupported(loc, "argument %d of '%s' must be a type", i+1, tpl.Name)
			}
			t, err := b.resolveType(arg.Type)
			if err != nil {
				return nil, err
			}
			if err := b.requireTypeMangle(t); err != nil {
				return nil, err
			}
			mangled, err := mangleType(t)
			if err != nil {
				return nil, NewUnsupported(loc, "cannot instantiate '%s': %v", tpl.Name, err)
			}
			alias := &TypeAlias{SymbolBase: base, Type: t}
			alias.Mangle = b.intern(mangled)
			bound[i], keyParts[i] = alias, "T"+mangled

		case *ValueTemplateParam:
			if arg.Value == nil {
				return nil, NewUnsupported(loc, "argument %d of '%s' must be a value", i+1, tpl.Name)
			}
			value, err := b.analyzeExpression(arg.Value)
			if err != nil {
				return nil, err
			}
			if p.Type != nil {
				if value, err = b.implicitCastTo(value, p.Type); err != nil {
					return nil, err
				}
			}
			if value, err = b.evaluate(value); err != nil {
				return nil, err
			}
			alias := &ValueAlias{SymbolBase: base, Value: value}
			typePart, err := mangleType(value.Type())
			if err != nil {
				return nil, NewUnsupported(loc, "cannot instantiate '%s': %v", tpl.Name, err)
			}
			alias.Mangle = b.intern(typePart + mangleValue(value))
			bound[i], keyParts[i] = alias, alias.Mangle.String()

		case *AliasTemplateParam, *TypedAliasTemplateParam:
			if arg.Value == nil {
				return nil, NewUnsupported(loc, "argument %d of '%s' must name a symbol", i+1, tpl.Name)
			}
			target, err := b.resolveAliasTarget(arg.Value)
			if err != nil {
				return nil, err
			}
			if tp, ok := param.(*TypedAliasTemplateParam); ok && tp.Type != nil {
				expr, err := b.symbolToExpression(loc, target, nil)
				if err != nil {
					return nil, err
				}
				if !kindIsExact(castKind(expr.Type(), tp.Type)) {
					return nil, NewTypeMismatch(loc, expr.Type(), tp.Type)
				}
			}
			if err := b.require(target, Signed); err != nil {
				return nil, err
			}
			alias := &SymbolAlias{SymbolBase: base, Target: target}
			alias.Mangle = target.Common().Mangle
			alias.HasContext = target.Common().HasContext
			bound[i], keyParts[i] = alias, "S"+alias.Mangle.String()

		default:
			return nil, NewUnsupported(loc, "unsupported template parameter kind")
		}

		if bound[i].Common().HasContext {
			hasContext = true
		}
	}

	key := strings.Join(keyParts, "")
	if inst, ok := tpl.Instances[key]; ok {
		return inst, nil
	}

	inst := &TemplateInstance{
		SymbolBase: SymbolBase{
			Location:   loc,
			Name:       tpl.Name,
			Linkage:    types.LinkageD,
			Storage:    StorageStatic,
			Visibility: tpl.Visibility,
		},
		Template: tpl,
		Args:     bound,
	}
	instMangle := tpl.Mangle.String() + "__T" + key + "Z"
	inst.Mangle = b.intern(instMangle)

	// An instance whose arguments carry a context is itself local to the
	// enclosing frame.
	if hasContext {
		inst.Storage = StorageLocal
		inst.HasContext = true
		inst.CtxSym = b.ctxSym
	}

	inst.Scope = NewScope(tpl.Scope, inst)
	for _, sym := range bound {
		if err := inst.Scope.Add(sym); err != nil {
			return nil, err
		}
	}

	tpl.Instances[key] = inst

	snap := *b
	snap.scope = inst.Scope
	snap.manglePrefix = instMangle
	snap.schedule(inst, func(c *analysis) error {
		return c.analyzeTemplateInstance(inst)
	})
	return inst, nil
}

// analyzeTemplateInstance is the task body for a template instance:
// flatten the original template's member declarations against the
// instance scope and drive them to completion.
func (b *analysis) analyzeTemplateInstance(inst *TemplateInstance) error {
	fl, err := b.flattenInto(inst.Scope, nil, 0, 1, inst.Template.Members)
	if err != nil {
		return err
	}
	inst.Members = fl.members

	b.publish(inst, Populated)
	b.publish(inst, Signed)

	for _, m := range inst.Members {
		if err := b.require(m, Processed); err != nil {
			return err
		}
	}
	b.publish(inst, Processed)
	return nil
}
