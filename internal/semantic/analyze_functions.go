package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
)

// analyzeFunction is the task body for functions, methods and
// constructors.
func (b *analysis) analyzeFunction(decl *ast.FunctionDecl, sym Symbol) error {
	var fn *Function
	switch s := sym.(type) {
	case *Method:
		fn = &s.Function
	case *Function:
		fn = s
	default:
		return newInternal(decl.Loc(), "function declaration scheduled on %T", sym)
	}

	// Parameter types and defaults.
	params := make([]*Variable, 0, len(decl.Params)+2)
	for _, p := range decl.Params {
		if p.Type == nil {
			return NewUnsupported(p.Location, "parameter '%s' has no type", p.Name)
		}
		t, err := b.resolveType(p.Type)
		if err != nil {
			return err
		}
		v := &Variable{
			SymbolBase: SymbolBase{
				Location:   p.Location,
				Name:       b.intern(p.Name),
				Linkage:    fn.Linkage,
				Storage:    StorageLocal,
				Visibility: Public,
				Step:       Processed,
			},
			Type:    t,
			IsRef:   p.IsRef,
			IsFinal: p.IsFinal,
		}
		if p.Default != nil {
			def, err := b.analyzeExpression(p.Default)
			if err != nil {
				return err
			}
			if def, err = b.implicitCastTo(def, t); err != nil {
				return err
			}
			v.Value = def
		}
		params = append(params, v)
	}

	contexts := 0

	// Aggregate members bind their receiver as a leading this parameter.
	if b.thisType != nil && !decl.IsStatic {
		this := &Variable{
			SymbolBase: SymbolBase{
				Location:   decl.Loc(),
				Name:       b.intern("this"),
				Linkage:    fn.Linkage,
				Storage:    StorageLocal,
				Visibility: Public,
				Step:       Processed,
			},
			Type:  b.thisType,
			IsRef: !types.IsClass(b.thisType),
		}
		params = append([]*Variable{this}, params...)
		contexts++
	}

	// Closures bind the enclosing frame as a leading __ctx parameter.
	if fn.HasContext {
		owner := b.enclosingContextOwner()
		if owner == nil {
			return newInternal(decl.Loc(), "'%s' has context but no enclosing frame", fn.Name)
		}
		ctx := &Variable{
			SymbolBase: SymbolBase{
				Location:   decl.Loc(),
				Name:       b.intern("__ctx"),
				Linkage:    fn.Linkage,
				Storage:    StorageLocal,
				Visibility: Public,
				Step:       Processed,
			},
			Type: types.NewPointer(types.NewContext(owner)),
		}
		params = append([]*Variable{ctx}, params...)
		contexts++
	}

	fn.Params = params

	// The mangle prefix grows by this function's segment; constructors
	// mangle as __ctor.
	segment := fn.Name.String()
	if decl.IsConstructor {
		segment = "__ctor"
	}
	b.appendMangle(segment)

	// Return type: explicit, constructor convention, or deferred for auto.
	signed := false
	switch {
	case decl.IsConstructor:
		if b.thisType == nil {
			return NewUnsupported(decl.Loc(), "constructor outside of an aggregate")
		}
		fn.Return = types.ParamType{
			Type:  b.thisType,
			IsRef: !types.IsClass(b.thisType),
		}
		signed = true
	case decl.ReturnType != nil:
		ret, err := b.resolveType(decl.ReturnType)
		if err != nil {
			return err
		}
		if types.IsAuto(ret) {
			break
		}
		fn.Return = types.ParamType{Type: ret, IsRef: decl.IsRefReturn}
		signed = true
	}

	if signed {
		if err := b.signFunction(decl, fn, contexts); err != nil {
			return err
		}
		b.publish(sym, Populated)
		b.publish(sym, Signed)
	} else {
		b.publish(sym, Populated)
	}

	// Body.
	if decl.Body != nil {
		var scope *Scope
		if fn.HasContext {
			scope = NewClosureScope(b.scope, sym)
		} else {
			scope = NewScope(b.scope, sym)
		}
		fn.Scope = scope

		for _, p := range fn.Params {
			if err := scope.Add(p); err != nil {
				return err
			}
		}

		var autoReturns []types.Type
		b.fun = fn
		b.scope = scope
		if signed {
			b.returnType = &fn.Return
		} else {
			auto := types.NewParamType(types.GetBuiltin(types.None))
			b.returnType = &auto
			b.autoReturns = &autoReturns
		}

		body, err := b.analyzeBlock(decl.Body)
		if err != nil {
			return err
		}
		fn.Body = body

		if !signed {
			ret, err := b.inferReturnType(decl, autoReturns)
			if err != nil {
				return err
			}
			fn.Return = types.ParamType{Type: ret, IsRef: decl.IsRefReturn}
			if err := b.signFunction(decl, fn, contexts); err != nil {
				return err
			}
			b.publish(sym, Signed)
			signed = true
		}
	}

	if !signed {
		// A bodyless auto function cannot be signed.
		return NewUnsupported(decl.Loc(), "function '%s' has neither a return type nor a body", fn.Name)
	}

	b.publish(sym, Processed)
	return nil
}

// signFunction builds the function type and assigns the mangle.
func (b *analysis) signFunction(decl *ast.FunctionDecl, fn *Function, contexts int) error {
	paramTypes := make([]types.ParamType, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = types.ParamType{Type: p.Type, IsRef: p.IsRef, IsFinal: p.IsFinal}
	}
	fn.Type = &types.FunctionType{
		Linkage:    fn.Linkage,
		Return:     fn.Return,
		Params:     paramTypes,
		Contexts:   contexts,
		IsVariadic: decl.IsVariadic,
	}
	return b.computeFunctionMangle(decl.Loc(), fn)
}

// enclosingContextOwner finds the function frame a closure binds to.
func (b *analysis) enclosingContextOwner() types.ContextOwner {
	if fn, ok := b.ctxSym.(*Function); ok {
		return fn
	}
	if m, ok := b.ctxSym.(*Method); ok {
		return &m.Function
	}
	return b.fun
}

// inferReturnType computes the highest common type of the collected
// return expressions; a function with no value returns defaults to void.
func (b *analysis) inferReturnType(decl *ast.FunctionDecl, returns []types.Type) (types.Type, error) {
	if len(returns) == 0 {
		return types.GetBuiltin(types.Void), nil
	}
	common := returns[0]
	for _, t := range returns[1:] {
		next, err := b.commonType(decl.Loc(), common, t)
		if err != nil {
			return nil, err
		}
		common = next
	}
	return common, nil
}
