package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/ident"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// analyzeExpression lowers an AST expression to a typed IR expression,
// resolving every identifier and inserting implicit conversions.
func (b *analysis) analyzeExpression(e ast.Expression) (Expression, error) {
	switch expr := e.(type) {
	case *ast.IntegerLiteral:
		return b.analyzeIntegerLiteral(expr), nil
	case *ast.BoolLiteral:
		return &BoolLiteral{Location: expr.Loc(), Value: expr.Value}, nil
	case *ast.CharLiteral:
		return &CharLiteral{Location: expr.Loc(), Value: expr.Value, T: types.GetBuiltin(types.Char)}, nil
	case *ast.StringLiteral:
		return &StringLiteral{Location: expr.Loc(), Value: expr.Value}, nil
	case *ast.NullLiteral:
		return &NullLiteral{Location: expr.Loc()}, nil
	case *ast.Identifier:
		sym, err := b.resolveIdentifier(expr.Loc(), expr.Name)
		if err != nil {
			return nil, err
		}
		return b.symbolToExpression(expr.Loc(), sym, nil)
	case *ast.ThisExpression:
		return b.analyzeThis(expr)
	case *ast.DotExpression:
		return b.analyzeDot(expr)
	case *ast.BinaryExpression:
		return b.analyzeBinary(expr)
	case *ast.UnaryExpression:
		return b.analyzeUnary(expr)
	case *ast.CallExpression:
		return b.analyzeCall(expr)
	case *ast.IndexExpression:
		return b.analyzeIndex(expr)
	case *ast.CastExpression:
		return b.analyzeCast(expr)
	case *ast.NewExpression:
		return b.analyzeNew(expr)
	case *ast.InstantiateExpression:
		inst, err := b.instantiateFromAst(expr.Loc(), expr.Target, expr.Arguments)
		if err != nil {
			return nil, err
		}
		return b.symbolToExpression(expr.Loc(), inst, nil)
	default:
		return nil, NewUnsupported(e.Loc(), "unsupported expression %s", e)
	}
}

// analyzeIntegerLiteral types an integer literal: int unless the value or
// a suffix demands 64 bits.
func (b *analysis) analyzeIntegerLiteral(e *ast.IntegerLiteral) *IntegerLiteral {
	builtin := types.Int
	switch {
	case e.IsLong && e.IsUnsigned:
		builtin = types.Ulong
	case e.IsLong:
		builtin = types.Long
	case e.IsUnsigned:
		if e.Value > 0xFFFFFFFF {
			builtin = types.Ulong
		} else {
			builtin = types.Uint
		}
	case e.Value > 0x7FFFFFFF:
		builtin = types.Long
	}
	return &IntegerLiteral{Location: e.Loc(), Value: e.Value, T: types.GetBuiltin(builtin)}
}

// ============================================================================
// Identifier resolution
// ============================================================================

// resolveIdentifier finds a name in the enclosing scopes, falling back to
// imported modules. Crossing a closure boundary promotes the found local
// to capture storage and records it in the capturing function's closure
// set.
func (b *analysis) resolveIdentifier(loc token.Span, name string) (Symbol, error) {
	n := b.intern(name)

	crossedClosure := false
	for sc := b.scope; sc != nil; sc = sc.Parent() {
		if sym := sc.Lookup(n); sym != nil {
			if crossedClosure {
				markCaptured(sym, sc)
			}
			return sym, nil
		}
		if sym := b.resolveInImports(sc, loc, n); sym != nil {
			return sym, nil
		}
		if sc.IsClosure() {
			crossedClosure = true
		}
	}

	return nil, NewUnresolvedIdentifier(loc, name)
}

// resolveInImports searches the public members of modules imported into a
// scope. Imported modules are advanced to Populated on demand.
func (b *analysis) resolveInImports(sc *Scope, loc token.Span, n ident.Name) Symbol {
	for _, m := range sc.Imports() {
		if err := b.require(m, Populated); err != nil {
			continue
		}
		if sym := m.Scope.Lookup(n); sym != nil {
			if sym.Common().Visibility == Public {
				return sym
			}
		}
	}
	return nil
}

// markCaptured promotes a local variable referenced from inside a closure
// and records it in the closure set of the function owning its frame.
func markCaptured(sym Symbol, sc *Scope) {
	v, ok := sym.(*Variable)
	if !ok || v.Storage != StorageLocal {
		return
	}
	v.Storage = StorageCapture

	var owner *Function
	switch o := sc.Owner().(type) {
	case *Method:
		owner = &o.Function
	case *Function:
		owner = o
	default:
		return
	}
	for _, c := range owner.Captures {
		if c == v {
			return
		}
	}
	owner.Captures = append(owner.Captures, v)
}

// symbolToExpression views a resolved symbol as an expression. base is
// the receiver expression for member accesses, nil otherwise.
func (b *analysis) symbolToExpression(loc token.Span, sym Symbol, base Expression) (Expression, error) {
	switch s := sym.(type) {
	case *Variable:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return &VariableRef{Location: loc, Var: s}, nil
	case *Field:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return &FieldRef{Location: loc, Base: base, Field: s}, nil
	case *Method:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return &MethodRef{Location: loc, Base: base, Method: s}, nil
	case *Function:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return &FunctionRef{Location: loc, Fn: s}, nil
	case *OverloadSet:
		return &SetRef{Location: loc, Set: s}, nil
	case *ValueAlias:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return s.Value, nil
	case *SymbolAlias:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return b.symbolToExpression(loc, s.Target, base)
	case *TypeAlias:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return &TypeRef{Location: loc, T: s.Type, Sym: s}, nil
	case *Struct, *Union, *Class, *Interface, *Enum:
		return &TypeRef{Location: loc, T: types.NewAggregate(sym.(types.Aggregate)), Sym: sym}, nil
	case *Module:
		return &ModuleRef{Location: loc, Module: s}, nil
	case *TemplateInstance:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		if member := s.Scope.Lookup(s.Template.Name); member != nil {
			return b.symbolToExpression(loc, member, base)
		}
		return nil, NewUnsupported(loc, "template '%s' has no eponymous member", s.Template.Name)
	default:
		return nil, NewUnsupported(loc, "'%s' cannot be used as an expression", sym.Common().Name)
	}
}

// analyzeThis resolves the receiver of the enclosing method.
func (b *analysis) analyzeThis(e *ast.ThisExpression) (Expression, error) {
	if b.thisType == nil || b.fun == nil {
		return nil, NewUnsupported(e.Loc(), "'this' outside of an aggregate member")
	}
	// The receiver is the synthetic this parameter of the current function;
	// a leading __ctx parameter precedes it when the function has a context.
	for _, p := range b.fun.Params {
		if p.Name == b.intern("this") {
			return &VariableRef{Location: e.Loc(), Var: p}, nil
		}
	}
	return nil, newInternal(e.Loc(), "method has no this parameter")
}

// analyzeDot resolves member selection on values, types and modules.
func (b *analysis) analyzeDot(e *ast.DotExpression) (Expression, error) {
	base, err := b.analyzeExpression(e.Base)
	if err != nil {
		return nil, err
	}

	switch br := base.(type) {
	case *ModuleRef:
		sym, err := b.resolveMember(e.Loc(), br.Module, e.Name)
		if err != nil {
			return nil, err
		}
		return b.symbolToExpression(e.Loc(), sym, nil)
	case *TypeRef:
		if _, ok := br.T.(*types.AggregateType); ok {
			sym, err := b.resolveMember(e.Loc(), br.Sym, e.Name)
			if err != nil {
				return nil, err
			}
			return b.symbolToExpression(e.Loc(), sym, nil)
		}
		return nil, NewUnresolvedIdentifier(e.Loc(), e.Name)
	default:
		return b.analyzeValueMember(e.Loc(), base, e.Name)
	}
}

// analyzeValueMember resolves a member access on an aggregate value.
func (b *analysis) analyzeValueMember(loc token.Span, base Expression, name string) (Expression, error) {
	t := base.Type()
	agg, ok := t.(*types.AggregateType)
	if !ok {
		return nil, NewUnresolvedIdentifier(loc, name)
	}

	owner, ok := agg.Agg.(Symbol)
	if !ok {
		return nil, newInternal(loc, "aggregate type without symbol")
	}
	sym, err := b.resolveMember(loc, owner, name)
	if err != nil {
		return nil, err
	}
	return b.symbolToExpression(loc, sym, base)
}

// ============================================================================
// Operators
// ============================================================================

func (b *analysis) analyzeBinary(e *ast.BinaryExpression) (Expression, error) {
	switch e.Op {
	case ast.OpAssign:
		return b.analyzeAssign(e)
	case ast.OpComma:
		return b.analyzeComma(e)
	}

	lhs, err := b.analyzeExpression(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := b.analyzeExpression(e.RHS)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpEqual, ast.OpNotEqual, ast.OpLess, ast.OpLessEqual,
		ast.OpGreater, ast.OpGreaterEqual:
		lhs, rhs, _, err = b.promoteOperands(e.Loc(), lhs, rhs)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{
			Location: e.Loc(), Op: e.Op, LHS: lhs, RHS: rhs,
			T: types.GetBuiltin(types.Bool),
		}, nil

	case ast.OpLogicalAnd, ast.OpLogicalOr:
		boolType := types.GetBuiltin(types.Bool)
		if lhs, err = b.implicitCastTo(lhs, boolType); err != nil {
			return nil, err
		}
		if rhs, err = b.implicitCastTo(rhs, boolType); err != nil {
			return nil, err
		}
		return &BinaryExpression{
			Location: e.Loc(), Op: e.Op, LHS: lhs, RHS: rhs, T: boolType,
		}, nil

	default:
		var t types.Type
		lhs, rhs, t, err = b.promoteOperands(e.Loc(), lhs, rhs)
		if err != nil {
			return nil, err
		}
		if !types.IsIntegral(t) && !types.HasPointerABI(t) {
			return nil, NewTypeMismatch(e.Loc(), lhs.Type(), rhs.Type())
		}
		return &BinaryExpression{Location: e.Loc(), Op: e.Op, LHS: lhs, RHS: rhs, T: t}, nil
	}
}

// analyzeAssign checks the left side is an lvalue and casts the right side
// to its type. The result is the value of the right operand.
func (b *analysis) analyzeAssign(e *ast.BinaryExpression) (Expression, error) {
	lhs, err := b.analyzeExpression(e.LHS)
	if err != nil {
		return nil, err
	}
	if !isLvalue(lhs) {
		return nil, NewUnsupported(e.Loc(), "left side of assignment is not an lvalue")
	}

	rhs, err := b.analyzeExpression(e.RHS)
	if err != nil {
		return nil, err
	}
	rhs, err = b.implicitCastTo(rhs, lhs.Type())
	if err != nil {
		return nil, err
	}

	return &BinaryExpression{
		Location: e.Loc(), Op: ast.OpAssign, LHS: lhs, RHS: rhs, T: lhs.Type(),
	}, nil
}

func (b *analysis) analyzeComma(e *ast.BinaryExpression) (Expression, error) {
	lhs, err := b.analyzeExpression(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := b.analyzeExpression(e.RHS)
	if err != nil {
		return nil, err
	}
	return &BinaryExpression{
		Location: e.Loc(), Op: ast.OpComma, LHS: lhs, RHS: rhs, T: rhs.Type(),
	}, nil
}

// isLvalue reports whether an IR expression designates storage.
func isLvalue(e Expression) bool {
	switch ex := e.(type) {
	case *VariableRef:
		return !ex.Var.IsFinal
	case *FieldRef:
		return true
	case *IndexExpression:
		return true
	case *UnaryExpression:
		return ex.Op == ast.OpDereference
	}
	return false
}

// promoteOperands brings two operands to their common arithmetic type.
func (b *analysis) promoteOperands(loc token.Span, lhs, rhs Expression) (Expression, Expression, types.Type, error) {
	t, err := b.commonType(loc, lhs.Type(), rhs.Type())
	if err != nil {
		return nil, nil, nil, err
	}
	lhs, err = b.implicitCastTo(lhs, t)
	if err != nil {
		return nil, nil, nil, err
	}
	rhs, err = b.implicitCastTo(rhs, t)
	if err != nil {
		return nil, nil, nil, err
	}
	return lhs, rhs, t, nil
}

// commonType computes the highest common type of two operand types.
func (b *analysis) commonType(loc token.Span, lt, rt types.Type) (types.Type, error) {
	if lt.Equals(rt) {
		return lt, nil
	}

	// Null melts into any pointer-shaped type.
	if types.IsNull(lt) && types.HasPointerABI(rt) {
		return rt, nil
	}
	if types.IsNull(rt) && types.HasPointerABI(lt) {
		return lt, nil
	}

	lb, lok := types.AsBuiltin(types.Unqual(lt))
	rb, rok := types.AsBuiltin(types.Unqual(rt))
	if lok && rok && (lb.IsIntegral() || lb.IsChar() || lb == types.Bool) &&
		(rb.IsIntegral() || rb.IsChar() || rb == types.Bool) {
		// Integer promotion: at least int, then the higher rank wins.
		winner := lb
		if rb.IntegerRank() > lb.IntegerRank() {
			winner = rb
		}
		if winner.IntegerRank() < types.Int.IntegerRank() {
			winner = types.Int
		}
		return types.GetBuiltin(winner), nil
	}

	// Class operands meet at their closest common base.
	if lc, ok := classOf(lt); ok {
		if rc, ok := classOf(rt); ok {
			for cur := lc; ; cur = cur.Base {
				if rc.DerivesFrom(cur) {
					return types.NewAggregate(cur), nil
				}
				if cur.Base == cur || cur.Base == nil {
					break
				}
			}
		}
	}

	// Asymmetric implicit convertibility settles the rest.
	if kindAllowsImplicit(castKind(lt, rt)) {
		return rt, nil
	}
	if kindAllowsImplicit(castKind(rt, lt)) {
		return lt, nil
	}
	return nil, NewTypeMismatch(loc, rt, lt)
}

func classOf(t types.Type) (*Class, bool) {
	agg, ok := t.(*types.AggregateType)
	if !ok {
		return nil, false
	}
	c, ok := agg.Agg.(*Class)
	return c, ok
}

func (b *analysis) analyzeUnary(e *ast.UnaryExpression) (Expression, error) {
	operand, err := b.analyzeExpression(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpMinus, ast.OpComplement:
		t := types.Unqual(operand.Type())
		if !types.IsIntegral(t) {
			return nil, NewUnsupported(e.Loc(), "operator %s requires an integral operand", e.Op)
		}
		return &UnaryExpression{Location: e.Loc(), Op: e.Op, Operand: operand, T: t}, nil
	case ast.OpPlus:
		return operand, nil
	case ast.OpNot:
		operand, err = b.implicitCastTo(operand, types.GetBuiltin(types.Bool))
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{
			Location: e.Loc(), Op: e.Op, Operand: operand,
			T: types.GetBuiltin(types.Bool),
		}, nil
	case ast.OpAddressOf:
		if !isLvalue(operand) {
			return nil, NewUnsupported(e.Loc(), "cannot take the address of this expression")
		}
		return &UnaryExpression{
			Location: e.Loc(), Op: e.Op, Operand: operand,
			T: types.NewPointer(operand.Type()),
		}, nil
	case ast.OpDereference:
		pt, ok := operand.Type().(*types.PointerType)
		if !ok {
			return nil, NewTypeMismatch(e.Loc(), operand.Type(), types.NewPointer(types.GetBuiltin(types.Void)))
		}
		return &UnaryExpression{Location: e.Loc(), Op: e.Op, Operand: operand, T: pt.Elem}, nil
	default:
		return nil, NewUnsupported(e.Loc(), "unsupported unary operator %s", e.Op)
	}
}

// ============================================================================
// Calls
// ============================================================================

func (b *analysis) analyzeCall(e *ast.CallExpression) (Expression, error) {
	callee, err := b.analyzeExpression(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Expression, len(e.Arguments))
	for i, arg := range e.Arguments {
		if args[i], err = b.analyzeExpression(arg); err != nil {
			return nil, err
		}
	}

	callee, ft, err := b.selectCallee(e.Loc(), callee, args)
	if err != nil {
		return nil, err
	}

	// Cast user arguments; leading context parameters are bound by the
	// back-end, not the call site.
	userParams := ft.Params[ft.Contexts:]
	if len(args) != len(userParams) && !ft.IsVariadic {
		return nil, NewUnsupported(e.Loc(), "expected %d arguments, got %d",
			len(userParams), len(args))
	}
	for i := range args {
		if i >= len(userParams) {
			break
		}
		if args[i], err = b.implicitCastTo(args[i], userParams[i].Type); err != nil {
			return nil, err
		}
	}

	return &CallExpression{
		Location: e.Loc(), Callee: callee, Args: args, T: ft.Return.Type,
	}, nil
}

// selectCallee narrows an overload set (or IFTI template) to one callable.
func (b *analysis) selectCallee(loc token.Span, callee Expression, args []Expression) (Expression, *types.FunctionType, error) {
	switch c := callee.(type) {
	case *FunctionRef:
		return c, c.Fn.Type, nil
	case *MethodRef:
		return c, c.Method.Type, nil
	case *SetRef:
		var best Expression
		var bestType *types.FunctionType
		for _, cand := range c.Set.Set {
			if tpl, ok := cand.(*Template); ok {
				expr, ft, err := b.tryIFTI(loc, tpl, args)
				if err == nil && expr != nil && (best == nil) {
					best, bestType = expr, ft
				}
				continue
			}
			if err := b.require(cand, Signed); err != nil {
				return nil, nil, err
			}
			ft := functionTypeOf(cand)
			if ft == nil || !b.argumentsMatch(ft, args) {
				continue
			}
			if best != nil {
				return nil, nil, NewUnsupported(loc, "ambiguous call to '%s'", c.Set.Name)
			}
			expr, err := b.symbolToExpression(loc, cand, nil)
			if err != nil {
				return nil, nil, err
			}
			best, bestType = expr, ft
		}
		if best == nil {
			return nil, nil, NewUnsupported(loc, "no overload of '%s' matches the call", c.Set.Name)
		}
		return best, bestType, nil
	default:
		if ft, ok := callee.Type().(*types.FunctionType); ok {
			return callee, ft, nil
		}
		return nil, nil, NewUnsupported(loc, "expression is not callable")
	}
}

func functionTypeOf(sym Symbol) *types.FunctionType {
	switch s := sym.(type) {
	case *Method:
		return s.Type
	case *Function:
		return s.Type
	}
	return nil
}

// argumentsMatch reports whether args can convert to the user-visible
// parameters of ft: implicit conversions and integral narrowings are
// accepted; whether a narrowing is provably safe is not checked here.
func (b *analysis) argumentsMatch(ft *types.FunctionType, args []Expression) bool {
	userParams := ft.Params[ft.Contexts:]
	if len(args) != len(userParams) && !ft.IsVariadic {
		return false
	}
	for i := range args {
		if i >= len(userParams) {
			break
		}
		k := castKind(args[i].Type(), userParams[i].Type)
		if !kindAllowsImplicit(k) && k != CastTrunc {
			return false
		}
	}
	return true
}

// tryIFTI attempts implicit function template instantiation against the
// cached parameter shape of a template.
func (b *analysis) tryIFTI(loc token.Span, tpl *Template, args []Expression) (Expression, *types.FunctionType, error) {
	if err := b.require(tpl, Populated); err != nil {
		return nil, nil, err
	}
	if tpl.IFTI == nil || len(tpl.IFTI) != len(args) {
		return nil, nil, nil
	}

	// Deduce each type parameter from the argument matching its position.
	deduced := make([]ast.TemplateArgument, 0, len(tpl.Params))
	argIdx := 0
	for range tpl.Params {
		if argIdx >= len(args) {
			return nil, nil, nil
		}
		deduced = append(deduced, ast.TemplateArgument{
			Location: loc,
			Type:     typeToAst(loc, args[argIdx].Type()),
		})
		argIdx++
	}

	inst, err := b.instantiateTemplate(loc, tpl, deduced)
	if err != nil {
		return nil, nil, err
	}
	member, err := b.symbolToExpression(loc, inst, nil)
	if err != nil {
		return nil, nil, err
	}
	if fr, ok := member.(*FunctionRef); ok {
		return fr, fr.Fn.Type, nil
	}
	return nil, nil, nil
}

// typeToAst renders a resolved type back to a syntactic type for template
// argument plumbing. Only the shapes IFTI can deduce are supported.
func typeToAst(loc token.Span, t types.Type) ast.TypeExpression {
	if bt, ok := t.(*types.BuiltinType); ok {
		return &ast.NamedType{Location: loc, Path: []string{bt.B.String()}}
	}
	if at, ok := t.(*types.AggregateType); ok {
		return &ast.NamedType{Location: loc, Path: []string{at.Agg.AggregateName()}}
	}
	if pt, ok := t.(*types.PointerType); ok {
		return &ast.PointerTypeExpr{Location: loc, Elem: typeToAst(loc, pt.Elem)}
	}
	return &ast.AutoType{Location: loc}
}

func (b *analysis) analyzeIndex(e *ast.IndexExpression) (Expression, error) {
	base, err := b.analyzeExpression(e.Base)
	if err != nil {
		return nil, err
	}
	index, err := b.analyzeExpression(e.Index)
	if err != nil {
		return nil, err
	}
	index, err = b.implicitCastTo(index, types.GetBuiltin(types.Ulong))
	if err != nil {
		return nil, err
	}

	var elem types.Type
	switch bt := base.Type().(type) {
	case *types.SliceType:
		elem = bt.Elem
	case *types.ArrayType:
		elem = bt.Elem
	case *types.PointerType:
		elem = bt.Elem
	default:
		return nil, NewUnsupported(e.Loc(), "type %s is not indexable", base.Type())
	}

	return &IndexExpression{Location: e.Loc(), Base: base, Index: index, T: elem}, nil
}

func (b *analysis) analyzeCast(e *ast.CastExpression) (Expression, error) {
	operand, err := b.analyzeExpression(e.Operand)
	if err != nil {
		return nil, err
	}
	to, err := b.resolveType(e.Type)
	if err != nil {
		return nil, err
	}
	return b.explicitCastTo(e.Loc(), operand, to)
}

func (b *analysis) analyzeNew(e *ast.NewExpression) (Expression, error) {
	t, err := b.resolveType(e.Type)
	if err != nil {
		return nil, err
	}
	cls, ok := classOf(t)
	if !ok {
		return nil, NewUnsupported(e.Loc(), "new requires a class type, got %s", t)
	}
	if err := b.require(cls, Populated); err != nil {
		return nil, err
	}

	args := make([]Expression, len(e.Arguments))
	for i, arg := range e.Arguments {
		if args[i], err = b.analyzeExpression(arg); err != nil {
			return nil, err
		}
	}

	var ctor *Method
	if sym := cls.Scope.Lookup(b.intern("this")); sym != nil {
		expr, err := b.symbolToExpression(e.Loc(), sym, nil)
		if err != nil {
			return nil, err
		}
		callee, _, err := b.selectCallee(e.Loc(), expr, args)
		if err != nil {
			return nil, err
		}
		if mr, ok := callee.(*MethodRef); ok {
			ctor = mr.Method
		}
	} else if len(args) > 0 {
		return nil, NewUnsupported(e.Loc(), "class '%s' has no constructor", cls.Name)
	}

	return &NewExpression{Location: e.Loc(), Ctor: ctor, Args: args, T: t}, nil
}
