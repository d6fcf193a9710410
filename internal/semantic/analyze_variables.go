package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// analyzeVariable is the task body for variables, fields and manifest
// constants.
func (b *analysis) analyzeVariable(decl *ast.VariableDecl, sym Symbol) error {
	var v *Variable
	switch s := sym.(type) {
	case *Field:
		v = &s.Variable
	case *Variable:
		v = s
	default:
		return newInternal(decl.Loc(), "variable declaration scheduled on %T", sym)
	}

	if err := b.resolveVariable(decl, v, sym.Kind() == KindField); err != nil {
		return err
	}

	b.publish(sym, Populated)
	b.publish(sym, Signed)
	b.publish(sym, Processed)
	return nil
}

// analyzeVariableInline analyzes a local variable in statement position,
// advancing its steps directly since locals are not scheduled.
func (b *analysis) analyzeVariableInline(decl *ast.VariableDecl, v *Variable) error {
	if err := b.resolveVariable(decl, v, false); err != nil {
		return err
	}
	b.publish(v, Processed)
	return nil
}

// resolveVariable settles type, initializer and mangle of a variable.
// Auto variables infer their type from the initializer; typed variables
// cast-check it. Globals and manifests are evaluated at compile time;
// struct-typed locals keep their default-init expression unevaluated.
func (b *analysis) resolveVariable(decl *ast.VariableDecl, v *Variable, isField bool) error {
	var value Expression
	var err error

	if decl.Type == nil || isAutoExpr(decl.Type) {
		if decl.Value == nil {
			return NewUnsupported(decl.Loc(), "variable '%s' has neither a type nor an initializer", decl.Name)
		}
		if value, err = b.analyzeExpression(decl.Value); err != nil {
			return err
		}
		v.Type = value.Type()
	} else {
		t, err := b.resolveType(decl.Type)
		if err != nil {
			return err
		}
		v.Type = t

		if decl.Value != nil {
			if value, err = b.analyzeExpression(decl.Value); err != nil {
				return err
			}
			if value, err = b.implicitCastTo(value, t); err != nil {
				return err
			}
		} else {
			if value, err = b.defaultInitializer(decl.Loc(), t); err != nil {
				return err
			}
		}
	}

	// The variable's segment extends the prefix only for its own mangle;
	// siblings analyzed on the same task must not see it.
	saved := b.manglePrefix
	b.appendMangle(v.Name.String())
	err = b.computeVariableMangle(decl.Loc(), v)
	b.manglePrefix = saved
	if err != nil {
		return err
	}

	// Globals, manifests and field defaults are compile-time values; a
	// default-initialized aggregate keeps its init expression as-is.
	needsEval := v.Storage == StorageStatic || v.Storage == StorageEnum || isField
	if needsEval && !isDefaultInit(value) {
		if value, err = b.evaluate(value); err != nil {
			return err
		}
	}
	v.Value = value
	return nil
}

func isAutoExpr(t ast.TypeExpression) bool {
	_, ok := t.(*ast.AutoType)
	return ok
}

// isDefaultInit recognizes initializers that already are canonical
// compile-time values.
func isDefaultInit(e Expression) bool {
	switch e.(type) {
	case *VoidInitializer, *TupleExpression, *NullLiteral, *VariableRef:
		return true
	}
	return false
}

// defaultInitializer builds the default value expression of a type.
func (b *analysis) defaultInitializer(loc token.Span, t types.Type) (Expression, error) {
	switch tt := types.Unqual(t).(type) {
	case *types.BuiltinType:
		switch {
		case tt.B == types.Bool:
			return &BoolLiteral{Location: loc}, nil
		case tt.B.IsIntegral():
			return &IntegerLiteral{Location: loc, Value: 0, T: t}, nil
		case tt.B.IsChar():
			// Character types default to the invalid code unit.
			var invalid rune
			switch tt.B {
			case types.Char:
				invalid = 0xFF
			case types.Wchar:
				invalid = 0xFFFF
			default:
				invalid = 0xFFFF
			}
			return &CharLiteral{Location: loc, Value: invalid, T: t}, nil
		case tt.B == types.Null:
			return &NullLiteral{Location: loc}, nil
		default:
			return &VoidInitializer{Location: loc, T: t}, nil
		}

	case *types.PointerType, *types.SliceType, *types.FunctionType:
		return &CastExpression{
			Location: loc,
			Kind:     CastBit,
			Operand:  &NullLiteral{Location: loc},
			T:        t,
		}, nil

	case *types.AggregateType:
		switch agg := tt.Agg.(type) {
		case *Class, *Interface:
			return &CastExpression{
				Location: loc,
				Kind:     CastBit,
				Operand:  &NullLiteral{Location: loc},
				T:        t,
			}, nil
		case *Struct:
			if err := b.require(agg, Signed); err != nil {
				return nil, err
			}
			return &VariableRef{Location: loc, Var: agg.Init}, nil
		case *Union:
			if err := b.require(agg, Signed); err != nil {
				return nil, err
			}
			return &VariableRef{Location: loc, Var: agg.Init}, nil
		case *Enum:
			if err := b.require(agg, Processed); err != nil {
				return nil, err
			}
			if len(agg.Entries) == 0 {
				return &IntegerLiteral{Location: loc, Value: 0, T: t}, nil
			}
			return &VariableRef{Location: loc, Var: agg.Entries[0]}, nil
		default:
			return nil, NewUnsupported(loc, "type %s has no default initializer", t)
		}

	case *types.ArrayType:
		return &VoidInitializer{Location: loc, T: t}, nil

	default:
		return nil, NewUnsupported(loc, "type %s has no default initializer", t)
	}
}
