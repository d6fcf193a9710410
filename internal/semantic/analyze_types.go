package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// builtinTypeNames maps source-level type names onto builtins.
var builtinTypeNames = map[string]types.Builtin{
	"void":   types.Void,
	"bool":   types.Bool,
	"char":   types.Char,
	"wchar":  types.Wchar,
	"dchar":  types.Dchar,
	"byte":   types.Byte,
	"ubyte":  types.Ubyte,
	"short":  types.Short,
	"ushort": types.Ushort,
	"int":    types.Int,
	"uint":   types.Uint,
	"long":   types.Long,
	"ulong":  types.Ulong,
	"cent":   types.Cent,
	"ucent":  types.Ucent,
}

// resolveType lowers a syntactic type to the resolved type model.
func (b *analysis) resolveType(te ast.TypeExpression) (types.Type, error) {
	switch t := te.(type) {
	case *ast.AutoType:
		return types.GetBuiltin(types.None), nil
	case *ast.NamedType:
		return b.resolveNamedType(t)
	case *ast.PointerTypeExpr:
		elem, err := b.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil
	case *ast.SliceTypeExpr:
		elem, err := b.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewSlice(elem), nil
	case *ast.ArrayTypeExpr:
		elem, err := b.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		size, err := b.analyzeExpression(t.Size)
		if err != nil {
			return nil, err
		}
		n, err := b.evalIntegral(size)
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem, n), nil
	case *ast.InstantiateType:
		inst, err := b.instantiateFromAst(t.Loc(), t.Target, t.Arguments)
		if err != nil {
			return nil, err
		}
		return b.instanceAsType(t.Loc(), inst)
	default:
		return nil, NewUnsupported(te.Loc(), "unsupported type expression %s", te)
	}
}

// resolveNamedType resolves a possibly qualified type name.
func (b *analysis) resolveNamedType(t *ast.NamedType) (types.Type, error) {
	if len(t.Path) == 1 {
		if builtin, ok := builtinTypeNames[t.Path[0]]; ok {
			return types.GetBuiltin(builtin), nil
		}
	}

	sym, err := b.resolvePath(t.Loc(), t.Path)
	if err != nil {
		return nil, err
	}
	return b.symbolAsType(t.Loc(), sym)
}

// resolvePath walks a qualified identifier path through scopes and
// modules to a symbol.
func (b *analysis) resolvePath(loc token.Span, path []string) (Symbol, error) {
	sym, err := b.resolveIdentifier(loc, path[0])
	if err != nil {
		return nil, err
	}

	for _, part := range path[1:] {
		sym, err = b.resolveMember(loc, sym, part)
		if err != nil {
			return nil, err
		}
	}
	return sym, nil
}

// resolveMember finds a member inside a module, aggregate or instance
// symbol, advancing the owner far enough for its scope to exist.
func (b *analysis) resolveMember(loc token.Span, owner Symbol, name string) (Symbol, error) {
	scope, err := b.memberScope(loc, owner)
	if err != nil {
		return nil, err
	}
	sym := scope.Lookup(b.intern(name))
	if sym == nil {
		return nil, NewUnresolvedIdentifier(loc, name)
	}
	return sym, nil
}

// memberScope returns the member scope of a symbol after requiring the
// stage at which the scope is populated.
func (b *analysis) memberScope(loc token.Span, owner Symbol) (*Scope, error) {
	switch s := owner.(type) {
	case *Module:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		return s.Scope, nil
	case *Struct:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		return s.Scope, nil
	case *Union:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		return s.Scope, nil
	case *Class:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		return s.Scope, nil
	case *Enum:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		return s.Scope, nil
	case *TemplateInstance:
		if err := b.require(s, Populated); err != nil {
			return nil, err
		}
		return s.Scope, nil
	case *SymbolAlias:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return b.memberScope(loc, s.Target)
	default:
		return nil, NewUnresolvedIdentifier(loc, owner.Common().Name.String())
	}
}

// symbolAsType views a symbol as a type.
func (b *analysis) symbolAsType(loc token.Span, sym Symbol) (types.Type, error) {
	switch s := sym.(type) {
	case *Struct, *Union, *Class, *Interface, *Enum:
		// Aggregates are usable as types as soon as the stub exists; their
		// identity is the declaration, not the finished member list.
		return types.NewAggregate(sym.(types.Aggregate)), nil
	case *TypeAlias:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return s.Type, nil
	case *SymbolAlias:
		if err := b.require(s, Signed); err != nil {
			return nil, err
		}
		return b.symbolAsType(loc, s.Target)
	case *TemplateInstance:
		return b.instanceAsType(loc, s)
	default:
		return nil, NewUnsupported(loc, "'%s' is not a type", sym.Common().Name)
	}
}

// instanceAsType views a template instance as a type: the instance must
// contain a member aggregate or alias named after the template (the
// eponymous member convention).
func (b *analysis) instanceAsType(loc token.Span, inst *TemplateInstance) (types.Type, error) {
	if err := b.require(inst, Populated); err != nil {
		return nil, err
	}
	name := inst.Template.Name
	member := inst.Scope.Lookup(name)
	if member == nil {
		return nil, NewUnsupported(loc, "template '%s' has no eponymous member", name)
	}
	return b.symbolAsType(loc, member)
}
