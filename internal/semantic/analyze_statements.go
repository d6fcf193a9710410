package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
)

// Statement analysis covers the subset of the statement language the
// front-end needs to type function bodies: blocks, expression statements,
// local declarations, branches, loops and returns.

// analyzeBlock lowers a block, giving it a fresh scope.
func (b *analysis) analyzeBlock(block *ast.BlockStatement) (*BlockStatement, error) {
	saved := b.scope
	b.scope = NewScope(saved, b.scope.Owner())
	defer func() { b.scope = saved }()

	out := &BlockStatement{Location: block.Loc(), Scope: b.scope}
	for _, stmt := range block.Statements {
		lowered, err := b.analyzeStatement(stmt)
		if err != nil {
			return nil, err
		}
		if lowered != nil {
			out.Statements = append(out.Statements, lowered)
		}
	}
	return out, nil
}

func (b *analysis) analyzeStatement(stmt ast.Statement) (Statement, error) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		return b.analyzeBlock(s)

	case *ast.ExpressionStatement:
		e, err := b.analyzeExpression(s.Expression)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{Location: s.Loc(), Expression: e}, nil

	case *ast.DeclarationStatement:
		return b.analyzeLocalDeclaration(s)

	case *ast.ReturnStatement:
		return b.analyzeReturn(s)

	case *ast.IfStatement:
		cond, err := b.analyzeCondition(s.Condition)
		if err != nil {
			return nil, err
		}
		then, err := b.analyzeStatement(s.Then)
		if err != nil {
			return nil, err
		}
		var elseStmt Statement
		if s.Else != nil {
			if elseStmt, err = b.analyzeStatement(s.Else); err != nil {
				return nil, err
			}
		}
		return &IfStatement{Location: s.Loc(), Condition: cond, Then: then, Else: elseStmt}, nil

	case *ast.WhileStatement:
		cond, err := b.analyzeCondition(s.Condition)
		if err != nil {
			return nil, err
		}
		body, err := b.analyzeStatement(s.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStatement{Location: s.Loc(), Condition: cond, Body: body}, nil

	default:
		return nil, NewUnsupported(stmt.Loc(), "unsupported statement %s", stmt)
	}
}

func (b *analysis) analyzeCondition(e ast.Expression) (Expression, error) {
	cond, err := b.analyzeExpression(e)
	if err != nil {
		return nil, err
	}
	return b.implicitCastTo(cond, types.GetBuiltin(types.Bool))
}

// analyzeLocalDeclaration handles declarations in statement position.
// Local variables are analyzed inline; nested functions and types go
// through the regular flattener and scheduler.
func (b *analysis) analyzeLocalDeclaration(s *ast.DeclarationStatement) (Statement, error) {
	switch decl := s.Declaration.(type) {
	case *ast.VariableDecl:
		v := &Variable{
			SymbolBase: SymbolBase{
				Location:   decl.Loc(),
				Name:       b.intern(decl.Name),
				Linkage:    types.LinkageD,
				Storage:    StorageLocal,
				Visibility: Public,
			},
		}
		if decl.IsEnum {
			v.Storage = StorageEnum
		} else if decl.IsStatic {
			v.Storage = StorageStatic
		}
		if err := b.scope.Add(v); err != nil {
			return nil, err
		}
		if err := b.analyzeVariableInline(decl, v); err != nil {
			return nil, err
		}
		return &VariableStatement{Location: s.Loc(), Var: v}, nil

	default:
		fl, err := b.flattenInto(b.scope, nil, 0, 1, []ast.Declaration{s.Declaration})
		if err != nil {
			return nil, err
		}
		// Nested declarations analyze on demand; drive them now so body
		// analysis surfaces their errors at the declaration site.
		for _, member := range fl.members {
			if err := b.require(member, Processed); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// analyzeReturn checks a return statement against the ambient return
// type, collecting expression types while an auto return is inferred.
func (b *analysis) analyzeReturn(s *ast.ReturnStatement) (Statement, error) {
	if b.returnType == nil {
		return nil, NewUnsupported(s.Loc(), "return outside of a function")
	}

	if s.Value == nil {
		if b.autoReturns == nil && !types.IsVoid(b.returnType.Type) {
			return nil, NewTypeMismatch(s.Loc(), types.GetBuiltin(types.Void), b.returnType.Type)
		}
		return &ReturnStatement{Location: s.Loc()}, nil
	}

	value, err := b.analyzeExpression(s.Value)
	if err != nil {
		return nil, err
	}

	if b.autoReturns != nil {
		*b.autoReturns = append(*b.autoReturns, value.Type())
		return &ReturnStatement{Location: s.Loc(), Value: value}, nil
	}

	if value, err = b.implicitCastTo(value, b.returnType.Type); err != nil {
		return nil, err
	}
	return &ReturnStatement{Location: s.Loc(), Value: value}, nil
}
