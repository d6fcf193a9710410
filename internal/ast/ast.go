// Package ast defines the Abstract Syntax Tree consumed by the semantic
// pass. The tree is produced by an external parser collaborator; nothing in
// this package depends on how the source was read.
package ast

import (
	"strings"

	"github.com/cwbudde/go-sdc/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Loc returns the source span covered by the node.
	Loc() token.Span

	// String returns a compact representation for debugging and tests.
	String() string
}

// Declaration is a node that introduces symbols into a scope.
type Declaration interface {
	Node
	declarationNode()
}

// Statement is a node executed for effect inside a function body.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// TypeExpression is an unresolved syntactic type.
type TypeExpression interface {
	Node
	typeExpressionNode()
}

// Module is the root of a parsed source file.
type Module struct {
	Location     token.Span
	Packages     []string // enclosing package path, outermost first
	Name         string
	Declarations []Declaration
}

func (m *Module) Loc() token.Span { return m.Location }

func (m *Module) String() string {
	return "module " + m.FullName()
}

// FullName returns the dot-joined qualified module name.
func (m *Module) FullName() string {
	if len(m.Packages) == 0 {
		return m.Name
	}
	return strings.Join(m.Packages, ".") + "." + m.Name
}
