package ast

import (
	"strings"

	"github.com/cwbudde/go-sdc/pkg/token"
)

// Visibility is the declared access level of a symbol.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityPackage
)

func (v Visibility) String() string {
	switch v {
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	case VisibilityPackage:
		return "package"
	}
	return "public"
}

// Linkage is the declared ABI of a symbol, as written in the source.
type Linkage int

const (
	LinkageDefault Linkage = iota // no extern(...) attribute
	LinkageD
	LinkageC
	LinkageOther // extern(...) naming an ABI the front-end does not support
)

// ImportDecl imports one or more modules into the enclosing scope.
// Each entry is a qualified module path, outermost package first.
type ImportDecl struct {
	Location token.Span
	Modules  [][]string
}

func (d *ImportDecl) declarationNode() {}
func (d *ImportDecl) Loc() token.Span  { return d.Location }
func (d *ImportDecl) String() string {
	parts := make([]string, len(d.Modules))
	for i, m := range d.Modules {
		parts[i] = strings.Join(m, ".")
	}
	return "import " + strings.Join(parts, ", ")
}

// Param is one formal parameter of a function declaration.
type Param struct {
	Location token.Span
	Name     string
	Type     TypeExpression // nil for an untyped (template-matched) parameter
	Default  Expression     // nil when no default value is given
	IsRef    bool
	IsFinal  bool
}

// FunctionDecl declares a function, method or constructor. A nil ReturnType
// means the return type is inferred from the body (auto).
type FunctionDecl struct {
	Location      token.Span
	Name          string
	Linkage       Linkage
	Visibility    Visibility
	ReturnType    TypeExpression
	Params        []Param
	Body          *BlockStatement // nil for a bodyless prototype
	IsStatic      bool
	IsVariadic    bool
	IsRefReturn   bool
	IsOverride    bool
	IsConstructor bool
}

func (d *FunctionDecl) declarationNode() {}
func (d *FunctionDecl) Loc() token.Span  { return d.Location }
func (d *FunctionDecl) String() string {
	if d.IsConstructor {
		return "this(...)"
	}
	return "function " + d.Name
}

// VariableDecl declares a variable, field or manifest constant. A nil Type
// means the type is inferred from the initializer. IsEnum marks a manifest
// (enum-storage) constant.
type VariableDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Type       TypeExpression
	Value      Expression // nil means default initialization
	IsStatic   bool
	IsEnum     bool
}

func (d *VariableDecl) declarationNode() {}
func (d *VariableDecl) Loc() token.Span  { return d.Location }
func (d *VariableDecl) String() string   { return "var " + d.Name }

// StructDecl declares a struct aggregate.
type StructDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Members    []Declaration
}

func (d *StructDecl) declarationNode() {}
func (d *StructDecl) Loc() token.Span  { return d.Location }
func (d *StructDecl) String() string   { return "struct " + d.Name }

// UnionDecl declares a union aggregate.
type UnionDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Members    []Declaration
}

func (d *UnionDecl) declarationNode() {}
func (d *UnionDecl) Loc() token.Span  { return d.Location }
func (d *UnionDecl) String() string   { return "union " + d.Name }

// ClassDecl declares a class. An empty Bases list means the class inherits
// from the root Object class implicitly.
type ClassDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Bases      []TypeExpression
	Members    []Declaration
}

func (d *ClassDecl) declarationNode() {}
func (d *ClassDecl) Loc() token.Span  { return d.Location }
func (d *ClassDecl) String() string   { return "class " + d.Name }

// InterfaceDecl declares an interface.
type InterfaceDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Bases      []TypeExpression
	Members    []Declaration
}

func (d *InterfaceDecl) declarationNode() {}
func (d *InterfaceDecl) Loc() token.Span  { return d.Location }
func (d *InterfaceDecl) String() string   { return "interface " + d.Name }

// EnumEntry is one member of an enum declaration. A nil Value means the
// entry continues the arithmetic chain from its predecessor.
type EnumEntry struct {
	Location token.Span
	Name     string
	Value    Expression
}

// EnumDecl declares an enum type. A nil Base means the underlying type
// defaults to int.
type EnumDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Base       TypeExpression
	Entries    []EnumEntry
}

func (d *EnumDecl) declarationNode() {}
func (d *EnumDecl) Loc() token.Span  { return d.Location }
func (d *EnumDecl) String() string   { return "enum " + d.Name }

// TypeAliasDecl binds a name to a type.
type TypeAliasDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Type       TypeExpression
}

func (d *TypeAliasDecl) declarationNode() {}
func (d *TypeAliasDecl) Loc() token.Span  { return d.Location }
func (d *TypeAliasDecl) String() string   { return "alias " + d.Name }

// ValueAliasDecl binds a name to a compile-time value.
type ValueAliasDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Value      Expression
}

func (d *ValueAliasDecl) declarationNode() {}
func (d *ValueAliasDecl) Loc() token.Span  { return d.Location }
func (d *ValueAliasDecl) String() string   { return "enum " + d.Name + " = ..." }

// SymbolAliasDecl binds a name to another symbol.
type SymbolAliasDecl struct {
	Location   token.Span
	Name       string
	Visibility Visibility
	Target     Expression
}

func (d *SymbolAliasDecl) declarationNode() {}
func (d *SymbolAliasDecl) Loc() token.Span  { return d.Location }
func (d *SymbolAliasDecl) String() string   { return "alias " + d.Name }

// StaticIfDecl selects declarations on a compile-time condition.
type StaticIfDecl struct {
	Location  token.Span
	Condition Expression
	Then      []Declaration
	Else      []Declaration
}

func (d *StaticIfDecl) declarationNode() {}
func (d *StaticIfDecl) Loc() token.Span  { return d.Location }
func (d *StaticIfDecl) String() string   { return "static if (...)" }

// VersionDecl selects declarations on a version identifier.
type VersionDecl struct {
	Location token.Span
	Ident    string
	Then     []Declaration
	Else     []Declaration
}

func (d *VersionDecl) declarationNode() {}
func (d *VersionDecl) Loc() token.Span  { return d.Location }
func (d *VersionDecl) String() string   { return "version(" + d.Ident + ")" }

// MixinDecl splices declarations produced by a compile-time string.
type MixinDecl struct {
	Location token.Span
	Value    Expression
}

func (d *MixinDecl) declarationNode() {}
func (d *MixinDecl) Loc() token.Span  { return d.Location }
func (d *MixinDecl) String() string   { return "mixin(...)" }

// TemplateMixinDecl splices the members of a template instantiation into
// the enclosing scope.
type TemplateMixinDecl struct {
	Location token.Span
	Target   Expression // identifier or instantiation naming the template
}

func (d *TemplateMixinDecl) declarationNode() {}
func (d *TemplateMixinDecl) Loc() token.Span  { return d.Location }
func (d *TemplateMixinDecl) String() string   { return "mixin Template" }
