// Package semantic implements the semantic analysis front-end: it lowers a
// parsed AST into a fully resolved IR in which every identifier, type,
// overload, inheritance relation, template instantiation and narrowing cast
// has been settled.
//
// Analysis is demand-driven and order-independent: every declaration becomes
// a Symbol that advances through the stage lattice Parsed → Populated →
// Signed → Processed under the control of the Scheduler. Readers wait on
// stages, never on completion, which is what lets mutually recursive
// declarations converge.
package semantic

import (
	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/ident"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// Step is the monotonic progress marker of a symbol.
type Step int

const (
	// Parsed means the symbol exists as a stub with location, name and
	// linkage only.
	Parsed Step = iota
	// Populated means the symbol's scope and member stubs exist.
	Populated
	// Signed means the symbol's type and mangle are known.
	Signed
	// Processed means analysis of the symbol is complete.
	Processed
)

func (s Step) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Populated:
		return "populated"
	case Signed:
		return "signed"
	case Processed:
		return "processed"
	}
	return "invalid"
}

// Storage describes where a symbol's value lives.
type Storage int

const (
	StorageLocal Storage = iota
	StorageCapture
	StorageStatic
	StorageEnum
)

func (s Storage) String() string {
	switch s {
	case StorageCapture:
		return "capture"
	case StorageStatic:
		return "static"
	case StorageEnum:
		return "enum"
	}
	return "local"
}

// Visibility is the resolved access level of a symbol.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
	Package
)

// SymbolKind discriminates the symbol variants.
type SymbolKind int

const (
	KindModule SymbolKind = iota
	KindFunction
	KindMethod
	KindVariable
	KindField
	KindStruct
	KindUnion
	KindClass
	KindInterface
	KindEnum
	KindTemplate
	KindTemplateInstance
	KindTypeAlias
	KindValueAlias
	KindSymbolAlias
	KindOverloadSet
	KindTypeTemplateParam
	KindValueTemplateParam
	KindAliasTemplateParam
	KindTypedAliasTemplateParam
)

// SymbolBase holds the attributes shared by every symbol. Field writes are
// owned by the analysis task driving the symbol; other tasks may only read
// them after observing the publishing Step via the scheduler.
type SymbolBase struct {
	Location   token.Span
	Name       ident.Name
	Linkage    types.Linkage
	Visibility Visibility
	Storage    Storage
	Mangle     ident.Name
	Step       Step
	HasContext bool
}

// Common returns the shared attribute block of the symbol.
func (b *SymbolBase) Common() *SymbolBase { return b }

// Symbol is a declaration materialized in the IR.
type Symbol interface {
	Common() *SymbolBase
	Kind() SymbolKind
}

// ============================================================================
// Modules
// ============================================================================

// Module is the symbol backing one source file.
type Module struct {
	SymbolBase
	Packages []string
	Scope    *Scope
	Members  []Symbol
}

func (m *Module) Kind() SymbolKind { return KindModule }

// FullName returns the dot-joined qualified module name.
func (m *Module) FullName() string {
	name := ""
	for _, p := range m.Packages {
		name += p + "."
	}
	return name + m.Name.String()
}

// ============================================================================
// Functions and variables
// ============================================================================

// Function is a free function or nested function. Params holds every
// parameter including the synthetic context and this parameters, whose
// count is recorded in Type.Contexts.
type Function struct {
	SymbolBase
	Type     *types.FunctionType
	Return   types.ParamType
	Params   []*Variable
	Scope    *Scope
	Body     *BlockStatement
	Captures []*Variable // locals of this function captured by nested symbols
}

func (f *Function) Kind() SymbolKind { return KindFunction }

// ContextName implements types.ContextOwner.
func (f *Function) ContextName() string { return f.Name.String() }

// ContextMangle implements types.ContextOwner.
func (f *Function) ContextMangle() string { return f.Mangle.String() }

// Method is a function bound to a class with a virtual table slot.
// Index 0 is reserved: it marks a method whose slot is adopted from the
// base class during override resolution.
type Method struct {
	Function
	Index int
}

func (m *Method) Kind() SymbolKind { return KindMethod }

// Variable is a local, global, parameter or enum-entry value.
type Variable struct {
	SymbolBase
	Type    types.Type
	Value   Expression
	IsRef   bool
	IsFinal bool
}

func (v *Variable) Kind() SymbolKind { return KindVariable }

// Field is a variable embedded in an aggregate at a fixed slot.
type Field struct {
	Variable
	Index int
}

func (f *Field) Kind() SymbolKind { return KindField }

// ============================================================================
// Aggregates
// ============================================================================

// Struct is a value aggregate.
type Struct struct {
	SymbolBase
	Scope   *Scope
	Members []Symbol
	Fields  []*Field
	Init    *Variable
}

func (s *Struct) Kind() SymbolKind { return KindStruct }

func (s *Struct) AggregateName() string              { return s.Name.String() }
func (s *Struct) AggregateMangle() string            { return s.Mangle.String() }
func (s *Struct) AggregateKind() types.AggregateKind { return types.AggStruct }
func (s *Struct) UnderlyingType() types.Type         { return nil }

// FieldTypes implements types.Aggregate.
func (s *Struct) FieldTypes() []types.Type { return fieldTypes(s.Fields) }

// Union is an overlapping value aggregate.
type Union struct {
	SymbolBase
	Scope   *Scope
	Members []Symbol
	Fields  []*Field
	Init    *Variable
}

func (u *Union) Kind() SymbolKind { return KindUnion }

func (u *Union) AggregateName() string              { return u.Name.String() }
func (u *Union) AggregateMangle() string            { return u.Mangle.String() }
func (u *Union) AggregateKind() types.AggregateKind { return types.AggUnion }
func (u *Union) UnderlyingType() types.Type         { return nil }
func (u *Union) FieldTypes() []types.Type           { return fieldTypes(u.Fields) }

// Class is a reference aggregate with single inheritance and a vtable.
type Class struct {
	SymbolBase
	Scope   *Scope
	Base    *Class
	Members []Symbol
	Fields  []*Field
	Methods []*Method // vtable order; nil slots were overridden away
}

func (c *Class) Kind() SymbolKind { return KindClass }

func (c *Class) AggregateName() string              { return c.Name.String() }
func (c *Class) AggregateMangle() string            { return c.Mangle.String() }
func (c *Class) AggregateKind() types.AggregateKind { return types.AggClass }
func (c *Class) UnderlyingType() types.Type         { return nil }
func (c *Class) FieldTypes() []types.Type           { return fieldTypes(c.Fields) }

// DerivesFrom reports whether c is base or inherits from base.
func (c *Class) DerivesFrom(base *Class) bool {
	for cur := c; ; cur = cur.Base {
		if cur == base {
			return true
		}
		if cur.Base == cur || cur.Base == nil {
			return false
		}
	}
}

// Interface is a reference aggregate describing a method set.
// Member and inheritance analysis is reserved; only the mangle is computed.
type Interface struct {
	SymbolBase
	Scope *Scope
}

func (i *Interface) Kind() SymbolKind { return KindInterface }

func (i *Interface) AggregateName() string              { return i.Name.String() }
func (i *Interface) AggregateMangle() string            { return i.Mangle.String() }
func (i *Interface) AggregateKind() types.AggregateKind { return types.AggInterface }
func (i *Interface) UnderlyingType() types.Type         { return nil }
func (i *Interface) FieldTypes() []types.Type           { return nil }

// Enum is an integral enumeration. Entries are enum-storage variables
// forming an arithmetic chain.
type Enum struct {
	SymbolBase
	Scope      *Scope
	Underlying types.Type
	Entries    []*Variable
}

func (e *Enum) Kind() SymbolKind { return KindEnum }

func (e *Enum) AggregateName() string              { return e.Name.String() }
func (e *Enum) AggregateMangle() string            { return e.Mangle.String() }
func (e *Enum) AggregateKind() types.AggregateKind { return types.AggEnum }
func (e *Enum) UnderlyingType() types.Type         { return e.Underlying }
func (e *Enum) FieldTypes() []types.Type {
	if e.Underlying == nil {
		return nil
	}
	return []types.Type{e.Underlying}
}

func fieldTypes(fields []*Field) []types.Type {
	ts := make([]types.Type, len(fields))
	for i, f := range fields {
		ts[i] = f.Type
	}
	return ts
}

// ============================================================================
// Templates
// ============================================================================

// Template is an uninstantiated declaration pattern. Members stay as AST;
// every instantiation flattens them against a fresh scope.
type Template struct {
	SymbolBase
	Scope     *Scope
	Params    []Symbol
	Members   []ast.Declaration
	Instances map[string]*TemplateInstance
	IFTI      []types.ParamType // parameter shape for implicit instantiation, nil if unknown
}

func (t *Template) Kind() SymbolKind { return KindTemplate }

// TemplateInstance is one instantiation of a template, pre-populated with
// its argument symbols.
type TemplateInstance struct {
	SymbolBase
	Template *Template
	Scope    *Scope
	Args     []Symbol
	Members  []Symbol
	CtxSym   Symbol // enclosing context symbol when any argument carries one
}

func (t *TemplateInstance) Kind() SymbolKind { return KindTemplateInstance }

// TypeTemplateParam is a template parameter matching a type.
type TypeTemplateParam struct {
	SymbolBase
}

func (p *TypeTemplateParam) Kind() SymbolKind { return KindTypeTemplateParam }

// ValueTemplateParam is a template parameter matching a value of a type.
type ValueTemplateParam struct {
	SymbolBase
	Type types.Type
}

func (p *ValueTemplateParam) Kind() SymbolKind { return KindValueTemplateParam }

// AliasTemplateParam is a template parameter matching any symbol.
type AliasTemplateParam struct {
	SymbolBase
}

func (p *AliasTemplateParam) Kind() SymbolKind { return KindAliasTemplateParam }

// TypedAliasTemplateParam is a template parameter matching a symbol whose
// type is constrained.
type TypedAliasTemplateParam struct {
	SymbolBase
	Type types.Type
}

func (p *TypedAliasTemplateParam) Kind() SymbolKind { return KindTypedAliasTemplateParam }

// ============================================================================
// Aliases and overload sets
// ============================================================================

// TypeAlias binds a name to a resolved type.
type TypeAlias struct {
	SymbolBase
	Type types.Type
}

func (a *TypeAlias) Kind() SymbolKind { return KindTypeAlias }

// ValueAlias binds a name to a compile-time value.
type ValueAlias struct {
	SymbolBase
	Value Expression
}

func (a *ValueAlias) Kind() SymbolKind { return KindValueAlias }

// SymbolAlias binds a name to another symbol. It adopts the target's
// mangle at Populated and its context flag at Signed.
type SymbolAlias struct {
	SymbolBase
	Target Symbol
}

func (a *SymbolAlias) Kind() SymbolKind { return KindSymbolAlias }

// OverloadSet is a scope entry holding several symbols sharing one name.
type OverloadSet struct {
	SymbolBase
	Set []Symbol
}

func (o *OverloadSet) Kind() SymbolKind { return KindOverloadSet }
