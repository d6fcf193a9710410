package semantic

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-sdc/internal/errors"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/token"
)

// ErrorKind classifies a semantic error.
type ErrorKind int

const (
	// ErrSyntaxUpstream is a parse failure surfaced by the parser collaborator.
	ErrSyntaxUpstream ErrorKind = iota
	// ErrUnresolvedIdentifier means a name was not found in any enclosing scope.
	ErrUnresolvedIdentifier
	// ErrTypeMismatch means an implicit cast is not permitted.
	ErrTypeMismatch
	// ErrOverrideNotFound means a method requires overriding a base member
	// that does not exist.
	ErrOverrideNotFound
	// ErrMissingOverride means a base member was matched but the override
	// marker is absent.
	ErrMissingOverride
	// ErrUnsupportedConstruct covers constructs the front-end rejects.
	ErrUnsupportedConstruct
	// ErrDuplicateSymbol is a non-overloadable name collision.
	ErrDuplicateSymbol
	// ErrCycle is a true cyclic dependency between declarations.
	ErrCycle
	// ErrCompileTimeEval means the evaluator could not fold a required constant.
	ErrCompileTimeEval
	// ErrInternal indicates a violated analyzer invariant (a compiler bug,
	// not a user error).
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntaxUpstream:
		return "syntax"
	case ErrUnresolvedIdentifier:
		return "unresolved identifier"
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrOverrideNotFound:
		return "override not found"
	case ErrMissingOverride:
		return "missing override"
	case ErrUnsupportedConstruct:
		return "unsupported construct"
	case ErrDuplicateSymbol:
		return "duplicate symbol"
	case ErrCycle:
		return "cyclic dependency"
	case ErrCompileTimeEval:
		return "compile-time evaluation"
	}
	return "internal"
}

// SemanticError is a fatal, location-tagged diagnostic. The pass makes no
// attempt to recover after the first one.
type SemanticError struct {
	Kind     ErrorKind
	Location token.Span
	Message  string
	Expected types.Type
	Got      types.Type
	Name     string
}

// Error implements the error interface.
func (e *SemanticError) Error() string {
	if e.Location.Start.IsValid() {
		return fmt.Sprintf("%s at %s", e.Message, e.Location)
	}
	return e.Message
}

// ToCompilerError converts the diagnostic for display with source context.
func (e *SemanticError) ToCompilerError(source, filename string) *errors.CompilerError {
	message := e.Message
	if e.Kind == ErrTypeMismatch && e.Expected != nil && e.Got != nil {
		message = fmt.Sprintf("%s\nExpected: %s\nGot: %s", e.Message, e.Expected, e.Got)
	}
	return errors.NewCompilerError(e.Location.Start, message, source, filename)
}

// NewUnresolvedIdentifier creates an unresolved identifier error.
func NewUnresolvedIdentifier(loc token.Span, name string) *SemanticError {
	return &SemanticError{
		Kind:     ErrUnresolvedIdentifier,
		Location: loc,
		Message:  fmt.Sprintf("undefined identifier '%s'", name),
		Name:     name,
	}
}

// NewTypeMismatch creates an implicit-cast rejection error.
func NewTypeMismatch(loc token.Span, got, expected types.Type) *SemanticError {
	return &SemanticError{
		Kind:     ErrTypeMismatch,
		Location: loc,
		Message:  fmt.Sprintf("cannot implicitly convert %s to %s", got, expected),
		Expected: expected,
		Got:      got,
	}
}

// NewOverrideNotFound creates an error for a method that must override but
// matches no base member.
func NewOverrideNotFound(loc token.Span, name string) *SemanticError {
	return &SemanticError{
		Kind:     ErrOverrideNotFound,
		Location: loc,
		Message:  fmt.Sprintf("method '%s' does not override any base class member", name),
		Name:     name,
	}
}

// NewMissingOverride creates an error for a method that matches a base
// member without being marked override.
func NewMissingOverride(loc token.Span, name string) *SemanticError {
	return &SemanticError{
		Kind:     ErrMissingOverride,
		Location: loc,
		Message:  fmt.Sprintf("method '%s' overrides a base class member but is not marked override", name),
		Name:     name,
	}
}

// NewUnsupported creates an error for a construct the front-end rejects.
func NewUnsupported(loc token.Span, format string, args ...any) *SemanticError {
	return &SemanticError{
		Kind:     ErrUnsupportedConstruct,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NewDuplicateSymbol creates a name collision error.
func NewDuplicateSymbol(loc token.Span, name string) *SemanticError {
	return &SemanticError{
		Kind:     ErrDuplicateSymbol,
		Location: loc,
		Message:  fmt.Sprintf("'%s' is already declared in this scope", name),
		Name:     name,
	}
}

// NewCycleError creates a cyclic dependency error. The chain lists the
// symbols participating in the cycle in wait order.
func NewCycleError(loc token.Span, chain []string) *SemanticError {
	return &SemanticError{
		Kind:     ErrCycle,
		Location: loc,
		Message:  fmt.Sprintf("cyclic dependency between %s", strings.Join(chain, " -> ")),
	}
}

// NewEvalError wraps an evaluator failure.
func NewEvalError(loc token.Span, err error) *SemanticError {
	return &SemanticError{
		Kind:     ErrCompileTimeEval,
		Location: loc,
		Message:  fmt.Sprintf("expression cannot be evaluated at compile time: %v", err),
	}
}

// NewSyntaxError wraps a parse failure from the parser collaborator.
func NewSyntaxError(filename string, err error) *SemanticError {
	return &SemanticError{
		Kind:    ErrSyntaxUpstream,
		Message: fmt.Sprintf("%s: %v", filename, err),
	}
}

// newInternal reports a violated analyzer invariant.
func newInternal(loc token.Span, format string, args ...any) *SemanticError {
	return &SemanticError{
		Kind:     ErrInternal,
		Location: loc,
		Message:  "internal: " + fmt.Sprintf(format, args...),
	}
}
