package semantic

import (
	"fmt"

	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/ident"
)

// analysis carries the ambient analysis state: the mangle prefix, the
// enclosing aggregate's this type, the enclosing function's return type,
// the context symbol and the current scope.
//
// The state is task-local by construction: scheduling a declaration
// snapshots the current analysis by value, and each task mutates only its
// own copy. Nested analyses within a task that must restore state on exit
// do so with deferred restores, guaranteed on every path.
type analysis struct {
	pass         *SemanticPass
	task         *task
	manglePrefix string
	thisType     types.Type
	returnType   *types.ParamType
	ctxSym       Symbol
	fun          *Function
	scope        *Scope
	autoReturns  *[]types.Type // collects return types while inferring auto
}

// schedule registers a task that runs fn against a snapshot of the current
// ambient state.
func (a *analysis) schedule(sym Symbol, fn func(b *analysis) error) {
	snap := *a
	a.pass.Scheduler.Schedule(sym, func(t *task) error {
		b := snap
		b.task = t
		return fn(&b)
	})
}

// require suspends the current task until sym reaches stage.
func (a *analysis) require(sym Symbol, stage Step) error {
	return a.pass.Scheduler.Require(a.task, sym, stage)
}

// publish advances a symbol's stage.
func (a *analysis) publish(sym Symbol, stage Step) {
	a.pass.Scheduler.Publish(sym, stage)
}

// intern interns an identifier through the shared context.
func (a *analysis) intern(s string) ident.Name {
	return a.pass.Context.GetName(s)
}

// appendMangle extends the ambient mangle prefix with a length-prefixed
// identifier segment.
func (a *analysis) appendMangle(name string) {
	a.manglePrefix += fmt.Sprintf("%d%s", len(name), name)
}

// evaluate folds an expression through the evaluator collaborator,
// wrapping failures as compile-time evaluation errors.
func (a *analysis) evaluate(e Expression) (Expression, error) {
	folded, err := a.pass.Evaluator.Evaluate(e)
	if err != nil {
		return nil, NewEvalError(e.Loc(), err)
	}
	return folded, nil
}

// evalIntegral folds an expression to its integer bit pattern.
func (a *analysis) evalIntegral(e Expression) (uint64, error) {
	v, err := a.pass.Evaluator.EvalIntegral(e)
	if err != nil {
		return 0, NewEvalError(e.Loc(), err)
	}
	return v, nil
}

// evalBool folds an expression to a compile-time boolean.
func (a *analysis) evalBool(e Expression) (bool, error) {
	folded, err := a.evaluate(e)
	if err != nil {
		return false, err
	}
	if b, ok := folded.(*BoolLiteral); ok {
		return b.Value, nil
	}
	if i, ok := folded.(*IntegerLiteral); ok {
		return i.Value != 0, nil
	}
	return false, NewEvalError(e.Loc(), fmt.Errorf("condition is not a compile-time boolean"))
}
