package semantic

import (
	"sync"
)

// Scheduler drives symbols through the stage lattice. Every scheduled
// symbol owns a cooperative task; Require transfers control between tasks
// until the requested stage is published.
//
// Execution is single-threaded in the cooperative sense: each task runs on
// its own goroutine, but a run token guarantees that exactly one task
// executes between suspension points. Tasks suspend only inside Require,
// and stage publication is the sole synchronization event between them.
type Scheduler struct {
	mu      sync.Mutex // guards the task graph and symbol steps
	run     sync.Mutex // the cooperative execution token
	current *task      // task holding the run token, nil for the driver
	tasks   map[Symbol]*task
	order   []*task // scheduling order, drives Terminate deterministically
}

// task is the execution context of one scheduled symbol.
type task struct {
	sym      Symbol
	fn       func(*task) error
	started  bool
	finished bool
	err      error
	blocked  *waitEdge
	waiters  []waiter
	done     chan struct{}
}

// waitEdge records what a suspended task is waiting for.
type waitEdge struct {
	on    *task
	stage Step
}

type waiter struct {
	stage Step
	ch    chan struct{}
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[Symbol]*task),
	}
}

// Schedule registers the analysis task for a symbol. The task runs lazily:
// it is started the first time somebody requires a stage the symbol has
// not reached, or during Terminate.
func (s *Scheduler) Schedule(sym Symbol, fn func(*task) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &task{
		sym:  sym,
		fn:   fn,
		done: make(chan struct{}),
	}
	s.tasks[sym] = t
	s.order = append(s.order, t)
}

// acquire takes the run token on behalf of the driver. Every external
// entry point into analysis must hold the token for its duration.
func (s *Scheduler) acquire() {
	s.run.Lock()
	s.current = nil
}

// release returns the driver's run token.
func (s *Scheduler) release() {
	s.run.Unlock()
}

// Require returns once sym.Step >= stage, transferring control into the
// symbol's task as needed. from is the requesting task, nil for the driver.
// A CycleError is returned when the wait would close a loop in which each
// participant needs a stage the other has not published.
func (s *Scheduler) Require(from *task, sym Symbol, stage Step) error {
	for {
		s.mu.Lock()
		if sym.Common().Step >= stage {
			s.mu.Unlock()
			return nil
		}

		t := s.tasks[sym]
		if t == nil {
			loc := sym.Common().Location
			s.mu.Unlock()
			return newInternal(loc, "symbol '%s' required at %s but never scheduled",
				sym.Common().Name, stage)
		}
		if t.finished {
			err := t.err
			s.mu.Unlock()
			if err != nil {
				return err
			}
			return newInternal(sym.Common().Location,
				"task for '%s' finished below %s", sym.Common().Name, stage)
		}

		if from != nil && s.wouldCycle(t, from) {
			chain := s.cycleChain(t, from, stage)
			s.mu.Unlock()
			return NewCycleError(sym.Common().Location, chain)
		}

		ch := make(chan struct{})
		t.waiters = append(t.waiters, waiter{stage: stage, ch: ch})
		if from != nil {
			from.blocked = &waitEdge{on: t, stage: stage}
		}
		start := !t.started
		t.started = true
		s.mu.Unlock()

		if start {
			go s.exec(t)
		}

		// Yield the run token while suspended; the producer resumes us by
		// publishing the stage (or by failing).
		s.current = nil
		s.run.Unlock()
		<-ch
		s.run.Lock()
		s.current = from

		s.mu.Lock()
		if from != nil {
			from.blocked = nil
		}
		s.mu.Unlock()
	}
}

// Publish advances a symbol to stage and wakes every waiter the new step
// satisfies. Steps never regress; publishing an already-reached stage is a
// no-op.
func (s *Scheduler) Publish(sym Symbol, stage Step) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := sym.Common()
	if stage <= base.Step {
		return
	}
	base.Step = stage

	t := s.tasks[sym]
	if t == nil {
		return
	}
	s.wake(t, stage)
}

// wake releases waiters satisfied by the published stage. Caller holds mu.
func (s *Scheduler) wake(t *task, stage Step) {
	kept := t.waiters[:0]
	for _, w := range t.waiters {
		if w.stage <= stage {
			close(w.ch)
		} else {
			kept = append(kept, w)
		}
	}
	t.waiters = kept
}

// exec runs a task to completion on its own goroutine, holding the run
// token except while the task is suspended inside Require.
func (s *Scheduler) exec(t *task) {
	s.run.Lock()
	s.current = t
	err := t.fn(t)

	s.mu.Lock()
	t.finished = true
	if err != nil {
		t.err = err
	} else if t.sym.Common().Step < Processed {
		t.sym.Common().Step = Processed
	}
	// Wake everything still parked on this task. Waiters re-check the step
	// and surface t.err if the task failed.
	for _, w := range t.waiters {
		close(w.ch)
	}
	t.waiters = nil
	s.mu.Unlock()

	s.current = nil
	s.run.Unlock()
	close(t.done)
}

// wouldCycle reports whether making from wait on t closes a wait loop.
// Edges whose requested stage has been published since the waiter parked
// are about to resume and do not count. Caller holds mu.
func (s *Scheduler) wouldCycle(t, from *task) bool {
	for cur := t; cur != nil; {
		if cur == from {
			return true
		}
		e := cur.blocked
		if e == nil || e.on.sym.Common().Step >= e.stage {
			return false
		}
		cur = e.on
	}
	return false
}

// cycleChain renders the wait loop for the error message. Caller holds mu.
func (s *Scheduler) cycleChain(t, from *task, stage Step) []string {
	chain := []string{describeWait(from.sym, t.sym, stage)}
	for cur := t; cur != from && cur.blocked != nil; cur = cur.blocked.on {
		chain = append(chain, describeWait(cur.sym, cur.blocked.on.sym, cur.blocked.stage))
	}
	return chain
}

func describeWait(from, on Symbol, stage Step) string {
	return "'" + from.Common().Name.String() + "' needs '" +
		on.Common().Name.String() + "' " + stage.String()
}

// Terminate drives every scheduled symbol to Processed. Tasks scheduled
// while terminating (template instances, imports) are picked up as well.
// The first fatal error aborts the pass.
func (s *Scheduler) Terminate() error {
	for {
		s.mu.Lock()
		var next *task
		for _, t := range s.order {
			if t.sym.Common().Step < Processed && !(t.finished && t.err == nil) {
				next = t
				break
			}
		}
		s.mu.Unlock()

		if next == nil {
			return nil
		}
		if err := s.Require(nil, next.sym, Processed); err != nil {
			return err
		}
	}
}
