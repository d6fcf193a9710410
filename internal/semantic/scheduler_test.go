package semantic

import (
	"errors"
	"testing"

	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/ident"
)

// ============================================================================
// Scheduler Tests
// ============================================================================

func newTestSymbol(name string) *Variable {
	return &Variable{
		SymbolBase: SymbolBase{Name: ident.Name(name)},
		Type:       types.GetBuiltin(types.Int),
	}
}

func TestRequireAdvancesToStage(t *testing.T) {
	s := NewScheduler()
	sym := newTestSymbol("a")

	s.Schedule(sym, func(tk *task) error {
		s.Publish(sym, Populated)
		s.Publish(sym, Signed)
		s.Publish(sym, Processed)
		return nil
	})

	s.acquire()
	defer s.release()

	if err := s.Require(nil, sym, Signed); err != nil {
		t.Fatalf("Require(Signed): %v", err)
	}
	if sym.Step < Signed {
		t.Errorf("step = %v, want >= %v", sym.Step, Signed)
	}

	// A lower stage is already satisfied.
	if err := s.Require(nil, sym, Populated); err != nil {
		t.Fatalf("Require(Populated) after Signed: %v", err)
	}
}

func TestStepsNeverRegress(t *testing.T) {
	s := NewScheduler()
	sym := newTestSymbol("a")

	s.Schedule(sym, func(tk *task) error {
		s.Publish(sym, Processed)
		s.Publish(sym, Populated) // must be a no-op
		return nil
	})

	s.acquire()
	defer s.release()

	if err := s.Require(nil, sym, Processed); err != nil {
		t.Fatalf("Require: %v", err)
	}
	if sym.Step != Processed {
		t.Errorf("step regressed to %v", sym.Step)
	}
}

func TestIntermediateStagePublication(t *testing.T) {
	// b only needs a at Populated; a suspends before Processed waiting on
	// b, and both must converge.
	s := NewScheduler()
	a := newTestSymbol("a")
	b := newTestSymbol("b")

	s.Schedule(a, func(tk *task) error {
		s.Publish(a, Populated)
		s.Publish(a, Signed)
		// a needs b fully processed before finishing.
		if err := s.Require(tk, b, Processed); err != nil {
			return err
		}
		s.Publish(a, Processed)
		return nil
	})
	s.Schedule(b, func(tk *task) error {
		// b needs only a's early stage; a has published it even though a
		// is suspended on b.
		if err := s.Require(tk, a, Populated); err != nil {
			return err
		}
		s.Publish(b, Populated)
		s.Publish(b, Signed)
		s.Publish(b, Processed)
		return nil
	})

	s.acquire()
	defer s.release()

	if err := s.Require(nil, a, Processed); err != nil {
		t.Fatalf("mutual recursion through stages must converge: %v", err)
	}
	if a.Step != Processed || b.Step != Processed {
		t.Errorf("steps = %v, %v, want both processed", a.Step, b.Step)
	}
}

func TestTrueCycleFails(t *testing.T) {
	// Each symbol demands a stage the other has not published: a genuine
	// cycle.
	s := NewScheduler()
	a := newTestSymbol("a")
	b := newTestSymbol("b")

	s.Schedule(a, func(tk *task) error {
		if err := s.Require(tk, b, Signed); err != nil {
			return err
		}
		s.Publish(a, Processed)
		return nil
	})
	s.Schedule(b, func(tk *task) error {
		if err := s.Require(tk, a, Signed); err != nil {
			return err
		}
		s.Publish(b, Processed)
		return nil
	})

	s.acquire()
	defer s.release()

	err := s.Require(nil, a, Processed)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	var semErr *SemanticError
	if !errors.As(err, &semErr) || semErr.Kind != ErrCycle {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestTerminateDrivesEverything(t *testing.T) {
	s := NewScheduler()
	syms := []*Variable{newTestSymbol("a"), newTestSymbol("b"), newTestSymbol("c")}

	for _, sym := range syms {
		sym := sym
		s.Schedule(sym, func(tk *task) error {
			s.Publish(sym, Processed)
			return nil
		})
	}

	s.acquire()
	err := s.Terminate()
	s.release()
	if err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	for _, sym := range syms {
		if sym.Step != Processed {
			t.Errorf("symbol '%s' stopped at %v", sym.Name, sym.Step)
		}
	}
}

func TestTaskErrorPropagates(t *testing.T) {
	s := NewScheduler()
	a := newTestSymbol("a")
	b := newTestSymbol("b")

	boom := NewUnsupported(a.Location, "boom")
	s.Schedule(a, func(tk *task) error {
		return boom
	})
	s.Schedule(b, func(tk *task) error {
		if err := s.Require(tk, a, Processed); err != nil {
			return err
		}
		s.Publish(b, Processed)
		return nil
	})

	s.acquire()
	defer s.release()

	if err := s.Require(nil, b, Processed); err != boom {
		t.Fatalf("expected the producer's error, got %v", err)
	}
}
