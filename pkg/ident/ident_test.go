package ident

import "testing"

func TestInterningIsIdempotent(t *testing.T) {
	table := NewTable()

	a := table.Get("foo")
	b := table.Get("foo")
	if a != b {
		t.Error("interning the same bytes must yield the same name")
	}
	if table.Len() != 1 {
		t.Errorf("table holds %d names, want 1", table.Len())
	}
}

func TestDistinctNames(t *testing.T) {
	table := NewTable()

	a := table.Get("foo")
	b := table.Get("bar")
	if a == b {
		t.Error("distinct identifiers must intern differently")
	}
	if table.Len() != 2 {
		t.Errorf("table holds %d names, want 2", table.Len())
	}
}

func TestEmptyName(t *testing.T) {
	table := NewTable()

	n := table.Get("")
	if n != NoName || !n.IsEmpty() {
		t.Error("the empty string interns to NoName")
	}
	if table.Len() != 0 {
		t.Error("NoName must not occupy the table")
	}
}
