package symbols

import (
	"errors"
	"testing"
)

func TestTableShadowingAcrossScopes(t *testing.T) {
	table := NewTable[int]()
	if err := table.Insert("x", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	table.Enter(ScopeBlock)
	if err := table.Insert("x", 2); err != nil {
		t.Fatalf("shadowing in a nested scope must be allowed: %v", err)
	}
	if got, _ := table.Lookup("x"); got != 2 {
		t.Fatalf("Lookup(x) = %d, want innermost 2", got)
	}
	if err := table.Exit(); err != nil {
		t.Fatal(err)
	}
	if got, _ := table.Lookup("x"); got != 1 {
		t.Fatalf("after Exit Lookup(x) = %d, want 1", got)
	}
}

func TestTableDuplicateInScope(t *testing.T) {
	table := NewTable[string]()
	table.Enter(ScopeFunction)
	if err := table.Insert("a", "first"); err != nil {
		t.Fatal(err)
	}
	err := table.Insert("a", "second")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if got, _ := table.Lookup("a"); got != "first" {
		t.Fatalf("failed insert must not overwrite, got %q", got)
	}
	if err := table.Replace("a", "third"); err != nil {
		t.Fatal(err)
	}
	if got, _ := table.Lookup("a"); got != "third" {
		t.Fatalf("Replace did not rebind, got %q", got)
	}
}

func TestTableExitUnwindsOneScope(t *testing.T) {
	table := NewTable[int]()
	table.Enter(ScopeFunction)
	table.Enter(ScopeBlock)
	if err := table.Insert("inner", 1); err != nil {
		t.Fatal(err)
	}
	if table.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", table.Depth())
	}
	_ = table.Exit()
	if _, err := table.Lookup("inner"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after exit, got %v", err)
	}
	if table.Current().Kind != ScopeFunction {
		t.Fatalf("current scope = %s, want function", table.Current().Kind)
	}
	_ = table.Exit()
	_ = table.Exit()
	if err := table.Exit(); !errors.Is(err, ErrNoScope) {
		t.Fatalf("expected ErrNoScope, got %v", err)
	}
	if err := table.Insert("x", 1); !errors.Is(err, ErrNoScope) {
		t.Fatalf("insert without scope: %v", err)
	}
}

func TestTableExistsInCurrentScope(t *testing.T) {
	table := NewTable[int]()
	_ = table.Insert("outer", 1)
	table.Enter(ScopeBlock)
	if table.ExistsInCurrentScope("outer") {
		t.Error("outer is not in the current scope")
	}
	if _, ok := table.Find("outer"); !ok {
		t.Error("outer must still be visible")
	}
	_ = table.Insert("b", 2)
	_ = table.Insert("a", 3)
	names := table.Current().Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() = %v, want declaration order", names)
	}
	if _, ok := table.LookupCurrent("b"); !ok {
		t.Error("LookupCurrent(b) failed")
	}
}
