package symbols

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when a name is declared twice in one scope.
	ErrDuplicate = errors.New("duplicate declaration")
	// ErrNotFound is returned when no scope binds a name.
	ErrNotFound = errors.New("symbol not found")
	// ErrNoScope is returned when the table has no open scope.
	ErrNoScope = errors.New("no open scope")
)

// Table is a stack of scopes. Lookup walks from the innermost scope outwards;
// shadowing across scopes is allowed, redeclaration inside one scope is not.
type Table[S any] struct {
	scopes []*Scope[S]
}

// NewTable returns a table with a single module scope open.
func NewTable[S any]() *Table[S] {
	t := &Table[S]{}
	t.Enter(ScopeModule)
	return t
}

// Enter opens a new innermost scope.
func (t *Table[S]) Enter(kind ScopeKind) {
	t.scopes = append(t.scopes, newScope[S](kind))
}

// Exit discards exactly the innermost scope and its bindings.
func (t *Table[S]) Exit() error {
	if len(t.scopes) == 0 {
		return ErrNoScope
	}
	t.scopes[len(t.scopes)-1] = nil
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

// Depth reports how many scopes are open.
func (t *Table[S]) Depth() int {
	return len(t.scopes)
}

// Current returns the innermost scope, or nil.
func (t *Table[S]) Current() *Scope[S] {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}

// Insert binds name in the innermost scope.
func (t *Table[S]) Insert(name string, sym S) error {
	cur := t.Current()
	if cur == nil {
		return ErrNoScope
	}
	if _, ok := cur.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	cur.entries[name] = sym
	cur.order = append(cur.order, name)
	return nil
}

// Replace rebinds name in the innermost scope, inserting it if absent.
func (t *Table[S]) Replace(name string, sym S) error {
	cur := t.Current()
	if cur == nil {
		return ErrNoScope
	}
	if _, ok := cur.entries[name]; !ok {
		cur.order = append(cur.order, name)
	}
	cur.entries[name] = sym
	return nil
}

// Lookup returns the innermost binding of name.
func (t *Table[S]) Lookup(name string) (S, error) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].entries[name]; ok {
			return sym, nil
		}
	}
	var zero S
	return zero, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Find is Lookup without the error.
func (t *Table[S]) Find(name string) (S, bool) {
	sym, err := t.Lookup(name)
	return sym, err == nil
}

// ExistsInCurrentScope reports whether the innermost scope binds name.
func (t *Table[S]) ExistsInCurrentScope(name string) bool {
	cur := t.Current()
	if cur == nil {
		return false
	}
	_, ok := cur.entries[name]
	return ok
}

// LookupCurrent returns the binding of name in the innermost scope only.
func (t *Table[S]) LookupCurrent(name string) (S, bool) {
	var zero S
	cur := t.Current()
	if cur == nil {
		return zero, false
	}
	sym, ok := cur.entries[name]
	return sym, ok
}
