package layout

import (
	"zenc/internal/backend/ir"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
	FieldAligns  []int
}

// LayoutEngine computes memory layout for backend types.
type LayoutEngine struct {
	Target Target

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []string
	index map[string]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[string]int, 16),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t ir.Type) (TypeLayout, error) {
	if e == nil || t == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *LayoutEngine) layoutOf(t ir.Type, state *layoutState) (TypeLayout, *LayoutError) {
	key := t.String()
	if cached, ok := e.cache.get(key); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[key]; ok {
		cycle := append([]string(nil), state.stack[idx:]...)
		cycle = append(cycle, key)
		err := &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: key, Cycle: cycle}
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[key] = len(state.stack)
	state.stack = append(state.stack, key)
	l, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, key)

	// opaque structs may still get a body, so only their successes stick
	if err == nil || err.Kind != LayoutErrOpaque {
		e.cache.put(key, &cacheEntry{Layout: l, Err: err})
	}
	return l, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t ir.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t ir.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field.
func (e *LayoutEngine) FieldOffset(st ir.Type, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(st)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// Forget drops the cached layout of a named struct, e.g. after its body was
// filled in during two-phase registration.
func (e *LayoutEngine) Forget(t ir.Type) {
	if e == nil || t == nil {
		return
	}
	e.cache.invalidate(t.String())
}
