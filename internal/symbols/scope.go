package symbols

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeModule             // top-level declarations
	ScopeFunction           // function body
	ScopeBlock              // nested block, loop body or match arm
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is one level of the table: the names declared directly in it.
type Scope[S any] struct {
	Kind    ScopeKind
	entries map[string]S
	order   []string
}

func newScope[S any](kind ScopeKind) *Scope[S] {
	return &Scope[S]{Kind: kind, entries: make(map[string]S)}
}

// Names returns the declared names in declaration order.
func (s *Scope[S]) Names() []string {
	return s.order
}
