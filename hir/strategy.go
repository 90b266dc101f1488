package hir

// StrategyKind enumerates the ways a parameter can appear in the emitted
// signature.
type StrategyKind int

const (
	TakeOwnership StrategyKind = iota
	BorrowImmutable
	BorrowMutable
	UseCow
	UseSharedOwnership
)

// Strategy is the per-parameter ownership decision produced by borrowing
// analysis and consumed by signature synthesis.
type Strategy struct {
	Kind StrategyKind

	// Lifetime is the named lifetime for borrow and Cow strategies, or "" when
	// elision suffices.  For UseCow it is either "'static" or a lifetime bound
	// to the signature.
	Lifetime string

	// ThreadSafe selects Arc over Rc for shared ownership.
	ThreadSafe bool
}

func (s *Strategy) String() string {
	switch s.Kind {
	case TakeOwnership:
		return "owned"
	case BorrowImmutable:
		return "&" + s.Lifetime
	case BorrowMutable:
		return "&" + s.Lifetime + " mut"
	case UseCow:
		return "Cow<" + s.Lifetime + ", _>"
	default:
		if s.ThreadSafe {
			return "Arc"
		}
		return "Rc"
	}
}

// -----------------------------------------------------------------------------

// UsageKind enumerates what happens to a parameter at one usage site.
type UsageKind int

const (
	UseRead UsageKind = iota
	UseWrite
	UseMethodCall
	UseFunctionArg
	UseReturn
	UseStore
	UseClosure
	UseFieldAccess
	UseIndexAccess
)

// UsageSite records one occurrence of a parameter in the function body.
type UsageSite struct {
	Kind UsageKind

	// Method is the method or field name for method-call and field-access
	// sites; "" otherwise.
	Method string

	// TakesOwnership is set on function-argument sites whose callee consumes
	// the value.
	TakesOwnership bool

	// InLoop and InConditional record the control context the site sits under.
	InLoop        bool
	InConditional bool

	// BorrowDepth is the lexical depth of attribute/index/borrow nesting at
	// the site.
	BorrowDepth int
}

// UsagePattern is the full usage record attached to one parameter.
type UsagePattern struct {
	Read    bool
	Mutated bool
	Moved   bool

	// Reassigned is set when the parameter name itself is rebound, as opposed
	// to mutation through an index or attribute.  Rebinding demands ownership;
	// interior mutation only demands a mutable borrow.
	Reassigned bool

	// EscapesReturn is set when the parameter flows out through a return.
	EscapesReturn bool

	// Stored is set when the parameter is stored into a container or field.
	Stored bool

	// Captured is set when a closure captures the parameter.
	Captured bool

	// UsedInLoop is set when any site sits under a loop.
	UsedInLoop bool

	// FieldAccesses and MethodCalls collect the accessed field and called
	// method names.
	FieldAccesses map[string]bool
	MethodCalls   map[string]bool

	// Sites is the ordered list of usage sites.
	Sites []UsageSite
}

// NewUsagePattern creates an empty usage pattern.
func NewUsagePattern() *UsagePattern {
	return &UsagePattern{
		FieldAccesses: make(map[string]bool),
		MethodCalls:   make(map[string]bool),
	}
}
