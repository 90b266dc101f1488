package borrow

import (
	"depyler/hir"
	"depyler/types"
)

// Context performs the per-function usage analysis that decides how every
// parameter is passed.  A single pass per function: usage collection, strategy
// decision, then advisory insights.  The pass is strictly single-threaded and
// deterministic in source order; running it twice on the same HIR yields the
// same strategy for every parameter.  It never fails: an undecidable pattern
// falls back to ownership, the safest emit choice.
type Context struct {
	fn *hir.Func

	mapper *types.Mapper

	// patterns maps each parameter name to its usage pattern.  Loop and
	// comprehension targets are local bindings: they never enter this map.
	patterns map[string]*hir.UsagePattern

	// locals is the set of names shadowing parameters in the current walk.
	locals []map[string]bool

	// The lexical context counters maintained during the walk.
	loopDepth    int
	condDepth    int
	borrowDepth  int
	closureDepth int

	insights []Insight
}

// Result carries everything borrowing analysis produced for one function.
// Strategies are also attached to the parameters by identity so the emitter
// never re-matches.
type Result struct {
	// Patterns maps parameter names to their collected usage patterns.
	Patterns map[string]*hir.UsagePattern

	// Insights is the advisory record list.  The emitter may surface these as
	// comments but never acts on them.
	Insights []Insight
}

// AnalyzeFunc runs borrowing analysis on one function, attaching a strategy to
// every parameter.
func AnalyzeFunc(fn *hir.Func, mapper *types.Mapper) *Result {
	ctx := &Context{
		fn:       fn,
		mapper:   mapper,
		patterns: make(map[string]*hir.UsagePattern),
	}

	for _, param := range fn.Params {
		ctx.patterns[param.Name] = hir.NewUsagePattern()
	}

	ctx.collectBlock(fn.Body)

	for _, param := range fn.Params {
		param.Strategy = ctx.decide(param)
	}

	ctx.noteInsights()

	return &Result{Patterns: ctx.patterns, Insights: ctx.insights}
}

// -----------------------------------------------------------------------------

// pattern returns the usage pattern for a parameter name, or nil if the name
// is not a parameter or is currently shadowed by a local binding.
func (ctx *Context) pattern(name string) *hir.UsagePattern {
	for i := len(ctx.locals) - 1; i >= 0; i-- {
		if ctx.locals[i][name] {
			return nil
		}
	}

	return ctx.patterns[name]
}

// site constructs a usage site reflecting the current walk context.
func (ctx *Context) site(kind hir.UsageKind) hir.UsageSite {
	return hir.UsageSite{
		Kind:          kind,
		InLoop:        ctx.loopDepth > 0,
		InConditional: ctx.condDepth > 0,
		BorrowDepth:   ctx.borrowDepth,
	}
}

// record appends a usage site for a parameter and updates the pattern's
// summary flags.
func (ctx *Context) record(name string, site hir.UsageSite) {
	usage := ctx.pattern(name)
	if usage == nil {
		return
	}

	if ctx.loopDepth > 0 {
		usage.UsedInLoop = true
	}

	switch site.Kind {
	case hir.UseRead, hir.UseIndexAccess:
		usage.Read = true
	case hir.UseWrite:
		usage.Mutated = true
		if site.BorrowDepth == 0 {
			usage.Reassigned = true
		}
	case hir.UseMethodCall:
		usage.MethodCalls[site.Method] = true
		switch {
		case ConsumingMethods[site.Method]:
			usage.Moved = true
		case BorrowingMethods[site.Method]:
			usage.Read = true
		default:
			// A method in neither table is conservatively consuming.
			usage.Moved = true
		}
	case hir.UseFunctionArg:
		if site.TakesOwnership {
			usage.Moved = true
		} else {
			usage.Read = true
		}
	case hir.UseReturn:
		usage.EscapesReturn = true
		usage.Read = true
	case hir.UseStore:
		usage.Stored = true
	case hir.UseClosure:
		usage.Captured = true
	case hir.UseFieldAccess:
		usage.FieldAccesses[site.Method] = true
		usage.Read = true
	}

	usage.Sites = append(usage.Sites, site)
}

// pushLocals opens a shadowing scope for loop/comprehension targets.
func (ctx *Context) pushLocals() {
	ctx.locals = append(ctx.locals, make(map[string]bool))
}

// popLocals closes the innermost shadowing scope.
func (ctx *Context) popLocals() {
	ctx.locals = ctx.locals[:len(ctx.locals)-1]
}

// defineLocal records a local binding that shadows any same-named parameter.
func (ctx *Context) defineLocal(target hir.AssignTarget) {
	switch v := target.(type) {
	case *hir.SymbolTarget:
		if len(ctx.locals) > 0 {
			ctx.locals[len(ctx.locals)-1][v.Name] = true
		}
	case *hir.TupleTarget:
		for _, elt := range v.Elts {
			ctx.defineLocal(elt)
		}
	}
}
