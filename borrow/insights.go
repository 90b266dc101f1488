package borrow

import (
	"fmt"

	"depyler/hir"
	"depyler/types"
)

// InsightKind enumerates the advisory records borrowing analysis can emit.
type InsightKind int

const (
	InsightUnnecessaryMove InsightKind = iota
	InsightSuggestCopy
	InsightLifetimeTighten
	InsightBorrowConflict
)

// Insight is an advisory record.  The emitter may surface insights as
// comments but never acts on them.
type Insight struct {
	Kind    InsightKind
	Param   string
	Message string
}

// noteInsights runs the advisory phase over the decided strategies.
func (ctx *Context) noteInsights() {
	for _, param := range ctx.fn.Params {
		usage := ctx.patterns[param.Name]

		// A parameter owned only because an unknown callee was conservatively
		// classified as consuming may be an unnecessary move.
		if param.Strategy.Kind == hir.TakeOwnership && usage.Moved && !usage.Mutated && onlyUnknownCallMoves(usage) {
			ctx.insights = append(ctx.insights, Insight{
				Kind:    InsightUnnecessaryMove,
				Param:   param.Name,
				Message: fmt.Sprintf("`%s` is moved only into calls with unknown signatures; a borrow may suffice", param.Name),
			})
		}

		// A custom type passed read-only might profit from a Copy derive.
		if _, custom := param.Type.(*types.PyCustom); custom && usage.Read && !usage.Mutated && !usage.Moved {
			ctx.insights = append(ctx.insights, Insight{
				Kind:    InsightSuggestCopy,
				Param:   param.Name,
				Message: fmt.Sprintf("deriving Copy for the type of `%s` would simplify its passing", param.Name),
			})
		}

		// A 'static Cow that never leaves a loop body could use a tighter
		// signature lifetime.
		if param.Strategy.Kind == hir.UseCow && !usage.UsedInLoop {
			ctx.insights = append(ctx.insights, Insight{
				Kind:    InsightLifetimeTighten,
				Param:   param.Name,
				Message: fmt.Sprintf("the 'static bound on `%s` could be tightened to a signature lifetime", param.Name),
			})
		}

		// Reading after a move, or mutating a captured parameter, would
		// conflict under the borrow checker; ownership sidesteps it but the
		// user should know.
		if readAfterMove(usage) || (usage.Captured && usage.Mutated) {
			ctx.insights = append(ctx.insights, Insight{
				Kind:    InsightBorrowConflict,
				Param:   param.Name,
				Message: fmt.Sprintf("usage of `%s` mixes moves with later reads; falling back to ownership", param.Name),
			})
		}
	}
}

// onlyUnknownCallMoves reports whether every moving site is a function
// argument position.
func onlyUnknownCallMoves(usage *hir.UsagePattern) bool {
	sawArgMove := false

	for _, site := range usage.Sites {
		switch site.Kind {
		case hir.UseFunctionArg:
			if site.TakesOwnership {
				sawArgMove = true
			}
		case hir.UseMethodCall:
			if ConsumingMethods[site.Method] {
				return false
			}
		}
	}

	return sawArgMove
}

// readAfterMove reports whether any read site follows a moving site in source
// order.
func readAfterMove(usage *hir.UsagePattern) bool {
	moved := false

	for _, site := range usage.Sites {
		switch site.Kind {
		case hir.UseFunctionArg:
			if site.TakesOwnership {
				moved = true
			}
		case hir.UseMethodCall:
			if ConsumingMethods[site.Method] {
				moved = true
			}
		case hir.UseRead, hir.UseFieldAccess, hir.UseIndexAccess, hir.UseReturn:
			if moved {
				return true
			}
		}
	}

	return false
}
