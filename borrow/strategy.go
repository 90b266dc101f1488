package borrow

import (
	"depyler/hir"
	"depyler/types"
)

// decide applies the strategy rules to one parameter, first match wins.  The
// precedence is: moved-or-mutated wins over escapes wins over borrowable read.
func (ctx *Context) decide(param *hir.Param) *hir.Strategy {
	usage := ctx.patterns[param.Name]

	isStr := types.Equals(param.Type, types.PyPrim(types.PyStr))
	isCopy := ctx.isCopy(param.Type)

	// 1. A rebound or moved non-Copy parameter must be owned.  Interior
	// mutation falls through to the mutable-borrow rule below.
	if (usage.Reassigned || usage.Moved) && !isCopy {
		return &hir.Strategy{Kind: hir.TakeOwnership}
	}

	// 2. Copy types are cheaper to pass by value than to borrow.
	if isCopy {
		return &hir.Strategy{Kind: hir.TakeOwnership}
	}

	// 3. A parameter that escapes through the return with the declared return
	// type moves straight out; strings are handled by the Cow rule below.
	if usage.EscapesReturn && !isStr && types.Equals(param.Type, ctx.fn.Returns) {
		return &hir.Strategy{Kind: hir.TakeOwnership}
	}

	// 4. A parameter stored into a container needs shared ownership.
	if usage.Stored {
		return &hir.Strategy{Kind: hir.UseSharedOwnership, ThreadSafe: false}
	}

	// 5. Closure capture takes ownership (conservative).
	if usage.Captured {
		return &hir.Strategy{Kind: hir.TakeOwnership}
	}

	// 6. String-specific rules.
	if isStr {
		switch {
		case usage.Moved || usage.Mutated:
			return &hir.Strategy{Kind: hir.TakeOwnership}
		case usage.EscapesReturn:
			return &hir.Strategy{Kind: hir.UseCow, Lifetime: "'static"}
		case usage.Read:
			return &hir.Strategy{Kind: hir.BorrowImmutable}
		}
	}

	// 7. General fallback on the read/write evidence.
	switch {
	case usage.Mutated:
		return &hir.Strategy{Kind: hir.BorrowMutable}
	case usage.Read:
		return &hir.Strategy{Kind: hir.BorrowImmutable}
	default:
		return &hir.Strategy{Kind: hir.TakeOwnership}
	}
}

// isCopy reports whether the parameter's Rust mapping implements Copy.  A
// type that cannot be mapped is treated as non-Copy.
func (ctx *Context) isCopy(t types.PyType) bool {
	rust, err := ctx.mapper.Map(t)
	if err != nil {
		return false
	}

	return rust.IsCopy()
}
