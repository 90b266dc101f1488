package borrow

import (
	"testing"

	"depyler/hir"
	"depyler/types"
)

func param(name string, typ types.PyType) *hir.Param {
	return &hir.Param{Name: name, Type: typ}
}

func fn(ret types.PyType, params []*hir.Param, body ...hir.Stmt) *hir.Func {
	if ret == nil {
		ret = types.PyPrim(types.PyNone)
	}

	return &hir.Func{Name: "f", Params: params, Returns: ret, Body: body}
}

func ref(name string) *hir.Var {
	return &hir.Var{Name: name, IsParam: true}
}

func intLit(v string) *hir.Literal {
	return &hir.Literal{Kind: hir.LitInt, Value: v}
}

func analyze(t *testing.T, f *hir.Func) *Result {
	t.Helper()

	result := AnalyzeFunc(f, types.NewMapper(false))
	for _, p := range f.Params {
		if p.Strategy == nil {
			t.Fatalf("no strategy attached to `%s`", p.Name)
		}
	}

	return result
}

// -----------------------------------------------------------------------------

func TestCopyTypesTakeOwnership(t *testing.T) {
	// Read-only Copy parameters still pass by value.
	f := fn(
		types.PyPrim(types.PyInt),
		[]*hir.Param{param("a", types.PyPrim(types.PyInt)), param("b", types.PyPrim(types.PyFloat))},
		&hir.Return{Value: ref("a")},
		&hir.Return{Value: ref("b")},
	)

	analyze(t, f)

	for _, p := range f.Params {
		if p.Strategy.Kind != hir.TakeOwnership {
			t.Errorf("`%s`: expected ownership for a Copy type, got %s", p.Name, p.Strategy)
		}
	}
}

func TestReassignedStringTakesOwnership(t *testing.T) {
	// s = s.strip() rebinds the name: the parameter must be owned.
	f := fn(nil,
		[]*hir.Param{param("s", types.PyPrim(types.PyStr))},
		&hir.Assign{
			Target: &hir.SymbolTarget{Name: "s"},
			Value:  &hir.MethodCall{Object: ref("s"), Method: "strip"},
		},
	)

	analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected ownership for a reassigned string, got %s", f.Params[0].Strategy)
	}
}

func TestInteriorMutationBorrowsMutably(t *testing.T) {
	// xs[0] = 1 mutates through the parameter without rebinding it.
	f := fn(nil,
		[]*hir.Param{param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)})},
		&hir.Assign{
			Target: &hir.IndexTarget{Base: ref("xs"), Index: intLit("0")},
			Value:  intLit("1"),
		},
	)

	result := analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.BorrowMutable {
		t.Errorf("expected a mutable borrow for interior mutation, got %s", f.Params[0].Strategy)
	}

	usage := result.Patterns["xs"]
	if !usage.Mutated || usage.Reassigned {
		t.Errorf("interior mutation should set Mutated without Reassigned; got %+v", usage)
	}
}

func TestConsumingMethodMovesReceiver(t *testing.T) {
	f := fn(nil,
		[]*hir.Param{param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)})},
		&hir.ExprStmt{Value: &hir.MethodCall{Object: ref("xs"), Method: "append", Args: []hir.Expr{intLit("1")}}},
	)

	analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected ownership for an appended-to list, got %s", f.Params[0].Strategy)
	}
}

func TestUnclassifiedMethodConservativelyMoves(t *testing.T) {
	// A method in neither classification table must be assumed consuming.
	f := fn(nil,
		[]*hir.Param{param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)})},
		&hir.ExprStmt{Value: &hir.MethodCall{Object: ref("xs"), Method: "transmogrify"}},
	)

	result := analyze(t, f)

	if !result.Patterns["xs"].Moved {
		t.Error("an unclassified method should move its receiver")
	}

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected ownership for an unclassified method receiver, got %s", f.Params[0].Strategy)
	}
}

func TestBorrowingMethodOnlyReads(t *testing.T) {
	f := fn(nil,
		[]*hir.Param{param("s", types.PyPrim(types.PyStr))},
		&hir.ExprStmt{Value: &hir.MethodCall{Object: ref("s"), Method: "upper"}},
	)

	result := analyze(t, f)

	usage := result.Patterns["s"]
	if usage.Moved || !usage.Read {
		t.Errorf("a read-only method should record a read, not a move; got %+v", usage)
	}

	if f.Params[0].Strategy.Kind != hir.BorrowImmutable {
		t.Errorf("expected an immutable borrow, got %s", f.Params[0].Strategy)
	}
}

func TestStoredParamUsesSharedOwnership(t *testing.T) {
	// out.append(xs) stores xs into another container.
	f := fn(nil,
		[]*hir.Param{
			param("out", &types.PyList{Elem: types.PyUnknown{}}),
			param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)}),
		},
		&hir.ExprStmt{Value: &hir.MethodCall{Object: ref("out"), Method: "append", Args: []hir.Expr{ref("xs")}}},
	)

	analyze(t, f)

	strat := f.Params[1].Strategy
	if strat.Kind != hir.UseSharedOwnership {
		t.Fatalf("expected shared ownership for a stored parameter, got %s", strat)
	}

	if strat.ThreadSafe {
		t.Error("single-threaded sharing should pick Rc, not Arc")
	}
}

func TestCapturedParamTakesOwnership(t *testing.T) {
	f := fn(nil,
		[]*hir.Param{param("base", &types.PyList{Elem: types.PyPrim(types.PyInt)})},
		&hir.ExprStmt{Value: &hir.Lambda{
			Params:   []string{"x"},
			Body:     ref("x"),
			Captures: []string{"base"},
		}},
	)

	analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected ownership for a captured parameter, got %s", f.Params[0].Strategy)
	}
}

func TestReadOnlyStringBorrowsImmutably(t *testing.T) {
	f := fn(nil,
		[]*hir.Param{param("s", types.PyPrim(types.PyStr))},
		&hir.ExprStmt{Value: &hir.Call{Func: "print", Args: []hir.Expr{ref("s")}}},
	)

	analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.BorrowImmutable {
		t.Errorf("expected an immutable borrow for a read-only string, got %s", f.Params[0].Strategy)
	}
}

func TestEscapingStringUsesCow(t *testing.T) {
	f := fn(
		types.PyPrim(types.PyStr),
		[]*hir.Param{param("s", types.PyPrim(types.PyStr))},
		&hir.Return{Value: ref("s")},
	)

	analyze(t, f)

	strat := f.Params[0].Strategy
	if strat.Kind != hir.UseCow {
		t.Fatalf("expected Cow for a string escaping through the return, got %s", strat)
	}

	if strat.Lifetime != "'static" {
		t.Errorf("expected a 'static Cow bound, got %q", strat.Lifetime)
	}
}

func TestEscapingContainerMovesOut(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	f := fn(listTy,
		[]*hir.Param{param("xs", listTy)},
		&hir.Return{Value: ref("xs")},
	)

	analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected ownership for a returned container, got %s", f.Params[0].Strategy)
	}
}

func TestUnusedParamTakesOwnership(t *testing.T) {
	f := fn(nil, []*hir.Param{param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)})})

	analyze(t, f)

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected ownership for an unused parameter, got %s", f.Params[0].Strategy)
	}
}

func TestLoopTargetShadowsParam(t *testing.T) {
	// `for s in ...: print(s)` reads the loop binding, never the parameter.
	f := fn(nil,
		[]*hir.Param{
			param("s", types.PyPrim(types.PyStr)),
			param("items", &types.PyList{Elem: types.PyPrim(types.PyStr)}),
		},
		&hir.For{
			Target: &hir.SymbolTarget{Name: "s"},
			Iter:   ref("items"),
			Body: []hir.Stmt{
				&hir.ExprStmt{Value: &hir.Call{Func: "print", Args: []hir.Expr{ref("s")}}},
			},
		},
	)

	result := analyze(t, f)

	if usage := result.Patterns["s"]; usage.Read {
		t.Error("the shadowed parameter should have no recorded reads")
	}

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("expected the unused-default strategy, got %s", f.Params[0].Strategy)
	}
}

func TestDeterminism(t *testing.T) {
	build := func() *hir.Func {
		return fn(nil,
			[]*hir.Param{
				param("s", types.PyPrim(types.PyStr)),
				param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)}),
			},
			&hir.ExprStmt{Value: &hir.Call{Func: "print", Args: []hir.Expr{ref("s")}}},
			&hir.Assign{
				Target: &hir.IndexTarget{Base: ref("xs"), Index: intLit("0")},
				Value:  intLit("1"),
			},
		)
	}

	first := build()
	second := build()
	analyze(t, first)
	analyze(t, second)

	for i := range first.Params {
		a, b := first.Params[i].Strategy, second.Params[i].Strategy
		if a.Kind != b.Kind || a.Lifetime != b.Lifetime || a.ThreadSafe != b.ThreadSafe {
			t.Errorf("`%s`: strategies differ between runs: %s vs %s", first.Params[i].Name, a, b)
		}
	}
}

// -----------------------------------------------------------------------------

func TestUnnecessaryMoveInsight(t *testing.T) {
	// An unknown callee conservatively consumes its argument.
	f := fn(nil,
		[]*hir.Param{param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)})},
		&hir.ExprStmt{Value: &hir.Call{Func: "mystery", Args: []hir.Expr{ref("xs")}}},
	)

	result := analyze(t, f)

	found := false
	for _, insight := range result.Insights {
		if insight.Kind == InsightUnnecessaryMove && insight.Param == "xs" {
			found = true
		}
	}

	if !found {
		t.Error("expected an unnecessary-move insight for an unknown-callee argument")
	}
}

func TestReadAfterMoveInsight(t *testing.T) {
	f := fn(nil,
		[]*hir.Param{param("xs", &types.PyList{Elem: types.PyPrim(types.PyInt)})},
		&hir.ExprStmt{Value: &hir.Call{Func: "mystery", Args: []hir.Expr{ref("xs")}}},
		&hir.ExprStmt{Value: &hir.Call{Func: "len", Args: []hir.Expr{ref("xs")}}},
	)

	result := analyze(t, f)

	found := false
	for _, insight := range result.Insights {
		if insight.Kind == InsightBorrowConflict && insight.Param == "xs" {
			found = true
		}
	}

	if !found {
		t.Error("expected a borrow-conflict insight for a read after a move")
	}

	if f.Params[0].Strategy.Kind != hir.TakeOwnership {
		t.Errorf("the conflict fallback should own, got %s", f.Params[0].Strategy)
	}
}
