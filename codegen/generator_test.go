package codegen

import (
	"strings"
	"testing"

	"depyler/borrow"
	"depyler/common"
	"depyler/hir"
	"depyler/types"
)

func emit(t *testing.T, items ...hir.Item) *Output {
	t.Helper()

	mapper := types.NewMapper(false)
	mod := &hir.Module{Name: "example", Items: items}

	results := make(map[*hir.Func]*borrow.Result)
	for _, item := range items {
		switch v := item.(type) {
		case *hir.Func:
			results[v] = borrow.AnalyzeFunc(v, mapper)
		case *hir.Class:
			for _, m := range v.Methods {
				results[m] = borrow.AnalyzeFunc(m, mapper)
			}
		}
	}

	out, err := NewGenerator(mod, mapper, results).Generate()
	if err != nil {
		t.Fatalf("unexpected fatal error: %s", err)
	}

	return out
}

func wantContains(t *testing.T, src string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(src, fragment) {
			t.Errorf("emitted source missing %q:\n%s", fragment, src)
		}
	}
}

func intParam(name string) *hir.Param {
	return &hir.Param{Name: name, Type: types.PyPrim(types.PyInt)}
}

func pvar(name string) *hir.Var {
	return &hir.Var{Name: name, IsParam: true}
}

func ilit(v string) *hir.Literal {
	return &hir.Literal{Kind: hir.LitInt, Value: v}
}

func slit(v string) *hir.Literal {
	return &hir.Literal{Kind: hir.LitStr, Value: v}
}

// -----------------------------------------------------------------------------

func TestSimpleFunctionTailExpression(t *testing.T) {
	add := &hir.Func{
		Name:    "add",
		Params:  []*hir.Param{intParam("a"), intParam("b")},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Binary{Op: common.OpAdd, Lhs: pvar("a"), Rhs: pvar("b")}},
		},
	}

	out := emit(t, add)

	wantContains(t, out.Source,
		"fn add(a: i32, b: i32) -> i32 {",
		"    a + b\n",
	)

	if strings.Contains(out.Source, "return a + b") {
		t.Error("a lone trailing return should emit in tail position")
	}

	if out.Emitted != 1 {
		t.Errorf("expected 1 emitted function, got %d", out.Emitted)
	}
}

func TestFloorDivisionFloors(t *testing.T) {
	f := &hir.Func{
		Name:    "half",
		Params:  []*hir.Param{intParam("a"), intParam("b")},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Binary{Op: common.OpFloorDiv, Lhs: pvar("a"), Rhs: pvar("b")}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "let q = a / b", "q - 1")
}

func TestMixedComparisonUsesTypedFloatLiteral(t *testing.T) {
	f := &hir.Func{
		Name:    "below",
		Params:  []*hir.Param{{Name: "x", Type: types.PyPrim(types.PyFloat)}},
		Returns: types.PyPrim(types.PyBool),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Binary{Op: common.OpLt, Lhs: pvar("x"), Rhs: ilit("2")}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "x < 2.0f64")
}

func TestReadOnlyListBorrows(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "first",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{Base: pvar("xs"), Idx: ilit("0")}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source,
		"fn first(xs: &Vec<i32>) -> i32 {",
		`xs.get(0).cloned().expect("IndexError: list index out of range")`,
	)
}

func TestInteriorMutationBorrowsMut(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "set_first",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.Assign{
				Target: &hir.IndexTarget{Base: pvar("xs"), Index: ilit("0")},
				Value:  ilit("1"),
			},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "fn set_first(xs: &mut Vec<i32>) {", "xs[0] = 1;")
}

func TestEscapingStringSignatureUsesCow(t *testing.T) {
	f := &hir.Func{
		Name:    "ident",
		Params:  []*hir.Param{{Name: "s", Type: types.PyPrim(types.PyStr)}},
		Returns: types.PyPrim(types.PyStr),
		Body: []hir.Stmt{
			&hir.Return{Value: pvar("s")},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source,
		"s: Cow<'static, str>",
		"-> String",
		"s.into_owned()",
		"use std::borrow::Cow;",
	)
}

func TestStringTruthiness(t *testing.T) {
	f := &hir.Func{
		Name:    "shout",
		Params:  []*hir.Param{{Name: "s", Type: types.PyPrim(types.PyStr)}},
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.If{
				Cond: pvar("s"),
				Then: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.Call{Func: "print", Args: []hir.Expr{pvar("s")}}},
				},
			},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "if !s.is_empty() {")
}

func TestForElseUsesCompletionFlag(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "find_zero",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.For{
				Target: &hir.SymbolTarget{Name: "x"},
				Iter:   pvar("xs"),
				Body: []hir.Stmt{
					&hir.If{
						Cond: &hir.Binary{Op: common.OpEq, Lhs: mkTypedVar("x", types.PyPrim(types.PyInt)), Rhs: ilit("0")},
						Then: []hir.Stmt{&hir.Break{}},
					},
				},
				ElseBody: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.Call{Func: "print", Args: []hir.Expr{slit("no zero")}}},
				},
			},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source,
		"let mut _completed0 = true;",
		"'l0: for x in",
		"_completed0 = false;",
		"break 'l0;",
		"if _completed0 {",
	)
}

func TestRaisePromotesToResult(t *testing.T) {
	f := &hir.Func{
		Name:    "check",
		Params:  []*hir.Param{intParam("x")},
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.If{
				Cond: &hir.Binary{Op: common.OpLt, Lhs: pvar("x"), Rhs: ilit("0")},
				Then: []hir.Stmt{
					&hir.Raise{Exc: &hir.Call{Func: "ValueError", Args: []hir.Expr{slit("negative")}}},
				},
			},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source,
		"fn check(x: i32) -> Result<(), String> {",
		`return Err("ValueError: negative".to_string());`,
		"Ok(())",
	)
}

func TestUnsupportedBuiltinStubs(t *testing.T) {
	bad := &hir.Func{
		Name:    "run",
		Params:  []*hir.Param{{Name: "code", Type: types.PyPrim(types.PyStr)}},
		Returns: types.PyUnknown{},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Call{Func: "eval", Args: []hir.Expr{pvar("code")}}},
		},
	}

	good := &hir.Func{
		Name:    "twice",
		Params:  []*hir.Param{intParam("x")},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Binary{Op: common.OpMul, Lhs: pvar("x"), Rhs: ilit("2")}},
		},
	}

	out := emit(t, bad, good)

	if len(out.Errors) != 1 {
		t.Fatalf("expected 1 per-function error, got %d", len(out.Errors))
	}

	if out.Emitted != 1 {
		t.Errorf("expected 1 emitted function, got %d", out.Emitted)
	}

	wantContains(t, out.Source,
		"fn run() {",
		"unimplemented!(",
		"fn twice(x: i32) -> i32 {",
	)
}

func TestLibraryCallRecordsCrateNeed(t *testing.T) {
	dictTy := &types.PyDict{Key: types.PyPrim(types.PyStr), Value: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "encode",
		Params:  []*hir.Param{{Name: "d", Type: dictTy}},
		Returns: types.PyPrim(types.PyStr),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Call{Func: "json.dumps", Args: []hir.Expr{pvar("d")}}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "serde_json::to_string(")

	found := false
	for _, need := range out.Needs {
		if need == "serde_json" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected serde_json in needs, got %v", out.Needs)
	}
}

func TestMutableGlobalBecomesLockedStatic(t *testing.T) {
	counter := &hir.Constant{
		Name:    "counter",
		Type:    types.PyPrim(types.PyInt),
		Value:   ilit("0"),
		Mutable: true,
	}

	bump := &hir.Func{
		Name:    "bump",
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "counter"},
				Value: &hir.Binary{
					Op:  common.OpAdd,
					Lhs: mkTypedVar("counter", types.PyPrim(types.PyInt)),
					Rhs: ilit("1"),
				},
			},
		},
	}

	out := emit(t, counter, bump)

	// The read must release its guard before the write lock is taken, or
	// the statement deadlocks at runtime.
	wantContains(t, out.Source,
		"static COUNTER: Lazy<Mutex<i32>> = Lazy::new(|| Mutex::new(0));",
		"let _next0 = COUNTER.lock().unwrap().clone() + 1;",
		"*COUNTER.lock().unwrap() = _next0;",
		"use once_cell::sync::Lazy;",
	)

	if strings.Contains(out.Source, "*COUNTER.lock().unwrap() = COUNTER.lock()") {
		t.Error("the value read must not hold its lock into the write")
	}
}

func TestDataclassEmitsStructAndConstructor(t *testing.T) {
	point := &hir.Class{
		Name:        "Point",
		IsDataclass: true,
		Fields: []*hir.Field{
			{Name: "x", Type: types.PyPrim(types.PyInt)},
			{Name: "y", Type: types.PyPrim(types.PyInt)},
		},
	}

	out := emit(t, point)

	wantContains(t, out.Source,
		"#[derive(Debug, Clone)]",
		"pub struct Point {",
		"pub x: i32,",
		"pub fn new(x: i32, y: i32) -> Self {",
		"Self { x, y }",
	)
}

func TestSelfReferentialFieldBoxes(t *testing.T) {
	node := &hir.Class{
		Name: "Node",
		Fields: []*hir.Field{
			{Name: "value", Type: types.PyPrim(types.PyInt)},
			{Name: "next", Type: &types.PyOptional{Elem: &types.PyCustom{Name: "Node"}}},
		},
	}

	out := emit(t, node)

	wantContains(t, out.Source,
		"pub value: i32,",
		"pub next: Option<Box<Node>>,",
	)
}

func TestMethodCallInsertsCalleeBorrow(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	callee := &hir.Func{
		Name:    "total",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Call{Func: "sum", Args: []hir.Expr{pvar("xs")}}},
		},
	}

	caller := &hir.Func{
		Name:    "caller",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Call{Func: "total", Args: []hir.Expr{pvar("xs")}}},
		},
	}

	out := emit(t, callee, caller)

	// total only reads xs, so it borrows, and the call site must match.
	wantContains(t, out.Source,
		"fn total(xs: &Vec<i32>) -> i32 {",
		"total(&xs)",
	)
}

func TestComprehensionBecomesIteratorChain(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "evens",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: listTy,
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Comp{
				Kind:    hir.CompList,
				Element: mkTypedVar("x", types.PyPrim(types.PyInt)),
				Target:  &hir.SymbolTarget{Name: "x"},
				Iter:    pvar("xs"),
				Condition: &hir.Binary{
					Op:  common.OpEq,
					Lhs: &hir.Binary{Op: common.OpMod, Lhs: mkTypedVar("x", types.PyPrim(types.PyInt)), Rhs: ilit("2")},
					Rhs: ilit("0"),
				},
			}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, ".filter(|x|", ".collect::<Vec<_>>()")
}

func TestNoneComparisonTestsOption(t *testing.T) {
	optTy := &types.PyOptional{Elem: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "has_value",
		Params:  []*hir.Param{{Name: "v", Type: optTy}},
		Returns: types.PyPrim(types.PyBool),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Binary{
				Op:  common.OpIsNot,
				Lhs: pvar("v"),
				Rhs: &hir.Literal{Kind: hir.LitNone, Value: "None"},
			}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "v.is_some()")
}

func TestArithmeticConditionCoerces(t *testing.T) {
	f := &hir.Func{
		Name:    "check",
		Params:  []*hir.Param{intParam("x")},
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.If{
				Cond: &hir.Binary{Op: common.OpAdd, Lhs: pvar("x"), Rhs: ilit("1")},
				Then: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.Call{Func: "print", Args: []hir.Expr{pvar("x")}}},
				},
			},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "if (x + 1) != 0 {")
}

func TestNegativeLiteralExponentUsesFloatPower(t *testing.T) {
	f := &hir.Func{
		Name:    "invsq",
		Params:  []*hir.Param{intParam("x")},
		Returns: types.PyPrim(types.PyFloat),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Binary{
				Op:  common.OpPow,
				Lhs: pvar("x"),
				Rhs: &hir.Unary{Op: common.OpNeg, Operand: ilit("2")},
			}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "fn invsq(x: i32) -> f64 {", "(x as f64).powf(")

	if strings.Contains(out.Source, "checked_pow") {
		t.Error("a negative literal exponent must take the float path")
	}
}

func TestLenCastsToConfiguredInt(t *testing.T) {
	f := &hir.Func{
		Name:    "string_len",
		Params:  []*hir.Param{{Name: "s", Type: types.PyPrim(types.PyStr)}},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Call{Func: "len", Args: []hir.Expr{pvar("s")}}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "fn string_len(s: &str) -> i32 {", "s.len() as i32")
}

func TestLenInIndexPositionStaysUsize(t *testing.T) {
	listTy := &types.PyList{Elem: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name:    "last",
		Params:  []*hir.Param{{Name: "xs", Type: listTy}},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{
				Base: pvar("xs"),
				Idx: &hir.Binary{
					Op:  common.OpSub,
					Lhs: &hir.Call{Func: "len", Args: []hir.Expr{pvar("xs")}},
					Rhs: ilit("1"),
				},
			}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "xs.len().saturating_sub(1 as usize)")
}

func TestDictSubscriptUsesGetTemplate(t *testing.T) {
	dictTy := &types.PyDict{Key: types.PyPrim(types.PyStr), Value: types.PyPrim(types.PyInt)}

	f := &hir.Func{
		Name: "lookup",
		Params: []*hir.Param{
			{Name: "m", Type: dictTy},
			{Name: "k", Type: types.PyPrim(types.PyStr)},
		},
		Returns: types.PyPrim(types.PyInt),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{Base: pvar("m"), Idx: pvar("k")}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source, "m.get(&k).cloned().unwrap_or_default()")
}

func TestNegativeStringIndexCountsChars(t *testing.T) {
	f := &hir.Func{
		Name:    "last_char",
		Params:  []*hir.Param{{Name: "s", Type: types.PyPrim(types.PyStr)}},
		Returns: types.PyPrim(types.PyStr),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{Base: pvar("s"), Idx: ilit("-1")}},
		},
	}

	out := emit(t, f)

	// The position must be measured in chars, like the access, not bytes.
	wantContains(t, out.Source, "s.chars().nth(s.chars().count() - 1)")
}

func TestDynamicIndexGoesThroughRuntime(t *testing.T) {
	f := &hir.Func{
		Name:    "head",
		Params:  []*hir.Param{{Name: "x", Type: types.PyUnknown{}}},
		Returns: types.PyUnknown{},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{Base: pvar("x"), Idx: ilit("0")}},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source,
		"x.py_index(0)",
		"pub fn py_index<I: Into<DepylerValue>>",
		"impl From<i64> for DepylerValue",
		"impl From<&str> for DepylerValue",
	)
}

func TestArgparseSubcommandsBecomeEnum(t *testing.T) {
	f := &hir.Func{
		Name:    "main",
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "parser"},
				Value: &hir.Call{Func: "argparse.ArgumentParser", Kwargs: []hir.Kwarg{
					{Name: "description", Value: slit("demo tool")},
				}},
			},
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "sub"},
				Value: &hir.MethodCall{
					Object: &hir.Var{Name: "parser"},
					Method: "add_subparsers",
					Kwargs: []hir.Kwarg{{Name: "dest", Value: slit("command")}},
				},
			},
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "run_p"},
				Value: &hir.MethodCall{
					Object: &hir.Var{Name: "sub"},
					Method: "add_parser",
					Args:   []hir.Expr{slit("run")},
					Kwargs: []hir.Kwarg{{Name: "help", Value: slit("run the pipeline")}},
				},
			},
			&hir.ExprStmt{Value: &hir.MethodCall{
				Object: &hir.Var{Name: "run_p"},
				Method: "add_argument",
				Args:   []hir.Expr{slit("--fast")},
				Kwargs: []hir.Kwarg{{Name: "action", Value: slit("store_true")}},
			}},
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "args"},
				Value:  &hir.MethodCall{Object: &hir.Var{Name: "parser"}, Method: "parse_args"},
			},
		},
	}

	out := emit(t, f)

	wantContains(t, out.Source,
		"#[derive(Parser, Debug)]",
		"#[command(subcommand)]",
		"pub command: Commands,",
		"#[derive(Subcommand, Debug)]",
		"pub enum Commands {",
		"Run {",
		"fast: bool,",
		"use clap::Subcommand;",
		"let args = Args::parse();",
	)
}

func TestArgparseUnknownOperationFallsBack(t *testing.T) {
	f := &hir.Func{
		Name:    "main",
		Returns: types.PyPrim(types.PyNone),
		Body: []hir.Stmt{
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "parser"},
				Value:  &hir.Call{Func: "argparse.ArgumentParser"},
			},
			&hir.ExprStmt{Value: &hir.MethodCall{
				Object: &hir.Var{Name: "parser"},
				Method: "error",
				Args:   []hir.Expr{slit("boom")},
			}},
			&hir.Assign{
				Target: &hir.SymbolTarget{Name: "args"},
				Value:  &hir.MethodCall{Object: &hir.Var{Name: "parser"}, Method: "parse_args"},
			},
		},
	}

	out := emit(t, f)

	// An operation the rewrite cannot represent abandons the whole
	// recognition; the function then fails as an unsupported library call
	// instead of emitting a half-rewritten parser.
	if len(out.Errors) != 1 {
		t.Fatalf("expected 1 per-function error, got %d", len(out.Errors))
	}

	if strings.Contains(out.Source, "struct Args") {
		t.Error("an abandoned recognition must not leave a partial derive struct")
	}

	wantContains(t, out.Source, "unimplemented!(")
}

func mkTypedVar(name string, typ types.PyType) *hir.Var {
	v := &hir.Var{Name: name}
	v.SetType(typ)
	return v
}
