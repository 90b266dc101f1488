package build

import (
	"testing"

	"depyler/common"
	"depyler/hir"
	"depyler/pyast"
	"depyler/report"
	"depyler/types"
)

func lower(t *testing.T, body ...pyast.Stmt) (*hir.Module, []error) {
	t.Helper()

	mod := &pyast.Module{Name: "example", Body: body}
	return NewBuilder(mod, types.NewMapper(false)).Build()
}

func lowerClean(t *testing.T, body ...pyast.Stmt) *hir.Module {
	t.Helper()

	mod, errs := lower(t, body...)
	if len(errs) != 0 {
		t.Fatalf("unexpected lowering errors: %v", errs)
	}

	return mod
}

func pyName(n string) *pyast.Name {
	return &pyast.Name{Name: n}
}

func pyInt(v string) *pyast.Literal {
	return &pyast.Literal{Kind: pyast.LitInt, Value: v}
}

func pyStr(v string) *pyast.Literal {
	return &pyast.Literal{Kind: pyast.LitStr, Value: v}
}

func funcDef(name string, params []*pyast.Param, returns pyast.Expr, body ...pyast.Stmt) *pyast.FuncDef {
	return &pyast.FuncDef{Name: name, Params: params, Returns: returns, Body: body}
}

// -----------------------------------------------------------------------------

func TestBuildSimpleFunction(t *testing.T) {
	def := funcDef("add",
		[]*pyast.Param{
			{Name: "a", Annotation: pyName("int")},
			{Name: "b", Annotation: pyName("int")},
		},
		pyName("int"),
		&pyast.Return{Value: &pyast.BinOp{Op: common.OpAdd, Lhs: pyName("a"), Rhs: pyName("b")}},
	)

	mod := lowerClean(t, def)

	if len(mod.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(mod.Items))
	}

	fn, ok := mod.Items[0].(*hir.Func)
	if !ok {
		t.Fatalf("expected a function item, got %T", mod.Items[0])
	}

	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %s with %d params", fn.Name, len(fn.Params))
	}

	for _, p := range fn.Params {
		if !types.Equals(p.Type, types.PyPrim(types.PyInt)) {
			t.Errorf("parameter %s: expected int, got %s", p.Name, p.Type.Repr())
		}
	}

	if !types.Equals(fn.Returns, types.PyPrim(types.PyInt)) {
		t.Errorf("expected int return, got %s", fn.Returns.Repr())
	}

	ret, ok := fn.Body[0].(*hir.Return)
	if !ok {
		t.Fatalf("expected a return statement, got %T", fn.Body[0])
	}

	bin, ok := ret.Value.(*hir.Binary)
	if !ok || bin.Op != common.OpAdd {
		t.Fatalf("expected a lowered addition, got %T", ret.Value)
	}
}

func TestModuleDocstring(t *testing.T) {
	mod := lowerClean(t,
		&pyast.ExprStmt{Value: pyStr("Utility helpers.")},
		funcDef("noop", nil, nil, &pyast.Pass{}),
	)

	if mod.Docstring != "Utility helpers." {
		t.Errorf("expected module docstring, got %q", mod.Docstring)
	}

	if len(mod.Items) != 1 {
		t.Errorf("the docstring statement should not become an item")
	}
}

func TestAugmentedAssignDesugars(t *testing.T) {
	def := funcDef("bump",
		[]*pyast.Param{{Name: "x", Annotation: pyName("int")}},
		pyName("int"),
		&pyast.Assign{
			Targets: []pyast.Expr{pyName("x")},
			Value:   pyInt("1"),
			Op:      &pyast.AugOp{Kind: int(common.OpAdd)},
		},
		&pyast.Return{Value: pyName("x")},
	)

	mod := lowerClean(t, def)
	fn := mod.Items[0].(*hir.Func)

	as, ok := fn.Body[0].(*hir.Assign)
	if !ok {
		t.Fatalf("expected an assignment, got %T", fn.Body[0])
	}

	bin, ok := as.Value.(*hir.Binary)
	if !ok || bin.Op != common.OpAdd {
		t.Fatalf("augmented assignment should desugar to a binary value, got %T", as.Value)
	}

	if v, ok := bin.Lhs.(*hir.Var); !ok || v.Name != "x" {
		t.Errorf("desugared lhs should reference the target, got %T", bin.Lhs)
	}
}

func TestTopLevelConstants(t *testing.T) {
	mod := lowerClean(t,
		&pyast.Assign{Targets: []pyast.Expr{pyName("LIMIT")}, Value: pyInt("10")},
		&pyast.Assign{Targets: []pyast.Expr{pyName("count")}, Value: pyInt("0")},
		&pyast.Assign{Targets: []pyast.Expr{pyName("count")}, Value: pyInt("1")},
	)

	if len(mod.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(mod.Items))
	}

	limit := mod.Items[0].(*hir.Constant)
	if limit.Mutable {
		t.Error("a once-bound module constant must not be mutable")
	}

	count := mod.Items[1].(*hir.Constant)
	if !count.Mutable {
		t.Error("a rebound module binding must be mutable")
	}
}

func TestGlobalDeclarationMarksMutable(t *testing.T) {
	mod := lowerClean(t,
		&pyast.Assign{Targets: []pyast.Expr{pyName("total")}, Value: pyInt("0")},
		funcDef("reset", nil, nil,
			&pyast.Global{Names: []string{"total"}},
			&pyast.Assign{Targets: []pyast.Expr{pyName("total")}, Value: pyInt("0")},
		),
	)

	total := mod.Items[0].(*hir.Constant)
	if !total.Mutable {
		t.Error("a `global`-declared binding must be mutable")
	}
}

func TestTypeAlias(t *testing.T) {
	mod := lowerClean(t,
		&pyast.Assign{
			Targets: []pyast.Expr{pyName("Names")},
			Value:   &pyast.Subscript{Value: pyName("list"), Index: pyName("str")},
		},
	)

	alias, ok := mod.Items[0].(*hir.TypeAlias)
	if !ok {
		t.Fatalf("expected a type alias, got %T", mod.Items[0])
	}

	if alias.Name != "Names" || alias.Type.Repr() != "list[str]" {
		t.Errorf("unexpected alias %s = %s", alias.Name, alias.Type.Repr())
	}
}

func TestClassCollectsInitFields(t *testing.T) {
	init := funcDef("__init__",
		[]*pyast.Param{
			{Name: "self"},
			{Name: "name", Annotation: pyName("str")},
		},
		nil,
		&pyast.Assign{
			Targets: []pyast.Expr{&pyast.Attribute{Value: pyName("self"), Attr: "name"}},
			Value:   pyName("name"),
		},
	)

	mod := lowerClean(t, &pyast.ClassDef{Name: "User", Body: []pyast.Stmt{init}})

	cls, ok := mod.Items[0].(*hir.Class)
	if !ok {
		t.Fatalf("expected a class, got %T", mod.Items[0])
	}

	if len(cls.Fields) != 1 || cls.Fields[0].Name != "name" {
		t.Fatalf("expected the `name` field collected from __init__, got %d fields", len(cls.Fields))
	}

	if !types.Equals(cls.Fields[0].Type, types.PyPrim(types.PyStr)) {
		t.Errorf("expected str field type, got %s", cls.Fields[0].Type.Repr())
	}

	if len(cls.Methods) != 1 || cls.Methods[0].Name != "__init__" {
		t.Fatalf("expected the constructor among the methods")
	}

	self := cls.Methods[0].Params[0]
	if custom, ok := self.Type.(*types.PyCustom); !ok || custom.Name != "Self" {
		t.Errorf("self should carry the Self type, got %s", self.Type.Repr())
	}
}

func TestProtocolLowersToInterface(t *testing.T) {
	method := funcDef("describe", []*pyast.Param{{Name: "self"}}, pyName("str"), &pyast.Pass{})

	mod := lowerClean(t, &pyast.ClassDef{
		Name:  "Describable",
		Bases: []pyast.Expr{pyName("Protocol")},
		Body:  []pyast.Stmt{method},
	})

	proto, ok := mod.Items[0].(*hir.Protocol)
	if !ok {
		t.Fatalf("expected a protocol, got %T", mod.Items[0])
	}

	if len(proto.Methods) != 1 || proto.Methods[0].Name != "describe" {
		t.Error("protocol methods were not carried over")
	}
}

func TestGeneratorIsPerItemError(t *testing.T) {
	bad := funcDef("gen", nil, nil,
		&pyast.ExprStmt{Value: &pyast.Yield{Value: pyInt("1")}},
	)
	good := funcDef("ok", nil, nil, &pyast.Pass{})

	mod, errs := lower(t, bad, good)

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}

	uc, ok := errs[0].(*report.UnsupportedConstruct)
	if !ok {
		t.Fatalf("expected an unsupported-construct error, got %T", errs[0])
	}

	if uc.Fatal() {
		t.Error("a generator must not abort the module")
	}

	// The clean function still lowers.
	if len(mod.Items) != 1 {
		t.Fatalf("expected the clean item to survive, got %d items", len(mod.Items))
	}

	if fn := mod.Items[0].(*hir.Func); fn.Name != "ok" {
		t.Errorf("wrong surviving item: %s", fn.Name)
	}
}

func TestAsyncFunctionProperties(t *testing.T) {
	def := funcDef("fetch", nil, nil,
		&pyast.ExprStmt{Value: &pyast.Await{Value: &pyast.Call{Func: pyName("pull")}}},
	)
	def.IsAsync = true

	mod := lowerClean(t, def)
	fn := mod.Items[0].(*hir.Func)

	if !fn.Props.IsAsync {
		t.Error("async functions must be flagged")
	}

	if _, ok := fn.Body[0].(*hir.ExprStmt).Value.(*hir.Await); !ok {
		t.Error("await did not lower inside an async body")
	}
}

func TestAwaitOutsideAsyncFails(t *testing.T) {
	def := funcDef("sync", nil, nil,
		&pyast.ExprStmt{Value: &pyast.Await{Value: &pyast.Call{Func: pyName("pull")}}},
	)

	_, errs := lower(t, def)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
}
