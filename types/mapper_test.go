package types

import (
	"testing"

	"depyler/common"
	"depyler/pyast"
	"depyler/report"
)

func name(n string) *pyast.Name {
	return &pyast.Name{Name: n}
}

func subscript(base string, args ...pyast.Expr) *pyast.Subscript {
	var index pyast.Expr
	if len(args) == 1 {
		index = args[0]
	} else {
		index = &pyast.TupleExpr{Elts: args}
	}

	return &pyast.Subscript{Value: name(base), Index: index}
}

func TestFromAnnotation(t *testing.T) {
	m := NewMapper(false)

	testCases := []struct {
		label    string
		ann      pyast.Expr
		expected string
	}{
		{"int", name("int"), "int"},
		{"str", name("str"), "str"},
		{"bare list", name("list"), "list[Unknown]"},
		{"custom class", name("Point"), "Point"},
		{"missing annotation", nil, "Unknown"},
		{"list of int", subscript("list", name("int")), "list[int]"},
		{"typing List", subscript("List", name("int")), "list[int]"},
		{"dict", subscript("dict", name("str"), name("int")), "dict[str, int]"},
		{"set", subscript("set", name("float")), "set[float]"},
		{"frozenset", subscript("frozenset", name("int")), "frozenset[int]"},
		{"tuple", subscript("tuple", name("int"), name("str")), "tuple[int, str]"},
		{"optional", subscript("Optional", name("str")), "Optional[str]"},
		{"union reducing to optional", subscript("Union", name("int"), name("None")), "Optional[int]"},
		{"irreducible union", subscript("Union", name("int"), name("str")), "Union[int, str]"},
		{"forward reference", &pyast.Literal{Kind: pyast.LitStr, Value: "Node"}, "Node"},
	}

	for _, tc := range testCases {
		if got := m.FromAnnotation(tc.ann).Repr(); got != tc.expected {
			t.Errorf("%s: expected %s, got %s", tc.label, tc.expected, got)
		}
	}
}

func TestFromAnnotationPEP604(t *testing.T) {
	m := NewMapper(false)

	// `str | None` reduces to Optional.
	union := &pyast.BinOp{Op: common.OpBitOr, Lhs: name("str"), Rhs: name("None")}

	if got := m.FromAnnotation(union).Repr(); got != "Optional[str]" {
		t.Errorf("expected Optional[str], got %s", got)
	}
}

func TestMapPrecise(t *testing.T) {
	m := NewMapper(false)

	testCases := []struct {
		label    string
		typ      PyType
		expected string
	}{
		{"int defaults to i32", PyPrim(PyInt), "i32"},
		{"float", PyPrim(PyFloat), "f64"},
		{"bool", PyPrim(PyBool), "bool"},
		{"str maps to owned String", PyPrim(PyStr), "String"},
		{"bytes", PyPrim(PyBytes), "Vec<u8>"},
		{"none is unit", PyPrim(PyNone), "()"},
		{"list", &PyList{Elem: PyPrim(PyInt)}, "Vec<i32>"},
		{"dict", &PyDict{Key: PyPrim(PyStr), Value: PyPrim(PyInt)}, "HashMap<String, i32>"},
		{"set", &PySet{Elem: PyPrim(PyInt)}, "HashSet<i32>"},
		{"tuple", PyTuple{PyPrim(PyInt), PyPrim(PyStr)}, "(i32, String)"},
		{"optional", &PyOptional{Elem: PyPrim(PyStr)}, "Option<String>"},
		{"custom", &PyCustom{Name: "Point"}, "Point"},
		{"irreducible union boxes", PyUnion{PyPrim(PyInt), PyPrim(PyStr)}, "DepylerValue"},
		{"unknown dict key defaults to String", &PyDict{Key: PyUnknown{}, Value: PyPrim(PyInt)}, "HashMap<String, i32>"},
	}

	for _, tc := range testCases {
		rust, err := m.Map(tc.typ)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", tc.label, err)
			continue
		}

		if got := rust.Render(); got != tc.expected {
			t.Errorf("%s: expected %s, got %s", tc.label, tc.expected, got)
		}
	}
}

func TestMapIntWidth(t *testing.T) {
	m := NewMapper(false)
	m.IntWidth = RustI64

	rust, err := m.Map(&PyList{Elem: PyPrim(PyInt)})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := rust.Render(); got != "Vec<i64>" {
		t.Errorf("expected Vec<i64>, got %s", got)
	}
}

func TestMapUnknownFailsWithoutDynamic(t *testing.T) {
	m := NewMapper(false)

	_, err := m.Map(PyUnknown{})
	if err == nil {
		t.Fatal("expected a mapping failure for Unknown")
	}

	tmf, ok := err.(*report.TypeMappingFailure)
	if !ok {
		t.Fatalf("expected *report.TypeMappingFailure, got %T", err)
	}

	if tmf.Fatal() {
		t.Error("a type mapping failure must not be fatal")
	}
}

func TestMapUnknownBoxesInDynamicMode(t *testing.T) {
	m := NewMapper(true)

	testCases := []PyType{
		PyUnknown{},
		&PyList{Elem: PyUnknown{}},
		&PyDict{Key: PyUnknown{}, Value: PyUnknown{}},
	}

	expected := []string{"DepylerValue", "Vec<DepylerValue>", "HashMap<DepylerValue, DepylerValue>"}

	for i, typ := range testCases {
		rust, err := m.Map(typ)
		if err != nil {
			t.Fatalf("dynamic mapping of %s failed: %s", typ.Repr(), err)
		}

		got := rust.Render()
		if got != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], got)
		}

		if !IsDynamic(rust) {
			t.Errorf("%s should report as dynamic", got)
		}
	}
}

func TestMapDeterminism(t *testing.T) {
	m := NewMapper(false)
	typ := &PyDict{Key: PyPrim(PyStr), Value: &PyList{Elem: PyPrim(PyFloat)}}

	first, err1 := m.Map(typ)
	second, err2 := m.Map(typ)

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}

	if !RenderEquals(first, second) {
		t.Errorf("mapping is not deterministic: %s vs %s", first.Render(), second.Render())
	}
}
