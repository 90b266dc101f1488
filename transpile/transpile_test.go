package transpile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depyler/common"
	"depyler/pyast"
	"depyler/report"
)

// stubParser hands back a prebuilt AST, standing in for the external Python
// front-end.
type stubParser struct {
	mod *pyast.Module
	err error
}

func (sp *stubParser) Parse(fileName string, src []byte) (*pyast.Module, error) {
	return sp.mod, sp.err
}

func silentOptions(mod *pyast.Module) Options {
	opts := DefaultOptions()
	opts.LogLevel = report.LogLevelSilent
	opts.Parser = &stubParser{mod: mod}
	return opts
}

func astName(n string) *pyast.Name {
	return &pyast.Name{Name: n}
}

func astFunc(name string, params []*pyast.Param, returns pyast.Expr, body ...pyast.Stmt) *pyast.FuncDef {
	return &pyast.FuncDef{Name: name, Params: params, Returns: returns, Body: body}
}

// -----------------------------------------------------------------------------

func TestTranspileEndToEnd(t *testing.T) {
	mod := &pyast.Module{
		Name: "adder",
		Body: []pyast.Stmt{
			astFunc("add",
				[]*pyast.Param{
					{Name: "a", Annotation: astName("int")},
					{Name: "b", Annotation: astName("int")},
				},
				astName("int"),
				&pyast.Return{Value: &pyast.BinOp{Op: common.OpAdd, Lhs: astName("a"), Rhs: astName("b")}},
			),
		},
	}

	result, err := Transpile("adder.py", nil, silentOptions(mod))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if result.Emitted != 1 || result.Total != 1 {
		t.Errorf("expected 1/1 functions emitted, got %d/%d", result.Emitted, result.Total)
	}

	// The default integer width is 64 bits.
	if !strings.Contains(result.RustSource, "fn add(a: i64, b: i64) -> i64 {") {
		t.Errorf("unexpected source:\n%s", result.RustSource)
	}

	if !strings.Contains(result.Manifest, `name = "adder"`) {
		t.Errorf("unexpected manifest:\n%s", result.Manifest)
	}

	if !strings.Contains(result.Manifest, `edition = "`+common.RustEdition+`"`) {
		t.Errorf("manifest missing the pinned edition:\n%s", result.Manifest)
	}
}

func TestTranspileIntWidth32(t *testing.T) {
	mod := &pyast.Module{
		Name: "ident",
		Body: []pyast.Stmt{
			astFunc("ident",
				[]*pyast.Param{{Name: "x", Annotation: astName("int")}},
				astName("int"),
				&pyast.Return{Value: astName("x")},
			),
		},
	}

	opts := silentOptions(mod)
	opts.IntWidth = 32

	result, err := Transpile("ident.py", nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !strings.Contains(result.RustSource, "fn ident(x: i32) -> i32 {") {
		t.Errorf("expected 32-bit integers:\n%s", result.RustSource)
	}
}

func TestTranspileWithoutParserFails(t *testing.T) {
	opts := DefaultOptions()
	opts.LogLevel = report.LogLevelSilent

	if _, err := Transpile("x.py", nil, opts); err == nil {
		t.Fatal("expected an error without a parser")
	}
}

func TestTranspileParseErrorIsFatal(t *testing.T) {
	opts := DefaultOptions()
	opts.LogLevel = report.LogLevelSilent
	opts.Parser = &stubParser{err: errors.New("unexpected indent")}

	_, err := Transpile("bad.py", nil, opts)
	if err == nil {
		t.Fatal("expected a parse error")
	}

	perr, ok := err.(*report.ParseError)
	if !ok {
		t.Fatalf("expected *report.ParseError, got %T", err)
	}

	if !perr.Fatal() {
		t.Error("parse errors must be fatal")
	}
}

func TestTranspilePartialOutput(t *testing.T) {
	mod := &pyast.Module{
		Name: "mixed",
		Body: []pyast.Stmt{
			astFunc("gen", nil, nil,
				&pyast.ExprStmt{Value: &pyast.Yield{Value: &pyast.Literal{Kind: pyast.LitInt, Value: "1"}}},
			),
			astFunc("ok", nil, nil, &pyast.Pass{}),
		},
	}

	result, err := Transpile("mixed.py", nil, silentOptions(mod))
	if err != nil {
		t.Fatalf("one clean function should carry the call: %s", err)
	}

	if len(result.Errors) != 1 {
		t.Errorf("expected 1 per-function error, got %d", len(result.Errors))
	}

	if !strings.Contains(result.RustSource, "fn ok() {") {
		t.Errorf("the clean function is missing:\n%s", result.RustSource)
	}
}

func TestTranspileAllFunctionsFailing(t *testing.T) {
	mod := &pyast.Module{
		Name: "gens",
		Body: []pyast.Stmt{
			astFunc("gen", nil, nil,
				&pyast.ExprStmt{Value: &pyast.Yield{Value: &pyast.Literal{Kind: pyast.LitInt, Value: "1"}}},
			),
		},
	}

	if _, err := Transpile("gens.py", nil, silentOptions(mod)); err == nil {
		t.Fatal("expected failure when nothing could be translated")
	}
}

func TestTranspileAllowlistDeniesCrates(t *testing.T) {
	mod := &pyast.Module{
		Name: "enc",
		Body: []pyast.Stmt{
			&pyast.Import{Module: "json"},
			astFunc("encode",
				[]*pyast.Param{{Name: "d", Annotation: &pyast.Subscript{
					Value: astName("dict"),
					Index: &pyast.TupleExpr{Elts: []pyast.Expr{astName("str"), astName("int")}},
				}}},
				astName("str"),
				&pyast.Return{Value: &pyast.Call{
					Func: &pyast.Attribute{Value: astName("json"), Attr: "dumps"},
					Args: []pyast.Expr{astName("d")},
				}},
			),
		},
	}

	opts := silentOptions(mod)
	opts.Allow = []string{"regex"}

	result, err := Transpile("enc.py", nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(result.Denied) != 1 || result.Denied[0] != "serde_json" {
		t.Errorf("expected serde_json denied, got %v", result.Denied)
	}

	if strings.Contains(result.Manifest, "serde_json") {
		t.Errorf("denied crate leaked into the manifest:\n%s", result.Manifest)
	}
}

// -----------------------------------------------------------------------------

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), common.OptionsFileName)

	content := `lang_version = "3.12"
dynamic = true
int_width = 32
allow = ["serde_json", "regex"]
log_level = "warn"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if opts.LangVersion != "3.12" || !opts.Dynamic || opts.IntWidth != 32 {
		t.Errorf("options not applied: %+v", opts)
	}

	if len(opts.Allow) != 2 || opts.LogLevel != report.LogLevelWarn {
		t.Errorf("options not applied: %+v", opts)
	}
}

func TestLoadOptionsRejectsBadIntWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), common.OptionsFileName)

	if err := os.WriteFile(path, []byte("int_width = 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOptions(path); err == nil {
		t.Fatal("expected an error for an unsupported integer width")
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected an error for a missing options file")
	}
}
