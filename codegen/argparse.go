package codegen

import (
	"fmt"
	"strings"

	"depyler/hir"
	"depyler/types"
)

// The argparse rewrite is structural: an ArgumentParser construction, its
// add_argument calls, and the final parse_args collapse into a single derive
// struct parsed by clap.  One level of add_subparsers folds into a Subcommand
// enum.  Recognition runs over the whole body before any statement emits; if
// the idiom is incomplete, or any parser binding is used in a way the rewrite
// cannot represent, the statements fall through to ordinary emission and fail
// as unsupported library calls.

type argParserState int

const (
	argStateNone argParserState = iota
	argStateRegistered
	argStateParsed
)

// argSpec records one add_argument call.
type argSpec struct {
	name     string
	flag     bool // introduced with a -- prefix
	boolFlag bool // action="store_true"
	typ      types.PyType
	help     string
	def      string // rendered default, or ""
	required bool
}

// subSpec records one subcommand registered through add_parser.
type subSpec struct {
	name    string
	varName string
	help    string
	args    []argSpec
}

// argParserTracker carries the recognition state for one function body.
type argParserTracker struct {
	state argParserState

	parserVar string
	argsVar   string
	about     string

	args []argSpec

	// subVar names the add_subparsers binding; subField is the struct field
	// the subcommand parses into.
	subVar   string
	subField string
	subs     []subSpec

	// aborted is set when a parser binding flows through an operation the
	// rewrite cannot represent; the whole recognition is then discarded.
	aborted bool

	// skip is the set of recognized statements; they emit nothing except the
	// parse_args assignment, which becomes the clap parse call.
	skip map[hir.Stmt]bool

	parseStmt hir.Stmt
}

// recognizeArgParse scans a body for the argparse idiom and, when the full
// construction-accumulation-parse sequence is present, prepares the rewrite.
func (g *Generator) recognizeArgParse(body []hir.Stmt) {
	tracker := &argParserTracker{skip: make(map[hir.Stmt]bool)}

	for _, stmt := range body {
		switch v := stmt.(type) {
		case *hir.Assign:
			tracker.observeAssign(v)
		case *hir.ExprStmt:
			tracker.observeExpr(v)
		}
	}

	if tracker.aborted || tracker.state != argStateParsed {
		return
	}

	g.argParser = tracker
	g.need("clap")
	g.use_("clap::Parser")
	if len(tracker.subs) > 0 {
		g.use_("clap::Subcommand")
	}
	g.pending = append(g.pending, g.renderArgsStruct(tracker))

	// The args binding is a known local of the derived struct type.
	g.declared[tracker.argsVar] = true
	g.locals[tracker.argsVar] = &types.PyCustom{Name: "Args"}
}

// tracked reports whether a name is one of the parser bindings under
// recognition.
func (t *argParserTracker) tracked(name string) bool {
	if name == t.parserVar || (t.subVar != "" && name == t.subVar) {
		return true
	}

	for _, sub := range t.subs {
		if sub.varName == name {
			return true
		}
	}

	return false
}

// observeAssign advances the tracker on the assignment forms of the idiom:
// the constructor, add_subparsers, add_parser, and the final parse_args.
func (t *argParserTracker) observeAssign(as *hir.Assign) {
	sym, ok := as.Target.(*hir.SymbolTarget)
	if !ok {
		return
	}

	if call, ok := as.Value.(*hir.Call); ok && call.Func == "argparse.ArgumentParser" {
		t.state = argStateRegistered
		t.parserVar = sym.Name
		t.skip[as] = true

		for _, kw := range call.Kwargs {
			if kw.Name == "description" {
				if lit, ok := kw.Value.(*hir.Literal); ok && lit.Kind == hir.LitStr {
					t.about = lit.Value
				}
			}
		}
		return
	}

	mc, ok := as.Value.(*hir.MethodCall)
	if !ok || t.state != argStateRegistered {
		return
	}

	obj, ok := mc.Object.(*hir.Var)
	if !ok || !t.tracked(obj.Name) {
		return
	}

	switch {
	case obj.Name == t.parserVar && mc.Method == "parse_args":
		t.state = argStateParsed
		t.argsVar = sym.Name
		t.skip[as] = true
		t.parseStmt = as

	case obj.Name == t.parserVar && mc.Method == "add_subparsers":
		t.subVar = sym.Name
		t.subField = "command"
		t.skip[as] = true

		for _, kw := range mc.Kwargs {
			if kw.Name == "dest" {
				if lit, ok := kw.Value.(*hir.Literal); ok && lit.Kind == hir.LitStr {
					t.subField = lit.Value
				}
			}
		}

	case t.subVar != "" && obj.Name == t.subVar && mc.Method == "add_parser":
		sub, ok := parseSubSpec(mc, sym.Name)
		if !ok {
			t.aborted = true
			return
		}
		t.subs = append(t.subs, sub)
		t.skip[as] = true

	default:
		// An operation on a parser binding the rewrite cannot represent.
		t.aborted = true
	}
}

// observeExpr accumulates add_argument calls between registration and parse.
func (t *argParserTracker) observeExpr(es *hir.ExprStmt) {
	if t.state != argStateRegistered {
		return
	}

	mc, ok := es.Value.(*hir.MethodCall)
	if !ok {
		return
	}

	obj, ok := mc.Object.(*hir.Var)
	if !ok || !t.tracked(obj.Name) {
		return
	}

	if mc.Method != "add_argument" {
		t.aborted = true
		return
	}

	spec, ok := parseArgSpec(mc)
	if !ok {
		t.aborted = true
		return
	}

	if obj.Name == t.parserVar {
		t.args = append(t.args, spec)
		t.skip[es] = true
		return
	}

	for i := range t.subs {
		if t.subs[i].varName == obj.Name {
			t.subs[i].args = append(t.subs[i].args, spec)
			t.skip[es] = true
			return
		}
	}

	// add_argument on the bare subparsers binding has no struct analogue.
	t.aborted = true
}

// parseArgSpec extracts one add_argument call into an argSpec.
func parseArgSpec(mc *hir.MethodCall) (argSpec, bool) {
	if len(mc.Args) == 0 {
		return argSpec{}, false
	}

	nameLit, ok := mc.Args[0].(*hir.Literal)
	if !ok || nameLit.Kind != hir.LitStr {
		return argSpec{}, false
	}

	spec := argSpec{
		name: strings.TrimLeft(nameLit.Value, "-"),
		flag: strings.HasPrefix(nameLit.Value, "-"),
		typ:  types.PyPrim(types.PyStr),
	}

	for _, kw := range mc.Kwargs {
		switch kw.Name {
		case "type":
			if v, ok := kw.Value.(*hir.Var); ok {
				switch v.Name {
				case "int":
					spec.typ = types.PyPrim(types.PyInt)
				case "float":
					spec.typ = types.PyPrim(types.PyFloat)
				}
			}
		case "action":
			if lit, ok := kw.Value.(*hir.Literal); ok && lit.Value == "store_true" {
				spec.boolFlag = true
				spec.typ = types.PyPrim(types.PyBool)
			}
		case "help":
			if lit, ok := kw.Value.(*hir.Literal); ok && lit.Kind == hir.LitStr {
				spec.help = lit.Value
			}
		case "default":
			if lit, ok := kw.Value.(*hir.Literal); ok {
				spec.def = lit.Value
			}
		case "required":
			if lit, ok := kw.Value.(*hir.Literal); ok && lit.Value == "True" {
				spec.required = true
			}
		}
	}

	return spec, true
}

// parseSubSpec extracts one add_parser call into a subSpec.
func parseSubSpec(mc *hir.MethodCall, varName string) (subSpec, bool) {
	if len(mc.Args) == 0 {
		return subSpec{}, false
	}

	nameLit, ok := mc.Args[0].(*hir.Literal)
	if !ok || nameLit.Kind != hir.LitStr {
		return subSpec{}, false
	}

	sub := subSpec{name: nameLit.Value, varName: varName}

	for _, kw := range mc.Kwargs {
		if kw.Name == "help" {
			if lit, ok := kw.Value.(*hir.Literal); ok && lit.Kind == hir.LitStr {
				sub.help = lit.Value
			}
		}
	}

	return sub, true
}

// rewriteArgParse suppresses recognized statements, replacing the parse_args
// assignment with the derive parse.  Returns true when the statement was
// consumed.
func (g *Generator) rewriteArgParse(sb *strings.Builder, stmt hir.Stmt) bool {
	if g.argParser == nil || !g.argParser.skip[stmt] {
		return false
	}

	if stmt == g.argParser.parseStmt {
		g.line(sb, "let %s = Args::parse();", sanitizeIdent(g.argParser.argsVar))
	}

	return true
}

// renderArgsStruct renders the clap derive struct, and the subcommand enum
// when one was recognized.
func (g *Generator) renderArgsStruct(t *argParserTracker) string {
	var sb strings.Builder

	sb.WriteString("#[derive(Parser, Debug)]\n")
	if t.about != "" {
		fmt.Fprintf(&sb, "#[command(about = %q)]\n", t.about)
	}
	sb.WriteString("pub struct Args {\n")

	for _, spec := range t.args {
		g.renderArgField(&sb, spec, "    ", "pub ")
	}

	if len(t.subs) > 0 {
		sb.WriteString("    #[command(subcommand)]\n")
		fmt.Fprintf(&sb, "    pub %s: Commands,\n", sanitizeIdent(t.subField))
	}

	sb.WriteString("}\n")

	if len(t.subs) > 0 {
		sb.WriteString("\n")
		sb.WriteString(g.renderCommandsEnum(t))
	}

	return sb.String()
}

// renderCommandsEnum renders the one-level subcommand enum.
func (g *Generator) renderCommandsEnum(t *argParserTracker) string {
	var sb strings.Builder

	sb.WriteString("#[derive(Subcommand, Debug)]\n")
	sb.WriteString("pub enum Commands {\n")

	for _, sub := range t.subs {
		if sub.help != "" {
			fmt.Fprintf(&sb, "    /// %s\n", sub.help)
		}

		variant := ucFirst(sanitizeIdent(sub.name))
		if len(sub.args) == 0 {
			fmt.Fprintf(&sb, "    %s,\n", variant)
			continue
		}

		fmt.Fprintf(&sb, "    %s {\n", variant)
		for _, spec := range sub.args {
			g.renderArgField(&sb, spec, "        ", "")
		}
		sb.WriteString("    },\n")
	}

	sb.WriteString("}\n")

	return sb.String()
}

// renderArgField renders one argument field; vis is "pub " for struct fields
// and "" inside enum variants, where visibility cannot be spelled.
func (g *Generator) renderArgField(sb *strings.Builder, spec argSpec, indent, vis string) {
	if spec.help != "" {
		fmt.Fprintf(sb, "%s/// %s\n", indent, spec.help)
	}

	var attrs []string
	if spec.flag {
		attrs = append(attrs, "long")
	}
	if spec.def != "" && !spec.boolFlag {
		attrs = append(attrs, fmt.Sprintf("default_value_t = %s", g.renderArgDefault(spec)))
	}

	if len(attrs) > 0 {
		fmt.Fprintf(sb, "%s#[arg(%s)]\n", indent, strings.Join(attrs, ", "))
	}

	fmt.Fprintf(sb, "%s%s%s: %s,\n", indent, vis, sanitizeIdent(spec.name), g.argFieldType(spec))
}

// argFieldType renders the Rust field type for one argument.
func (g *Generator) argFieldType(spec argSpec) string {
	rust, err := g.mapper.Map(spec.typ)
	if err != nil {
		return "String"
	}

	// An optional flag without a default parses into an Option.
	if spec.flag && !spec.boolFlag && !spec.required && spec.def == "" {
		return "Option<" + rust.Render() + ">"
	}

	return rust.Render()
}

// renderArgDefault renders an argument default for default_value_t.
func (g *Generator) renderArgDefault(spec argSpec) string {
	if isStrType(spec.typ) {
		return fmt.Sprintf("String::from(%q)", spec.def)
	}

	if isFloatType(spec.typ) && !strings.Contains(spec.def, ".") {
		return spec.def + ".0"
	}

	return spec.def
}

// ucFirst upcases the first byte, for enum variant names.
func ucFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
