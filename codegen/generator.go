package codegen

import (
	"fmt"
	"sort"
	"strings"

	"depyler/borrow"
	"depyler/hir"
	"depyler/report"
	"depyler/types"
)

// Generator converts an HIR module into Rust source under the ownership
// decisions made by borrowing analysis.  One generator emits one module; all
// tracker mutation happens on the single goroutine emitting a function.
type Generator struct {
	mod *hir.Module

	mapper *types.Mapper

	// results holds the borrowing analysis result for each function, keyed by
	// identity.
	results map[*hir.Func]*borrow.Result

	// needs is the set of crate dependencies the emitted code requires.  The
	// manifest generator consumes it.
	needs map[string]bool

	// needsRuntime is set when any emitted code touches the dynamic value
	// type, obligating the bundled runtime module.
	needsRuntime bool

	// uses is the set of `use` paths the emitted module must import.
	uses map[string]bool

	// out receives the emitted items in source order.
	out strings.Builder

	// indent is the current statement indentation depth.
	indent int

	// fn is the function currently being emitted.
	fn *hir.Func

	// fnDynamic is set while emitting a function that was downgraded to boxed
	// emission after a type mapping failure.
	fnDynamic bool

	// retResult is set when the current function's return type was promoted to
	// a Result because its body raises.
	retResult bool

	// locals maps local binding names to their Python types as the walk
	// discovers them.
	locals map[string]types.PyType

	// declared tracks which locals have already received a `let`.
	declared map[string]bool

	// mutatedLocals is the pre-scanned set of locals that need `let mut`.
	mutatedLocals map[string]bool

	// lifted marks walrus nodes whose binding was already hoisted; rendering
	// one emits only its name.
	lifted map[*hir.NamedExpr]bool

	// walrusNames catalogues every walrus-introduced name so downstream
	// statements may reference it.
	walrusNames map[string]bool

	// labelCount allocates loop labels 'l0, 'l1, ... monotonically.
	labelCount int

	// loops is the stack of enclosing loop frames, innermost last.  Break and
	// continue emission consult it for labels and else-clause flags.
	loops []loopFrame

	// tmpCount allocates scratch binding names within one function.
	tmpCount int

	// globals maps module-level constant names to their mutability, for the
	// lock-acquisition rewrite of mutable statics.
	globals map[string]bool

	// classFields maps class names to their field types, consulted when
	// emitting attribute access on typed values.
	classFields map[string]map[string]types.PyType

	// funcs maps module function names to their parameter lists, so call
	// sites can insert the borrows the callee's strategies demand.
	funcs map[string][]*hir.Param

	// classes is the set of class names, for routing Name(...) calls to
	// Name::new(...).
	classes map[string]bool

	// argParser is the tracker for the argparse structural rewrite; nil when
	// no parser value is live in the current function.
	argParser *argParserTracker

	// pending receives items (derive structs, enums) that must precede the
	// current function at module level.
	pending []string
}

// Output is the result of emitting one module.
type Output struct {
	// Source is the emitted Rust source.
	Source string

	// Needs is the sorted crate dependency list for the manifest.
	Needs []string

	// Errors lists the per-function errors; functions with errors emitted as
	// stubs.  Fatal errors abort emission instead.
	Errors []error

	// Emitted counts the functions that emitted successfully.
	Emitted int
}

// NewGenerator creates a generator for one module.
func NewGenerator(mod *hir.Module, mapper *types.Mapper, results map[*hir.Func]*borrow.Result) *Generator {
	return &Generator{
		mod:         mod,
		mapper:      mapper,
		results:     results,
		needs:       make(map[string]bool),
		uses:        make(map[string]bool),
		globals:     make(map[string]bool),
		classFields: make(map[string]map[string]types.PyType),
		funcs:       make(map[string][]*hir.Param),
		classes:     make(map[string]bool),
	}
}

// Generate emits the whole module.  Emission is deterministic: the same
// (HIR, strategies) pair yields byte-identical output.
func (g *Generator) Generate() (*Output, error) {
	out := &Output{}

	// Record module globals and signatures before any function body
	// references them.
	for _, item := range g.mod.Items {
		switch v := item.(type) {
		case *hir.Constant:
			g.globals[v.Name] = v.Mutable
		case *hir.Class:
			fields := make(map[string]types.PyType)
			for _, f := range v.Fields {
				fields[f.Name] = f.Type
			}
			g.classFields[v.Name] = fields
			g.classes[v.Name] = true

			for _, m := range v.Methods {
				if m.Name == "__init__" {
					g.funcs["__init__:"+v.Name] = m.Params
				}
			}
		case *hir.Func:
			g.funcs[v.Name] = v.Params
		}
	}

	var body strings.Builder

	if g.mod.Docstring != "" {
		for _, line := range strings.Split(strings.TrimSpace(g.mod.Docstring), "\n") {
			body.WriteString("//! " + strings.TrimSpace(line) + "\n")
		}
		body.WriteString("\n")
	}

	for _, item := range g.mod.Items {
		text, err := g.genItem(item)
		if err != nil {
			if terr, ok := err.(report.TranspileError); ok && terr.Fatal() {
				return nil, err
			}

			out.Errors = append(out.Errors, err)

			if fn, ok := item.(*hir.Func); ok {
				text = g.genStub(fn, err)
			} else {
				continue
			}
		} else if _, ok := item.(*hir.Func); ok {
			out.Emitted++
		}

		if text != "" {
			for _, pre := range g.pending {
				body.WriteString(pre)
				body.WriteString("\n")
			}
			g.pending = nil

			body.WriteString(text)
			body.WriteString("\n")
		}
	}

	var final strings.Builder
	g.writePreamble(&final)
	final.WriteString(body.String())

	if g.needsRuntime {
		final.WriteString("\n")
		final.WriteString(runtimeModule)
	}

	out.Source = final.String()

	for need := range g.needs {
		out.Needs = append(out.Needs, need)
	}
	sort.Strings(out.Needs)

	return out, nil
}

// genItem emits one top-level item.
func (g *Generator) genItem(item hir.Item) (text string, err error) {
	defer report.Catch(&err)

	switch v := item.(type) {
	case *hir.Func:
		return g.genFunc(v, ""), nil
	case *hir.Class:
		return g.genClass(v), nil
	case *hir.Protocol:
		return g.genProtocol(v), nil
	case *hir.TypeAlias:
		return g.genTypeAlias(v), nil
	case *hir.Constant:
		return g.genConstant(v), nil
	case *hir.Import:
		// Imports only steer call routing; they emit nothing themselves.
		return "", nil
	case *hir.TopStmt:
		// Free module statements outside any function have no Rust analogue at
		// item level; they fold into a main function only when one exists, so
		// a bare statement is unsupported.
		report.Raise(v.Span(), "free module-level statement")
	}

	report.RaiseInternal("unknown HIR item %T", item)
	return "", nil
}

// writePreamble writes the `use` block derived from everything the emitted
// items touched.
func (g *Generator) writePreamble(sb *strings.Builder) {
	if g.needsRuntime {
		g.uses["depyler_runtime::DepylerValue"] = true
	}

	if len(g.uses) == 0 {
		return
	}

	paths := make([]string, 0, len(g.uses))
	for path := range g.uses {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		sb.WriteString("use " + path + ";\n")
	}
	sb.WriteString("\n")
}

// -----------------------------------------------------------------------------

// need records a crate dependency.
func (g *Generator) need(crate string) {
	g.needs[crate] = true
}

// use_ records a use path for the preamble.
func (g *Generator) use_(path string) {
	g.uses[path] = true
}

// resetFunc clears the per-function emit state.
func (g *Generator) resetFunc(fn *hir.Func) {
	g.fn = fn
	g.fnDynamic = false
	g.retResult = false
	g.locals = make(map[string]types.PyType)
	g.declared = make(map[string]bool)
	g.mutatedLocals = scanMutatedLocals(fn.Body)
	g.lifted = make(map[*hir.NamedExpr]bool)
	g.walrusNames = make(map[string]bool)
	g.argParser = nil
	g.labelCount = 0
	g.loops = nil
	g.tmpCount = 0
}

// line writes one indented line into a builder.
func (g *Generator) line(sb *strings.Builder, format string, args ...interface{}) {
	sb.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\n")
}

// genStub emits a stub for a function that failed with a per-function error.
func (g *Generator) genStub(fn *hir.Func, err error) string {
	var sb strings.Builder
	g.line(&sb, "fn %s() {", sanitizeIdent(fn.Name))
	g.indent++
	g.line(&sb, "unimplemented!(%q);", err.Error())
	g.indent--
	g.line(&sb, "}")
	return sb.String()
}
