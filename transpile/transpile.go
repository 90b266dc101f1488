// Package transpile is the pipeline entry point: it chains parsing, HIR
// building, borrowing analysis, Rust emission, and manifest synthesis for one
// Python module.
package transpile

import (
	"errors"
	"fmt"
	"sync"

	"depyler/borrow"
	"depyler/build"
	"depyler/codegen"
	"depyler/common"
	"depyler/hir"
	"depyler/manifest"
	"depyler/report"
	"depyler/types"
)

// Result is the output of one successful transpilation.
type Result struct {
	// RustSource is the emitted Rust module.
	RustSource string

	// Manifest is the generated Cargo.toml text.
	Manifest string

	// Emitted and Total count the functions that emitted cleanly and the
	// functions attempted.
	Emitted int
	Total   int

	// Errors lists the per-function errors of functions that were truncated
	// to stubs.
	Errors []error

	// Denied lists manifest needs dropped by the dependency allowlist.
	Denied []string
}

// Transpile converts one Python source file into a Rust module and a Cargo
// manifest.  Fatal errors (malformed source, internal invariant violations)
// fail the whole call; per-function errors truncate only their function, and
// the call still succeeds while at least one function emitted.
func Transpile(fileName string, src []byte, opts Options) (*Result, error) {
	if opts.Parser == nil {
		return nil, errors.New("no Python parser configured")
	}
	if opts.IntWidth == 0 {
		opts.IntWidth = 64
	}

	reporter := report.NewReporter(opts.LogLevel)

	// Phase A: parse and lower into HIR.
	reporter.ReportPhase("parsing " + fileName)

	pymod, err := opts.Parser.Parse(fileName, src)
	if err != nil {
		perr := &report.ParseError{Message: err.Error()}
		reporter.ReportError(fileName, perr)
		return nil, perr
	}

	mapper := types.NewMapper(opts.Dynamic)
	if opts.IntWidth == 64 {
		mapper.IntWidth = types.RustI64
	}

	reporter.ReportPhase("building HIR for " + pymod.Name)

	hirMod, buildErrs := build.NewBuilder(pymod, mapper).Build()

	result := &Result{}

	for _, berr := range buildErrs {
		if terr, ok := berr.(report.TranspileError); ok {
			if terr.Fatal() {
				reporter.ReportError(fileName, terr)
				return nil, terr
			}
			reporter.ReportError(fileName, terr)
		}
		result.Errors = append(result.Errors, berr)
	}

	// Phase C: borrowing analysis, fanned out across functions.  Functions
	// share no mutable state after lowering, so each analysis runs on its own
	// goroutine; determinism holds because every function's analysis touches
	// only its own parameters.
	funcs := collectFuncs(hirMod)
	results := analyzeAll(funcs, mapper)

	for _, fn := range funcs {
		for _, insight := range results[fn].Insights {
			if insight.Kind == borrow.InsightBorrowConflict {
				reporter.ReportWarning(fileName, &report.BorrowConflict{
					Param:   insight.Param,
					Message: insight.Message,
				})
			}
		}
	}

	// Phase D: emission, sequential in source order.
	reporter.ReportPhase("emitting Rust for " + hirMod.Name)

	out, err := codegen.NewGenerator(hirMod, mapper, results).Generate()
	if err != nil {
		if terr, ok := err.(report.TranspileError); ok {
			reporter.ReportError(fileName, terr)
		}
		return nil, err
	}

	for _, gerr := range out.Errors {
		if terr, ok := gerr.(report.TranspileError); ok {
			reporter.ReportError(fileName, terr)
		}
		result.Errors = append(result.Errors, gerr)
	}

	result.RustSource = out.Source
	result.Emitted = out.Emitted
	result.Total = countTopFuncs(hirMod)

	// Partial output is acceptable only when something emitted.
	if result.Total > 0 && result.Emitted == 0 {
		return nil, fmt.Errorf("no function in %s could be translated", fileName)
	}

	cargo, denied, err := manifest.Generate(hirMod.Name, common.RustEdition, out.Needs, opts.Allow)
	if err != nil {
		return nil, err
	}

	result.Manifest = cargo
	result.Denied = denied

	for _, crate := range denied {
		reporter.ReportWarning(fileName, &report.Advisory{
			Message: fmt.Sprintf("dependency %s dropped by allowlist", crate),
		})
	}

	return result, nil
}

// collectFuncs gathers every function in the module, methods included.
func collectFuncs(mod *hir.Module) []*hir.Func {
	var funcs []*hir.Func

	for _, item := range mod.Items {
		switch v := item.(type) {
		case *hir.Func:
			funcs = append(funcs, v)
		case *hir.Class:
			funcs = append(funcs, v.Methods...)
		}
	}

	return funcs
}

// countTopFuncs counts the module's top-level functions, the unit of the
// partial-output rule.
func countTopFuncs(mod *hir.Module) int {
	count := 0
	for _, item := range mod.Items {
		if _, ok := item.(*hir.Func); ok {
			count++
		}
	}

	return count
}

// analyzeAll runs borrowing analysis on every function in parallel and joins
// the results keyed by function identity.
func analyzeAll(funcs []*hir.Func, mapper *types.Mapper) map[*hir.Func]*borrow.Result {
	results := make([]*borrow.Result, len(funcs))

	var wg sync.WaitGroup
	for i, fn := range funcs {
		wg.Add(1)

		go func(i int, fn *hir.Func) {
			defer wg.Done()
			results[i] = borrow.AnalyzeFunc(fn, mapper)
		}(i, fn)
	}
	wg.Wait()

	joined := make(map[*hir.Func]*borrow.Result, len(funcs))
	for i, fn := range funcs {
		joined[fn] = results[i]
	}

	return joined
}
