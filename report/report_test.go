package report

import (
	"errors"
	"sync"
	"testing"
)

func TestReporterAccumulates(t *testing.T) {
	r := NewReporter(LogLevelSilent)

	if r.AnyErrors() {
		t.Error("a fresh reporter should have no errors")
	}

	r.ReportError("x.py", &UnsupportedConstruct{Kind: "generator"})
	r.ReportWarning("x.py", &BorrowConflict{Param: "xs", Message: "mixed moves"})

	if !r.AnyErrors() {
		t.Error("the reported error was not recorded")
	}

	if len(r.Errors()) != 1 || len(r.Warnings()) != 1 {
		t.Errorf("expected 1 error and 1 warning, got %d and %d", len(r.Errors()), len(r.Warnings()))
	}
}

func TestReporterConcurrentReports(t *testing.T) {
	r := NewReporter(LogLevelSilent)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ReportError("x.py", &TypeMappingFailure{Expr: "Unknown"})
		}()
	}
	wg.Wait()

	if len(r.Errors()) != 16 {
		t.Errorf("expected 16 errors, got %d", len(r.Errors()))
	}
}

func TestErrorFatality(t *testing.T) {
	testCases := []struct {
		err   TranspileError
		fatal bool
	}{
		{&ParseError{Message: "bad indent"}, true},
		{&InternalError{Message: "impossible"}, true},
		{&UnsupportedConstruct{Kind: "generator"}, false},
		{&TypeMappingFailure{Expr: "Unknown"}, false},
		{&BorrowConflict{Param: "xs"}, false},
		{&Advisory{Message: "dropped"}, false},
	}

	for _, tc := range testCases {
		if tc.err.Fatal() != tc.fatal {
			t.Errorf("%T: expected Fatal() == %v", tc.err, tc.fatal)
		}
	}
}

func TestCatchRecoversTranspileErrors(t *testing.T) {
	run := func() (err error) {
		defer Catch(&err)
		Raise(nil, "construct %s", "yield from")
		return nil
	}

	err := run()
	if err == nil {
		t.Fatal("expected the raised error to be caught")
	}

	uc, ok := err.(*UnsupportedConstruct)
	if !ok {
		t.Fatalf("expected *UnsupportedConstruct, got %T", err)
	}

	if uc.Kind != "construct yield from" {
		t.Errorf("unexpected kind %q", uc.Kind)
	}
}

func TestCatchRepanicsForeignPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("a non-transpile panic must propagate")
		}
	}()

	var err error
	defer func() {
		_ = err
	}()

	func() {
		defer Catch(&err)
		panic(errors.New("genuine bug"))
	}()
}
