package report

import "fmt"

// TranspileError is the interface implemented by every error kind the pipeline
// can surface.  All kinds carry a source span when one is available.
type TranspileError interface {
	error

	// Span returns the span of Python source the error refers to.  It may be
	// nil when no position information is available.
	Span() *TextSpan

	// Fatal indicates whether the error aborts the whole module (true) or only
	// the containing function (false).
	Fatal() bool
}

// -----------------------------------------------------------------------------

// ParseError indicates malformed Python handed to the pipeline by the
// front-end.  It is always fatal: no output is produced.
type ParseError struct {
	Message  string
	Position *TextSpan
}

func (pe *ParseError) Error() string {
	return "parse error: " + pe.Message
}

func (pe *ParseError) Span() *TextSpan { return pe.Position }

func (pe *ParseError) Fatal() bool { return true }

// -----------------------------------------------------------------------------

// UnsupportedConstruct indicates a recognized but untranslatable Python
// construct (eg. `yield from`).  It truncates the containing function to a
// stub; other functions in the module still emit.
type UnsupportedConstruct struct {
	// Kind names the offending construct, eg. "generator", "async for".
	Kind string

	Position *TextSpan
}

func (uc *UnsupportedConstruct) Error() string {
	return fmt.Sprintf("unsupported construct: %s", uc.Kind)
}

func (uc *UnsupportedConstruct) Span() *TextSpan { return uc.Position }

func (uc *UnsupportedConstruct) Fatal() bool { return false }

// -----------------------------------------------------------------------------

// TypeMappingFailure indicates that the type mapper could not place a Python
// type expression into the Rust type model while dynamic boxing was disabled.
// The containing function downgrades to boxed emission rather than failing the
// module.
type TypeMappingFailure struct {
	// Expr is a printable rendition of the unmappable type expression.
	Expr string

	Position *TextSpan
}

func (tmf *TypeMappingFailure) Error() string {
	return fmt.Sprintf("cannot map `%s` into the Rust type model", tmf.Expr)
}

func (tmf *TypeMappingFailure) Span() *TextSpan { return tmf.Position }

func (tmf *TypeMappingFailure) Fatal() bool { return false }

// -----------------------------------------------------------------------------

// BorrowConflict is an advisory produced by borrowing analysis when two usage
// sites of a parameter would require incompatible borrows.  It is never fatal:
// the analysis falls back to ownership and the emitter surfaces the conflict
// as a comment.
type BorrowConflict struct {
	// Param is the name of the conflicting parameter.
	Param string

	Message  string
	Position *TextSpan
}

func (bc *BorrowConflict) Error() string {
	return fmt.Sprintf("borrow conflict on `%s`: %s", bc.Param, bc.Message)
}

func (bc *BorrowConflict) Span() *TextSpan { return bc.Position }

func (bc *BorrowConflict) Fatal() bool { return false }

// -----------------------------------------------------------------------------

// Advisory is a non-fatal informational message that is neither an error nor
// a borrow conflict, such as a dependency dropped by the allowlist.
type Advisory struct {
	Message string
}

func (a *Advisory) Error() string { return a.Message }

func (a *Advisory) Span() *TextSpan { return nil }

func (a *Advisory) Fatal() bool { return false }

// -----------------------------------------------------------------------------

// InternalError indicates an invariant violation inside the emitter.  These
// are never supposed to happen and always abort the module.
type InternalError struct {
	Message string
}

func (ie *InternalError) Error() string {
	return "internal error: " + ie.Message
}

func (ie *InternalError) Span() *TextSpan { return nil }

func (ie *InternalError) Fatal() bool { return true }

// -----------------------------------------------------------------------------

// Raise panics with an UnsupportedConstruct error.  It is used inside the
// emitter and builder where threading an error return through every visit
// method would obscure the translation logic; the panic is caught at the
// function boundary by Catch.
func Raise(span *TextSpan, kind string, args ...interface{}) {
	panic(&UnsupportedConstruct{Kind: fmt.Sprintf(kind, args...), Position: span})
}

// RaiseInternal panics with an InternalError.
func RaiseInternal(msg string, args ...interface{}) {
	panic(&InternalError{Message: fmt.Sprintf(msg, args...)})
}

// Catch recovers a TranspileError panic raised during translation of a single
// function and stores it into *err.  Panics that are not TranspileErrors are
// re-raised: they are genuine bugs and should crash loudly.
// NB: This function must ALWAYS be deferred.
func Catch(err *error) {
	if x := recover(); x != nil {
		if terr, ok := x.(TranspileError); ok {
			*err = terr
		} else {
			panic(x)
		}
	}
}
