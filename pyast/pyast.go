package pyast

import "depyler/report"

// Node is the abstract interface for all Python AST nodes.
type Node interface {
	// Span returns the text span of the node in the Python source.
	Span() *report.TextSpan
}

// NodeBase is a utility base struct for all AST nodes.
type NodeBase struct {
	// The span over which the AST node occurs.
	span *report.TextSpan
}

// NewNodeBaseOn creates a new node base with the given span.
func NewNodeBaseOn(span *report.TextSpan) NodeBase {
	return NodeBase{span: span}
}

// NewNodeBaseOver creates a new node base spanning over two spans.
func NewNodeBaseOver(start, end *report.TextSpan) NodeBase {
	return NodeBase{span: report.NewSpanOver(start, end)}
}

func (nb NodeBase) Span() *report.TextSpan {
	return nb.span
}

// -----------------------------------------------------------------------------

// Module is the root of a parsed Python file.
type Module struct {
	NodeBase

	// The representative name of the module (the file stem).
	Name string

	// The ordered top-level statements of the module.
	Body []Stmt
}

// Parser is the interface the external Python front-end must satisfy.  The
// pipeline never parses Python itself: it consumes whatever AST the front-end
// hands it.
type Parser interface {
	// Parse parses a Python source file into a module AST.  A syntax error is
	// returned as a *report.ParseError.
	Parse(fileName string, src []byte) (*Module, error)
}
