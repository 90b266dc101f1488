package hir

import "depyler/types"

// Stmt is the interface for all HIR statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// StmtBase is the base struct for all statement nodes.
type StmtBase struct {
	NodeBase
}

func (StmtBase) stmtNode() {}

// -----------------------------------------------------------------------------

// AssignTarget is the interface for assignment targets: a simple symbol, an
// attribute, an index, or a tuple unpacking.
type AssignTarget interface {
	Node
	targetNode()
}

// SymbolTarget assigns to a simple name.
type SymbolTarget struct {
	NodeBase

	Name string
}

func (*SymbolTarget) targetNode() {}

// AttrTarget assigns to an attribute (`x.f = e`).
type AttrTarget struct {
	NodeBase

	Object Expr
	Attr   string
}

func (*AttrTarget) targetNode() {}

// IndexTarget assigns to an index (`a[i] = e`).
type IndexTarget struct {
	NodeBase

	Base  Expr
	Index Expr
}

func (*IndexTarget) targetNode() {}

// TupleTarget unpacks into multiple targets (`a, b = e`).
type TupleTarget struct {
	NodeBase

	Elts []AssignTarget
}

func (*TupleTarget) targetNode() {}

// -----------------------------------------------------------------------------

// Assign represents an assignment statement.
type Assign struct {
	StmtBase

	Target AssignTarget
	Value  Expr

	// Type is the declared annotation on an annotated assignment, or nil.
	Type types.PyType
}

// Return represents a return statement.
type Return struct {
	StmtBase

	// Value is the returned expression, or nil for a bare `return`.
	Value Expr
}

// If represents a conditional statement.  Chained `elif` arrives already
// lowered to a nested If in Else.
type If struct {
	StmtBase

	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While represents a while loop.  ElseBody is present only if the Python
// source used the `else` clause.
type While struct {
	StmtBase

	Cond     Expr
	Body     []Stmt
	ElseBody []Stmt
}

// For represents a for loop.  The target is a local binding: it never appears
// in the parameter usage map.  ElseBody is present only if the Python source
// used the `else` clause.
type For struct {
	StmtBase

	Target   AssignTarget
	Iter     Expr
	Body     []Stmt
	ElseBody []Stmt
}

// ExprStmt represents a bare expression statement.
type ExprStmt struct {
	StmtBase

	Value Expr
}

// Raise represents a raise statement.
type Raise struct {
	StmtBase

	// Exc is the raised exception, or nil for a bare re-raise.
	Exc Expr

	// Cause is the `from` cause, or nil.
	Cause Expr
}

// With represents a context-manager statement.  The context is guaranteed to
// be released on every exit path: emission relies on Rust's drop discipline
// at scope exit instead of an explicit __exit__ call.
type With struct {
	StmtBase

	Context Expr

	// Target is the `as` binding, or "".
	Target string

	Body []Stmt
}

// Try represents a try/except statement.
type Try struct {
	StmtBase

	Body     []Stmt
	Handlers []*Handler
	Final    []Stmt
}

// Handler is one except clause.
type Handler struct {
	NodeBase

	// ExcType is the matched exception type name, or "" for a bare except.
	ExcType string

	// Binding is the `as` name, or "".
	Binding string

	Body []Stmt
}

// Break represents a break statement with an optional loop label.
type Break struct {
	StmtBase

	Label string
}

// Continue represents a continue statement with an optional loop label.
type Continue struct {
	StmtBase

	Label string
}

// Pass represents a pass statement.
type Pass struct {
	StmtBase
}
