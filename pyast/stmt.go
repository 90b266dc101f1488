package pyast

// Stmt is the interface for all Python statement nodes.
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

// FuncDef represents a function or method definition.
type FuncDef struct {
	StmtBase

	Name string

	// The ordered parameter list.  For methods this includes `self`.
	Params []*Param

	// The declared return type annotation, or nil if absent.
	Returns Expr

	Body []Stmt

	// The docstring, or "" if the body does not begin with a string literal.
	Docstring string

	// Decorator expressions, outermost first.
	Decorators []Expr

	IsAsync bool
}

// Param is a single function parameter.
type Param struct {
	NodeBase

	Name string

	// The type annotation expression, or nil if the parameter is unannotated.
	Annotation Expr

	// The default value expression, or nil.
	Default Expr
}

// ClassDef represents a class definition.
type ClassDef struct {
	StmtBase

	Name string

	// Base class expressions.
	Bases []Expr

	Body []Stmt

	Docstring string

	Decorators []Expr
}

// -----------------------------------------------------------------------------

// Assign represents an assignment statement, including annotated and augmented
// forms.  For plain assignment Op is nil; for `x += e` Op holds the compound
// operator.
type Assign struct {
	StmtBase

	// The assignment targets.  Multiple targets encode `a = b = e`.
	Targets []Expr

	Value Expr

	// The type annotation on an annotated assignment, or nil.
	Annotation Expr

	// The compound operator of an augmented assignment, or nil.
	Op *AugOp
}

// AugOp wraps the binary operator of an augmented assignment.
type AugOp struct {
	Kind int // a common.BinaryOp value
}

// Return represents a return statement.
type Return struct {
	StmtBase

	// The returned expression, or nil for a bare `return`.
	Value Expr
}

// If represents an `if` statement.  An `elif` chain arrives from the front-end
// as a nested If in Orelse.
type If struct {
	StmtBase

	Cond Expr
	Body []Stmt

	// The `else` (or `elif`) body; empty if absent.
	Orelse []Stmt
}

// While represents a `while` loop.
type While struct {
	StmtBase

	Cond Expr
	Body []Stmt

	// The `else` clause body; empty if absent.
	Orelse []Stmt
}

// For represents a `for` loop.
type For struct {
	StmtBase

	// The loop target: a Name or a Tuple of Names.
	Target Expr

	Iter Expr
	Body []Stmt

	// The `else` clause body; empty if absent.
	Orelse []Stmt

	IsAsync bool
}

// ExprStmt represents a bare expression statement.
type ExprStmt struct {
	StmtBase

	Value Expr
}

// Raise represents a `raise` statement.
type Raise struct {
	StmtBase

	// The raised exception, or nil for a bare re-raise.
	Exc Expr

	// The `from` cause, or nil.
	Cause Expr
}

// With represents a `with` statement with a single context manager.
type With struct {
	StmtBase

	Context Expr

	// The `as` target name, or "" if absent.
	Target string

	Body []Stmt

	IsAsync bool
}

// Try represents a `try` statement.
type Try struct {
	StmtBase

	Body     []Stmt
	Handlers []*ExceptHandler
	Orelse   []Stmt
	Final    []Stmt
}

// ExceptHandler is a single `except` clause.
type ExceptHandler struct {
	NodeBase

	// The matched exception type expression, or nil for a bare `except`.
	Type Expr

	// The `as` binding, or "".
	Name string

	Body []Stmt
}

// Break represents a `break` statement.
type Break struct {
	StmtBase
}

// Continue represents a `continue` statement.
type Continue struct {
	StmtBase
}

// Pass represents a `pass` statement.
type Pass struct {
	StmtBase
}

// Import represents an `import` or `from ... import` statement.
type Import struct {
	StmtBase

	// The imported module path, eg. "hashlib".
	Module string

	// The imported names for a `from` import; empty for a plain import.
	Names []ImportName
}

// ImportName is one name in a `from ... import` list.
type ImportName struct {
	Name  string
	Alias string
}

// Global represents a `global` or `nonlocal` declaration.
type Global struct {
	StmtBase

	Names []string

	// IsNonlocal distinguishes `nonlocal` from `global`.
	IsNonlocal bool
}
