package hir

import (
	"depyler/common"
	"depyler/types"
)

// Expr is the interface for all HIR expression nodes.  Every expression
// carries the Python type inferred for it; Unknown when no type could be
// recovered.
type Expr interface {
	Node

	// Type is the inferred Python type of the expression.
	Type() types.PyType

	// SetType sets the inferred type of the expression.
	SetType(types.PyType)
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	NodeBase

	typ types.PyType
}

// NewExprBase creates an expression base with the given span and type.
func NewExprBase(base NodeBase, typ types.PyType) ExprBase {
	return ExprBase{NodeBase: base, typ: typ}
}

func (eb *ExprBase) Type() types.PyType {
	if eb.typ == nil {
		return types.PyUnknown{}
	}

	return eb.typ
}

func (eb *ExprBase) SetType(typ types.PyType) {
	eb.typ = typ
}

// -----------------------------------------------------------------------------

// Enumeration of literal kinds.
const (
	LitInt = iota
	LitFloat
	LitStr
	LitBytes
	LitBool
	LitNone
)

// Literal represents a literal value stored as written in the source.
type Literal struct {
	ExprBase

	Kind  int
	Value string
}

// Var represents a reference to a named binding.
type Var struct {
	ExprBase

	Name string

	// IsParam marks references to the enclosing function's parameters.
	IsParam bool
}

// Binary represents a binary operator application.
type Binary struct {
	ExprBase

	Op       common.BinaryOp
	Lhs, Rhs Expr
}

// Unary represents a unary operator application.
type Unary struct {
	ExprBase

	Op      common.UnaryOp
	Operand Expr
}

// Call represents a function call.
type Call struct {
	ExprBase

	// Func is the callee name, possibly dotted (`hashlib.sha256`).
	Func string

	Args   []Expr
	Kwargs []Kwarg
}

// Kwarg is one keyword argument at a call site.
type Kwarg struct {
	Name  string
	Value Expr
}

// MethodCall represents a method call on an object.
type MethodCall struct {
	ExprBase

	Object Expr
	Method string
	Args   []Expr
	Kwargs []Kwarg
}

// Attribute represents an attribute access.
type Attribute struct {
	ExprBase

	Object Expr
	Attr   string
}

// Index represents a subscript access (`a[i]`).
type Index struct {
	ExprBase

	Base  Expr
	Idx   Expr
}

// Slice represents a slice access (`a[start:stop:step]`).  Any bound may be
// nil.
type Slice struct {
	ExprBase

	Base              Expr
	Start, Stop, Step Expr
}

// -----------------------------------------------------------------------------

// Tuple represents a tuple display.
type Tuple struct {
	ExprBase

	Elts []Expr
}

// List represents a list display.
type List struct {
	ExprBase

	Elts []Expr
}

// Set represents a set or frozenset display.
type Set struct {
	ExprBase

	Elts   []Expr
	Frozen bool
}

// Dict represents a dict display.
type Dict struct {
	ExprBase

	Keys   []Expr
	Values []Expr
}

// -----------------------------------------------------------------------------

// Enumeration of comprehension kinds.
const (
	CompList = iota
	CompSet
	CompDict
)

// Comp represents a list, set, or dict comprehension.  The target is a local
// binding scoped to the comprehension.
type Comp struct {
	ExprBase

	Kind int

	// Element is the produced element; Key is set only for dict
	// comprehensions.
	Element Expr
	Key     Expr

	Target AssignTarget
	Iter   Expr

	// Condition is the filter, or nil.
	Condition Expr
}

// Lambda represents a lambda with its captures classified.
type Lambda struct {
	ExprBase

	Params []string
	Body   Expr

	// Captures lists the free variables the lambda closes over.
	Captures []string
}

// Await represents an await expression.
type Await struct {
	ExprBase

	Value Expr
}

// IfExpr represents a conditional expression.
type IfExpr struct {
	ExprBase

	Test, Body, Orelse Expr
}

// NamedExpr represents a walrus assignment expression.  The emitter lifts the
// binding out of conditions into a preceding let statement.
type NamedExpr struct {
	ExprBase

	Target string
	Value  Expr
}

// FString represents an f-string; parts alternate between literal text and
// interpolated expressions.
type FString struct {
	ExprBase

	Parts []FStringPart
}

// FStringPart is one f-string segment.
type FStringPart struct {
	Text string
	Expr Expr
}

// Borrow is a synthetic node injected during borrowing analysis to make an
// inferred borrow explicit to the emitter.
type Borrow struct {
	ExprBase

	Operand Expr
	Mutable bool
}
