package pyast

import "depyler/common"

// Expr is the interface for all Python expression nodes.
type Expr interface {
	Node
	exprNode()
}

// ExprBase is the base struct for all expression nodes.
type ExprBase struct {
	NodeBase
}

func (ExprBase) exprNode() {}

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

// Literal represents a literal value.  The value is stored as written in the
// source; the builder interprets it according to Kind.
type Literal struct {
	ExprBase

	// Kind should be one of the enumerated literal kinds.
	Kind  int
	Value string
}

// Name represents a named value reference.
type Name struct {
	ExprBase

	Name string
}

// BinOp represents a binary operator application.  Python's `and`/`or` arrive
// as BinOps too; comparison chains arrive as Compare.
type BinOp struct {
	ExprBase

	Op       common.BinaryOp
	Lhs, Rhs Expr
}

// Compare represents a comparison chain such as `a < b <= c`.
type Compare struct {
	ExprBase

	Left  Expr
	Ops   []common.BinaryOp
	Rest  []Expr
}

// UnaryExpr represents a unary operator application.
type UnaryExpr struct {
	ExprBase

	Op      common.UnaryOp
	Operand Expr
}

// Call represents a function call.
type Call struct {
	ExprBase

	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

// Keyword is a keyword argument at a call site.
type Keyword struct {
	Name  string
	Value Expr
}

// Attribute represents an attribute access (`x.f`).
type Attribute struct {
	ExprBase

	Value Expr
	Attr  string
}

// Subscript represents an index access (`a[i]`).  Slicing arrives with a
// SliceExpr in Index.
type Subscript struct {
	ExprBase

	Value Expr
	Index Expr
}

// SliceExpr represents the `start:stop:step` form inside a subscript.  Any of
// the three bounds may be nil.
type SliceExpr struct {
	ExprBase

	Start, Stop, Step Expr
}

// TupleExpr represents a tuple display.
type TupleExpr struct {
	ExprBase

	Elts []Expr
}

// ListExpr represents a list display.
type ListExpr struct {
	ExprBase

	Elts []Expr
}

// SetExpr represents a set display.
type SetExpr struct {
	ExprBase

	Elts []Expr
}

// DictExpr represents a dict display.
type DictExpr struct {
	ExprBase

	Keys   []Expr
	Values []Expr
}

// Comp represents a list, set, dict, or generator comprehension with a single
// generator clause.  Front-ends lower multi-generator comprehensions before
// handing them to the pipeline or mark them unsupported.
type Comp struct {
	ExprBase

	// Kind should be one of the enumerated comprehension kinds.
	Kind int

	// Element is the produced element; for dict comprehensions it is the value
	// and Key holds the key.
	Element Expr
	Key     Expr

	// Target is the comprehension variable: a Name or Tuple of Names.
	Target Expr

	Iter Expr

	// Condition is the filter, or nil if absent.
	Condition Expr
}

// Enumeration of comprehension kinds.
const (
	CompList = iota
	CompSet
	CompDict
	CompGenerator
)

// Lambda represents a lambda expression.
type Lambda struct {
	ExprBase

	Params []*Param
	Body   Expr
}

// Await represents an `await` expression.
type Await struct {
	ExprBase

	Value Expr
}

// IfExp represents a conditional expression (`a if t else b`).
type IfExp struct {
	ExprBase

	Test, Body, Orelse Expr
}

// NamedExpr represents a walrus assignment expression (`x := e`).
type NamedExpr struct {
	ExprBase

	Target string
	Value  Expr
}

// FString represents an f-string.  Parts alternate between literal text and
// interpolated expressions.
type FString struct {
	ExprBase

	Parts []FStringPart
}

// FStringPart is one segment of an f-string: either literal text or an
// interpolated expression.
type FStringPart struct {
	// Text is the literal text; empty when Expr is set.
	Text string

	// Expr is the interpolated expression, or nil for a literal part.
	Expr Expr
}

// Yield represents a `yield` or `yield from` expression.  The pipeline never
// translates these: the builder reports them as unsupported generators.
type Yield struct {
	ExprBase

	Value  Expr
	IsFrom bool
}

// Starred represents a `*x` unpacking expression.
type Starred struct {
	ExprBase

	Value Expr
}
