package hir

import (
	"depyler/report"
	"depyler/types"
)

// Node is the abstract interface for all HIR nodes.  HIR nodes are constructed
// once by the builder, typed once, annotated once by borrowing analysis,
// consumed once by the emitter, then discarded.  Types and strategies are
// attached to nodes by identity, never by value.
type Node interface {
	// Span returns the span of the Python source the node was lowered from.
	Span() *report.TextSpan
}

// NodeBase is a utility base struct for all HIR nodes.
type NodeBase struct {
	span *report.TextSpan
}

// NewNodeBaseOn creates a new node base with the given span.
func NewNodeBaseOn(span *report.TextSpan) NodeBase {
	return NodeBase{span: span}
}

func (nb NodeBase) Span() *report.TextSpan {
	return nb.span
}

// -----------------------------------------------------------------------------

// Module is an ordered collection of top-level items.
type Module struct {
	// The module name, used to derive the crate name.
	Name string

	// The module docstring, or "".
	Docstring string

	Items []Item
}

// Item is the interface for top-level items: functions, classes, type
// aliases, protocols, constants, imports, and free-standing statements.
type Item interface {
	Node
	itemNode()
}

// ItemBase is the base struct for all top-level items.
type ItemBase struct {
	NodeBase

	// The item docstring, or "".
	Docstring string

	// Annotations is the user-visible pragma bag (transpilation hints), keyed
	// by pragma name.
	Annotations map[string]string
}

func (ItemBase) itemNode() {}

// -----------------------------------------------------------------------------

// Func represents a function or method.
type Func struct {
	ItemBase

	Name string

	// The ordered parameter list.
	Params []*Param

	// The declared return type.  Absent annotations become Unknown.
	Returns types.PyType

	Body []Stmt

	Props FuncProperties

	// Method-only flags; all false for free functions.
	IsStatic    bool
	IsClassm    bool
	IsProperty  bool
}

// Param is one function parameter.
type Param struct {
	NodeBase

	Name string

	// The declared parameter type.  Absent annotations become Unknown.
	Type types.PyType

	// The default value, or nil.
	Default Expr

	// Strategy is attached by borrowing analysis; nil until then.
	Strategy *Strategy
}

// FuncProperties is the record the builder fills by walking the body once.
// These feed later passes but are never authoritative: the borrowing context
// remains the source of truth for ownership.
type FuncProperties struct {
	Pure           bool
	Recursive      bool
	UsesExceptions bool
	IsAsync        bool
	CapturesSelf   bool
}

// -----------------------------------------------------------------------------

// Class represents a class definition.
type Class struct {
	ItemBase

	Name string

	Fields  []*Field
	Methods []*Func

	Bases []string

	// IsDataclass marks `@dataclass`-decorated classes.
	IsDataclass bool

	// TypeParams holds generic type parameter names.
	TypeParams []string
}

// Field is one declared class field.
type Field struct {
	NodeBase

	Name string
	Type types.PyType

	// Default is the field initializer, or nil.
	Default Expr

	// ClassLevel distinguishes class-level fields from instance fields.
	ClassLevel bool
}

// -----------------------------------------------------------------------------

// TypeAlias represents a top-level `Name = SomeType` alias.
type TypeAlias struct {
	ItemBase

	Name string
	Type types.PyType
}

// Protocol represents a structural interface (`class P(Protocol)`).
type Protocol struct {
	ItemBase

	Name    string
	Methods []*Func
}

// Constant represents a top-level constant binding.
type Constant struct {
	ItemBase

	Name  string
	Type  types.PyType
	Value Expr

	// Mutable marks module-level bindings that are reassigned somewhere in
	// the module; these become lock-wrapped statics.
	Mutable bool
}

// Import represents an import of a Python module.
type Import struct {
	ItemBase

	Module string
	Names  []string
}

// TopStmt wraps a free-standing top-level statement.
type TopStmt struct {
	ItemBase

	Stmt Stmt
}
