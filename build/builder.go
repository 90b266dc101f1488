package build

import (
	"depyler/hir"
	"depyler/pyast"
	"depyler/report"
	"depyler/types"
)

// Builder lowers a Python AST module into an HIR module.  It resolves names,
// normalizes control flow, captures type annotations, and classifies function
// properties.  Borrowing analysis runs later and remains the source of truth
// for ownership.
type Builder struct {
	mod *pyast.Module

	mapper *types.Mapper

	// scopes is the stack of local scopes.  Each scope maps a name to the
	// Python type currently known for it.
	scopes []map[string]types.PyType

	// params is the parameter name set of the function being lowered.
	params map[string]bool

	// funcName is the name of the function being lowered, used to detect
	// recursion.
	funcName string

	// asyncDepth is nonzero while lowering the body of an async function.
	asyncDepth int

	// topLevelWrites counts module-level names that are reassigned after
	// their first binding, or written through a `global` declaration.
	topLevelWrites map[string]bool
}

// NewBuilder creates a builder for the given parsed module.
func NewBuilder(mod *pyast.Module, mapper *types.Mapper) *Builder {
	return &Builder{
		mod:            mod,
		mapper:         mapper,
		topLevelWrites: make(map[string]bool),
	}
}

// Build lowers the whole module.  Item-level errors (unsupported constructs
// inside one function) are collected per item so other items still lower; a
// nil error slice entry means the corresponding item lowered cleanly.
func (b *Builder) Build() (*hir.Module, []error) {
	mod := &hir.Module{Name: b.mod.Name}

	body := b.mod.Body

	// Pull out a module docstring.
	if doc, rest := splitDocstring(body); doc != "" {
		mod.Docstring = doc
		body = rest
	}

	b.scanTopLevelWrites(body)

	var errs []error

	for _, stmt := range body {
		item, err := b.buildItem(stmt)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if item != nil {
			mod.Items = append(mod.Items, item)
		}
	}

	return mod, errs
}

// buildItem lowers one top-level statement into an item.  Unsupported
// constructs surface as errors caught at the item boundary.
func (b *Builder) buildItem(stmt pyast.Stmt) (item hir.Item, err error) {
	defer report.Catch(&err)

	switch v := stmt.(type) {
	case *pyast.FuncDef:
		return b.buildFunc(v, false)
	case *pyast.ClassDef:
		return b.buildClass(v)
	case *pyast.Import:
		return b.buildImport(v), nil
	case *pyast.Assign:
		return b.buildTopAssign(v)
	default:
		// Any other top-level statement is carried as a free statement.
		b.pushScope()
		defer b.popScope()

		lowered := b.lowerStmt(stmt)
		return &hir.TopStmt{
			ItemBase: hir.ItemBase{NodeBase: hir.NewNodeBaseOn(stmt.Span())},
			Stmt:     lowered,
		}, nil
	}
}

// scanTopLevelWrites records which module-level names are bound more than
// once, or declared `global` inside a function.  Those become lock-wrapped
// mutable statics instead of plain constants.
func (b *Builder) scanTopLevelWrites(body []pyast.Stmt) {
	seen := make(map[string]bool)

	var scanGlobals func(stmts []pyast.Stmt)
	scanGlobals = func(stmts []pyast.Stmt) {
		for _, stmt := range stmts {
			switch v := stmt.(type) {
			case *pyast.Global:
				if !v.IsNonlocal {
					for _, name := range v.Names {
						b.topLevelWrites[name] = true
					}
				}
			case *pyast.FuncDef:
				scanGlobals(v.Body)
			case *pyast.If:
				scanGlobals(v.Body)
				scanGlobals(v.Orelse)
			case *pyast.While:
				scanGlobals(v.Body)
			case *pyast.For:
				scanGlobals(v.Body)
			case *pyast.With:
				scanGlobals(v.Body)
			}
		}
	}

	for _, stmt := range body {
		switch v := stmt.(type) {
		case *pyast.Assign:
			for _, target := range v.Targets {
				if name, ok := target.(*pyast.Name); ok {
					if seen[name.Name] || v.Op != nil {
						b.topLevelWrites[name.Name] = true
					}
					seen[name.Name] = true
				}
			}
		case *pyast.FuncDef:
			scanGlobals(v.Body)
		}
	}
}

// -----------------------------------------------------------------------------

// pushScope pushes a new local scope onto the scope stack.
func (b *Builder) pushScope() {
	b.scopes = append(b.scopes, make(map[string]types.PyType))
}

// popScope pops a local scope off of the scope stack.
func (b *Builder) popScope() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

// define records the known type for a local name in the innermost scope.
func (b *Builder) define(name string, typ types.PyType) {
	b.scopes[len(b.scopes)-1][name] = typ
}

// lookup finds the known type for a name, walking scopes in reverse order to
// implement shadowing.  The boolean reports whether the name is in scope at
// all.
func (b *Builder) lookup(name string) (types.PyType, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if typ, ok := b.scopes[i][name]; ok {
			return typ, true
		}
	}

	return types.PyUnknown{}, false
}

// -----------------------------------------------------------------------------

// splitDocstring extracts a leading string-literal statement from a body.
func splitDocstring(body []pyast.Stmt) (string, []pyast.Stmt) {
	if len(body) == 0 {
		return "", body
	}

	if es, ok := body[0].(*pyast.ExprStmt); ok {
		if lit, ok := es.Value.(*pyast.Literal); ok && lit.Kind == pyast.LitStr {
			return lit.Value, body[1:]
		}
	}

	return "", body
}
