package build

import (
	"depyler/common"
	"depyler/hir"
	"depyler/pyast"
	"depyler/report"
	"depyler/types"
)

// lowerBlock lowers a statement sequence.
func (b *Builder) lowerBlock(stmts []pyast.Stmt) []hir.Stmt {
	lowered := make([]hir.Stmt, 0, len(stmts))

	for _, stmt := range stmts {
		lowered = append(lowered, b.lowerStmt(stmt))
	}

	return lowered
}

// lowerStmt lowers one statement.  Unsupported constructs are raised and
// caught at the item boundary: no construct is silently dropped.
func (b *Builder) lowerStmt(stmt pyast.Stmt) hir.Stmt {
	switch v := stmt.(type) {
	case *pyast.Assign:
		return b.lowerAssign(v)
	case *pyast.Return:
		ret := &hir.Return{StmtBase: stmtBase(v)}
		if v.Value != nil {
			ret.Value = b.lowerExpr(v.Value)
		}
		return ret
	case *pyast.If:
		return b.lowerIf(v)
	case *pyast.While:
		b.pushScope()
		defer b.popScope()

		return &hir.While{
			StmtBase: stmtBase(v),
			Cond:     b.lowerExpr(v.Cond),
			Body:     b.lowerBlock(v.Body),
			ElseBody: b.lowerBlock(v.Orelse),
		}
	case *pyast.For:
		return b.lowerFor(v)
	case *pyast.ExprStmt:
		return &hir.ExprStmt{StmtBase: stmtBase(v), Value: b.lowerExpr(v.Value)}
	case *pyast.Raise:
		raise := &hir.Raise{StmtBase: stmtBase(v)}
		if v.Exc != nil {
			raise.Exc = b.lowerExpr(v.Exc)
		}
		if v.Cause != nil {
			raise.Cause = b.lowerExpr(v.Cause)
		}
		return raise
	case *pyast.With:
		return b.lowerWith(v)
	case *pyast.Try:
		return b.lowerTry(v)
	case *pyast.Break:
		return &hir.Break{StmtBase: stmtBase(v)}
	case *pyast.Continue:
		return &hir.Continue{StmtBase: stmtBase(v)}
	case *pyast.Pass:
		return &hir.Pass{StmtBase: stmtBase(v)}
	case *pyast.FuncDef:
		report.Raise(v.Span(), "nested function definition")
	case *pyast.ClassDef:
		report.Raise(v.Span(), "nested class definition")
	case *pyast.Import:
		report.Raise(v.Span(), "import inside a function body")
	case *pyast.Global:
		if v.IsNonlocal {
			report.Raise(v.Span(), "nonlocal with closure mutation")
		}
		// `global` declarations themselves lower to no-ops; the write scan has
		// already marked the named bindings mutable.
		return &hir.Pass{StmtBase: stmtBase(v)}
	}

	report.Raise(stmt.Span(), "statement")
	return nil
}

func stmtBase(node pyast.Node) hir.StmtBase {
	return hir.StmtBase{NodeBase: hir.NewNodeBaseOn(node.Span())}
}

// -----------------------------------------------------------------------------

// lowerAssign lowers plain, annotated, augmented, and multi-target
// assignments.  `x += e` desugars to `x = x + e`.
func (b *Builder) lowerAssign(as *pyast.Assign) hir.Stmt {
	value := b.lowerExpr(as.Value)

	var annotation types.PyType
	if as.Annotation != nil {
		annotation = b.mapper.FromAnnotation(as.Annotation)
	}

	if as.Op != nil {
		if len(as.Targets) != 1 {
			report.Raise(as.Span(), "augmented assignment with multiple targets")
		}

		lhs := b.lowerExpr(as.Targets[0])
		bin := &hir.Binary{
			ExprBase: hir.NewExprBase(hir.NewNodeBaseOn(as.Span()), nil),
			Op:       common.BinaryOp(as.Op.Kind),
			Lhs:      lhs,
			Rhs:      value,
		}
		bin.SetType(b.inferBinary(bin))
		value = bin
	}

	// Multi-target assignment `a = b = e` lowers to the last target; earlier
	// targets are rare enough that they are unsupported rather than wrong.
	if len(as.Targets) != 1 {
		report.Raise(as.Span(), "chained assignment")
	}

	target := b.lowerTarget(as.Targets[0])

	// Record the type now known for a simple binding.
	if sym, ok := target.(*hir.SymbolTarget); ok {
		typ := annotation
		if typ == nil {
			typ = value.Type()
		}
		b.define(sym.Name, typ)
	}

	return &hir.Assign{
		StmtBase: stmtBase(as),
		Target:   target,
		Value:    value,
		Type:     annotation,
	}
}

// lowerTarget lowers an assignment target.
func (b *Builder) lowerTarget(expr pyast.Expr) hir.AssignTarget {
	switch v := expr.(type) {
	case *pyast.Name:
		return &hir.SymbolTarget{NodeBase: hir.NewNodeBaseOn(v.Span()), Name: v.Name}
	case *pyast.Attribute:
		return &hir.AttrTarget{
			NodeBase: hir.NewNodeBaseOn(v.Span()),
			Object:   b.lowerExpr(v.Value),
			Attr:     v.Attr,
		}
	case *pyast.Subscript:
		if slice, ok := v.Index.(*pyast.SliceExpr); ok && slice.Step != nil {
			report.Raise(v.Span(), "slice assignment with step")
		}
		return &hir.IndexTarget{
			NodeBase: hir.NewNodeBaseOn(v.Span()),
			Base:     b.lowerExpr(v.Value),
			Index:    b.lowerExpr(v.Index),
		}
	case *pyast.TupleExpr:
		tt := &hir.TupleTarget{NodeBase: hir.NewNodeBaseOn(v.Span())}
		for _, elt := range v.Elts {
			tt.Elts = append(tt.Elts, b.lowerTarget(elt))
		}
		return tt
	}

	report.Raise(expr.Span(), "assignment target")
	return nil
}

// -----------------------------------------------------------------------------

// lowerIf lowers an if statement.  Chained elif arrives as a nested If in the
// else body and stays that way in HIR.
func (b *Builder) lowerIf(ifStmt *pyast.If) hir.Stmt {
	cond := b.lowerExpr(ifStmt.Cond)

	b.pushScope()
	then := b.lowerBlock(ifStmt.Body)
	b.popScope()

	b.pushScope()
	orelse := b.lowerBlock(ifStmt.Orelse)
	b.popScope()

	return &hir.If{
		StmtBase: stmtBase(ifStmt),
		Cond:     cond,
		Then:     then,
		Else:     orelse,
	}
}

// lowerFor lowers a for loop.  The loop target is a local binding scoped to
// the loop body: it never enters the parameter usage map.
func (b *Builder) lowerFor(forStmt *pyast.For) hir.Stmt {
	if forStmt.IsAsync {
		report.Raise(forStmt.Span(), "async for")
	}

	iter := b.lowerExpr(forStmt.Iter)

	b.pushScope()
	defer b.popScope()

	target := b.lowerTarget(forStmt.Target)
	b.defineTarget(target, elementType(iter.Type()))

	return &hir.For{
		StmtBase: stmtBase(forStmt),
		Target:   target,
		Iter:     iter,
		Body:     b.lowerBlock(forStmt.Body),
		ElseBody: b.lowerBlock(forStmt.Orelse),
	}
}

// defineTarget records bindings introduced by a loop or comprehension target.
func (b *Builder) defineTarget(target hir.AssignTarget, typ types.PyType) {
	switch v := target.(type) {
	case *hir.SymbolTarget:
		b.define(v.Name, typ)
	case *hir.TupleTarget:
		for _, elt := range v.Elts {
			b.defineTarget(elt, types.PyUnknown{})
		}
	}
}

// lowerWith lowers a with statement, preserving the target binding.
func (b *Builder) lowerWith(ws *pyast.With) hir.Stmt {
	if ws.IsAsync {
		report.Raise(ws.Span(), "async with")
	}

	context := b.lowerExpr(ws.Context)

	b.pushScope()
	defer b.popScope()

	if ws.Target != "" {
		b.define(ws.Target, types.PyUnknown{})
	}

	return &hir.With{
		StmtBase: stmtBase(ws),
		Context:  context,
		Target:   ws.Target,
		Body:     b.lowerBlock(ws.Body),
	}
}

// lowerTry lowers a try statement.  The `else` clause appends onto the try
// body: it runs exactly when the body completed without raising.
func (b *Builder) lowerTry(ts *pyast.Try) hir.Stmt {
	b.pushScope()
	body := b.lowerBlock(append(append([]pyast.Stmt{}, ts.Body...), ts.Orelse...))
	b.popScope()

	try := &hir.Try{
		StmtBase: stmtBase(ts),
		Body:     body,
	}

	for _, h := range ts.Handlers {
		excType := ""
		if h.Type != nil {
			excType = decoratorName(h.Type)
		}

		b.pushScope()
		if h.Name != "" {
			b.define(h.Name, types.PyPrim(types.PyStr))
		}

		try.Handlers = append(try.Handlers, &hir.Handler{
			NodeBase: hir.NewNodeBaseOn(h.Span()),
			ExcType:  excType,
			Binding:  h.Name,
			Body:     b.lowerBlock(h.Body),
		})
		b.popScope()
	}

	b.pushScope()
	try.Final = b.lowerBlock(ts.Final)
	b.popScope()

	return try
}
