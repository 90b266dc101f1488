package borrow

import "depyler/hir"

// collectBlock walks a statement sequence collecting parameter usage sites.
func (ctx *Context) collectBlock(stmts []hir.Stmt) {
	for _, stmt := range stmts {
		ctx.collectStmt(stmt)
	}
}

// collectStmt collects usage from one statement.
func (ctx *Context) collectStmt(stmt hir.Stmt) {
	switch v := stmt.(type) {
	case *hir.Assign:
		ctx.collectAssign(v)
	case *hir.Return:
		ctx.collectReturn(v)
	case *hir.If:
		ctx.collectExpr(v.Cond)

		ctx.condDepth++
		ctx.collectBlock(v.Then)
		ctx.collectBlock(v.Else)
		ctx.condDepth--
	case *hir.While:
		ctx.collectExpr(v.Cond)

		ctx.loopDepth++
		ctx.collectBlock(v.Body)
		ctx.loopDepth--

		ctx.collectBlock(v.ElseBody)
	case *hir.For:
		ctx.collectExpr(v.Iter)

		ctx.pushLocals()
		ctx.defineLocal(v.Target)

		ctx.loopDepth++
		ctx.collectBlock(v.Body)
		ctx.loopDepth--

		ctx.collectBlock(v.ElseBody)
		ctx.popLocals()
	case *hir.ExprStmt:
		ctx.collectExpr(v.Value)
	case *hir.Raise:
		ctx.collectExpr(v.Exc)
		ctx.collectExpr(v.Cause)
	case *hir.With:
		ctx.collectExpr(v.Context)

		ctx.pushLocals()
		if v.Target != "" {
			ctx.defineLocal(&hir.SymbolTarget{Name: v.Target})
		}
		ctx.collectBlock(v.Body)
		ctx.popLocals()
	case *hir.Try:
		ctx.collectBlock(v.Body)

		ctx.condDepth++
		for _, h := range v.Handlers {
			ctx.pushLocals()
			if h.Binding != "" {
				ctx.defineLocal(&hir.SymbolTarget{Name: h.Binding})
			}
			ctx.collectBlock(h.Body)
			ctx.popLocals()
		}
		ctx.condDepth--

		ctx.collectBlock(v.Final)
	}
}

// collectAssign collects usage from an assignment.  Reassigning a parameter
// name is a write to the parameter; mutating through a parameter's index or
// attribute is as well.
func (ctx *Context) collectAssign(as *hir.Assign) {
	ctx.collectExpr(as.Value)

	switch target := as.Target.(type) {
	case *hir.SymbolTarget:
		ctx.record(target.Name, ctx.site(hir.UseWrite))
	case *hir.AttrTarget:
		if v, ok := target.Object.(*hir.Var); ok {
			ctx.borrowDepth++
			ctx.record(v.Name, ctx.site(hir.UseWrite))
			ctx.borrowDepth--
		} else {
			ctx.collectExpr(target.Object)
		}
	case *hir.IndexTarget:
		if v, ok := target.Base.(*hir.Var); ok {
			ctx.borrowDepth++
			ctx.record(v.Name, ctx.site(hir.UseWrite))
			ctx.borrowDepth--
		} else {
			ctx.collectExpr(target.Base)
		}
		ctx.collectExpr(target.Index)
	case *hir.TupleTarget:
		for _, elt := range target.Elts {
			if sym, ok := elt.(*hir.SymbolTarget); ok {
				ctx.record(sym.Name, ctx.site(hir.UseWrite))
			}
		}
	}
}

// collectReturn collects usage from a return statement.  A parameter returned
// directly, or as a member of a returned tuple, escapes through the return.
func (ctx *Context) collectReturn(ret *hir.Return) {
	if ret.Value == nil {
		return
	}

	switch v := ret.Value.(type) {
	case *hir.Var:
		ctx.record(v.Name, ctx.site(hir.UseReturn))
	case *hir.Tuple:
		for _, elt := range v.Elts {
			if ev, ok := elt.(*hir.Var); ok {
				ctx.record(ev.Name, ctx.site(hir.UseReturn))
			} else {
				ctx.collectExpr(elt)
			}
		}
	default:
		ctx.collectExpr(ret.Value)
	}
}

// -----------------------------------------------------------------------------

// collectExpr collects usage from one expression.
func (ctx *Context) collectExpr(expr hir.Expr) {
	if expr == nil {
		return
	}

	switch v := expr.(type) {
	case *hir.Var:
		ctx.record(v.Name, ctx.site(hir.UseRead))
	case *hir.Binary:
		ctx.collectExpr(v.Lhs)
		ctx.collectExpr(v.Rhs)
	case *hir.Unary:
		ctx.collectExpr(v.Operand)
	case *hir.Call:
		ctx.collectCall(v)
	case *hir.MethodCall:
		ctx.collectMethodCall(v)
	case *hir.Attribute:
		if obj, ok := v.Object.(*hir.Var); ok {
			site := ctx.site(hir.UseFieldAccess)
			site.Method = v.Attr
			ctx.record(obj.Name, site)
		} else {
			ctx.borrowDepth++
			ctx.collectExpr(v.Object)
			ctx.borrowDepth--
		}
	case *hir.Index:
		if base, ok := v.Base.(*hir.Var); ok {
			ctx.record(base.Name, ctx.site(hir.UseIndexAccess))
		} else {
			ctx.borrowDepth++
			ctx.collectExpr(v.Base)
			ctx.borrowDepth--
		}
		ctx.collectExpr(v.Idx)
	case *hir.Slice:
		ctx.borrowDepth++
		ctx.collectExpr(v.Base)
		ctx.borrowDepth--

		ctx.collectExpr(v.Start)
		ctx.collectExpr(v.Stop)
		ctx.collectExpr(v.Step)
	case *hir.Tuple:
		for _, elt := range v.Elts {
			ctx.collectExpr(elt)
		}
	case *hir.List:
		for _, elt := range v.Elts {
			ctx.collectExpr(elt)
		}
	case *hir.Set:
		for _, elt := range v.Elts {
			ctx.collectExpr(elt)
		}
	case *hir.Dict:
		for i := range v.Keys {
			ctx.collectExpr(v.Keys[i])
			ctx.collectExpr(v.Values[i])
		}
	case *hir.Comp:
		ctx.collectExpr(v.Iter)

		ctx.pushLocals()
		ctx.defineLocal(v.Target)

		ctx.loopDepth++
		ctx.collectExpr(v.Key)
		ctx.collectExpr(v.Element)
		ctx.collectExpr(v.Condition)
		ctx.loopDepth--

		ctx.popLocals()
	case *hir.Lambda:
		for _, capture := range v.Captures {
			ctx.record(capture, ctx.site(hir.UseClosure))
		}

		ctx.closureDepth++
		ctx.pushLocals()
		for _, p := range v.Params {
			ctx.defineLocal(&hir.SymbolTarget{Name: p})
		}
		ctx.collectExpr(v.Body)
		ctx.popLocals()
		ctx.closureDepth--
	case *hir.Await:
		ctx.collectExpr(v.Value)
	case *hir.IfExpr:
		ctx.collectExpr(v.Test)

		ctx.condDepth++
		ctx.collectExpr(v.Body)
		ctx.collectExpr(v.Orelse)
		ctx.condDepth--
	case *hir.NamedExpr:
		ctx.collectExpr(v.Value)
	case *hir.FString:
		for _, part := range v.Parts {
			ctx.collectExpr(part.Expr)
		}
	case *hir.Borrow:
		ctx.borrowDepth++
		ctx.collectExpr(v.Operand)
		ctx.borrowDepth--
	}
}

// collectCall classifies a named call's arguments.  Known-borrowing builtins
// only read their arguments; unknown callees are conservatively treated as
// consuming.
func (ctx *Context) collectCall(call *hir.Call) {
	borrows := BorrowingBuiltins[call.Func]

	for _, arg := range call.Args {
		if v, ok := arg.(*hir.Var); ok {
			site := ctx.site(hir.UseFunctionArg)
			site.TakesOwnership = !borrows
			ctx.record(v.Name, site)
		} else {
			ctx.collectExpr(arg)
		}
	}

	for _, kw := range call.Kwargs {
		ctx.collectExpr(kw.Value)
	}
}

// collectMethodCall classifies a method call's receiver and arguments.  A
// parameter passed to a consuming method on another value is stored.
func (ctx *Context) collectMethodCall(mc *hir.MethodCall) {
	if obj, ok := mc.Object.(*hir.Var); ok {
		site := ctx.site(hir.UseMethodCall)
		site.Method = mc.Method
		ctx.record(obj.Name, site)
	} else {
		ctx.borrowDepth++
		ctx.collectExpr(mc.Object)
		ctx.borrowDepth--
	}

	consuming := ConsumingMethods[mc.Method]

	for _, arg := range mc.Args {
		if v, ok := arg.(*hir.Var); ok && consuming {
			ctx.record(v.Name, ctx.site(hir.UseStore))
		} else {
			ctx.collectExpr(arg)
		}
	}

	for _, kw := range mc.Kwargs {
		ctx.collectExpr(kw.Value)
	}
}
