package codegen

import (
	"fmt"
	"strings"

	"depyler/hir"
	"depyler/types"
)

// loopFrame tracks one enclosing loop during emission.
type loopFrame struct {
	// label is the Rust loop label, allocated lazily on first labeled break or
	// continue.
	label string

	// flag is the completion flag binding for a loop with an else clause; ""
	// when the loop has none.
	flag string
}

// newLabel allocates the next loop label.
func (g *Generator) newLabel() string {
	label := fmt.Sprintf("'l%d", g.labelCount)
	g.labelCount++
	return label
}

// newTmp allocates a scratch binding name.
func (g *Generator) newTmp(stem string) string {
	name := fmt.Sprintf("_%s%d", stem, g.tmpCount)
	g.tmpCount++
	return name
}

// -----------------------------------------------------------------------------

// genBlock emits a statement sequence.
func (g *Generator) genBlock(sb *strings.Builder, stmts []hir.Stmt) {
	for _, stmt := range stmts {
		g.genStmt(sb, stmt)
	}
}

// genStmt emits one statement.
func (g *Generator) genStmt(sb *strings.Builder, stmt hir.Stmt) {
	if skip := g.rewriteArgParse(sb, stmt); skip {
		return
	}

	switch v := stmt.(type) {
	case *hir.Assign:
		g.liftWalrus(sb, v.Value)
		g.genAssign(sb, v)
	case *hir.Return:
		g.liftWalrus(sb, v.Value)
		g.genReturn(sb, v)
	case *hir.If:
		g.liftWalrus(sb, v.Cond)
		g.genIf(sb, v)
	case *hir.While:
		g.genWhile(sb, v)
	case *hir.For:
		g.liftWalrus(sb, v.Iter)
		g.genFor(sb, v)
	case *hir.ExprStmt:
		g.liftWalrus(sb, v.Value)
		g.line(sb, "%s;", g.genExpr(v.Value))
	case *hir.Raise:
		g.genRaise(sb, v)
	case *hir.With:
		g.genWith(sb, v)
	case *hir.Try:
		g.genTry(sb, v)
	case *hir.Break:
		g.genBreak(sb)
	case *hir.Continue:
		g.genContinue(sb)
	case *hir.Pass:
		// Nothing: an empty Rust block is already well formed.
	}
}

// -----------------------------------------------------------------------------

// genAssign emits an assignment.
func (g *Generator) genAssign(sb *strings.Builder, as *hir.Assign) {
	value := g.genExpr(as.Value)

	switch target := as.Target.(type) {
	case *hir.SymbolTarget:
		g.genSymbolAssign(sb, target.Name, as, value)
	case *hir.AttrTarget:
		g.line(sb, "%s.%s = %s;", g.genExpr(target.Object), sanitizeIdent(target.Attr), value)
	case *hir.IndexTarget:
		g.genIndexAssign(sb, target, value)
	case *hir.TupleTarget:
		g.genTupleAssign(sb, target, value)
	}
}

// genSymbolAssign emits an assignment to a simple name, distinguishing first
// bindings, rebindings, and mutable module globals.
func (g *Generator) genSymbolAssign(sb *strings.Builder, name string, as *hir.Assign, value string) {
	// A write to a lock-wrapped module global rewrites to a scoped lock
	// acquisition.  A value that reads the global would hold its read guard
	// into the write and deadlock, so it binds first in its own statement.
	if mutable, isGlobal := g.globals[name]; isGlobal && mutable && !g.declared[name] {
		if exprReadsName(as.Value, name) {
			tmp := g.newTmp("next")
			g.line(sb, "let %s = %s;", tmp, value)
			value = tmp
		}
		g.line(sb, "*%s.lock().unwrap() = %s;", strings.ToUpper(sanitizeIdent(name)), value)
		return
	}

	ident := sanitizeIdent(name)

	if g.declared[name] {
		g.line(sb, "%s = %s;", ident, value)
		return
	}

	g.declared[name] = true
	if as.Type != nil {
		g.locals[name] = as.Type
	} else {
		g.locals[name] = as.Value.Type()
	}

	if g.mutatedLocals[name] {
		g.line(sb, "let mut %s = %s;", ident, value)
	} else {
		g.line(sb, "let %s = %s;", ident, value)
	}
}

// genIndexAssign emits a subscript assignment; dict targets become inserts.
func (g *Generator) genIndexAssign(sb *strings.Builder, target *hir.IndexTarget, value string) {
	base := g.genExpr(target.Base)
	index := g.genExpr(target.Index)

	if _, isDict := g.exprType(target.Base).(*types.PyDict); isDict {
		g.line(sb, "%s.insert(%s, %s);", base, index, value)
		return
	}

	g.line(sb, "%s[%s] = %s;", base, g.asIndex(target.Index, index, base, g.exprType(target.Base)), value)
}

// genTupleAssign emits a tuple unpacking.  When every element is a fresh
// binding a single destructuring let suffices; otherwise the value lands in a
// scratch tuple first.
func (g *Generator) genTupleAssign(sb *strings.Builder, target *hir.TupleTarget, value string) {
	allFresh := true
	var names []string

	for _, elt := range target.Elts {
		sym, ok := elt.(*hir.SymbolTarget)
		if !ok {
			allFresh = false
			break
		}

		if g.declared[sym.Name] {
			allFresh = false
		}
		names = append(names, sym.Name)
	}

	if allFresh && len(names) == len(target.Elts) {
		var parts []string
		for _, name := range names {
			g.declared[name] = true
			if g.mutatedLocals[name] {
				parts = append(parts, "mut "+sanitizeIdent(name))
			} else {
				parts = append(parts, sanitizeIdent(name))
			}
		}

		g.line(sb, "let (%s) = %s;", strings.Join(parts, ", "), value)
		return
	}

	tmp := g.newTmp("unpack")
	g.line(sb, "let %s = %s;", tmp, value)

	for i, elt := range target.Elts {
		field := fmt.Sprintf("%s.%d", tmp, i)

		switch v := elt.(type) {
		case *hir.SymbolTarget:
			if g.declared[v.Name] {
				g.line(sb, "%s = %s;", sanitizeIdent(v.Name), field)
			} else {
				g.declared[v.Name] = true
				if g.mutatedLocals[v.Name] {
					g.line(sb, "let mut %s = %s;", sanitizeIdent(v.Name), field)
				} else {
					g.line(sb, "let %s = %s;", sanitizeIdent(v.Name), field)
				}
			}
		case *hir.AttrTarget:
			g.line(sb, "%s.%s = %s;", g.genExpr(v.Object), sanitizeIdent(v.Attr), field)
		case *hir.IndexTarget:
			g.line(sb, "%s[%s] = %s;", g.genExpr(v.Base), g.genExpr(v.Index), field)
		}
	}
}

// genReturn emits a return statement, wrapping in Ok under Result promotion.
func (g *Generator) genReturn(sb *strings.Builder, ret *hir.Return) {
	if ret.Value == nil {
		if g.retResult {
			g.line(sb, "return Ok(());")
		} else {
			g.line(sb, "return;")
		}
		return
	}

	expr := g.cowReturn(ret.Value, g.genExpr(ret.Value))
	if g.retResult {
		expr = "Ok(" + expr + ")"
	}

	g.line(sb, "return %s;", expr)
}

// cowReturn adapts a returned expression that names a Cow parameter: the
// declared return type stays owned, so the Cow converts at the boundary.
func (g *Generator) cowReturn(expr hir.Expr, rendered string) string {
	v, ok := expr.(*hir.Var)
	if !ok || g.fn == nil {
		return rendered
	}

	for _, param := range g.fn.Params {
		if param.Name == v.Name && param.Strategy != nil && param.Strategy.Kind == hir.UseCow {
			return rendered + ".into_owned()"
		}
	}

	return rendered
}

// exprReadsName reports whether the expression references the named binding.
func exprReadsName(expr hir.Expr, name string) bool {
	found := false

	walkExprTree(expr, func(e hir.Expr) {
		if v, ok := e.(*hir.Var); ok && v.Name == name {
			found = true
		}
	})

	return found
}

// -----------------------------------------------------------------------------

// genIf emits a conditional, collapsing a nested else-if chain.
func (g *Generator) genIf(sb *strings.Builder, stmt *hir.If) {
	g.line(sb, "if %s {", g.genCond(stmt.Cond))
	g.indent++
	g.genBlock(sb, stmt.Then)
	g.indent--

	for len(stmt.Else) == 1 {
		next, ok := stmt.Else[0].(*hir.If)
		if !ok || hasWalrus(next.Cond) {
			break
		}

		g.line(sb, "} else if %s {", g.genCond(next.Cond))
		g.indent++
		g.genBlock(sb, next.Then)
		g.indent--

		stmt = next
	}

	if len(stmt.Else) > 0 {
		g.line(sb, "} else {")
		g.indent++
		g.genBlock(sb, stmt.Else)
		g.indent--
	}

	g.line(sb, "}")
}

// genWhile emits a while loop.  A walrus in the condition forces the
// loop-with-break form so the binding re-evaluates each iteration.
func (g *Generator) genWhile(sb *strings.Builder, stmt *hir.While) {
	frame := loopFrame{}
	if len(stmt.ElseBody) > 0 {
		frame.flag = g.newTmp("completed")
		frame.label = g.newLabel()
		g.line(sb, "let mut %s = true;", frame.flag)
	}

	label := ""
	if frame.label != "" {
		label = frame.label + ": "
	}

	switch {
	case isTrueLiteral(stmt.Cond):
		g.line(sb, "%sloop {", label)
	case hasWalrus(stmt.Cond):
		g.line(sb, "%sloop {", label)
		g.indent++
		g.liftWalrusInLoop(sb, stmt.Cond)
		g.line(sb, "if !(%s) {", g.genCond(stmt.Cond))
		g.indent++
		g.line(sb, "break;")
		g.indent--
		g.line(sb, "}")
		g.indent--
	default:
		g.line(sb, "%swhile %s {", label, g.genCond(stmt.Cond))
	}

	g.loops = append(g.loops, frame)
	g.indent++
	g.genBlock(sb, stmt.Body)
	g.indent--
	g.loops = g.loops[:len(g.loops)-1]

	g.line(sb, "}")

	if frame.flag != "" {
		g.line(sb, "if %s {", frame.flag)
		g.indent++
		g.genBlock(sb, stmt.ElseBody)
		g.indent--
		g.line(sb, "}")
	}
}

// genFor emits a for loop over a translated iterator.
func (g *Generator) genFor(sb *strings.Builder, stmt *hir.For) {
	frame := loopFrame{}
	if len(stmt.ElseBody) > 0 {
		frame.flag = g.newTmp("completed")
		frame.label = g.newLabel()
		g.line(sb, "let mut %s = true;", frame.flag)
	}

	label := ""
	if frame.label != "" {
		label = frame.label + ": "
	}

	pattern := g.genForTarget(stmt.Target, stmt.Iter)
	iter := g.genIterator(stmt.Iter)

	g.line(sb, "%sfor %s in %s {", label, pattern, iter)

	g.loops = append(g.loops, frame)
	g.indent++
	g.genBlock(sb, stmt.Body)
	g.indent--
	g.loops = g.loops[:len(g.loops)-1]

	g.line(sb, "}")

	if frame.flag != "" {
		g.line(sb, "if %s {", frame.flag)
		g.indent++
		g.genBlock(sb, stmt.ElseBody)
		g.indent--
		g.line(sb, "}")
	}
}

// genForTarget renders the loop pattern and registers its bindings.
func (g *Generator) genForTarget(target hir.AssignTarget, iter hir.Expr) string {
	switch v := target.(type) {
	case *hir.SymbolTarget:
		g.declared[v.Name] = true
		g.locals[v.Name] = elementOf(g.exprType(iter))
		return sanitizeIdent(v.Name)
	case *hir.TupleTarget:
		var parts []string
		for _, elt := range v.Elts {
			if sym, ok := elt.(*hir.SymbolTarget); ok {
				g.declared[sym.Name] = true
				parts = append(parts, sanitizeIdent(sym.Name))
			} else {
				parts = append(parts, "_")
			}
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "_"
	}
}

// elementOf returns the element type an iteration over t yields.
func elementOf(t types.PyType) types.PyType {
	switch v := t.(type) {
	case *types.PyList:
		return v.Elem
	case *types.PySet:
		return v.Elem
	case *types.PyDict:
		return v.Key
	case types.PyPrim:
		if v == types.PyStr {
			return types.PyPrim(types.PyStr)
		}
	}

	return types.PyUnknown{}
}

// -----------------------------------------------------------------------------

// genRaise emits a raise; under Result promotion it returns an Err, otherwise
// it panics.
func (g *Generator) genRaise(sb *strings.Builder, stmt *hir.Raise) {
	msg := g.raiseMessage(stmt.Exc)

	if g.retResult {
		g.line(sb, "return Err(%s);", msg)
	} else {
		g.line(sb, "panic!(\"{}\", %s);", msg)
	}
}

// raiseMessage renders the error payload for a raise.  `ValueError("bad")`
// becomes "ValueError: bad"; argument-less and bare raises degrade to the
// exception name alone.
func (g *Generator) raiseMessage(exc hir.Expr) string {
	switch v := exc.(type) {
	case nil:
		return `"exception".to_string()`
	case *hir.Call:
		if len(v.Args) == 1 {
			if lit, ok := v.Args[0].(*hir.Literal); ok && lit.Kind == hir.LitStr {
				return fmt.Sprintf("%q.to_string()", v.Func+": "+lit.Value)
			}
			return fmt.Sprintf("format!(\"%s: {}\", %s)", v.Func, g.genExpr(v.Args[0]))
		}
		return fmt.Sprintf("%q.to_string()", v.Func)
	case *hir.Var:
		return sanitizeIdent(v.Name) + ".to_string()"
	default:
		return fmt.Sprintf("format!(\"{}\", %s)", g.genExpr(exc))
	}
}

// genWith emits a context-manager statement as a scoped block; release is
// Rust's drop at scope exit.
func (g *Generator) genWith(sb *strings.Builder, stmt *hir.With) {
	g.line(sb, "{")
	g.indent++

	if stmt.Target != "" {
		g.declared[stmt.Target] = true
		g.locals[stmt.Target] = g.exprType(stmt.Context)
		g.line(sb, "let mut %s = %s;", sanitizeIdent(stmt.Target), g.genExpr(stmt.Context))
	} else {
		g.line(sb, "let _guard = %s;", g.genExpr(stmt.Context))
	}

	g.genBlock(sb, stmt.Body)

	g.indent--
	g.line(sb, "}")
}

// genTry emits a try/except as an immediately invoked closure returning a
// Result, with the handler chain dispatching on the error's type prefix.
func (g *Generator) genTry(sb *strings.Builder, stmt *hir.Try) {
	tmp := g.newTmp("try_result")

	g.line(sb, "let %s: Result<(), String> = (|| {", tmp)

	// Raises inside the guarded body always return Err into the closure.
	savedResult := g.retResult
	g.retResult = true

	g.indent++
	g.genBlock(sb, stmt.Body)
	g.line(sb, "Ok(())")
	g.indent--

	g.retResult = savedResult

	g.line(sb, "})();")

	if len(stmt.Handlers) > 0 {
		binding := "_err"
		for _, h := range stmt.Handlers {
			if h.Binding != "" {
				binding = sanitizeIdent(h.Binding)
				break
			}
		}

		g.line(sb, "if let Err(%s) = %s {", binding, tmp)
		g.indent++

		g.genHandlers(sb, stmt.Handlers, binding)

		g.indent--
		g.line(sb, "}")
	}

	g.genBlock(sb, stmt.Final)
}

// genHandlers emits the except chain.  Exception identity survives only as
// the message prefix, so typed handlers match on it; a bare except is the
// unconditional tail.
func (g *Generator) genHandlers(sb *strings.Builder, handlers []*hir.Handler, binding string) {
	if len(handlers) == 1 && handlers[0].ExcType == "" {
		g.bindHandler(sb, handlers[0], binding)
		g.genBlock(sb, handlers[0].Body)
		return
	}

	for i, h := range handlers {
		cond := "true"
		if h.ExcType != "" {
			cond = fmt.Sprintf("%s.starts_with(%q)", binding, h.ExcType)
		}

		switch {
		case i == 0:
			g.line(sb, "if %s {", cond)
		case h.ExcType == "":
			g.line(sb, "} else {")
		default:
			g.line(sb, "} else if %s {", cond)
		}

		g.indent++
		g.bindHandler(sb, h, binding)
		g.genBlock(sb, h.Body)
		g.indent--
	}

	g.line(sb, "}")
}

// bindHandler rebinds the handler's `as` name when it differs from the chain
// binding.
func (g *Generator) bindHandler(sb *strings.Builder, h *hir.Handler, binding string) {
	if h.Binding != "" && sanitizeIdent(h.Binding) != binding {
		g.declared[h.Binding] = true
		g.line(sb, "let %s = &%s;", sanitizeIdent(h.Binding), binding)
	}
}

// -----------------------------------------------------------------------------

// genBreak emits a break; inside a loop with an else clause it clears the
// completion flag and targets the loop's label.
func (g *Generator) genBreak(sb *strings.Builder) {
	if len(g.loops) == 0 {
		g.line(sb, "break;")
		return
	}

	frame := g.loops[len(g.loops)-1]
	if frame.flag != "" {
		g.line(sb, "%s = false;", frame.flag)
	}

	if frame.label != "" {
		g.line(sb, "break %s;", frame.label)
	} else {
		g.line(sb, "break;")
	}
}

// genContinue emits a continue, labeled when the enclosing loop carries one.
func (g *Generator) genContinue(sb *strings.Builder) {
	if len(g.loops) > 0 && g.loops[len(g.loops)-1].label != "" {
		g.line(sb, "continue %s;", g.loops[len(g.loops)-1].label)
		return
	}

	g.line(sb, "continue;")
}

// -----------------------------------------------------------------------------

// liftWalrus hoists every walrus binding in an expression into a preceding
// let, leaving only the name at the use site.
func (g *Generator) liftWalrus(sb *strings.Builder, expr hir.Expr) {
	walkExprTree(expr, func(e hir.Expr) {
		if named, ok := e.(*hir.NamedExpr); ok && !g.lifted[named] {
			g.lifted[named] = true
			g.walrusNames[named.Target] = true
			g.declared[named.Target] = true
			g.locals[named.Target] = named.Value.Type()

			g.line(sb, "let %s = %s;", sanitizeIdent(named.Target), g.genExpr(named.Value))
		}
	})
}

// liftWalrusInLoop hoists walrus bindings that must re-evaluate on every
// iteration; the let lands inside the loop body.
func (g *Generator) liftWalrusInLoop(sb *strings.Builder, expr hir.Expr) {
	walkExprTree(expr, func(e hir.Expr) {
		if named, ok := e.(*hir.NamedExpr); ok {
			g.lifted[named] = true
			g.walrusNames[named.Target] = true
			g.declared[named.Target] = true
			g.locals[named.Target] = named.Value.Type()

			g.line(sb, "let %s = %s;", sanitizeIdent(named.Target), g.genExpr(named.Value))
		}
	})
}

// hasWalrus reports whether an expression contains a walrus binding.
func hasWalrus(expr hir.Expr) bool {
	found := false

	walkExprTree(expr, func(e hir.Expr) {
		if _, ok := e.(*hir.NamedExpr); ok {
			found = true
		}
	})

	return found
}

// isTrueLiteral reports whether the expression is the literal True.
func isTrueLiteral(expr hir.Expr) bool {
	lit, ok := expr.(*hir.Literal)
	return ok && lit.Kind == hir.LitBool && lit.Value == "True"
}

// walkExprTree applies fn to every node of an expression tree, parents before
// children.  Lambda bodies are skipped: their walruses scope to the closure.
func walkExprTree(expr hir.Expr, fn func(hir.Expr)) {
	if expr == nil {
		return
	}

	fn(expr)

	switch v := expr.(type) {
	case *hir.Binary:
		walkExprTree(v.Lhs, fn)
		walkExprTree(v.Rhs, fn)
	case *hir.Unary:
		walkExprTree(v.Operand, fn)
	case *hir.Call:
		for _, arg := range v.Args {
			walkExprTree(arg, fn)
		}
		for _, kw := range v.Kwargs {
			walkExprTree(kw.Value, fn)
		}
	case *hir.MethodCall:
		walkExprTree(v.Object, fn)
		for _, arg := range v.Args {
			walkExprTree(arg, fn)
		}
		for _, kw := range v.Kwargs {
			walkExprTree(kw.Value, fn)
		}
	case *hir.Attribute:
		walkExprTree(v.Object, fn)
	case *hir.Index:
		walkExprTree(v.Base, fn)
		walkExprTree(v.Idx, fn)
	case *hir.Slice:
		walkExprTree(v.Base, fn)
		walkExprTree(v.Start, fn)
		walkExprTree(v.Stop, fn)
		walkExprTree(v.Step, fn)
	case *hir.Tuple:
		for _, elt := range v.Elts {
			walkExprTree(elt, fn)
		}
	case *hir.List:
		for _, elt := range v.Elts {
			walkExprTree(elt, fn)
		}
	case *hir.Set:
		for _, elt := range v.Elts {
			walkExprTree(elt, fn)
		}
	case *hir.Dict:
		for i := range v.Keys {
			walkExprTree(v.Keys[i], fn)
			walkExprTree(v.Values[i], fn)
		}
	case *hir.Comp:
		walkExprTree(v.Iter, fn)
	case *hir.Await:
		walkExprTree(v.Value, fn)
	case *hir.IfExpr:
		walkExprTree(v.Test, fn)
		walkExprTree(v.Body, fn)
		walkExprTree(v.Orelse, fn)
	case *hir.NamedExpr:
		walkExprTree(v.Value, fn)
	case *hir.FString:
		for _, part := range v.Parts {
			walkExprTree(part.Expr, fn)
		}
	case *hir.Borrow:
		walkExprTree(v.Operand, fn)
	}
}
