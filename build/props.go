package build

import (
	"depyler/hir"
	"depyler/pyast"
)

// classifyProperties walks the lowered body once to fill the function property
// record.  These feed later passes but are never authoritative: the borrowing
// context remains the source of truth for ownership.
func (b *Builder) classifyProperties(fd *pyast.FuncDef, fn *hir.Func) hir.FuncProperties {
	props := hir.FuncProperties{
		IsAsync: fd.IsAsync,
		Pure:    true,
	}

	var walkStmts func(stmts []hir.Stmt)

	walkStmt := func(stmt hir.Stmt) {
		switch v := stmt.(type) {
		case *hir.Raise:
			props.UsesExceptions = true
			props.Pure = false
		case *hir.Try:
			props.UsesExceptions = true
		case *hir.Assign:
			// Writing through an attribute or index mutates state the caller
			// can observe.
			switch v.Target.(type) {
			case *hir.AttrTarget, *hir.IndexTarget:
				props.Pure = false
			}
		}
	}

	walkExprs := func(stmts []hir.Stmt) {
		forEachExpr(stmts, func(e hir.Expr) {
			switch v := e.(type) {
			case *hir.Call:
				if v.Func == fn.Name {
					props.Recursive = true
				}
				if v.Func == "print" || v.Func == "input" || v.Func == "open" {
					props.Pure = false
				}
			case *hir.MethodCall:
				if consumingMethods[v.Method] {
					props.Pure = false
				}
			case *hir.Var:
				if v.Name == "self" {
					props.CapturesSelf = true
				}
			}
		})
	}

	walkStmts = func(stmts []hir.Stmt) {
		for _, stmt := range stmts {
			walkStmt(stmt)

			switch v := stmt.(type) {
			case *hir.If:
				walkStmts(v.Then)
				walkStmts(v.Else)
			case *hir.While:
				walkStmts(v.Body)
				walkStmts(v.ElseBody)
			case *hir.For:
				walkStmts(v.Body)
				walkStmts(v.ElseBody)
			case *hir.With:
				walkStmts(v.Body)
			case *hir.Try:
				walkStmts(v.Body)
				for _, h := range v.Handlers {
					walkStmts(h.Body)
				}
				walkStmts(v.Final)
			}
		}
	}

	walkStmts(fn.Body)
	walkExprs(fn.Body)

	return props
}

// consumingMethods is the set of receiver-mutating method names used both by
// purity classification and borrowing analysis.
var consumingMethods = map[string]bool{
	"append":     true,
	"extend":     true,
	"insert":     true,
	"pop":        true,
	"remove":     true,
	"sort":       true,
	"reverse":    true,
	"clear":      true,
	"add":        true,
	"discard":    true,
	"update":     true,
	"setdefault": true,
	"popitem":    true,
}

// forEachExpr invokes fn on every expression reachable from the statements.
func forEachExpr(stmts []hir.Stmt, fn func(hir.Expr)) {
	var walkStmts func(stmts []hir.Stmt)

	walkTarget := func(target hir.AssignTarget) {
		switch v := target.(type) {
		case *hir.AttrTarget:
			walkExpr(v.Object, fn)
		case *hir.IndexTarget:
			walkExpr(v.Base, fn)
			walkExpr(v.Index, fn)
		}
	}

	walkStmts = func(stmts []hir.Stmt) {
		for _, stmt := range stmts {
			switch v := stmt.(type) {
			case *hir.Assign:
				walkTarget(v.Target)
				walkExpr(v.Value, fn)
			case *hir.Return:
				walkExpr(v.Value, fn)
			case *hir.If:
				walkExpr(v.Cond, fn)
				walkStmts(v.Then)
				walkStmts(v.Else)
			case *hir.While:
				walkExpr(v.Cond, fn)
				walkStmts(v.Body)
				walkStmts(v.ElseBody)
			case *hir.For:
				walkExpr(v.Iter, fn)
				walkStmts(v.Body)
				walkStmts(v.ElseBody)
			case *hir.ExprStmt:
				walkExpr(v.Value, fn)
			case *hir.Raise:
				walkExpr(v.Exc, fn)
				walkExpr(v.Cause, fn)
			case *hir.With:
				walkExpr(v.Context, fn)
				walkStmts(v.Body)
			case *hir.Try:
				walkStmts(v.Body)
				for _, h := range v.Handlers {
					walkStmts(h.Body)
				}
				walkStmts(v.Final)
			}
		}
	}

	walkStmts(stmts)
}
