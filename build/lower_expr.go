package build

import (
	"depyler/common"
	"depyler/hir"
	"depyler/pyast"
	"depyler/report"
	"depyler/types"
)

// lowerExpr lowers one expression and infers its type where possible.
func (b *Builder) lowerExpr(expr pyast.Expr) hir.Expr {
	switch v := expr.(type) {
	case *pyast.Literal:
		return b.lowerLiteral(v)
	case *pyast.Name:
		return b.lowerName(v)
	case *pyast.BinOp:
		bin := &hir.Binary{
			ExprBase: exprBase(v),
			Op:       v.Op,
			Lhs:      b.lowerExpr(v.Lhs),
			Rhs:      b.lowerExpr(v.Rhs),
		}
		bin.SetType(b.inferBinary(bin))
		return bin
	case *pyast.Compare:
		return b.lowerCompare(v)
	case *pyast.UnaryExpr:
		un := &hir.Unary{
			ExprBase: exprBase(v),
			Op:       v.Op,
			Operand:  b.lowerExpr(v.Operand),
		}
		un.SetType(b.inferUnary(un))
		return un
	case *pyast.Call:
		return b.lowerCall(v)
	case *pyast.Attribute:
		attr := &hir.Attribute{
			ExprBase: exprBase(v),
			Object:   b.lowerExpr(v.Value),
			Attr:     v.Attr,
		}
		return attr
	case *pyast.Subscript:
		return b.lowerSubscript(v)
	case *pyast.TupleExpr:
		tup := &hir.Tuple{ExprBase: exprBase(v)}
		elems := make(types.PyTuple, 0, len(v.Elts))
		for _, elt := range v.Elts {
			lowered := b.lowerExpr(elt)
			tup.Elts = append(tup.Elts, lowered)
			elems = append(elems, lowered.Type())
		}
		tup.SetType(elems)
		return tup
	case *pyast.ListExpr:
		list := &hir.List{ExprBase: exprBase(v)}
		for _, elt := range v.Elts {
			list.Elts = append(list.Elts, b.lowerExpr(elt))
		}
		list.SetType(&types.PyList{Elem: commonElemType(list.Elts)})
		return list
	case *pyast.SetExpr:
		set := &hir.Set{ExprBase: exprBase(v)}
		for _, elt := range v.Elts {
			set.Elts = append(set.Elts, b.lowerExpr(elt))
		}
		set.SetType(&types.PySet{Elem: commonElemType(set.Elts)})
		return set
	case *pyast.DictExpr:
		dict := &hir.Dict{ExprBase: exprBase(v)}
		for i := range v.Keys {
			dict.Keys = append(dict.Keys, b.lowerExpr(v.Keys[i]))
			dict.Values = append(dict.Values, b.lowerExpr(v.Values[i]))
		}
		dict.SetType(&types.PyDict{
			Key:   commonElemType(dict.Keys),
			Value: commonElemType(dict.Values),
		})
		return dict
	case *pyast.Comp:
		return b.lowerComp(v)
	case *pyast.Lambda:
		return b.lowerLambda(v)
	case *pyast.Await:
		if b.asyncDepth == 0 {
			report.Raise(v.Span(), "await outside an async function")
		}
		aw := &hir.Await{ExprBase: exprBase(v), Value: b.lowerExpr(v.Value)}
		aw.SetType(aw.Value.Type())
		return aw
	case *pyast.IfExp:
		ife := &hir.IfExpr{
			ExprBase: exprBase(v),
			Test:     b.lowerExpr(v.Test),
			Body:     b.lowerExpr(v.Body),
			Orelse:   b.lowerExpr(v.Orelse),
		}
		ife.SetType(ife.Body.Type())
		return ife
	case *pyast.NamedExpr:
		ne := &hir.NamedExpr{
			ExprBase: exprBase(v),
			Target:   v.Target,
			Value:    b.lowerExpr(v.Value),
		}
		ne.SetType(ne.Value.Type())
		b.define(v.Target, ne.Value.Type())
		return ne
	case *pyast.FString:
		fs := &hir.FString{ExprBase: exprBase(v)}
		for _, part := range v.Parts {
			if part.Expr != nil {
				fs.Parts = append(fs.Parts, hir.FStringPart{Expr: b.lowerExpr(part.Expr)})
			} else {
				fs.Parts = append(fs.Parts, hir.FStringPart{Text: part.Text})
			}
		}
		fs.SetType(types.PyPrim(types.PyStr))
		return fs
	case *pyast.Yield:
		if v.IsFrom {
			report.Raise(v.Span(), "yield from")
		}
		report.Raise(v.Span(), "generator")
	case *pyast.Starred:
		report.Raise(v.Span(), "starred expression")
	}

	report.Raise(expr.Span(), "expression")
	return nil
}

func exprBase(node pyast.Node) hir.ExprBase {
	return hir.NewExprBase(hir.NewNodeBaseOn(node.Span()), nil)
}

// -----------------------------------------------------------------------------

// lowerLiteral lowers a literal and fixes its type.
func (b *Builder) lowerLiteral(lit *pyast.Literal) hir.Expr {
	out := &hir.Literal{ExprBase: exprBase(lit), Value: lit.Value}

	switch lit.Kind {
	case pyast.LitInt:
		out.Kind = hir.LitInt
		out.SetType(types.PyPrim(types.PyInt))
	case pyast.LitFloat:
		out.Kind = hir.LitFloat
		out.SetType(types.PyPrim(types.PyFloat))
	case pyast.LitStr:
		out.Kind = hir.LitStr
		out.SetType(types.PyPrim(types.PyStr))
	case pyast.LitBytes:
		out.Kind = hir.LitBytes
		out.SetType(types.PyPrim(types.PyBytes))
	case pyast.LitBool:
		out.Kind = hir.LitBool
		out.SetType(types.PyPrim(types.PyBool))
	default:
		out.Kind = hir.LitNone
		out.SetType(types.PyPrim(types.PyNone))
	}

	return out
}

// lowerName lowers a name reference, resolving it against the scope stack.
func (b *Builder) lowerName(name *pyast.Name) hir.Expr {
	v := &hir.Var{
		ExprBase: exprBase(name),
		Name:     name.Name,
		IsParam:  b.params[name.Name],
	}

	if typ, ok := b.lookup(name.Name); ok {
		v.SetType(typ)
	}

	return v
}

// lowerCompare lowers a comparison chain.  `a < b <= c` becomes
// `a < b and b <= c`; the common two-operand case stays a single Binary.
func (b *Builder) lowerCompare(cmp *pyast.Compare) hir.Expr {
	operands := append([]pyast.Expr{cmp.Left}, cmp.Rest...)

	var result hir.Expr
	for i, op := range cmp.Ops {
		bin := &hir.Binary{
			ExprBase: exprBase(cmp),
			Op:       op,
			Lhs:      b.lowerExpr(operands[i]),
			Rhs:      b.lowerExpr(operands[i+1]),
		}
		bin.SetType(types.PyPrim(types.PyBool))

		if result == nil {
			result = bin
		} else {
			and := &hir.Binary{
				ExprBase: exprBase(cmp),
				Op:       common.OpAnd,
				Lhs:      result,
				Rhs:      bin,
			}
			and.SetType(types.PyPrim(types.PyBool))
			result = and
		}
	}

	return result
}

// lowerCall lowers a call.  Calls on a dotted or plain name become Call nodes;
// calls on any other expression become MethodCall nodes.
func (b *Builder) lowerCall(call *pyast.Call) hir.Expr {
	lowerArgs := func() ([]hir.Expr, []hir.Kwarg) {
		var args []hir.Expr
		for _, arg := range call.Args {
			args = append(args, b.lowerExpr(arg))
		}

		var kwargs []hir.Kwarg
		for _, kw := range call.Keywords {
			kwargs = append(kwargs, hir.Kwarg{Name: kw.Name, Value: b.lowerExpr(kw.Value)})
		}

		return args, kwargs
	}

	switch fn := call.Func.(type) {
	case *pyast.Name:
		args, kwargs := lowerArgs()
		out := &hir.Call{ExprBase: exprBase(call), Func: fn.Name, Args: args, Kwargs: kwargs}
		out.SetType(b.inferCall(out))
		return out
	case *pyast.Attribute:
		// A dotted module function (`hashlib.sha256`) stays a Call; a call on
		// a value becomes a MethodCall.
		if root, ok := fn.Value.(*pyast.Name); ok {
			if _, inScope := b.lookup(root.Name); !inScope && !b.params[root.Name] {
				args, kwargs := lowerArgs()
				out := &hir.Call{
					ExprBase: exprBase(call),
					Func:     root.Name + "." + fn.Attr,
					Args:     args,
					Kwargs:   kwargs,
				}
				out.SetType(b.inferCall(out))
				return out
			}
		}

		object := b.lowerExpr(fn.Value)
		args, kwargs := lowerArgs()
		out := &hir.MethodCall{
			ExprBase: exprBase(call),
			Object:   object,
			Method:   fn.Attr,
			Args:     args,
			Kwargs:   kwargs,
		}
		out.SetType(b.inferMethodCall(out))
		return out
	}

	report.Raise(call.Span(), "call on a computed callee")
	return nil
}

// lowerSubscript lowers an index or slice access.
func (b *Builder) lowerSubscript(sub *pyast.Subscript) hir.Expr {
	base := b.lowerExpr(sub.Value)

	if slice, ok := sub.Index.(*pyast.SliceExpr); ok {
		out := &hir.Slice{ExprBase: exprBase(sub), Base: base}
		if slice.Start != nil {
			out.Start = b.lowerExpr(slice.Start)
		}
		if slice.Stop != nil {
			out.Stop = b.lowerExpr(slice.Stop)
		}
		if slice.Step != nil {
			out.Step = b.lowerExpr(slice.Step)
		}
		out.SetType(base.Type())
		return out
	}

	out := &hir.Index{ExprBase: exprBase(sub), Base: base, Idx: b.lowerExpr(sub.Index)}
	out.SetType(indexResultType(base.Type()))
	return out
}

// lowerComp lowers a comprehension.  Generator expressions over non-trivial
// iterators are outside the supported subset.
func (b *Builder) lowerComp(comp *pyast.Comp) hir.Expr {
	if comp.Kind == pyast.CompGenerator {
		report.Raise(comp.Span(), "generator expression")
	}

	iter := b.lowerExpr(comp.Iter)

	b.pushScope()
	defer b.popScope()

	target := b.lowerTarget(comp.Target)
	b.defineTarget(target, elementType(iter.Type()))

	out := &hir.Comp{
		ExprBase: exprBase(comp),
		Target:   target,
		Iter:     iter,
	}

	switch comp.Kind {
	case pyast.CompList:
		out.Kind = hir.CompList
	case pyast.CompSet:
		out.Kind = hir.CompSet
	case pyast.CompDict:
		out.Kind = hir.CompDict
		out.Key = b.lowerExpr(comp.Key)
	}

	out.Element = b.lowerExpr(comp.Element)

	if comp.Condition != nil {
		out.Condition = b.lowerExpr(comp.Condition)
	}

	switch out.Kind {
	case hir.CompList:
		out.SetType(&types.PyList{Elem: out.Element.Type()})
	case hir.CompSet:
		out.SetType(&types.PySet{Elem: out.Element.Type()})
	case hir.CompDict:
		out.SetType(&types.PyDict{Key: out.Key.Type(), Value: out.Element.Type()})
	}

	return out
}

// lowerLambda lowers a lambda, classifying its free variables as captures.
func (b *Builder) lowerLambda(lam *pyast.Lambda) hir.Expr {
	out := &hir.Lambda{ExprBase: exprBase(lam)}

	b.pushScope()
	defer b.popScope()

	bound := make(map[string]bool)
	for _, p := range lam.Params {
		out.Params = append(out.Params, p.Name)
		bound[p.Name] = true
		b.define(p.Name, b.mapper.FromAnnotation(p.Annotation))
	}

	out.Body = b.lowerExpr(lam.Body)

	// Free variables of the body that resolve in an enclosing scope are
	// captures.
	seen := make(map[string]bool)
	collectFreeVars(out.Body, bound, seen, &out.Captures)

	return out
}

// collectFreeVars walks an HIR expression collecting referenced names that are
// not bound within the lambda itself.
func collectFreeVars(expr hir.Expr, bound, seen map[string]bool, captures *[]string) {
	walkExpr(expr, func(e hir.Expr) {
		if v, ok := e.(*hir.Var); ok && !bound[v.Name] && !seen[v.Name] {
			seen[v.Name] = true
			*captures = append(*captures, v.Name)
		}
	})
}

// walkExpr invokes fn on an expression and all of its sub-expressions.
func walkExpr(expr hir.Expr, fn func(hir.Expr)) {
	if expr == nil {
		return
	}

	fn(expr)

	switch v := expr.(type) {
	case *hir.Binary:
		walkExpr(v.Lhs, fn)
		walkExpr(v.Rhs, fn)
	case *hir.Unary:
		walkExpr(v.Operand, fn)
	case *hir.Call:
		for _, arg := range v.Args {
			walkExpr(arg, fn)
		}
		for _, kw := range v.Kwargs {
			walkExpr(kw.Value, fn)
		}
	case *hir.MethodCall:
		walkExpr(v.Object, fn)
		for _, arg := range v.Args {
			walkExpr(arg, fn)
		}
		for _, kw := range v.Kwargs {
			walkExpr(kw.Value, fn)
		}
	case *hir.Attribute:
		walkExpr(v.Object, fn)
	case *hir.Index:
		walkExpr(v.Base, fn)
		walkExpr(v.Idx, fn)
	case *hir.Slice:
		walkExpr(v.Base, fn)
		walkExpr(v.Start, fn)
		walkExpr(v.Stop, fn)
		walkExpr(v.Step, fn)
	case *hir.Tuple:
		for _, elt := range v.Elts {
			walkExpr(elt, fn)
		}
	case *hir.List:
		for _, elt := range v.Elts {
			walkExpr(elt, fn)
		}
	case *hir.Set:
		for _, elt := range v.Elts {
			walkExpr(elt, fn)
		}
	case *hir.Dict:
		for i := range v.Keys {
			walkExpr(v.Keys[i], fn)
			walkExpr(v.Values[i], fn)
		}
	case *hir.Comp:
		walkExpr(v.Iter, fn)
		walkExpr(v.Key, fn)
		walkExpr(v.Element, fn)
		walkExpr(v.Condition, fn)
	case *hir.Lambda:
		walkExpr(v.Body, fn)
	case *hir.Await:
		walkExpr(v.Value, fn)
	case *hir.IfExpr:
		walkExpr(v.Test, fn)
		walkExpr(v.Body, fn)
		walkExpr(v.Orelse, fn)
	case *hir.NamedExpr:
		walkExpr(v.Value, fn)
	case *hir.FString:
		for _, part := range v.Parts {
			walkExpr(part.Expr, fn)
		}
	case *hir.Borrow:
		walkExpr(v.Operand, fn)
	}
}
