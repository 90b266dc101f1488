package codegen

import (
	"fmt"
	"strings"

	"depyler/common"
	"depyler/hir"
	"depyler/types"
)

// genExpr renders one expression.
func (g *Generator) genExpr(expr hir.Expr) string {
	switch v := expr.(type) {
	case *hir.Literal:
		return g.genLiteral(v)
	case *hir.Var:
		return g.genVar(v)
	case *hir.Binary:
		return g.genBinary(v)
	case *hir.Unary:
		return g.genUnary(v)
	case *hir.Call:
		return g.genCall(v)
	case *hir.MethodCall:
		return g.genMethodCall(v)
	case *hir.Attribute:
		return g.genAttribute(v)
	case *hir.Index:
		return g.genIndex(v)
	case *hir.Slice:
		return g.genSlice(v)
	case *hir.Tuple:
		return "(" + g.genExprList(v.Elts) + ")"
	case *hir.List:
		return "vec![" + g.genExprList(v.Elts) + "]"
	case *hir.Set:
		g.use_("std::collections::HashSet")
		return "HashSet::from([" + g.genExprList(v.Elts) + "])"
	case *hir.Dict:
		return g.genDict(v)
	case *hir.Comp:
		return g.genComp(v)
	case *hir.Lambda:
		return g.genLambda(v)
	case *hir.Await:
		return g.genOperand(v.Value) + ".await"
	case *hir.IfExpr:
		return fmt.Sprintf("if %s { %s } else { %s }",
			g.genCond(v.Test), g.genExpr(v.Body), g.genExpr(v.Orelse))
	case *hir.NamedExpr:
		if g.lifted[v] {
			return sanitizeIdent(v.Target)
		}
		// Unlifted walrus in a position the lifter never visits; the binding
		// cannot outlive the expression, so only the value survives.
		return g.genExpr(v.Value)
	case *hir.FString:
		return g.genFString(v)
	case *hir.Borrow:
		if v.Mutable {
			return "&mut " + g.genOperand(v.Operand)
		}
		return "&" + g.genOperand(v.Operand)
	}

	return "()"
}

// genExprList renders a comma-joined expression list.
func (g *Generator) genExprList(exprs []hir.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = g.genExpr(e)
	}

	return strings.Join(parts, ", ")
}

// genOperand renders an expression, parenthesized when its spelling could
// rebind under an enclosing operator.
func (g *Generator) genOperand(expr hir.Expr) string {
	rendered := g.genExpr(expr)

	switch expr.(type) {
	case *hir.Binary, *hir.IfExpr, *hir.Lambda:
		return "(" + rendered + ")"
	case *hir.Unary:
		return "(" + rendered + ")"
	default:
		return rendered
	}
}

// exprType resolves an expression's Python type, preferring what the local
// walk has learned about named bindings.
func (g *Generator) exprType(expr hir.Expr) types.PyType {
	switch v := expr.(type) {
	case *hir.Var:
		if t, known := g.locals[v.Name]; known && t != nil {
			return t
		}
	case *hir.Literal:
		// A literal's kind implies its type even when the builder left it
		// unannotated.
		if _, unknown := v.Type().(types.PyUnknown); unknown {
			return literalType(v.Kind)
		}
	case *hir.Binary:
		if _, unknown := v.Type().(types.PyUnknown); unknown {
			return g.binaryType(v)
		}
	case *hir.Unary:
		if _, unknown := v.Type().(types.PyUnknown); unknown {
			if v.Op == common.OpNot {
				return types.PyPrim(types.PyBool)
			}
			return g.exprType(v.Operand)
		}
	}

	return expr.Type()
}

// binaryType infers the result type of a binary operation from its operands
// when the builder left the node unannotated.
func (g *Generator) binaryType(bin *hir.Binary) types.PyType {
	if bin.Op.IsComparison() || bin.Op.IsLogical() {
		return types.PyPrim(types.PyBool)
	}

	if bin.Op == common.OpDiv {
		return types.PyPrim(types.PyFloat)
	}

	lhs := g.exprType(bin.Lhs)
	if isFloatType(lhs) || isFloatType(g.exprType(bin.Rhs)) {
		return types.PyPrim(types.PyFloat)
	}

	return lhs
}

// literalType returns the type a literal kind implies.
func literalType(kind int) types.PyType {
	switch kind {
	case hir.LitInt:
		return types.PyPrim(types.PyInt)
	case hir.LitFloat:
		return types.PyPrim(types.PyFloat)
	case hir.LitStr:
		return types.PyPrim(types.PyStr)
	case hir.LitBytes:
		return types.PyPrim(types.PyBytes)
	case hir.LitBool:
		return types.PyPrim(types.PyBool)
	default:
		return types.PyPrim(types.PyNone)
	}
}

// -----------------------------------------------------------------------------

// genLiteral renders a literal.
func (g *Generator) genLiteral(lit *hir.Literal) string {
	switch lit.Kind {
	case hir.LitInt:
		return lit.Value
	case hir.LitFloat:
		if !strings.ContainsAny(lit.Value, ".eE") {
			return lit.Value + ".0"
		}
		return lit.Value
	case hir.LitStr:
		return fmt.Sprintf("%q.to_string()", lit.Value)
	case hir.LitBytes:
		return fmt.Sprintf("b%q.to_vec()", lit.Value)
	case hir.LitBool:
		if lit.Value == "True" {
			return "true"
		}
		return "false"
	default:
		return "None"
	}
}

// genVar renders a name reference.  Module constants uppercase; mutable
// globals read through their lock.
func (g *Generator) genVar(v *hir.Var) string {
	if mutable, isGlobal := g.globals[v.Name]; isGlobal && !g.declared[v.Name] {
		if mutable {
			return strings.ToUpper(sanitizeIdent(v.Name)) + ".lock().unwrap().clone()"
		}
		return strings.ToUpper(sanitizeIdent(v.Name))
	}

	return sanitizeIdent(v.Name)
}

// -----------------------------------------------------------------------------

// genBinary renders a binary operation, applying the arithmetic and
// membership bridges.
func (g *Generator) genBinary(bin *hir.Binary) string {
	if bin.Op.IsLogical() {
		op := "&&"
		if bin.Op == common.OpOr {
			op = "||"
		}
		return g.genCond(bin.Lhs) + " " + op + " " + g.genCond(bin.Rhs)
	}

	if bin.Op.IsComparison() {
		return g.genComparison(bin)
	}

	lhsType := g.exprType(bin.Lhs)
	rhsType := g.exprType(bin.Rhs)

	lhs := g.genOperand(bin.Lhs)
	rhs := g.genOperand(bin.Rhs)

	switch bin.Op {
	case common.OpAdd:
		if isStrType(lhsType) || isStrType(rhsType) {
			return fmt.Sprintf("format!(\"{}{}\", %s, %s)", lhs, rhs)
		}
		if _, isList := lhsType.(*types.PyList); isList {
			return fmt.Sprintf("%s.iter().chain(%s.iter()).cloned().collect::<Vec<_>>()", lhs, rhs)
		}
		return g.genArith(bin, lhs, rhs, "+")
	case common.OpSub:
		// `len(x) - n` underflows usize on its own; saturate on the raw
		// length, then cast back to the value type.
		if call, ok := bin.Lhs.(*hir.Call); ok && call.Func == "len" {
			return fmt.Sprintf("%s.len().saturating_sub(%s as usize) as %s",
				g.genOperand(call.Args[0]), rhs, g.intType())
		}
		return g.genArith(bin, lhs, rhs, "-")
	case common.OpMul:
		return g.genArith(bin, lhs, rhs, "*")
	case common.OpDiv:
		// True division always yields a float.
		if isIntType(lhsType) {
			lhs = "(" + lhs + " as f64)"
		}
		if isIntType(rhsType) {
			rhs = "(" + rhs + " as f64)"
		}
		return lhs + " / " + rhs
	case common.OpFloorDiv:
		return g.genFloorDiv(lhsType, rhsType, lhs, rhs)
	case common.OpMod:
		if isIntType(lhsType) && isIntType(rhsType) {
			return fmt.Sprintf("%s.rem_euclid(%s)", lhs, rhs)
		}
		return lhs + " % " + rhs
	case common.OpPow:
		return g.genPow(bin, lhsType, rhsType, lhs, rhs)
	case common.OpBitAnd:
		return lhs + " & " + rhs
	case common.OpBitOr:
		return lhs + " | " + rhs
	case common.OpBitXor:
		return lhs + " ^ " + rhs
	case common.OpShl:
		return lhs + " << " + rhs
	case common.OpShr:
		return lhs + " >> " + rhs
	}

	return lhs + " /*" + bin.Op.Repr() + "*/ " + rhs
}

// genArith renders ordinary arithmetic, casting the int side when the
// operands mix int and float.
func (g *Generator) genArith(bin *hir.Binary, lhs, rhs, op string) string {
	lhsType := g.exprType(bin.Lhs)
	rhsType := g.exprType(bin.Rhs)

	if isFloatType(lhsType) && isIntType(rhsType) {
		rhs = "(" + rhs + " as f64)"
	} else if isIntType(lhsType) && isFloatType(rhsType) {
		lhs = "(" + lhs + " as f64)"
	}

	return lhs + " " + op + " " + rhs
}

// genFloorDiv renders `//`.  Rust's integer division truncates toward zero;
// Python floors toward negative infinity, so the quotient is adjusted when
// the remainder is nonzero and the signs differ.
func (g *Generator) genFloorDiv(lhsType, rhsType types.PyType, lhs, rhs string) string {
	if isIntType(lhsType) && isIntType(rhsType) {
		return fmt.Sprintf(
			"{ let a = %s; let b = %s; let q = a / b; let r = a %% b; if r != 0 && (r < 0) != (b < 0) { q - 1 } else { q } }",
			lhs, rhs)
	}

	if isIntType(lhsType) {
		lhs = "(" + lhs + " as f64)"
	}
	if isIntType(rhsType) {
		rhs = "(" + rhs + " as f64)"
	}

	return fmt.Sprintf("(%s / %s).floor()", lhs, rhs)
}

// genPow renders `**` through checked integer exponentiation or powf.  A
// literal negative exponent makes the result fractional, so it forces the
// float path even for an integer base.
func (g *Generator) genPow(bin *hir.Binary, lhsType, rhsType types.PyType, lhs, rhs string) string {
	if isIntType(lhsType) && isIntType(rhsType) && !isNegativeIntLiteral(bin.Rhs) {
		return fmt.Sprintf("%s.checked_pow(%s as u32).expect(\"exponentiation overflow\")", lhs, rhs)
	}

	if isIntType(lhsType) {
		lhs = "(" + lhs + " as f64)"
	}
	if isIntType(rhsType) {
		rhs = "(" + rhs + " as f64)"
	}

	return fmt.Sprintf("%s.powf(%s)", lhs, rhs)
}

// genComparison renders comparisons, identity tests, and membership tests.
func (g *Generator) genComparison(bin *hir.Binary) string {
	// Identity and equality against None test the Option.
	if isNoneLiteral(bin.Rhs) {
		operand := g.genOperand(bin.Lhs)
		switch bin.Op {
		case common.OpIs, common.OpEq:
			return operand + ".is_none()"
		case common.OpIsNot, common.OpNotEq:
			return operand + ".is_some()"
		}
	}

	lhs := g.genOperand(bin.Lhs)
	rhs := g.genOperand(bin.Rhs)

	switch bin.Op {
	case common.OpIn:
		return g.genContains(bin.Rhs, rhs, bin.Lhs, lhs)
	case common.OpNotIn:
		return "!" + g.genContains(bin.Rhs, rhs, bin.Lhs, lhs)
	case common.OpIs:
		return lhs + " == " + rhs
	case common.OpIsNot:
		return lhs + " != " + rhs
	default:
		lhs, rhs = g.coerceComparison(bin, lhs, rhs)
		return lhs + " " + bin.Op.Repr() + " " + rhs
	}
}

// coerceComparison reconciles mixed int/float comparisons.  An integer
// literal against a float renders as a typed float literal; a cast would bind
// wrong under a unary minus.  Non-literal integer sides are cast.
func (g *Generator) coerceComparison(bin *hir.Binary, lhs, rhs string) (string, string) {
	lhsType := g.exprType(bin.Lhs)
	rhsType := g.exprType(bin.Rhs)

	switch {
	case isIntType(lhsType) && isFloatType(rhsType):
		if lit, ok := bin.Lhs.(*hir.Literal); ok && lit.Kind == hir.LitInt {
			lhs = lit.Value + ".0f64"
		} else {
			lhs = "(" + lhs + " as f64)"
		}
	case isFloatType(lhsType) && isIntType(rhsType):
		if lit, ok := bin.Rhs.(*hir.Literal); ok && lit.Kind == hir.LitInt {
			rhs = lit.Value + ".0f64"
		} else {
			rhs = "(" + rhs + " as f64)"
		}
	}

	return lhs, rhs
}

// genContains renders the membership bridge: dicts check keys, strings check
// substrings, everything else checks elements.
func (g *Generator) genContains(container hir.Expr, containerSrc string, member hir.Expr, memberSrc string) string {
	switch g.exprType(container).(type) {
	case *types.PyDict:
		return fmt.Sprintf("%s.contains_key(&%s)", containerSrc, memberSrc)
	case types.PyPrim:
		if isStrType(g.exprType(container)) {
			return fmt.Sprintf("%s.contains(&%s)", containerSrc, memberSrc)
		}
	}

	return fmt.Sprintf("%s.contains(&%s)", containerSrc, memberSrc)
}

// genUnary renders a unary operation; `not` coerces its operand to bool
// first.
func (g *Generator) genUnary(un *hir.Unary) string {
	switch un.Op {
	case common.OpNeg:
		return "-" + g.genOperand(un.Operand)
	case common.OpPos:
		return g.genExpr(un.Operand)
	case common.OpNot:
		return "!(" + g.genCond(un.Operand) + ")"
	default: // OpInvert: Rust's ! is bitwise complement on integers.
		return "!" + g.genOperand(un.Operand)
	}
}

// -----------------------------------------------------------------------------

// genIndex renders subscript access with the negative-index bridge.
func (g *Generator) genIndex(idx *hir.Index) string {
	base := g.genOperand(idx.Base)
	index := g.genExpr(idx.Idx)

	baseType := g.exprType(idx.Base)

	switch v := baseType.(type) {
	case *types.PyDict:
		return fmt.Sprintf("%s.get(&%s).cloned().unwrap_or_default()", base, index)
	case *types.PyList:
		return fmt.Sprintf("%s.get(%s).cloned().expect(\"IndexError: list index out of range\")",
			base, g.asIndex(idx.Idx, index, base, baseType))
	case types.PyTuple:
		if lit, ok := idx.Idx.(*hir.Literal); ok && lit.Kind == hir.LitInt {
			return fmt.Sprintf("%s.%s", base, lit.Value)
		}
	case types.PyPrim:
		if v == types.PyStr {
			// Indexing a str yields a one-character string, respecting char
			// boundaries.
			return fmt.Sprintf("%s.chars().nth(%s).map(|c| c.to_string()).expect(\"IndexError: string index out of range\")",
				base, g.asIndex(idx.Idx, index, base, baseType))
		}
		if v == types.PyBytes {
			return fmt.Sprintf("%s[%s]", base, g.asIndex(idx.Idx, index, base, baseType))
		}
	case types.PyUnknown:
		g.needsRuntime = true
		return fmt.Sprintf("%s.py_index(%s)", base, index)
	}

	return fmt.Sprintf("%s[%s]", base, g.asIndex(idx.Idx, index, base, baseType))
}

// asIndex converts a Python index expression into a usize, resolving
// negative indices against the container length.  String bases measure in
// chars so the resolved position matches char-based access.
func (g *Generator) asIndex(idx hir.Expr, rendered, base string, baseType types.PyType) string {
	length := base + ".len()"
	if isStrType(baseType) {
		length = base + ".chars().count()"
	}

	if lit, ok := idx.(*hir.Literal); ok && lit.Kind == hir.LitInt {
		if !strings.HasPrefix(lit.Value, "-") {
			return lit.Value
		}
		return fmt.Sprintf("%s - %s", length, lit.Value[1:])
	}

	if un, ok := idx.(*hir.Unary); ok && un.Op == common.OpNeg {
		return fmt.Sprintf("%s - %s as usize", length, g.genOperand(un.Operand))
	}

	// Index position wants the raw usize length, not the value-position cast.
	if call, ok := idx.(*hir.Call); ok && call.Func == "len" {
		return g.genOperand(call.Args[0]) + ".len()"
	}

	if isUsizeExpr(idx) {
		return rendered
	}

	return fmt.Sprintf("(if %s < 0 { %s as %s + %s } else { %s }) as usize",
		rendered, length, g.intType(), rendered, rendered)
}

// genSlice renders slice access.  Strings slice by character to respect
// UTF-8 boundaries; sequences slice by range and re-collect.
func (g *Generator) genSlice(sl *hir.Slice) string {
	base := g.genOperand(sl.Base)
	baseType := g.exprType(sl.Base)

	// The full-reversal idiom `x[::-1]` has a direct spelling.
	if sl.Start == nil && sl.Stop == nil && isNegOne(sl.Step) {
		if isStrType(baseType) {
			return fmt.Sprintf("%s.chars().rev().collect::<String>()", base)
		}
		return fmt.Sprintf("%s.iter().rev().cloned().collect::<Vec<_>>()", base)
	}

	start := "0"
	if sl.Start != nil {
		start = g.asIndex(sl.Start, g.genExpr(sl.Start), base, baseType)
	}

	stop := base + ".len()"
	if isStrType(baseType) {
		stop = base + ".chars().count()"
	}
	if sl.Stop != nil {
		stop = g.asIndex(sl.Stop, g.genExpr(sl.Stop), base, baseType)
	}

	if isStrType(baseType) {
		return fmt.Sprintf("%s.chars().skip(%s).take((%s).saturating_sub(%s)).collect::<String>()",
			base, start, stop, start)
	}

	sliced := fmt.Sprintf("%s[%s..%s].to_vec()", base, start, stop)

	if sl.Step != nil && !isNegOne(sl.Step) {
		step := g.genExpr(sl.Step)
		return fmt.Sprintf("%s[%s..%s].iter().step_by(%s as usize).cloned().collect::<Vec<_>>()",
			base, start, stop, step)
	}

	return sliced
}

// genDict renders a dict display.
func (g *Generator) genDict(d *hir.Dict) string {
	g.use_("std::collections::HashMap")

	if len(d.Keys) == 0 {
		return "HashMap::new()"
	}

	parts := make([]string, len(d.Keys))
	for i := range d.Keys {
		parts[i] = "(" + g.genExpr(d.Keys[i]) + ", " + g.genExpr(d.Values[i]) + ")"
	}

	return "HashMap::from([" + strings.Join(parts, ", ") + "])"
}

// -----------------------------------------------------------------------------

// genComp renders a comprehension as an iterator chain.
func (g *Generator) genComp(comp *hir.Comp) string {
	iter := g.genIterator(comp.Iter)
	pattern := g.genForTarget(comp.Target, comp.Iter)

	chain := "(" + iter + ")"

	if comp.Condition != nil {
		chain += fmt.Sprintf(".filter(|%s| %s)", pattern, g.genCond(comp.Condition))
	}

	switch comp.Kind {
	case hir.CompDict:
		g.use_("std::collections::HashMap")
		chain += fmt.Sprintf(".map(|%s| (%s, %s))", pattern, g.genExpr(comp.Key), g.genExpr(comp.Element))
		return chain + ".collect::<HashMap<_, _>>()"
	case hir.CompSet:
		g.use_("std::collections::HashSet")
		chain += fmt.Sprintf(".map(|%s| %s)", pattern, g.genExpr(comp.Element))
		return chain + ".collect::<HashSet<_>>()"
	default:
		chain += fmt.Sprintf(".map(|%s| %s)", pattern, g.genExpr(comp.Element))
		return chain + ".collect::<Vec<_>>()"
	}
}

// genLambda renders a lambda; capturing lambdas move their environment.
func (g *Generator) genLambda(lam *hir.Lambda) string {
	params := make([]string, len(lam.Params))
	for i, p := range lam.Params {
		g.declared[p] = true
		params[i] = sanitizeIdent(p)
	}

	prefix := ""
	if len(lam.Captures) > 0 {
		prefix = "move "
	}

	return fmt.Sprintf("%s|%s| %s", prefix, strings.Join(params, ", "), g.genExpr(lam.Body))
}

// genFString renders an f-string as a format! call.
func (g *Generator) genFString(fs *hir.FString) string {
	var template strings.Builder
	var args []string

	for _, part := range fs.Parts {
		if part.Expr == nil {
			template.WriteString(strings.NewReplacer("{", "{{", "}", "}}", `"`, `\"`, `\`, `\\`).Replace(part.Text))
			continue
		}

		template.WriteString("{}")
		args = append(args, g.genExpr(part.Expr))
	}

	if len(args) == 0 {
		return fmt.Sprintf("\"%s\".to_string()", template.String())
	}

	return fmt.Sprintf("format!(\"%s\", %s)", template.String(), strings.Join(args, ", "))
}

// -----------------------------------------------------------------------------

// genIterator renders an expression in iterator position.
func (g *Generator) genIterator(iter hir.Expr) string {
	// range() becomes a native Rust range.
	if call, ok := iter.(*hir.Call); ok {
		switch call.Func {
		case "range":
			return g.genRange(call)
		case "enumerate":
			if len(call.Args) == 1 {
				return g.genIterator(call.Args[0]) + ".enumerate()"
			}
		case "zip":
			if len(call.Args) == 2 {
				return g.genIterator(call.Args[0]) + ".zip(" + g.genIterator(call.Args[1]) + ")"
			}
		case "sorted":
			if len(call.Args) == 1 {
				return fmt.Sprintf("{ let mut v = %s.to_vec(); v.sort(); v }.into_iter()", g.genOperand(call.Args[0]))
			}
		case "reversed":
			if len(call.Args) == 1 {
				return g.genIterator(call.Args[0]) + ".rev()"
			}
		}
	}

	// Dict view methods iterate directly.
	if mc, ok := iter.(*hir.MethodCall); ok {
		obj := g.genOperand(mc.Object)
		switch mc.Method {
		case "items":
			return obj + ".iter()"
		case "keys":
			return obj + ".keys()"
		case "values":
			return obj + ".values()"
		case "splitlines":
			return obj + ".lines()"
		}
	}

	rendered := g.genOperand(iter)

	switch v := g.exprType(iter).(type) {
	case *types.PyDict:
		return rendered + ".keys()"
	case types.PyPrim:
		if v == types.PyStr {
			return rendered + ".chars()"
		}
	case *types.PyList, *types.PySet:
		switch iter.(type) {
		case *hir.Var, *hir.Attribute:
			return rendered + ".iter().cloned()"
		}
	}

	switch iter.(type) {
	case *hir.Var, *hir.Attribute:
		return rendered + ".iter().cloned()"
	default:
		return rendered + ".into_iter()"
	}
}

// genRange renders range() as a Rust range, reversing for negative steps.
func (g *Generator) genRange(call *hir.Call) string {
	switch len(call.Args) {
	case 1:
		return "0.." + g.genOperand(call.Args[0])
	case 2:
		return g.genOperand(call.Args[0]) + ".." + g.genOperand(call.Args[1])
	case 3:
		start := g.genOperand(call.Args[0])
		stop := g.genOperand(call.Args[1])

		if isNegOne(call.Args[2]) {
			return fmt.Sprintf("((%s + 1)..=%s).rev()", stop, start)
		}

		if un, ok := call.Args[2].(*hir.Unary); ok && un.Op == common.OpNeg {
			step := g.genOperand(un.Operand)
			return fmt.Sprintf("((%s + 1)..=%s).rev().step_by(%s as usize)", stop, start, step)
		}

		return fmt.Sprintf("(%s..%s).step_by(%s as usize)", start, stop, g.genOperand(call.Args[2]))
	}

	return "0..0"
}

// -----------------------------------------------------------------------------

// genCond renders an expression in boolean position, applying Python's
// truthiness coercions.
func (g *Generator) genCond(expr hir.Expr) string {
	// Already boolean-shaped expressions pass through; arithmetic results
	// still need the truthiness coercion below.
	switch v := expr.(type) {
	case *hir.Binary:
		if v.Op.IsComparison() || v.Op.IsLogical() {
			return g.genBinary(v)
		}
	case *hir.Unary:
		if v.Op == common.OpNot {
			return g.genUnary(v)
		}
	case *hir.Literal:
		if v.Kind == hir.LitBool {
			return g.genLiteral(v)
		}
	}

	rendered := g.genExpr(expr)

	switch v := g.exprType(expr).(type) {
	case types.PyPrim:
		switch v {
		case types.PyBool:
			return rendered
		case types.PyInt:
			return g.condOperand(expr, rendered) + " != 0"
		case types.PyFloat:
			return g.condOperand(expr, rendered) + " != 0.0"
		case types.PyStr, types.PyBytes:
			return "!" + g.condOperand(expr, rendered) + ".is_empty()"
		}
	case *types.PyList, *types.PyDict, *types.PySet:
		return "!" + g.condOperand(expr, rendered) + ".is_empty()"
	case *types.PyOptional:
		return g.condOperand(expr, rendered) + ".is_some()"
	case types.PyUnknown, types.PyUnion:
		g.needsRuntime = true
		return g.condOperand(expr, rendered) + ".truthy()"
	}

	return rendered
}

// condOperand parenthesizes a rendered expression when a method or operator
// would otherwise bind into it.
func (g *Generator) condOperand(expr hir.Expr, rendered string) string {
	switch expr.(type) {
	case *hir.Var, *hir.Attribute, *hir.Call, *hir.MethodCall, *hir.Index:
		return rendered
	default:
		return "(" + rendered + ")"
	}
}

// -----------------------------------------------------------------------------

// intType is the Rust spelling of the configured default integer type.
func (g *Generator) intType() string {
	return g.mapper.IntWidth.Render()
}

func isStrType(t types.PyType) bool {
	prim, ok := t.(types.PyPrim)
	return ok && prim == types.PyStr
}

func isIntType(t types.PyType) bool {
	prim, ok := t.(types.PyPrim)
	return ok && (prim == types.PyInt || prim == types.PyBool)
}

func isFloatType(t types.PyType) bool {
	prim, ok := t.(types.PyPrim)
	return ok && prim == types.PyFloat
}

func isNoneLiteral(expr hir.Expr) bool {
	lit, ok := expr.(*hir.Literal)
	return ok && lit.Kind == hir.LitNone
}

func isNegOne(expr hir.Expr) bool {
	if expr == nil {
		return false
	}

	if un, ok := expr.(*hir.Unary); ok && un.Op == common.OpNeg {
		if lit, ok := un.Operand.(*hir.Literal); ok {
			return lit.Kind == hir.LitInt && lit.Value == "1"
		}
	}

	if lit, ok := expr.(*hir.Literal); ok {
		return lit.Kind == hir.LitInt && lit.Value == "-1"
	}

	return false
}

// isNegativeIntLiteral reports whether the expression is a negative integer
// literal, spelled directly or through a unary minus.
func isNegativeIntLiteral(expr hir.Expr) bool {
	if un, ok := expr.(*hir.Unary); ok && un.Op == common.OpNeg {
		lit, ok := un.Operand.(*hir.Literal)
		return ok && lit.Kind == hir.LitInt
	}

	lit, ok := expr.(*hir.Literal)
	return ok && lit.Kind == hir.LitInt && strings.HasPrefix(lit.Value, "-")
}

// isUsizeExpr reports whether the expression already renders as a usize.
func isUsizeExpr(expr hir.Expr) bool {
	if mc, ok := expr.(*hir.MethodCall); ok {
		return mc.Method == "len" || mc.Method == "count"
	}

	return false
}
