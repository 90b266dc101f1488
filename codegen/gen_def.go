package codegen

import (
	"fmt"
	"strings"

	"depyler/borrow"
	"depyler/hir"
	"depyler/report"
	"depyler/types"
)

// genFunc emits one function or method.  The className is "" for free
// functions; for methods it names the enclosing impl block's type.
func (g *Generator) genFunc(fn *hir.Func, className string) string {
	g.resetFunc(fn)

	var sb strings.Builder

	// Docstring becomes a doc comment.
	for _, line := range docLines(fn.Docstring) {
		g.line(&sb, "/// %s", line)
	}

	// Borrowing insights surface as comments ahead of the signature; the
	// emitter never acts on them.
	if result := g.results[fn]; result != nil {
		for _, insight := range result.Insights {
			g.line(&sb, "// %s", insight.Message)
		}
	}

	// The argparse idiom is recognized structurally before any statement
	// emits, so the derive struct can precede the function.
	g.recognizeArgParse(fn.Body)

	// A body that raises outside any try promotes the return type to Result.
	g.retResult = raisesOutsideTry(fn.Body)

	sig := g.genSignature(fn, className)
	g.line(&sb, "%s {", sig)

	g.indent++
	g.genBody(&sb, fn.Body)
	g.indent--

	g.line(&sb, "}")

	return sb.String()
}

// genBody emits a function body, placing a lone trailing return in tail
// position.
func (g *Generator) genBody(sb *strings.Builder, body []hir.Stmt) {
	if len(body) == 1 {
		if ret, ok := body[0].(*hir.Return); ok && ret.Value != nil {
			expr := g.cowReturn(ret.Value, g.genExpr(ret.Value))
			if g.retResult {
				expr = "Ok(" + expr + ")"
			}
			g.line(sb, "%s", expr)
			return
		}
	}

	g.genBlock(sb, body)

	// A Result-promoted function that can fall off the end needs a trailing
	// Ok.
	if g.retResult && !endsWithReturn(body) {
		g.line(sb, "Ok(())")
	}
}

// endsWithReturn reports whether the final statement is a return or raise.
func endsWithReturn(body []hir.Stmt) bool {
	if len(body) == 0 {
		return false
	}

	switch body[len(body)-1].(type) {
	case *hir.Return, *hir.Raise:
		return true
	default:
		return false
	}
}

// raisesOutsideTry reports whether the body contains a raise not enclosed by
// a try.
func raisesOutsideTry(body []hir.Stmt) bool {
	for _, stmt := range body {
		switch v := stmt.(type) {
		case *hir.Raise:
			return true
		case *hir.If:
			if raisesOutsideTry(v.Then) || raisesOutsideTry(v.Else) {
				return true
			}
		case *hir.While:
			if raisesOutsideTry(v.Body) || raisesOutsideTry(v.ElseBody) {
				return true
			}
		case *hir.For:
			if raisesOutsideTry(v.Body) || raisesOutsideTry(v.ElseBody) {
				return true
			}
		case *hir.With:
			if raisesOutsideTry(v.Body) {
				return true
			}
		case *hir.Try:
			// Raises in the guarded body are absorbed by the handlers, but a
			// raise inside a handler propagates out.
			for _, h := range v.Handlers {
				if raisesOutsideTry(h.Body) {
					return true
				}
			}
			if raisesOutsideTry(v.Final) {
				return true
			}
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// genSignature synthesizes the Rust signature from the borrowing strategies.
func (g *Generator) genSignature(fn *hir.Func, className string) string {
	var params []string

	pub := ""
	if className != "" {
		pub = "pub "
	}

	for _, param := range fn.Params {
		if className != "" && (param.Name == "self" || param.Name == "cls") {
			if fn.IsStatic || fn.IsClassm {
				continue
			}

			pattern := g.paramPattern(param.Name)
			if pattern != nil && (pattern.Mutated || pattern.Moved) {
				params = append(params, "&mut self")
			} else {
				params = append(params, "&self")
			}
			continue
		}

		params = append(params, g.genParam(param))
	}

	name := sanitizeIdent(fn.Name)
	if className != "" && fn.Name == "__init__" {
		name = "new"
	}

	lifetimes := g.collectLifetimes(fn)

	async := ""
	if fn.Props.IsAsync {
		g.need("tokio")
		async = "async "
	}

	sig := fmt.Sprintf("%s%sfn %s%s(%s)", pub, async, name, lifetimes, strings.Join(params, ", "))

	ret := g.genReturnType(fn, className)
	if ret != "" {
		sig += " -> " + ret
	}

	return sig
}

// genParam renders one parameter under its borrowing strategy.
func (g *Generator) genParam(param *hir.Param) string {
	name := sanitizeIdent(param.Name)
	base := g.mapType(param.Type, param.Span())

	strategy := param.Strategy
	if strategy == nil {
		// Borrowing analysis never fails; a missing strategy means analysis
		// was skipped, so fall back to the safest choice.
		strategy = &hir.Strategy{Kind: hir.TakeOwnership}
	}

	g.locals[param.Name] = param.Type
	g.declared[param.Name] = true

	switch strategy.Kind {
	case hir.TakeOwnership:
		pattern := g.paramPattern(param.Name)
		if pattern != nil && (pattern.Mutated || pattern.Moved) {
			return fmt.Sprintf("mut %s: %s", name, g.renderType(base))
		}
		return fmt.Sprintf("%s: %s", name, g.renderType(base))
	case hir.BorrowImmutable:
		if _, isString := base.(types.RustString); isString {
			return fmt.Sprintf("%s: %s", name, g.renderType(types.RustStr{Lifetime: strategy.Lifetime}))
		}
		return fmt.Sprintf("%s: %s", name, g.renderType(&types.RustRef{Lifetime: strategy.Lifetime, Inner: base}))
	case hir.BorrowMutable:
		return fmt.Sprintf("%s: %s", name, g.renderType(&types.RustRef{Mut: true, Lifetime: strategy.Lifetime, Inner: base}))
	case hir.UseCow:
		g.use_("std::borrow::Cow")
		lt := strategy.Lifetime
		if lt == "" {
			lt = "'static"
		}
		return fmt.Sprintf("%s: %s", name, g.renderType(&types.RustCow{Lifetime: lt, Inner: &types.RustCustom{Name: "str"}}))
	default: // UseSharedOwnership
		if strategy.ThreadSafe {
			g.use_("std::sync::Arc")
			return fmt.Sprintf("%s: Arc<%s>", name, g.renderType(base))
		}
		g.use_("std::rc::Rc")
		return fmt.Sprintf("%s: Rc<%s>", name, g.renderType(base))
	}
}

// genReturnType renders the return type, promoting to Result when the body
// raises.  A None return becomes no annotation at all.
func (g *Generator) genReturnType(fn *hir.Func, className string) string {
	var ret types.RustType

	if className != "" && fn.Name == "__init__" {
		ret = &types.RustCustom{Name: "Self"}
	} else {
		ret = g.mapType(fn.Returns, fn.Span())
	}

	if prim, ok := ret.(types.RustPrim); ok && prim == types.RustUnit {
		ret = nil
	}

	if g.retResult {
		inner := ret
		if inner == nil {
			inner = types.RustUnit
		}
		return g.renderType(&types.RustResult{Ok: inner, Err: types.RustString{}})
	}

	if ret == nil {
		return ""
	}

	return g.renderType(ret)
}

// collectLifetimes renders the generic lifetime list when any strategy names
// one.  Every named lifetime must be used by a parameter, so the list is
// derived from the strategies themselves.
func (g *Generator) collectLifetimes(fn *hir.Func) string {
	var names []string
	seen := make(map[string]bool)

	for _, param := range fn.Params {
		if param.Strategy == nil {
			continue
		}

		lt := param.Strategy.Lifetime
		if lt != "" && lt != "'static" && !seen[lt] {
			seen[lt] = true
			names = append(names, lt)
		}
	}

	if len(names) == 0 {
		return ""
	}

	return "<" + strings.Join(names, ", ") + ">"
}

// paramPattern returns the usage pattern for one of the current function's
// parameters.
func (g *Generator) paramPattern(name string) *hir.UsagePattern {
	result := g.results[g.fn]
	if result == nil {
		return nil
	}

	return result.Patterns[name]
}

// -----------------------------------------------------------------------------

// mapType maps a Python type, downgrading the function to boxed emission when
// precise mapping fails with boxing disabled.
func (g *Generator) mapType(t types.PyType, span *report.TextSpan) types.RustType {
	mapper := g.mapper
	if g.fnDynamic {
		mapper = &types.Mapper{Dynamic: true, IntWidth: g.mapper.IntWidth}
	}

	rust, err := mapper.Map(t)
	if err == nil {
		return rust
	}

	// Downgrade this function and retry with boxing enabled.
	g.fnDynamic = true

	dyn := &types.Mapper{Dynamic: true, IntWidth: g.mapper.IntWidth}
	rust, err = dyn.Map(t)
	if err != nil {
		report.RaiseInternal("dynamic mapping failed for %s", t.Repr())
	}

	return rust
}

// renderType renders a Rust type, recording the use paths and runtime needs
// its spelling implies.
func (g *Generator) renderType(t types.RustType) string {
	g.recordTypeUses(t)
	return t.Render()
}

// recordTypeUses walks a Rust type recording imports.
func (g *Generator) recordTypeUses(t types.RustType) {
	switch v := t.(type) {
	case *types.RustHashMap:
		g.use_("std::collections::HashMap")
		g.recordTypeUses(v.Key)
		g.recordTypeUses(v.Value)
	case *types.RustHashSet:
		g.use_("std::collections::HashSet")
		g.recordTypeUses(v.Elem)
	case *types.RustVec:
		g.recordTypeUses(v.Elem)
	case *types.RustOption:
		g.recordTypeUses(v.Elem)
	case *types.RustRef:
		g.recordTypeUses(v.Inner)
	case *types.RustCow:
		g.use_("std::borrow::Cow")
		g.recordTypeUses(v.Inner)
	case *types.RustResult:
		g.recordTypeUses(v.Ok)
		g.recordTypeUses(v.Err)
	case types.RustTuple:
		for _, elem := range v {
			g.recordTypeUses(elem)
		}
	case types.RustDynamic:
		g.needsRuntime = true
	}
}

// -----------------------------------------------------------------------------

// genClass emits a struct and its impl block.
func (g *Generator) genClass(cls *hir.Class) string {
	var sb strings.Builder

	for _, line := range docLines(cls.Docstring) {
		g.line(&sb, "/// %s", line)
	}

	g.line(&sb, "#[derive(Debug, Clone)]")
	g.line(&sb, "pub struct %s {", cls.Name)

	g.indent++
	for _, field := range cls.Fields {
		if field.ClassLevel {
			continue
		}
		g.line(&sb, "pub %s: %s,", sanitizeIdent(field.Name), g.genFieldType(cls, field))
	}
	g.indent--
	g.line(&sb, "}")

	if len(cls.Methods) == 0 && !hasClassLevelFields(cls) && !cls.IsDataclass {
		return sb.String()
	}

	sb.WriteString("\n")
	g.line(&sb, "impl %s {", cls.Name)
	g.indent++

	// Class-level fields become associated constants.
	for _, field := range cls.Fields {
		if !field.ClassLevel || field.Default == nil {
			continue
		}
		g.line(&sb, "pub const %s: %s = %s;",
			strings.ToUpper(sanitizeIdent(field.Name)),
			g.renderType(g.mapType(field.Type, field.Span())),
			g.genExpr(field.Default))
	}

	hasInit := false
	for _, method := range cls.Methods {
		if method.Name == "__init__" {
			hasInit = true
			sb.WriteString(g.genInit(cls, method))
			continue
		}

		sb.WriteString(g.genFunc(method, cls.Name))
	}

	// A dataclass without an explicit __init__ still gets a constructor.
	if cls.IsDataclass && !hasInit {
		sb.WriteString(g.genDataclassNew(cls))
	}

	g.indent--
	g.line(&sb, "}")

	return sb.String()
}

// genInit emits __init__ as an associated `new` constructor.  Assignments to
// self fields become struct field initializers; everything else emits ahead
// of the construction.
func (g *Generator) genInit(cls *hir.Class, fn *hir.Func) string {
	g.resetFunc(fn)

	var sb strings.Builder
	g.line(&sb, "%s {", g.genSignature(fn, cls.Name))
	g.indent++

	inits := make(map[string]string)
	var order []string

	for _, stmt := range fn.Body {
		if as, ok := stmt.(*hir.Assign); ok {
			if attr, ok := as.Target.(*hir.AttrTarget); ok {
				if obj, ok := attr.Object.(*hir.Var); ok && obj.Name == "self" {
					if _, seen := inits[attr.Attr]; !seen {
						order = append(order, attr.Attr)
					}
					inits[attr.Attr] = g.genExpr(as.Value)
					continue
				}
			}
		}

		g.genStmt(&sb, stmt)
	}

	g.line(&sb, "Self {")
	g.indent++
	for _, name := range order {
		g.line(&sb, "%s: %s,", sanitizeIdent(name), inits[name])
	}
	g.indent--
	g.line(&sb, "}")

	g.indent--
	g.line(&sb, "}")

	return sb.String()
}

// genDataclassNew synthesizes a constructor from the declared fields.
func (g *Generator) genDataclassNew(cls *hir.Class) string {
	var params, inits []string

	for _, field := range cls.Fields {
		if field.ClassLevel {
			continue
		}

		name := sanitizeIdent(field.Name)
		params = append(params, fmt.Sprintf("%s: %s", name, g.genFieldType(cls, field)))
		inits = append(inits, name)
	}

	var sb strings.Builder
	g.line(&sb, "pub fn new(%s) -> Self {", strings.Join(params, ", "))
	g.indent++
	g.line(&sb, "Self { %s }", strings.Join(inits, ", "))
	g.indent--
	g.line(&sb, "}")

	return sb.String()
}

// genFieldType renders one instance field.  A field typed as its own class is
// a back-edge; it boxes so the struct has a finite size.  A mutated back-edge
// needs shared interior mutability instead.
func (g *Generator) genFieldType(cls *hir.Class, field *hir.Field) string {
	selfRef, optional := backEdgeType(field.Type, cls.Name)
	if !selfRef {
		return g.renderType(g.mapType(field.Type, field.Span()))
	}

	if classMutatesField(cls, field.Name) {
		g.use_("std::cell::RefCell")
		g.use_("std::rc::Rc")
		inner := fmt.Sprintf("Rc<RefCell<%s>>", cls.Name)
		if optional {
			return "Option<" + inner + ">"
		}
		return inner
	}

	return fmt.Sprintf("Option<Box<%s>>", cls.Name)
}

// backEdgeType reports whether a field type references the named class,
// directly or through an Optional.
func backEdgeType(t types.PyType, className string) (selfRef, optional bool) {
	switch v := t.(type) {
	case *types.PyCustom:
		return v.Name == className || v.Name == "Self", false
	case *types.PyOptional:
		ref, _ := backEdgeType(v.Elem, className)
		return ref, true
	default:
		return false, false
	}
}

// classMutatesField reports whether any method outside the constructor
// assigns through the named self field.
func classMutatesField(cls *hir.Class, name string) bool {
	for _, method := range cls.Methods {
		if method.Name == "__init__" {
			continue
		}
		if bodyAssignsSelfField(method.Body, name) {
			return true
		}
	}

	return false
}

func bodyAssignsSelfField(body []hir.Stmt, name string) bool {
	for _, stmt := range body {
		switch v := stmt.(type) {
		case *hir.Assign:
			if attr, ok := v.Target.(*hir.AttrTarget); ok {
				if obj, ok := attr.Object.(*hir.Var); ok && obj.Name == "self" && attr.Attr == name {
					return true
				}
			}
		case *hir.If:
			if bodyAssignsSelfField(v.Then, name) || bodyAssignsSelfField(v.Else, name) {
				return true
			}
		case *hir.While:
			if bodyAssignsSelfField(v.Body, name) || bodyAssignsSelfField(v.ElseBody, name) {
				return true
			}
		case *hir.For:
			if bodyAssignsSelfField(v.Body, name) || bodyAssignsSelfField(v.ElseBody, name) {
				return true
			}
		case *hir.With:
			if bodyAssignsSelfField(v.Body, name) {
				return true
			}
		case *hir.Try:
			if bodyAssignsSelfField(v.Body, name) || bodyAssignsSelfField(v.Final, name) {
				return true
			}
			for _, h := range v.Handlers {
				if bodyAssignsSelfField(h.Body, name) {
					return true
				}
			}
		}
	}

	return false
}

func hasClassLevelFields(cls *hir.Class) bool {
	for _, field := range cls.Fields {
		if field.ClassLevel && field.Default != nil {
			return true
		}
	}

	return false
}

// genProtocol emits a structural interface as a trait of method signatures.
func (g *Generator) genProtocol(p *hir.Protocol) string {
	var sb strings.Builder

	for _, line := range docLines(p.Docstring) {
		g.line(&sb, "/// %s", line)
	}

	g.line(&sb, "pub trait %s {", p.Name)
	g.indent++

	for _, method := range p.Methods {
		g.resetFunc(method)
		g.line(&sb, "%s;", g.genSignature(method, p.Name))
	}

	g.indent--
	g.line(&sb, "}")

	return sb.String()
}

// genTypeAlias emits a type alias.
func (g *Generator) genTypeAlias(ta *hir.TypeAlias) string {
	var sb strings.Builder
	g.line(&sb, "pub type %s = %s;", ta.Name, g.renderType(g.mapType(ta.Type, ta.Span())))
	return sb.String()
}

// genConstant emits a module-level binding.  Immutable bindings become consts
// or lazy statics; mutable ones become lock-wrapped statics so reads and
// writes rewrite to scoped lock acquisitions.
func (g *Generator) genConstant(c *hir.Constant) string {
	g.locals = make(map[string]types.PyType)
	g.declared = make(map[string]bool)
	g.lifted = make(map[*hir.NamedExpr]bool)
	g.walrusNames = make(map[string]bool)
	g.mutatedLocals = make(map[string]bool)
	g.fn = nil
	g.fnDynamic = false
	g.retResult = false

	name := strings.ToUpper(sanitizeIdent(c.Name))
	rust := g.mapType(c.Type, c.Span())
	value := g.genExpr(c.Value)

	var sb strings.Builder

	if c.Mutable {
		g.need("once_cell")
		g.use_("once_cell::sync::Lazy")
		g.use_("std::sync::Mutex")
		g.line(&sb, "static %s: Lazy<Mutex<%s>> = Lazy::new(|| Mutex::new(%s));", name, g.renderType(rust), value)
		return sb.String()
	}

	if rust.IsCopy() {
		g.line(&sb, "pub const %s: %s = %s;", name, g.renderType(rust), value)
		return sb.String()
	}

	g.need("once_cell")
	g.use_("once_cell::sync::Lazy")
	g.line(&sb, "static %s: Lazy<%s> = Lazy::new(|| %s);", name, g.renderType(rust), value)
	return sb.String()
}

// -----------------------------------------------------------------------------

// docLines splits a docstring into trimmed doc comment lines.
func docLines(doc string) []string {
	if doc == "" {
		return nil
	}

	raw := strings.Split(strings.TrimSpace(doc), "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSpace(line)
	}

	return lines
}

// rustKeywords is the set of Rust keywords that cannot be used as
// identifiers.
var rustKeywords = map[string]bool{
	"as": true, "box": true, "break": true, "const": true, "continue": true,
	"crate": true, "dyn": true, "else": true, "enum": true, "extern": true,
	"fn": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true,
	"ref": true, "return": true, "static": true, "struct": true, "super": true,
	"trait": true, "type": true, "unsafe": true, "use": true, "where": true,
	"while": true, "async": true, "await": true, "yield": true, "union": true,
}

// sanitizeIdent avoids Rust keywords by substitution; `self` is preserved for
// true instance methods.
func sanitizeIdent(name string) string {
	if name == "self" {
		return name
	}

	if rustKeywords[name] {
		return name + "_"
	}

	return name
}

// scanMutatedLocals pre-scans a body for locals that need `let mut`: names
// assigned more than once, mutated through an index or attribute, or mutated
// by a consuming method call.
func scanMutatedLocals(body []hir.Stmt) map[string]bool {
	counts := make(map[string]int)
	mutated := make(map[string]bool)

	var scanStmts func(stmts []hir.Stmt, inLoop bool)

	scanTarget := func(target hir.AssignTarget, inLoop bool) {
		switch v := target.(type) {
		case *hir.SymbolTarget:
			counts[v.Name]++
			if inLoop && counts[v.Name] > 0 {
				// Reassignment inside a loop mutates even a first binding
				// declared outside it.
				if counts[v.Name] > 1 {
					mutated[v.Name] = true
				}
			}
			if counts[v.Name] > 1 {
				mutated[v.Name] = true
			}
		case *hir.AttrTarget:
			if obj, ok := v.Object.(*hir.Var); ok {
				mutated[obj.Name] = true
			}
		case *hir.IndexTarget:
			if base, ok := v.Base.(*hir.Var); ok {
				mutated[base.Name] = true
			}
		case *hir.TupleTarget:
			for _, elt := range v.Elts {
				if sym, ok := elt.(*hir.SymbolTarget); ok {
					counts[sym.Name]++
					if counts[sym.Name] > 1 {
						mutated[sym.Name] = true
					}
				}
			}
		}
	}

	scanExpr := func(expr hir.Expr) {
		walkExprTree(expr, func(e hir.Expr) {
			if mc, ok := e.(*hir.MethodCall); ok {
				if obj, ok := mc.Object.(*hir.Var); ok && borrow.ConsumingMethods[mc.Method] {
					mutated[obj.Name] = true
				}
			}
		})
	}

	scanStmts = func(stmts []hir.Stmt, inLoop bool) {
		for _, stmt := range stmts {
			switch v := stmt.(type) {
			case *hir.Assign:
				scanTarget(v.Target, inLoop)
				scanExpr(v.Value)
			case *hir.Return:
				scanExpr(v.Value)
			case *hir.If:
				scanExpr(v.Cond)
				scanStmts(v.Then, inLoop)
				scanStmts(v.Else, inLoop)
			case *hir.While:
				scanExpr(v.Cond)
				scanStmts(v.Body, true)
				scanStmts(v.ElseBody, inLoop)
			case *hir.For:
				scanExpr(v.Iter)
				scanStmts(v.Body, true)
				scanStmts(v.ElseBody, inLoop)
			case *hir.ExprStmt:
				scanExpr(v.Value)
			case *hir.With:
				scanExpr(v.Context)
				scanStmts(v.Body, inLoop)
			case *hir.Try:
				scanStmts(v.Body, inLoop)
				for _, h := range v.Handlers {
					scanStmts(h.Body, inLoop)
				}
				scanStmts(v.Final, inLoop)
			case *hir.Raise:
				scanExpr(v.Exc)
			}
		}
	}

	scanStmts(body, false)

	return mutated
}
