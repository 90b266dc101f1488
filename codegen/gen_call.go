package codegen

import (
	"fmt"
	"strings"

	"depyler/hir"
	"depyler/report"
	"depyler/types"
)

// genCall renders a function call: builtins and known library modules route
// through the dispatch tables; everything else is a module-local call.
func (g *Generator) genCall(call *hir.Call) string {
	if strings.Contains(call.Func, ".") {
		return g.genLibraryCall(call)
	}

	if rendered, ok := g.genBuiltin(call); ok {
		return rendered
	}

	// Constructing a translated class routes through its associated new.
	if g.classes[call.Func] {
		return fmt.Sprintf("%s::new(%s)", call.Func, g.genCallArgs(call.Args, call.Kwargs, g.funcs["__init__:"+call.Func]))
	}

	// A module-local call; borrows are inserted to match the callee's
	// parameter strategies.
	return fmt.Sprintf("%s(%s)", sanitizeIdent(call.Func), g.genCallArgs(call.Args, call.Kwargs, g.funcs[call.Func]))
}

// genCallArgs renders an argument list, inserting the borrow each callee
// parameter's strategy demands.
func (g *Generator) genCallArgs(args []hir.Expr, kwargs []hir.Kwarg, params []*hir.Param) string {
	offset := 0
	if len(params) > 0 && (params[0].Name == "self" || params[0].Name == "cls") {
		offset = 1
	}

	var parts []string

	for i, arg := range args {
		rendered := g.genExpr(arg)

		if idx := i + offset; idx < len(params) && params[idx].Strategy != nil {
			rendered = g.borrowFor(arg, rendered, params[idx].Strategy)
		}

		parts = append(parts, rendered)
	}

	// Keyword arguments match the callee's parameters by name; unmatched ones
	// append positionally.
	for _, kw := range kwargs {
		rendered := g.genExpr(kw.Value)

		for idx, param := range params {
			if param.Name == kw.Name && idx >= offset && param.Strategy != nil {
				rendered = g.borrowFor(kw.Value, rendered, param.Strategy)
				break
			}
		}

		parts = append(parts, rendered)
	}

	return strings.Join(parts, ", ")
}

// borrowFor adapts one rendered argument to the callee's strategy.
func (g *Generator) borrowFor(arg hir.Expr, rendered string, strategy *hir.Strategy) string {
	switch strategy.Kind {
	case hir.BorrowImmutable:
		if isStrType(g.exprType(arg)) {
			if lit, ok := arg.(*hir.Literal); ok && lit.Kind == hir.LitStr {
				// A literal in &str position needs no conversion at all.
				return fmt.Sprintf("%q", lit.Value)
			}
			return "&" + rendered
		}
		return "&" + rendered
	case hir.BorrowMutable:
		return "&mut " + rendered
	case hir.UseCow:
		g.use_("std::borrow::Cow")
		if lit, ok := arg.(*hir.Literal); ok && lit.Kind == hir.LitStr {
			return fmt.Sprintf("Cow::Borrowed(%q)", lit.Value)
		}
		return "Cow::Owned(" + rendered + ")"
	case hir.UseSharedOwnership:
		if strategy.ThreadSafe {
			g.use_("std::sync::Arc")
			return "Arc::new(" + rendered + ")"
		}
		g.use_("std::rc::Rc")
		return "Rc::new(" + rendered + ")"
	default:
		return rendered
	}
}

// -----------------------------------------------------------------------------

// genBuiltin renders a call to a Python builtin; the second result is false
// for names the table does not cover.
func (g *Generator) genBuiltin(call *hir.Call) (string, bool) {
	args := call.Args

	switch call.Func {
	case "len":
		// len() is a value in the configured integer type; index positions
		// strip the cast again.
		return fmt.Sprintf("%s.len() as %s", g.genOperand(args[0]), g.intType()), true
	case "print":
		return g.genPrint(call), true
	case "str":
		if len(args) == 0 {
			return `String::new()`, true
		}
		return g.genOperand(args[0]) + ".to_string()", true
	case "int":
		if len(args) == 0 {
			return "0", true
		}
		if isStrType(g.exprType(args[0])) {
			return fmt.Sprintf("%s.trim().parse::<%s>().unwrap()", g.genOperand(args[0]), g.intType()), true
		}
		return fmt.Sprintf("(%s as %s)", g.genExpr(args[0]), g.intType()), true
	case "float":
		if len(args) == 0 {
			return "0.0", true
		}
		if isStrType(g.exprType(args[0])) {
			return fmt.Sprintf("%s.trim().parse::<f64>().unwrap()", g.genOperand(args[0])), true
		}
		return fmt.Sprintf("(%s as f64)", g.genExpr(args[0])), true
	case "bool":
		if len(args) == 0 {
			return "false", true
		}
		return g.genCond(args[0]), true
	case "abs":
		return g.genOperand(args[0]) + ".abs()", true
	case "min":
		if len(args) == 2 {
			return fmt.Sprintf("%s.min(%s)", g.genOperand(args[0]), g.genExpr(args[1])), true
		}
		return fmt.Sprintf("%s.iter().cloned().min().unwrap()", g.genOperand(args[0])), true
	case "max":
		if len(args) == 2 {
			return fmt.Sprintf("%s.max(%s)", g.genOperand(args[0]), g.genExpr(args[1])), true
		}
		return fmt.Sprintf("%s.iter().cloned().max().unwrap()", g.genOperand(args[0])), true
	case "sum":
		elem := elementOf(g.exprType(args[0]))
		if isFloatType(elem) {
			return fmt.Sprintf("%s.iter().sum::<f64>()", g.genOperand(args[0])), true
		}
		return fmt.Sprintf("%s.iter().sum::<%s>()", g.genOperand(args[0]), g.intType()), true
	case "round":
		if len(args) == 2 {
			return fmt.Sprintf("{ let p = 10f64.powi(%s as i32); (%s * p).round() / p }",
				g.genExpr(args[1]), g.genOperand(args[0])), true
		}
		return fmt.Sprintf("%s.round() as %s", g.genOperand(args[0]), g.intType()), true
	case "sorted":
		return fmt.Sprintf("{ let mut v = %s.to_vec(); v.sort(); v }", g.genOperand(args[0])), true
	case "reversed":
		return fmt.Sprintf("%s.iter().rev().cloned().collect::<Vec<_>>()", g.genOperand(args[0])), true
	case "range":
		return fmt.Sprintf("(%s).collect::<Vec<%s>>()", g.genRange(call), g.intType()), true
	case "list":
		if len(args) == 0 {
			return "Vec::new()", true
		}
		return fmt.Sprintf("%s.iter().cloned().collect::<Vec<_>>()", g.genOperand(args[0])), true
	case "set":
		g.use_("std::collections::HashSet")
		if len(args) == 0 {
			return "HashSet::new()", true
		}
		return fmt.Sprintf("%s.iter().cloned().collect::<HashSet<_>>()", g.genOperand(args[0])), true
	case "dict":
		g.use_("std::collections::HashMap")
		return "HashMap::new()", true
	case "enumerate":
		return "(" + g.genIterator(call) + ").collect::<Vec<_>>()", true
	case "zip":
		return "(" + g.genIterator(call) + ").collect::<Vec<_>>()", true
	case "all":
		return fmt.Sprintf("%s.iter().all(|x| *x)", g.genOperand(args[0])), true
	case "any":
		return fmt.Sprintf("%s.iter().any(|x| *x)", g.genOperand(args[0])), true
	case "input":
		return `{ let mut buf = String::new(); std::io::stdin().read_line(&mut buf).unwrap(); buf.trim_end().to_string() }`, true
	case "open":
		return g.genOpen(call), true
	case "repr":
		return fmt.Sprintf("format!(\"{:?}\", %s)", g.genExpr(args[0])), true
	case "ord":
		return fmt.Sprintf("(%s.chars().next().unwrap() as %s)", g.genOperand(args[0]), g.intType()), true
	case "chr":
		return fmt.Sprintf("char::from_u32(%s as u32).unwrap().to_string()", g.genOperand(args[0])), true
	case "isinstance", "issubclass", "id", "hash", "iter", "next", "vars", "dir", "eval", "exec", "globals", "locals":
		report.Raise(call.Span(), "builtin %s", call.Func)
	}

	return "", false
}

// genPrint renders print() as println!.
func (g *Generator) genPrint(call *hir.Call) string {
	if len(call.Args) == 0 {
		return "println!()"
	}

	holes := make([]string, len(call.Args))
	parts := make([]string, len(call.Args))
	for i, arg := range call.Args {
		holes[i] = "{}"
		parts[i] = g.genExpr(arg)
	}

	return fmt.Sprintf("println!(\"%s\", %s)", strings.Join(holes, " "), strings.Join(parts, ", "))
}

// genOpen renders open() by mode: reads open, writes create.
func (g *Generator) genOpen(call *hir.Call) string {
	path := g.genOperand(call.Args[0])

	mode := "r"
	if len(call.Args) > 1 {
		if lit, ok := call.Args[1].(*hir.Literal); ok && lit.Kind == hir.LitStr {
			mode = lit.Value
		}
	}

	if strings.ContainsAny(mode, "wa") {
		return fmt.Sprintf("std::fs::File::create(&%s).unwrap()", path)
	}

	return fmt.Sprintf("std::fs::File::open(&%s).unwrap()", path)
}

// -----------------------------------------------------------------------------

// genLibraryCall routes a dotted call through the standard library mapping
// table, recording the crate each mapping requires.
func (g *Generator) genLibraryCall(call *hir.Call) string {
	parts := strings.SplitN(call.Func, ".", 2)
	module, fun := parts[0], parts[1]

	argAt := func(i int) string {
		return g.genExpr(call.Args[i])
	}
	operandAt := func(i int) string {
		return g.genOperand(call.Args[i])
	}

	switch module {
	case "math":
		return g.genMathCall(fun, call)

	case "sys":
		if fun == "exit" {
			code := "0"
			if len(call.Args) > 0 {
				code = argAt(0) + " as i32"
			}
			return fmt.Sprintf("std::process::exit(%s)", code)
		}

	case "os":
		switch fun {
		case "getenv", "environ.get":
			return fmt.Sprintf("std::env::var(&%s).unwrap_or_default()", argAt(0))
		case "getcwd":
			return `std::env::current_dir().unwrap().to_string_lossy().to_string()`
		case "path.join":
			joined := fmt.Sprintf("std::path::Path::new(&%s)", argAt(0))
			for i := 1; i < len(call.Args); i++ {
				joined += fmt.Sprintf(".join(&%s)", argAt(i))
			}
			return joined + ".to_string_lossy().to_string()"
		case "path.exists":
			return fmt.Sprintf("std::path::Path::new(&%s).exists()", argAt(0))
		case "remove", "unlink":
			return fmt.Sprintf("std::fs::remove_file(&%s).unwrap()", argAt(0))
		case "makedirs", "mkdir":
			return fmt.Sprintf("std::fs::create_dir_all(&%s).unwrap()", argAt(0))
		}

	case "time":
		switch fun {
		case "time":
			g.need("chrono")
			g.use_("chrono::Utc")
			return "Utc::now().timestamp_millis() as f64 / 1000.0"
		case "sleep":
			return fmt.Sprintf("std::thread::sleep(std::time::Duration::from_secs_f64(%s))", argAt(0))
		}

	case "datetime":
		switch fun {
		case "datetime.now", "now":
			g.need("chrono")
			g.use_("chrono::Utc")
			return "Utc::now()"
		case "datetime.utcnow", "utcnow":
			g.need("chrono")
			g.use_("chrono::Utc")
			return "Utc::now()"
		}

	case "json":
		g.need("serde_json")
		switch fun {
		case "dumps":
			return fmt.Sprintf("serde_json::to_string(&%s).unwrap()", argAt(0))
		case "loads":
			return fmt.Sprintf("serde_json::from_str::<serde_json::Value>(&%s).unwrap()", argAt(0))
		}

	case "re":
		g.need("regex")
		g.use_("regex::Regex")
		switch fun {
		case "compile":
			return fmt.Sprintf("Regex::new(&%s).unwrap()", argAt(0))
		case "match", "search":
			return fmt.Sprintf("Regex::new(&%s).unwrap().find(&%s)", argAt(0), argAt(1))
		case "sub":
			return fmt.Sprintf("Regex::new(&%s).unwrap().replace_all(&%s, %s.as_str()).to_string()",
				argAt(0), argAt(2), operandAt(1))
		case "findall":
			return fmt.Sprintf("Regex::new(&%s).unwrap().find_iter(&%s).map(|m| m.as_str().to_string()).collect::<Vec<String>>()",
				argAt(0), argAt(1))
		}

	case "base64":
		g.need("base64")
		g.use_("base64::Engine as _")
		g.use_("base64::engine::general_purpose")
		switch fun {
		case "b64encode":
			return fmt.Sprintf("general_purpose::STANDARD.encode(&%s)", argAt(0))
		case "b64decode":
			return fmt.Sprintf("general_purpose::STANDARD.decode(&%s).unwrap()", argAt(0))
		}

	case "hashlib":
		g.need("sha2")
		g.use_("sha2::Digest")
		switch fun {
		case "sha256":
			g.use_("sha2::Sha256")
			return fmt.Sprintf("Sha256::digest(&%s).to_vec()", argAt(0))
		case "sha512":
			g.use_("sha2::Sha512")
			return fmt.Sprintf("Sha512::digest(&%s).to_vec()", argAt(0))
		}

	case "hmac":
		if fun == "new" && len(call.Args) >= 2 {
			g.need("hmac")
			g.need("sha2")
			g.use_("hmac::Hmac")
			g.use_("hmac::Mac")
			g.use_("sha2::Sha256")
			return fmt.Sprintf(
				"{ let mut mac = Hmac::<Sha256>::new_from_slice(&%s).unwrap(); mac.update(&%s); mac.finalize().into_bytes().to_vec() }",
				argAt(0), argAt(1))
		}

	case "secrets":
		if fun == "token_bytes" {
			g.need("rand")
			g.use_("rand::RngCore")
			n := "32"
			if len(call.Args) > 0 {
				n = argAt(0)
			}
			return fmt.Sprintf(
				"{ let mut buf = vec![0u8; %s as usize]; rand::thread_rng().fill_bytes(&mut buf); buf }", n)
		}

	case "platform":
		if fun == "system" {
			return `std::env::consts::OS.to_string()`
		}

	case "uuid":
		g.need("uuid")
		g.use_("uuid::Uuid")
		switch fun {
		case "uuid4":
			return "Uuid::new_v4().to_string()"
		}

	case "random":
		g.need("rand")
		switch fun {
		case "random":
			return "rand::random::<f64>()"
		case "randint":
			g.use_("rand::Rng")
			return fmt.Sprintf("rand::thread_rng().gen_range(%s..=%s)", argAt(0), argAt(1))
		case "choice":
			g.use_("rand::seq::SliceRandom")
			return fmt.Sprintf("%s.choose(&mut rand::thread_rng()).cloned().unwrap()", operandAt(0))
		case "shuffle":
			g.use_("rand::seq::SliceRandom")
			return fmt.Sprintf("%s.shuffle(&mut rand::thread_rng())", operandAt(0))
		}
	}

	report.Raise(call.Span(), "library call %s", call.Func)
	return ""
}

// genMathCall maps the math module onto f64 methods and consts.
func (g *Generator) genMathCall(fun string, call *hir.Call) string {
	method := map[string]string{
		"sqrt":  "sqrt",
		"floor": "floor",
		"ceil":  "ceil",
		"sin":   "sin",
		"cos":   "cos",
		"tan":   "tan",
		"log":   "ln",
		"log2":  "log2",
		"log10": "log10",
		"exp":   "exp",
		"fabs":  "abs",
	}[fun]

	if method != "" {
		operand := g.genOperand(call.Args[0])
		if isIntType(g.exprType(call.Args[0])) {
			operand = "(" + operand + " as f64)"
		}
		return fmt.Sprintf("%s.%s()", operand, method)
	}

	if fun == "pow" && len(call.Args) == 2 {
		return fmt.Sprintf("(%s as f64).powf(%s as f64)", g.genExpr(call.Args[0]), g.genExpr(call.Args[1]))
	}

	report.Raise(call.Span(), "library call math.%s", fun)
	return ""
}

// genAttribute renders attribute access; known module constants map to Rust
// consts.
func (g *Generator) genAttribute(attr *hir.Attribute) string {
	if v, ok := attr.Object.(*hir.Var); ok && v.Name == "math" && !g.declared["math"] {
		switch attr.Attr {
		case "pi":
			return "std::f64::consts::PI"
		case "e":
			return "std::f64::consts::E"
		case "inf":
			return "f64::INFINITY"
		case "nan":
			return "f64::NAN"
		}
	}

	return g.genOperand(attr.Object) + "." + sanitizeIdent(attr.Attr)
}

// -----------------------------------------------------------------------------

// genMethodCall renders a method call, re-routed by the receiver's type.
func (g *Generator) genMethodCall(mc *hir.MethodCall) string {
	obj := g.genOperand(mc.Object)
	objType := g.exprType(mc.Object)

	switch v := objType.(type) {
	case types.PyPrim:
		if v == types.PyStr {
			return g.genStrMethod(mc, obj)
		}
	case *types.PyList:
		return g.genListMethod(mc, obj)
	case *types.PyDict:
		return g.genDictMethod(mc, obj)
	case *types.PySet:
		return g.genSetMethod(mc, obj)
	case *types.PyCustom:
		// A translated class method call passes through directly.
		return fmt.Sprintf("%s.%s(%s)", obj, sanitizeIdent(mc.Method), g.genExprList(mc.Args))
	case types.PyUnknown:
		if g.mapper.Dynamic || g.fnDynamic {
			g.needsRuntime = true
			return fmt.Sprintf("%s.%s(%s)", obj, sanitizeIdent(mc.Method), g.genExprList(mc.Args))
		}
	}

	// Strings can also arrive untyped through literals.
	if _, ok := mc.Object.(*hir.Literal); ok {
		return g.genStrMethod(mc, obj)
	}

	report.Raise(mc.Span(), "method %s on value of type %s", mc.Method, objType.Repr())
	return ""
}

// genStrMethod maps Python str methods onto their Rust counterparts.
func (g *Generator) genStrMethod(mc *hir.MethodCall, obj string) string {
	arg := func(i int) string { return g.genExpr(mc.Args[i]) }

	switch mc.Method {
	case "upper":
		return obj + ".to_uppercase()"
	case "lower":
		return obj + ".to_lowercase()"
	case "strip":
		return obj + ".trim().to_string()"
	case "lstrip":
		return obj + ".trim_start().to_string()"
	case "rstrip":
		return obj + ".trim_end().to_string()"
	case "startswith":
		return fmt.Sprintf("%s.starts_with(&%s)", obj, arg(0))
	case "endswith":
		return fmt.Sprintf("%s.ends_with(&%s)", obj, arg(0))
	case "split":
		if len(mc.Args) == 0 {
			return fmt.Sprintf("%s.split_whitespace().map(|s| s.to_string()).collect::<Vec<String>>()", obj)
		}
		return fmt.Sprintf("%s.split(&%s).map(|s| s.to_string()).collect::<Vec<String>>()", obj, arg(0))
	case "splitlines":
		return fmt.Sprintf("%s.lines().map(|s| s.to_string()).collect::<Vec<String>>()", obj)
	case "join":
		return fmt.Sprintf("%s.join(&%s)", g.genOperand(mc.Args[0]), obj)
	case "replace":
		return fmt.Sprintf("%s.replace(&%s, &%s)", obj, arg(0), arg(1))
	case "find":
		return fmt.Sprintf("%s.find(&%s).map(|i| i as %s).unwrap_or(-1)", obj, arg(0), g.intType())
	case "count":
		return fmt.Sprintf("%s.matches(&%s).count() as %s", obj, arg(0), g.intType())
	case "encode":
		return obj + ".as_bytes().to_vec()"
	case "isdigit":
		return fmt.Sprintf("!%s.is_empty() && %s.chars().all(|c| c.is_ascii_digit())", obj, obj)
	case "isalpha":
		return fmt.Sprintf("!%s.is_empty() && %s.chars().all(|c| c.is_alphabetic())", obj, obj)
	case "zfill":
		return fmt.Sprintf("format!(\"{:0>width$}\", %s, width = %s as usize)", obj, arg(0))
	case "format":
		report.Raise(mc.Span(), "str.format; f-strings translate directly")
	}

	report.Raise(mc.Span(), "str method %s", mc.Method)
	return ""
}

// genListMethod maps Python list methods onto Vec.
func (g *Generator) genListMethod(mc *hir.MethodCall, obj string) string {
	arg := func(i int) string { return g.genExpr(mc.Args[i]) }

	switch mc.Method {
	case "append":
		return fmt.Sprintf("%s.push(%s)", obj, arg(0))
	case "extend":
		return fmt.Sprintf("%s.extend(%s.iter().cloned())", obj, g.genOperand(mc.Args[0]))
	case "insert":
		return fmt.Sprintf("%s.insert(%s as usize, %s)", obj, arg(0), arg(1))
	case "pop":
		if len(mc.Args) == 0 {
			return fmt.Sprintf("%s.pop().unwrap()", obj)
		}
		return fmt.Sprintf("%s.remove(%s)", obj, g.asIndex(mc.Args[0], arg(0), obj, g.exprType(mc.Object)))
	case "remove":
		return fmt.Sprintf("{ let pos = %s.iter().position(|x| *x == %s).unwrap(); %s.remove(pos); }",
			obj, arg(0), obj)
	case "sort":
		if hasTrueKwarg(mc.Kwargs, "reverse") {
			return fmt.Sprintf("{ %s.sort(); %s.reverse(); }", obj, obj)
		}
		return obj + ".sort()"
	case "reverse":
		return obj + ".reverse()"
	case "index":
		return fmt.Sprintf("%s.iter().position(|x| *x == %s).unwrap() as %s", obj, arg(0), g.intType())
	case "count":
		return fmt.Sprintf("%s.iter().filter(|x| **x == %s).count() as %s", obj, arg(0), g.intType())
	case "clear":
		return obj + ".clear()"
	case "copy":
		return obj + ".to_vec()"
	}

	report.Raise(mc.Span(), "list method %s", mc.Method)
	return ""
}

// genDictMethod maps Python dict methods onto HashMap.
func (g *Generator) genDictMethod(mc *hir.MethodCall, obj string) string {
	arg := func(i int) string { return g.genExpr(mc.Args[i]) }

	switch mc.Method {
	case "get":
		if len(mc.Args) == 2 {
			return fmt.Sprintf("%s.get(&%s).cloned().unwrap_or(%s)", obj, arg(0), arg(1))
		}
		return fmt.Sprintf("%s.get(&%s).cloned()", obj, arg(0))
	case "keys":
		return fmt.Sprintf("%s.keys().cloned().collect::<Vec<_>>()", obj)
	case "values":
		return fmt.Sprintf("%s.values().cloned().collect::<Vec<_>>()", obj)
	case "items":
		return fmt.Sprintf("%s.iter().map(|(k, v)| (k.clone(), v.clone())).collect::<Vec<_>>()", obj)
	case "pop":
		if len(mc.Args) == 2 {
			return fmt.Sprintf("%s.remove(&%s).unwrap_or(%s)", obj, arg(0), arg(1))
		}
		return fmt.Sprintf("%s.remove(&%s).unwrap()", obj, arg(0))
	case "update":
		return fmt.Sprintf("%s.extend(%s.iter().map(|(k, v)| (k.clone(), v.clone())))", obj, g.genOperand(mc.Args[0]))
	case "setdefault":
		return fmt.Sprintf("%s.entry(%s).or_insert(%s).clone()", obj, arg(0), arg(1))
	case "clear":
		return obj + ".clear()"
	}

	report.Raise(mc.Span(), "dict method %s", mc.Method)
	return ""
}

// genSetMethod maps Python set methods onto HashSet.
func (g *Generator) genSetMethod(mc *hir.MethodCall, obj string) string {
	arg := func(i int) string { return g.genExpr(mc.Args[i]) }

	switch mc.Method {
	case "add":
		return fmt.Sprintf("%s.insert(%s)", obj, arg(0))
	case "remove":
		return fmt.Sprintf("%s.remove(&%s)", obj, arg(0))
	case "discard":
		return fmt.Sprintf("%s.remove(&%s)", obj, arg(0))
	case "union":
		g.use_("std::collections::HashSet")
		return fmt.Sprintf("%s.union(&%s).cloned().collect::<HashSet<_>>()", obj, g.genOperand(mc.Args[0]))
	case "intersection":
		g.use_("std::collections::HashSet")
		return fmt.Sprintf("%s.intersection(&%s).cloned().collect::<HashSet<_>>()", obj, g.genOperand(mc.Args[0]))
	case "difference":
		g.use_("std::collections::HashSet")
		return fmt.Sprintf("%s.difference(&%s).cloned().collect::<HashSet<_>>()", obj, g.genOperand(mc.Args[0]))
	case "clear":
		return obj + ".clear()"
	}

	report.Raise(mc.Span(), "set method %s", mc.Method)
	return ""
}

// hasTrueKwarg reports whether a True-valued keyword argument is present.
func hasTrueKwarg(kwargs []hir.Kwarg, name string) bool {
	for _, kw := range kwargs {
		if kw.Name == name {
			lit, ok := kw.Value.(*hir.Literal)
			return ok && lit.Kind == hir.LitBool && lit.Value == "True"
		}
	}

	return false
}
