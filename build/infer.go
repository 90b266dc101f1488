package build

import (
	"depyler/common"
	"depyler/hir"
	"depyler/types"
)

// inferBinary infers the result type of a binary operation from its operand
// types.  Mixed int/float arithmetic promotes to float, matching Python.
func (b *Builder) inferBinary(bin *hir.Binary) types.PyType {
	if bin.Op.IsComparison() {
		return types.PyPrim(types.PyBool)
	}

	lhs, rhs := bin.Lhs.Type(), bin.Rhs.Type()

	if bin.Op.IsLogical() {
		// `a and b` yields one of its operands; only a shared type is usable.
		if types.Equals(lhs, rhs) {
			return lhs
		}
		return types.PyUnknown{}
	}

	switch bin.Op {
	case common.OpDiv:
		// True division always yields a float.
		if isNumeric(lhs) && isNumeric(rhs) {
			return types.PyPrim(types.PyFloat)
		}
	case common.OpAdd:
		// String and list concatenation preserve the operand type.
		if types.Equals(lhs, types.PyPrim(types.PyStr)) || types.Equals(rhs, types.PyPrim(types.PyStr)) {
			return types.PyPrim(types.PyStr)
		}
		if _, ok := lhs.(*types.PyList); ok {
			return lhs
		}
	case common.OpPow:
		// A float anywhere, or an unknown exponent, floats the result.
		if types.Equals(lhs, types.PyPrim(types.PyFloat)) || types.Equals(rhs, types.PyPrim(types.PyFloat)) {
			return types.PyPrim(types.PyFloat)
		}
		if types.Equals(lhs, types.PyPrim(types.PyInt)) && types.Equals(rhs, types.PyPrim(types.PyInt)) {
			return types.PyPrim(types.PyInt)
		}
		return types.PyUnknown{}
	}

	if isNumeric(lhs) && isNumeric(rhs) {
		if types.Equals(lhs, types.PyPrim(types.PyFloat)) || types.Equals(rhs, types.PyPrim(types.PyFloat)) {
			return types.PyPrim(types.PyFloat)
		}
		return types.PyPrim(types.PyInt)
	}

	if types.Equals(lhs, rhs) {
		return lhs
	}

	return types.PyUnknown{}
}

// inferUnary infers the result type of a unary operation.
func (b *Builder) inferUnary(un *hir.Unary) types.PyType {
	if un.Op == common.OpNot {
		return types.PyPrim(types.PyBool)
	}

	return un.Operand.Type()
}

// builtinReturnTypes maps known builtins to their result types.
var builtinReturnTypes = map[string]types.PyType{
	"len":   types.PyPrim(types.PyInt),
	"abs":   types.PyUnknown{},
	"int":   types.PyPrim(types.PyInt),
	"float": types.PyPrim(types.PyFloat),
	"bool":  types.PyPrim(types.PyBool),
	"str":   types.PyPrim(types.PyStr),
	"repr":  types.PyPrim(types.PyStr),
	"ord":   types.PyPrim(types.PyInt),
	"chr":   types.PyPrim(types.PyStr),
	"range": &types.PyList{Elem: types.PyPrim(types.PyInt)},
	"sorted": &types.PyList{Elem: types.PyUnknown{}},
	"isinstance": types.PyPrim(types.PyBool),
	"print": types.PyPrim(types.PyNone),
	"min":   types.PyUnknown{},
	"max":   types.PyUnknown{},
	"sum":   types.PyPrim(types.PyInt),
}

// inferCall infers the result type of a named call.
func (b *Builder) inferCall(call *hir.Call) types.PyType {
	if typ, ok := builtinReturnTypes[call.Func]; ok {
		// `abs`, `min`, and `max` mirror their first argument's type.
		if _, unknown := typ.(types.PyUnknown); unknown && len(call.Args) > 0 {
			return call.Args[0].Type()
		}
		return typ
	}

	return types.PyUnknown{}
}

// methodReturnTypes maps known method names to their result types.  Methods
// that mirror the receiver's element type are handled in inferMethodCall.
var methodReturnTypes = map[string]types.PyType{
	"startswith": types.PyPrim(types.PyBool),
	"endswith":   types.PyPrim(types.PyBool),
	"isdigit":    types.PyPrim(types.PyBool),
	"isalpha":    types.PyPrim(types.PyBool),
	"upper":      types.PyPrim(types.PyStr),
	"lower":      types.PyPrim(types.PyStr),
	"strip":      types.PyPrim(types.PyStr),
	"lstrip":     types.PyPrim(types.PyStr),
	"rstrip":     types.PyPrim(types.PyStr),
	"join":       types.PyPrim(types.PyStr),
	"replace":    types.PyPrim(types.PyStr),
	"find":       types.PyPrim(types.PyInt),
	"index":      types.PyPrim(types.PyInt),
	"count":      types.PyPrim(types.PyInt),
	"split":      &types.PyList{Elem: types.PyPrim(types.PyStr)},
	"keys":       &types.PyList{Elem: types.PyUnknown{}},
	"values":     &types.PyList{Elem: types.PyUnknown{}},
	"items":      &types.PyList{Elem: types.PyUnknown{}},
	"append":     types.PyPrim(types.PyNone),
	"extend":     types.PyPrim(types.PyNone),
	"insert":     types.PyPrim(types.PyNone),
	"sort":       types.PyPrim(types.PyNone),
	"add":        types.PyPrim(types.PyNone),
	"clear":      types.PyPrim(types.PyNone),
}

// inferMethodCall infers the result type of a method call.
func (b *Builder) inferMethodCall(mc *hir.MethodCall) types.PyType {
	switch mc.Method {
	case "pop":
		return elementType(mc.Object.Type())
	case "get":
		if dict, ok := mc.Object.Type().(*types.PyDict); ok {
			return dict.Value
		}
	case "copy":
		return mc.Object.Type()
	}

	if typ, ok := methodReturnTypes[mc.Method]; ok {
		return typ
	}

	return types.PyUnknown{}
}

// -----------------------------------------------------------------------------

// isNumeric reports whether the type is int, float, or bool.
func isNumeric(t types.PyType) bool {
	return types.Equals(t, types.PyPrim(types.PyInt)) ||
		types.Equals(t, types.PyPrim(types.PyFloat)) ||
		types.Equals(t, types.PyPrim(types.PyBool))
}

// elementType returns the element type yielded by iterating the given type.
func elementType(t types.PyType) types.PyType {
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

// indexResultType returns the type yielded by a subscript access on the given
// base type.
func indexResultType(t types.PyType) types.PyType {
	switch v := t.(type) {
	case *types.PyList:
		return v.Elem
	case *types.PyDict:
		return v.Value
	case types.PyPrim:
		if v == types.PyStr {
			return types.PyPrim(types.PyStr)
		}
	}

	return types.PyUnknown{}
}

// commonElemType returns the shared type of a display's elements, or Unknown
// when the elements disagree.
func commonElemType(elts []hir.Expr) types.PyType {
	if len(elts) == 0 {
		return types.PyUnknown{}
	}

	typ := elts[0].Type()
	for _, elt := range elts[1:] {
		if !types.Equals(typ, elt.Type()) {
			return types.PyUnknown{}
		}
	}

	return typ
}
