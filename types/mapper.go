package types

import (
	"depyler/common"
	"depyler/pyast"
	"depyler/report"
)

// Mapper translates Python type annotations and inferred Python types into the
// Rust type model.  Mapping is side-effect-free and deterministic on equal
// inputs: emission correctness depends on that.
type Mapper struct {
	// Dynamic enables boxing of unknown values into the dynamic value sum type
	// instead of failing ("NASA mode").
	Dynamic bool

	// IntWidth is the Rust integer type `int` maps to.  It defaults to i32.
	IntWidth RustPrim
}

// NewMapper creates a type mapper.
func NewMapper(dynamic bool) *Mapper {
	return &Mapper{Dynamic: dynamic, IntWidth: RustI32}
}

// -----------------------------------------------------------------------------

// FromAnnotation parses a Python annotation expression into the Python type
// model.  A nil annotation and any unrecognized expression become Unknown: the
// mapper never fails here, only in Map.
func (m *Mapper) FromAnnotation(ann pyast.Expr) PyType {
	if ann == nil {
		return PyUnknown{}
	}

	switch v := ann.(type) {
	case *pyast.Name:
		return typeByName(v.Name)
	case *pyast.Literal:
		switch v.Kind {
		case pyast.LitNone:
			return PyPrim(PyNone)
		case pyast.LitStr:
			// A string annotation is a forward reference to a class.
			return &PyCustom{Name: v.Value}
		}
	case *pyast.Subscript:
		return m.fromSubscript(v)
	case *pyast.BinOp:
		// PEP 604 unions: `T | U`.
		if v.Op == common.OpBitOr {
			return m.mergeUnion([]PyType{m.FromAnnotation(v.Lhs), m.FromAnnotation(v.Rhs)})
		}
	}

	return PyUnknown{}
}

// fromSubscript parses a parameterized annotation such as `list[int]` or
// `Optional[str]`.
func (m *Mapper) fromSubscript(sub *pyast.Subscript) PyType {
	base, ok := sub.Value.(*pyast.Name)
	if !ok {
		return PyUnknown{}
	}

	args := subscriptArgs(sub.Index)

	switch base.Name {
	case "list", "List":
		if len(args) == 1 {
			return &PyList{Elem: m.FromAnnotation(args[0])}
		}
	case "dict", "Dict":
		if len(args) == 2 {
			return &PyDict{Key: m.FromAnnotation(args[0]), Value: m.FromAnnotation(args[1])}
		}
	case "set", "Set":
		if len(args) == 1 {
			return &PySet{Elem: m.FromAnnotation(args[0])}
		}
	case "frozenset", "FrozenSet":
		if len(args) == 1 {
			return &PySet{Elem: m.FromAnnotation(args[0]), Frozen: true}
		}
	case "tuple", "Tuple":
		elems := make(PyTuple, len(args))
		for i, arg := range args {
			elems[i] = m.FromAnnotation(arg)
		}
		return elems
	case "Optional":
		if len(args) == 1 {
			return &PyOptional{Elem: m.FromAnnotation(args[0])}
		}
	case "Union":
		members := make([]PyType, len(args))
		for i, arg := range args {
			members[i] = m.FromAnnotation(arg)
		}
		return m.mergeUnion(members)
	}

	return PyUnknown{}
}

// mergeUnion reduces a union member list: a two-member union containing None
// reduces to Optional of the other member.
func (m *Mapper) mergeUnion(members []PyType) PyType {
	var nonNone []PyType
	sawNone := false

	for _, member := range members {
		if Equals(member, PyPrim(PyNone)) {
			sawNone = true
		} else {
			nonNone = append(nonNone, member)
		}
	}

	if sawNone && len(nonNone) == 1 {
		return &PyOptional{Elem: nonNone[0]}
	}

	return PyUnion(members)
}

// typeByName resolves a bare annotation name.
func typeByName(name string) PyType {
	switch name {
	case "int":
		return PyPrim(PyInt)
	case "float":
		return PyPrim(PyFloat)
	case "bool":
		return PyPrim(PyBool)
	case "str":
		return PyPrim(PyStr)
	case "bytes":
		return PyPrim(PyBytes)
	case "None":
		return PyPrim(PyNone)
	case "list":
		return &PyList{Elem: PyUnknown{}}
	case "dict":
		return &PyDict{Key: PyUnknown{}, Value: PyUnknown{}}
	case "set":
		return &PySet{Elem: PyUnknown{}}
	case "Any", "object":
		return PyUnknown{}
	default:
		return &PyCustom{Name: name}
	}
}

// subscriptArgs splits the index expression of a parameterized annotation into
// its argument list.
func subscriptArgs(index pyast.Expr) []pyast.Expr {
	if tup, ok := index.(*pyast.TupleExpr); ok {
		return tup.Elts
	}

	return []pyast.Expr{index}
}

// -----------------------------------------------------------------------------

// Map translates a Python type into the Rust type model.  When dynamic boxing
// is disabled, an Unknown anywhere in the type fails with a TypeMappingFailure
// so the containing function can downgrade to boxed emission.
func (m *Mapper) Map(t PyType) (RustType, error) {
	switch v := t.(type) {
	case PyPrim:
		switch v {
		case PyInt:
			return m.IntWidth, nil
		case PyFloat:
			return RustF64, nil
		case PyBool:
			return RustBool, nil
		case PyStr:
			// Read-only parameters are narrowed to &str by the borrowing
			// strategy; the base mapping is the owned form.
			return RustString{}, nil
		case PyBytes:
			return &RustVec{Elem: RustU8}, nil
		default:
			return RustUnit, nil
		}
	case *PyList:
		elem, err := m.Map(v.Elem)
		if err != nil {
			return nil, err
		}
		return &RustVec{Elem: elem}, nil
	case *PyDict:
		key, err := m.mapDictKey(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := m.Map(v.Value)
		if err != nil {
			return nil, err
		}
		return &RustHashMap{Key: key, Value: val}, nil
	case *PySet:
		elem, err := m.Map(v.Elem)
		if err != nil {
			return nil, err
		}
		return &RustHashSet{Elem: elem}, nil
	case PyTuple:
		elems := make(RustTuple, len(v))
		for i, member := range v {
			elem, err := m.Map(member)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return elems, nil
	case *PyOptional:
		elem, err := m.Map(v.Elem)
		if err != nil {
			return nil, err
		}
		return &RustOption{Elem: elem}, nil
	case PyUnion:
		// Unions that did not reduce to Optional box into the dynamic value
		// type rather than synthesizing a one-off tagged enum.
		return RustDynamic{}, nil
	case *PyCustom:
		return &RustCustom{Name: v.Name}, nil
	case PyUnknown:
		if m.Dynamic {
			return RustDynamic{}, nil
		}
		return nil, &report.TypeMappingFailure{Expr: t.Repr()}
	}

	return nil, &report.TypeMappingFailure{Expr: t.Repr()}
}

// mapDictKey maps a dict key type.  An unknown key defaults to String rather
// than failing: string keys are what untyped Python dicts overwhelmingly use.
func (m *Mapper) mapDictKey(key PyType) (RustType, error) {
	if _, ok := key.(PyUnknown); ok {
		if m.Dynamic {
			return RustDynamic{}, nil
		}
		return RustString{}, nil
	}

	return m.Map(key)
}
