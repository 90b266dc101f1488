package types

import "strings"

// PyType is the parent interface for all types in the Python-facing type
// model.  Absent annotations become PyUnknown.
type PyType interface {
	// Repr returns a representative string of the type for error reporting.
	Repr() string

	// equals is the internal, type-specific implementation of Equals.  It
	// should never be called directly except by Equals.
	equals(PyType) bool
}

// Equals returns whether two Python types are exactly equal.
func Equals(a, b PyType) bool {
	return a.equals(b)
}

// -----------------------------------------------------------------------------

// PyPrim represents a primitive Python type.  It should be one of the
// enumerated primitive kinds.
type PyPrim int

// Enumeration of primitive Python types.
const (
	PyInt PyPrim = iota
	PyFloat
	PyBool
	PyStr
	PyBytes
	PyNone
)

func (pp PyPrim) Repr() string {
	switch pp {
	case PyInt:
		return "int"
	case PyFloat:
		return "float"
	case PyBool:
		return "bool"
	case PyStr:
		return "str"
	case PyBytes:
		return "bytes"
	default:
		return "None"
	}
}

func (pp PyPrim) equals(other PyType) bool {
	if opp, ok := other.(PyPrim); ok {
		return pp == opp
	}

	return false
}

// -----------------------------------------------------------------------------

// PyList represents `list[T]`.
type PyList struct {
	Elem PyType
}

func (pl *PyList) Repr() string {
	return "list[" + pl.Elem.Repr() + "]"
}

func (pl *PyList) equals(other PyType) bool {
	if opl, ok := other.(*PyList); ok {
		return Equals(pl.Elem, opl.Elem)
	}

	return false
}

// PyDict represents `dict[K, V]`.
type PyDict struct {
	Key, Value PyType
}

func (pd *PyDict) Repr() string {
	return "dict[" + pd.Key.Repr() + ", " + pd.Value.Repr() + "]"
}

func (pd *PyDict) equals(other PyType) bool {
	if opd, ok := other.(*PyDict); ok {
		return Equals(pd.Key, opd.Key) && Equals(pd.Value, opd.Value)
	}

	return false
}

// PySet represents `set[T]` and `frozenset[T]`.
type PySet struct {
	Elem PyType

	// Frozen distinguishes `frozenset` from `set`.
	Frozen bool
}

func (ps *PySet) Repr() string {
	if ps.Frozen {
		return "frozenset[" + ps.Elem.Repr() + "]"
	}

	return "set[" + ps.Elem.Repr() + "]"
}

func (ps *PySet) equals(other PyType) bool {
	if ops, ok := other.(*PySet); ok {
		return ps.Frozen == ops.Frozen && Equals(ps.Elem, ops.Elem)
	}

	return false
}

// PyTuple represents `tuple[T1, T2, ...]`.
type PyTuple []PyType

func (pt PyTuple) Repr() string {
	sb := strings.Builder{}
	sb.WriteString("tuple[")

	for i, typ := range pt {
		sb.WriteString(typ.Repr())

		if i < len(pt)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune(']')
	return sb.String()
}

func (pt PyTuple) equals(other PyType) bool {
	if opt, ok := other.(PyTuple); ok {
		if len(pt) != len(opt) {
			return false
		}

		for i, item := range pt {
			if !Equals(item, opt[i]) {
				return false
			}
		}

		return true
	}

	return false
}

// PyOptional represents `Optional[T]` (equivalently `T | None`).
type PyOptional struct {
	Elem PyType
}

func (po *PyOptional) Repr() string {
	return "Optional[" + po.Elem.Repr() + "]"
}

func (po *PyOptional) equals(other PyType) bool {
	if opo, ok := other.(*PyOptional); ok {
		return Equals(po.Elem, opo.Elem)
	}

	return false
}

// PyUnion represents `Union[T, U, ...]` where the members do not reduce to an
// Optional.
type PyUnion []PyType

func (pu PyUnion) Repr() string {
	sb := strings.Builder{}
	sb.WriteString("Union[")

	for i, typ := range pu {
		sb.WriteString(typ.Repr())

		if i < len(pu)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune(']')
	return sb.String()
}

func (pu PyUnion) equals(other PyType) bool {
	if opu, ok := other.(PyUnion); ok {
		if len(pu) != len(opu) {
			return false
		}

		for i, item := range pu {
			if !Equals(item, opu[i]) {
				return false
			}
		}

		return true
	}

	return false
}

// PyCustom represents a user-defined class type referenced by name.
type PyCustom struct {
	Name string
}

func (pc *PyCustom) Repr() string {
	return pc.Name
}

func (pc *PyCustom) equals(other PyType) bool {
	if opc, ok := other.(*PyCustom); ok {
		return pc.Name == opc.Name
	}

	return false
}

// PyUnknown represents a type the front-end could not determine: an absent or
// unparseable annotation.
type PyUnknown struct{}

func (PyUnknown) Repr() string {
	return "Unknown"
}

func (PyUnknown) equals(other PyType) bool {
	_, ok := other.(PyUnknown)
	return ok
}
