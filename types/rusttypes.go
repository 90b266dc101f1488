package types

import "strings"

// RustType is the parent interface for all types in the Rust-side type model.
// Every Rust type knows how to render itself as Rust source.
type RustType interface {
	// Render returns the Rust spelling of the type.
	Render() string

	// IsCopy returns whether the type implements Copy, which makes taking
	// ownership cheaper than borrowing.
	IsCopy() bool
}

// -----------------------------------------------------------------------------

// RustPrim represents a primitive Rust type.  It should be one of the
// enumerated primitive kinds.
type RustPrim int

// Enumeration of primitive Rust types.
const (
	RustI32 RustPrim = iota
	RustI64
	RustU8
	RustU32
	RustU64
	RustUsize
	RustF64
	RustBool
	RustUnit
)

func (rp RustPrim) Render() string {
	switch rp {
	case RustI32:
		return "i32"
	case RustI64:
		return "i64"
	case RustU8:
		return "u8"
	case RustU32:
		return "u32"
	case RustU64:
		return "u64"
	case RustUsize:
		return "usize"
	case RustF64:
		return "f64"
	case RustBool:
		return "bool"
	default:
		return "()"
	}
}

func (RustPrim) IsCopy() bool { return true }

// -----------------------------------------------------------------------------

// RustString represents an owned `String`.  Borrowed `&str` forms are produced
// by wrapping in RustRef or RustStr.
type RustString struct{}

func (RustString) Render() string { return "String" }

func (RustString) IsCopy() bool { return false }

// RustStr represents a `&str` with an optional named lifetime.
type RustStr struct {
	Lifetime string
}

func (rs RustStr) Render() string {
	if rs.Lifetime != "" {
		return "&" + rs.Lifetime + " str"
	}

	return "&str"
}

func (RustStr) IsCopy() bool { return true }

// -----------------------------------------------------------------------------

// RustVec represents `Vec<T>`.
type RustVec struct {
	Elem RustType
}

func (rv *RustVec) Render() string {
	return "Vec<" + rv.Elem.Render() + ">"
}

func (*RustVec) IsCopy() bool { return false }

// RustHashMap represents `HashMap<K, V>`.
type RustHashMap struct {
	Key, Value RustType
}

func (rm *RustHashMap) Render() string {
	return "HashMap<" + rm.Key.Render() + ", " + rm.Value.Render() + ">"
}

func (*RustHashMap) IsCopy() bool { return false }

// RustHashSet represents `HashSet<T>`.
type RustHashSet struct {
	Elem RustType
}

func (rs *RustHashSet) Render() string {
	return "HashSet<" + rs.Elem.Render() + ">"
}

func (*RustHashSet) IsCopy() bool { return false }

// RustOption represents `Option<T>`.
type RustOption struct {
	Elem RustType
}

func (ro *RustOption) Render() string {
	return "Option<" + ro.Elem.Render() + ">"
}

func (ro *RustOption) IsCopy() bool { return ro.Elem.IsCopy() }

// RustTuple represents a tuple type.
type RustTuple []RustType

func (rt RustTuple) Render() string {
	sb := strings.Builder{}
	sb.WriteRune('(')

	for i, typ := range rt {
		sb.WriteString(typ.Render())

		if i < len(rt)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune(')')
	return sb.String()
}

func (rt RustTuple) IsCopy() bool {
	for _, typ := range rt {
		if !typ.IsCopy() {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// RustRef represents a reference type `&T` or `&mut T` with an optional named
// lifetime.
type RustRef struct {
	Mut      bool
	Lifetime string
	Inner    RustType
}

func (rr *RustRef) Render() string {
	sb := strings.Builder{}
	sb.WriteRune('&')

	if rr.Lifetime != "" {
		sb.WriteString(rr.Lifetime)
		sb.WriteRune(' ')
	}

	if rr.Mut {
		sb.WriteString("mut ")
	}

	sb.WriteString(rr.Inner.Render())
	return sb.String()
}

func (rr *RustRef) IsCopy() bool { return !rr.Mut }

// RustCow represents `Cow<'a, T>`.
type RustCow struct {
	Lifetime string
	Inner    RustType
}

func (rc *RustCow) Render() string {
	return "Cow<" + rc.Lifetime + ", " + rc.Inner.Render() + ">"
}

func (*RustCow) IsCopy() bool { return false }

// RustBoxDyn represents `Box<dyn Trait>`.
type RustBoxDyn struct {
	Trait string
}

func (rb *RustBoxDyn) Render() string {
	return "Box<dyn " + rb.Trait + ">"
}

func (*RustBoxDyn) IsCopy() bool { return false }

// -----------------------------------------------------------------------------

// RustCustom represents a user-defined (translated) type referenced by name.
type RustCustom struct {
	Name string
}

func (rc *RustCustom) Render() string { return rc.Name }

func (*RustCustom) IsCopy() bool { return false }

// RustResult represents `Result<T, E>`.  Functions whose bodies raise get
// their return types promoted to a Result.
type RustResult struct {
	Ok, Err RustType
}

func (rr *RustResult) Render() string {
	return "Result<" + rr.Ok.Render() + ", " + rr.Err.Render() + ">"
}

func (*RustResult) IsCopy() bool { return false }

// RustDynamic represents the boxed dynamic value sum type the runtime module
// provides.  It is the catch-all used when a precise Rust type cannot be
// inferred.
type RustDynamic struct{}

func (RustDynamic) Render() string { return "DepylerValue" }

func (RustDynamic) IsCopy() bool { return false }

// -----------------------------------------------------------------------------

// IsDynamic reports whether the type is or contains the dynamic value type,
// which obligates the emitter to bundle the runtime module.
func IsDynamic(t RustType) bool {
	switch v := t.(type) {
	case RustDynamic:
		return true
	case *RustVec:
		return IsDynamic(v.Elem)
	case *RustHashMap:
		return IsDynamic(v.Key) || IsDynamic(v.Value)
	case *RustHashSet:
		return IsDynamic(v.Elem)
	case *RustOption:
		return IsDynamic(v.Elem)
	case *RustRef:
		return IsDynamic(v.Inner)
	case *RustCow:
		return IsDynamic(v.Inner)
	case *RustResult:
		return IsDynamic(v.Ok) || IsDynamic(v.Err)
	case RustTuple:
		for _, elem := range v {
			if IsDynamic(elem) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// RenderEquals returns whether two Rust types render identically.  Rendering
// is a faithful spelling of the type, so this is type equality for every type
// the mapper produces.
func RenderEquals(a, b RustType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Render() == b.Render()
}
