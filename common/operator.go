package common

// BinaryOp enumerates the Python binary operators the pipeline understands.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv      // true division: always yields a float
	OpFloorDiv // `//`: rounds toward negative infinity
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq

	OpAnd
	OpOr

	OpIn
	OpNotIn
	OpIs
	OpIsNot
)

// Repr returns the Python spelling of the operator for error reporting.
func (op BinaryOp) Repr() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpMod:
		return "%"
	case OpPow:
		return "**"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	case OpIs:
		return "is"
	default:
		return "is not"
	}
}

// IsComparison returns whether the operator always yields a bool.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq, OpIn, OpNotIn, OpIs, OpIsNot:
		return true
	default:
		return false
	}
}

// IsLogical returns whether the operator is `and` or `or`.
func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// -----------------------------------------------------------------------------

// UnaryOp enumerates the Python unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // -x
	OpPos                // +x
	OpNot                // not x
	OpInvert             // ~x
)

// Repr returns the Python spelling of the operator for error reporting.
func (op UnaryOp) Repr() string {
	switch op {
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	case OpNot:
		return "not"
	default:
		return "~"
	}
}
