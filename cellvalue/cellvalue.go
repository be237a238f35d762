// Package cellvalue defines the tagged value types that flow through the
// store, the evaluator, and the wire protocol: the cell's stored Value, and
// the Argument shapes (scalar/vector/matrix) an evaluation environment
// binds free variables to.
package cellvalue

import "fmt"

// Kind tags a Value's variant.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindString
	KindError
)

// Value is the tagged variant stored per cell: {None, Int(i64),
// String(text), Error(message)}.
type Value struct {
	Kind Kind
	Int  int64
	Text string // holds String's text or Error's message
}

// None is the value of a cell that has never been set, or whose formula
// evaluates to nothing.
var None = Value{Kind: KindNone}

// Int wraps an integer result.
func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }

// String wraps a text result.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// Error wraps an evaluation error, preserved verbatim for display.
func Error(msg string) Value { return Value{Kind: KindError, Text: msg} }

// IsError reports whether v is an Error variant.
func (v Value) IsError() bool { return v.Kind == KindError }

// IsNone reports whether v is the None variant.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Equal compares two values for the no-op-suppression rule in the engine:
// a recomputed value identical to the current one must not bump the
// version stamp.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == other.Int
	case KindString, KindError:
		return v.Text == other.Text
	default:
		return true
	}
}

// String renders a Value for display and logging.
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return ""
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindString:
		return v.Text
	case KindError:
		return fmt.Sprintf("#ERROR: %s", v.Text)
	default:
		return ""
	}
}

// ArgKind tags an Argument's variant.
type ArgKind uint8

const (
	ArgScalar ArgKind = iota
	ArgVector
	ArgMatrix
)

// Argument is an evaluation-environment binding: a free variable name maps
// to a Scalar, Vector, or Matrix of Values.
type Argument struct {
	Kind   ArgKind
	Scalar Value
	Vector []Value
	Matrix [][]Value
}

// ScalarArg wraps a single value.
func ScalarArg(v Value) Argument { return Argument{Kind: ArgScalar, Scalar: v} }

// VectorArg wraps a row- or column-major list of values.
func VectorArg(vs []Value) Argument { return Argument{Kind: ArgVector, Vector: vs} }

// MatrixArg wraps a rectangular rows-by-cols list of values.
func MatrixArg(m [][]Value) Argument { return Argument{Kind: ArgMatrix, Matrix: m} }

// Environment is the evaluation environment: a mapping from free-variable
// name, exactly as produced by the formula scanner, to its bound argument.
type Environment map[string]Argument
