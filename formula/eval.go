// Package formula implements the spreadsheet expression language treated
// as an external "evaluator" collaborator by the rest of this module: it
// turns a formula string into the free-variable names referenced inside
// it, and evaluates a parsed formula against an Environment of bound
// arguments.
package formula

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"sheetsrv/cellvalue"
)

// ErrDependsOnError is returned when evaluation touches a variable whose
// bound value is itself an Error. Callers (the command handler, the
// recomputation engine) map this to cellvalue.Error("Cell depends on an
// error"), per spec.md §7.
var ErrDependsOnError = errors.New("formula: variable depends on an error")

// FreeVariables scans src and returns every CELLREF token's literal text,
// in order of first-to-last appearance, with duplicates preserved. Callers
// collapse repeats themselves: the dependency graph builder keeps one edge
// per (dependency, dependent) pair and the environment builder binds each
// name once.
func FreeVariables(src string) []string {
	l := New(src)
	var names []string
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == CELLREF {
			names = append(names, tok.Literal)
		}
	}
	return names
}

// Eval parses and evaluates src against env. A syntactic parse failure is
// returned as a Go error (the command handler's decode-error path); once
// parsed, evaluation never panics and produces a cellvalue.Value
// (including an Error variant, stored verbatim), ErrDependsOnError, or a
// Go error when a bound range reference is used where a scalar is
// expected (e.g. "A1_A3 + 1").
func Eval(src string, env cellvalue.Environment) (cellvalue.Value, error) {
	node, errs := Parse(src)
	if len(errs) > 0 {
		return cellvalue.Value{}, fmt.Errorf("formula: %s", errs[0])
	}
	return evalScalar(node, env)
}

func evalScalar(n Node, env cellvalue.Environment) (cellvalue.Value, error) {
	switch n := n.(type) {
	case NumberLit:
		return cellvalue.Int(n.Value), nil
	case StringLit:
		return cellvalue.String(n.Value), nil
	case CellRefExpr:
		arg, ok := env[n.Name]
		if !ok {
			return cellvalue.None, nil
		}
		if arg.Kind != cellvalue.ArgScalar {
			return cellvalue.Value{}, fmt.Errorf("formula: %s is a range, not a scalar", n.Name)
		}
		if arg.Scalar.IsError() {
			return cellvalue.Value{}, ErrDependsOnError
		}
		return arg.Scalar, nil
	case UnaryExpr:
		x, err := evalScalar(n.X, env)
		if err != nil {
			return cellvalue.Value{}, err
		}
		if x.Kind != cellvalue.KindInt {
			return cellvalue.Value{}, ErrDependsOnError
		}
		return cellvalue.Int(negSat(x.Int)), nil
	case BinaryExpr:
		return evalBinary(n, env)
	case CallExpr:
		return evalCall(n, env)
	default:
		return cellvalue.Value{}, fmt.Errorf("formula: unhandled node %T", n)
	}
}

func evalBinary(n BinaryExpr, env cellvalue.Environment) (cellvalue.Value, error) {
	x, err := evalScalar(n.X, env)
	if err != nil {
		return cellvalue.Value{}, err
	}
	y, err := evalScalar(n.Y, env)
	if err != nil {
		return cellvalue.Value{}, err
	}
	if x.IsError() || y.IsError() {
		return cellvalue.Value{}, ErrDependsOnError
	}

	switch n.Op {
	case AMP:
		return cellvalue.String(displayString(x) + displayString(y)), nil
	case EQ:
		return boolValue(valuesEqual(x, y)), nil
	case NEQ:
		return boolValue(!valuesEqual(x, y)), nil
	}

	if n.Op == LT || n.Op == LE || n.Op == GT || n.Op == GE ||
		n.Op == PLUS || n.Op == MINUS || n.Op == ASTERISK || n.Op == SLASH {
		if x.Kind != cellvalue.KindInt || y.Kind != cellvalue.KindInt {
			return cellvalue.Value{}, ErrDependsOnError
		}
		switch n.Op {
		case LT:
			return boolValue(x.Int < y.Int), nil
		case LE:
			return boolValue(x.Int <= y.Int), nil
		case GT:
			return boolValue(x.Int > y.Int), nil
		case GE:
			return boolValue(x.Int >= y.Int), nil
		case PLUS:
			return cellvalue.Int(addSat(x.Int, y.Int)), nil
		case MINUS:
			return cellvalue.Int(subSat(x.Int, y.Int)), nil
		case ASTERISK:
			return cellvalue.Int(mulSat(x.Int, y.Int)), nil
		case SLASH:
			if y.Int == 0 {
				return cellvalue.Error("#DIV/0!"), nil
			}
			return cellvalue.Int(x.Int / y.Int), nil
		}
	}
	return cellvalue.Value{}, fmt.Errorf("formula: unsupported operator %s", n.Op)
}

func evalCall(n CallExpr, env cellvalue.Environment) (cellvalue.Value, error) {
	values, err := flattenArgs(n.Args, env)
	if err != nil {
		return cellvalue.Value{}, err
	}
	fn, ok := builtins[n.Func]
	if !ok {
		return cellvalue.Error(fmt.Sprintf("#NAME?: %s", n.Func)), nil
	}
	return fn(values)
}

// flattenArgs evaluates each call argument. A CellRefExpr argument
// contributes every value in its bound Scalar/Vector/Matrix; any other
// expression contributes its single scalar result.
func flattenArgs(args []Node, env cellvalue.Environment) ([]cellvalue.Value, error) {
	var out []cellvalue.Value
	for _, a := range args {
		if ref, ok := a.(CellRefExpr); ok {
			arg, bound := env[ref.Name]
			if !bound {
				continue
			}
			switch arg.Kind {
			case cellvalue.ArgScalar:
				out = append(out, arg.Scalar)
			case cellvalue.ArgVector:
				out = append(out, arg.Vector...)
			case cellvalue.ArgMatrix:
				for _, row := range arg.Matrix {
					out = append(out, row...)
				}
			}
			continue
		}
		v, err := evalScalar(a, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	for _, v := range out {
		if v.IsError() {
			return nil, ErrDependsOnError
		}
	}
	return out, nil
}

func boolValue(b bool) cellvalue.Value {
	if b {
		return cellvalue.Int(1)
	}
	return cellvalue.Int(0)
}

func valuesEqual(a, b cellvalue.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	return a.Equal(b)
}

func displayString(v cellvalue.Value) string {
	switch v.Kind {
	case cellvalue.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case cellvalue.KindString:
		return v.Text
	default:
		return ""
	}
}

func negSat(a int64) int64 {
	if a == math.MinInt64 {
		return math.MaxInt64
	}
	return -a
}

func addSat(a, b int64) int64 { return clamp(new(big.Int).Add(big.NewInt(a), big.NewInt(b))) }
func subSat(a, b int64) int64 { return clamp(new(big.Int).Sub(big.NewInt(a), big.NewInt(b))) }
func mulSat(a, b int64) int64 { return clamp(new(big.Int).Mul(big.NewInt(a), big.NewInt(b))) }

var bigMaxInt64 = big.NewInt(math.MaxInt64)
var bigMinInt64 = big.NewInt(math.MinInt64)

func clamp(r *big.Int) int64 {
	if r.Cmp(bigMaxInt64) > 0 {
		return math.MaxInt64
	}
	if r.Cmp(bigMinInt64) < 0 {
		return math.MinInt64
	}
	return r.Int64()
}
