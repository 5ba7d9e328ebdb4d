package eval

import (
	"fmt"
	"math"

	"github.com/canzero/sigdag/value"
)

// Env is the read-only name->value environment an expression is evaluated
// against. It is borrowed for the duration of one evaluation and never
// mutated by the evaluator (§4.2).
type Env map[string]value.Value

// Fault is returned when evaluation cannot produce a value at all: an
// unknown identifier, a type error, division by zero, overflow, or an
// unsupported operator. A Fault is distinct from an operand simply being
// invalid, which propagates silently as an invalid Value rather than an
// error (§4.1, §7).
type Fault struct {
	Msg string
}

func (f *Fault) Error() string { return "eval: " + f.Msg }

func fault(format string, args ...any) error {
	return &Fault{Msg: fmt.Sprintf(format, args...)}
}

// Eval walks a parsed expression against env and returns its value, or a
// Fault if the expression cannot be evaluated at all.
func Eval(n Node, env Env) (value.Value, error) {
	return n.eval(env)
}

func (n *IntLit) eval(Env) (value.Value, error) {
	return value.IntValue(value.Int64, n.Value), nil
}

func (n *FloatLit) eval(Env) (value.Value, error) {
	return value.DoubleValue(n.Value), nil
}

func (n *StringLit) eval(Env) (value.Value, error) {
	return value.StringValue(n.Value), nil
}

func (n *BoolLit) eval(Env) (value.Value, error) {
	return value.BoolValue(n.Value), nil
}

func (n *Ident) eval(env Env) (value.Value, error) {
	v, ok := env[n.Name]
	if !ok {
		return value.Value{}, fault("unknown identifier %q", n.Name)
	}
	return v, nil
}

func (n *Unary) eval(env Env) (value.Value, error) {
	v, err := n.Expr.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !v.Valid {
		return value.Value{Kind: v.Kind, Valid: false}, nil
	}
	switch n.Op {
	case "-":
		switch v.Kind {
		case value.Float, value.Double:
			f, _ := v.AsFloat64()
			if v.Kind == value.Float {
				return value.FloatValue(-f), nil
			}
			return value.DoubleValue(-f), nil
		default:
			i, err := v.AsInt64()
			if err != nil {
				return value.Value{}, fault("unary '-' on non-numeric value of kind %s", v.Kind)
			}
			return value.IntValue(value.Int64, -i), nil
		}
	case "!":
		b, err := asBool(v)
		if err != nil {
			return value.Value{}, err
		}
		return value.BoolValue(!b), nil
	default:
		return value.Value{}, fault("unsupported unary operator %q", n.Op)
	}
}

func (n *Ternary) eval(env Env) (value.Value, error) {
	cond, err := n.Cond.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !cond.Valid {
		return value.Value{Valid: false}, nil
	}
	b, err := asBool(cond)
	if err != nil {
		return value.Value{}, err
	}
	if b {
		return n.Then.eval(env)
	}
	return n.Else.eval(env)
}

func (n *Binary) eval(env Env) (value.Value, error) {
	switch n.Op {
	case "&&":
		return evalShortCircuitAnd(n, env)
	case "||":
		return evalShortCircuitOr(n, env)
	}

	left, err := n.Left.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	right, err := n.Right.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !left.Valid || !right.Valid {
		return value.Value{Valid: false}, nil
	}

	switch n.Op {
	case "+", "-", "*", "/", "%":
		return evalArith(n.Op, left, right)
	case "==", "!=", "<", "<=", ">", ">=":
		return evalCompare(n.Op, left, right)
	case "&", "|", "^", "<<", ">>":
		return evalBitwise(n.Op, left, right)
	default:
		return value.Value{}, fault("unsupported binary operator %q", n.Op)
	}
}

func evalShortCircuitAnd(n *Binary, env Env) (value.Value, error) {
	left, err := n.Left.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !left.Valid {
		return value.Value{Kind: value.Bool, Valid: false}, nil
	}
	lb, err := asBool(left)
	if err != nil {
		return value.Value{}, err
	}
	if !lb {
		return value.BoolValue(false), nil
	}
	right, err := n.Right.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !right.Valid {
		return value.Value{Kind: value.Bool, Valid: false}, nil
	}
	rb, err := asBool(right)
	if err != nil {
		return value.Value{}, err
	}
	return value.BoolValue(rb), nil
}

func evalShortCircuitOr(n *Binary, env Env) (value.Value, error) {
	left, err := n.Left.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !left.Valid {
		return value.Value{Kind: value.Bool, Valid: false}, nil
	}
	lb, err := asBool(left)
	if err != nil {
		return value.Value{}, err
	}
	if lb {
		return value.BoolValue(true), nil
	}
	right, err := n.Right.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	if !right.Valid {
		return value.Value{Kind: value.Bool, Valid: false}, nil
	}
	rb, err := asBool(right)
	if err != nil {
		return value.Value{}, err
	}
	return value.BoolValue(lb || rb), nil
}

func asBool(v value.Value) (bool, error) {
	switch v.Kind {
	case value.Bool:
		return v.Bool, nil
	default:
		i, err := v.AsInt64()
		if err != nil {
			return false, fault("expected boolean operand, got %s", v.Kind)
		}
		return i != 0, nil
	}
}

func evalArith(op string, l, r value.Value) (value.Value, error) {
	if l.Kind == value.String || r.Kind == value.String {
		return value.Value{}, fault("operator %q is not defined for string operands", op)
	}
	kind, err := value.CommonKind(l.Kind, r.Kind)
	if err != nil {
		return value.Value{}, fault("%s", err)
	}
	if kind == value.Float || kind == value.Double {
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		var res float64
		switch op {
		case "+":
			res = lf + rf
		case "-":
			res = lf - rf
		case "*":
			res = lf * rf
		case "/":
			if rf == 0 {
				return value.Value{}, fault("division by zero")
			}
			res = lf / rf
		case "%":
			return value.Value{}, fault("operator %% is not defined for floating point operands")
		}
		if kind == value.Float {
			return value.FloatValue(res), nil
		}
		return value.DoubleValue(res), nil
	}

	li, _ := l.AsInt64()
	ri, _ := r.AsInt64()
	switch op {
	case "+":
		return checkedIntResult(kind, li+ri)
	case "-":
		return checkedIntResult(kind, li-ri)
	case "*":
		return checkedIntResult(kind, li*ri)
	case "/":
		if ri == 0 {
			return value.Value{}, fault("division by zero")
		}
		return checkedIntResult(kind, li/ri)
	case "%":
		if ri == 0 {
			return value.Value{}, fault("division by zero")
		}
		return checkedIntResult(kind, li%ri)
	}
	return value.Value{}, fault("unsupported arithmetic operator %q", op)
}

func checkedIntResult(kind value.Kind, result int64) (value.Value, error) {
	coerced, err := value.CoerceTo(value.IntValue(value.Int64, result), kind)
	if err != nil {
		return value.Value{}, fault("arithmetic overflow: %s", err)
	}
	return coerced, nil
}

func evalCompare(op string, l, r value.Value) (value.Value, error) {
	if l.Kind == value.String || r.Kind == value.String {
		if l.Kind != value.String || r.Kind != value.String {
			return value.Value{}, fault("cannot compare %s with %s", l.Kind, r.Kind)
		}
		switch op {
		case "==":
			return value.BoolValue(l.Str == r.Str), nil
		case "!=":
			return value.BoolValue(l.Str != r.Str), nil
		default:
			return value.BoolValue(compareStrings(op, l.Str, r.Str)), nil
		}
	}

	lf, err := l.AsFloat64()
	if err != nil {
		return value.Value{}, fault("cannot compare non-numeric value of kind %s", l.Kind)
	}
	rf, err := r.AsFloat64()
	if err != nil {
		return value.Value{}, fault("cannot compare non-numeric value of kind %s", r.Kind)
	}
	switch op {
	case "==":
		return value.BoolValue(lf == rf), nil
	case "!=":
		return value.BoolValue(lf != rf), nil
	case "<":
		return value.BoolValue(lf < rf), nil
	case "<=":
		return value.BoolValue(lf <= rf), nil
	case ">":
		return value.BoolValue(lf > rf), nil
	case ">=":
		return value.BoolValue(lf >= rf), nil
	}
	return value.Value{}, fault("unsupported comparison operator %q", op)
}

func compareStrings(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func evalBitwise(op string, l, r value.Value) (value.Value, error) {
	if l.Kind == value.Float || l.Kind == value.Double || r.Kind == value.Float || r.Kind == value.Double {
		return value.Value{}, fault("bitwise operator %q requires integer operands", op)
	}
	kind, err := value.CommonKind(l.Kind, r.Kind)
	if err != nil {
		return value.Value{}, fault("%s", err)
	}
	li, err := l.AsInt64()
	if err != nil {
		return value.Value{}, fault("bitwise operator %q requires integer operands", op)
	}
	ri, err := r.AsInt64()
	if err != nil {
		return value.Value{}, fault("bitwise operator %q requires integer operands", op)
	}
	var res int64
	switch op {
	case "&":
		res = li & ri
	case "|":
		res = li | ri
	case "^":
		res = li ^ ri
	case "<<":
		res = li << uint64(ri)
	case ">>":
		res = li >> uint64(ri)
	}
	return checkedIntResult(kind, res)
}

// builtins is the fixed function set of §4.2. The map also doubles as the
// parser's "is this a known function" check.
var builtins = map[string]func(args []value.Value) (value.Value, error){
	"abs":     builtinAbs,
	"min":     builtinMin,
	"max":     builtinMax,
	"clamp":   builtinClamp,
	"round":   builtinRound,
	"floor":   builtinFloor,
	"ceil":    builtinCeil,
	"sqrt":    builtinSqrt,
	"isnan":   builtinIsNaN,
	"isvalid": nil, // handled specially, never dispatched through this table
}

func (n *Call) eval(env Env) (value.Value, error) {
	if n.Name == "isvalid" {
		if len(n.Args) != 1 {
			return value.Value{}, fault("isvalid expects exactly 1 argument, got %d", len(n.Args))
		}
		v, err := n.Args[0].eval(env)
		if err != nil {
			return value.Value{}, err
		}
		return value.BoolValue(v.Valid), nil
	}

	fn, ok := builtins[n.Name]
	if !ok || fn == nil {
		return value.Value{}, fault("unknown function %q", n.Name)
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := a.eval(env)
		if err != nil {
			return value.Value{}, err
		}
		if !v.Valid {
			return value.Value{Valid: false}, nil
		}
		args[i] = v
	}
	return fn(args)
}

func builtinAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fault("abs expects 1 argument, got %d", len(args))
	}
	f, err := args[0].AsFloat64()
	if err != nil {
		return value.Value{}, fault("abs: %s", err)
	}
	if args[0].Kind == value.Float || args[0].Kind == value.Double {
		return value.DoubleValue(math.Abs(f)), nil
	}
	i, _ := args[0].AsInt64()
	if i < 0 {
		i = -i
	}
	return value.IntValue(value.Int64, i), nil
}

func builtinMin(args []value.Value) (value.Value, error) { return minMax(args, false) }
func builtinMax(args []value.Value) (value.Value, error) { return minMax(args, true) }

func minMax(args []value.Value, wantMax bool) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, fault("min/max expect 2 arguments, got %d", len(args))
	}
	a, err := args[0].AsFloat64()
	if err != nil {
		return value.Value{}, fault("min/max: %s", err)
	}
	b, err := args[1].AsFloat64()
	if err != nil {
		return value.Value{}, fault("min/max: %s", err)
	}
	pick := a
	if (wantMax && b > a) || (!wantMax && b < a) {
		pick = b
	}
	return value.DoubleValue(pick), nil
}

func builtinClamp(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fault("clamp expects 3 arguments, got %d", len(args))
	}
	x, err := args[0].AsFloat64()
	if err != nil {
		return value.Value{}, fault("clamp: %s", err)
	}
	lo, err := args[1].AsFloat64()
	if err != nil {
		return value.Value{}, fault("clamp: %s", err)
	}
	hi, err := args[2].AsFloat64()
	if err != nil {
		return value.Value{}, fault("clamp: %s", err)
	}
	if x < lo {
		x = lo
	}
	if x > hi {
		x = hi
	}
	return value.DoubleValue(x), nil
}

func builtinRound(args []value.Value) (value.Value, error) { return unaryFloatFn(args, "round", math.Round) }
func builtinFloor(args []value.Value) (value.Value, error) { return unaryFloatFn(args, "floor", math.Floor) }
func builtinCeil(args []value.Value) (value.Value, error)  { return unaryFloatFn(args, "ceil", math.Ceil) }
func builtinSqrt(args []value.Value) (value.Value, error) { return unaryFloatFn(args, "sqrt", math.Sqrt) }

func unaryFloatFn(args []value.Value, name string, fn func(float64) float64) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fault("%s expects 1 argument, got %d", name, len(args))
	}
	f, err := args[0].AsFloat64()
	if err != nil {
		return value.Value{}, fault("%s: %s", name, err)
	}
	return value.DoubleValue(fn(f)), nil
}

func builtinIsNaN(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fault("isnan expects 1 argument, got %d", len(args))
	}
	f, err := args[0].AsFloat64()
	if err != nil {
		return value.Value{}, fault("isnan: %s", err)
	}
	return value.BoolValue(math.IsNaN(f)), nil
}
