package eval

import (
	"math"
	"math/rand"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// unaryMathOps are pop operations taking a single operand.
var unaryMathOps = map[string]bool{
	"not": true, "abs": true, "floor": true, "ceil": true, "sqrt": true,
	"sin": true, "cos": true, "tan": true, "asin": true, "acos": true,
	"atan": true, "log": true, "log10": true, "rand": true,
}

// evalMath implements spec.md §4.3's Math semantics, grounded on
// original_source/sfmlog.py's eval_math: coerce_num unless both operands
// share a Kind and op is condition-class, in which case compare raw
// values directly.
func (ev *Evaluator) evalMath(pos token.Position, op string, a, b *value.Value) (float64, error) {
	if conditions[op] && b != nil && a.Kind == b.Kind {
		return boolToFloat(equalRaw(a, b)), nil
	}
	x := ev.coerceNum(a)
	y := 0.0
	if b != nil {
		y = ev.coerceNum(b)
	}
	switch op {
	case "add":
		return x + y, nil
	case "sub":
		return x - y, nil
	case "mul":
		return x * y, nil
	case "div":
		if y == 0 {
			return 0, nil
		}
		return x / y, nil
	case "idiv":
		if y == 0 {
			return 0, nil
		}
		return math.Floor(x / y), nil
	case "mod":
		if y == 0 {
			return 0, nil
		}
		return math.Mod(x, y), nil
	case "pow":
		return math.Pow(x, y), nil
	case "equal":
		return boolToFloat(x == y), nil
	case "notEqual":
		return boolToFloat(x != y), nil
	case "land":
		return boolToFloat(x != 0 && y != 0), nil
	case "lessThan":
		return boolToFloat(x < y), nil
	case "lessThanEq":
		return boolToFloat(x <= y), nil
	case "greaterThan":
		return boolToFloat(x > y), nil
	case "greaterThanEq":
		return boolToFloat(x >= y), nil
	case "strictEqual":
		// spec.md §9: implement the intent (false on type mismatch, else
		// equality), not the original's overwrite-after-set fall-through.
		if b != nil && a.Kind != b.Kind {
			return 0, nil
		}
		return boolToFloat(x == y), nil
	case "shl":
		return float64(int64(x) << uint(int64(y))), nil
	case "shr":
		return float64(int64(x) >> uint(int64(y))), nil
	case "or":
		return float64(int64(x) | int64(y)), nil
	case "and":
		return float64(int64(x) & int64(y)), nil
	case "xor":
		return float64(int64(x) ^ int64(y)), nil
	case "not":
		return float64(^int64(x)), nil
	case "max":
		return math.Max(x, y), nil
	case "min":
		return math.Min(x, y), nil
	case "angle":
		return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360), nil
	case "angleDiff":
		d := math.Mod(math.Abs(x-y), 360)
		if d > 180 {
			d = 360 - d
		}
		return d, nil
	case "len":
		return math.Hypot(x, y), nil
	case "abs":
		return math.Abs(x), nil
	case "log":
		return math.Log(x), nil
	case "log10":
		return math.Log10(x), nil
	case "floor":
		return math.Floor(x), nil
	case "ceil":
		return math.Ceil(x), nil
	case "sqrt":
		return math.Sqrt(x), nil
	case "rand":
		return rand.Float64() * x, nil
	case "sin":
		return math.Sin(x * math.Pi / 180), nil
	case "cos":
		return math.Cos(x * math.Pi / 180), nil
	case "tan":
		return math.Tan(x * math.Pi / 180), nil
	case "asin":
		return math.Asin(x) * 180 / math.Pi, nil
	case "acos":
		return math.Acos(x) * 180 / math.Pi, nil
	case "atan":
		return math.Atan(x) * 180 / math.Pi, nil
	default:
		return 0, ev.errorf(pos, "pop: unknown operation %q", op)
	}
}

// evalCondition implements eval_condition (spec.md §4.3's Condition
// semantics): equal-typed operands compare directly, cross-type operands
// coerce via coerce_num; `in` is handled separately by the caller.
func (ev *Evaluator) evalCondition(op string, a, b *value.Value) bool {
	if a.Kind == b.Kind {
		switch op {
		case "equal", "strictEqual":
			return equalRaw(a, b)
		case "notEqual":
			return !equalRaw(a, b)
		}
	}
	if op == "strictEqual" {
		return a.Kind == b.Kind && equalRaw(a, b)
	}
	x, y := ev.coerceNum(a), ev.coerceNum(b)
	switch op {
	case "equal":
		return x == y
	case "notEqual":
		return x != y
	case "land":
		return x != 0 && y != 0
	case "lessThan":
		return x < y
	case "lessThanEq":
		return x <= y
	case "greaterThan":
		return x > y
	case "greaterThanEq":
		return x >= y
	default:
		return false
	}
}

// equalRaw compares two same-Kind values by their underlying payload,
// the way convert_var_to_py-based equality does for the original.
func equalRaw(a, b *value.Value) bool {
	switch a.Kind {
	case value.Number:
		return a.Num == b.Num
	case value.String:
		return a.Unquote() == b.Unquote()
	case value.Null:
		return true
	case value.ColorKind:
		return a.Clr == b.Clr
	default:
		return a.Str == b.Str
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
