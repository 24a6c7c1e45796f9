package eval

import (
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
	"github.com/stretchr/testify/require"
)

func TestEvalMathArithmetic(t *testing.T) {
	var pos token.Position
	ev := &Evaluator{}

	cases := []struct {
		op   string
		a, b float64
		want float64
	}{
		{"add", 2, 3, 5},
		{"sub", 5, 3, 2},
		{"mul", 4, 3, 12},
		{"div", 9, 3, 3},
		{"div", 9, 0, 0}, // division by zero yields 0, not NaN/Inf
		{"idiv", 7, 2, 3},
		{"mod", 7, 3, 1},
		{"pow", 2, 10, 1024},
		{"max", 2, 9, 9},
		{"min", 2, 9, 2},
		{"shl", 1, 4, 16},
		{"shr", 16, 4, 1},
		{"or", 5, 2, 7},
		{"and", 6, 3, 2},
		{"xor", 5, 3, 6},
	}
	for _, c := range cases {
		t.Run(c.op, func(t *testing.T) {
			a := value.NewNumber(c.a, pos)
			b := value.NewNumber(c.b, pos)
			got, err := ev.evalMath(pos, c.op, a, b)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestEvalMathUnary(t *testing.T) {
	var pos token.Position
	ev := &Evaluator{}

	cases := []struct {
		op   string
		a    float64
		want float64
	}{
		{"abs", -4, 4},
		{"floor", 3.7, 3},
		{"ceil", 3.2, 4},
		{"sqrt", 9, 3},
	}
	for _, c := range cases {
		t.Run(c.op, func(t *testing.T) {
			a := value.NewNumber(c.a, pos)
			got, err := ev.evalMath(pos, c.op, a, nil)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestEvalMathStrictEqualTypeMismatch(t *testing.T) {
	var pos token.Position
	ev := &Evaluator{}

	n := value.NewNumber(1, pos)
	s := value.NewString("1", pos)

	got, err := ev.evalMath(pos, "strictEqual", n, s)
	require.NoError(t, err)
	require.Equal(t, 0.0, got, "strictEqual must be false across mismatched kinds even when coerced numerics match")
}

func TestEvalMathUnknownOp(t *testing.T) {
	var pos token.Position
	ev := &Evaluator{}

	_, err := ev.evalMath(pos, "nonsense", value.NewNumber(1, pos), value.NewNumber(1, pos))
	require.Error(t, err)
}

func TestEvalConditionCrossType(t *testing.T) {
	ev := &Evaluator{}
	var pos token.Position

	n := value.NewNumber(1, pos)
	s := value.NewQuotedString(`"1"`, pos)
	require.True(t, ev.evalCondition("equal", n, s), "cross-kind equal coerces through numeric value")

	null := value.NewNull(pos)
	require.True(t, ev.evalCondition("equal", null, value.NewNumber(0, pos)))
}

func TestEqualRaw(t *testing.T) {
	var pos token.Position
	require.True(t, equalRaw(value.NewNumber(3, pos), value.NewNumber(3, pos)))
	require.False(t, equalRaw(value.NewNumber(3, pos), value.NewNumber(4, pos)))
	require.True(t, equalRaw(value.NewNull(pos), value.NewNull(pos)))
}
