package eval

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/canzero/sigdag/value"
)

func evalStr(t *testing.T, expr string, env Env) value.Value {
	t.Helper()
	node, err := Parse(expr)
	assert.NoError(t, err)
	v, err := Eval(node, env)
	assert.NoError(t, err)
	return v
}

func TestCodeTransformSpeedKmh(t *testing.T) {
	// S2 from spec: SpeedMs * 3.6
	v := evalStr(t, "SpeedMs * 3.6", Env{"SpeedMs": value.DoubleValue(10.0)})
	assert.True(t, v.Valid)
	f, _ := v.AsFloat64()
	assert.Equal(t, 36.0, f)
}

func TestPrecedenceAndParens(t *testing.T) {
	v := evalStr(t, "2 + 3 * 4", Env{})
	i, _ := v.AsInt64()
	assert.Equal(t, int64(14), i)

	v = evalStr(t, "(2 + 3) * 4", Env{})
	i, _ = v.AsInt64()
	assert.Equal(t, int64(20), i)
}

func TestTernary(t *testing.T) {
	v := evalStr(t, "1 < 2 ? 10 : 20", Env{})
	i, _ := v.AsInt64()
	assert.Equal(t, int64(10), i)
}

func TestShortCircuitAndDoesNotEvaluateRight(t *testing.T) {
	// right side references an undefined name; short circuit must prevent
	// the unknown-identifier fault from surfacing.
	v := evalStr(t, "false && undefined_name", Env{})
	assert.True(t, v.Valid)
	assert.Equal(t, false, v.Bool)
}

func TestShortCircuitOrDoesNotEvaluateRight(t *testing.T) {
	v := evalStr(t, "true || undefined_name", Env{})
	assert.True(t, v.Valid)
	assert.Equal(t, true, v.Bool)
}

func TestInvalidityPropagation(t *testing.T) {
	// S5 from spec: A && true where A is invalid must stay invalid.
	node, err := Parse("A && true")
	assert.NoError(t, err)
	v, err := Eval(node, Env{"A": value.Value{Kind: value.Bool, Valid: false}})
	assert.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestIsValidDoesNotPropagateInvalidity(t *testing.T) {
	node, err := Parse("isvalid(A)")
	assert.NoError(t, err)
	v, err := Eval(node, Env{"A": value.Value{Kind: value.Bool, Valid: false}})
	assert.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, false, v.Bool)
}

func TestUnknownIdentifierFaults(t *testing.T) {
	node, err := Parse("nope + 1")
	assert.NoError(t, err)
	_, err = Eval(node, Env{})
	assert.Error(t, err)
}

func TestDivisionByZeroFaults(t *testing.T) {
	node, err := Parse("1 / 0")
	assert.NoError(t, err)
	_, err = Eval(node, Env{})
	assert.Error(t, err)
}

func TestStringArithmeticFaults(t *testing.T) {
	node, err := Parse(`"a" + 1`)
	assert.NoError(t, err)
	_, err = Eval(node, Env{})
	assert.Error(t, err)
}

func TestClampFunction(t *testing.T) {
	v := evalStr(t, "clamp(15, 0, 10)", Env{})
	f, _ := v.AsFloat64()
	assert.Equal(t, 10.0, f)
}

func TestBitwiseOperators(t *testing.T) {
	v := evalStr(t, "6 & 3", Env{})
	i, _ := v.AsInt64()
	assert.Equal(t, int64(2), i)

	v = evalStr(t, "1 << 4", Env{})
	i, _ = v.AsInt64()
	assert.Equal(t, int64(16), i)
}

func TestUnknownFunctionRejectedAtParseTime(t *testing.T) {
	_, err := Parse("bogus(1)")
	assert.Error(t, err)
}
