package value

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCommonKindPromotion(t *testing.T) {
	t.Run("bool and int8 promotes to int8", func(t *testing.T) {
		k, err := CommonKind(Bool, Int8)
		assert.NoError(t, err)
		assert.Equal(t, Int8, k)
	})

	t.Run("int32 and float promotes to float", func(t *testing.T) {
		k, err := CommonKind(Int32, Float)
		assert.NoError(t, err)
		assert.Equal(t, Float, k)
	})

	t.Run("uint16 and int16 widens to int32", func(t *testing.T) {
		k, err := CommonKind(Uint16, Int16)
		assert.NoError(t, err)
		assert.Equal(t, Int32, k)
	})

	t.Run("string operand is rejected", func(t *testing.T) {
		_, err := CommonKind(String, Int32)
		assert.Error(t, err)
	})
}

func TestCoerceToNarrowingOverflow(t *testing.T) {
	v := IntValue(Int32, 1000)
	_, err := CoerceTo(v, Int8)
	assert.Error(t, err)
}

func TestCoerceToIntToBool(t *testing.T) {
	v, err := CoerceTo(IntValue(Int32, 5), Bool)
	assert.NoError(t, err)
	assert.Equal(t, true, v.Bool)

	v, err = CoerceTo(IntValue(Int32, 0), Bool)
	assert.NoError(t, err)
	assert.Equal(t, false, v.Bool)
}

func TestCoerceToBoolToNumeric(t *testing.T) {
	v, err := CoerceTo(BoolValue(true), Int32)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), v.Int)
}

func TestCoerceToInvalidStaysInvalid(t *testing.T) {
	v, err := CoerceTo(Invalid(), Float)
	assert.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestCoerceFloatDoubleLossyAllowed(t *testing.T) {
	v, err := CoerceTo(DoubleValue(3.14159265358979), Float)
	assert.NoError(t, err)
	assert.Equal(t, Float, v.Kind)
}

func TestCanonicalStringification(t *testing.T) {
	s, err := BoolValue(true).Canonical()
	assert.NoError(t, err)
	assert.Equal(t, "true", s)

	s, err = IntValue(Int32, 3).Canonical()
	assert.NoError(t, err)
	assert.Equal(t, "3", s)

	s, err = FloatValue(36.0).Canonical()
	assert.NoError(t, err)
	assert.Equal(t, "36", s)
}

func TestStructValueInvalidFieldPropagates(t *testing.T) {
	s := StructValue([]Field{
		{Name: "x", Value: FloatValue(1.0)},
		{Name: "y", Value: Invalid()},
	})
	assert.False(t, s.Valid)
}

func TestStructValuePreservesFieldOrder(t *testing.T) {
	s := StructValue([]Field{
		{Name: "y", Value: FloatValue(2.0)},
		{Name: "x", Value: FloatValue(1.0)},
	})
	assert.Equal(t, "y", s.Fields[0].Name)
	assert.Equal(t, "x", s.Fields[1].Name)
}
