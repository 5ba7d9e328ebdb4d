// Package value implements the tagged-variant value model the rest of the
// signal DAG operates on: a sum type over the numeric/boolean/string/struct
// kinds a mapping's datatype can declare, with validity tracked alongside
// the payload instead of via a sentinel.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	Unspecified Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float
	Double
	String
	Struct
)

func (k Kind) String() string {
	switch k {
	case Unspecified:
		return "unspecified"
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// Field is one named member of a Struct value. Fields preserve declaration
// order; a struct is never re-sorted.
type Field struct {
	Name  string
	Value Value
}

// Value is a tagged union over the supported datatypes. Only one of the
// payload fields is meaningful, selected by Kind. Valid is sticky: any
// value derived from an invalid operand is itself invalid (§4.1).
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	Str    string
	Fields []Field
	Valid  bool
}

// Invalid returns the unspecified, invalid value every node starts with.
func Invalid() Value {
	return Value{Kind: Unspecified, Valid: false}
}

func BoolValue(b bool) Value   { return Value{Kind: Bool, Bool: b, Valid: true} }
func IntValue(k Kind, i int64) Value {
	return Value{Kind: k, Int: i, Valid: true}
}
func UintValue(k Kind, u uint64) Value {
	return Value{Kind: k, Uint: u, Valid: true}
}
func FloatValue(f float64) Value  { return Value{Kind: Float, Float: f, Valid: true} }
func DoubleValue(f float64) Value { return Value{Kind: Double, Float: f, Valid: true} }
func StringValue(s string) Value  { return Value{Kind: String, Str: s, Valid: true} }

// StructValue builds an ordered struct value. A struct with no invalid
// fields is valid; any invalid field marks the whole struct invalid (§4.5).
func StructValue(fields []Field) Value {
	valid := true
	for _, f := range fields {
		if !f.Value.Valid {
			valid = false
			break
		}
	}
	return Value{Kind: Struct, Fields: fields, Valid: valid}
}

func isSigned(k Kind) bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

func isUnsigned(k Kind) bool {
	switch k {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

func isInteger(k Kind) bool { return isSigned(k) || isUnsigned(k) }

func isNumeric(k Kind) bool { return isInteger(k) || k == Float || k == Double || k == Bool }

// rank orders kinds along the promotion lattice of §4.1: bool ->
// smallest-signed-int -> wider-int -> float -> double. Unsigned kinds rank
// one step above their same-width signed counterpart so that mixing with a
// signed operand promotes to the next-wider signed type.
func rank(k Kind) int {
	switch k {
	case Bool:
		return 0
	case Int8:
		return 1
	case Uint8:
		return 2
	case Int16:
		return 3
	case Uint16:
		return 4
	case Int32:
		return 5
	case Uint32:
		return 6
	case Int64:
		return 7
	case Uint64:
		return 8
	case Float:
		return 9
	case Double:
		return 10
	default:
		return -1
	}
}

// widenSigned returns the smallest signed kind strictly wider than k, or
// Int64 when no wider signed kind exists (Int64, Uint64).
func widenSigned(k Kind) Kind {
	switch k {
	case Bool, Int8, Uint8:
		return Int16
	case Int16, Uint16:
		return Int32
	case Int32, Uint32:
		return Int64
	default:
		return Int64
	}
}

// CommonKind returns the kind two operands should be promoted to before an
// arithmetic or comparison operator is applied, per the §4.1 lattice.
func CommonKind(a, b Kind) (Kind, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return Unspecified, fmt.Errorf("value: cannot combine non-numeric kinds %s and %s", a, b)
	}
	if a == b {
		return a, nil
	}
	if rank(a) >= rank(b) {
		a, b = b, a
	}
	// a is now the "smaller" kind.
	if isUnsigned(a) && isSigned(b) && rank(b) <= rank(a) {
		return widenSigned(a), nil
	}
	if isSigned(a) && isUnsigned(b) {
		return widenSigned(b), nil
	}
	if rank(b) > rank(a) {
		return b, nil
	}
	return widenSigned(a), nil
}

// AsFloat64 extracts a float64 view of a numeric value, used by the
// evaluator for arithmetic that doesn't need to stay integer-typed.
func (v Value) AsFloat64() (float64, error) {
	switch v.Kind {
	case Bool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case Int8, Int16, Int32, Int64:
		return float64(v.Int), nil
	case Uint8, Uint16, Uint32, Uint64:
		return float64(v.Uint), nil
	case Float, Double:
		return v.Float, nil
	default:
		return 0, fmt.Errorf("value: %s is not numeric", v.Kind)
	}
}

// AsInt64 extracts an int64 view of an integer-ish value (bool included).
func (v Value) AsInt64() (int64, error) {
	switch v.Kind {
	case Bool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case Int8, Int16, Int32, Int64:
		return v.Int, nil
	case Uint8, Uint16, Uint32, Uint64:
		return int64(v.Uint), nil
	default:
		return 0, fmt.Errorf("value: %s has no integer view", v.Kind)
	}
}

// Canonical renders a value the way value-map transforms key their lookup
// table on (§4.5): booleans as true/false, integers base-10, floats via
// shortest round-trip formatting. Strings pass through unchanged.
func (v Value) Canonical() (string, error) {
	switch v.Kind {
	case Bool:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case Int8, Int16, Int32, Int64:
		return strconv.FormatInt(v.Int, 10), nil
	case Uint8, Uint16, Uint32, Uint64:
		return strconv.FormatUint(v.Uint, 10), nil
	case Float, Double:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), nil
	case String:
		return v.Str, nil
	default:
		return "", fmt.Errorf("value: %s has no canonical string form", v.Kind)
	}
}

func intRange(k Kind) (min, max int64, unsigned bool) {
	switch k {
	case Int8:
		return -1 << 7, 1<<7 - 1, false
	case Int16:
		return -1 << 15, 1<<15 - 1, false
	case Int32:
		return -1 << 31, 1<<31 - 1, false
	case Int64:
		return -1 << 63, 1<<63 - 1, false
	case Uint8:
		return 0, 1<<8 - 1, true
	case Uint16:
		return 0, 1<<16 - 1, true
	case Uint32:
		return 0, 1<<32 - 1, true
	case Uint64:
		return 0, -1, true // max handled specially below
	}
	return 0, 0, false
}

// CoerceTo converts v to the declared datatype kind, per §4.1's emission
// coercion rules. Narrowing overflow is a fault, never a silent wrap (the
// Open Question in spec §9 is resolved in favor of fault).
func CoerceTo(v Value, target Kind) (Value, error) {
	if !v.Valid {
		return Value{Kind: target, Valid: false}, nil
	}
	if v.Kind == target {
		return v, nil
	}
	switch target {
	case Bool:
		switch {
		case isInteger(v.Kind):
			i, _ := v.AsInt64()
			return BoolValue(i != 0), nil
		case v.Kind == Float || v.Kind == Double:
			f, _ := v.AsFloat64()
			return BoolValue(f != 0), nil
		case v.Kind == Bool:
			return v, nil
		default:
			return Value{}, fmt.Errorf("value: cannot coerce %s to bool", v.Kind)
		}
	case Float, Double:
		f, err := v.AsFloat64()
		if err != nil {
			return Value{}, fmt.Errorf("value: cannot coerce %s to %s: %w", v.Kind, target, err)
		}
		if target == Float {
			return FloatValue(float64(float32(f))), nil
		}
		return DoubleValue(f), nil
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		var i int64
		var u uint64
		var fromUnsigned bool
		switch {
		case v.Kind == Bool:
			if v.Bool {
				i = 1
			}
		case isSigned(v.Kind):
			i = v.Int
		case isUnsigned(v.Kind):
			u = v.Uint
			fromUnsigned = true
			i = int64(u)
		case v.Kind == Float || v.Kind == Double:
			f, _ := v.AsFloat64()
			i = int64(f)
			if f != float64(i) {
				return Value{}, fmt.Errorf("value: %v does not convert exactly to integer", f)
			}
		default:
			return Value{}, fmt.Errorf("value: cannot coerce %s to %s", v.Kind, target)
		}
		if isUnsigned(target) {
			if !fromUnsigned && i < 0 {
				return Value{}, fmt.Errorf("value: %d out of range for %s", i, target)
			}
			if fromUnsigned {
				u = v.Uint
			} else {
				u = uint64(i)
			}
			_, max, _ := intRange(target)
			if target != Uint64 && u > uint64(max) {
				return Value{}, fmt.Errorf("value: %d out of range for %s", u, target)
			}
			return UintValue(target, u), nil
		}
		min, max, _ := intRange(target)
		if fromUnsigned && u > uint64(max) {
			return Value{}, fmt.Errorf("value: %d out of range for %s", u, target)
		}
		if !fromUnsigned && (i < min || i > max) {
			return Value{}, fmt.Errorf("value: %d out of range for %s", i, target)
		}
		return IntValue(target, i), nil
	case String:
		s, err := v.Canonical()
		if err != nil {
			return Value{}, fmt.Errorf("value: cannot coerce %s to string: %w", v.Kind, err)
		}
		return StringValue(s), nil
	case Struct:
		return Value{}, fmt.Errorf("value: struct values are only produced by the output assembler")
	default:
		return Value{}, fmt.Errorf("value: unknown target kind %s", target)
	}
}
