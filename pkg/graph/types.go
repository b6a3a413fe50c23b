package graph

import (
	"fmt"
)

// ValueType is the type of a node property or a node value slot
type ValueType uint8

const (
	TypeLong ValueType = iota
	TypeDouble
	TypeLongArray
	TypeDoubleArray
)

// String returns the name of the value type
func (t ValueType) String() string {
	switch t {
	case TypeLong:
		return "LONG"
	case TypeDouble:
		return "DOUBLE"
	case TypeLongArray:
		return "LONG_ARRAY"
	case TypeDoubleArray:
		return "DOUBLE_ARRAY"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(t))
	}
}

// SizeOf returns the estimated in-memory size of one scalar slot of this type.
// Array types report the slice header only.
func (t ValueType) SizeOf() int64 {
	switch t {
	case TypeLong, TypeDouble:
		return 8
	default:
		return 24
	}
}

// Value is a typed property value
type Value struct {
	Type        ValueType
	Long        int64
	Double      float64
	LongArray   []int64
	DoubleArray []float64
}

// Helper functions to create typed values
func LongValue(v int64) Value {
	return Value{Type: TypeLong, Long: v}
}

func DoubleValue(v float64) Value {
	return Value{Type: TypeDouble, Double: v}
}

func LongArrayValue(v []int64) Value {
	return Value{Type: TypeLongArray, LongArray: v}
}

func DoubleArrayValue(v []float64) Value {
	return Value{Type: TypeDoubleArray, DoubleArray: v}
}

// AsLong returns the value as int64. Doubles are truncated.
func (v Value) AsLong() (int64, error) {
	switch v.Type {
	case TypeLong:
		return v.Long, nil
	case TypeDouble:
		return int64(v.Double), nil
	default:
		return 0, fmt.Errorf("value of type %s is not a long", v.Type)
	}
}

// AsDouble returns the value as float64. Longs are widened.
func (v Value) AsDouble() (float64, error) {
	switch v.Type {
	case TypeDouble:
		return v.Double, nil
	case TypeLong:
		return float64(v.Long), nil
	default:
		return 0, fmt.Errorf("value of type %s is not a double", v.Type)
	}
}

// Orientation controls how input relationships are projected into the graph
type Orientation int

const (
	// Natural keeps relationships as given: source -> target
	Natural Orientation = iota
	// Reverse flips every relationship: target -> source
	Reverse
	// Undirected stores every relationship in both directions
	Undirected
)

// String returns the name of the orientation
func (o Orientation) String() string {
	switch o {
	case Natural:
		return "NATURAL"
	case Reverse:
		return "REVERSE"
	case Undirected:
		return "UNDIRECTED"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Orientation) MarshalText() ([]byte, error) {
	if o < Natural || o > Undirected {
		return nil, fmt.Errorf("unknown orientation %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrientation parses an orientation name (case-sensitive upper case or lower case)
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "NATURAL", "natural", "":
		return Natural, nil
	case "REVERSE", "reverse":
		return Reverse, nil
	case "UNDIRECTED", "undirected":
		return Undirected, nil
	default:
		return Natural, fmt.Errorf("unknown orientation %q", s)
	}
}
