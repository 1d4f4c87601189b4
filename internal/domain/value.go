package domain

import (
	"encoding/json"
	"strconv"
)

// ValueKind is the variant tag of a VariableValue.
type ValueKind uint8

const (
	ValueKindAbsent ValueKind = iota
	ValueKindInt
	ValueKindBool
	ValueKindStr
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindInt:
		return string(DatatypeInt)
	case ValueKindBool:
		return string(DatatypeBool)
	case ValueKindStr:
		return string(DatatypeStr)
	default:
		return "none"
	}
}

// Datatype returns the MariaDB datatype of the variant, or an empty datatype for absent values.
func (k ValueKind) Datatype() Datatype {
	if k == ValueKindAbsent {
		return ""
	}

	return Datatype(k.String())
}

// VariableValue holds either nothing, an integer, a boolean or a string.
type VariableValue struct {
	kind ValueKind
	i    int64
	b    bool
	s    string
}

func NoValue() VariableValue {
	return VariableValue{}
}

func IntValue(v int64) VariableValue {
	return VariableValue{kind: ValueKindInt, i: v}
}

func BoolValue(v bool) VariableValue {
	return VariableValue{kind: ValueKindBool, b: v}
}

func StrValue(v string) VariableValue {
	return VariableValue{kind: ValueKindStr, s: v}
}

func (v VariableValue) Kind() ValueKind {
	return v.kind
}

func (v VariableValue) IsSet() bool {
	return v.kind != ValueKindAbsent
}

func (v VariableValue) Int() (int64, bool) {
	return v.i, v.kind == ValueKindInt
}

func (v VariableValue) Bool() (bool, bool) {
	return v.b, v.kind == ValueKindBool
}

func (v VariableValue) Str() (string, bool) {
	return v.s, v.kind == ValueKindStr
}

// Any returns the held value as int64, bool or string. Absent values are returned as nil.
func (v VariableValue) Any() any {
	switch v.kind {
	case ValueKindInt:
		return v.i
	case ValueKindBool:
		return v.b
	case ValueKindStr:
		return v.s
	default:
		return nil
	}
}

// String formats the value the way MariaDB expects it in option files and SET statements.
// Booleans are written as ON or OFF.
func (v VariableValue) String() string {
	switch v.kind {
	case ValueKindInt:
		return strconv.FormatInt(v.i, 10)
	case ValueKindBool:
		if v.b {
			return "ON"
		}
		return "OFF"
	case ValueKindStr:
		return v.s
	default:
		return ""
	}
}

func (v VariableValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}
