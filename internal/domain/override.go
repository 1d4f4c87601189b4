package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"
)

type OverrideIdentifier string

const valueFieldPrefix = "value_"

const (
	ValueFieldInt  = valueFieldPrefix + "int"
	ValueFieldBool = valueFieldPrefix + "bool"
	ValueFieldStr  = valueFieldPrefix + "str"
)

// BytesPerMegabyte is used to convert stored integer values, which are kept in megabytes.
const BytesPerMegabyte = 1024 * 1024

// MaxValueInt is the largest absolute integer value, in megabytes, that still fits into int64 as bytes.
const MaxValueInt = math.MaxInt64 / BytesPerMegabyte

// valueFields lists all value_* columns, the order decides which field wins in ValueField.
var valueFields = []string{ValueFieldInt, ValueFieldBool, ValueFieldStr}

// VariableOverride sets a MariaDB system variable to a specific value for one database server.
// At most one of the value fields may be set, a zero value counts as unset.
type VariableOverride struct {
	BaseModel

	Identifier      OverrideIdentifier `gorm:"primaryKey;column:identifier;size:64"`
	MariaDBVariable VariableName       `gorm:"column:mariadb_variable;size:128;uniqueIndex:idx_override_variable_parent"`
	Parent          ServerIdentifier   `gorm:"column:parent;size:64;uniqueIndex:idx_override_variable_parent"`

	ValueInt  int64  `gorm:"column:value_int"` // megabytes
	ValueBool bool   `gorm:"column:value_bool"`
	ValueStr  string `gorm:"column:value_str"`

	Skip bool `gorm:"column:skip"` // write skip-<name> instead of a value, only valid for boolean variables
}

func (VariableOverride) TableName() string {
	return "mariadb_variable_overrides"
}

// Datatype looks up the declared datatype of the referenced variable.
func (o *VariableOverride) Datatype(ctx context.Context, store VariableMetadataStore) (Datatype, error) {
	v, err := store.GetMariaDBVariable(ctx, o.MariaDBVariable)
	if err != nil {
		return "", fmt.Errorf("failed to load variable %s: %w", o.MariaDBVariable, err)
	}

	return v.Datatype.Normalized(), nil
}

// Dynamic reports whether the referenced variable can be changed at runtime.
func (o *VariableOverride) Dynamic(ctx context.Context, store VariableMetadataStore) (bool, error) {
	v, err := store.GetMariaDBVariable(ctx, o.MariaDBVariable)
	if err != nil {
		return false, fmt.Errorf("failed to load variable %s: %w", o.MariaDBVariable, err)
	}

	return v.Dynamic, nil
}

// ValueFields returns the names of all value fields in their precedence order.
func (o *VariableOverride) ValueFields() []string {
	return slices.Clone(valueFields)
}

// ValueField returns the first value field that has a value, or an empty string if none is set.
func (o *VariableOverride) ValueField() string {
	for _, f := range valueFields {
		if o.fieldIsSet(f) {
			return f
		}
	}

	return ""
}

// Value returns the value of the first value field that has a value.
// Integer values are converted from megabytes to bytes.
func (o *VariableOverride) Value() VariableValue {
	switch o.ValueField() {
	case ValueFieldInt:
		return IntValue(o.ValueInt * BytesPerMegabyte)
	case ValueFieldBool:
		return BoolValue(o.ValueBool)
	case ValueFieldStr:
		return StrValue(o.ValueStr)
	default:
		return NoValue()
	}
}

// SetValue stores v in the matching value field and clears all other value fields.
// Integer values are given in megabytes, as they are stored.
func (o *VariableOverride) SetValue(v VariableValue) {
	o.ValueInt, o.ValueBool, o.ValueStr = 0, false, ""

	switch v.Kind() {
	case ValueKindInt:
		o.ValueInt, _ = v.Int()
	case ValueKindBool:
		o.ValueBool, _ = v.Bool()
	case ValueKindStr:
		o.ValueStr, _ = v.Str()
	}
}

// Validate checks the override against the declared datatype of its variable.
// The owning workflow has to call it before the override is persisted.
func (o *VariableOverride) Validate(ctx context.Context, store VariableMetadataStore) error {
	if err := o.validateOnlyOneValueIsSet(); err != nil {
		return err
	}

	var datatype Datatype
	lookup := func() (Datatype, error) {
		if datatype != "" {
			return datatype, nil
		}
		v, err := store.GetMariaDBVariable(ctx, o.MariaDBVariable)
		switch {
		case errors.Is(err, ErrNotFound):
			return "", NewValidationError(o.MariaDBVariable, "unknown MariaDB system variable %s", o.MariaDBVariable)
		case err != nil:
			return "", fmt.Errorf("failed to load variable %s: %w", o.MariaDBVariable, err)
		}
		datatype = v.Datatype.Normalized()
		return datatype, nil
	}

	if o.Value().IsSet() {
		dt, err := lookup()
		if err != nil {
			return err
		}
		if err := o.validateValueFieldSetIsCorrect(dt); err != nil {
			return err
		}
		if err := o.validateDatatypeOfFieldIsCorrect(dt); err != nil {
			return err
		}
		if err := o.validateValueIsWritable(); err != nil {
			return err
		}
	}

	if o.Skip {
		dt, err := lookup()
		if err != nil {
			return err
		}
		if err := o.validateSkippedShouldBeBool(dt); err != nil {
			return err
		}
	}

	return nil
}

func (o *VariableOverride) validateOnlyOneValueIsSet() error {
	populated := 0
	for _, f := range valueFields {
		if o.fieldIsSet(f) {
			populated++
		}
	}
	if populated > 1 {
		return NewValidationError(o.MariaDBVariable,
			"only one value can be set for MariaDB system variable %s", o.MariaDBVariable)
	}

	return nil
}

func (o *VariableOverride) validateValueFieldSetIsCorrect(datatype Datatype) error {
	if o.ValueField() != datatype.ValueField() {
		return NewValidationError(o.MariaDBVariable,
			"value field for %s must be %s", o.MariaDBVariable, datatype.ValueField())
	}

	return nil
}

func (o *VariableOverride) validateDatatypeOfFieldIsCorrect(datatype Datatype) error {
	if o.Value().Kind().Datatype() != datatype {
		return NewValidationError(o.MariaDBVariable, "value for %s must be %s", o.MariaDBVariable, datatype)
	}

	return nil
}

// validateValueIsWritable rejects values that cannot be written as a single option file line
// or that overflow once converted to bytes.
func (o *VariableOverride) validateValueIsWritable() error {
	switch o.ValueField() {
	case ValueFieldInt:
		if o.ValueInt > MaxValueInt || o.ValueInt < -MaxValueInt {
			return NewValidationError(o.MariaDBVariable,
				"value for %s must be between %d and %d megabytes", o.MariaDBVariable, -MaxValueInt, MaxValueInt)
		}
	case ValueFieldStr:
		if !IsSingleLine(o.ValueStr) {
			return NewValidationError(o.MariaDBVariable,
				"value for %s must not contain line breaks or control characters", o.MariaDBVariable)
		}
	}

	return nil
}

func (o *VariableOverride) validateSkippedShouldBeBool(datatype Datatype) error {
	if datatype != DatatypeBool {
		return NewValidationError(o.MariaDBVariable,
			"only boolean variables can be skipped, %s is not a boolean variable", o.MariaDBVariable)
	}

	return nil
}

func (o *VariableOverride) fieldIsSet(field string) bool {
	switch field {
	case ValueFieldInt:
		return o.ValueInt != 0
	case ValueFieldBool:
		return o.ValueBool
	case ValueFieldStr:
		return o.ValueStr != ""
	default:
		return false
	}
}

// OptionName returns the variable name in the form used by MariaDB option files.
func (o *VariableOverride) OptionName() string {
	return strings.ReplaceAll(string(o.MariaDBVariable), "-", "_")
}

// IsSingleLine reports whether s is free of line breaks and other control characters.
func IsSingleLine(s string) bool {
	return !strings.ContainsFunc(s, unicode.IsControl)
}

// CopyValues copies all user editable fields from src.
func (o *VariableOverride) CopyValues(src *VariableOverride) {
	o.MariaDBVariable = src.MariaDBVariable
	o.ValueInt = src.ValueInt
	o.ValueBool = src.ValueBool
	o.ValueStr = src.ValueStr
	o.Skip = src.Skip
}
