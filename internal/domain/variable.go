package domain

import (
	"context"
	"fmt"
	"strings"
)

type VariableName string

// Datatype is the declared type of a MariaDB system variable.
type Datatype string

const (
	DatatypeInt  Datatype = "int"
	DatatypeBool Datatype = "bool"
	DatatypeStr  Datatype = "str"
)

// ParseDatatype parses the given string case-insensitively, "Int" and "int" are equal.
func ParseDatatype(s string) (Datatype, error) {
	d := Datatype(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: unsupported datatype %q", ErrInvalidData, s)
	}

	return d, nil
}

func (d Datatype) IsValid() bool {
	switch d {
	case DatatypeInt, DatatypeBool, DatatypeStr:
		return true
	default:
		return false
	}
}

// Normalized returns the lower-case form of the datatype.
func (d Datatype) Normalized() Datatype {
	return Datatype(strings.ToLower(string(d)))
}

// ValueField returns the name of the override field that must hold values of this datatype.
func (d Datatype) ValueField() string {
	return valueFieldPrefix + string(d.Normalized())
}

// MariaDBVariable is the metadata record of a MariaDB system variable.
type MariaDBVariable struct {
	BaseModel

	Name     VariableName `gorm:"primaryKey;column:name;size:128"`
	Datatype Datatype     `gorm:"column:datatype;size:8"`
	Dynamic  bool         `gorm:"column:dynamic"` // the variable can be changed at runtime with SET GLOBAL

	DocSection  string `gorm:"column:doc_section"`
	Description string `gorm:"column:description"`
}

func (MariaDBVariable) TableName() string {
	return "mariadb_variables"
}

// Validate checks that the metadata record itself is usable.
func (v *MariaDBVariable) Validate() error {
	if strings.TrimSpace(string(v.Name)) == "" {
		return fmt.Errorf("%w: variable name must not be empty", ErrInvalidData)
	}
	if !v.Datatype.Normalized().IsValid() {
		return fmt.Errorf("%w: unsupported datatype %q for variable %s", ErrInvalidData, v.Datatype, v.Name)
	}

	return nil
}

// VariableMetadataStore provides read access to the MariaDB variable catalog.
type VariableMetadataStore interface {
	// GetMariaDBVariable returns the metadata record for the given variable.
	// If the variable is unknown, ErrNotFound is returned.
	GetMariaDBVariable(ctx context.Context, name VariableName) (*MariaDBVariable, error)
}

// VariableCatalog is an in-memory VariableMetadataStore.
type VariableCatalog map[VariableName]MariaDBVariable

func NewVariableCatalog(variables ...MariaDBVariable) VariableCatalog {
	c := make(VariableCatalog, len(variables))
	for _, v := range variables {
		c[v.Name] = v
	}

	return c
}

func (c VariableCatalog) GetMariaDBVariable(_ context.Context, name VariableName) (*MariaDBVariable, error) {
	v, ok := c[name]
	if !ok {
		return nil, ErrNotFound
	}

	return &v, nil
}
