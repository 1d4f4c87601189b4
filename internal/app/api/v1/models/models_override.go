package models

import (
	"time"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

// VariableOverride sets a MariaDB system variable for one server.
// At most one of ValueInt, ValueBool and ValueStr may be set.
type VariableOverride struct {
	// Identifier is the unique identifier of the override. It is generated on creation.
	Identifier string `json:"Identifier" readonly:"true"`
	// MariaDBVariable is the name of the overridden system variable.
	MariaDBVariable string `json:"MariaDBVariable" example:"innodb_buffer_pool_size" validate:"required,max=128,mariadb_variable"`
	// Parent is the identifier of the server that owns the override.
	Parent string `json:"Parent" readonly:"true"`

	// ValueInt is the value of integer variables, in megabytes.
	ValueInt int64 `json:"ValueInt,omitempty" example:"128" validate:"min=-8796093022207,max=8796093022207"`
	// ValueBool is the value of boolean variables.
	ValueBool bool `json:"ValueBool,omitempty"`
	// ValueStr is the value of string variables.
	ValueStr string `json:"ValueStr,omitempty" validate:"omitempty,max=4096,single_line"`
	// Skip writes skip-<name> to the option file. Only boolean variables can be skipped.
	Skip bool `json:"Skip"`

	// ValueField is the name of the populated value field.
	ValueField string `json:"ValueField,omitempty" readonly:"true" example:"value_int"`
	// Value is the effective value, integers are converted to bytes.
	Value any `json:"Value" readonly:"true" example:"134217728"`

	CreatedAt time.Time `json:"CreatedAt" readonly:"true"`
	UpdatedAt time.Time `json:"UpdatedAt" readonly:"true"`
}

func NewVariableOverride(src *domain.VariableOverride) *VariableOverride {
	return &VariableOverride{
		Identifier:      string(src.Identifier),
		MariaDBVariable: string(src.MariaDBVariable),
		Parent:          string(src.Parent),
		ValueInt:        src.ValueInt,
		ValueBool:       src.ValueBool,
		ValueStr:        src.ValueStr,
		Skip:            src.Skip,
		ValueField:      src.ValueField(),
		Value:           src.Value().Any(),
		CreatedAt:       src.CreatedAt,
		UpdatedAt:       src.UpdatedAt,
	}
}

func NewVariableOverrides(src []domain.VariableOverride) []VariableOverride {
	results := make([]VariableOverride, len(src))
	for i := range src {
		results[i] = *NewVariableOverride(&src[i])
	}

	return results
}

func NewDomainVariableOverride(src *VariableOverride) *domain.VariableOverride {
	return &domain.VariableOverride{
		Identifier:      domain.OverrideIdentifier(src.Identifier),
		MariaDBVariable: domain.VariableName(src.MariaDBVariable),
		Parent:          domain.ServerIdentifier(src.Parent),
		ValueInt:        src.ValueInt,
		ValueBool:       src.ValueBool,
		ValueStr:        src.ValueStr,
		Skip:            src.Skip,
	}
}
