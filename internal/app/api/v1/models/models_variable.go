package models

import (
	"time"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

// MariaDBVariable is an entry of the MariaDB system variable catalog.
type MariaDBVariable struct {
	// Name is the name of the system variable, as listed in the MariaDB server documentation.
	Name string `json:"Name" example:"innodb_buffer_pool_size" validate:"required,max=128,mariadb_variable"`
	// Datatype is one of int, bool or str. Integer overrides are given in megabytes.
	Datatype string `json:"Datatype" example:"int" validate:"required,datatype"`
	// Dynamic is true if the variable can be changed at runtime with SET GLOBAL.
	Dynamic bool `json:"Dynamic" example:"true"`
	// DocSection is the section of the MariaDB documentation that describes the variable.
	DocSection string `json:"DocSection,omitempty" example:"innodb-system-variables" validate:"omitempty,max=128"`
	// Description is a short human-readable description of the variable.
	Description string `json:"Description,omitempty" validate:"omitempty,max=512"`

	CreatedAt time.Time `json:"CreatedAt" readonly:"true"`
	UpdatedAt time.Time `json:"UpdatedAt" readonly:"true"`
}

func NewMariaDBVariable(src *domain.MariaDBVariable) *MariaDBVariable {
	return &MariaDBVariable{
		Name:        string(src.Name),
		Datatype:    string(src.Datatype),
		Dynamic:     src.Dynamic,
		DocSection:  src.DocSection,
		Description: src.Description,
		CreatedAt:   src.CreatedAt,
		UpdatedAt:   src.UpdatedAt,
	}
}

func NewMariaDBVariables(src []domain.MariaDBVariable) []MariaDBVariable {
	results := make([]MariaDBVariable, len(src))
	for i := range src {
		results[i] = *NewMariaDBVariable(&src[i])
	}

	return results
}

func NewDomainMariaDBVariable(src *MariaDBVariable) *domain.MariaDBVariable {
	return &domain.MariaDBVariable{
		Name:        domain.VariableName(src.Name),
		Datatype:    domain.Datatype(src.Datatype).Normalized(),
		Dynamic:     src.Dynamic,
		DocSection:  src.DocSection,
		Description: src.Description,
	}
}
