package handlers

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

var variableNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

var mariadbVariable validator.Func = func(fl validator.FieldLevel) bool {
	return variableNameRegex.MatchString(fl.Field().String())
}

var datatype validator.Func = func(fl validator.FieldLevel) bool {
	_, err := domain.ParseDatatype(fl.Field().String())
	return err == nil
}

var singleLine validator.Func = func(fl validator.FieldLevel) bool {
	return domain.IsSingleLine(fl.Field().String())
}

// NewValidator returns a request validator that knows the MariaDB specific tags
// mariadb_variable, datatype and single_line.
func NewValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("mariadb_variable", mariadbVariable); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("datatype", datatype); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation("single_line", singleLine); err != nil {
		return nil, err
	}

	return v, nil
}
