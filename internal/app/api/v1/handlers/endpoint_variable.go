package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/mariadb-varportal/internal/app/api/core/request"
	"github.com/h44z/mariadb-varportal/internal/app/api/core/respond"
	"github.com/h44z/mariadb-varportal/internal/app/api/v1/models"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

type VariableService interface {
	GetAllVariables(ctx context.Context) ([]domain.MariaDBVariable, error)
	GetVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error)
	SaveVariable(ctx context.Context, v *domain.MariaDBVariable) (*domain.MariaDBVariable, error)
	DeleteVariable(ctx context.Context, name domain.VariableName) error
}

type VariableEndpoint struct {
	variables VariableService
	validator Validator
}

func NewVariableEndpoint(variableService VariableService, validator Validator) *VariableEndpoint {
	return &VariableEndpoint{
		variables: variableService,
		validator: validator,
	}
}

func (e VariableEndpoint) GetName() string {
	return "VariableEndpoint"
}

func (e VariableEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/variable")

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /by-name/{name}", e.handleByNameGet())
	apiGroup.HandleFunc("PUT /by-name/{name}", e.handleByNamePut())
	apiGroup.HandleFunc("DELETE /by-name/{name}", e.handleByNameDelete())
}

// handleAllGet returns a gorm Handler function.
//
// @ID variables_handleAllGet
// @Tags Variables
// @Summary Get all MariaDB system variables of the catalog.
// @Produce json
// @Success 200 {object} []models.MariaDBVariable
// @Failure 401 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /variable/all [get]
// @Security BasicAuth
func (e VariableEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variables, err := e.variables.GetAllVariables(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewMariaDBVariables(variables))
	}
}

// handleByNameGet returns a gorm Handler function.
//
// @ID variables_handleByNameGet
// @Tags Variables
// @Summary Get a MariaDB system variable by its name.
// @Param name path string true "The variable name."
// @Produce json
// @Success 200 {object} models.MariaDBVariable
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /variable/by-name/{name} [get]
// @Security BasicAuth
func (e VariableEndpoint) handleByNameGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := request.Path(r, "name")
		if name == "" {
			respondBadRequest(w, "missing variable name")
			return
		}

		variable, err := e.variables.GetVariable(r.Context(), domain.VariableName(name))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewMariaDBVariable(variable))
	}
}

// handleByNamePut returns a gorm Handler function.
//
// @ID variables_handleByNamePut
// @Tags Variables
// @Summary Create or update a MariaDB system variable of the catalog.
// @Description The datatype of a variable cannot change while overrides reference it.
// @Param name path string true "The variable name."
// @Param request body models.MariaDBVariable true "The variable data."
// @Accept json
// @Produce json
// @Success 200 {object} models.MariaDBVariable
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /variable/by-name/{name} [put]
// @Security BasicAuth
func (e VariableEndpoint) handleByNamePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := request.Path(r, "name")
		if name == "" {
			respondBadRequest(w, "missing variable name")
			return
		}

		var body models.MariaDBVariable
		if err := request.BodyJson(r, &body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if body.Name == "" {
			body.Name = name
		}
		if err := e.validator.Struct(body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if body.Name != name {
			respondBadRequest(w, "variable name mismatch")
			return
		}

		variable, err := e.variables.SaveVariable(r.Context(), models.NewDomainMariaDBVariable(&body))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewMariaDBVariable(variable))
	}
}

// handleByNameDelete returns a gorm Handler function.
//
// @ID variables_handleByNameDelete
// @Tags Variables
// @Summary Delete a MariaDB system variable from the catalog.
// @Description Variables that are referenced by overrides cannot be deleted.
// @Param name path string true "The variable name."
// @Produce json
// @Success 204 "No content if deletion was successful."
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /variable/by-name/{name} [delete]
// @Security BasicAuth
func (e VariableEndpoint) handleByNameDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := request.Path(r, "name")
		if name == "" {
			respondBadRequest(w, "missing variable name")
			return
		}

		if err := e.variables.DeleteVariable(r.Context(), domain.VariableName(name)); err != nil {
			respondServiceError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
