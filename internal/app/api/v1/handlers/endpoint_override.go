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

type OverrideService interface {
	GetOverride(ctx context.Context, id domain.OverrideIdentifier) (*domain.VariableOverride, error)
	UpdateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error)
	DeleteOverride(ctx context.Context, id domain.OverrideIdentifier) error
}

type OverrideEndpoint struct {
	overrides OverrideService
	validator Validator
}

func NewOverrideEndpoint(overrideService OverrideService, validator Validator) *OverrideEndpoint {
	return &OverrideEndpoint{
		overrides: overrideService,
		validator: validator,
	}
}

func (e OverrideEndpoint) GetName() string {
	return "OverrideEndpoint"
}

func (e OverrideEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/override")

	apiGroup.HandleFunc("GET /by-id/{id}", e.handleByIdGet())
	apiGroup.HandleFunc("PUT /by-id/{id}", e.handleUpdatePut())
	apiGroup.HandleFunc("DELETE /by-id/{id}", e.handleDelete())
}

// handleByIdGet returns a gorm Handler function.
//
// @ID overrides_handleByIdGet
// @Tags Overrides
// @Summary Get a variable override by its identifier.
// @Param id path string true "The override identifier."
// @Produce json
// @Success 200 {object} models.VariableOverride
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /override/by-id/{id} [get]
// @Security BasicAuth
func (e OverrideEndpoint) handleByIdGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing override id")
			return
		}

		override, err := e.overrides.GetOverride(r.Context(), domain.OverrideIdentifier(id))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewVariableOverride(override))
	}
}

// handleUpdatePut returns a gorm Handler function.
//
// @ID overrides_handleUpdatePut
// @Tags Overrides
// @Summary Update a variable override. The owning server cannot be changed.
// @Param id path string true "The override identifier."
// @Param request body models.VariableOverride true "The override data."
// @Accept json
// @Produce json
// @Success 200 {object} models.VariableOverride
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 409 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /override/by-id/{id} [put]
// @Security BasicAuth
func (e OverrideEndpoint) handleUpdatePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing override id")
			return
		}

		var body models.VariableOverride
		if err := request.BodyJson(r, &body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if err := e.validator.Struct(body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if body.Identifier != "" && body.Identifier != id {
			respondBadRequest(w, "override id mismatch")
			return
		}

		override := models.NewDomainVariableOverride(&body)
		override.Identifier = domain.OverrideIdentifier(id)

		updated, err := e.overrides.UpdateOverride(r.Context(), override)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewVariableOverride(updated))
	}
}

// handleDelete returns a gorm Handler function.
//
// @ID overrides_handleDelete
// @Tags Overrides
// @Summary Delete a variable override.
// @Param id path string true "The override identifier."
// @Produce json
// @Success 204 "No content if deletion was successful."
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /override/by-id/{id} [delete]
// @Security BasicAuth
func (e OverrideEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing override id")
			return
		}

		if err := e.overrides.DeleteOverride(r.Context(), domain.OverrideIdentifier(id)); err != nil {
			respondServiceError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
