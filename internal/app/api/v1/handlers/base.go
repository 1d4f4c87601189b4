package handlers

import (
	"errors"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/mariadb-varportal/internal/app/api/core"
	"github.com/h44z/mariadb-varportal/internal/app/api/core/respond"
	"github.com/h44z/mariadb-varportal/internal/app/api/v1/models"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes for the handler.
	RegisterRoutes(g *routegroup.Bundle)
}

// @title MariaDB Variable Portal API
// @version 1.0
// @description The REST API manages MariaDB system variable overrides of database servers.
// @description Overrides are validated against the variable catalog and can be applied at runtime
// @description or rendered to MariaDB option files.

// @securityDefinitions.basic BasicAuth

// @BasePath /api/v1

func NewRestApi(authenticator Authenticator, handlers ...Handler) core.ApiEndpointSetupFunc {
	return func() (core.ApiVersion, core.GroupSetupFn) {
		return "v1", func(group *routegroup.Bundle) {
			group.Use(authenticator.Handler)

			// Handler functions
			for _, h := range handlers {
				h.RegisterRoutes(group)
			}
		}
	}
}

func ParseServiceError(err error) (int, models.Error) {
	if err == nil {
		return 500, models.Error{
			Code:    500,
			Message: "unknown server error",
		}
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrNoPermission):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNotUnique):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidData):
		code = http.StatusBadRequest
	}

	return code, models.Error{
		Code:    code,
		Message: err.Error(),
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	code, body := ParseServiceError(err)
	respond.JSON(w, code, body)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respond.JSON(w, http.StatusBadRequest, models.Error{Code: http.StatusBadRequest, Message: message})
}

// region handler-interfaces

type Authenticator interface {
	// Handler rejects unauthenticated requests and stores the user info in the request context.
	Handler(next http.Handler) http.Handler
}

type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

// endregion handler-interfaces
