package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/mariadb-varportal/internal/app/api/core/request"
	"github.com/h44z/mariadb-varportal/internal/app/api/core/respond"
	"github.com/h44z/mariadb-varportal/internal/app/api/v1/models"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

type ServerService interface {
	GetAllServers(ctx context.Context) ([]domain.DatabaseServer, error)
	GetServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error)
	CreateServer(ctx context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error)
	UpdateServer(ctx context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error)
	DeleteServer(ctx context.Context, id domain.ServerIdentifier) error
	ApplyServerOverrides(ctx context.Context, id domain.ServerIdentifier) (*domain.ApplyResult, error)

	GetServerOverrides(ctx context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error)
	CreateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error)
}

type ConfigFileService interface {
	GetServerConfig(ctx context.Context, id domain.ServerIdentifier) (io.Reader, error)
}

type ServerEndpoint struct {
	servers   ServerService
	cfgFiles  ConfigFileService
	validator Validator
}

func NewServerEndpoint(serverService ServerService, cfgFiles ConfigFileService, validator Validator) *ServerEndpoint {
	return &ServerEndpoint{
		servers:   serverService,
		cfgFiles:  cfgFiles,
		validator: validator,
	}
}

func (e ServerEndpoint) GetName() string {
	return "ServerEndpoint"
}

func (e ServerEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/server")

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /by-id/{id}", e.handleByIdGet())
	apiGroup.HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("PUT /by-id/{id}", e.handleUpdatePut())
	apiGroup.HandleFunc("DELETE /by-id/{id}", e.handleDelete())

	apiGroup.HandleFunc("GET /by-id/{id}/overrides", e.handleOverridesGet())
	apiGroup.HandleFunc("POST /by-id/{id}/overrides/new", e.handleOverrideCreatePost())
	apiGroup.HandleFunc("POST /by-id/{id}/apply", e.handleApplyPost())
	apiGroup.HandleFunc("GET /by-id/{id}/config", e.handleConfigGet())
}

// handleAllGet returns a gorm Handler function.
//
// @ID servers_handleAllGet
// @Tags Servers
// @Summary Get all database servers.
// @Produce json
// @Success 200 {object} []models.DatabaseServer
// @Failure 401 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/all [get]
// @Security BasicAuth
func (e ServerEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servers, err := e.servers.GetAllServers(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewDatabaseServers(servers))
	}
}

// handleByIdGet returns a gorm Handler function.
//
// @ID servers_handleByIdGet
// @Tags Servers
// @Summary Get a database server by its identifier.
// @Param id path string true "The server identifier."
// @Produce json
// @Success 200 {object} models.DatabaseServer
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id} [get]
// @Security BasicAuth
func (e ServerEndpoint) handleByIdGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		server, err := e.servers.GetServer(r.Context(), domain.ServerIdentifier(id))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewDatabaseServer(server))
	}
}

// handleCreatePost returns a gorm Handler function.
//
// @ID servers_handleCreatePost
// @Tags Servers
// @Summary Create a new database server.
// @Param request body models.DatabaseServer true "The server data."
// @Accept json
// @Produce json
// @Success 200 {object} models.DatabaseServer
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 409 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/new [post]
// @Security BasicAuth
func (e ServerEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.DatabaseServer
		if err := request.BodyJson(r, &body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if err := e.validator.Struct(body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}

		server, err := e.servers.CreateServer(r.Context(), models.NewDomainDatabaseServer(&body))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewDatabaseServer(server))
	}
}

// handleUpdatePut returns a gorm Handler function.
//
// @ID servers_handleUpdatePut
// @Tags Servers
// @Summary Update a database server. An empty Dsn keeps the stored connection string.
// @Param id path string true "The server identifier."
// @Param request body models.DatabaseServer true "The server data."
// @Accept json
// @Produce json
// @Success 200 {object} models.DatabaseServer
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id} [put]
// @Security BasicAuth
func (e ServerEndpoint) handleUpdatePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		var body models.DatabaseServer
		if err := request.BodyJson(r, &body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if err := e.validator.Struct(body); err != nil {
			respondBadRequest(w, err.Error())
			return
		}
		if body.Identifier != "" && body.Identifier != id {
			respondBadRequest(w, "server id mismatch")
			return
		}
		body.Identifier = id

		server, err := e.servers.UpdateServer(r.Context(), models.NewDomainDatabaseServer(&body))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewDatabaseServer(server))
	}
}

// handleDelete returns a gorm Handler function.
//
// @ID servers_handleDelete
// @Tags Servers
// @Summary Delete a database server and all of its overrides.
// @Param id path string true "The server identifier."
// @Produce json
// @Success 204 "No content if deletion was successful."
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id} [delete]
// @Security BasicAuth
func (e ServerEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		if err := e.servers.DeleteServer(r.Context(), domain.ServerIdentifier(id)); err != nil {
			respondServiceError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleOverridesGet returns a gorm Handler function.
//
// @ID servers_handleOverridesGet
// @Tags Overrides
// @Summary Get all variable overrides of a database server.
// @Param id path string true "The server identifier."
// @Produce json
// @Success 200 {object} []models.VariableOverride
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id}/overrides [get]
// @Security BasicAuth
func (e ServerEndpoint) handleOverridesGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		overrides, err := e.servers.GetServerOverrides(r.Context(), domain.ServerIdentifier(id))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewVariableOverrides(overrides))
	}
}

// handleOverrideCreatePost returns a gorm Handler function.
//
// @ID servers_handleOverrideCreatePost
// @Tags Overrides
// @Summary Create a new variable override for a database server.
// @Description The override is validated against the datatype of the variable. Each variable can only be
// @Description overridden once per server.
// @Param id path string true "The server identifier."
// @Param request body models.VariableOverride true "The override data."
// @Accept json
// @Produce json
// @Success 200 {object} models.VariableOverride
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 409 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id}/overrides/new [post]
// @Security BasicAuth
func (e ServerEndpoint) handleOverrideCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
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

		override := models.NewDomainVariableOverride(&body)
		override.Identifier = ""
		override.Parent = domain.ServerIdentifier(id)

		created, err := e.servers.CreateOverride(r.Context(), override)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewVariableOverride(created))
	}
}

// handleApplyPost returns a gorm Handler function.
//
// @ID servers_handleApplyPost
// @Tags Servers
// @Summary Apply all overrides to a database server.
// @Description Dynamic variables are changed at runtime, the option file is written if a config path is set.
// @Param id path string true "The server identifier."
// @Produce json
// @Success 200 {object} models.ApplyResult
// @Failure 400 {object} models.Error
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id}/apply [post]
// @Security BasicAuth
func (e ServerEndpoint) handleApplyPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		result, err := e.servers.ApplyServerOverrides(r.Context(), domain.ServerIdentifier(id))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewApplyResult(result))
	}
}

// handleConfigGet returns a gorm Handler function.
//
// @ID servers_handleConfigGet
// @Tags Servers
// @Summary Download the MariaDB option file of a database server.
// @Param id path string true "The server identifier."
// @Produce plain
// @Success 200 {string} string "The [mysqld] option file."
// @Failure 401 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /server/by-id/{id}/config [get]
// @Security BasicAuth
func (e ServerEndpoint) handleConfigGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		cfg, err := e.cfgFiles.GetServerConfig(r.Context(), domain.ServerIdentifier(id))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.AttachmentReader(w, http.StatusOK, id+".cnf", "text/plain", 0, cfg)
	}
}
