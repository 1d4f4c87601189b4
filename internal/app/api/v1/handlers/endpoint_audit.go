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

type AuditService interface {
	// GetAll returns all audit entries ordered by timestamp. Newest first.
	GetAll(ctx context.Context) ([]domain.AuditEntry, error)
	// GetServerEntries returns the audit entries of one server. Newest first.
	GetServerEntries(ctx context.Context, id domain.ServerIdentifier) ([]domain.AuditEntry, error)
}

type AuditEndpoint struct {
	audit AuditService
}

func NewAuditEndpoint(auditService AuditService) *AuditEndpoint {
	return &AuditEndpoint{
		audit: auditService,
	}
}

func (e AuditEndpoint) GetName() string {
	return "AuditEndpoint"
}

func (e AuditEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/audit")

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /by-server/{id}", e.handleByServerGet())
}

// handleAllGet returns a gorm Handler function.
//
// @ID audit_handleAllGet
// @Tags Audit
// @Summary Get all audit entries. Ordered by timestamp, newest first.
// @Produce json
// @Success 200 {object} []models.AuditEntry
// @Failure 401 {object} models.Error
// @Failure 403 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /audit/all [get]
// @Security BasicAuth
func (e AuditEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.audit.GetAll(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewAuditEntries(entries))
	}
}

// handleByServerGet returns a gorm Handler function.
//
// @ID audit_handleByServerGet
// @Tags Audit
// @Summary Get the audit entries of a database server. Ordered by timestamp, newest first.
// @Param id path string true "The server identifier."
// @Produce json
// @Success 200 {object} []models.AuditEntry
// @Failure 401 {object} models.Error
// @Failure 403 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /audit/by-server/{id} [get]
// @Security BasicAuth
func (e AuditEndpoint) handleByServerGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respondBadRequest(w, "missing server id")
			return
		}

		entries, err := e.audit.GetServerEntries(r.Context(), domain.ServerIdentifier(id))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewAuditEntries(entries))
	}
}
