package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/mariadb-varportal/internal/app/api/core"
	"github.com/h44z/mariadb-varportal/internal/app/api/core/middleware/auth"
	"github.com/h44z/mariadb-varportal/internal/app/api/v1/models"
	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// --- Test fakes ---

type fakeService struct {
	catalog   domain.VariableCatalog
	servers   map[domain.ServerIdentifier]*domain.DatabaseServer
	overrides map[domain.OverrideIdentifier]*domain.VariableOverride
}

func newFakeService() *fakeService {
	return &fakeService{
		catalog: domain.NewVariableCatalog(
			domain.MariaDBVariable{Name: "innodb_buffer_pool_size", Datatype: domain.DatatypeInt, Dynamic: true},
			domain.MariaDBVariable{Name: "log_bin", Datatype: domain.DatatypeBool},
			domain.MariaDBVariable{Name: "character_set_server", Datatype: domain.DatatypeStr},
		),
		servers: map[domain.ServerIdentifier]*domain.DatabaseServer{
			"srv-1": {Identifier: "srv-1", DisplayName: "primary", Dsn: "root:secret@tcp(db1:3306)/"},
		},
		overrides: map[domain.OverrideIdentifier]*domain.VariableOverride{},
	}
}

func (f *fakeService) GetAllVariables(_ context.Context) ([]domain.MariaDBVariable, error) {
	var result []domain.MariaDBVariable
	for _, v := range f.catalog {
		result = append(result, v)
	}
	return result, nil
}
func (f *fakeService) GetVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error) {
	return f.catalog.GetMariaDBVariable(ctx, name)
}
func (f *fakeService) SaveVariable(_ context.Context, v *domain.MariaDBVariable) (*domain.MariaDBVariable, error) {
	f.catalog[v.Name] = *v
	return v, nil
}
func (f *fakeService) DeleteVariable(_ context.Context, name domain.VariableName) error {
	if _, ok := f.catalog[name]; !ok {
		return domain.ErrNotFound
	}
	delete(f.catalog, name)
	return nil
}

func (f *fakeService) GetAllServers(_ context.Context) ([]domain.DatabaseServer, error) {
	var result []domain.DatabaseServer
	for _, s := range f.servers {
		result = append(result, *s)
	}
	return result, nil
}
func (f *fakeService) GetServer(_ context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error) {
	s, ok := f.servers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}
func (f *fakeService) CreateServer(_ context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error) {
	if s.Identifier == "" {
		s.Identifier = "srv-new"
	}
	if _, ok := f.servers[s.Identifier]; ok {
		return nil, domain.ErrNotUnique
	}
	f.servers[s.Identifier] = s
	return s, nil
}
func (f *fakeService) UpdateServer(_ context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error) {
	if _, ok := f.servers[s.Identifier]; !ok {
		return nil, domain.ErrNotFound
	}
	f.servers[s.Identifier] = s
	return s, nil
}
func (f *fakeService) DeleteServer(_ context.Context, id domain.ServerIdentifier) error {
	delete(f.servers, id)
	return nil
}
func (f *fakeService) ApplyServerOverrides(_ context.Context, id domain.ServerIdentifier) (*domain.ApplyResult, error) {
	return &domain.ApplyResult{
		Server:         id,
		Applied:        []domain.VariableName{"innodb_buffer_pool_size"},
		PendingRestart: []domain.VariableName{},
		Skipped:        []domain.VariableName{"log_bin"},
		ConfigWritten:  true,
	}, nil
}
func (f *fakeService) GetServerOverrides(_ context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error) {
	var result []domain.VariableOverride
	for _, o := range f.overrides {
		if o.Parent == id {
			result = append(result, *o)
		}
	}
	return result, nil
}
func (f *fakeService) CreateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error) {
	if err := o.Validate(ctx, f.catalog); err != nil {
		return nil, err
	}
	for _, existing := range f.overrides {
		if existing.Parent == o.Parent && existing.MariaDBVariable == o.MariaDBVariable {
			return nil, domain.ErrNotUnique
		}
	}
	o.Identifier = domain.OverrideIdentifier("o-" + string(o.MariaDBVariable))
	f.overrides[o.Identifier] = o
	return o, nil
}
func (f *fakeService) GetOverride(_ context.Context, id domain.OverrideIdentifier) (*domain.VariableOverride, error) {
	o, ok := f.overrides[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}
func (f *fakeService) UpdateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error) {
	existing, ok := f.overrides[o.Identifier]
	if !ok {
		return nil, domain.ErrNotFound
	}
	candidate := *existing
	candidate.CopyValues(o)
	if err := candidate.Validate(ctx, f.catalog); err != nil {
		return nil, err
	}
	f.overrides[o.Identifier] = &candidate
	return &candidate, nil
}
func (f *fakeService) DeleteOverride(_ context.Context, id domain.OverrideIdentifier) error {
	if _, ok := f.overrides[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.overrides, id)
	return nil
}

func (f *fakeService) GetServerConfig(_ context.Context, id domain.ServerIdentifier) (io.Reader, error) {
	if _, ok := f.servers[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return strings.NewReader("[mysqld]\ninnodb_buffer_pool_size = 134217728\n"), nil
}

func (f *fakeService) GetAll(ctx context.Context) ([]domain.AuditEntry, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}
	return []domain.AuditEntry{{UniqueId: 1, Origin: "override-change", Server: "srv-1", Message: "created"}}, nil
}
func (f *fakeService) GetServerEntries(ctx context.Context, id domain.ServerIdentifier) ([]domain.AuditEntry, error) {
	entries, err := f.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var result []domain.AuditEntry
	for _, e := range entries {
		if e.Server == id {
			result = append(result, e)
		}
	}
	return result, nil
}

// --- Test helpers ---

func newTestApi(t *testing.T) (http.Handler, *fakeService) {
	t.Helper()

	svc := newFakeService()
	v, err := NewValidator()
	require.NoError(t, err)
	authenticator, err := auth.New("admin", "secret")
	require.NoError(t, err)

	srv, err := core.NewServer(&config.Config{}, NewRestApi(authenticator,
		NewVariableEndpoint(svc, v),
		NewServerEndpoint(svc, svc, v),
		NewOverrideEndpoint(svc, v),
		NewAuditEndpoint(svc),
	))
	require.NoError(t, err)

	return srv.Handler(), svc
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.Error {
	t.Helper()

	var e models.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

// --- Tests ---

func TestApi_RequiresAuthentication(t *testing.T) {
	h, _ := newTestApi(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/server/all", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApi_CreateOverride(t *testing.T) {
	h, svc := newTestApi(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new",
		`{"MariaDBVariable":"innodb_buffer_pool_size","ValueInt":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out models.VariableOverride
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "srv-1", out.Parent)
	assert.Equal(t, "value_int", out.ValueField)
	assert.EqualValues(t, 1048576, out.Value)
	assert.Len(t, svc.overrides, 1)

	// same variable, same server
	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new",
		`{"MariaDBVariable":"innodb_buffer_pool_size","ValueInt":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApi_CreateOverride_Invalid(t *testing.T) {
	h, svc := newTestApi(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "two values",
			body:    `{"MariaDBVariable":"innodb_buffer_pool_size","ValueInt":1,"ValueBool":true}`,
			message: "only one value can be set for MariaDB system variable innodb_buffer_pool_size",
		},
		{
			name:    "wrong datatype",
			body:    `{"MariaDBVariable":"innodb_buffer_pool_size","ValueStr":"128M"}`,
			message: "value field for innodb_buffer_pool_size must be value_int",
		},
		{
			name:    "skip string variable",
			body:    `{"MariaDBVariable":"character_set_server","Skip":true}`,
			message: "only boolean variables can be skipped, character_set_server is not a boolean variable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Message)
		})
	}
	assert.Empty(t, svc.overrides)
}

func TestApi_CreateOverride_RequestValidation(t *testing.T) {
	h, _ := newTestApi(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new", `{"ValueInt":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new",
		`{"MariaDBVariable":"drop table; --","ValueInt":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new", `{"Bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new",
		`{"MariaDBVariable":"character_set_server","ValueStr":"utf8mb4\ninit_file = /tmp/init.sql"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new",
		`{"MariaDBVariable":"innodb_buffer_pool_size","ValueInt":8796093022208}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/overrides/new",
		`{"MariaDBVariable":"innodb_buffer_pool_size","ValueInt":8796093022207}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestApi_UpdateAndDeleteOverride(t *testing.T) {
	h, svc := newTestApi(t)
	svc.overrides["o-1"] = &domain.VariableOverride{
		Identifier: "o-1", MariaDBVariable: "log_bin", Parent: "srv-1", ValueBool: true,
	}

	rec := doRequest(t, h, http.MethodPut, "/api/v1/override/by-id/o-1", `{"MariaDBVariable":"log_bin","Skip":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, svc.overrides["o-1"].Skip)
	assert.False(t, svc.overrides["o-1"].ValueBool)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/override/by-id/o-1",
		`{"Identifier":"o-2","MariaDBVariable":"log_bin","Skip":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/override/by-id/o-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/override/by-id/o-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApi_Servers(t *testing.T) {
	h, svc := newTestApi(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/server/by-id/srv-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), `"HasDsn":true`)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/new", `{"DisplayName":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/new", `{"DisplayName":"replica\n[client]"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/new", `{"DisplayName":"replica"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.servers, 2)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/server/new", `{"Identifier":"srv-1","DisplayName":"dup"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/server/by-id/srv-404", `{"DisplayName":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApi_ApplyAndConfig(t *testing.T) {
	h, _ := newTestApi(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/server/by-id/srv-1/apply", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"Server":"srv-1",
		"Applied":["innodb_buffer_pool_size"],
		"PendingRestart":[],
		"Skipped":["log_bin"],
		"ConfigWritten":true
	}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/api/v1/server/by-id/srv-1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="srv-1.cnf"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "[mysqld]")

	rec = doRequest(t, h, http.MethodGet, "/api/v1/server/by-id/srv-404/config", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApi_Variables(t *testing.T) {
	h, svc := newTestApi(t)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/variable/by-name/max_connections",
		`{"Datatype":"Int","Dynamic":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.DatatypeInt, svc.catalog["max_connections"].Datatype)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/variable/by-name/max_connections", `{"Datatype":"float"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/variable/by-name/max_connections",
		`{"Name":"other","Datatype":"int"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/variable/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.MariaDBVariable
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, 4)

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/variable/by-name/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApi_Audit(t *testing.T) {
	h, _ := newTestApi(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/audit/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Origin":"override-change"`)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/audit/by-server/srv-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Server":"srv-1"`)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/audit/by-server/srv-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestParseServiceError(t *testing.T) {
	code, body := ParseServiceError(domain.NewValidationError("log_bin", "value for %s must be bool", "log_bin"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "value for log_bin must be bool", body.Message)

	code, _ = ParseServiceError(domain.ErrNoPermission)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ParseServiceError(nil)
	assert.Equal(t, http.StatusInternalServerError, code)
}
