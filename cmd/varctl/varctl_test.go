package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// --- Test mocks ---

type mockStore struct {
	catalog   domain.VariableCatalog
	server    *domain.DatabaseServer
	overrides []domain.VariableOverride
}

func (f *mockStore) GetAllMariaDBVariables(_ context.Context) ([]domain.MariaDBVariable, error) {
	return []domain.MariaDBVariable{
		f.catalog["innodb_buffer_pool_size"],
		f.catalog["log_bin"],
		f.catalog["character_set_server"],
	}, nil
}
func (f *mockStore) GetMariaDBVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error) {
	return f.catalog.GetMariaDBVariable(ctx, name)
}
func (f *mockStore) GetDatabaseServer(_ context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error) {
	if f.server == nil || f.server.Identifier != id {
		return nil, domain.ErrNotFound
	}
	return f.server, nil
}
func (f *mockStore) GetServerOverrides(_ context.Context, _ domain.ServerIdentifier) ([]domain.VariableOverride, error) {
	return f.overrides, nil
}

func newMockStore() *mockStore {
	return &mockStore{
		catalog: domain.NewVariableCatalog(
			domain.MariaDBVariable{Name: "innodb_buffer_pool_size", Datatype: domain.DatatypeInt, Dynamic: true,
				Description: "Size of the InnoDB buffer pool"},
			domain.MariaDBVariable{Name: "log_bin", Datatype: domain.DatatypeBool},
			domain.MariaDBVariable{Name: "character_set_server", Datatype: domain.DatatypeStr, Dynamic: true},
		),
		server: &domain.DatabaseServer{Identifier: "srv-1", DisplayName: "primary"},
		overrides: []domain.VariableOverride{
			{Identifier: "o-1", MariaDBVariable: "innodb_buffer_pool_size", Parent: "srv-1", ValueInt: 128},
			{Identifier: "o-2", MariaDBVariable: "log_bin", Parent: "srv-1", Skip: true},
		},
	}
}

// runCommand executes varctl with the given arguments and without a config file.
func runCommand(t *testing.T, db store, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var connects int
	root := newRootCommand(func(_ *config.Config) (store, error) {
		connects++
		return db, nil
	})

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))

	err := root.ExecuteContext(context.Background())
	assert.LessOrEqual(t, connects, 1)

	return out.String(), err
}

// --- Tests ---

func TestVariablesList(t *testing.T) {
	out, err := runCommand(t, newMockStore(), "variables", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "innodb_buffer_pool_size")
	assert.Contains(t, out, "Size of the InnoDB buffer pool")
	assert.Contains(t, out, "character_set_server")
	assert.Contains(t, out, "Datatype")
}

func TestOverridesValidate(t *testing.T) {
	db := newMockStore()

	out, err := runCommand(t, db, "overrides", "validate", "srv-1")
	require.NoError(t, err)
	assert.Contains(t, out, "OK     innodb_buffer_pool_size = 134217728")
	assert.Contains(t, out, "OK     log_bin (skipped)")

	db.overrides = append(db.overrides, domain.VariableOverride{
		Identifier: "o-3", MariaDBVariable: "character_set_server", Parent: "srv-1", Skip: true,
	})

	out, err = runCommand(t, db, "overrides", "validate", "srv-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 overrides of server srv-1 are invalid")
	assert.Contains(t, out,
		"FAIL   character_set_server: only boolean variables can be skipped, character_set_server is not a boolean variable")
}

func TestOverridesValidate_UnknownServer(t *testing.T) {
	_, err := runCommand(t, newMockStore(), "overrides", "validate", "srv-404")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigRender(t *testing.T) {
	out, err := runCommand(t, newMockStore(), "config", "render", "srv-1")
	require.NoError(t, err)

	assert.Contains(t, out, "[mysqld]\n")
	assert.Contains(t, out, "\ninnodb_buffer_pool_size = 134217728\n")
	assert.Contains(t, out, "\nskip-log-bin")
}

func TestConfigRender_Output(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf.d", "varportal.cnf")

	out, err := runCommand(t, newMockStore(), "config", "render", "srv-1", "--output", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "innodb_buffer_pool_size = 134217728")
}

func TestDefaultHealthUrl(t *testing.T) {
	assert.Equal(t, "http://localhost:8888/api", defaultHealthUrl(":8888"))
	assert.Equal(t, "http://127.0.0.1:9000/api", defaultHealthUrl("127.0.0.1:9000"))
	assert.Equal(t, "http://localhost:8888/api", defaultHealthUrl("invalid"))
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"Name":"mariadb-varportal","Version":"dev","Versions":["v1"]}`))
	}))
	defer srv.Close()

	out, err := runCommand(t, nil, "health", srv.URL+"/api")
	require.NoError(t, err)
	assert.Equal(t, "mariadb-varportal dev is healthy\n", out)

	_, err = runCommand(t, nil, "health", srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned status 404")
}
