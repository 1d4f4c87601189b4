package variables

import (
	"context"
	"sort"
	"sync"

	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// --- Test mocks ---

type publishedEvent struct {
	topic string
	args  []any
}

type mockBus struct {
	mux    sync.Mutex
	events []publishedEvent
}

func (f *mockBus) Publish(topic string, args ...any) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, args: args})
}

func (f *mockBus) topics() []string {
	f.mux.Lock()
	defer f.mux.Unlock()
	topics := make([]string, 0, len(f.events))
	for _, e := range f.events {
		topics = append(topics, e.topic)
	}
	return topics
}

type mockDB struct {
	variables map[domain.VariableName]domain.MariaDBVariable
	servers   map[domain.ServerIdentifier]domain.DatabaseServer
	overrides map[domain.OverrideIdentifier]domain.VariableOverride
}

func newMockDB() *mockDB {
	return &mockDB{
		variables: map[domain.VariableName]domain.MariaDBVariable{
			"innodb_buffer_pool_size": {Name: "innodb_buffer_pool_size", Datatype: domain.DatatypeInt, Dynamic: true},
			"innodb_log_file_size":    {Name: "innodb_log_file_size", Datatype: domain.DatatypeInt},
			"log_bin":                 {Name: "log_bin", Datatype: domain.DatatypeBool},
			"slow_query_log":          {Name: "slow_query_log", Datatype: domain.DatatypeBool, Dynamic: true},
			"character_set_server":    {Name: "character_set_server", Datatype: domain.DatatypeStr, Dynamic: true},
		},
		servers: map[domain.ServerIdentifier]domain.DatabaseServer{
			"srv-1": {Identifier: "srv-1", DisplayName: "primary", Dsn: "root:secret@tcp(db1:3306)/"},
		},
		overrides: map[domain.OverrideIdentifier]domain.VariableOverride{},
	}
}

func (f *mockDB) GetMariaDBVariable(_ context.Context, name domain.VariableName) (*domain.MariaDBVariable, error) {
	v, ok := f.variables[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}
func (f *mockDB) GetAllMariaDBVariables(_ context.Context) ([]domain.MariaDBVariable, error) {
	variables := make([]domain.MariaDBVariable, 0, len(f.variables))
	for _, v := range f.variables {
		variables = append(variables, v)
	}
	sort.Slice(variables, func(i, j int) bool { return variables[i].Name < variables[j].Name })
	return variables, nil
}
func (f *mockDB) SaveMariaDBVariable(
	_ context.Context,
	name domain.VariableName,
	updateFunc func(v *domain.MariaDBVariable) (*domain.MariaDBVariable, error),
) error {
	v, ok := f.variables[name]
	if !ok {
		v = domain.MariaDBVariable{Name: name}
	}
	updated, err := updateFunc(&v)
	if err != nil {
		return err
	}
	f.variables[name] = *updated
	return nil
}
func (f *mockDB) DeleteMariaDBVariable(_ context.Context, name domain.VariableName) error {
	delete(f.variables, name)
	return nil
}
func (f *mockDB) CountVariableOverridesOf(_ context.Context, name domain.VariableName) (int64, error) {
	var count int64
	for _, o := range f.overrides {
		if o.MariaDBVariable == name {
			count++
		}
	}
	return count, nil
}

func (f *mockDB) GetDatabaseServer(_ context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error) {
	s, ok := f.servers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}
func (f *mockDB) GetAllDatabaseServers(_ context.Context) ([]domain.DatabaseServer, error) {
	servers := make([]domain.DatabaseServer, 0, len(f.servers))
	for _, s := range f.servers {
		servers = append(servers, s)
	}
	return servers, nil
}
func (f *mockDB) SaveDatabaseServer(
	_ context.Context,
	id domain.ServerIdentifier,
	updateFunc func(s *domain.DatabaseServer) (*domain.DatabaseServer, error),
) error {
	s, ok := f.servers[id]
	if !ok {
		s = domain.DatabaseServer{Identifier: id}
	}
	updated, err := updateFunc(&s)
	if err != nil {
		return err
	}
	f.servers[id] = *updated
	return nil
}
func (f *mockDB) DeleteDatabaseServer(_ context.Context, id domain.ServerIdentifier) error {
	for oid, o := range f.overrides {
		if o.Parent == id {
			delete(f.overrides, oid)
		}
	}
	delete(f.servers, id)
	return nil
}

func (f *mockDB) GetVariableOverride(_ context.Context, id domain.OverrideIdentifier) (*domain.VariableOverride, error) {
	o, ok := f.overrides[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}
func (f *mockDB) GetServerOverrides(_ context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error) {
	var overrides []domain.VariableOverride
	for _, o := range f.overrides {
		if o.Parent == id {
			overrides = append(overrides, o)
		}
	}
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].MariaDBVariable < overrides[j].MariaDBVariable })
	return overrides, nil
}
func (f *mockDB) isDuplicate(o *domain.VariableOverride) bool {
	for _, existing := range f.overrides {
		if existing.Identifier != o.Identifier &&
			existing.Parent == o.Parent &&
			existing.MariaDBVariable == o.MariaDBVariable {
			return true
		}
	}
	return false
}
func (f *mockDB) CreateVariableOverride(_ context.Context, o *domain.VariableOverride) error {
	if f.isDuplicate(o) {
		return domain.ErrNotUnique
	}
	f.overrides[o.Identifier] = *o
	return nil
}
func (f *mockDB) SaveVariableOverride(
	_ context.Context,
	id domain.OverrideIdentifier,
	updateFunc func(o *domain.VariableOverride) (*domain.VariableOverride, error),
) error {
	o, ok := f.overrides[id]
	if !ok {
		return domain.ErrNotFound
	}
	updated, err := updateFunc(&o)
	if err != nil {
		return err
	}
	if f.isDuplicate(updated) {
		return domain.ErrNotUnique
	}
	f.overrides[id] = *updated
	return nil
}
func (f *mockDB) DeleteVariableOverride(_ context.Context, id domain.OverrideIdentifier) error {
	delete(f.overrides, id)
	return nil
}

type mockController struct {
	err         error
	assignments []domain.VariableAssignment
}

func (f *mockController) SetGlobalVariables(
	_ context.Context,
	_ *domain.DatabaseServer,
	assignments []domain.VariableAssignment,
) error {
	if f.err != nil {
		return f.err
	}
	f.assignments = append(f.assignments, assignments...)
	return nil
}

type mockPersister struct {
	written []domain.ServerIdentifier
}

func (f *mockPersister) PersistServerConfig(_ context.Context, id domain.ServerIdentifier) (bool, error) {
	f.written = append(f.written, id)
	return true, nil
}

type testEnv struct {
	manager    *Manager
	db         *mockDB
	bus        *mockBus
	controller *mockController
	persister  *mockPersister
}

func newTestEnv() testEnv {
	env := testEnv{
		db:         newMockDB(),
		bus:        &mockBus{},
		controller: &mockController{},
		persister:  &mockPersister{},
	}
	env.manager, _ = NewManager(&config.Config{}, env.bus, env.db, env.controller, env.persister)
	return env
}

func adminCtx() context.Context {
	return domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())
}
