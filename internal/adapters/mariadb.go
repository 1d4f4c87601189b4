package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/h44z/mariadb-varportal/internal"
	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// variable names are used as SQL identifiers, they cannot be passed as statement parameters
var variableNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MariaDBController changes global variables of running MariaDB servers.
type MariaDBController struct {
	connectTimeout time.Duration
}

func NewMariaDBController(cfg config.ApplyConfig) *MariaDBController {
	return &MariaDBController{
		connectTimeout: cfg.ConnectTimeout,
	}
}

// SetGlobalVariables executes SET GLOBAL for all given assignments in a single session.
// The first failing statement aborts the run, earlier assignments stay applied.
func (c *MariaDBController) SetGlobalVariables(
	ctx context.Context,
	server *domain.DatabaseServer,
	assignments []domain.VariableAssignment,
) error {
	if len(assignments) == 0 {
		return nil
	}

	for _, a := range assignments {
		if !variableNameRegex.MatchString(string(a.Name)) {
			return fmt.Errorf("%w: invalid variable name %q", domain.ErrInvalidData, a.Name)
		}
	}

	dsn, err := c.prepareDsn(server.Dsn)
	if err != nil {
		return fmt.Errorf("invalid dsn for server %s: %w", server.Identifier, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open connection to server %s: %w", server.Identifier, err)
	}
	defer internal.LogClose(db)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to server %s: %w", server.Identifier, err)
	}
	defer internal.LogClose(conn)

	for _, a := range assignments {
		if _, err := conn.ExecContext(ctx, setGlobalStatement(a.Name), statementValue(a.Value)); err != nil {
			return fmt.Errorf("failed to set %s on server %s: %w", a.Name, server.Identifier, err)
		}
		slog.Debug("applied global variable", "server", server.Identifier, "variable", a.Name)
	}

	return nil
}

// prepareDsn enforces the connect timeout and client side parameter interpolation.
func (c *MariaDBController) prepareDsn(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("%w: empty dsn", domain.ErrInvalidData)
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}

	if c.connectTimeout > 0 {
		cfg.Timeout = c.connectTimeout
	}
	cfg.InterpolateParams = true

	return cfg.FormatDSN(), nil
}

func setGlobalStatement(name domain.VariableName) string {
	return fmt.Sprintf("SET GLOBAL %s = ?", name)
}

// statementValue binds booleans as ON/OFF, which MariaDB accepts for every boolean system variable.
func statementValue(v domain.VariableValue) any {
	switch v.Kind() {
	case domain.ValueKindInt:
		i, _ := v.Int()
		return i
	default:
		return v.String()
	}
}
