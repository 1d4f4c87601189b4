package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/gorm/utils"

	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// SchemaVersion describes the current database schema version. It must be incremented if a manual migration is needed.
var SchemaVersion uint64 = 1

// SysStat stores the current database schema version and the timestamp when it was applied.
type SysStat struct {
	MigratedAt    time.Time `gorm:"column:migrated_at"`
	SchemaVersion uint64    `gorm:"primaryKey,column:schema_version"`
}

// GormLogger is a custom logger for Gorm, making it use slog
type GormLogger struct {
	SlowThreshold           time.Duration
	SourceField             string
	IgnoreErrRecordNotFound bool
	Debug                   bool
	Silent                  bool

	prefix string
}

func NewLogger(slowThreshold time.Duration, debug bool) *GormLogger {
	return &GormLogger{
		SlowThreshold:           slowThreshold,
		Debug:                   debug,
		IgnoreErrRecordNotFound: true,
		Silent:                  false,
		SourceField:             "src",
		prefix:                  "GORM-SQL: ",
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	l.Silent = level == logger.Silent
	return l
}

func (l *GormLogger) Info(ctx context.Context, s string, args ...any) {
	if l.Silent {
		return
	}
	slog.InfoContext(ctx, l.prefix+s, args...)
}

func (l *GormLogger) Warn(ctx context.Context, s string, args ...any) {
	if l.Silent {
		return
	}
	slog.WarnContext(ctx, l.prefix+s, args...)
}

func (l *GormLogger) Error(ctx context.Context, s string, args ...any) {
	if l.Silent {
		return
	}
	slog.ErrorContext(ctx, l.prefix+s, args...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		"rows", rows,
		"duration", elapsed,
	}

	if l.SourceField != "" {
		attrs = append(attrs, l.SourceField, utils.FileWithLineNum())
	}

	// duplicate keys are reported to the caller as domain.ErrNotUnique, they are no database failures
	if err != nil && !(errors.Is(err, gorm.ErrRecordNotFound) && l.IgnoreErrRecordNotFound) && !isUniqueViolation(err) {
		attrs = append(attrs, "error", err)
		slog.ErrorContext(ctx, l.prefix+sql, attrs...)
		return
	}

	if l.SlowThreshold != 0 && elapsed > l.SlowThreshold {
		slog.WarnContext(ctx, l.prefix+sql, attrs...)
		return
	}

	if l.Debug {
		slog.DebugContext(ctx, l.prefix+sql, attrs...)
	}
}

// NewDatabase creates a new database connection and returns a Gorm database instance.
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormDb *gorm.DB
	var err error

	registerSerializers(cfg)

	gormCfg := &gorm.Config{
		Logger:         NewLogger(cfg.SlowQueryThreshold, cfg.Debug),
		TranslateError: true,
	}

	switch cfg.Type {
	case config.DatabaseMySQL:
		gormDb, err = gorm.Open(mysql.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}

		sqlDB, _ := gormDb.DB()
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(10)
		err = sqlDB.Ping() // This DOES open a connection if necessary. This makes sure the database is accessible
		if err != nil {
			return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
		}
	case config.DatabaseMsSQL:
		gormDb, err = gorm.Open(sqlserver.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlserver database: %w", err)
		}
	case config.DatabasePostgres:
		gormDb, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres database: %w", err)
		}
	case config.DatabaseSQLite:
		if _, err = os.Stat(filepath.Dir(cfg.DSN)); os.IsNotExist(err) {
			if err = os.MkdirAll(filepath.Dir(cfg.DSN), 0700); err != nil {
				return nil, fmt.Errorf("failed to create database base directory: %w", err)
			}
		}
		gormCfg.DisableForeignKeyConstraintWhenMigrating = true
		gormDb, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, _ := gormDb.DB()
		sqlDB.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	return gormDb, nil
}

// registerSerializers registers the custom gorm serializers used by the domain models.
func registerSerializers(cfg config.DatabaseConfig) {
	schema.RegisterSerializer("encstr", NewEncryptedStringSerializer(cfg.EncryptionPassphrase))
}

// isUniqueViolation reports whether err was caused by a unique index or primary key.
// Not all drivers translate their errors, so the message is checked as well.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// SqlRepo is a SQL database repository implementation.
// Currently, it supports MySQL, SQLite, Microsoft SQL and Postgresql database systems.
type SqlRepo struct {
	db *gorm.DB
}

// NewSqlRepository creates a new SqlRepo instance and migrates the database schema.
func NewSqlRepository(db *gorm.DB) (*SqlRepo, error) {
	repo := &SqlRepo{
		db: db,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// migrate creates all tables. The unique index on (mariadb_variable, parent) of the
// override table is registered here, so it is enforced by the database itself.
func (r *SqlRepo) migrate() error {
	models := []struct {
		name  string
		model any
	}{
		{"sys-stat", &SysStat{}},
		{"mariadb variable", &domain.MariaDBVariable{}},
		{"database server", &domain.DatabaseServer{}},
		{"variable override", &domain.VariableOverride{}},
		{"audit data", &domain.AuditEntry{}},
	}
	for _, m := range models {
		if err := r.db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		slog.Debug("migration done", "model", m.name)
	}

	existingSysStat := SysStat{}
	r.db.Where("schema_version = ?", SchemaVersion).First(&existingSysStat)
	if existingSysStat.SchemaVersion == 0 {
		sysStat := SysStat{
			MigratedAt:    time.Now(),
			SchemaVersion: SchemaVersion,
		}
		if err := r.db.Create(&sysStat).Error; err != nil {
			return fmt.Errorf("failed to write sysstat entry for schema version %d: %w", SchemaVersion, err)
		}
		slog.Debug("sys-stat entry written", "schema_version", SchemaVersion)
	}

	return nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrNotUnique, err)
	default:
		return err
	}
}

// region variables

// GetMariaDBVariable returns the catalog entry with the given name.
// If no variable is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetMariaDBVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error) {
	var variable domain.MariaDBVariable

	err := r.db.WithContext(ctx).Where("name = ?", name).First(&variable).Error
	if err != nil {
		return nil, translateError(err)
	}

	return &variable, nil
}

// GetAllMariaDBVariables returns all catalog entries, ordered by name.
func (r *SqlRepo) GetAllMariaDBVariables(ctx context.Context) ([]domain.MariaDBVariable, error) {
	var variables []domain.MariaDBVariable

	err := r.db.WithContext(ctx).Order("name").Find(&variables).Error
	if err != nil {
		return nil, err
	}

	return variables, nil
}

// SaveMariaDBVariable creates or updates the catalog entry with the given name.
func (r *SqlRepo) SaveMariaDBVariable(
	ctx context.Context,
	name domain.VariableName,
	updateFunc func(v *domain.MariaDBVariable) (*domain.MariaDBVariable, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var variable domain.MariaDBVariable
		err := tx.Where("name = ?", name).First(&variable).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			variable = domain.MariaDBVariable{
				BaseModel: domain.BaseModel{
					CreatedBy: userInfo.UserId(),
					CreatedAt: time.Now(),
				},
				Name: name,
			}
		case err != nil:
			return err
		}

		updated, err := updateFunc(&variable)
		if err != nil {
			return err
		}
		updated.Name = name
		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})

	return translateError(err)
}

// DeleteMariaDBVariable removes the catalog entry with the given name.
func (r *SqlRepo) DeleteMariaDBVariable(ctx context.Context, name domain.VariableName) error {
	err := r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.MariaDBVariable{}).Error
	if err != nil {
		return err
	}

	return nil
}

// CountVariableOverridesOf returns the number of overrides that reference the given variable.
func (r *SqlRepo) CountVariableOverridesOf(ctx context.Context, name domain.VariableName) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&domain.VariableOverride{}).
		Where("mariadb_variable = ?", name).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// endregion variables

// region servers

// GetDatabaseServer returns the database server with the given id.
// If no server is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetDatabaseServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error) {
	var server domain.DatabaseServer

	err := r.db.WithContext(ctx).Where("identifier = ?", id).First(&server).Error
	if err != nil {
		return nil, translateError(err)
	}

	return &server, nil
}

// GetAllDatabaseServers returns all database servers, ordered by display name.
func (r *SqlRepo) GetAllDatabaseServers(ctx context.Context) ([]domain.DatabaseServer, error) {
	var servers []domain.DatabaseServer

	err := r.db.WithContext(ctx).Order("display_name, identifier").Find(&servers).Error
	if err != nil {
		return nil, err
	}

	return servers, nil
}

// SaveDatabaseServer creates or updates the database server with the given id.
func (r *SqlRepo) SaveDatabaseServer(
	ctx context.Context,
	id domain.ServerIdentifier,
	updateFunc func(s *domain.DatabaseServer) (*domain.DatabaseServer, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var server domain.DatabaseServer
		err := tx.Where("identifier = ?", id).First(&server).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			server = domain.DatabaseServer{
				BaseModel: domain.BaseModel{
					CreatedBy: userInfo.UserId(),
					CreatedAt: time.Now(),
				},
				Identifier: id,
			}
		case err != nil:
			return err
		}

		updated, err := updateFunc(&server)
		if err != nil {
			return err
		}
		updated.Identifier = id
		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})

	return translateError(err)
}

// DeleteDatabaseServer deletes the database server and all of its overrides.
func (r *SqlRepo) DeleteDatabaseServer(ctx context.Context, id domain.ServerIdentifier) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("parent = ?", id).Delete(&domain.VariableOverride{}).Error
		if err != nil {
			return err
		}

		return tx.Where("identifier = ?", id).Delete(&domain.DatabaseServer{}).Error
	})
	if err != nil {
		return err
	}

	return nil
}

// endregion servers

// region overrides

// GetVariableOverride returns the override with the given id.
// If no override is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetVariableOverride(
	ctx context.Context,
	id domain.OverrideIdentifier,
) (*domain.VariableOverride, error) {
	var override domain.VariableOverride

	err := r.db.WithContext(ctx).Where("identifier = ?", id).First(&override).Error
	if err != nil {
		return nil, translateError(err)
	}

	return &override, nil
}

// GetServerOverrides returns all overrides of the given server, ordered by variable name.
func (r *SqlRepo) GetServerOverrides(
	ctx context.Context,
	id domain.ServerIdentifier,
) ([]domain.VariableOverride, error) {
	var overrides []domain.VariableOverride

	err := r.db.WithContext(ctx).Where("parent = ?", id).Order("mariadb_variable").Find(&overrides).Error
	if err != nil {
		return nil, err
	}

	return overrides, nil
}

// CreateVariableOverride inserts a new override. The record is not validated here, callers
// have to run VariableOverride.Validate first.
// If the variable already has an override for the same parent, domain.ErrNotUnique is returned.
func (r *SqlRepo) CreateVariableOverride(ctx context.Context, override *domain.VariableOverride) error {
	userInfo := domain.GetUserInfo(ctx)

	override.CreatedBy = userInfo.UserId()
	override.UpdatedBy = userInfo.UserId()
	override.CreatedAt = time.Now()
	override.UpdatedAt = override.CreatedAt

	return translateError(r.db.WithContext(ctx).Create(override).Error)
}

// SaveVariableOverride updates an existing override.
// If no override is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) SaveVariableOverride(
	ctx context.Context,
	id domain.OverrideIdentifier,
	updateFunc func(o *domain.VariableOverride) (*domain.VariableOverride, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var override domain.VariableOverride
		if err := tx.Where("identifier = ?", id).First(&override).Error; err != nil {
			return err
		}

		updated, err := updateFunc(&override)
		if err != nil {
			return err
		}
		updated.Identifier = id
		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})

	return translateError(err)
}

// DeleteVariableOverride deletes the override with the given id.
func (r *SqlRepo) DeleteVariableOverride(ctx context.Context, id domain.OverrideIdentifier) error {
	err := r.db.WithContext(ctx).Where("identifier = ?", id).Delete(&domain.VariableOverride{}).Error
	if err != nil {
		return err
	}

	return nil
}

// endregion overrides

// region audit

// SaveAuditEntry saves the given audit entry.
func (r *SqlRepo) SaveAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	err := r.db.WithContext(ctx).Save(entry).Error
	if err != nil {
		return err
	}

	return nil
}

// GetAllAuditEntries retrieves all audit entries from the database.
// The entries are ordered by timestamp, with the newest entries first.
func (r *SqlRepo) GetAllAuditEntries(ctx context.Context) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := r.db.WithContext(ctx).Order("created_at desc, id desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetServerAuditEntries retrieves the audit entries of the given server, newest first.
func (r *SqlRepo) GetServerAuditEntries(ctx context.Context, id domain.ServerIdentifier) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := r.db.WithContext(ctx).Where("server_id = ?", id).Order("created_at desc, id desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// endregion audit
