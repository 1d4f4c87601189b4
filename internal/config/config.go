package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Core struct {
		// AdminUser defines the administrator account that is allowed to use the REST API.
		AdminUser     string `yaml:"admin_user"`
		AdminPassword string `yaml:"admin_password"`

		// Variables is the MariaDB variable catalog that is seeded on startup.
		Variables VariableSeeds `yaml:"variables"`
		// OverwriteVariables replaces existing catalog entries with the seeded values.
		OverwriteVariables bool `yaml:"overwrite_variables"`
	} `yaml:"core"`

	Advanced struct {
		LogLevel       string        `yaml:"log_level"`
		LogPretty      bool          `yaml:"log_pretty"`
		LogJson        bool          `yaml:"log_json"`
		StartupTimeout time.Duration `yaml:"startup_timeout"`
	} `yaml:"advanced"`

	Apply ApplyConfig `yaml:"apply"`

	Metrics MetricsConfig `yaml:"metrics"`

	Database DatabaseConfig `yaml:"database"`

	Web WebConfig `yaml:"web"`
}

// ApplyConfig controls how overrides are applied to the database servers.
type ApplyConfig struct {
	// ConnectTimeout limits the time to establish a connection to a managed MariaDB server.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// WriteConfigFiles enables writing the rendered option file to the configured server path.
	WriteConfigFiles bool `yaml:"write_config_files"`
	// ConfigStoragePath is the base directory for option files, relative server paths are resolved against it.
	ConfigStoragePath string `yaml:"config_storage_path"`
	// ConfigFileMode is the permission of written option files.
	ConfigFileMode os.FileMode `yaml:"config_file_mode"`
}

// MetricsConfig contains the configuration of the prometheus endpoint.
type MetricsConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ListeningAddress string `yaml:"listening_address"`
}

// LogStartupValues logs the most important configuration values, secrets are omitted.
func (c *Config) LogStartupValues() {
	slog.Info("Configuration loaded!", "logLevel", c.Advanced.LogLevel)

	slog.Debug("Config Features",
		"seededVariables", len(c.Core.Variables),
		"overwriteVariables", c.Core.OverwriteVariables,
		"writeConfigFiles", c.Apply.WriteConfigFiles,
		"metricsEnabled", c.Metrics.Enabled,
	)

	slog.Debug("Config Settings",
		"databaseType", c.Database.Type,
		"listeningAddress", c.Web.ListeningAddress,
		"requestLogging", c.Web.RequestLogging,
		"metricsAddress", c.Metrics.ListeningAddress,
	)
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Core.AdminUser = "admin"
	cfg.Core.AdminPassword = "varportal"
	cfg.Core.Variables = defaultVariableSeeds()

	cfg.Database = DatabaseConfig{
		Type: DatabaseSQLite,
		DSN:  "data/sqlite.db",
	}

	cfg.Web = WebConfig{
		RequestLogging:   false,
		ListeningAddress: ":8888",
	}

	cfg.Metrics = MetricsConfig{
		Enabled:          false,
		ListeningAddress: ":8787",
	}

	cfg.Apply = ApplyConfig{
		ConnectTimeout:    10 * time.Second,
		WriteConfigFiles:  true,
		ConfigStoragePath: "data/mysqld",
		ConfigFileMode:    0640,
	}

	cfg.Advanced.LogLevel = "info"
	cfg.Advanced.StartupTimeout = 30 * time.Second

	return cfg
}

// GetConfig returns the configuration from the config file.
// Environment variable substitution is supported.
func GetConfig() (*Config, error) {
	cfg := defaultConfig()

	// override config values from YAML file

	cfgFileName := "config.yaml"
	if envCfgFileName := os.Getenv("VARPORTAL_CONFIG"); envCfgFileName != "" {
		cfgFileName = envCfgFileName
	}

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		return nil, fmt.Errorf("failed to load config from yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Core.Variables.Validate(); err != nil {
		return err
	}
	if c.Core.AdminUser == "" {
		return errors.New("admin user must not be empty")
	}

	return nil
}

func loadConfigFile(cfg any, filename string) error {
	data, err := envsubst.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("Config file not found, using default values", "filename", filename)
			return nil
		}
		return fmt.Errorf("envsubst error: %v", err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return fmt.Errorf("yaml error: %v", err)
	}

	return nil
}
