package domain

type ServerIdentifier string

// DatabaseServer is a MariaDB server, it owns a set of variable overrides.
type DatabaseServer struct {
	BaseModel

	Identifier  ServerIdentifier `gorm:"primaryKey;column:identifier;size:64"`
	DisplayName string           `gorm:"column:display_name"`

	// Dsn is used to apply dynamic variables to the running server, for example
	// "admin:secret@tcp(db1:3306)/". If it is empty, nothing is applied at runtime.
	// It is encrypted at rest if an encryption passphrase is configured.
	Dsn string `gorm:"column:dsn;serializer:encstr"`
	// ConfigPath is the path of the rendered MariaDB option file. If it is empty, no file is written.
	ConfigPath string `gorm:"column:config_path"`
}

func (DatabaseServer) TableName() string {
	return "database_servers"
}

func (s *DatabaseServer) CopyCalculatedAttributes(src *DatabaseServer) {
	s.BaseModel = src.BaseModel
}

// ApplyResult summarizes an apply run for a single server.
type ApplyResult struct {
	Server         ServerIdentifier
	Applied        []VariableName // changed at runtime with SET GLOBAL
	PendingRestart []VariableName // only written to the option file, needs a restart
	Skipped        []VariableName // written as skip-<name>
	ConfigWritten  bool
}

// VariableAssignment is a single runtime change of a global MariaDB variable.
type VariableAssignment struct {
	Name  VariableName
	Value VariableValue
}
