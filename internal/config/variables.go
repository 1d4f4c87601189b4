package config

import (
	"fmt"
	"strings"
)

// VariableSeed describes a MariaDB system variable that is added to the catalog on startup.
type VariableSeed struct {
	Name        string `yaml:"name"`
	Datatype    string `yaml:"datatype"` // int, bool or str
	Dynamic     bool   `yaml:"dynamic"`
	DocSection  string `yaml:"doc_section"`
	Description string `yaml:"description"`
}

type VariableSeeds []VariableSeed

// Validate checks that all seeds are named uniquely and use a supported datatype.
func (s VariableSeeds) Validate() error {
	uniqueMap := make(map[string]struct{})
	for _, seed := range s {
		if seed.Name == "" {
			return fmt.Errorf("variable seed without name")
		}
		if _, exists := uniqueMap[seed.Name]; exists {
			return fmt.Errorf("variable %q is not unique", seed.Name)
		}
		uniqueMap[seed.Name] = struct{}{}

		switch strings.ToLower(seed.Datatype) {
		case "int", "bool", "str":
		default:
			return fmt.Errorf("variable %q has unsupported datatype %q", seed.Name, seed.Datatype)
		}
	}

	return nil
}

func defaultVariableSeeds() VariableSeeds {
	return VariableSeeds{
		{Name: "innodb_buffer_pool_size", Datatype: "int", Dynamic: true, DocSection: "innodb"},
		{Name: "innodb_log_file_size", Datatype: "int", Dynamic: false, DocSection: "innodb"},
		{Name: "max_allowed_packet", Datatype: "int", Dynamic: true, DocSection: "server"},
		{Name: "tmp_table_size", Datatype: "int", Dynamic: true, DocSection: "server"},
		{Name: "max_heap_table_size", Datatype: "int", Dynamic: true, DocSection: "server"},
		{Name: "max_connections", Datatype: "str", Dynamic: true, DocSection: "server",
			Description: "connection count, kept as string as integer overrides are interpreted as megabytes"},
		{Name: "log_bin", Datatype: "bool", Dynamic: false, DocSection: "replication"},
		{Name: "performance_schema", Datatype: "bool", Dynamic: false, DocSection: "performance-schema"},
		{Name: "slow_query_log", Datatype: "bool", Dynamic: true, DocSection: "server"},
		{Name: "long_query_time", Datatype: "str", Dynamic: true, DocSection: "server"},
		{Name: "character_set_server", Datatype: "str", Dynamic: true, DocSection: "server"},
		{Name: "collation_server", Datatype: "str", Dynamic: true, DocSection: "server"},
	}
}
