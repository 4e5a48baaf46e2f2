// Package config loads the project configuration file and applies
// environment overrides.
package config

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pvginkel/gmtdata/pkg/consts"
)

// Config represents the project configuration for declarative schema
// management.
type Config struct {
	// Driver selects which dialect generator/reader pair is used
	Driver string `yaml:"driver"`

	// SchemaFile is the path to the declarative schema definition
	SchemaFile string `yaml:"schema_file"`

	// ConnectionString is the target database connection. The
	// GMTDATA_CONNECTION_STRING environment variable overrides it.
	ConnectionString string `yaml:"connection_string"`

	// NoConstraintsOrIndexes suppresses foreign key and index operations in
	// generated scripts
	NoConstraintsOrIndexes bool `yaml:"no_constraints_or_indexes"`
}

// LoadConfig parses a project configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration naming the schema file,
// the target connection and the driver. Unset values fall back to defaults;
// the connection string can additionally be overridden through the
// environment.
//
// Example:
//
//	yamlData := `
//	driver: mysql
//	schema_file: db/schema.gmt
//	connection_string: root@tcp(localhost:3306)/webshop
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// A .env file in the working directory is loaded first so that environment
// overrides work without exporting variables.
func LoadConfigFile(path string) (*Config, error) {
	// Missing .env files are fine; explicit environment still applies
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = consts.DefaultDriver
	}
	if override := os.Getenv(consts.ConnectionStringEnvVar); override != "" {
		c.ConnectionString = override
	}
}

// Validate checks that the configuration names everything a run needs.
func (c *Config) Validate() error {
	if c.SchemaFile == "" {
		return errors.New("config is missing schema_file")
	}
	if c.ConnectionString == "" {
		return errors.Errorf("config is missing connection_string and %s is not set",
			consts.ConnectionStringEnvVar)
	}
	return nil
}
