package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// DefaultDriver is the driver selected when the config file doesn't name one
	DefaultDriver = "mysql"

	// DefaultConfigFile is the config file looked up in the project directory
	DefaultConfigFile = "gmtdata.yaml"

	// ConnectionStringEnvVar overrides the configured connection string when set
	ConnectionStringEnvVar = "GMTDATA_CONNECTION_STRING"
)
