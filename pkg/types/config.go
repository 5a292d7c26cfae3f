package types

import (
	"errors"
	"path/filepath"
)

// Config holds backend selection and parameters for Database.Attach.
type Config struct {
	Driver           string `json:"driver" yaml:"driver" mapstructure:"driver"`
	DataDir          string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Database         string `json:"database" yaml:"database" mapstructure:"database"`
	SchemaDir        string `json:"schema_dir" yaml:"schema_dir" mapstructure:"schema_dir"`
	DescriptorFormat string `json:"descriptor_format" yaml:"descriptor_format" mapstructure:"descriptor_format"`
}

// Supported drivers. DriverSQLite is the pure-Go modernc driver and
// DriverSQLite3 the cgo mattn driver.
const (
	DriverSQLite  = "sqlite"
	DriverSQLite3 = "sqlite3"
)

// Descriptor formats for cached schema files.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Defaults applied by the accessors below.
const (
	DefaultDatabaseFile = "rowkeeper.db"
	DefaultSchemaDir    = "schema"
	MemoryDatabase      = ":memory:"
)

// Config validation errors.
var (
	ErrDriverEmpty             = errors.New("driver must not be empty")
	ErrDriverUnknown           = errors.New("unknown driver")
	ErrDataDirEmpty            = errors.New("data directory must not be empty")
	ErrDescriptorFormatUnknown = errors.New("unknown descriptor format")
)

var knownDrivers = map[string]bool{
	DriverSQLite:  true,
	DriverSQLite3: true,
}

var knownFormats = map[string]bool{
	"":         true,
	FormatYAML: true,
	FormatJSON: true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return ErrDriverUnknown
	}
	if c.DataDir == "" && c.Database != MemoryDatabase {
		return ErrDataDirEmpty
	}
	if !knownFormats[c.DescriptorFormat] {
		return ErrDescriptorFormatUnknown
	}
	return nil
}

// DataSource returns the database path handed to the driver.
func (c Config) DataSource() string {
	switch {
	case c.Database == MemoryDatabase:
		return MemoryDatabase
	case c.Database == "":
		return filepath.Join(c.DataDir, DefaultDatabaseFile)
	case filepath.IsAbs(c.Database):
		return c.Database
	default:
		return filepath.Join(c.DataDir, c.Database)
	}
}

// SchemaPath returns the directory holding cached schema descriptors, or ""
// when descriptors are not cached on disk.
func (c Config) SchemaPath() string {
	switch {
	case c.SchemaDir != "":
		return c.SchemaDir
	case c.DataDir != "":
		return filepath.Join(c.DataDir, DefaultSchemaDir)
	default:
		return ""
	}
}

// Format returns the descriptor format, defaulting to YAML.
func (c Config) Format() string {
	if c.DescriptorFormat == "" {
		return FormatYAML
	}
	return c.DescriptorFormat
}
