package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rowkeeper/internal/behavior"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "ROWKEEPER"
)

// Config keys.
const (
	cfgKeyDriver           = "driver"
	cfgKeyDataDir          = "data_dir"
	cfgKeyDatabase         = "database"
	cfgKeySchemaDir        = "schema_dir"
	cfgKeyDescriptorFormat = "descriptor_format"
	cfgKeyLogLevel         = "log_level"
	cfgKeyIdentity         = "identity"
	cfgKeyTables           = "tables"
)

// Behavior names accepted under tables.<name>.behaviors.
const (
	behaviorAuthored = "authored"
	behaviorSlug     = "slug"
	behaviorUUIDKey  = "uuid_key"
)

var errUnknownBehavior = errors.New("unknown behavior")

// settings is the top-level content of config.yaml.
type settings struct {
	Driver           string `mapstructure:"driver" yaml:"driver"`
	DataDir          string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Database         string `mapstructure:"database" yaml:"database,omitempty"`
	SchemaDir        string `mapstructure:"schema_dir" yaml:"schema_dir,omitempty"`
	DescriptorFormat string `mapstructure:"descriptor_format" yaml:"descriptor_format"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
	Identity         string `mapstructure:"identity" yaml:"identity,omitempty"`
}

// tableSettings configures the behaviors of one table.
type tableSettings struct {
	Behaviors []string                 `mapstructure:"behaviors"`
	Authored  behavior.AuthoredColumns `mapstructure:"authored"`
	Slug      slugSettings             `mapstructure:"slug"`
	UUIDKey   string                   `mapstructure:"uuid_key"`
}

type slugSettings struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// defaultSettings is written to config.yaml by init.
func defaultSettings(dataDir string) settings {
	return settings{
		Driver:           types.DriverSQLite,
		DataDir:          dataDir,
		DescriptorFormat: types.FormatYAML,
		LogLevel:         "warn",
	}
}

const tablesExample = `
# Per-table behaviors, for example:
# tables:
#   articles:
#     behaviors: [authored, slug]
#     slug:
#       source: name
#       target: seo_url
`

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDriver, types.DriverSQLite)
	v.SetDefault(cfgKeyDescriptorFormat, types.FormatYAML)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyDriver, cfgKeyLogLevel, cfgKeyIdentity} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func readSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

// databaseConfig builds the backend configuration.
func (s settings) databaseConfig(dataDir string) types.Config {
	return types.Config{
		Driver:           s.Driver,
		DataDir:          dataDir,
		Database:         s.Database,
		SchemaDir:        s.SchemaDir,
		DescriptorFormat: s.DescriptorFormat,
	}
}

// tableBehaviors decodes tables.<table> and builds its behaviors. Viper
// keys are case-insensitive, so table names are matched in lower case.
func tableBehaviors(v *viper.Viper, table string, id behavior.Identity) ([]types.Behavior, error) {
	key := cfgKeyTables + "." + strings.ToLower(table)
	if !v.IsSet(key) {
		return nil, nil
	}
	var ts tableSettings
	if err := v.UnmarshalKey(key, &ts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	var out []types.Behavior
	for _, name := range ts.Behaviors {
		switch name {
		case behaviorAuthored:
			out = append(out, behavior.NewAuthored(withAuthoredDefaults(ts.Authored), behavior.WithIdentity(id)))
		case behaviorSlug:
			out = append(out, behavior.NewSeoURL(ts.Slug.Source, ts.Slug.Target))
		case behaviorUUIDKey:
			col := ts.UUIDKey
			if col == "" {
				col = "id"
			}
			out = append(out, behavior.NewUUIDKey(col))
		default:
			return nil, fmt.Errorf("%s: %w %q", key, errUnknownBehavior, name)
		}
	}
	return out, nil
}

// withAuthoredDefaults fills unset column names with the defaults. A "-"
// disables a column.
func withAuthoredDefaults(c behavior.AuthoredColumns) behavior.AuthoredColumns {
	d := behavior.DefaultAuthoredColumns()
	pick := func(v, def string) string {
		switch v {
		case "":
			return def
		case "-":
			return ""
		}
		return v
	}
	return behavior.AuthoredColumns{
		Created:   pick(c.Created, d.Created),
		CreatedBy: pick(c.CreatedBy, d.CreatedBy),
		Updated:   pick(c.Updated, d.Updated),
		UpdatedBy: pick(c.UpdatedBy, d.UpdatedBy),
	}
}

// writeConfigIfMissing writes the default config.yaml unless one exists.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(defaultSettings(dataDir))
	if err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}
	data = append(data, tablesExample...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
