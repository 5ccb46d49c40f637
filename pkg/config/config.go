// pkg/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys shared by flags, env vars (CLIO_ + upper case) and the config file.
const (
	KeyLogsRoot     = "logs_root"
	KeyTempLogsRoot = "temp_logs_root"
	KeyLogLevel     = "log_level"
	KeyLogFile      = "log_file"
	KeyTelemetry    = "telemetry"
	KeyTelemetryDir = "telemetry_dir"
	KeyConfigFile   = "config"
)

// Config is the resolved runtime configuration.
type Config struct {
	LogsRoot     string `mapstructure:"logs_root" validate:"required"`
	TempLogsRoot string `mapstructure:"temp_logs_root" validate:"required"`
	LogLevel     string `mapstructure:"log_level" validate:"omitempty,oneof=TRACE DEBUG INFO WARN WARNING ERROR"`
	LogFile      string `mapstructure:"log_file"`
	Telemetry    bool   `mapstructure:"telemetry"`
	TelemetryDir string `mapstructure:"telemetry_dir" validate:"required_if=Telemetry true"`
}

var validate = newValidator()

// newValidator reports fields by their config key rather than the Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// New returns a viper instance with clio defaults and CLIO_* env overrides.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLogsRoot, shared.DefaultLogsRoot)
	v.SetDefault(KeyTempLogsRoot, shared.DefaultTempLogsRoot)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyTelemetry, false)
	v.SetDefault(KeyTelemetryDir, defaultTelemetryDir())

	SetViperEnvPrefix(v, shared.EnvPrefix)
	return v
}

// SetViperEnvPrefix lets viper read env with prefix, mapping dashes to underscores.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// BindFlagsToViper binds every local and persistent flag of cmd, using the
// flag name with dashes turned into underscores as the key.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(flagKey(f.Name), f); err != nil {
			result = multierror.Append(result, err)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.PersistentFlags().VisitAll(bind)
	return result
}

// Load reads the optional .env file in dir, the config file (explicit path or
// clio.yaml in the search path) and unmarshals the merged result.
func Load(v *viper.Viper, dir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(dir, shared.DotEnvFile)); err != nil {
		return nil, err
	}

	if explicit := v.GetString(KeyConfigFile); explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(shared.ConfigFileName)
		v.SetConfigType(shared.ConfigFileType)
		v.AddConfigPath(dir)
		if cfgDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(cfgDir, shared.ClioID))
		}
		v.AddConfigPath(filepath.Join("/etc", shared.ClioID))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, cerr.Wrap(err, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, cerr.Wrap(err, "failed to decode config")
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations whose log roots cannot be used. Every
// problem found is reported, each as a classified validation error.
func (c *Config) Validate() error {
	var result error
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return cerr.Wrap(err, "failed to validate config")
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fieldError(fe))
		}
	}
	if result == nil && filepath.Clean(c.LogsRoot) == filepath.Clean(c.TempLogsRoot) {
		result = clio_err.NewValidationError("logs_root and temp_logs_root must differ",
			"Point temp logs at a staging directory")
	}
	return result
}

func fieldError(fe validator.FieldError) error {
	key := fe.Field()
	hint := fmt.Sprintf("Set %s in %s.%s or %s_%s", key, shared.ConfigFileName, shared.ConfigFileType,
		shared.EnvPrefix, strings.ToUpper(key))

	switch fe.Tag() {
	case "required", "required_if":
		return clio_err.NewValidationError(fmt.Sprintf("%s must not be empty", key), hint)
	case "oneof":
		return clio_err.NewValidationError(
			fmt.Sprintf("%s %q must be one of %s", key, fe.Value(), fe.Param()), hint)
	default:
		return clio_err.NewValidationError(fmt.Sprintf("%s is invalid (%s)", key, fe.Tag()), hint)
	}
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return cerr.Wrapf(err, "failed to stat %s", path)
	}
	// Existing environment variables win over the file.
	if err := godotenv.Load(path); err != nil {
		return cerr.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func defaultTelemetryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), shared.ClioID, "telemetry")
	}
	return filepath.Join(home, "."+shared.ClioID, "telemetry")
}
