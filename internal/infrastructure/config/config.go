package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// AppDirName is the per-user directory that holds the database and config file
	AppDirName = "permission_manager"

	// EnvPrefix is prepended to every environment variable key
	EnvPrefix = "PERMISSION_MANAGER"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig
	Database DatabaseConfig
	Editor   EditorConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// StorageConfig selects the backend and, for SQLite, where the file lives
type StorageConfig struct {
	Driver   string // "sqlite" or "postgres"
	DataDir  string // Overrides the per-user data directory when set
	FileName string // SQLite database file name inside DataDir
}

// DatabaseConfig represents PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// EditorConfig controls the decision editor
type EditorConfig struct {
	// PreservePermissions keeps the stored permission list when a decision is edited.
	// When false the list is cleared on every edit.
	PreservePermissions bool
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	TextFile string // Prometheus textfile written on exit; empty disables
}

// DefaultConfigDir returns the per-user directory searched for config.env
func DefaultConfigDir() string {
	if xdg.ConfigHome == "" {
		return "."
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// InitConfig initializes viper configuration
// configFile: explicit config file path; empty searches the default config directory
func InitConfig(configFile string) error {
	viper.SetEnvPrefix(EnvPrefix)

	if configFile != "" {
		viper.SetConfigFile(configFile)
		viper.SetConfigType("env")
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("env")
		viper.AddConfigPath(DefaultConfigDir())

		// The default config file is optional
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	setDefaults()

	return nil
}

func setDefaults() {
	viper.SetDefault("STORAGE_DRIVER", DriverSQLite)
	viper.SetDefault("DATA_DIR", "")
	viper.SetDefault("DB_FILE", "permissions.db")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "permission_manager")
	viper.SetDefault("DB_NAME", "permission_manager")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("EDITOR_PRESERVE_PERMISSIONS", true)

	viper.SetDefault("LOG_LEVEL", "warn")
	viper.SetDefault("LOG_FORMAT", "text")

	viper.SetDefault("METRICS_TEXTFILE", "")
}

// Load loads configuration from viper
func Load() (*Config, error) {
	config := &Config{
		Storage: StorageConfig{
			Driver:   viper.GetString("STORAGE_DRIVER"),
			DataDir:  viper.GetString("DATA_DIR"),
			FileName: viper.GetString("DB_FILE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Editor: EditorConfig{
			PreservePermissions: viper.GetBool("EDITOR_PRESERVE_PERMISSIONS"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Metrics: MetricsConfig{
			TextFile: viper.GetString("METRICS_TEXTFILE"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.FileName == "" {
			return fmt.Errorf("DB_FILE is required for the sqlite driver")
		}
	case DriverPostgres:
		// DB_PASSWORD is required for security
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (want sqlite or postgres)", c.Storage.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format)
	}

	return nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
