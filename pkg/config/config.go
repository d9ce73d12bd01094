// Package config provides configuration management for the hashlife tools.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// EngineConfig holds universe-evolution configuration.
type EngineConfig struct {
	// MaxMemoryMB is the soft memory budget of the node pool.
	MaxMemoryMB int `mapstructure:"max_memory_mb"`
	// BaseStep is the default step increment exponent base.
	BaseStep int `mapstructure:"base_step"`
	// Verbose enables GC and resize status reporting.
	Verbose bool `mapstructure:"verbose"`
}

// RulesConfig holds the rule-file search directories.
type RulesConfig struct {
	// UserDir is searched first for .rule/.table/.tree files.
	UserDir string `mapstructure:"user_dir"`
	// SystemDir is the fallback rules directory.
	SystemDir string `mapstructure:"system_dir"`
}

// DatabaseConfig holds pattern-archive database configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
	// Path is the database file for the sqlite driver.
	Path string `mapstructure:"path"`
}

// StorageConfig holds object storage configuration for macrocell files.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"` // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"` // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"`
	// Compress gzips macrocell files before upload.
	Compress bool `mapstructure:"compress"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hashlife")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// config file not found, use defaults
		} else if os.IsNotExist(err) {
			// file specified but doesn't exist, use defaults
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// allow environment variables to override config
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from a byte buffer (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// engine defaults
	v.SetDefault("engine.max_memory_mb", 256)
	v.SetDefault("engine.base_step", 8)
	v.SetDefault("engine.verbose", false)

	// rules defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("rules.user_dir", filepath.Join(home, ".hashlife", "rules"))
	v.SetDefault("rules.system_dir", "/usr/share/hashlife/rules")

	// database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.path", "./patterns.db")

	// storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")
	v.SetDefault("storage.compress", false)

	// log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres", "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Engine.MaxMemoryMB < 10 {
		return fmt.Errorf("engine memory budget must be at least 10 MB")
	}

	// storage config validation is delegated to the storage package

	return nil
}
