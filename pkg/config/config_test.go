package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Engine.MaxMemoryMB)
	assert.Equal(t, 8, cfg.Engine.BaseStep)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "./patterns.db", cfg.Database.Path)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
engine:
  max_memory_mb: 512
  verbose: true
rules:
  user_dir: /tmp/rules
database:
  type: postgres
  host: db.example.com
  port: 5433
storage:
  type: cos
  bucket: patterns
  region: ap-guangzhou
  compress: true
log:
  level: debug
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Engine.MaxMemoryMB)
	assert.True(t, cfg.Engine.Verbose)
	assert.Equal(t, "/tmp/rules", cfg.Rules.UserDir)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid sqlite",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Database.Path = ""
			},
			wantErr: "sqlite database path is required",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Type = "postgres"
				c.Database.Host = ""
			},
			wantErr: "database host is required",
		},
		{
			name: "unknown database type",
			mutate: func(c *Config) {
				c.Database.Type = "oracle"
			},
			wantErr: "unsupported database type: oracle",
		},
		{
			name: "memory budget too small",
			mutate: func(c *Config) {
				c.Engine.MaxMemoryMB = 1
			},
			wantErr: "engine memory budget must be at least 10 MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Engine:   EngineConfig{MaxMemoryMB: 256},
				Database: DatabaseConfig{Type: "sqlite", Path: "./patterns.db", Host: "localhost"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
