package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHELF_DB_DRIVER", "sqlite3")
	t.Setenv("SHELF_DB_DSN", "file:shelf.db")
	t.Setenv("SHELF_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Login.Rate)
	assert.Equal(t, 5, cfg.Login.Burst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHELF_DB_DRIVER", "postgres")
	t.Setenv("SHELF_DB_DSN", "postgres://localhost/shelf")
	t.Setenv("SHELF_JWT_SECRET", "s3cret")
	t.Setenv("SHELF_JWT_TTL", "15m")
	t.Setenv("SHELF_HTTP_ADDR", ":9999")
	t.Setenv("SHELF_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Required(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"no driver", map[string]string{"SHELF_DB_DSN": "x", "SHELF_JWT_SECRET": "x"}, "SHELF_DB_DRIVER"},
		{"no dsn", map[string]string{"SHELF_DB_DRIVER": "sqlite3", "SHELF_JWT_SECRET": "x"}, "SHELF_DB_DSN"},
		{"no secret", map[string]string{"SHELF_DB_DRIVER": "sqlite3", "SHELF_DB_DSN": "x"}, "SHELF_JWT_SECRET"},
		{"bad ttl", map[string]string{"SHELF_DB_DRIVER": "sqlite3", "SHELF_DB_DSN": "x", "SHELF_JWT_SECRET": "x", "SHELF_JWT_TTL": "soon"}, "SHELF_JWT_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"SHELF_DB_DRIVER", "SHELF_DB_DSN", "SHELF_JWT_SECRET", "SHELF_JWT_TTL"} {
				t.Setenv(k, tt.env[k])
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
