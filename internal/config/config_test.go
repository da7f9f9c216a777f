package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_NAME", "complaints")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, DefaultWorkloadLimit, cfg.AssignmentWorkloadCap)
	assert.Equal(t, 30*time.Second, cfg.WSSweepInterval)
	assert.Equal(t, 60*time.Second, cfg.WSStaleAfter)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("WS_SWEEP_INTERVAL", "10")
	t.Setenv("WS_STALE_AFTER", "45s")
	t.Setenv("ASSIGNMENT_WORKLOAD_CAP", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.WSSweepInterval)
	assert.Equal(t, 45*time.Second, cfg.WSStaleAfter)
	assert.Equal(t, DefaultWorkloadLimit, cfg.AssignmentWorkloadCap)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"DB_NAME": "x"}},
		{"missing database", map[string]string{"JWT_SECRET": "s"}},
		{"stale window shorter than sweep", map[string]string{
			"JWT_SECRET": "s", "DB_NAME": "x", "WS_SWEEP_INTERVAL": "30s", "WS_STALE_AFTER": "20s",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("DB_NAME", "")
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNormalizerURL(t *testing.T) {
	cfg := &Config{VertexLocation: "us-central1"}
	assert.Empty(t, cfg.NormalizerURL())

	cfg.VertexProjectID = "proj"
	cfg.VertexEndpointID = "123"
	assert.Equal(t,
		"https://us-central1-aiplatform.googleapis.com/v1/projects/proj/locations/us-central1/endpoints/123:generateContent",
		cfg.NormalizerURL())

	cfg.NormalizerEndpoint = "http://localhost:9999/generate"
	assert.Equal(t, "http://localhost:9999/generate", cfg.NormalizerURL())
}
