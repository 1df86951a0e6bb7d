package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("civicmap-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "Coimbatore.geojson", cfg.Data.BoundaryFile)
	assert.Equal(t, 11.0168, cfg.Map.CenterLat)
	assert.Equal(t, 76.9558, cfg.Map.CenterLon)
	assert.Equal(t, 12, cfg.Map.Zoom)
	assert.Equal(t, 18, cfg.Map.HighlightZoom)
	assert.Equal(t, 16, cfg.Map.GeocodeZoom)
	assert.Equal(t, 300*time.Millisecond, cfg.Geocoder.Debounce())
	assert.Equal(t, 10*time.Second, cfg.Geocoder.RequestTimeout())
	assert.Equal(t, "civicmap-test", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CIVICMAP_DATA_SOURCE", "http")
	t.Setenv("CIVICMAP_DATA_BASE_URL", "https://cdn.example.org/civicmap")
	t.Setenv("CIVICMAP_GEOCODER_DEBOUNCE_MS", "150")
	t.Setenv("CIVICMAP_MAP_DEFAULT_BASE_LAYER", "satellite")

	cfg, err := Load("civicmap-test")
	require.NoError(t, err)

	assert.Equal(t, SourceHTTP, cfg.Data.Source)
	assert.Equal(t, "https://cdn.example.org/civicmap", cfg.Data.BaseURL)
	assert.Equal(t, 150*time.Millisecond, cfg.Geocoder.Debounce())
	assert.Equal(t, "satellite", cfg.Map.DefaultBaseLayer)
}

func TestLoad_InvalidSource(t *testing.T) {
	t.Setenv("CIVICMAP_DATA_SOURCE", "ftp")

	_, err := Load("civicmap-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.source")
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("civicmap-test")
	require.NoError(t, err)
	return cfg
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.Port = 0
	cfg.Data.Source = SourceHTTP
	cfg.Data.BaseURL = ""
	cfg.Map.CenterLat = 95
	cfg.Map.HighlightZoom = 30
	cfg.Geocoder.UserAgent = ""

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"server.port",
		"data.base_url",
		"map.center_lat",
		"map.highlight_zoom",
		"geocoder.user_agent",
	} {
		assert.Contains(t, msg, want)
	}
	assert.Equal(t, 5, strings.Count(msg, "\n  - "))
}

func TestValidate_PostgresNeedsDatabase(t *testing.T) {
	cfg := validConfig(t)
	cfg.Data.Source = SourcePostgres
	cfg.Database.Host = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "civicmap", Password: "secret", DBName: "civicmap", SSLMode: "disable"}
	assert.Equal(t, "postgres://civicmap:secret@db:5432/civicmap?sslmode=disable", d.DSN())
}
