package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Asset source kinds.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Data      DataConfig      `mapstructure:"data"`
	Map       MapConfig       `mapstructure:"map"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DataConfig locates the boundary and amenity datasets.
type DataConfig struct {
	Source       string `mapstructure:"source"`
	Dir          string `mapstructure:"dir"`
	BaseURL      string `mapstructure:"base_url"`
	BoundaryFile string `mapstructure:"boundary_file"`
	IconBaseURL  string `mapstructure:"icon_base_url"`
	Concurrency  int    `mapstructure:"concurrency"`
}

type MapConfig struct {
	CenterLat        float64 `mapstructure:"center_lat"`
	CenterLon        float64 `mapstructure:"center_lon"`
	Zoom             int     `mapstructure:"zoom"`
	HighlightZoom    int     `mapstructure:"highlight_zoom"`
	GeocodeZoom      int     `mapstructure:"geocode_zoom"`
	DefaultBaseLayer string  `mapstructure:"default_base_layer"`
}

type GeocoderConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	UserAgent    string `mapstructure:"user_agent"`
	Timeout      int    `mapstructure:"timeout"`
	SuggestLimit int    `mapstructure:"suggest_limit"`
	DebounceMS   int    `mapstructure:"debounce_ms"`
	CacheTTL     int    `mapstructure:"cache_ttl"`
}

// RequestTimeout is the per-request geocoder deadline.
func (g GeocoderConfig) RequestTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// Debounce is the quiet period before a suggestion lookup.
func (g GeocoderConfig) Debounce() time.Duration {
	return time.Duration(g.DebounceMS) * time.Millisecond
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// NATSConfig configures scene events. An empty URL disables them.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig configures the geocode cache. An empty address disables it.
type ValkeyConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
	// LocalTTL is the client-side cache lifetime in seconds; 0 disables it.
	LocalTTL int `mapstructure:"local_ttl"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CIVICMAP_DATA_DIR → data.dir
	v.SetEnvPrefix("CIVICMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.source", SourceFile)
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.base_url", "")
	v.SetDefault("data.boundary_file", "Coimbatore.geojson")
	v.SetDefault("data.icon_base_url", "data/icons/")
	v.SetDefault("data.concurrency", 4)
	v.SetDefault("map.center_lat", 11.0168)
	v.SetDefault("map.center_lon", 76.9558)
	v.SetDefault("map.zoom", 12)
	v.SetDefault("map.highlight_zoom", 18)
	v.SetDefault("map.geocode_zoom", 16)
	v.SetDefault("map.default_base_layer", "default")
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "civicmap/1.0")
	v.SetDefault("geocoder.timeout", 10)
	v.SetDefault("geocoder.suggest_limit", 5)
	v.SetDefault("geocoder.debounce_ms", 300)
	v.SetDefault("geocoder.cache_ttl", 3600)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "civicmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "civicmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "civicmap:")
	v.SetDefault("valkey.local_ttl", 60)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Data.Source {
	case SourceFile:
		if c.Data.Dir == "" {
			errs = append(errs, "data.dir is required for the file source")
		}
	case SourceHTTP:
		if c.Data.BaseURL == "" {
			errs = append(errs, "data.base_url is required for the http source")
		}
	case SourcePostgres:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres source")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("data.source must be file, http or postgres, got %q", c.Data.Source))
	}
	if c.Data.BoundaryFile == "" {
		errs = append(errs, "data.boundary_file is required")
	}
	if c.Data.Concurrency <= 0 {
		errs = append(errs, "data.concurrency must be positive")
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be -90..90, got %g", c.Map.CenterLat))
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lon must be -180..180, got %g", c.Map.CenterLon))
	}
	zooms := []struct {
		key  string
		zoom int
	}{
		{"map.zoom", c.Map.Zoom},
		{"map.highlight_zoom", c.Map.HighlightZoom},
		{"map.geocode_zoom", c.Map.GeocodeZoom},
	}
	for _, z := range zooms {
		if z.zoom < 0 || z.zoom > 22 {
			errs = append(errs, fmt.Sprintf("%s must be 0-22, got %d", z.key, z.zoom))
		}
	}

	if c.Geocoder.BaseURL == "" {
		errs = append(errs, "geocoder.base_url is required")
	}
	if c.Geocoder.UserAgent == "" {
		errs = append(errs, "geocoder.user_agent is required")
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, "geocoder.timeout must be positive")
	}
	if c.Geocoder.SuggestLimit <= 0 {
		errs = append(errs, "geocoder.suggest_limit must be positive")
	}
	if c.Geocoder.DebounceMS < 0 {
		errs = append(errs, "geocoder.debounce_ms must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
