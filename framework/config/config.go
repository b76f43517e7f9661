package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig
	Hosting HostingConfig
}

type AppConfig struct {
	Name  string
	Env   string // development | production | testing
	Debug bool
	URL   string
	Port  string
}

// HostingConfig controls the multihost layer itself.
type HostingConfig struct {
	// DiscoveryEnabled exposes the read-only host listing endpoint.
	DiscoveryEnabled bool
	// DiscoveryPath is where the host listing is served.
	DiscoveryPath string
	// MetricsEnabled exposes the Prometheus /metrics endpoint.
	MetricsEnabled bool
	// ShutdownTimeout bounds the HTTP server drain on shutdown. Host scope
	// disposal itself is not bounded; every entry gets a full attempt.
	ShutdownTimeout time.Duration
}

// settingsFile mirrors the optional TOML settings file layout. Fields are
// optional; only the ones present override the env-derived config.
type settingsFile struct {
	Hosting struct {
		DiscoveryEnabled *bool  `toml:"discovery_enabled"`
		DiscoveryPath    string `toml:"discovery_path"`
		MetricsEnabled   *bool  `toml:"metrics_enabled"`
		ShutdownTimeout  string `toml:"shutdown_timeout"` // e.g. "30s"
	} `toml:"hosting"`
}

// Load reads .env (if present) and populates a Config from environment
// variables. Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "multihost"),
			Env:   env("APP_ENV", EnvDevelopment),
			Debug: envBool("APP_DEBUG", true),
			URL:   env("APP_URL", "http://localhost"),
			Port:  env("APP_PORT", "8000"),
		},
		Hosting: HostingConfig{
			DiscoveryEnabled: envBool("HOSTING_DISCOVERY_ENABLED", false),
			DiscoveryPath:    env("HOSTING_DISCOVERY_PATH", DefaultDiscoveryPath),
			MetricsEnabled:   envBool("HOSTING_METRICS_ENABLED", false),
			ShutdownTimeout:  envDuration("HOSTING_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
	}
}

// DefaultDiscoveryPath is where the host listing is served unless overridden.
const DefaultDiscoveryPath = "/mcp/_hosts"

// MergeFile overlays the [hosting] section of a TOML settings file onto cfg.
// A missing file is an error; so is malformed TOML or a bad duration.
func (c *Config) MergeFile(path string) error {
	var file settingsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	if file.Hosting.DiscoveryEnabled != nil {
		c.Hosting.DiscoveryEnabled = *file.Hosting.DiscoveryEnabled
	}
	if file.Hosting.DiscoveryPath != "" {
		c.Hosting.DiscoveryPath = file.Hosting.DiscoveryPath
	}
	if file.Hosting.MetricsEnabled != nil {
		c.Hosting.MetricsEnabled = *file.Hosting.MetricsEnabled
	}
	if file.Hosting.ShutdownTimeout != "" {
		d, err := time.ParseDuration(file.Hosting.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("config: %s: bad shutdown_timeout: %w", path, err)
		}
		c.Hosting.ShutdownTimeout = d
	}
	return nil
}

// Environment returns the ambient environment descriptor for this config.
func (c *Config) Environment() *Environment {
	return &Environment{Name: c.App.Env}
}

// ── Environment descriptor ────────────────────────────────────────────────────

// Canonical environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Environment describes which kind of environment the process runs in.
// It travels across scope boundaries by value reference: the same descriptor
// forwarded into every host scope.
type Environment struct {
	Name string
}

func (e *Environment) Is(name string) bool {
	return strings.EqualFold(e.Name, name)
}

func (e *Environment) IsDevelopment() bool { return e.Is(EnvDevelopment) || e.Is("local") }
func (e *Environment) IsProduction() bool  { return e.Is(EnvProduction) }
func (e *Environment) IsTesting() bool     { return e.Is(EnvTesting) }

// ── Raw env access ────────────────────────────────────────────────────────────

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
