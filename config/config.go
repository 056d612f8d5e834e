package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the full application configuration, persisted as config.json
// next to the binary on first run.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Monitoring MonitoringConfig `json:"monitoring"`
	UI         UIConfig         `json:"ui"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Filename string `json:"filename"`
}

type MonitoringConfig struct {
	IntervalSeconds    int `json:"interval_seconds"`
	CPUSampleMillis    int `json:"cpu_sample_millis"`
	DiskRefreshSeconds int `json:"disk_refresh_seconds"`

	// Flags absent from the file keep their defaults because Load
	// unmarshals over a Default() value.
	EnableMemoryMonitoring  bool `json:"enable_memory_monitoring"`
	EnableDiskMonitoring    bool `json:"enable_disk_monitoring"`
	EnableNetworkMonitoring bool `json:"enable_network_monitoring"`
	EnableProcessMonitoring bool `json:"enable_process_monitoring"`
}

type UIConfig struct {
	Theme string `json:"theme"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		Server:   ServerConfig{Host: "localhost", Port: 8080},
		Database: DatabaseConfig{Filename: "sysdash.db"},
		Monitoring: MonitoringConfig{
			IntervalSeconds:         2,
			CPUSampleMillis:         500,
			DiskRefreshSeconds:      60,
			EnableMemoryMonitoring:  true,
			EnableDiskMonitoring:    true,
			EnableNetworkMonitoring: true,
			EnableProcessMonitoring: true,
		},
		UI: UIConfig{Theme: "dark"},
	}
}

// Load reads path, creating it with defaults when missing. A malformed
// file is an error rather than silently replaced.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return cfg, fmt.Errorf("marshal default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		log.Info().Str("path", path).Msg("created default config file")
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	cfg.sanitize()
	return cfg, nil
}

// LoadWithEnv loads path, then applies .env (if present) and SYSDASH_*
// process environment overrides on top.
func LoadWithEnv(path string) (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides individual fields from SYSDASH_* environment
// variables. Unset or malformed values leave the field untouched.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SYSDASH_HOST"); v != "" {
		c.Server.Host = v
	}
	if v, ok := envInt("SYSDASH_PORT"); ok {
		c.Server.Port = v
	}
	if v := os.Getenv("SYSDASH_DB_FILE"); v != "" {
		c.Database.Filename = v
	}
	if v, ok := envInt("SYSDASH_INTERVAL_SECONDS"); ok {
		c.Monitoring.IntervalSeconds = v
	}
	if v, ok := envInt("SYSDASH_CPU_SAMPLE_MILLIS"); ok {
		c.Monitoring.CPUSampleMillis = v
	}
	if v, ok := envInt("SYSDASH_DISK_REFRESH_SECONDS"); ok {
		c.Monitoring.DiskRefreshSeconds = v
	}
	if v := os.Getenv("SYSDASH_THEME"); v != "" {
		c.UI.Theme = v
	}
	c.sanitize()
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("var", key).Str("value", raw).Msg("ignoring non-numeric override")
		return 0, false
	}
	return v, true
}

func (c *Config) sanitize() {
	def := Default()
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		c.Server.Port = def.Server.Port
	}
	if c.Monitoring.IntervalSeconds <= 0 {
		c.Monitoring.IntervalSeconds = def.Monitoring.IntervalSeconds
	}
	if c.Monitoring.CPUSampleMillis <= 0 {
		c.Monitoring.CPUSampleMillis = def.Monitoring.CPUSampleMillis
	}
	if c.Monitoring.DiskRefreshSeconds <= 0 {
		c.Monitoring.DiskRefreshSeconds = def.Monitoring.DiskRefreshSeconds
	}
	if c.Database.Filename == "" {
		c.Database.Filename = def.Database.Filename
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
