package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for BitBound Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Devices   []DeviceConfig  `yaml:"devices"`
	Rules     []RuleConfig    `yaml:"rules"`
	Datalog   DatalogConfig   `yaml:"datalog"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// SchedulerConfig contains tick loop settings.
type SchedulerConfig struct {
	// TickIntervalMS is the polling period in milliseconds. Rules are
	// evaluated once per tick; the value bounds event latency.
	TickIntervalMS int `yaml:"tick_interval_ms"`
}

// TickInterval returns the tick interval as a Duration.
func (c SchedulerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// DeviceConfig declares a device to attach at startup.
type DeviceConfig struct {
	// ID uniquely identifies the device.
	ID string `yaml:"id"`

	// Type selects the backend: "sim" or "mqtt".
	Type string `yaml:"type"`

	// Properties lists the device's readable properties.
	Properties []PropertyConfig `yaml:"properties"`
}

// PropertyConfig declares one readable property on a device.
type PropertyConfig struct {
	Name string `yaml:"name"`

	// Unit is the unit suffix (e.g. "°C", "hPa", "%"). Empty means
	// dimensionless.
	Unit string `yaml:"unit"`

	// Initial is the starting value for simulated devices.
	Initial float64 `yaml:"initial"`
}

// RuleConfig declares a rule to register at startup.
type RuleConfig struct {
	// Kind is "threshold", "change" or "interval".
	Kind string `yaml:"kind"`

	// Device is the ID of the device the rule observes.
	Device string `yaml:"device"`

	// Expression is the threshold expression (threshold rules only).
	Expression string `yaml:"expression"`

	// Property is the observed property (change rules only).
	Property string `yaml:"property"`

	// PeriodMS is the firing period in milliseconds (interval rules only).
	PeriodMS int `yaml:"period_ms"`

	// DebounceMS is the minimum gap between firings in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
}

// Period returns the interval rule period as a Duration.
func (c RuleConfig) Period() time.Duration {
	return time.Duration(c.PeriodMS) * time.Millisecond
}

// Debounce returns the debounce window as a Duration.
func (c RuleConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// DatalogConfig contains reading history settings.
type DatalogConfig struct {
	// BufferSize is the ring buffer capacity in entries.
	BufferSize int `yaml:"buffer_size"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BITBOUND_SECTION_KEY
// For example: BITBOUND_DATABASE_PATH, BITBOUND_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "BitBound",
			Timezone: "UTC",
		},
		Scheduler: SchedulerConfig{
			TickIntervalMS: 250,
		},
		Datalog: DatalogConfig{
			BufferSize: 1000,
		},
		Database: DatabaseConfig{
			Path:        "./data/bitbound.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "bitbound-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BITBOUND_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Scheduler
	if v := os.Getenv("BITBOUND_SCHEDULER_TICK_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.TickIntervalMS = ms
		}
	}

	// Database
	if v := os.Getenv("BITBOUND_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BITBOUND_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BITBOUND_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BITBOUND_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BITBOUND_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Scheduler.TickIntervalMS <= 0 {
		errs = append(errs, "scheduler.tick_interval_ms must be positive")
	}

	if c.Datalog.BufferSize <= 0 {
		errs = append(errs, "datalog.buffer_size must be positive")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	seen := make(map[string]bool, len(c.Devices))
	for i, dev := range c.Devices {
		if dev.ID == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].id is required", i))
			continue
		}
		if seen[dev.ID] {
			errs = append(errs, fmt.Sprintf("devices[%d].id %q is duplicated", i, dev.ID))
		}
		seen[dev.ID] = true
		switch dev.Type {
		case "sim", "mqtt":
		default:
			errs = append(errs, fmt.Sprintf("devices[%d].type must be sim or mqtt", i))
		}
	}

	for i, rule := range c.Rules {
		if !seen[rule.Device] {
			errs = append(errs, fmt.Sprintf("rules[%d].device %q is not declared", i, rule.Device))
		}
		switch rule.Kind {
		case "threshold":
			if rule.Expression == "" {
				errs = append(errs, fmt.Sprintf("rules[%d].expression is required for threshold rules", i))
			}
		case "change":
			if rule.Property == "" {
				errs = append(errs, fmt.Sprintf("rules[%d].property is required for change rules", i))
			}
		case "interval":
			if rule.PeriodMS <= 0 {
				errs = append(errs, fmt.Sprintf("rules[%d].period_ms must be positive for interval rules", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("rules[%d].kind must be threshold, change or interval", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
