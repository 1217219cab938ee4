package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when DELVE_CONFIG is not set.
const DefaultPath = "config/delve.yaml"

// Delve holds the configuration of every delve binary. Each binary reads the
// groups it needs.
type Delve struct {
	LogLevel string `yaml:"log_level" env:"DELVE_LOG_LEVEL"`
	// DataDir, when set, replaces the embedded reference data.
	DataDir string `yaml:"data_dir" env:"DELVE_DATA_DIR"`

	Combat    Combat         `yaml:"combat"`
	Revive    Revive         `yaml:"revive"`
	Boss      Boss           `yaml:"boss"`
	Sim       Sim            `yaml:"sim"`
	Database  DatabaseConfig `yaml:"database"`
	Report    Report         `yaml:"report"`
	Gateway   Gateway        `yaml:"gateway"`
	Telemetry Telemetry      `yaml:"telemetry"`
}

// Sim configures the batch simulator.
type Sim struct {
	Scenario string `yaml:"scenario" env:"DELVE_SIM_SCENARIO"`
	Batches  int    `yaml:"batches" env:"DELVE_SIM_BATCHES"`
	Workers  int    `yaml:"workers" env:"DELVE_SIM_WORKERS"`
	MaxTurns int    `yaml:"max_turns" env:"DELVE_SIM_MAX_TURNS"`
	Seed     uint64 `yaml:"seed" env:"DELVE_SIM_SEED"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled" env:"DELVE_DB_ENABLED"`
	Host     string `yaml:"host" env:"DELVE_DB_HOST"`
	Port     int    `yaml:"port" env:"DELVE_DB_PORT"`
	User     string `yaml:"user" env:"DELVE_DB_USER"`
	Password string `yaml:"password" env:"DELVE_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DELVE_DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DELVE_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Report configures the SQLite store of simulation summaries.
type Report struct {
	Enabled bool   `yaml:"enabled" env:"DELVE_REPORT_ENABLED"`
	Path    string `yaml:"path" env:"DELVE_REPORT_PATH"`
}

// Gateway configures the arena HTTP/websocket server.
type Gateway struct {
	Addr         string        `yaml:"addr" env:"DELVE_GATEWAY_ADDR"`
	TickInterval time.Duration `yaml:"tick_interval" env:"DELVE_GATEWAY_TICK_INTERVAL"`
	MaxTurns     int           `yaml:"max_turns" env:"DELVE_GATEWAY_MAX_TURNS"`
	SendQueue    int           `yaml:"send_queue" env:"DELVE_GATEWAY_SEND_QUEUE"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"DELVE_GATEWAY_WRITE_TIMEOUT"`
}

// Telemetry configures OpenTelemetry tracing. Disabled by default.
type Telemetry struct {
	Enabled     bool    `yaml:"enabled" env:"DELVE_OTEL_ENABLED"`
	Endpoint    string  `yaml:"endpoint" env:"DELVE_OTEL_ENDPOINT"`
	Insecure    bool    `yaml:"insecure" env:"DELVE_OTEL_INSECURE"`
	ServiceName string  `yaml:"service_name" env:"DELVE_OTEL_SERVICE_NAME"`
	SampleRatio float64 `yaml:"sample_ratio" env:"DELVE_OTEL_SAMPLE_RATIO"`
}

// Default returns the configuration with sensible defaults.
func Default() Delve {
	return Delve{
		LogLevel: "info",
		Combat:   DefaultCombat(),
		Revive:   DefaultRevive(),
		Boss:     DefaultBoss(),
		Sim: Sim{
			Scenario: "goblin_warren",
			Batches:  1000,
			Workers:  4,
			MaxTurns: 500,
			Seed:     1,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "delve",
			Password: "delve",
			DBName:   "delve",
			SSLMode:  "disable",
		},
		Report: Report{
			Path: "delve-reports.db",
		},
		Gateway: Gateway{
			Addr:         ":8080",
			TickInterval: 250 * time.Millisecond,
			MaxTurns:     500,
			SendQueue:    256,
			WriteTimeout: 5 * time.Second,
		},
		Telemetry: Telemetry{
			Endpoint:    "localhost:4318",
			Insecure:    true,
			ServiceName: "delve",
			SampleRatio: 1,
		},
	}
}

// Path returns the config path from DELVE_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("DELVE_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path over the defaults, then applies DELVE_*
// environment overrides. A missing file yields defaults.
func Load(path string) (Delve, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
