// Package config provides configuration loading for linkd.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/linkd/internal/identify"
)

// Duration wraps time.Duration for text unmarshaling (YAML, env vars).
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration().String()), nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration().String())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the top-level linkd configuration.
type Config struct {
	// ContractsDir holds the contract-side documents to discover.
	ContractsDir string `koanf:"contracts_dir"`

	// InvoicesDir holds the invoice files to classify.
	InvoicesDir string `koanf:"invoices_dir"`

	// OutputDir receives the JSON report artifacts.
	OutputDir string `koanf:"output_dir"`

	// RulesFile optionally points at a persisted rule set produced by
	// an external extraction run.
	RulesFile string `koanf:"rules_file"`

	// Workers bounds concurrent invoice classification.
	Workers int `koanf:"workers"`

	Identify  identify.Config `koanf:"identify"`
	Logging   LoggingConfig   `koanf:"logging"`
	Server    ServerConfig    `koanf:"server"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Watch     WatchConfig     `koanf:"watch"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
}

// ServerConfig controls the optional HTTP surface (serve mode).
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// RateLimit is requests per second per client; Burst is the
	// short-term allowance above it.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`
}

// TelemetryConfig controls OTLP export. Disabled by default.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // "grpc" or "http/protobuf"
	ServiceName    string   `koanf:"service_name"`
	ServiceVersion string   `koanf:"service_version"`
	Insecure       bool     `koanf:"insecure"`
	ExportInterval Duration `koanf:"export_interval"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Debounce collapses bursts of filesystem events into one rerun.
	Debounce Duration `koanf:"debounce"`
}
