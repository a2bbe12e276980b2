// Package config handles engine configuration loading and management.
// Every tuned constant in the pipeline (decode caps, solidity fraction,
// pricing rates, rotation envelope, batch pacing) lives here so it can
// be recalibrated without touching code.
package config

import (
	"time"

	"github.com/printforge/meshengine/pkg/analysis"
	"github.com/printforge/meshengine/pkg/estimate"
	"github.com/printforge/meshengine/pkg/orient"
	"github.com/printforge/meshengine/pkg/stl"
)

// Config holds all engine settings.
type Config struct {
	Decoder  stl.Limits       `yaml:"decoder"`
	Analysis analysis.Config  `yaml:"analysis"`
	Material estimate.Profile `yaml:"material"`
	Printer  PrinterConfig    `yaml:"printer"`
	Batch    BatchConfig      `yaml:"batch"`
	Logging  LoggingConfig    `yaml:"logging"`
}

// PrinterConfig describes the target machine.
type PrinterConfig struct {
	Name     string          `yaml:"name"`
	Envelope orient.Envelope `yaml:"envelope"`
}

// BatchConfig paces bulk processing of a file library.
type BatchConfig struct {
	// MaxPerRun caps how many pending files one invocation processes
	MaxPerRun int `yaml:"max_per_run"`
	// PacingMs is the fixed delay between files in milliseconds, to
	// stay under origin rate limits
	PacingMs int `yaml:"pacing_ms"`
}

// Pacing returns the inter-file delay as a duration
func (b BatchConfig) Pacing() time.Duration {
	return time.Duration(b.PacingMs) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the observed production values.
func Default() *Config {
	return &Config{
		Decoder:  stl.DefaultLimits(),
		Analysis: analysis.DefaultConfig(),
		Material: estimate.DefaultProfile(),
		Printer: PrinterConfig{
			Name:     "generic-220",
			Envelope: orient.Envelope{X: 220, Y: 220, Z: 250},
		},
		Batch: BatchConfig{
			MaxPerRun: 3,
			PacingMs:  400,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
