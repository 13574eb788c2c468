package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/fmto/internal/cli/output"
	"github.com/leapstack-labs/fmto/pkg/converter"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks that every configured name is known.
func (c *Config) Validate() error {
	if c.InputFormat != "" {
		if _, err := converter.ParseFormat(c.InputFormat); err != nil {
			return fmt.Errorf("invalid input_format: %w", err)
		}
	}
	for _, name := range c.OutputFormats {
		if _, err := converter.ParseFormat(name); err != nil {
			return fmt.Errorf("invalid output_formats: %w", err)
		}
	}
	if !oneOf(c.LogLevel, logLevels) {
		return fmt.Errorf("unknown log_level %q\nAvailable levels: %v", c.LogLevel, logLevels)
	}
	if !oneOf(c.LogFormat, logFormats) {
		return fmt.Errorf("unknown log_format %q\nAvailable formats: %v", c.LogFormat, logFormats)
	}
	if !output.ValidMode(c.OutputFormat) {
		return fmt.Errorf("unknown output mode %q\nAvailable modes: %v", c.OutputFormat, output.Modes())
	}
	return nil
}

// oneOf reports whether s is empty or case-insensitively in options.
func oneOf(s string, options []string) bool {
	if s == "" {
		return true
	}
	for _, o := range options {
		if strings.EqualFold(s, o) {
			return true
		}
	}
	return false
}
