package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse decodes, normalizes and validates a map config document. On
// validation failure it returns a *ValidationError; the returned Report is
// non-nil in both cases and carries any lenient-mode warnings.
func Parse(data []byte, opts Options) (*MapConfig, *Report, error) {
	var cfg MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse map config: %w", err)
	}

	Normalize(&cfg)

	report := Validate(&cfg, opts)
	if !report.Valid() {
		return nil, report, &ValidationError{Report: report}
	}
	return &cfg, report, nil
}

// LoadFile reads and parses a map config from disk.
func LoadFile(path string, opts Options) (*MapConfig, *Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, report, err := Parse(data, opts)
	if report != nil {
		report.Name = firstNonEmpty(report.Name, path)
	}
	return cfg, report, err
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
