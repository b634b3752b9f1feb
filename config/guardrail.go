package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GuardrailConfig maps risk tiers to trigger keywords. Loaded once at
// startup and treated as read-only for the process lifetime.
type GuardrailConfig struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
}

// DefaultGuardrailConfig returns the built-in keyword tables used when no
// rule file is configured.
func DefaultGuardrailConfig() GuardrailConfig {
	return GuardrailConfig{
		High: []string{
			"delayed",
			"lost",
			"damaged",
			"customs hold",
			"cancelled by supplier",
			"missing",
		},
		Medium: []string{
			"late",
			"partial",
			"backorder",
			"rescheduled",
			"pending confirmation",
		},
	}
}

// LoadGuardrailConfig reads keyword tables from a YAML file, falling back
// to the built-in defaults when path is empty. Keywords are normalized to
// lower case; matching is case-insensitive substring.
func LoadGuardrailConfig(path string) (GuardrailConfig, error) {
	cfg := DefaultGuardrailConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return GuardrailConfig{}, fmt.Errorf("failed to read guardrail rules file: %w", err)
		}
		var loaded GuardrailConfig
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return GuardrailConfig{}, fmt.Errorf("failed to parse guardrail rules file: %w", err)
		}
		cfg = loaded
	}

	cfg.High = normalizeKeywords(cfg.High)
	cfg.Medium = normalizeKeywords(cfg.Medium)
	return cfg, nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
