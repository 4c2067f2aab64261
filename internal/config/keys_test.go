package config

import (
	"errors"
	"testing"
)

func TestResolveAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		cfg        *Config
		wantKey    string
		wantSource KeySource
		wantErr    bool
	}{
		{"environment wins", "sk-ant-env", &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-cfg"}}, "sk-ant-env", KeySourceEnv, false},
		{"config file", "", &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-cfg"}}, "sk-ant-cfg", KeySourceConfig, false},
		{"unexpanded reference", "", &Config{Anthropic: AnthropicConfig{APIKey: "${MISSING_PANEL_VAR}"}}, "", KeySourceNone, true},
		{"bedrock needs none", "", &Config{Anthropic: AnthropicConfig{Bedrock: true}}, "", KeySourceBedrock, false},
		{"nothing set", "", &Config{}, "", KeySourceNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", tt.env)

			key, source, err := ResolveAPIKey(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoAPIKey) {
				t.Errorf("error = %v, want ErrNoAPIKey", err)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"short", "***"},
		{"sk-ant-REDACTED", "sk-ant-...mnop"},
	}

	for _, tt := range tests {
		if got := MaskAPIKey(tt.key); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
