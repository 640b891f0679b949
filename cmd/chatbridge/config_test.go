package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type configTestCLI struct {
	Config        kong.ConfigFlag
	ListenAddr    string        `default:"localhost:9020"`
	MaxConcurrent int64         `default:"0"`
	Timeout       time.Duration `default:"0s"`
	StrictExit    bool          `default:"false"`
	Args          []string
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(name, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return name
}

func TestYAML(t *testing.T) {
	config := writeConfig(t, `listen-addr: 0.0.0.0:8080
max_concurrent: 2
timeout: 5m
strict-exit: true
args:
  - run
  - gemma3:1b
`)
	tests := []struct {
		name     string
		args     []string
		expected configTestCLI
	}{
		{
			name: "defaults are used without a config file",
			args: nil,
			expected: configTestCLI{
				ListenAddr: "localhost:9020",
			},
		},
		{
			name: "values are read from the config file",
			args: []string{"--config", config},
			expected: configTestCLI{
				Config:        kong.ConfigFlag(config),
				ListenAddr:    "0.0.0.0:8080",
				MaxConcurrent: 2,
				Timeout:       5 * time.Minute,
				StrictExit:    true,
				Args:          []string{"run", "gemma3:1b"},
			},
		},
		{
			name: "flags take precedence over the config file",
			args: []string{"--config", config, "--max-concurrent=8"},
			expected: configTestCLI{
				Config:        kong.ConfigFlag(config),
				ListenAddr:    "0.0.0.0:8080",
				MaxConcurrent: 8,
				Timeout:       5 * time.Minute,
				StrictExit:    true,
				Args:          []string{"run", "gemma3:1b"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actual configTestCLI
			parser, err := kong.New(&actual, kong.Configuration(YAML))
			if err != nil {
				t.Fatalf("failed to create parser: %v", err)
			}
			if _, err = parser.Parse(tt.args); err != nil {
				t.Fatalf("failed to parse: %v", err)
			}
			if diff := cmp.Diff(tt.expected, actual, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("unexpected configuration: %v", diff)
			}
		})
	}
}

func TestYAMLInvalid(t *testing.T) {
	config := writeConfig(t, "listen-addr: [unterminated")
	var cli configTestCLI
	parser, err := kong.New(&cli, kong.Configuration(YAML))
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	if _, err = parser.Parse([]string{"--config", config}); err == nil {
		t.Error("expected error, got nil")
	}
}
