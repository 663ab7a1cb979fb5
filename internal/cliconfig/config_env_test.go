package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"STREAMSHIP_TOPIC":               "orders",
				"STREAMSHIP_STREAM_TIMEOUT":      "10m",
				"STREAMSHIP_PUBLISH_RATE":        "2.5",
				"STREAMSHIP_BATCH_LIMIT":         "100",
				"STREAMSHIP_ESCAPE_AWARE":        "true",
				"STREAMSHIP_OAUTH_SCOPES":        "a, b",
				"STREAMSHIP_OAUTH_CLIENT_SECRET": "s3cret",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Topic:             "orders",
				StreamTimeout:     10 * time.Minute,
				PublishRate:       2.5,
				BatchLimit:        100,
				EscapeAware:       true,
				OAuthScopes:       []string{"a", "b"},
				OAuthClientSecret: "s3cret",
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"STREAMSHIP_TOPIC":       "env-topic",
				"STREAMSHIP_AUTH_TOKEN":  "env-token",
				"STREAMSHIP_BUFFER_SIZE": "5",
			},
			changed: map[string]bool{"topic": true, "buffer-size": true},
			initial: Config{
				Topic:      "flag-topic",
				BufferSize: 10,
			},
			expected: Config{
				Topic:      "flag-topic",
				AuthToken:  "env-token",
				BufferSize: 10,
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"STREAMSHIP_PUBLISH_TIMEOUT": "not-a-duration",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"STREAMSHIP_STREAM_LIMIT": "not-a-number",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "returns error for invalid float",
			envVars: map[string]string{
				"STREAMSHIP_PUBLISH_RATE": "fast",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "handles bool '1' as true",
			envVars: map[string]string{
				"STREAMSHIP_ESCAPE_AWARE": "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				EscapeAware: true,
			},
			wantErr: false,
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"STREAMSHIP_ESCAPE_AWARE": "false",
			},
			changed: map[string]bool{},
			initial: Config{EscapeAware: true},
			expected: Config{
				EscapeAware: false,
			},
			wantErr: false,
		},
		{
			name: "handles all field types correctly",
			envVars: map[string]string{
				"STREAMSHIP_SERVICE_URL":             "http://example.com",
				"STREAMSHIP_TOPIC":                   "orders",
				"STREAMSHIP_TOKEN_FILE":              "/run/token",
				"STREAMSHIP_OAUTH_CLIENT_ID":         "id",
				"STREAMSHIP_OAUTH_TOKEN_URL":         "http://idp/token",
				"STREAMSHIP_BATCH_LIMIT":             "10",
				"STREAMSHIP_BATCH_FLUSH_TIMEOUT":     "1s",
				"STREAMSHIP_STREAM_LIMIT":            "100",
				"STREAMSHIP_STREAM_TIMEOUT":          "1m",
				"STREAMSHIP_STREAM_KEEP_ALIVE_LIMIT": "3",
				"STREAMSHIP_BUFFER_SIZE":             "64",
				"STREAMSHIP_PUBLISH_TIMEOUT":         "10s",
				"STREAMSHIP_PUBLISH_RATE":            "5",
				"STREAMSHIP_PUBLISH_BURST":           "2",
				"STREAMSHIP_METRICS_ADDR":            ":9090",
				"STREAMSHIP_LOG_LEVEL":               "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ServiceURL:           "http://example.com",
				Topic:                "orders",
				TokenFile:            "/run/token",
				OAuthClientID:        "id",
				OAuthTokenURL:        "http://idp/token",
				BatchLimit:           10,
				BatchFlushTimeout:    time.Second,
				StreamLimit:          100,
				StreamTimeout:        time.Minute,
				StreamKeepAliveLimit: 3,
				BufferSize:           64,
				PublishTimeout:       10 * time.Second,
				PublishRate:          5,
				PublishBurst:         2,
				MetricsAddr:          ":9090",
				LogLevel:             "debug",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr {
				assertConfig(t, cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		ServiceURL:  "http://file.example",
		Topic:       "file-topic",
		AuthToken:   "file-token",
		EscapeAware: &trueVal,
	}

	t.Setenv("STREAMSHIP_SERVICE_URL", "http://env.example")
	t.Setenv("STREAMSHIP_TOPIC", "env-topic")
	t.Setenv("STREAMSHIP_BATCH_LIMIT", "25")

	// Simulate CLI flags
	changed := map[string]bool{
		"service-url": true,
	}

	cfg := Config{
		ServiceURL: "http://cli.example",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.ServiceURL != "http://cli.example" {
		t.Errorf("ServiceURL = %v, want http://cli.example (CLI should win)", cfg.ServiceURL)
	}
	if cfg.Topic != "env-topic" {
		t.Errorf("Topic = %v, want env-topic (env should override file)", cfg.Topic)
	}
	if cfg.BatchLimit != 25 {
		t.Errorf("BatchLimit = %v, want 25 (env should set)", cfg.BatchLimit)
	}
	if cfg.AuthToken != "file-token" {
		t.Errorf("AuthToken = %v, want file-token (file should set)", cfg.AuthToken)
	}
	if cfg.EscapeAware != true {
		t.Errorf("EscapeAware = %v, want true (file should set)", cfg.EscapeAware)
	}
}
