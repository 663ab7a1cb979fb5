package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServiceURL           string   `toml:"service_url"`
	Topic                string   `toml:"topic"`
	AuthToken            string   `toml:"auth_token"`
	TokenFile            string   `toml:"token_file"`
	OAuthClientID        string   `toml:"oauth_client_id"`
	OAuthClientSecret    string   `toml:"oauth_client_secret"`
	OAuthTokenURL        string   `toml:"oauth_token_url"`
	OAuthScopes          []string `toml:"oauth_scopes"`
	BatchLimit           int      `toml:"batch_limit"`
	BatchFlushTimeout    string   `toml:"batch_flush_timeout"`
	StreamLimit          int      `toml:"stream_limit"`
	StreamTimeout        string   `toml:"stream_timeout"`
	StreamKeepAliveLimit int      `toml:"stream_keep_alive_limit"`
	BufferSize           int      `toml:"buffer_size"`
	EscapeAware          *bool    `toml:"escape_aware"`
	PublishTimeout       string   `toml:"publish_timeout"`
	PublishRate          float64  `toml:"publish_rate"`
	PublishBurst         int      `toml:"publish_burst"`
	MetricsAddr          string   `toml:"metrics_addr"`
	LogLevel             string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.streamship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".streamship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("topic", fc.Topic, &cfg.Topic)
	s.setString("auth-token", fc.AuthToken, &cfg.AuthToken)
	s.setString("token-file", fc.TokenFile, &cfg.TokenFile)
	s.setString("oauth-client-id", fc.OAuthClientID, &cfg.OAuthClientID)
	s.setString("oauth-client-secret", fc.OAuthClientSecret, &cfg.OAuthClientSecret)
	s.setString("oauth-token-url", fc.OAuthTokenURL, &cfg.OAuthTokenURL)
	s.setStrings("oauth-scopes", fc.OAuthScopes, &cfg.OAuthScopes)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("batch-flush-timeout", fc.BatchFlushTimeout, &cfg.BatchFlushTimeout); err != nil {
		return err
	}
	if err := s.setDuration("stream-timeout", fc.StreamTimeout, &cfg.StreamTimeout); err != nil {
		return err
	}
	if err := s.setDuration("publish-timeout", fc.PublishTimeout, &cfg.PublishTimeout); err != nil {
		return err
	}

	s.setInt("batch-limit", fc.BatchLimit, &cfg.BatchLimit)
	s.setInt("stream-limit", fc.StreamLimit, &cfg.StreamLimit)
	s.setInt("stream-keep-alive-limit", fc.StreamKeepAliveLimit, &cfg.StreamKeepAliveLimit)
	s.setInt("buffer-size", fc.BufferSize, &cfg.BufferSize)
	s.setInt("publish-burst", fc.PublishBurst, &cfg.PublishBurst)

	s.setFloat("publish-rate", fc.PublishRate, &cfg.PublishRate)

	s.setBool("escape-aware", fc.EscapeAware, &cfg.EscapeAware)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
