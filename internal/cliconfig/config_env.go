package cliconfig

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "STREAMSHIP_"

// ApplyEnvConfig applies STREAMSHIP_* environment variables to cfg.
// Environment overrides the config file; explicitly set flags override both.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("service-url", env("SERVICE_URL"), &cfg.ServiceURL)
	s.setString("topic", env("TOPIC"), &cfg.Topic)
	s.setString("auth-token", env("AUTH_TOKEN"), &cfg.AuthToken)
	s.setString("token-file", env("TOKEN_FILE"), &cfg.TokenFile)
	s.setString("oauth-client-id", env("OAUTH_CLIENT_ID"), &cfg.OAuthClientID)
	s.setString("oauth-client-secret", env("OAUTH_CLIENT_SECRET"), &cfg.OAuthClientSecret)
	s.setString("oauth-token-url", env("OAUTH_TOKEN_URL"), &cfg.OAuthTokenURL)
	s.setStrings("oauth-scopes", splitList(env("OAUTH_SCOPES")), &cfg.OAuthScopes)
	s.setString("metrics-addr", env("METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	durations := []struct {
		flag, name string
		dst        *time.Duration
	}{
		{"batch-flush-timeout", "BATCH_FLUSH_TIMEOUT", &cfg.BatchFlushTimeout},
		{"stream-timeout", "STREAM_TIMEOUT", &cfg.StreamTimeout},
		{"publish-timeout", "PUBLISH_TIMEOUT", &cfg.PublishTimeout},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, env(d.name), d.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{"batch-limit", "BATCH_LIMIT", &cfg.BatchLimit},
		{"stream-limit", "STREAM_LIMIT", &cfg.StreamLimit},
		{"stream-keep-alive-limit", "STREAM_KEEP_ALIVE_LIMIT", &cfg.StreamKeepAliveLimit},
		{"buffer-size", "BUFFER_SIZE", &cfg.BufferSize},
		{"publish-burst", "PUBLISH_BURST", &cfg.PublishBurst},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, env(i.name), i.dst); err != nil {
			return err
		}
	}

	if err := s.setFloatFromString("publish-rate", env("PUBLISH_RATE"), &cfg.PublishRate); err != nil {
		return err
	}

	s.setBoolFromString("escape-aware", env("ESCAPE_AWARE"), &cfg.EscapeAware)

	return nil
}
