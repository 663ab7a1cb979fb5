package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/streamship/internal/cliconfig"
	"github.com/bft-labs/streamship/pkg/log"
	"github.com/bft-labs/streamship/pkg/streamship"
)

const helpDescription = `
Consume and publish events on an append-only event broker.

  - consume holds a streaming connection open and prints every batch as one
    JSON line on stdout. The next batch is requested only after the previous
    one is written, so a slow pipe slows the stream instead of dropping data.
  - publish sends each event as its own request and reports the outcome.

Configure via file ($HOME/.streamship/config.toml), STREAMSHIP_* environment
variables, or flags, in increasing order of precedence.
`

var exampleUsage = strings.TrimSpace(`
  streamship consume --topic order.created --auth-token <token> --batch-limit 100
  streamship publish --topic order.created '{"order_id":"42"}'
  cat events.jsonl | streamship publish --topic order.created --token-file /var/run/secrets/token
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "streamship",
		Short:         "Consume and publish events on an append-only event broker",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.streamship/config.toml)")
	pf.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "broker base URL")
	pf.StringVar(&cfg.Topic, "topic", cfg.Topic, "event type to consume or publish")
	pf.StringVar(&cfg.AuthToken, "auth-token", cfg.AuthToken, "static bearer token")
	pf.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "file holding the bearer token, reloaded on change")
	pf.StringVar(&cfg.OAuthClientID, "oauth-client-id", cfg.OAuthClientID, "OAuth2 client id (client credentials flow)")
	pf.StringVar(&cfg.OAuthClientSecret, "oauth-client-secret", cfg.OAuthClientSecret, "OAuth2 client secret")
	pf.StringVar(&cfg.OAuthTokenURL, "oauth-token-url", cfg.OAuthTokenURL, "OAuth2 token endpoint")
	pf.StringSliceVar(&cfg.OAuthScopes, "oauth-scopes", cfg.OAuthScopes, "OAuth2 scopes")
	pf.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (e.g. :9090)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newConsumeCmd(&cfg, &cfgPath), newPublishCmd(&cfg, &cfgPath))

	if err := root.Execute(); err != nil {
		logger := cliconfig.Logger(zerolog.InfoLevel)
		logger.Error().Err(err).Msg("streamship")
		os.Exit(1)
	}
}

// loadConfig layers the config file and environment under explicitly set
// flags, then validates the result.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}

// runtimeEnv holds what every subcommand needs once config is loaded.
type runtimeEnv struct {
	client *streamship.Streamship
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// Close stops background work (token reload, metrics server) and reports
// the first error it returned.
func (e *runtimeEnv) Close() error {
	e.cancel()
	return e.group.Wait()
}

// setup builds the client and starts background work under ctx. Callers
// must Close the result.
func setup(ctx context.Context, cfg cliconfig.Config) (*runtimeEnv, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := cliconfig.Logger(level)
	logger.Debug().Interface("config", cfg.Redacted()).Msg("configuration")

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	env := &runtimeEnv{logger: logger, ctx: gctx, cancel: cancel, group: g}

	adapter := log.NewZerologAdapterWithLogger(logger)
	opts := []streamship.Option{streamship.WithLogger(adapter)}

	switch {
	case cfg.OAuthClientID != "":
		tokens, err := streamship.NewOAuth2TokenProvider(gctx, streamship.OAuth2Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			TokenURL:     cfg.OAuthTokenURL,
			Scopes:       cfg.OAuthScopes,
		})
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		opts = append(opts, streamship.WithTokenProvider(tokens))
	case cfg.TokenFile != "":
		tokens, err := streamship.NewFileTokenProvider(cfg.TokenFile, adapter)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		g.Go(func() error { return tokens.Run(gctx) })
		opts = append(opts, streamship.WithTokenProvider(tokens))
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		serveMetrics(gctx, g, cfg.MetricsAddr, reg, logger)
		opts = append(opts, streamship.WithPrometheus(reg))
	}

	client, err := streamship.New(streamship.Config{
		ServiceURL:           cfg.ServiceURL,
		AuthToken:            cfg.AuthToken,
		BatchLimit:           cfg.BatchLimit,
		BatchFlushTimeout:    cfg.BatchFlushTimeout,
		StreamLimit:          cfg.StreamLimit,
		StreamTimeout:        cfg.StreamTimeout,
		StreamKeepAliveLimit: cfg.StreamKeepAliveLimit,
		BufferSize:           cfg.BufferSize,
		EscapeAware:          cfg.EscapeAware,
		PublishTimeout:       cfg.PublishTimeout,
		PublishRate:          cfg.PublishRate,
		PublishBurst:         cfg.PublishBurst,
	}, opts...)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	env.client = client

	return env, nil
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
