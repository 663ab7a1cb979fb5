package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bft-labs/streamship/internal/cliconfig"
)

// maxEventLine bounds a single event read from stdin.
const maxEventLine = 4 << 20

func newPublishCmd(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	var correlationID string

	cmd := &cobra.Command{
		Use:   "publish [event...]",
		Short: "Publish JSON events given as arguments or as lines on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}

			events, err := readEvents(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return fmt.Errorf("no events to publish")
			}

			ctx, cancel := signalContext()
			defer cancel()

			env, err := setup(ctx, *cfg)
			if err != nil {
				return err
			}

			failed := 0
			for out := range env.client.PublishWithOutcomes(env.ctx, cfg.Topic, events, correlationID) {
				if out.Err != nil {
					failed++
					continue
				}
				env.logger.Debug().Int("index", out.Index).Int("status", out.StatusCode).Msg("event accepted")
			}

			env.logger.Info().
				Str("topic", cfg.Topic).
				Int("events", len(events)).
				Int("failed", failed).
				Msg("publish finished")
			bgErr := env.Close()
			if failed > 0 {
				return fmt.Errorf("%d of %d events not accepted", failed, len(events))
			}
			return bgErr
		},
	}

	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "X-Flow-Id sent with every event (generated when empty)")
	cmd.Flags().DurationVar(&cfg.PublishTimeout, "publish-timeout", cfg.PublishTimeout, "per-request timeout")
	cmd.Flags().Float64Var(&cfg.PublishRate, "publish-rate", cfg.PublishRate, "maximum requests per second (unlimited when 0)")
	cmd.Flags().IntVar(&cfg.PublishBurst, "publish-burst", cfg.PublishBurst, "burst allowed above publish-rate")

	return cmd
}

// readEvents takes events from args, or one per non-blank line of r when no
// args are given. Every event must be valid JSON.
func readEvents(args []string, r io.Reader) ([][]byte, error) {
	var events [][]byte
	if len(args) > 0 {
		for _, a := range args {
			events = append(events, []byte(a))
		}
	} else {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxEventLine)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			events = append(events, append([]byte(nil), line...))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
	}

	for i, e := range events {
		if !json.Valid(e) {
			return nil, fmt.Errorf("event %d is not valid JSON", i)
		}
	}
	return events, nil
}

