package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/streamship/internal/cliconfig"
	"github.com/bft-labs/streamship/pkg/streamship"
)

func newConsumeCmd(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	var skipKeepAlive bool

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Stream batches of a topic to stdout as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			env, err := setup(ctx, *cfg)
			if err != nil {
				return err
			}

			receiver := streamship.NewChannelReceiver()
			sub := env.client.Consume(env.ctx, cfg.Topic, receiver)
			env.logger.Info().Str("topic", cfg.Topic).Str("subscription", sub.ID()).Msg("consuming")

			out := bufio.NewWriter(os.Stdout)
			writeErr := printBatches(out, receiver.Deliveries(), skipKeepAlive)
			if writeErr != nil {
				sub.Cancel()
				for range receiver.Deliveries() {
				}
			}
			<-sub.Done()
			bgErr := env.Close()

			if writeErr != nil {
				return fmt.Errorf("write batch: %w", writeErr)
			}
			if err := sub.Err(); err != nil {
				return err
			}
			env.logger.Info().Str("state", sub.State().String()).Msg("stream ended")
			return bgErr
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.BatchLimit, "batch-limit", cfg.BatchLimit, "maximum events per batch (broker default when 0)")
	f.DurationVar(&cfg.BatchFlushTimeout, "batch-flush-timeout", cfg.BatchFlushTimeout, "maximum wait before a partial batch is flushed")
	f.IntVar(&cfg.StreamLimit, "stream-limit", cfg.StreamLimit, "close the stream after this many events")
	f.DurationVar(&cfg.StreamTimeout, "stream-timeout", cfg.StreamTimeout, "close the stream after this long")
	f.IntVar(&cfg.StreamKeepAliveLimit, "stream-keep-alive-limit", cfg.StreamKeepAliveLimit, "close the stream after this many empty keep-alive batches")
	f.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "decoded batches buffered ahead of stdout")
	f.BoolVar(&cfg.EscapeAware, "escape-aware", cfg.EscapeAware, "honour backslash escapes when splitting frames")
	f.BoolVar(&skipKeepAlive, "skip-keep-alive", false, "do not print batches without events")

	return cmd
}

// printBatches writes one JSON line per delivery and acknowledges it once
// the line is flushed. It returns on the first write error.
func printBatches(w *bufio.Writer, deliveries <-chan streamship.Delivery, skipKeepAlive bool) error {
	enc := json.NewEncoder(w)
	for d := range deliveries {
		if skipKeepAlive && d.Batch.Empty() {
			d.Ack()
			continue
		}
		if err := writeBatch(enc, w, d.Batch); err != nil {
			return err
		}
		d.Ack()
	}
	return nil
}

func writeBatch(enc *json.Encoder, w *bufio.Writer, batch streamship.EventBatch) error {
	if err := enc.Encode(batch); err != nil {
		return err
	}
	return w.Flush()
}
