package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jobseeker-app/apiserver/config"
	"github.com/jobseeker-app/apiserver/internal/logging"
	"github.com/jobseeker-app/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect ledger events on the configured broker",
}

// eventsTailCmd subscribes to the events channel and logs every event.
var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log ledger events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open mq: %w", err)
		}
		if queue == nil {
			return errors.New("no broker configured: set MQ_BACKEND")
		}
		defer queue.Close()

		logger.Info().Str("broker", queue.Name()).Str("channel", cfg.EventsChannel).Msg("tailing events")
		err = queue.Subscribe(ctx, cfg.EventsChannel, func(ctx context.Context, msg mq.Message) error {
			event, err := mq.DecodeEvent(msg)
			if err != nil {
				logger.Warn().Err(err).Msg("skipping undecodable message")
				return nil
			}
			logger.Info().
				Str("type", string(event.Type)).
				Str("user_id", event.UserID).
				Str("application_id", event.ApplicationID).
				Str("status", event.Status).
				Str("previous_status", event.PreviousStatus).
				Time("occurred_at", event.OccurredAt).
				Msg("event")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
