package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/queue"
)

// ConsumeOptions holds flags for the consume command.
type ConsumeOptions struct {
	*RootOptions
	LogPath string
}

// NewConsumeCommand creates the consume command, which appends booking
// events to a log file.
func NewConsumeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsumeOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append booking events from RabbitMQ to the booking log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			c := &queue.Consumer{URL: config.RabbitURL(), LogPath: opts.LogPath}
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.LogPath, "log", "logs/booking.log", "file the events are appended to")
	return cmd
}
