package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gartstein/staffboard/internal/board/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type watchOptions struct {
	Brokers []string
	Topic   string
	GroupID string
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch --brokers <host:port>",
		Short: "Print board refresh events as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.Brokers) == 0 {
				return errors.New("--brokers is required")
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			consumer := events.NewConsumer(opts.Brokers, opts.GroupID, opts.Topic, logger)
			defer consumer.Close()
			consumer.RegisterHandler(printEvent(cmd.OutOrStdout()))

			<-consumer.Start(ctx)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.Brokers, "brokers", nil, "Kafka brokers")
	cmd.Flags().StringVar(&opts.Topic, "topic", "staffboard.refresh", "refresh topic")
	cmd.Flags().StringVar(&opts.GroupID, "group", "boardctl-watch", "consumer group")
	return cmd
}

// printEvent renders one refresh event per line.
func printEvent(w io.Writer) func(context.Context, events.Event) error {
	return func(_ context.Context, ev events.Event) error {
		members := make([]string, 0, len(ev.State.Members))
		for _, id := range ev.State.Members {
			members = append(members, id.String())
		}

		load := fmt.Sprintf("%d", len(members))
		if ev.State.Capacity > 0 {
			load = fmt.Sprintf("%d/%d", len(members), ev.State.Capacity)
		}
		_, err := fmt.Fprintf(w, "%s %-10s %-5s %s\n",
			ev.At.Format(time.RFC3339), ev.State.View, load, strings.Join(members, ","))
		return err
	}
}
