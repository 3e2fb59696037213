package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gartstein/staffboard/internal/board/handlers"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// dialFunc opens a connection to the board service.
type dialFunc func(addr string) (grpc.ClientConnInterface, func() error, error)

type rootOptions struct {
	Addr    string
	Token   string
	Timeout time.Duration
	dial    dialFunc
}

func dialGRPC(addr string) (grpc.ClientConnInterface, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

func newRootCmd(dial dialFunc) *cobra.Command {
	opts := &rootOptions{dial: dial}

	cmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "Operate the staff assignment board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "localhost:50051", "board gRPC address")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("BOARD_TOKEN"), "operator bearer token (default $BOARD_TOKEN)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "per-call timeout")

	cmd.AddCommand(newEmployeesCmd(opts))
	cmd.AddCommand(newAssignCmd(opts))
	cmd.AddCommand(newUnassignCmd(opts))
	cmd.AddCommand(newReorganizeCmd(opts))
	cmd.AddCommand(newZonesCmd(opts))
	cmd.AddCommand(newEligibleCmd(opts))
	cmd.AddCommand(newWatchCmd())
	return cmd
}

// call runs fn against a fresh client with the per-call timeout and the
// operator token attached.
func (o *rootOptions) call(cmd *cobra.Command, fn func(ctx context.Context, c *handlers.BoardServiceClient) (any, error)) error {
	conn, closeConn, err := o.dial(o.Addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", o.Addr, err)
	}
	defer func() { _ = closeConn() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.Timeout)
	defer cancel()
	if o.Token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+o.Token)
	}

	resp, err := fn(ctx, handlers.NewBoardServiceClient(conn))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Execute() {
	if err := newRootCmd(dialGRPC).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
