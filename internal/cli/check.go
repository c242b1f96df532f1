package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func checkCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Verify that the database is reachable",
		ArgsUsage: "[dsn]",
		Flags:     []cli.Flag{timeoutFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			store, err := connect(ctx, cmd, 0, open)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			n, err := store.Count(ctx)
			if err != nil {
				return fmt.Errorf("count processors: %w", err)
			}

			fmt.Fprintf(cmd.Root().Writer, "database connected: %d processors\n", n)
			return nil
		},
	}
}

func setupCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "setup",
		Usage:     "Create the processors table and index if missing",
		ArgsUsage: "[dsn]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := connect(ctx, cmd, 0, open)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("setup schema: %w", err)
			}
			fmt.Fprintln(cmd.Root().Writer, "schema ready")
			return nil
		},
	}
}
