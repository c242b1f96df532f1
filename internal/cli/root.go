// Package cli implements the procimport command: batch CSV import, export,
// connectivity check and schema setup against a processor store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/logging"
	"github.com/JonMunkholm/procspec/internal/storage"
	"github.com/urfave/cli/v3"
)

const name = "procimport"

// overridden during build with ldflags
var version = "dev"

var errNoDSN = errors.New("no database url: pass it as an argument, with --database-url, or set DATABASE_URL")

// opener connects to a store; tests replace it.
type opener func(ctx context.Context, dsn string) (core.Store, error)

func openStore(ctx context.Context, dsn string) (core.Store, error) {
	return storage.Open(ctx, dsn, storage.Options{})
}

// New builds the root command. Results are written to out; logs go to
// stderr.
func New(out io.Writer) *cli.Command {
	return newRoot(out, openStore)
}

func newRoot(out io.Writer, open opener) *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Load Intel processor CSV files into the processor catalog",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Usage:   "postgres://... or sqlite://path (positional DSN wins)",
				Sources: cli.EnvVars("DATABASE_URL", "POSTGRES_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "text or json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Setup(os.Stderr, cmd.String("log-level"), cmd.String("log-format"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			importCmd(open),
			exportCmd(open),
			checkCmd(open),
			setupCmd(open),
		},
	}
}

// connect resolves the DSN from the positional argument at pos or the
// --database-url flag, then opens the store.
func connect(ctx context.Context, cmd *cli.Command, pos int, open opener) (core.Store, error) {
	dsn := cmd.Args().Get(pos)
	if dsn == "" {
		dsn = cmd.String("database-url")
	}
	if dsn == "" {
		return nil, errNoDSN
	}

	store, err := open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return store, nil
}

func closeStore(store core.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}

var timeoutFlag = &cli.DurationFlag{
	Name:  "timeout",
	Value: 5 * time.Second,
	Usage: "connectivity check timeout",
}
