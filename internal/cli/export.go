package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/urfave/cli/v3"
)

// exportPageSize is the number of records fetched per List call.
const exportPageSize = 1000

func exportCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write every stored processor as JSON or CSV",
		ArgsUsage: "[dsn]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "json",
				Usage:   "json or csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file (default: stdout)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format := strings.ToLower(cmd.String("format"))
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown output format: %q", format)
			}

			store, err := connect(ctx, cmd, 0, open)
			if err != nil {
				return err
			}
			defer closeStore(store)

			out := cmd.Root().Writer
			if path := cmd.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			var n int
			if format == "csv" {
				n, err = exportCSV(ctx, store, out)
			} else {
				n, err = exportJSON(ctx, store, out)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(os.Stderr, "exported %d processors\n", n)
			return nil
		},
	}
}

func exportCSV(ctx context.Context, store core.Store, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(core.Headers()); err != nil {
		return 0, err
	}
	n, err := core.EachPage(ctx, store, exportPageSize, func(page []core.ProcessorRecord) error {
		for _, rec := range page {
			if err := cw.Write(rec.Row()); err != nil {
				return err
			}
		}
		return nil
	})
	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	return n, err
}

// exportJSON writes a JSON array without holding every record in memory.
func exportJSON(ctx context.Context, store core.Store, w io.Writer) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}
	first := true
	n, err := core.EachPage(ctx, store, exportPageSize, func(page []core.ProcessorRecord) error {
		for _, rec := range page {
			b, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			sep := ",\n"
			if first {
				sep, first = "\n", false
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return err
			}
			if _, err := w.Write(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	_, err = io.WriteString(w, "\n]\n")
	return n, err
}
