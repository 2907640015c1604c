package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jask/calcdeck/internal/app"
	"github.com/jask/calcdeck/internal/history"
)

const (
	defaultHistoryLimit = 20
	timestampFormat     = "2006-01-02 15:04:05"
	msgNoHistory        = "No calculations recorded yet."
)

func newHistoryCommand(c *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage calculation history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(c),
		newHistorySearchCommand(c),
		newHistoryClearCommand(c),
		newHistoryExportCommand(c),
		newHistoryImportCommand(c),
	)
	return historyCmd
}

func newHistoryListCommand(c *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRecords(cmd.OutOrStdout(), c, c.Store.Search("", limit), time.Now())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

func newHistorySearchCommand(c *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search history by expression or result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRecords(cmd.OutOrStdout(), c, c.Store.Search(args[0], limit), time.Now())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max results (0 for all)")
	return cmd
}

func newHistoryClearCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every calculation from history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := c.Store.Len()
			if err := c.Store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s.\n", n, plural(n, "calculation"))
			return nil
		},
	}
}

func newHistoryExportCommand(c *app.Container) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as JSON or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := c.Store.Records()
			if out == "" || out == "-" {
				if err := history.Export(cmd.OutOrStdout(), records, format); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := exportTo(f, records, format); err != nil {
				_ = os.Remove(out)
				return fmt.Errorf("export %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", history.FormatJSON, "Output format: json or toml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newHistoryImportCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append records from a calculatorHistory JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			records, err := history.DecodeJSON(data)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			n, err := c.Store.Import(cmd.Context(), records)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d %s.\n", n, len(records), plural(len(records), "record"))
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			return nil
		},
	}
}

// exportTo writes records to wc and closes it. A failed close means the
// data may not have reached disk, so it is reported like a write error.
func exportTo(wc io.WriteCloser, records []history.Record, format string) error {
	if err := history.Export(wc, records, format); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

func listRecords(out io.Writer, c *app.Container, records []history.Record, now time.Time) error {
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoHistory)
		return nil
	}
	for _, rec := range records {
		ts := rec.Time()
		display := rec.String("display")
		if display == "" {
			display = rec.Result()
		}
		fmt.Fprintf(out, "%s | %-14s | %-8s | %s = %s\n",
			ts.In(c.Location).Format(timestampFormat),
			humanize.RelTime(ts, now, "ago", "from now"),
			rec.Kind(),
			rec.Expression(),
			display)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
