// Package cli wires the cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/calcdeck/internal/app"
	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/tui"
)

// NewRootCmd builds the command tree over an already built container.
// Running the root command without a subcommand starts the TUI.
func NewRootCmd(ctx context.Context, c *app.Container) *cobra.Command {
	root := &cobra.Command{
		Use:   "calcdeck",
		Short: "Scientific calculator with integrals and a persistent history",
		Long: "calcdeck evaluates expressions and integrals with step-by-step explanations.\n" +
			"Every calculation is kept in a history of the 50 most recent entries.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), c)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)

	root.AddCommand(
		newTUICommand(c),
		newEvalCommand(c),
		newIntegrateCommand(c),
		newHistoryCommand(c),
		newConfigCommand(c),
	)
	return root
}

func newTUICommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), c)
		},
	}
}

func runTUI(ctx context.Context, c *app.Container) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.Log.Info("tui start", "records", c.Store.Len())
	_, err := tea.NewProgram(tui.New(ctx, c.Config, c.Store), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// calcOptions builds evaluation options from config with ans bound to the
// latest simple result.
func calcOptions(c *app.Container) calc.Options {
	opts := calc.Options{
		Angle:     calc.ParseAngle(c.Config.Calc.AngleUnit),
		Precision: c.Config.Calc.Precision,
	}
	if rec, ok := c.Store.Latest(history.KindSimple); ok {
		opts.Ans, _ = rec.Float("result")
	}
	return opts
}

// save appends fields to history. A write that only reached memory is a
// warning for a one-shot command, since the process is about to exit.
func save(cmd *cobra.Command, c *app.Container, fields map[string]any) error {
	_, err := c.Store.Append(cmd.Context(), fields)
	if errors.Is(err, history.ErrNotPersisted) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: history not saved: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func printSteps(out io.Writer, steps []string) {
	for i, s := range steps {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, s)
	}
}
