package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/calcdeck/internal/app"
	"github.com/jask/calcdeck/internal/config"
)

func newConfigCommand(c *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	configCmd.AddCommand(newConfigPathCommand(), newConfigInitCommand(), newConfigShowCommand(c))
	return configCmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "storage.backend           = %s (%s)\n", cfg.Storage.Backend, c.Storage)
			fmt.Fprintf(out, "storage.key               = %s\n", cfg.Storage.Key)
			fmt.Fprintf(out, "history.capacity          = %d\n", cfg.History.Capacity)
			fmt.Fprintf(out, "history.write_policy      = %s\n", cfg.History.WritePolicy)
			fmt.Fprintf(out, "history.retry_attempts    = %d\n", cfg.History.RetryAttempts)
			fmt.Fprintf(out, "calc.angle_unit           = %s\n", cfg.Calc.AngleUnit)
			fmt.Fprintf(out, "calc.precision            = %d\n", cfg.Calc.Precision)
			fmt.Fprintf(out, "calc.integral_method      = %s\n", cfg.Calc.IntegralMethod)
			fmt.Fprintf(out, "calc.integral_intervals   = %d\n", cfg.Calc.IntegralIntervals)
			fmt.Fprintf(out, "ui.default_tab            = %s\n", cfg.UI.DefaultTab)
			fmt.Fprintf(out, "ui.timezone               = %s\n", cfg.UI.Timezone)
			fmt.Fprintf(out, "log.level                 = %s\n", cfg.Log.Level)
			fmt.Fprintf(out, "log.path                  = %s\n", cfg.Log.Path)
			return nil
		},
	}
}
