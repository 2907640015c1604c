package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/calcdeck/internal/app"
	"github.com/jask/calcdeck/internal/calc"
)

func newEvalCommand(c *app.Container) *cobra.Command {
	var (
		deg       bool
		noSave    bool
		precision int
	)

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression and explain each step",
		Long: "Evaluate an expression such as \"2 + 3 * 4\" or \"sqrt(ans)\", or a named\n" +
			"operation such as \"mul 4 5\". Use -- before expressions that start with '-'.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := calcOptions(c)
			if deg {
				opts.Angle = calc.Degrees
			}
			if precision > 0 {
				opts.Precision = precision
			}
			res, err := calc.Run(strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s = %s\n", res.Expression, res.Display)
			printSteps(out, res.Steps)
			if noSave {
				return nil
			}
			return save(cmd, c, res.Fields())
		},
	}

	cmd.Flags().BoolVar(&deg, "deg", false, "Use degrees for trigonometric functions")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not add the calculation to history")
	cmd.Flags().IntVar(&precision, "precision", 0, "Decimal places in the result (default from config)")
	return cmd
}

func newIntegrateCommand(c *app.Container) *cobra.Command {
	var (
		from, to  string
		variable  string
		method    string
		intervals int
		deg       bool
		noSave    bool
	)

	cmd := &cobra.Command{
		Use:   "integrate <expression>",
		Short: "Integrate an expression, definite when --from and --to are given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := calc.IntegralOptions{
				Options:   calcOptions(c),
				Method:    calc.ParseMethod(method),
				Intervals: intervals,
			}
			if deg {
				opts.Angle = calc.Degrees
			}
			expr := strings.Join(args, " ")

			var (
				in  calc.Integral
				err error
			)
			switch {
			case from == "" && to == "":
				in, err = calc.IntegrateIndefinite(expr, variable, opts)
			case from == "" || to == "":
				return fmt.Errorf("both --from and --to are required for a definite integral")
			default:
				var a, b float64
				if a, err = calc.Value(from, opts.Options); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				if b, err = calc.Value(to, opts.Options); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				in, err = calc.Integrate(expr, variable, a, b, opts)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if in.Definite {
				fmt.Fprintf(out, "∫[%s, %s] %s d%s = %s\n", from, to, in.Expression, in.Variable, in.Display)
			} else {
				fmt.Fprintf(out, "∫ %s d%s = %s\n", in.Expression, in.Variable, in.Display)
			}
			printSteps(out, in.Steps)
			if noSave {
				return nil
			}
			return save(cmd, c, in.Fields())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Lower bound (an expression, e.g. 0 or pi/2)")
	cmd.Flags().StringVar(&to, "to", "", "Upper bound")
	cmd.Flags().StringVar(&variable, "var", "x", "Integration variable")
	cmd.Flags().StringVar(&method, "method", c.Config.Calc.IntegralMethod, "Quadrature rule: simpson, trapezoid, midpoint or adaptive")
	cmd.Flags().IntVar(&intervals, "n", c.Config.Calc.IntegralIntervals, "Number of intervals")
	cmd.Flags().BoolVar(&deg, "deg", false, "Use degrees for trigonometric functions")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not add the calculation to history")
	return cmd
}
