package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/dirz"
	"github.com/zoobzio/dirz/examples/ecosystem"
	"go.uber.org/zap"
)

type runOptions struct {
	StatePath string
	PlanPath  string
	Abort     bool
}

var (
	runOpts runOptions

	errAborted = errors.New("aborted")
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ecosystem demo",
	Long: `Run the ecosystem demo against a fresh registry.

Without flags it starts from Earth-v1 (carbon 50, oxygen 0), compresses
carbon (IN), releases oxygen (OUT), and prints the final state.

With --abort each step is invoked under the fail-fast policy: the first
failure prints a direction-tagged diagnostic and exits with status 1.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		return runDemo(cmd.Context(), runOpts, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger, os.Exit)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.StatePath, "state", "", "YAML file with the starting ecosystem")
	runCmd.Flags().StringVar(&runOpts.PlanPath, "plan", "", "YAML file listing the steps to run")
	runCmd.Flags().BoolVar(&runOpts.Abort, "abort", false, "Terminate on the first failed step")
}

// runDemo executes the plan and prints the final state to out.
// exit is only called under --abort.
func runDemo(ctx context.Context, opts runOptions, out, errOut io.Writer, logger *zap.Logger, exit func(int)) error {
	world, err := loadState(opts.StatePath)
	if err != nil {
		return err
	}
	steps, err := loadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	aborted := false
	registry := dirz.NewRegistry[*ecosystem.Ecosystem]("ecosystem").
		WithLogger(logger).
		WithAbortPolicy(dirz.AbortPolicy{
			Out: errOut,
			Exit: func(code int) {
				aborted = true
				exit(code)
			},
		})
	defer registry.Close() //nolint:errcheck

	if err := ecosystem.Bind(registry, out); err != nil {
		return err
	}
	registry.Seal()

	fmt.Fprintln(out, "=== Di-RAM Directed Semantic Demo ===") //nolint:errcheck

	if opts.Abort {
		for _, step := range steps {
			world = registry.InvokeOrAbort(ctx, step.Name, step.Direction, world, step.Message)
			if aborted {
				return errAborted
			}
		}
	} else {
		pipeline := dirz.NewPipeline(dirz.Name("ecosystem-cycle"), registry, calls(steps)...)
		defer pipeline.Close() //nolint:errcheck

		if err := pipeline.Validate(); err != nil {
			return err
		}
		var report *dirz.Report
		world, report, err = pipeline.Run(ctx, world)
		if err != nil {
			return fmt.Errorf("%s after %d of %d steps: %w", report.Status, report.Completed, report.Steps, err)
		}
	}

	fmt.Fprintf(out, "Final state: %s\n", world) //nolint:errcheck
	return nil
}
