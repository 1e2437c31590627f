// Package main is the dicp command-line entry point: a thin cobra wrapper
// that runs the bundled toy systems (spec.md §8 S1-S3) through the
// programmatic engine API and reports SAT/UNSAT. Formula/SMT-LIB/DRX
// parsing stays out of scope; this only demonstrates pkg/engine's Config
// knobs from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dreal-go/dicp/internal/dlog"
	"github.com/dreal-go/dicp/pkg/branch"
	"github.com/dreal-go/dicp/pkg/engine"
)

type options struct {
	numberOfJobs      int
	precision         float64
	stackLeftFirst    bool
	branchingStrategy string
	verbose           bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:          "dicp",
		Short:        "Run the bundled interval constraint propagation toy systems",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.verbose {
				dlog.SetLevel(logrus.DebugLevel)
			}

			cfg, err := o.toConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			for _, s := range toySystems() {
				if err := runSystem(ctx, s, cfg); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&o.numberOfJobs, "number-of-jobs", 1, "number of parallel workers (1 runs the sequential engine)")
	cmd.Flags().Float64Var(&o.precision, "precision", 1e-3, "delta-sat precision: max box width to accept as a witness")
	cmd.Flags().BoolVar(&o.stackLeftFirst, "stack-left-box-first", true, "push the left half of a bisected box on top of the stack first")
	cmd.Flags().StringVar(&o.branchingStrategy, "branching-strategy", "max-diam", "branching heuristic: max-diam or gradient-descent")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug-level logging")

	return cmd
}

func (o options) toConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.NumberOfJobs = o.numberOfJobs
	cfg.Precision = o.precision
	cfg.StackLeftBoxFirst = o.stackLeftFirst

	switch strings.ToLower(o.branchingStrategy) {
	case "max-diam", "":
		cfg.BranchingStrategy = branch.MaxDiam{}
	case "gradient-descent":
		cfg.BranchingStrategy = branch.GradientDescent{}
	default:
		return engine.Config{}, fmt.Errorf("unknown --branching-strategy %q (want max-diam or gradient-descent)", o.branchingStrategy)
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, mirroring
// the teacher's pkg/lib/signals.Context helper adapted to this module's own
// cancellation path instead of importing an internal package across module
// boundaries.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()
	return ctx, cancel
}
