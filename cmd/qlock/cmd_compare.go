package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock"
)

func (a *app) compareCmd() *cobra.Command {
	var (
		flags   lockFlags
		paths   []string
		rate    int
		backlog int
		retries int
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare baseline and watermarked runs of one or more circuits",
		Long: `Watermarks every circuit, samples the original and the watermarked
version on the local simulator and reports fidelity and basin metrics for
each pair. Circuits are processed concurrently on a worker pool.`,
		Example: `  qlock compare --identity alice@example.com --circuit bell.qasm --circuit ghz.qasm --shots 4096`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("jobs-per-second") {
				a.cfg.JobsPerSecond = rate
			}
			if cmd.Flags().Changed("max-queue") {
				a.cfg.MaxQueue = backlog
			}
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("%w: at least one --circuit is required", qlock.ErrInvalidArgument)
			}

			inputs := make([]qlock.NamedCircuit, len(paths))
			for i, path := range paths {
				c, err := a.readCircuit(path)
				if err != nil {
					return err
				}
				inputs[i] = qlock.NamedCircuit{Name: filepath.Base(path), Circuit: c}
			}

			engine, err := a.engine(cmd, flags.identity)
			if err != nil {
				return err
			}

			q := qlock.NewQ(cmd.Context(), a.cfg.Workers, a.cfg, qlock.WithPoolMetrics(a.metrics))
			defer q.Close()

			opts := []qlock.JobOption{
				qlock.WithCircuitBreaker("simulator", len(inputs), a.cfg.SchedulingTimeout),
			}
			if retries > 1 {
				opts = append(opts,
					qlock.WithRetry(retries, &qlock.ExponentialBackoff{Initial: 50 * time.Millisecond, Max: 2 * time.Second}),
					qlock.WithRetryFilter(qlock.Retryable),
				)
			}

			results, err := qlock.CompareBatch(cmd.Context(), q, engine, a.simulator(), inputs, a.cfg.Shots, opts...)
			if err != nil {
				return err
			}

			for _, r := range results {
				a.logger.Info("compared",
					"circuit", r.Name, "tvd", r.Report.TVD, "fidelity", r.Report.Fidelity, "bound", r.Bound)
			}
			return a.writeJSON(results)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&paths, "circuit", nil, "OpenQASM file, repeatable")
	cmd.Flags().IntVar(&flags.shots, "shots", 1024, "samples per run")
	cmd.Flags().IntVar(&rate, "jobs-per-second", 0, "pace circuit runs, 0 for no limit")
	cmd.Flags().IntVar(&retries, "retries", 1, "attempts per circuit for transient failures")
	cmd.Flags().IntVar(&backlog, "max-queue", 0, "turn circuits away beyond this backlog, 0 for no limit")
	return cmd
}
