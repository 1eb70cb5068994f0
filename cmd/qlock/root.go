package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock"
	"github.com/theapemachine/qlock/sim"
)

/*
app is the state shared by every subcommand of one invocation: the resolved
configuration, the logger, the metrics and, when auditing is enabled, the
open audit store.
*/
type app struct {
	stdin  io.Reader
	stdout io.Writer
	logger *log.Logger

	configPath  string
	logLevel    string
	logFormat   string
	metricsFile string
	seed        uint64

	cfg     *qlock.Config
	metrics *qlock.Metrics
	store   *qlock.BadgerStore
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		logger: log.NewWithOptions(stderr, log.Options{
			Prefix:          "qlock",
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		}),
	}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		a.logger.Error("command failed", "err", err)
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qlock",
		Short: "Watermark quantum circuits with an identity-derived signature",
		Long: `qlock derives a deterministic signature from an identity string and
folds it into the rotation angles of a quantum circuit. The watermarked
circuit keeps its topology and stays within a known distance of the
original, which the baseline and compare commands measure on a local
statevector simulator.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.exportMetrics()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "text", "text, logfmt or json")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	flags.Uint64Var(&a.seed, "seed", 0, "simulator seed, overrides the configuration")

	root.AddCommand(
		a.embedCmd(),
		a.watermarkCmd(),
		a.baselineCmd(),
		a.compareCmd(),
		a.auditCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	a.logger.SetLevel(level)

	switch a.logFormat {
	case "text":
		a.logger.SetFormatter(log.TextFormatter)
	case "logfmt":
		a.logger.SetFormatter(log.LogfmtFormatter)
	case "json":
		a.logger.SetFormatter(log.JSONFormatter)
	default:
		return fmt.Errorf("--log-format: unknown format %q", a.logFormat)
	}

	a.cfg = qlock.NewConfig()
	if a.configPath != "" {
		if a.cfg, err = qlock.LoadConfig(a.configPath); err != nil {
			return err
		}
		a.logger.Debug("configuration loaded", "path", a.configPath)
	}
	if cmd.Flags().Changed("seed") {
		a.cfg.Seed = a.seed
	}

	a.metrics = qlock.NewMetrics()
	return nil
}

// engine builds the watermarking engine for identity, attaching the audit
// store when the configuration names one. The --identity flag must be given,
// but an empty value is a valid identity.
func (a *app) engine(cmd *cobra.Command, identity string) (*qlock.Engine, error) {
	if !cmd.Flags().Changed("identity") {
		return nil, fmt.Errorf("%w: --identity is required", qlock.ErrInvalidArgument)
	}

	opts := []qlock.EngineOption{qlock.WithMetrics(a.metrics)}
	if a.cfg.AuditPath != "" {
		if a.store == nil {
			store, err := qlock.OpenBadgerStore(a.cfg.AuditPath)
			if err != nil {
				return nil, err
			}
			a.store = store
		}
		opts = append(opts, qlock.WithAudit(qlock.NewAuditLog(0, a.store)))
	}

	engine, err := qlock.NewEngine(identity, a.cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Info("engine ready", "identity", engine.IdentityHash(), "mode", a.cfg.Mode, "epsilon", a.cfg.Epsilon)
	return engine, nil
}

func (a *app) simulator() *sim.Simulator {
	return sim.NewSimulator(sim.WithSeed(a.cfg.Seed), sim.WithMaxQubits(a.cfg.MaxQubits))
}

func (a *app) exportMetrics() error {
	if a.metricsFile == "" || a.metrics == nil {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.logger.Debug("metrics written", "path", a.metricsFile)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
