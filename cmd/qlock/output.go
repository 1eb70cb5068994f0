package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock"
	"github.com/theapemachine/qlock/circuit"
	"github.com/theapemachine/qlock/qasm"
)

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readCircuit parses the OpenQASM program at path, or on stdin for "-".
func (a *app) readCircuit(path string) (*circuit.Circuit, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: --circuit is required", qlock.ErrInvalidArgument)
	}

	var (
		src []byte
		err error
	)
	if path == "-" {
		src, err = io.ReadAll(a.stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read circuit %s: %w", path, err)
	}

	c, err := qasm.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("circuit %s: %w", path, err)
	}
	a.logger.Debug("circuit loaded", "path", path, "qubits", c.NumQubits(), "gates", len(c.Gates), "depth", c.Depth())
	return c, nil
}

// lockFlags are the watermark settings a command may override on the command line.
type lockFlags struct {
	identity string
	epsilon  float64
	mode     string
	shots    int
}

func (f *lockFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.identity, "identity", "", "identity that owns the watermark")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", qlock.DefaultEpsilon, "perturbation scale")
	cmd.Flags().StringVar(&f.mode, "mode", string(qlock.ModeAdditive), "additive or multiplicative")
}

func (f *lockFlags) apply(cmd *cobra.Command, cfg *qlock.Config) error {
	if cmd.Flags().Changed("epsilon") {
		cfg.Epsilon = f.epsilon
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = qlock.Mode(f.mode)
	}
	if cmd.Flags().Changed("shots") {
		cfg.Shots = f.shots
	}
	return cfg.Validate()
}
