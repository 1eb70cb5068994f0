package main

import (
	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock/dist"
	"github.com/theapemachine/qlock/qasm"
)

type watermarkOutput struct {
	IdentityHash string      `json:"identity_hash"`
	Bound        float64     `json:"perturbation_bound"`
	QASM         string      `json:"qasm"`
	Shots        int         `json:"shots,omitempty"`
	Counts       dist.Counts `json:"counts,omitempty"`
}

func (a *app) watermarkCmd() *cobra.Command {
	var (
		flags lockFlags
		path  string
	)

	cmd := &cobra.Command{
		Use:   "watermark",
		Short: "Watermark an OpenQASM 2.0 circuit",
		Long: `Reads an OpenQASM 2.0 program, shifts its rotation angles by the
identity's signature and prints the watermarked program. With --shots the
watermarked circuit is also sampled on the local simulator.`,
		Example: `  qlock watermark --identity alice@example.com --circuit bell.qasm
  cat bell.qasm | qlock watermark --identity alice@example.com --circuit - --shots 2048`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			c, err := a.readCircuit(path)
			if err != nil {
				return err
			}
			engine, err := a.engine(cmd, flags.identity)
			if err != nil {
				return err
			}

			locked := engine.Lock(c)
			src, err := qasm.Dump(locked)
			if err != nil {
				return err
			}

			out := watermarkOutput{
				IdentityHash: engine.IdentityHash(),
				Bound:        engine.Bound(c),
				QASM:         src,
			}
			if cmd.Flags().Changed("shots") {
				if out.Counts, err = a.simulator().Run(cmd.Context(), locked, a.cfg.Shots); err != nil {
					return err
				}
				out.Shots = a.cfg.Shots
			}
			return a.writeJSON(out)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&path, "circuit", "", "OpenQASM file, - for stdin")
	cmd.Flags().IntVar(&flags.shots, "shots", 0, "also sample the watermarked circuit")
	return cmd
}
