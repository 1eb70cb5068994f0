package main

import (
	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock/dist"
)

type baselineOutput struct {
	Circuit string         `json:"circuit"`
	Shots   int            `json:"shots"`
	Seed    uint64         `json:"seed"`
	Counts  dist.Counts    `json:"counts"`
	Entropy float64        `json:"entropy"`
	Gini    float64        `json:"gini"`
	Support float64        `json:"effective_support"`
	Octaves []float64      `json:"octave_mass"`
	Depth   int            `json:"depth"`
	GateMix map[string]int `json:"gates"`
}

func (a *app) baselineCmd() *cobra.Command {
	var (
		path  string
		shots int
	)

	cmd := &cobra.Command{
		Use:     "baseline",
		Short:   "Sample an unmodified circuit on the local simulator",
		Example: `  qlock baseline --circuit bell.qasm --shots 4096 --seed 7`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("shots") {
				a.cfg.Shots = shots
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			c, err := a.readCircuit(path)
			if err != nil {
				return err
			}

			counts, err := a.simulator().Run(cmd.Context(), c, a.cfg.Shots)
			if err != nil {
				return err
			}
			a.logger.Info("baseline sampled", "circuit", path, "shots", a.cfg.Shots, "outcomes", len(counts))

			return a.writeJSON(baselineOutput{
				Circuit: path,
				Shots:   a.cfg.Shots,
				Seed:    a.cfg.Seed,
				Counts:  counts,
				Entropy: dist.Entropy(counts),
				Gini:    dist.GiniCoefficient(counts),
				Support: dist.EffectiveSupport(counts),
				Octaves: dist.OctaveBinnedMass(counts, 5),
				Depth:   c.Depth(),
				GateMix: c.CountKinds(),
			})
		},
	}

	cmd.Flags().StringVar(&path, "circuit", "", "OpenQASM file, - for stdin")
	cmd.Flags().IntVar(&shots, "shots", 1024, "number of samples")
	return cmd
}
