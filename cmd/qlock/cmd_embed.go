package main

import (
	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock"
)

type embedOutput struct {
	IdentityHash string    `json:"identity_hash"`
	Dimension    int       `json:"dimension"`
	Embedding    []float64 `json:"embedding"`
	Signature    []float64 `json:"signature"`
}

func (a *app) embedCmd() *cobra.Command {
	var (
		identity string
		dim      int
		salt     string
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Print the identity embedding and the signature derived from it",
		Example: `  qlock embed --identity alice@example.com
  qlock embed --identity alice@example.com --dim 16 --salt tenant-a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("dim") {
				a.cfg.Dimension = dim
			}
			if cmd.Flags().Changed("salt") {
				a.cfg.Salt = salt
			}

			engine, err := a.engine(cmd, identity)
			if err != nil {
				return err
			}
			vec, err := qlock.Embed(identity, a.cfg.Dimension, qlock.WithSalt(a.cfg.Salt))
			if err != nil {
				return err
			}

			return a.writeJSON(embedOutput{
				IdentityHash: engine.IdentityHash(),
				Dimension:    a.cfg.Dimension,
				Embedding:    vec,
				Signature:    engine.Signature(),
			})
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "identity to embed")
	cmd.Flags().IntVar(&dim, "dim", 64, "embedding dimension")
	cmd.Flags().StringVar(&salt, "salt", "", "salt mixed into the hash")
	return cmd
}
