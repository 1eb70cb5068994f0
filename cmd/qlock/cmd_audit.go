package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qlock"
)

func (a *app) auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect persisted watermarking records",
	}

	var dir string
	list := &cobra.Command{
		Use:     "list",
		Short:   "Print every audit record in a store, oldest first",
		Example: `  qlock audit list --store ./audit`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.AuditPath
			}
			if dir == "" {
				return fmt.Errorf("%w: --store or audit_path is required", qlock.ErrInvalidArgument)
			}

			store, err := qlock.OpenBadgerStore(dir)
			if err != nil {
				return err
			}
			a.store = store

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if records == nil {
				records = []qlock.AuditRecord{}
			}
			return a.writeJSON(records)
		},
	}
	list.Flags().StringVar(&dir, "store", "", "audit store directory, defaults to audit_path")

	cmd.AddCommand(list)
	return cmd
}
