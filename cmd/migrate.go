package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the documents table for the sqlite or postgres store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			if a.db == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "store backend %q has no schema\n", a.cfg.StoreBackend)
				return nil
			}
			for _, v := range a.migrated {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.db.Dialect())
			return nil
		},
	}
}
