package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/slotwatch/internal/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the stored snapshot",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the snapshot the next crawl will diff against",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			snap, err := a.snapshots().Load(ctx)
			if errors.Is(err, snapshot.ErrNoBaseline) {
				fmt.Fprintln(cmd.OutOrStdout(), "no snapshot stored yet")
				return nil
			}
			if err != nil {
				return err
			}
			b, err := snap.MarshalIndent()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	})
	return cmd
}
