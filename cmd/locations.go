package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/slotwatch/internal/catalog"
)

func newLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Inspect the cached location catalog",
	}
	cmd.AddCommand(newLocationsListCmd())
	cmd.AddCommand(newLocationsRefreshCmd())
	return cmd
}

func newLocationsListCmd() *cobra.Command {
	var all bool

	c := &cobra.Command{
		Use:   "list",
		Short: "List locations with their distance from the reference point",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			bc, err := a.bookingClient()
			if err != nil {
				return err
			}
			cat := a.catalog(bc)
			locs, err := cat.Locations(ctx)
			if err != nil {
				return err
			}
			printLocations(cmd, a, locs, all)
			return nil
		},
	}

	c.Flags().BoolVar(&all, "all", false, "include locations the policy does not admit")
	return c
}

func newLocationsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refetch the catalog from the booking service and replace the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			bc, err := a.bookingClient()
			if err != nil {
				return err
			}
			cat := a.catalog(bc)
			locs, err := cat.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cached %d locations\n", len(locs))
			return nil
		},
	}
}

func printLocations(cmd *cobra.Command, a *app, locs []catalog.Location, all bool) {
	p := a.cfg.Policy()
	sort.Slice(locs, func(i, j int) bool { return p.Distance(locs[i].Coordinates) < p.Distance(locs[j].Coordinates) })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDISTANCE_KM\tCATEGORIES\tADMITTED")
	for _, l := range locs {
		admitted := p.Admit(l.Coordinates, l.Categories)
		if !all && !admitted {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%v\t%t\n", l.ID, l.Name, p.Distance(l.Coordinates), l.Categories, admitted)
	}
	w.Flush()
}
