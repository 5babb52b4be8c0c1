package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/slotwatch/internal/crawler"
	"github.com/example/slotwatch/internal/notify"
	"github.com/example/slotwatch/internal/pipeline"
	"github.com/example/slotwatch/internal/slots"
)

func newCrawlCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl: fetch slots, diff against the last run, store and notify",
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

			r := &pipeline.Runner{
				Catalog: a.catalog(bc),
				Crawler: &crawler.Crawler{
					Fetcher: slots.NewFetcher(bc),
					Policy:  a.cfg.Policy(),
					Workers: a.cfg.Workers,
					Timeout: a.cfg.FetchTimeout,
					Log:     a.log,
				},
				Snapshots: a.snapshots(),
				Notifier: &notify.Dispatcher{
					Sender: notify.NewMailjet(a.cfg.MailjetURL, a.cfg.MailjetToken, a.cfg.FromEmail, a.cfg.ToEmail),
					Log:    a.log,
				},
				Cutoff: a.cfg.Cutoff,
				DryRun: dryRun,
				Log:    a.log,
			}

			rep, err := r.Run(ctx)
			if err != nil {
				a.log.Error("run failed", "run_id", rep.RunID, "error", err)
				return err
			}

			if dryRun {
				b, err := rep.Diff.MarshalIndent()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the diff instead of storing the snapshot and sending mail")
	return cmd
}
