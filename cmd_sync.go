package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"endurance-planner/internal/service"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the athlete and new activities from Strava",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			progress := make(chan service.SyncProgress, 16)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for p := range progress {
					if p.Phase == "activities" && !p.Completed {
						fmt.Printf("\r  fetched %s activities", humanize.Comma(int64(p.Fetched)))
					}
				}
				fmt.Println()
			}()

			result, err := a.syncs.SyncAll(cmd.Context(), progress)
			<-done
			if err != nil {
				return err
			}

			fmt.Printf("Synced athlete %s: %s activities fetched, %s stored\n",
				result.AthleteID,
				humanize.Comma(int64(result.ActivitiesFetched)),
				humanize.Comma(int64(result.ActivitiesStored)))
			for _, e := range result.Errors {
				fmt.Printf("  warning: %v\n", e)
			}

			short, daily := a.strava.RateLimitStatus()
			fmt.Printf("API requests left: %d (15min), %s (daily)\n", short, humanize.Comma(int64(daily)))
			return nil
		},
	}
}
