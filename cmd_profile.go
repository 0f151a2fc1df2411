package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/service"
	"endurance-planner/internal/wizard"
	"endurance-planner/internal/zones"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the performance profile derived from synced activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.profiles.Analyze(cmd.Context(), a.athleteID)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(p.Profile)
			}
			printProfile(p)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the profile as JSON")
	return cmd
}

func printProfile(ap service.AthleteProfile) {
	p := ap.Profile
	fmt.Printf("Level:            %s (%s)\n", p.Tier, p.TierSource)
	fmt.Printf("Activities:       %s, computed %s\n", humanize.Comma(int64(p.SampleCount)), humanize.Time(p.ComputedAt))
	fmt.Printf("Sustained best:   %s/km (%s)\n", zones.FormatPace(p.SustainedBestPace), p.EffortClass)
	fmt.Printf("Average pace:     %s/km\n", zones.FormatPace(p.AveragePace))
	fmt.Printf("Weekly:           %.2f sessions, %.1f km over %d weeks\n", p.WeeklyFrequency, p.WeeklyDistanceKm, p.StatsWeeks)
	if p.SuggestedMaxHeartRate > 0 {
		fmt.Printf("Max heart rate:   %d bpm (observed %d)\n", p.SuggestedMaxHeartRate, p.ObservedMaxHeartRate)
	}
	fmt.Printf("Load:             CTL %.0f  ATL %.0f  TSB %+.0f (%s)\n",
		p.Load.CTL, p.Load.ATL, p.Load.TSB, analysis.FormDescription(p.Load.TSB))

	if !p.HasPaceData() {
		fmt.Println("Race estimates:   not enough running data")
		return
	}
	fmt.Println("Race estimates:")
	for _, e := range p.RaceEstimates {
		fmt.Printf("  %-14s %9s  %s/km  %s confidence\n",
			analysis.GetTargetLabel(e.Name), wizard.FormatClock(e.Seconds), zones.FormatPace(e.PaceMinPerKm()), e.Confidence)
	}
}
