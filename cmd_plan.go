package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"endurance-planner/internal/service"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and manage training plans",
	}
	cmd.AddCommand(newPlanShowCmd())
	cmd.AddCommand(newPlanListCmd())
	cmd.AddCommand(newPlanStatusCmd("cancel", "Cancel a pending or active plan"))
	cmd.AddCommand(newPlanStatusCmd("complete", "Mark an active plan as completed"))
	return cmd
}

func newPlanShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [plan-id]",
		Short: "Show a plan's calendar (the active plan by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := loadPlan(cmd.Context(), a, args)
			if err != nil {
				return err
			}
			week, _ := cmd.Flags().GetInt("week")
			printPlan(d, week)
			return nil
		},
	}
	cmd.Flags().Int("week", 0, "only show this week")
	return cmd
}

func newPlanListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the athlete's plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			plans, err := a.plans.ListPlans(cmd.Context(), a.athleteID)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Println("No plans yet. Create one with 'planner generate' or the terminal UI.")
				return nil
			}
			fmt.Printf("%-36s  %-10s  %-28s  %-12s  %5s  %s\n", "ID", "Status", "Name", "Tier", "Weeks", "Created")
			for _, p := range plans {
				fmt.Printf("%-36s  %-10s  %-28s  %-12s  %5d  %s\n",
					p.ID, p.Status, p.Name, p.Tier, p.Weeks, humanize.Time(p.CreatedAt))
			}
			return nil
		},
	}
}

func newPlanStatusCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [plan-id]",
		Short: short + " (the active plan by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := loadPlan(cmd.Context(), a, args)
			if err != nil {
				return err
			}
			if action == "cancel" {
				err = a.plans.Cancel(cmd.Context(), d.Plan.ID)
			} else {
				err = a.plans.Complete(cmd.Context(), d.Plan.ID)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", action, d.Plan.ID, err)
			}
			fmt.Printf("%s: %s\n", d.Plan.Name, action+"d")
			return nil
		},
	}
}

func loadPlan(ctx context.Context, a *app, args []string) (*service.PlanDetail, error) {
	if len(args) == 1 {
		return a.plans.Plan(ctx, args[0])
	}
	d, err := a.plans.ActivePlan(ctx, a.athleteID)
	if errors.Is(err, service.ErrPlanNotFound) {
		return nil, fmt.Errorf("no active plan for athlete %s", a.athleteID)
	}
	return d, err
}

func printPlan(d *service.PlanDetail, only int) {
	p := d.Plan
	fmt.Printf("%s (%s, %s)\n", p.Name, p.Tier, p.Status)
	fmt.Printf("%s to %s, %d weeks, created %s\n",
		p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout), p.Weeks, humanize.Time(p.CreatedAt))
	if p.TargetEventDate != nil {
		fmt.Printf("Event %s\n", p.TargetEventDate.Format(dateLayout))
	}
	if p.TargetTimeMinutes != nil {
		fmt.Printf("Target %.2f min\n", *p.TargetTimeMinutes)
	}
	for _, b := range p.Zones.Bands {
		fmt.Printf("  %-16s %s\n", b.Label, p.Zones.Describe(b.Name))
	}

	if stress := d.WeeklyStress(); only == 0 && len(stress) > 1 {
		data := make([]float64, len(stress))
		for i, s := range stress {
			data[i] = float64(s)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(0),
			asciigraph.Caption("weekly stress"),
		))
	}

	for _, ph := range d.Phases {
		if only != 0 && ph.Week != only {
			continue
		}
		fmt.Printf("\nWeek %d: %s, target stress %d\n", ph.Week, ph.Focus, ph.TargetStress)
		for _, w := range d.Workouts {
			if w.Week != ph.Week {
				continue
			}
			fmt.Printf("  %-10s  %-28s %4d min  stress %3d  %s\n",
				w.Date.Format("Mon Jan 2"), w.Title, w.DurationMinutes, w.Stress, w.TargetZone)
		}
	}
}
