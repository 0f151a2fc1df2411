package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"endurance-planner/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errConfigCreated) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planner",
		Short: "Adaptive endurance training plans from your Strava history",
		Long: "Builds a performance profile from synced Strava activities and turns it into a\n" +
			"periodized running or cycling plan. Without a subcommand the terminal UI starts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides log.level")
	cmd.PersistentFlags().String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	cmd.PersistentFlags().String("athlete", "", "athlete ID to act on (defaults to the authenticated athlete)")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newPlanCmd())
	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	app := tui.NewApp(a.athleteID, a.cfg.Display, a.profiles, a.plans, a.syncs)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
