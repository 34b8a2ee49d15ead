package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/cli"
	"github.com/example/custody/internal/version"
)

func main() {
	var actor string

	rootCmd := &cobra.Command{
		Use:     "custody",
		Short:   "Custody - shared custody schedule and handoff tracker",
		Version: version.String(),
		Long: `Custody tracks which guardian has the children each day, where the
children actually are, and which pickups and dropoffs still need doing.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.DetectAndStoreActor(actor)
		},
	}
	rootCmd.PersistentFlags().StringVar(&actor, "as", "", "Act as this guardian ID instead of the configured one")

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.FamilyCmd())
	rootCmd.AddCommand(cli.GuardianCmd())
	rootCmd.AddCommand(cli.ChildCmd())

	// Schedule
	rootCmd.AddCommand(cli.CycleCmd())
	rootCmd.AddCommand(cli.CalendarCmd())
	rootCmd.AddCommand(cli.OverrideCmd())
	rootCmd.AddCommand(cli.EventCmd())

	// Day to day
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.WatchCmd())
	rootCmd.AddCommand(cli.PickupCmd())
	rootCmd.AddCommand(cli.DropoffCmd())
	rootCmd.AddCommand(cli.BriefCmd())
	rootCmd.AddCommand(cli.HandoffCmd())
	rootCmd.AddCommand(cli.LogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
