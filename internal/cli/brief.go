package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// BriefCmd returns the brief command
func BriefCmd() *cobra.Command {
	var today bool

	cmd := &cobra.Command{
		Use:   "brief [child]",
		Short: "Catch up on a child's events",
		Long: `List what happened since you last handed the child over (up to five
days back), or just today's events with --today.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			childID, err := resolveChild(ctx, args[0])
			if err != nil {
				return err
			}
			mode := primary.BriefSinceLastSeen
			if today {
				mode = primary.BriefToday
			}
			brief, err := wire.BriefService().GenerateBrief(ctx, primary.BriefRequest{ChildID: childID, Mode: mode})
			if err != nil {
				return err
			}

			switch {
			case mode == primary.BriefToday:
				fmt.Printf("%s today\n", brief.ChildName)
			case brief.HadHandoff:
				fmt.Printf("%s since you handed over on %s\n", brief.ChildName, brief.Since.In(location()).Format("Mon Jan 2 15:04"))
			default:
				fmt.Printf("%s over the last %d days\n", brief.ChildName, primary.BriefMaxDays)
			}
			fmt.Println()

			if len(brief.Items) == 0 {
				fmt.Println("Nothing on the calendar.")
				return nil
			}
			for _, item := range brief.Items {
				fmt.Printf("%-10s %s %s\n", item.When, color.New(color.Bold).Sprint(item.Event.Title), eventWhere(item.Event.Location))
				if item.Notes != "" {
					fmt.Printf("           %s\n", item.Notes)
				}
				if len(item.Backpack) > 0 {
					fmt.Printf("           %s %s\n", color.New(color.FgCyan).Sprint("backpack:"), strings.Join(item.Backpack, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "Only today's events")
	return cmd
}

func eventWhere(place string) string {
	if place == "" {
		return ""
	}
	return "@ " + place
}
