package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// OverrideCmd returns the override command
func OverrideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Request and answer one-off schedule changes",
		Long: `Overrides assign a date range to a guardian. A request only takes
effect once the other guardian approves it.`,
	}
	cmd.AddCommand(overrideRequestCmd())
	cmd.AddCommand(overrideRespondCmd("approve", true))
	cmd.AddCommand(overrideRespondCmd("reject", false))
	cmd.AddCommand(overrideListCmd())
	return cmd
}

func overrideRequestCmd() *cobra.Command {
	var (
		from     string
		to       string
		guardian string
		reason   string
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request an override",
		Long: `Request that a guardian has the children for a date range.

Examples:
  custody override request --from 2024-03-15 --to 2024-03-17 --guardian dad --reason "long weekend"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			fromDate, err := custody.ParseDate(from)
			if err != nil {
				return err
			}
			toDate := fromDate
			if to != "" {
				if toDate, err = custody.ParseDate(to); err != nil {
					return err
				}
			}

			o, err := wire.OverrideService().RequestOverride(ctx, primary.RequestOverrideRequest{
				FamilyID:      familyID,
				RequesterID:   GetActorID(),
				From:          fromDate,
				To:            toDate,
				GuardianLabel: guardian,
				Reason:        reason,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Requested override %s: %s..%s for %s\n", o.ID, o.FromDate, o.ToDate, o.OverrideParent)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (default --from)")
	cmd.Flags().StringVar(&guardian, "guardian", "", "Guardian label or ID, or split")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason shown to the other guardian")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("guardian")
	return cmd
}

func overrideRespondCmd(verb string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " [override-id]",
		Short: fmt.Sprintf("%s a pending override", verbTitle(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			o, err := wire.OverrideService().RespondToOverride(ctx, primary.RespondToOverrideRequest{
				OverrideID:  args[0],
				ResponderID: GetActorID(),
				Approve:     approve,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Override %s %s\n", o.ID, o.Status)
			return nil
		},
	}
}

func verbTitle(verb string) string {
	if verb == "" {
		return verb
	}
	return strings.ToUpper(verb[:1]) + verb[1:]
}

func overrideListCmd() *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			filter := make([]custody.OverrideStatus, len(statuses))
			for i, s := range statuses {
				filter[i] = custody.OverrideStatus(s)
			}
			overrides, err := wire.OverrideService().ListOverrides(ctx, familyID, filter...)
			if err != nil {
				return err
			}
			if len(overrides) == 0 {
				fmt.Println("No overrides found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFROM\tTO\tWITH\tSTATUS\tREASON")
			for _, o := range overrides {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.FromDate, o.ToDate, o.OverrideParent, o.Status, o.Reason)
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (pending, approved, rejected)")
	return cmd
}
