package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// PickupCmd returns the pickup command
func PickupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pickup [child]",
		Short: "Confirm you have picked up a child",
		Long: `Record that you now have the child. If the schedule says someone else
has the children today, nothing is recorded unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			childID, err := resolveChild(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := wire.CustodyService().ConfirmPickup(ctx, primary.PickupRequest{
				ChildID: childID,
				Force:   force,
			})
			if err != nil {
				return err
			}
			if result.UnexpectedGuardian {
				fmt.Println(color.New(color.FgYellow).Sprintf("⚠ Today is scheduled for %s.", result.ExpectedLabel))
				return fmt.Errorf("%w; re-run with --force to record the pickup anyway", custody.ErrUnexpectedGuardian)
			}
			fmt.Printf("%s %s is %s\n", color.New(color.FgGreen).Sprint("✓"), result.Child.Name, result.Child.Status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Record the pickup even on the other guardian's day")
	return cmd
}

// DropoffCmd returns the dropoff command
func DropoffCmd() *cobra.Command {
	var (
		place string
		items []string
	)

	cmd := &cobra.Command{
		Use:   "dropoff [child]",
		Short: "Confirm you have dropped off a child",
		Long: `Record where you left the child: school, an activity, or the other
guardian. Handing over to the other guardian records a handoff.

Examples:
  custody dropoff Noa --at school
  custody dropoff Noa --at mom --item "swim bag" --item inhaler`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			childID, err := resolveChild(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := wire.CustodyService().ConfirmDropoff(ctx, primary.DropoffRequest{
				ChildID:  childID,
				Location: place,
				Items:    items,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s %s is %s\n", color.New(color.FgGreen).Sprint("✓"), result.Child.Name, result.Child.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&place, "at", "", "Where the child is now: school, activity, or the other guardian's label")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Item handed over (repeatable)")
	cmd.MarkFlagRequired("at")
	return cmd
}
