package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// FamilyCmd returns the family command
func FamilyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "family",
		Short: "Show the configured family",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			overview, err := wire.FamilyService().GetFamily(ctx, familyID)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s (%s)\n\n", overview.Family.ID, overview.Family.Name, overview.Family.Mode)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GUARDIAN\tLABEL\tNAME\tROLE")
			for _, g := range overview.Guardians {
				marker := ""
				if g.ID == GetActorID() {
					marker = " (you)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\n", g.ID, g.Label, g.Name, g.Role, marker)
			}
			w.Flush()
			fmt.Println()
			printChildren(overview)
			return nil
		},
	}
	return cmd
}

// GuardianCmd returns the guardian command
func GuardianCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardian",
		Short: "Manage family guardians",
	}
	cmd.AddCommand(guardianAddCmd())
	return cmd
}

func guardianAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add [label]",
		Short: "Add a guardian to the family",
		Long: `Add a guardian with a role label. Cycle days name guardians by label.

Examples:
  custody guardian add mom --name Alex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			g, err := wire.FamilyService().AddGuardian(ctx, primary.AddGuardianRequest{
				FamilyID: familyID,
				Label:    args[0],
				Name:     name,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Added guardian %s (%s)\n", g.ID, g.Label)
			fmt.Printf("  They can join with: custody init --family %s --guardian %s\n", familyID, g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

// ChildCmd returns the child command
func ChildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "child",
		Short: "Manage children",
	}
	cmd.AddCommand(childAddCmd())
	cmd.AddCommand(childListCmd())
	return cmd
}

func childAddCmd() *cobra.Command {
	var dob string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a child to the family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			child, err := wire.FamilyService().AddChild(ctx, primary.AddChildRequest{
				FamilyID:    familyID,
				Name:        args[0],
				DateOfBirth: dob,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Added child %s: %s\n", child.ID, child.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&dob, "dob", "", "Date of birth (YYYY-MM-DD)")
	return cmd
}

func childListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List children and their recorded status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			overview, err := wire.FamilyService().GetFamily(ctx, familyID)
			if err != nil {
				return err
			}
			printChildren(overview)
			return nil
		},
	}
}

func printChildren(overview *primary.FamilyOverview) {
	if len(overview.Children) == 0 {
		fmt.Println("No children yet.")
		fmt.Println()
		fmt.Println("Add one:")
		fmt.Println("  custody child add Noa")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHILD\tNAME\tSTATUS\tSINCE")
	for _, c := range overview.Children {
		since := "-"
		if !c.StatusChangedAt.IsZero() {
			since = c.StatusChangedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, since)
	}
	w.Flush()
}
