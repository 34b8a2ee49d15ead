package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/config"
	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/db"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var (
		name       string
		mode       string
		label      string
		ownerName  string
		dbPath     string
		timezone   string
		familyID   string
		guardianID string
		demo       bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a family and point this directory at it",
		Long: `Create a family with you as its first guardian and write
.custody/config.yaml in the current directory.

Use --family and --guardian to join a family created elsewhere, or --demo
to load a two-guardian demo family with a 14-day cycle.

Examples:
  custody init --name "Rivera family" --label dad --owner Sam
  custody init --name "Just us" --mode solo --label mom
  custody init --family fam-... --guardian g-...
  custody init --demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			if _, err := os.Stat(config.Path(dir)); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.Path(dir))
			}

			cfg := config.Default()
			cfg.DBPath = dbPath
			if timezone != "" {
				cfg.Timezone = timezone
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			wire.Configure(cfg)

			switch {
			case demo:
				if cfg.DBPath != "" {
					db.SetPath(cfg.DBPath)
				}
				database, err := db.GetDB()
				if err != nil {
					return err
				}
				if err := db.SeedFixtures(database, time.Now()); err != nil {
					return err
				}
				cfg.FamilyID = db.DemoFamilyID
				cfg.GuardianID = db.DemoDadID
				if label == "mom" {
					cfg.GuardianID = db.DemoMomID
				}
				fmt.Println("✓ Loaded demo family")

			case familyID != "":
				overview, err := wire.FamilyService().GetFamily(NewContext(), familyID)
				if err != nil {
					return err
				}
				if !hasGuardian(overview, guardianID) {
					return fmt.Errorf("guardian %q is not a member of family %s", guardianID, familyID)
				}
				cfg.FamilyID = familyID
				cfg.GuardianID = guardianID
				fmt.Printf("✓ Joined family %s: %s\n", overview.Family.ID, overview.Family.Name)

			default:
				if name == "" || label == "" {
					return fmt.Errorf("--name and --label are required (or use --family/--guardian or --demo)")
				}
				resp, err := wire.FamilyService().CreateFamily(NewContext(), primary.CreateFamilyRequest{
					Name:       name,
					Mode:       custody.FamilyMode(mode),
					OwnerLabel: label,
					OwnerName:  ownerName,
				})
				if err != nil {
					return err
				}
				cfg.FamilyID = resp.Family.ID
				cfg.GuardianID = resp.Owner.ID
				fmt.Printf("✓ Created family %s: %s (%s)\n", resp.Family.ID, resp.Family.Name, resp.Family.Mode)
				fmt.Printf("  You: %s (%s)\n", resp.Owner.ID, resp.Owner.Label)
			}

			if err := config.SaveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n", config.Path(dir))
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  custody child add Noa")
			fmt.Println("  custody cycle set --file cycle.jsonc")
			fmt.Println("  custody status")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Family name")
	cmd.Flags().StringVar(&mode, "mode", string(custody.ModeCoParent), "Family mode: solo or co-parent")
	cmd.Flags().StringVar(&label, "label", "", "Your role label, e.g. dad or mom")
	cmd.Flags().StringVar(&ownerName, "owner", "", "Your display name")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path (default ~/.custody/custody.db)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone of the family (default Local)")
	cmd.Flags().StringVar(&familyID, "family", "", "Join an existing family")
	cmd.Flags().StringVar(&guardianID, "guardian", "", "Your guardian ID in the joined family")
	cmd.Flags().BoolVar(&demo, "demo", false, "Load the demo family")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	return cmd
}

func hasGuardian(overview *primary.FamilyOverview, id string) bool {
	for _, g := range overview.Guardians {
		if g.ID == id {
			return true
		}
	}
	return false
}
