package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// cycleFile is the on-disk shape accepted by `cycle set --file`. Comments
// and trailing commas are allowed.
type cycleFile struct {
	ValidFrom          string          `json:"valid_from"`
	DefaultHandoffTime string          `json:"default_handoff_time"`
	Days               json.RawMessage `json:"days"`
}

// CycleCmd returns the cycle command
func CycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Manage the repeating custody cycle",
		Long: `Set and inspect the family's custody cycle. Each change creates a new
version; earlier versions stay in effect for the dates they covered.`,
	}
	cmd.AddCommand(cycleSetCmd())
	cmd.AddCommand(cycleShowCmd())
	cmd.AddCommand(cycleHistoryCmd())
	return cmd
}

func cycleSetCmd() *cobra.Command {
	var (
		file      string
		days      string
		validFrom string
		handoff   string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a new cycle version",
		Long: `Set a new cycle version from a JSONC file or an inline list of labels.

A cycle file looks like:

  {
    "valid_from": "2024-03-03",        // aligned to the Sunday on or before
    "default_handoff_time": "17:00",
    "days": ["dad", "dad", "dad", "dad", "dad", "dad", "dad",
             "mom", "mom", "mom", "mom", "mom", "mom",
             {"parent_label": "mom", "allocations": [{"child_id": "c1", "parent_label": "dad"}]}],
  }

Examples:
  custody cycle set --file cycle.jsonc
  custody cycle set --days dad,dad,mom,mom,split,dad,mom --from 2024-03-03 --handoff 18:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}

			req := primary.SetCycleRequest{FamilyID: familyID}
			switch {
			case file != "":
				parsed, err := readCycleFile(file)
				if err != nil {
					return err
				}
				req = parsed
				req.FamilyID = familyID
			case days != "":
				for _, label := range strings.Split(days, ",") {
					req.Slots = append(req.Slots, custody.Slot{ParentLabel: strings.TrimSpace(label)})
				}
			default:
				return fmt.Errorf("either --file or --days is required")
			}

			if validFrom != "" {
				d, err := custody.ParseDate(validFrom)
				if err != nil {
					return err
				}
				req.ValidFrom = d
			}
			if req.ValidFrom.IsZero() {
				req.ValidFrom = custody.DateOf(time.Now().In(location()))
			}
			if handoff != "" {
				tod, err := custody.ParseTimeOfDay(handoff)
				if err != nil {
					return err
				}
				req.DefaultHandoffTime = &tod
			}
			req.Length = len(req.Slots)

			cycle, err := wire.CycleService().SetCycle(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Cycle version %d set: %d days from %s\n", cycle.VersionNumber, cycle.Length, cycle.ValidFrom)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONC cycle file")
	cmd.Flags().StringVar(&days, "days", "", "Comma-separated day labels")
	cmd.Flags().StringVar(&validFrom, "from", "", "First date of the new version (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&handoff, "handoff", "", "Default handoff time (HH:MM)")
	return cmd
}

// readCycleFile parses a JSONC cycle file into a request without family.
func readCycleFile(path string) (primary.SetCycleRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return primary.SetCycleRequest{}, fmt.Errorf("failed to read cycle file: %w", err)
	}
	return parseCycleFile(data)
}

func parseCycleFile(data []byte) (primary.SetCycleRequest, error) {
	var f cycleFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return primary.SetCycleRequest{}, fmt.Errorf("failed to parse cycle file: %w", err)
	}
	if len(f.Days) == 0 {
		return primary.SetCycleRequest{}, fmt.Errorf("cycle file has no days")
	}
	slots, err := custody.DecodeCycleData(f.Days)
	if err != nil {
		return primary.SetCycleRequest{}, err
	}

	req := primary.SetCycleRequest{Slots: slots, Length: len(slots)}
	if f.ValidFrom != "" {
		if req.ValidFrom, err = custody.ParseDate(f.ValidFrom); err != nil {
			return primary.SetCycleRequest{}, err
		}
	}
	if f.DefaultHandoffTime != "" {
		tod, err := custody.ParseTimeOfDay(f.DefaultHandoffTime)
		if err != nil {
			return primary.SetCycleRequest{}, err
		}
		req.DefaultHandoffTime = &tod
	}
	return req, nil
}

func cycleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cycle in effect today",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			today := custody.DateOf(time.Now().In(location()))
			cycle, err := wire.CycleService().GetActiveCycle(ctx, familyID, today)
			if err != nil {
				return err
			}
			if cycle == nil {
				fmt.Println("No cycle set.")
				fmt.Println()
				fmt.Println("Set one:")
				fmt.Println("  custody cycle set --days dad,dad,dad,dad,dad,dad,dad,mom,mom,mom,mom,mom,mom,mom")
				return nil
			}

			fmt.Printf("Version %d, %d days, valid from %s", cycle.VersionNumber, cycle.Length, cycle.ValidFrom)
			if cycle.ValidUntil != nil {
				fmt.Printf(" until %s", cycle.ValidUntil)
			}
			fmt.Println()
			if cycle.DefaultHandoffTime != nil {
				fmt.Printf("Handoff at %s\n", cycle.DefaultHandoffTime)
			}
			fmt.Println()

			epoch := custody.CycleEpoch(cycle.ValidFrom)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DAY\tWEEKDAY\tWITH\tPER CHILD")
			for i, slot := range cycle.Slots {
				var per []string
				for _, a := range slot.Allocations {
					per = append(per, a.ChildID+"="+a.ParentLabel)
				}
				label := slot.ParentLabel
				if label == "" {
					label = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, epoch.AddDays(i).Weekday().String()[:3], label, strings.Join(per, " "))
			}
			w.Flush()
			return nil
		},
	}
}

func cycleHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List every cycle version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			cycles, err := wire.CycleService().ListCycles(ctx, familyID)
			if err != nil {
				return err
			}
			if len(cycles) == 0 {
				fmt.Println("No cycle set.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tDAYS\tFROM\tUNTIL\tID")
			for _, c := range cycles {
				until := "active"
				if c.ValidUntil != nil {
					until = c.ValidUntil.String()
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", c.VersionNumber, c.Length, c.ValidFrom, until, c.ID)
			}
			w.Flush()
			return nil
		},
	}
}

// CalendarCmd returns the calendar command
func CalendarCmd() *cobra.Command {
	var (
		from string
		days int
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show who has the children each day",
		Long: `Show the cycle with approved overrides applied, from your point of view.
Days with a pending override are marked.

Examples:
  custody calendar
  custody calendar --from 2024-03-01 --days 31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}

			start := custody.SundayOnOrBefore(custody.DateOf(time.Now().In(location())))
			if from != "" {
				if start, err = custody.ParseDate(from); err != nil {
					return err
				}
			}
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			_, err = wire.CalendarAdapter().Show(ctx, primary.CalendarRequest{
				FamilyID: familyID,
				ViewerID: GetActorID(),
				From:     start,
				To:       start.AddDays(days - 1),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (default the Sunday of this week)")
	cmd.Flags().IntVar(&days, "days", 14, "Number of days to show")
	return cmd
}

// location returns the configured family time zone.
func location() *time.Location {
	loc, err := wire.Config().Location()
	if err != nil {
		return time.Local
	}
	return loc
}
