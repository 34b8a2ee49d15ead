package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

const eventTimeLayout = "2006-01-02 15:04"

// EventCmd returns the event command
func EventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage calendar events",
	}
	cmd.AddCommand(eventAddCmd())
	cmd.AddCommand(eventUpdateCmd())
	cmd.AddCommand(eventCancelCmd())
	cmd.AddCommand(eventListCmd())
	return cmd
}

func eventAddCmd() *cobra.Command {
	var (
		title    string
		start    string
		end      string
		allDay   bool
		place    string
		notes    string
		children []string
		items    []string
	)

	cmd := &cobra.Command{
		Use:   "add [type]",
		Short: "Add an event",
		Long: `Add an event of type school, activity, pickup, dropoff, or other.
Events on the other guardian's days need their approval.

Examples:
  custody event add school --start "2024-03-11 08:30" --end "2024-03-11 15:00" --child Noa
  custody event add activity --title Swim --location Pool --start "2024-03-12 16:00" --child Noa --item goggles`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}

			startAt, err := time.ParseInLocation(eventTimeLayout, start, location())
			if err != nil {
				return fmt.Errorf("invalid --start %q (want %q): %w", start, eventTimeLayout, err)
			}
			var endAt *time.Time
			if end != "" {
				t, err := time.ParseInLocation(eventTimeLayout, end, location())
				if err != nil {
					return fmt.Errorf("invalid --end %q (want %q): %w", end, eventTimeLayout, err)
				}
				endAt = &t
			}

			childIDs := make([]string, 0, len(children))
			for _, c := range children {
				id, err := resolveChild(ctx, c)
				if err != nil {
					return err
				}
				childIDs = append(childIDs, id)
			}

			event, err := wire.EventService().CreateEvent(ctx, primary.CreateEventRequest{
				FamilyID:      familyID,
				CreatorID:     GetActorID(),
				Type:          custody.EventType(args[0]),
				Title:         title,
				Description:   notes,
				Location:      place,
				Start:         startAt,
				End:           endAt,
				AllDay:        allDay,
				ChildIDs:      childIDs,
				BackpackItems: items,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created event %s: %s (%s)\n", event.ID, event.Title, event.Status)
			if event.Status == custody.EventPendingApproval {
				fmt.Println("  This is the other guardian's day; they need to approve it.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title (default the type)")
	cmd.Flags().StringVar(&start, "start", "", `Start time ("YYYY-MM-DD HH:MM")`)
	cmd.Flags().StringVar(&end, "end", "", "End time")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().StringVar(&place, "location", "", "Location")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringSliceVar(&children, "child", nil, "Child name or ID (repeatable)")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Backpack item (repeatable)")
	cmd.MarkFlagRequired("start")
	return cmd
}

func eventUpdateCmd() *cobra.Command {
	var (
		eventType string
		title     string
		start     string
		end       string
		noEnd     bool
		allDay    bool
		place     string
		notes     string
		children  []string
		items     []string
	)

	cmd := &cobra.Command{
		Use:   "update [event-id]",
		Short: "Change an event",
		Long: `Change the flags you pass and keep everything else. --child and --item
replace the whole list. Moving an event onto the other guardian's day
needs their approval again.

Examples:
  custody event update 3f2a... --start "2024-03-12 16:30" --end "2024-03-12 18:00"
  custody event update 3f2a... --child Noa --child Eli --item goggles`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			flags := cmd.Flags()
			req := primary.UpdateEventRequest{EventID: args[0], EditorID: GetActorID(), ClearEnd: noEnd}

			if flags.Changed("type") {
				t := custody.EventType(eventType)
				req.Type = &t
			}
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("notes") {
				req.Notes = &notes
			}
			if flags.Changed("location") {
				req.Location = &place
			}
			if flags.Changed("all-day") {
				req.AllDay = &allDay
			}
			if flags.Changed("start") {
				t, err := time.ParseInLocation(eventTimeLayout, start, location())
				if err != nil {
					return fmt.Errorf("invalid --start %q (want %q): %w", start, eventTimeLayout, err)
				}
				req.Start = &t
			}
			if flags.Changed("end") {
				t, err := time.ParseInLocation(eventTimeLayout, end, location())
				if err != nil {
					return fmt.Errorf("invalid --end %q (want %q): %w", end, eventTimeLayout, err)
				}
				req.End = &t
			}
			if flags.Changed("child") {
				req.ChildIDs = make([]string, 0, len(children))
				for _, c := range children {
					id, err := resolveChild(ctx, c)
					if err != nil {
						return err
					}
					req.ChildIDs = append(req.ChildIDs, id)
				}
			}
			if flags.Changed("item") {
				req.BackpackItems = append([]string{}, items...)
			}

			event, err := wire.EventService().UpdateEvent(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Updated event %s: %s (%s)\n", event.ID, event.Title, event.Status)
			if event.Status == custody.EventPendingApproval {
				fmt.Println("  This is the other guardian's day; they need to approve it.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "Event type")
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&start, "start", "", `Start time ("YYYY-MM-DD HH:MM")`)
	cmd.Flags().StringVar(&end, "end", "", "End time")
	cmd.Flags().BoolVar(&noEnd, "no-end", false, "Remove the end time")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().StringVar(&place, "location", "", "Location")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringSliceVar(&children, "child", nil, "Child name or ID (repeatable, replaces the list)")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Backpack item (repeatable, replaces the list)")
	return cmd
}

func eventCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [event-id]",
		Short: "Cancel an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.EventService().CancelEvent(NewContext(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Cancelled event %s\n", args[0])
			return nil
		},
	}
}

func eventListCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			familyID, err := requireFamily(wire.Config())
			if err != nil {
				return err
			}
			now := time.Now().In(location())
			from := custody.DateOf(now).At(custody.TimeOfDay{}, location())
			events, err := wire.EventService().ListEvents(ctx, familyID, from, from.AddDate(0, 0, days))
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No events found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTART\tTYPE\tTITLE\tSTATUS\tBACKPACK")
			for _, e := range events {
				items, _ := custody.ParseDescription(e.Description)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Start.In(location()).Format(eventTimeLayout), e.Type, e.Title, e.Status, strings.Join(items, ", "))
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Number of days ahead")
	return cmd
}
