package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the family audit trail",
	Long:  "View and prune the record of who changed what in the family",
}

var logTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent activity",
	Long:  "Show recent audit entries (default 50)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		limit, _ := cmd.Flags().GetInt("limit")
		actorID, _ := cmd.Flags().GetString("actor")
		entityType, _ := cmd.Flags().GetString("type")
		action, _ := cmd.Flags().GetString("action")

		if limit <= 0 {
			limit = 50
		}

		entries, err := wire.LogService().ListLogs(ctx, primary.LogFilters{
			FamilyID:   wire.Config().FamilyID,
			ActorID:    actorID,
			EntityType: entityType,
			Action:     action,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}

		printLogEntries(entries)
		return nil
	},
}

var logShowCmd = &cobra.Command{
	Use:   "show [entity-id]",
	Short: "Show activity for a specific entity",
	Long:  "Show the history of one child, event, override, or cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := wire.LogService().ListLogs(ctx, primary.LogFilters{
			FamilyID: wire.Config().FamilyID,
			EntityID: args[0],
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}

		printLogEntries(entries)
		return nil
	},
}

var logPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old log entries",
	Long:  "Delete log entries older than the specified number of days (default 90)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		days, _ := cmd.Flags().GetInt("days")

		count, err := wire.LogService().PruneLogs(ctx, days)
		if err != nil {
			return fmt.Errorf("failed to prune logs: %w", err)
		}

		if count == 0 {
			fmt.Printf("No log entries older than %d days found.\n", days)
		} else {
			fmt.Printf("Pruned %d log entries older than %d days.\n", count, days)
		}
		return nil
	},
}

func printLogEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries found.")
		return
	}

	// Oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		printLogEntry(entries[i])
	}
}

func printLogEntry(entry *primary.LogEntry) {
	actorStr := entry.ActorID
	if actorStr == "" {
		actorStr = "-"
	}

	fmt.Printf("%s | %-12s | %s %s | %s/%s",
		formatTimestamp(entry.CreatedAt),
		actorStr,
		getActionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)

	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Printf(" | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}

	fmt.Println()
}

func getActionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.In(location()).Format("2006-01-02 15:04:05")
}

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	logTailCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
	logTailCmd.Flags().String("actor", "", "Filter by guardian ID")
	logTailCmd.Flags().String("type", "", "Filter by entity type")
	logTailCmd.Flags().String("action", "", "Filter by action (create, update, delete)")

	logShowCmd.Flags().IntP("limit", "n", 100, "Maximum entries to show")

	logPruneCmd.Flags().Int("days", 90, "Delete entries older than N days")

	logCmd.AddCommand(logTailCmd)
	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logPruneCmd)

	return logCmd
}
