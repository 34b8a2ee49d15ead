package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/custody/internal/core/custody"
	"github.com/example/custody/internal/wire"
)

// HandoffCmd returns the handoffs command
func HandoffCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "handoffs [child]",
		Short: "Show a child's handoff history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			childID, err := resolveChild(ctx, args[0])
			if err != nil {
				return err
			}
			handoffs, err := wire.HandoffService().ListHandoffs(ctx, childID, limit)
			if err != nil {
				return err
			}
			if len(handoffs) == 0 {
				fmt.Println("No handoffs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tFROM\tTO\tITEMS")
			for _, h := range handoffs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					h.ActualAt.In(location()).Format("2006-01-02 15:04"), h.FromGuardian, h.ToGuardian, itemList(h.Items))
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum handoffs to show")
	return cmd
}

func itemList(items []custody.HandoffItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
		if item.FlaggedMissing {
			names[i] += " (missing)"
		}
	}
	return strings.Join(names, ", ")
}
