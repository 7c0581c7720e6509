package cli

import (
	"fmt"
	"learnhub_backend/internal/achievement"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List every achievement definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMAX\tXP\tBADGE\tCATEGORY")
		for _, def := range achievement.All() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				def.ID, def.Title, def.MaxProgress, def.RewardXP, def.RewardBadge, def.Category)
		}
		return w.Flush()
	},
}
