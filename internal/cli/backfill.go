package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(recomputeCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Create stats and zero-progress achievement records for every user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		ids, err := b.users.FindAllIDs()
		if err != nil {
			return err
		}

		for _, id := range ids {
			if err := b.achievements.Backfill(cmd.Context(), id); err != nil {
				return fmt.Errorf("backfill user %d: %w", id, err)
			}
		}
		fmt.Fprintf(out(cmd), "backfilled %d users\n", len(ids))
		return nil
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute-levels",
	Short: "Recompute level and level progress from total XP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		fixed, err := b.achievements.RecomputeLevels(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "updated %d rows\n", fixed)
		return nil
	},
}
