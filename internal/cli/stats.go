package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Print the achievement stats of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		if _, err := b.users.FindByID(uint(userID)); err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}

		stats, err := b.achievements.GetUserStats(cmd.Context(), uint(userID))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(out(cmd))
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}
