package cli

import (
	"fmt"
	"learnhub_backend/internal/achievement"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(levelCmd)
}

var levelCmd = &cobra.Command{
	Use:   "level <total-xp>",
	Short: "Show the level reached with the given amount of XP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xp, err := strconv.Atoi(args[0])
		if err != nil || xp < 0 {
			return fmt.Errorf("invalid xp %q", args[0])
		}

		level, progress := achievement.LevelFor(xp)
		fmt.Fprintf(out(cmd), "level=%d progress=%d%% next_in=%d\n", level, progress, achievement.XPToNextLevel(xp))
		return nil
	},
}
