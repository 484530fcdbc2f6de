package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monitorctl/api"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "List notification feed entries",
	Example: `  monitorctl feed
  monitorctl feed --after 40 --limit 20`,
	Run: func(cmd *cobra.Command, args []string) {
		after, _ := cmd.Flags().GetUint64("after")
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := api.GetFeed(after, limit)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Println("No feed entries.")
			return
		}
		for _, e := range entries {
			subject := fmt.Sprintf("record %d", e.RecordID)
			if e.AlertID != 0 {
				subject = fmt.Sprintf("alert %d", e.AlertID)
			}
			fmt.Printf("  %d. %-28s %s (%s)\n", e.Seq, e.Kind, subject, e.At)
		}
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.Flags().Uint64("after", 0, "Return entries with seq greater than this")
	feedCmd.Flags().Int("limit", 50, "Maximum entries to return")
}
