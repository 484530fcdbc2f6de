package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"monitorctl/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query node status and ledger counters",
	Example: `  monitorctl status
  monitorctl status --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		status, err := api.GetStatus()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if output == "json" {
			fmt.Println(status.ToJSON())
			return
		}
		fmt.Printf("Version: %s\n", status.Version)
		fmt.Printf("Records: %d\nAlerts: %d\nFeed Length: %d\n", status.Records, status.Alerts, status.FeedLength)
		open := fmt.Sprintf("%d", status.OpenRequests)
		if status.OpenRequests > 0 {
			open = color.New(color.FgYellow).Sprintf("%d", status.OpenRequests)
		}
		fmt.Printf("Open Requests: %s\n", open)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("output", "o", "plain", "Output format: plain|json")
}
