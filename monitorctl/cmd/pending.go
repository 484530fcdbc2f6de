package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"monitorctl/api"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List registered oracle correlations (dev nodes only)",
	Run: func(cmd *cobra.Command, args []string) {
		list, err := api.GetPending()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Correlations: %d total, %d open\n", list.Total, list.Open)
		for _, r := range list.Requests {
			state := color.New(color.FgYellow).Sprint("open")
			if r.Completed {
				state = color.New(color.FgHiGreen).Sprint("done")
			}
			subject := fmt.Sprintf("record %d", r.RecordID)
			if r.Kind == "alert" {
				subject = fmt.Sprintf("alert %d", r.AlertID)
			}
			fmt.Printf("  %s  %-18s %-12s %s\n", r.RequestID, r.Kind, subject, state)
		}
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}
