package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"monitorctl/api"
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Query a record's decrypted outcome",
	Run: func(cmd *cobra.Command, args []string) {
		recordID, _ := cmd.Flags().GetUint64("record")
		if recordID == 0 {
			fmt.Println("A record id is required.")
			os.Exit(1)
		}
		outcome, err := api.GetOutcome(recordID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if !outcome.Handled {
			fmt.Printf("Record %d has no applied result yet.\n", recordID)
			return
		}
		fmt.Printf("Record %d: %s\n", recordID, color.New(color.FgHiGreen).Sprint(outcome.Summary))
	},
}

func init() {
	rootCmd.AddCommand(outcomeCmd)
	outcomeCmd.Flags().Uint64("record", 0, "Record id to query (required)")
}
