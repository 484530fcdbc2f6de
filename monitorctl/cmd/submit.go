package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monitorctl/api"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit encrypted observation handles (record, alert)",
}

var submitRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Submit an encrypted sensor record",
	Run: func(cmd *cobra.Command, args []string) {
		device, _ := cmd.Flags().GetString("device")
		activity, _ := cmd.Flags().GetString("activity-handle")
		sleep, _ := cmd.Flags().GetString("sleep-handle")
		bearer, _ := cmd.Flags().GetString("bearer")
		if bearer == "" {
			bearer = os.Getenv("API_JWT_SECRET")
		}
		if activity == "" || sleep == "" {
			fmt.Println("Activity and sleep handles are required.")
			os.Exit(1)
		}
		receipt, err := api.SubmitRecord(device, activity, sleep, bearer)
		if err != nil {
			fmt.Println("Submission failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Record accepted with id %v\n", receipt["recordId"])
	},
}

var submitAlertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Submit an encrypted alert",
	Run: func(cmd *cobra.Command, args []string) {
		device, _ := cmd.Flags().GetString("device")
		payload, _ := cmd.Flags().GetString("payload-handle")
		bearer, _ := cmd.Flags().GetString("bearer")
		if bearer == "" {
			bearer = os.Getenv("API_JWT_SECRET")
		}
		if payload == "" {
			fmt.Println("A payload handle is required.")
			os.Exit(1)
		}
		receipt, err := api.SubmitAlert(device, payload, bearer)
		if err != nil {
			fmt.Println("Submission failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Alert accepted with id %v\n", receipt["alertId"])
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.AddCommand(submitRecordCmd)
	submitCmd.AddCommand(submitAlertCmd)
	submitRecordCmd.Flags().String("device", "", "Submitting device id")
	submitRecordCmd.Flags().String("activity-handle", "", "Hex handle of the encrypted activity window (required)")
	submitRecordCmd.Flags().String("sleep-handle", "", "Hex handle of the encrypted sleep window (required)")
	submitRecordCmd.Flags().String("bearer", "", "API bearer secret (defaults to API_JWT_SECRET)")
	submitAlertCmd.Flags().String("device", "", "Submitting device id")
	submitAlertCmd.Flags().String("payload-handle", "", "Hex handle of the encrypted alert payload (required)")
	submitAlertCmd.Flags().String("bearer", "", "API bearer secret (defaults to API_JWT_SECRET)")
}
