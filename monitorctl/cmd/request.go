package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monitorctl/api"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Dispatch oracle decryption requests (anomaly, alert)",
}

var requestAnomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Request anomaly detection for a record",
	Example: `  monitorctl request anomaly --record 12
  monitorctl request anomaly --record 12 --token "$CAREGIVER_TOKEN"`,
	Run: func(cmd *cobra.Command, args []string) {
		recordID, _ := cmd.Flags().GetUint64("record")
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("CAREGIVER_TOKEN")
		}
		if recordID == 0 {
			fmt.Println("A record id is required.")
			os.Exit(1)
		}
		out, err := api.RequestAnomaly(recordID, token)
		if err != nil {
			fmt.Println("Request failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Dispatched request %v for record %d\n", out["requestId"], recordID)
	},
}

var requestAlertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Request decryption of an alert payload",
	Run: func(cmd *cobra.Command, args []string) {
		alertID, _ := cmd.Flags().GetUint64("alert")
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = os.Getenv("CAREGIVER_TOKEN")
		}
		if alertID == 0 {
			fmt.Println("An alert id is required.")
			os.Exit(1)
		}
		out, err := api.RequestAlertDecryption(alertID, token)
		if err != nil {
			fmt.Println("Request failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Dispatched request %v for alert %d\n", out["requestId"], alertID)
	},
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.AddCommand(requestAnomalyCmd)
	requestCmd.AddCommand(requestAlertCmd)
	requestAnomalyCmd.Flags().Uint64("record", 0, "Record id to analyze (required)")
	requestAnomalyCmd.Flags().String("token", "", "Caregiver capability token (defaults to CAREGIVER_TOKEN)")
	requestAlertCmd.Flags().Uint64("alert", 0, "Alert id to decrypt (required)")
	requestAlertCmd.Flags().String("token", "", "Caregiver capability token (defaults to CAREGIVER_TOKEN)")
}
