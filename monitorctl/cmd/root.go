package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "monitorctl",
	Short: "Elderly monitoring node CLI",
	Long:  "A command-line tool for operating and querying elderly monitoring ledger nodes.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
