package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timeclock",
	Short: "timeclock – a conversational time-tracking bot",
	Long: `timeclock runs a Telegram bot that lets field workers clock in and out
with location verification. Records land in a Google spreadsheet, one
worksheet per operator.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sheetsCmd)
}
