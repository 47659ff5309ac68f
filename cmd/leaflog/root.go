package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leaflog",
	Short: "leaflog - track your reading, page by page",
	Long:  "leaflog keeps a ledger of reading progress per book, with sessions for every attempt.",
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPagesCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newServeCmd())
}
