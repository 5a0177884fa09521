package main

import (
	"os"

	"github.com/spf13/cobra"

	"spendtrack/internal/ledger"
)

var (
	flagListCategory string
	flagListRecent   bool
	flagListAsc      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Only show this category")
	listCmd.Flags().BoolVar(&flagListRecent, "recent", false, "Only show the last 30 days")
	listCmd.Flags().BoolVar(&flagListAsc, "asc", false, "Oldest first")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	f := ledger.Filter{Category: flagListCategory, RecentOnly: flagListRecent, Order: ledger.Descending}
	if flagListAsc {
		f.Order = ledger.Ascending
	}
	transactions := s.ctrl.History(f)

	if flagJSON {
		return printJSON(transactions)
	}
	writeWarnings(os.Stdout, s.load.Warnings)
	return writeTransactions(os.Stdout, transactions)
}
