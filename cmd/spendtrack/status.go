package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendtrack/internal/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show budget, totals and balance",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	res := s.load
	if flagJSON {
		return printJSON(res)
	}

	fmt.Printf("  Source:    %s\n", res.Source)
	writeResult(os.Stdout, res)

	pending, orphaned := 0, 0
	for _, t := range s.ctrl.History(ledger.Filter{}) {
		switch t.State {
		case ledger.Pending:
			pending++
		case ledger.Orphaned:
			orphaned++
		}
	}
	if pending > 0 || orphaned > 0 {
		fmt.Printf("\n  %d pending, %d orphaned. Run `spendtrack sync` to reconcile.\n", pending, orphaned)
	}
	return nil
}
