package main

import (
	"time"

	"github.com/spf13/cobra"

	"spendtrack/internal/ledger"
	"spendtrack/internal/validator"
)

var (
	flagAddName     string
	flagAddCategory string
	flagAddDate     string
	flagAddValue    string
)

var addCmd = &cobra.Command{
	Use:       "add revenue|expense",
	Short:     "Record a revenue or an expense",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"revenue", "expense"},
	RunE:      runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddName, "name", "", "Transaction name")
	addCmd.Flags().StringVar(&flagAddCategory, "category", "", "Category")
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Date as YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&flagAddValue, "value", "", "Amount, non-negative")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	date := flagAddDate
	if date == "" {
		date = time.Now().Format(validator.DateLayout)
	}

	res, err := s.ctrl.RecordTransaction(cmd.Context(), ledger.Details{
		Name:     flagAddName,
		Category: flagAddCategory,
		Date:     date,
		Type:     args[0],
		Value:    flagAddValue,
	})
	if err != nil {
		return err
	}
	return printResult(res)
}
