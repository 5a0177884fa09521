package main

import (
	"github.com/spf13/cobra"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/ledger"
	"spendtrack/internal/validator"
)

var (
	flagDeleteName  string
	flagDeleteDate  string
	flagDeleteValue string
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a transaction by id, or by name, date and value",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&flagDeleteName, "name", "", "Match on name (when no id is given)")
	deleteCmd.Flags().StringVar(&flagDeleteDate, "date", "", "Match on date")
	deleteCmd.Flags().StringVar(&flagDeleteValue, "value", "", "Match on value")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	var key ledger.Key
	if len(args) == 1 {
		key.ID = args[0]
	} else {
		value, err := validator.ParseDecimal(flagDeleteValue)
		if err != nil {
			return apperrors.WithFields(apperrors.ErrValidation,
				[]apperrors.FieldError{{Field: "value", Message: "must be a number"}})
		}
		key = ledger.Key{Name: flagDeleteName, Date: flagDeleteDate, Value: value}
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	res, err := s.ctrl.DeleteTransaction(cmd.Context(), key)
	if err != nil {
		return err
	}
	return printResult(res)
}
