package main

import (
	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget <amount>",
	Short: "Set the starting balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		res, err := s.ctrl.SetBudget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

var thresholdCmd = &cobra.Command{
	Use:   "threshold <amount>",
	Short: "Set the low-balance alert threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		res, err := s.ctrl.SetThreshold(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	rootCmd.AddCommand(budgetCmd, thresholdCmd)
}
