package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagClearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every transaction and reset budget and threshold",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if !flagClearYes {
		fmt.Print("  This deletes all transaction history. Continue? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("  Aborted.")
			return nil
		}
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	res, err := s.ctrl.ClearAll(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(res)
}
