package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push locally saved transactions and retry failed deletes",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	res, err := s.ctrl.Sync(cmd.Context())
	if err != nil {
		return err
	}
	if !flagJSON {
		r := res.Sync
		fmt.Printf("  Pushed %d, deleted %d, %d still pending, %d still orphaned\n\n",
			r.Pushed, r.Deleted, r.StillPending, r.StillOrphaned)
	}
	return printResult(res)
}
