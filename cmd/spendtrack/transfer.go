package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spendtrack/internal/csvio"
	"spendtrack/internal/reconcile"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Replace the local transaction list with a CSV file",
	Long:  "Replace the local transaction list with the rows of a CSV file. Invalid rows are skipped and listed. Imported rows stay local until `spendtrack sync`.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [file.csv]",
	Short: "Write the transaction list as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	res, err := s.ctrl.ImportCSV(cmd.Context(), f)
	if err != nil {
		return err
	}
	return printResult(res)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := csvio.Filename
	if len(args) == 1 {
		path = args[0]
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	if path == "-" {
		_, err := s.ctrl.ExportCSV(cmd.Context(), os.Stdout)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exportTo(cmd.Context(), s.ctrl, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "  Wrote %s\n", path)
	return nil
}

// exportTo writes the ledger to w and closes it. A failed close means the
// file is incomplete.
func exportTo(ctx context.Context, ctrl *reconcile.Controller, w io.WriteCloser) error {
	if _, err := ctrl.ExportCSV(ctx, w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
