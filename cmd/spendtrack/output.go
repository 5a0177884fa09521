package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/ledger"
	"spendtrack/internal/reconcile"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders a command result, or its JSON form with --json.
func printResult(res *reconcile.Result) error {
	if flagJSON {
		return printJSON(res)
	}
	writeResult(os.Stdout, res)
	return nil
}

func writeResult(w io.Writer, res *reconcile.Result) {
	s := res.Snapshot
	fmt.Fprintf(w, "  Budget:    %s\n", s.Budget.StringFixed(2))
	fmt.Fprintf(w, "  Revenue:   %s\n", s.Revenue.StringFixed(2))
	fmt.Fprintf(w, "  Expenses:  %s\n", s.Expenses.StringFixed(2))
	fmt.Fprintf(w, "  Balance:   %s\n", s.CurrentBalance.StringFixed(2))
	if res.BelowThreshold {
		fmt.Fprintf(w, "\n  ALERT: balance %s is below the threshold of %s\n",
			s.CurrentBalance.StringFixed(2), res.Threshold.StringFixed(2))
	}
	if res.Degraded {
		fmt.Fprintln(w, "\n  Working offline: some changes are saved locally only.")
	}
	writeWarnings(w, res.Warnings)
}

func writeWarnings(w io.Writer, warnings []*apperrors.AppError) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "  ! %s\n", warn.Error())
	}
}

func writeTransactions(w io.Writer, transactions []ledger.Transaction) error {
	if len(transactions) == 0 {
		fmt.Fprintln(w, "  No transactions.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  DATE\tTYPE\tVALUE\tCATEGORY\tNAME\tSTATE\tID")
	for _, t := range transactions {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date, t.Type, t.Value.StringFixed(2), t.Category, t.Name, t.State, t.ID)
	}
	return tw.Flush()
}
