// Package csvio converts a transaction collection to and from CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/ledger"
)

// Filename is the suggested name for exported files.
const Filename = "transaction_history.csv"

// Header is the column order written by Export.
var Header = []string{"Name", "Category", "Date", "Type", "Value"}

// RowError reports a data row that was dropped on import. Row counts data
// rows from 1, excluding the header; Line is the line in the file.
type RowError struct {
	Row    int                    `json:"row"`
	Line   int                    `json:"line"`
	Fields []apperrors.FieldError `json:"fields"`
}

func (e RowError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("row %d: %s", e.Row, strings.Join(parts, "; "))
}

// AppError converts the row report into an advisory ErrImportRow.
func (e RowError) AppError() *apperrors.AppError {
	appErr := apperrors.WithFields(apperrors.ErrImportRow, e.Fields)
	appErr.Message = fmt.Sprintf("Row %d was skipped", e.Row)
	return appErr
}

// Export writes the header and one row per transaction.
func Export(w io.Writer, transactions []ledger.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range transactions {
		row := []string{t.Name, t.Category, t.Date, string(t.Type), t.Value.StringFixed(2)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import parses CSV text into transactions. Columns are located by header
// name, case-insensitively, so their order does not matter. Rows that fail
// validation are dropped and reported; blank rows are skipped silently.
// An unreadable header aborts the import with apperrors.ErrInvalidImport.
func Import(r io.Reader) ([]ledger.Transaction, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidImport, "Import file is empty")
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidImport, err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	transactions := []ledger.Transaction{}
	var rowErrors []RowError
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rowErrors = append(rowErrors, RowError{
				Row:    row,
				Line:   parseErr.Line,
				Fields: []apperrors.FieldError{{Field: "row", Message: parseErr.Err.Error()}},
			})
			continue
		}
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInvalidImport, err)
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)

		t, err := columns.details(record).Parse()
		if err != nil {
			var appErr *apperrors.AppError
			fields := []apperrors.FieldError{{Field: "row", Message: err.Error()}}
			if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
				fields = appErr.Fields
			}
			rowErrors = append(rowErrors, RowError{Row: row, Line: line, Fields: fields})
			continue
		}
		transactions = append(transactions, t)
	}
	return transactions, rowErrors, nil
}

type columnIndex map[string]int

var required = []string{"name", "category", "date", "type", "value"}

func mapColumns(header []string) (columnIndex, error) {
	columns := make(columnIndex, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
	}

	var missing []apperrors.FieldError
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, apperrors.FieldError{Field: name, Message: "column is missing"})
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.WithFields(apperrors.ErrInvalidImport, missing)
	}
	return columns, nil
}

func (c columnIndex) get(record []string, name string) string {
	i := c[name]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func (c columnIndex) details(record []string) ledger.Details {
	return ledger.Details{
		Name:     c.get(record, "name"),
		Category: c.get(record, "category"),
		Date:     c.get(record, "date"),
		Type:     c.get(record, "type"),
		Value:    c.get(record, "value"),
	}
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
