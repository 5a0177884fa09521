// Package ledger holds the client-side transaction collection: the record
// model, balance aggregation, and the store that reconciles the remote
// service with the local cache.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/remote"
	"spendtrack/internal/uuid"
	"spendtrack/internal/validator"
)

// Type is the direction of a transaction.
type Type string

const (
	Revenue Type = "Revenue"
	Expense Type = "Expense"
)

// SyncState records how far a transaction has been reconciled with the
// remote store.
type SyncState string

const (
	// Confirmed records carry an id issued by the remote store.
	Confirmed SyncState = "confirmed"
	// Pending records were only saved locally and still need to be pushed.
	Pending SyncState = "pending"
	// Orphaned records were deleted locally but the remote delete failed,
	// so they may reappear on the next load.
	Orphaned SyncState = "orphaned"
)

// Transaction is a single income or expense event.
type Transaction struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Type      Type            `json:"type"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	State     SyncState       `json:"state,omitempty"`
}

// Signed returns the value with the sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Value.Neg()
	}
	return t.Value
}

// Key identifies a transaction for deletion. When ID is empty, the record is
// matched on name, date and value instead.
type Key struct {
	ID    string
	Name  string
	Date  string
	Value decimal.Decimal
}

// KeyOf returns the identity of t.
func KeyOf(t Transaction) Key {
	return Key{ID: t.ID, Name: t.Name, Date: t.Date, Value: t.Value}
}

// Matches reports whether t has this identity.
func (k Key) Matches(t Transaction) bool {
	if k.ID != "" {
		return t.ID == k.ID
	}
	return t.Name == k.Name && t.Date == k.Date && t.Value.Equal(k.Value)
}

// Details is the raw user input for a new transaction.
type Details struct {
	Name     string `json:"name" validate:"required,not_blank,max=255"`
	Category string `json:"category" validate:"required,not_blank,max=255"`
	Date     string `json:"date" validate:"required,calendar_date"`
	Type     string `json:"type" validate:"required,transaction_type"`
	Value    string `json:"value" validate:"required,amount"`
}

var validate = validator.New()

// Parse validates d and converts it into an unsaved transaction. The value
// is rounded to cents.
func (d Details) Parse() (Transaction, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Date = strings.TrimSpace(d.Date)
	d.Type = string(NormalizeType(d.Type))
	d.Value = strings.TrimSpace(d.Value)

	if err := validate.Struct(d); err != nil {
		return Transaction{}, apperrors.WithFields(apperrors.ErrValidation, validator.FieldErrors(err))
	}

	value, err := validator.ParseAmount(d.Value)
	if err != nil {
		return Transaction{}, apperrors.WithFields(apperrors.ErrValidation,
			[]apperrors.FieldError{{Field: "value", Message: "must be a non-negative number with at most 10 integer digits"}})
	}

	return Transaction{
		Name:     d.Name,
		Category: d.Category,
		Date:     d.Date,
		Type:     Type(d.Type),
		Value:    value.Round(2),
	}, nil
}

// NormalizeType maps case variants of the two type names onto their
// canonical spelling. Anything else is returned trimmed but unchanged.
func NormalizeType(s string) Type {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(Revenue)):
		return Revenue
	case strings.EqualFold(s, string(Expense)):
		return Expense
	}
	return Type(s)
}

func fromRecord(r remote.Record) Transaction {
	t := Transaction{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Date:     r.Date,
		Type:     NormalizeType(r.Type),
		Value:    r.Value,
		State:    Confirmed,
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		t.CreatedAt = &created
	}
	return t
}

func toNewRecord(t Transaction) remote.NewRecord {
	return remote.NewRecord{
		Name:     t.Name,
		Category: t.Category,
		Date:     t.Date,
		Type:     string(t.Type),
		Value:    t.Value,
	}
}

// normalizeState fills in the state of records cached before states were
// tracked: locally-minted or missing ids are pending, the rest confirmed.
func normalizeState(t *Transaction) {
	if t.State != "" {
		return
	}
	if t.ID == "" || uuid.IsLocal(t.ID) {
		t.State = Pending
		return
	}
	t.State = Confirmed
}
