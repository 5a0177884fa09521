package models

import "github.com/shopspring/decimal"

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeRevenue TransactionType = "Revenue"
	TransactionTypeExpense TransactionType = "Expense"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeRevenue || t == TransactionTypeExpense
}

// Transaction is a single income or expense event held by the remote store.
// Value is unsigned; the sign is derived from Type.
type Transaction struct {
	Base
	Name     string          `gorm:"size:255;not null" json:"name"`
	Category string          `gorm:"size:255;not null;index" json:"category"`
	Date     string          `gorm:"size:10;not null;index" json:"date"` // YYYY-MM-DD
	Type     TransactionType `gorm:"size:16;not null" json:"type"`
	Value    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
}
