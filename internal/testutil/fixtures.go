package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spendtrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestTransaction stores a transaction with a unique name.
func CreateTestTransaction(t *testing.T, db *gorm.DB, txType models.TransactionType, value string, date string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Name:     fmt.Sprintf("transaction %d", nextID()),
		Category: "General",
		Date:     date,
		Type:     txType,
		Value:    decimal.RequireFromString(value),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTransactionInCategory stores a transaction in the given category.
func CreateTestTransactionInCategory(t *testing.T, db *gorm.DB, category string, txType models.TransactionType, value string, date string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Name:     fmt.Sprintf("transaction %d", nextID()),
		Category: category,
		Date:     date,
		Type:     txType,
		Value:    decimal.RequireFromString(value),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
