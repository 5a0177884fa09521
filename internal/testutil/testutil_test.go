package testutil_test

import (
	"testing"

	"spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"transactions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	tx := testutil.CreateTestTransaction(t, db, models.TransactionTypeRevenue, "12.50", "2024-03-01")
	if tx.ID == "" {
		t.Fatal("transaction should have an ID")
	}
	if tx.Value.StringFixed(2) != "12.50" {
		t.Errorf("expected value 12.50, got %s", tx.Value.StringFixed(2))
	}

	other := testutil.CreateTestTransactionInCategory(t, db, "Rent", models.TransactionTypeExpense, "800", "2024-03-02")
	if other.Category != "Rent" {
		t.Errorf("expected category Rent, got %s", other.Category)
	}
	if other.Name == tx.Name {
		t.Error("fixture names should be unique")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrTransactionNotFound, "custom message")
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
