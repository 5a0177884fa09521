package services

import (
	"github.com/shopspring/decimal"

	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
)

// NewTransaction holds the fields a client submits when creating a transaction.
type NewTransaction struct {
	Name     string
	Category string
	Date     string
	Type     models.TransactionType
	Value    decimal.Decimal
}

// TransactionServicer defines the contract for the transaction record store.
type TransactionServicer interface {
	// ListTransactions returns transactions ordered by date, newest first.
	// A nil page returns the whole collection.
	ListTransactions(page *pagination.PageRequest) ([]models.Transaction, int64, error)
	CreateTransaction(input NewTransaction) (*models.Transaction, error)
	GetTransactionByID(id string) (*models.Transaction, error)
	// DeleteTransaction removes a transaction. Deleting an unknown id succeeds
	// and reports existed=false.
	DeleteTransaction(id string) (existed bool, err error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
