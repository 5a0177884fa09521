package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
	"spendtrack/internal/validator"
)

// transactionService handles transaction persistence for the remote store.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// ListTransactions returns transactions newest first, optionally paginated.
func (s *transactionService) ListTransactions(page *pagination.PageRequest) ([]models.Transaction, int64, error) {
	var totalItems int64
	if err := s.db.Model(&models.Transaction{}).Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	q := s.db.Order("date DESC").Order("created_at DESC")
	if page != nil {
		page.Defaults()
		q = q.Scopes(pagination.Paginate(*page))
	}

	transactions := []models.Transaction{}
	if err := q.Find(&transactions).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, totalItems, nil
}

// CreateTransaction stores a new transaction. The value is rounded to two
// fractional digits to match the column's fixed-point precision.
func (s *transactionService) CreateTransaction(input NewTransaction) (*models.Transaction, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)
	date := strings.TrimSpace(input.Date)

	var fields []apperrors.FieldError
	if name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "is required"})
	}
	if category == "" {
		fields = append(fields, apperrors.FieldError{Field: "category", Message: "is required"})
	}
	if _, err := time.Parse(validator.DateLayout, date); err != nil {
		fields = append(fields, apperrors.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if !input.Type.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "type", Message: "must be Revenue or Expense"})
	}
	if input.Value.IsNegative() || !validator.AmountInRange(input.Value) {
		fields = append(fields, apperrors.FieldError{Field: "value", Message: "must be a non-negative number with at most 10 integer digits"})
	}
	if len(fields) > 0 {
		return nil, apperrors.WithFields(apperrors.ErrInvalidInput, fields)
	}

	transaction := &models.Transaction{
		Name:     name,
		Category: category,
		Date:     date,
		Type:     input.Type,
		Value:    input.Value.Round(2),
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *transactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction soft-deletes a transaction. An unknown id is not an error.
func (s *transactionService) DeleteTransaction(id string) (bool, error) {
	result := s.db.Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected > 0, nil
}
