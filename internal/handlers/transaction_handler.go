package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
	"spendtrack/internal/services"
	"spendtrack/internal/validator"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Name     string                 `json:"name" binding:"required,not_blank,max=255"`
	Category string                 `json:"category" binding:"required,not_blank,max=255"`
	Date     string                 `json:"date" binding:"required,calendar_date"`
	Type     models.TransactionType `json:"type" binding:"required,transaction_type"`
	Value    *decimal.Decimal       `json:"value" binding:"required,amount" swaggertype:"number"`
}

// ListTransactions returns every transaction, newest first
// @Summary     List transactions
// @Description List all transactions ordered by date descending. page/page_size are optional.
// @Tags        transactions
// @Produce     json
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Items per page (max 500)"
// @Success     200 {array}  models.Transaction "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var pagePtr *pagination.PageRequest
	if page.IsSet() {
		pagePtr = &page
	}

	transactions, total, err := h.transactionService.ListTransactions(pagePtr)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header(pagination.TotalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, transactions)
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a Revenue or Expense. The created record, with its assigned id, is returned.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithFields(apperrors.ErrInvalidInput, validator.FieldErrors(err)))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(services.NewTransaction{
		Name:     req.Name,
		Category: req.Category,
		Date:     req.Date,
		Type:     req.Type,
		Value:    *req.Value,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "value": transaction.Value.StringFixed(2), "date": transaction.Date})

	c.JSON(http.StatusCreated, transaction)
}

// GetTransaction returns a single transaction
// @Summary     Get transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID. Unknown ids succeed without effect.
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Missing transaction ID"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid id"))
		return
	}

	existed, err := h.transactionService.DeleteTransaction(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if existed {
		h.auditService.Log("DELETE_TRANSACTION", "transaction", id, c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
