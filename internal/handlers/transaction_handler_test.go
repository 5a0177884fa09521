package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
	"spendtrack/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	listTransactionsFn   func(page *pagination.PageRequest) ([]models.Transaction, int64, error)
	createTransactionFn  func(input services.NewTransaction) (*models.Transaction, error)
	getTransactionByIDFn func(id string) (*models.Transaction, error)
	deleteTransactionFn  func(id string) (bool, error)
}

func (m *mockTransactionService) ListTransactions(page *pagination.PageRequest) ([]models.Transaction, int64, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(page)
	}
	return []models.Transaction{}, 0, nil
}

func (m *mockTransactionService) CreateTransaction(input services.NewTransaction) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(id string) (bool, error) {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(id)
	}
	return true, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.GET("/transactions", handler.ListTransactions)
	r.POST("/transactions", handler.CreateTransaction)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func sampleTransaction(id, date string) models.Transaction {
	return models.Transaction{
		Base:     models.Base{ID: id, CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		Name:     "Salary",
		Category: "Work",
		Date:     date,
		Type:     models.TransactionTypeRevenue,
		Value:    decimal.RequireFromString("1500.00"),
	}
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("returns array with total header", func(t *testing.T) {
		txSvc := &mockTransactionService{
			listTransactionsFn: func(page *pagination.PageRequest) ([]models.Transaction, int64, error) {
				if page != nil {
					t.Errorf("expected nil page without query, got %+v", page)
				}
				return []models.Transaction{sampleTransaction("b", "2024-03-02"), sampleTransaction("a", "2024-03-01")}, 2, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get(pagination.TotalCountHeader); got != "2" {
			t.Errorf("expected total header 2, got %q", got)
		}
		list := parseJSONArray(t, rec)
		if len(list) != 2 || list[0]["id"] != "b" {
			t.Fatalf("unexpected body: %v", list)
		}
		if list[0]["date"] != "2024-03-02" || list[0]["type"] != "Revenue" {
			t.Errorf("unexpected record: %v", list[0])
		}
		if list[0]["value"] != "1500" {
			t.Errorf("expected decimal value as string, got %v", list[0]["value"])
		}
		if _, ok := list[0]["deleted_at"]; ok {
			t.Error("deleted_at should not be serialized")
		}
	})

	t.Run("empty store returns empty array", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "[]" {
			t.Errorf("expected [], got %s", rec.Body.String())
		}
	})

	t.Run("passes page request", func(t *testing.T) {
		var got *pagination.PageRequest
		txSvc := &mockTransactionService{
			listTransactionsFn: func(page *pagination.PageRequest) ([]models.Transaction, int64, error) {
				got = page
				return []models.Transaction{}, 0, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?page=2&page_size=10", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || got.Page != 2 || got.PageSize != 10 {
			t.Errorf("unexpected page request %+v", got)
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?page_size=1000", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		txSvc := &mockTransactionService{
			listTransactionsFn: func(*pagination.PageRequest) ([]models.Transaction, int64, error) {
				return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("disk full"))
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 with stored record", func(t *testing.T) {
		var got services.NewTransaction
		txSvc := &mockTransactionService{
			createTransactionFn: func(input services.NewTransaction) (*models.Transaction, error) {
				got = input
				tx := sampleTransaction("new-id", input.Date)
				tx.Value = input.Value.Round(2)
				return &tx, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","category":"Work","date":"2024-03-01","type":"Revenue","value":1500.5}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Value.Equal(decimal.RequireFromString("1500.5")) || got.Type != models.TransactionTypeRevenue {
			t.Errorf("unexpected service input %+v", got)
		}
		result := parseJSON(t, rec)
		if result["id"] != "new-id" {
			t.Errorf("expected id new-id, got %v", result["id"])
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "CREATE_TRANSACTION" {
			t.Errorf("expected one CREATE_TRANSACTION audit entry, got %v", actions)
		}
	})

	t.Run("accepts value as string", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Coffee","category":"Food","date":"2024-03-01","type":"Expense","value":"3.20"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("accepts zero value", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Refund","category":"Misc","date":"2024-03-01","type":"Expense","value":0}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 with field report", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"  ","date":"01/03/2024","type":"Transfer","value":-5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_INPUT")
		fields := errorFields(t, result)
		for _, name := range []string{"name", "category", "date", "type", "value"} {
			if _, ok := fields[name]; !ok {
				t.Errorf("expected field %q in report, got %v", name, fields)
			}
		}
		if len(audit.actions()) != 0 {
			t.Error("rejected input must not be audited")
		}
	})

	t.Run("returns 400 when value does not fit decimal(12,2)", func(t *testing.T) {
		for _, value := range []string{"1e999999999", "12345678901"} {
			created := false
			txSvc := &mockTransactionService{
				createTransactionFn: func(services.NewTransaction) (*models.Transaction, error) {
					created = true
					return &models.Transaction{}, nil
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/transactions",
				`{"name":"Huge","category":"Misc","date":"2024-03-01","type":"Revenue","value":`+value+`}`)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("value %s: expected 400, got %d", value, rec.Code)
			}
			if _, ok := errorFields(t, parseJSON(t, rec))["value"]; !ok {
				t.Errorf("value %s: expected value in field report", value)
			}
			if created {
				t.Errorf("value %s: service must not be called", value)
			}
		}
	})

	t.Run("returns 400 on missing value", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","category":"Work","date":"2024-03-01","type":"Revenue"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if msg := errorFields(t, parseJSON(t, rec))["value"]; msg != "is required" {
			t.Errorf("expected value is required, got %q", msg)
		}
	})

	t.Run("returns 400 on malformed json", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"name":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(services.NewTransaction) (*models.Transaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("connection reset"))
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","category":"Work","date":"2024-03-01","type":"Revenue","value":1}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns the record", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(id string) (*models.Transaction, error) {
				tx := sampleTransaction(id, "2024-03-01")
				return &tx, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/abc", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["id"] != "abc" || result["name"] != "Salary" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 and audits", func(t *testing.T) {
		var deleted string
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(id string) (bool, error) {
				deleted = id
				return true, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "DELETE", "/transactions/abc", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != "abc" {
			t.Errorf("expected id abc, got %q", deleted)
		}
		if parseJSON(t, rec)["message"] != "Transaction deleted successfully" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "DELETE_TRANSACTION" {
			t.Errorf("expected DELETE_TRANSACTION audit, got %v", actions)
		}
	})

	t.Run("unknown id still returns 200 without audit", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(string) (bool, error) { return false, nil },
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "DELETE", "/transactions/missing", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.actions()) != 0 {
			t.Errorf("expected no audit entry, got %v", audit.actions())
		}
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(string) (bool, error) {
				return false, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("locked"))
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/transactions/abc", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
