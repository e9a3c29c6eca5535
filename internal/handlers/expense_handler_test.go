package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pocketwatch/internal/clock"
	"pocketwatch/internal/models"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/services"
)

type mockExpenseService struct {
	commitExpenseFn func(userID, name string, amount float64, category string, date time.Time) (*models.Expense, string, error)
}

func (m *mockExpenseService) CommitExpense(userID, name string, amount float64, category string, date time.Time) (*models.Expense, string, error) {
	if m.commitExpenseFn != nil {
		return m.commitExpenseFn(userID, name, amount, category, date)
	}
	return &models.Expense{Name: name, Amount: amount, Category: category, Date: date}, "", nil
}

func (m *mockExpenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) MonthlySummary(userID string, year int, month time.Month) (*services.MonthlySummary, error) {
	return &services.MonthlySummary{Year: year, Month: int(month)}, nil
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func setupExpenseRouter(svc services.ExpenseServicer, today time.Time) *gin.Engine {
	h := NewExpenseHandler(svc, clock.Fixed{T: today})
	r := gin.New()
	r.POST("/expenses", injectUserID("0190a000-0000-7000-8000-000000000001"), h.Create)
	return r
}

func postExpense(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExpenseCreate(t *testing.T) {
	today := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("explicit_date_is_parsed", func(t *testing.T) {
		var committed time.Time
		svc := &mockExpenseService{
			commitExpenseFn: func(_, name string, amount float64, category string, date time.Time) (*models.Expense, string, error) {
				committed = date
				return &models.Expense{Name: name, Amount: amount, Category: category, Date: date}, "", nil
			},
		}
		r := setupExpenseRouter(svc, today)

		rec := postExpense(r, `{"name":"Coffee","amount":4.50,"category":"food","date":"2024-03-01"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		if !committed.Equal(want) {
			t.Errorf("committed date = %v, want %v", committed, want)
		}
	})

	t.Run("missing_date_defaults_to_today", func(t *testing.T) {
		var committed time.Time
		svc := &mockExpenseService{
			commitExpenseFn: func(_, name string, amount float64, category string, date time.Time) (*models.Expense, string, error) {
				committed = date
				return &models.Expense{Name: name, Amount: amount, Category: category, Date: date}, "", nil
			},
		}
		r := setupExpenseRouter(svc, today)

		rec := postExpense(r, `{"name":"Coffee","amount":4.50,"category":"food"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !committed.Equal(today) {
			t.Errorf("committed date = %v, want %v", committed, today)
		}
	})

	t.Run("malformed_date_never_reaches_the_service", func(t *testing.T) {
		called := false
		svc := &mockExpenseService{
			commitExpenseFn: func(_, _ string, _ float64, _ string, _ time.Time) (*models.Expense, string, error) {
				called = true
				return nil, "", nil
			},
		}
		r := setupExpenseRouter(svc, today)

		for _, bad := range []string{"03/01/2024", "2024-13-40", "not-a-date"} {
			rec := postExpense(r, `{"name":"Coffee","amount":4.50,"category":"food","date":"`+bad+`"}`)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("date %q: status = %d, want 400", bad, rec.Code)
			}
		}
		if called {
			t.Error("expected no expense to be committed")
		}
	})
}
