package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pocketwatch/internal/clock"
	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/services"
)

// ExpenseHandler handles one-off expense requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	clk            clock.Clock
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, clk clock.Clock) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, clk: clk}
}

// CreateExpenseRequest represents the request payload for recording an
// expense directly, outside the reminder flow.
type CreateExpenseRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Category string  `json:"category" binding:"required,min=1,max=50"`
	Date     string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ListExpensesRequest holds query parameters for listing expenses.
type ListExpensesRequest struct {
	pagination.PageRequest
	Year     int    `form:"year" binding:"omitempty,min=2000,max=2200"`
	Month    int    `form:"month" binding:"omitempty,min=1,max=12"`
	Category string `form:"category"`
}

// Create records an expense. The response carries any budget warning the
// expense triggered.
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date := h.clk.Today()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
			return
		}
	}

	expense, warning, err := h.expenseService.CommitExpense(userID, req.Name, req.Amount, req.Category, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"expense": expense}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns the user's expenses with optional month and category filters.
func (h *ExpenseHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.ExpenseFilter{
		Year:     req.Year,
		Month:    time.Month(req.Month),
		Category: req.Category,
	}
	page, err := h.expenseService.GetUserExpenses(userID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Summary returns one month of spending aggregated by category. Defaults to
// the current month.
func (h *ExpenseHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req struct {
		Year  int `form:"year" binding:"omitempty,min=2000,max=2200"`
		Month int `form:"month" binding:"omitempty,min=1,max=12"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	today := h.clk.Today()
	if req.Year == 0 {
		req.Year = today.Year()
	}
	if req.Month == 0 {
		req.Month = int(today.Month())
	}

	summary, err := h.expenseService.MonthlySummary(userID, req.Year, time.Month(req.Month))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
