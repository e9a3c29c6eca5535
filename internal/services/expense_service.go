package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/logger"
	"pocketwatch/internal/models"
	"pocketwatch/internal/pagination"
)

// expenseService handles committed expenses.
type expenseService struct {
	db      *gorm.DB
	budgets BudgetServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, budgets BudgetServicer) ExpenseServicer {
	return &expenseService{db: db, budgets: budgets}
}

// CommitExpense writes an expense record and returns any budget warning it
// triggers. The warning is computed before the insert so the projected
// percentage includes the candidate amount exactly once. The write itself
// is retried a single time on failure: losing a confirmed expense is worse
// than a duplicate attempt.
func (s *expenseService) CommitExpense(userID, name string, amount float64, category string, date time.Time) (*models.Expense, string, error) {
	if name == "" {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if amount <= 0 {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	warning, err := s.budgets.BudgetWarning(userID, category, amount, date)
	if err != nil {
		// Warnings are informational; never block the commit on them.
		logger.Get().Warnw("budget warning check failed",
			"error", err,
			"user_id", userID,
			"category", category,
		)
		warning = ""
	}

	expense := &models.Expense{
		UserID:   userID,
		Name:     name,
		Amount:   amount,
		Date:     date,
		Category: category,
	}

	if err := s.db.Create(expense).Error; err != nil {
		logger.Get().Warnw("expense write failed, retrying once",
			"error", err,
			"user_id", userID,
			"name", name,
		)
		expense.ID = "" // let BeforeCreate assign a fresh ID
		if err := s.db.Create(expense).Error; err != nil {
			return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return expense, warning, nil
}

// GetUserExpenses returns a paginated list of expenses with optional
// month and category filters.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Normalize()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.Year != 0 && filter.Month != 0 {
		start := time.Date(filter.Year, filter.Month, 1, 0, 0, 0, 0, time.UTC)
		base = base.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
	}
	if filter.Category != "" {
		base = base.Where("category = ?", filter.Category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("date DESC, created_at DESC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// MonthlySummary aggregates one month of spending, total and per category.
func (s *expenseService) MonthlySummary(userID string, year int, month time.Month) (*MonthlySummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	type row struct {
		Category string
		Total    float64
	}
	var rows []row
	err := s.db.Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &MonthlySummary{
		Year:       year,
		Month:      int(month),
		ByCategory: make(map[string]float64, len(rows)),
	}
	for _, r := range rows {
		summary.ByCategory[r.Category] = r.Total
		summary.Total += r.Total
	}
	return summary, nil
}
