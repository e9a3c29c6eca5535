package services

import (
	"time"

	"pocketwatch/internal/models"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/recurrence"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, phone, firstName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// TemplateServicer defines the contract for recurring-template business logic.
type TemplateServicer interface {
	CreateTemplate(userID, name string, amount float64, category string, rule recurrence.Rule) (*models.RecurringTemplate, error)
	GetUserTemplates(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTemplate], error)
	GetTemplateByID(userID, templateID string) (*models.RecurringTemplate, error)
	Cancel(userID, templateID string) error
}

// ReminderServicer covers the trigger decision engine and the pending
// instance lifecycle.
type ReminderServicer interface {
	DecideTrigger(tpl *models.RecurringTemplate, today time.Time) (bool, *time.Time)
	CreatePending(tpl *models.RecurringTemplate, triggerDate time.Time) (*models.PendingInstance, error)
	Confirm(userID, instanceID string, adjustedAmount *float64) (*models.Expense, string, error)
	Skip(userID, instanceID string) error
	GetAwaiting(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PendingInstance], error)
	LatestAwaiting(userID string) (*models.PendingInstance, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	Year     int
	Month    time.Month
	Category string
}

// MonthlySummary aggregates one month of spending.
type MonthlySummary struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"by_category"`
}

// ExpenseServicer defines the contract for expense-related business logic.
// CommitExpense returns the budget warning text (may be empty) alongside
// the committed expense.
type ExpenseServicer interface {
	CommitExpense(userID, name string, amount float64, category string, date time.Time) (*models.Expense, string, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	MonthlySummary(userID string, year int, month time.Month) (*MonthlySummary, error)
}

// BudgetServicer defines the contract for budget caps and threshold warnings.
type BudgetServicer interface {
	SetBudget(userID, category string, amount float64) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	DeleteBudget(userID, budgetID string) error
	BudgetWarning(userID, category string, amount float64, asOf time.Time) (string, error)
}
