package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pocketwatch/internal/models"
	"pocketwatch/internal/recurrence"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email, and
// unique phone number.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	n := nextID()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		Phone:    fmt.Sprintf("+1555000%04d", n),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTemplate creates an active monthly template due on the 15th.
func CreateTestTemplate(t *testing.T, db *gorm.DB, userID string) *models.RecurringTemplate {
	t.Helper()
	return CreateTestTemplateWithRule(t, db, userID, recurrence.Rule{
		Frequency:  recurrence.FrequencyMonthly,
		DayOfMonth: 15,
	})
}

// CreateTestTemplateWithRule creates an active template with the given rule.
func CreateTestTemplateWithRule(t *testing.T, db *gorm.DB, userID string, rule recurrence.Rule) *models.RecurringTemplate {
	t.Helper()

	tpl := &models.RecurringTemplate{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Subscription %d", nextID()),
		Amount:      15.99,
		Category:    "subscriptions",
		Frequency:   rule.Frequency,
		DayOfMonth:  rule.DayOfMonth,
		LastOfMonth: rule.LastOfMonth,
		IsActive:    true,
	}
	if rule.Frequency == recurrence.FrequencyWeekly || rule.Frequency == recurrence.FrequencyBiweekly {
		dow := int(rule.DayOfWeek)
		tpl.DayOfWeek = &dow
	}
	if err := db.Create(tpl).Error; err != nil {
		t.Fatalf("failed to create test template: %v", err)
	}
	return tpl
}

// CreateTestPending creates a pending instance awaiting confirmation for
// the template, and stamps the template's LastReminded to match.
func CreateTestPending(t *testing.T, db *gorm.DB, tpl *models.RecurringTemplate, dueDate time.Time) *models.PendingInstance {
	t.Helper()

	instance := &models.PendingInstance{
		UserID:               tpl.UserID,
		TemplateID:           tpl.ID,
		Name:                 tpl.Name,
		Amount:               tpl.Amount,
		DueDate:              dueDate,
		Category:             tpl.Category,
		AwaitingConfirmation: true,
	}
	if err := db.Create(instance).Error; err != nil {
		t.Fatalf("failed to create test pending instance: %v", err)
	}
	if err := db.Model(tpl).Update("last_reminded", dueDate).Error; err != nil {
		t.Fatalf("failed to stamp last_reminded: %v", err)
	}
	tpl.LastReminded = &dueDate
	return instance
}

// CreateTestBudget creates an active cap for a category; an empty category
// is the total monthly cap.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Amount:   amount,
		IsActive: true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates a committed expense.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, category string, amount float64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   amount,
		Date:     date,
		Category: category,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
