package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/models"
	"pocketwatch/internal/pagination"
)

// Threshold bands on the projected percentage of a cap.
const (
	bandNone   = 0
	bandInfo50 = 50
	bandWarn90 = 90
	bandWarn95 = 95
	bandOver   = 100
)

// budgetService handles budget caps and threshold warnings.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// SetBudget creates or replaces the cap for a scope. An empty category sets
// the total monthly cap.
func (s *budgetService) SetBudget(userID, category string, amount float64) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	var budget models.Budget
	err := s.db.Where("user_id = ? AND category = ?", userID, category).First(&budget).Error
	switch {
	case err == nil:
		if err := s.db.Model(&budget).Updates(map[string]interface{}{
			"amount":    amount,
			"is_active": true,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &budget, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = models.Budget{
			UserID:   userID,
			Category: category,
			Amount:   amount,
			IsActive: true,
		}
		if err := s.db.Create(&budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &budget, nil

	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// GetUserBudgets returns a paginated list of the user's active caps.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Normalize()

	base := s.db.Model(&models.Budget{}).Where("user_id = ? AND is_active = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("category").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteBudget soft-deletes a cap.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBudgetNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// BudgetWarning evaluates a candidate expense against the user's caps and
// returns zero, one, or two newline-joined warning lines (category first,
// then total). The percentage is projected — spending to date plus the
// candidate amount — so warnings anticipate crossing a line rather than
// lag it. The caller invokes this before committing the expense.
func (s *budgetService) BudgetWarning(userID, category string, amount float64, asOf time.Time) (string, error) {
	var lines []string

	if category != "" {
		line, err := s.categoryWarning(userID, category, amount, asOf)
		if err != nil {
			return "", err
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	line, err := s.totalWarning(userID, amount, asOf)
	if err != nil {
		return "", err
	}
	if line != "" {
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}

// categoryWarning warns on every qualifying call. Per-category caps get no
// dedup: frequent nudges are the point.
func (s *budgetService) categoryWarning(userID, category string, amount float64, asOf time.Time) (string, error) {
	limit, ok, err := s.activeCap(userID, category)
	if err != nil || !ok {
		return "", err
	}

	spent, err := s.monthSpending(userID, category, asOf)
	if err != nil {
		return "", err
	}

	projected := spent + amount
	pct := projected / limit * 100
	if thresholdBand(pct) == bandNone {
		return "", nil
	}
	return FormatWarning(pct, limit-projected, category, limit), nil
}

// totalWarning warns against the total monthly cap at most once per band
// per month, remembered in the MonthlyWarningRecord. The over-budget band
// is never recorded and always re-fires.
//
// The record is read-then-written, not transactional. Two concurrent
// submissions for the same month can both see a band as unwarned and
// double-fire; warnings are informational, so that is tolerated. AddLevel
// is a no-op for present levels, so the stored set only grows.
func (s *budgetService) totalWarning(userID string, amount float64, asOf time.Time) (string, error) {
	limit, ok, err := s.activeCap(userID, "")
	if err != nil || !ok {
		return "", err
	}

	spent, err := s.monthSpending(userID, "", asOf)
	if err != nil {
		return "", err
	}

	projected := spent + amount
	pct := projected / limit * 100
	band := thresholdBand(pct)
	if band == bandNone {
		return "", nil
	}

	line := FormatWarning(pct, limit-projected, "Monthly", limit)
	if band == bandOver {
		return line, nil
	}

	record, err := s.warningRecord(userID, asOf)
	if err != nil {
		return "", err
	}
	if record.HasLevel(band) {
		return "", nil
	}

	record.AddLevel(band)
	if err := s.db.Model(record).Update("warned_levels", record.WarnedLevels).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return line, nil
}

// activeCap looks up the active cap for a scope. Missing caps are not an
// error; they just mean nothing to warn about.
func (s *budgetService) activeCap(userID, category string) (float64, bool, error) {
	var budget models.Budget
	err := s.db.Where("user_id = ? AND category = ? AND is_active = ?", userID, category, true).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget.Amount, true, nil
}

// monthSpending sums committed expenses in the calendar month of asOf,
// optionally restricted to one category.
func (s *budgetService) monthSpending(userID, category string, asOf time.Time) (float64, error) {
	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	end := start.AddDate(0, 1, 0)

	q := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var spent float64
	if err := q.Scan(&spent).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// warningRecord loads or lazily creates the dedup record for the month of
// asOf.
func (s *budgetService) warningRecord(userID string, asOf time.Time) (*models.MonthlyWarningRecord, error) {
	record := models.MonthlyWarningRecord{
		UserID: userID,
		Period: models.PeriodKey(asOf.Year(), asOf.Month()),
	}
	err := s.db.Where("user_id = ? AND period = ?", record.UserID, record.Period).
		FirstOrCreate(&record).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// thresholdBand maps a projected percentage onto its warning band.
func thresholdBand(pct float64) int {
	switch {
	case pct >= 100:
		return bandOver
	case pct >= 95:
		return bandWarn95
	case pct >= 90:
		return bandWarn90
	case pct >= 50:
		return bandInfo50
	default:
		return bandNone
	}
}
