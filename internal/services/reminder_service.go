package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pocketwatch/internal/clock"
	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/models"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/recurrence"
)

// reminderService implements the trigger decision engine and the pending
// instance lifecycle.
type reminderService struct {
	db       *gorm.DB
	expenses ExpenseServicer
	clk      clock.Clock
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(db *gorm.DB, expenses ExpenseServicer, clk clock.Clock) ReminderServicer {
	return &reminderService{db: db, expenses: expenses, clk: clk}
}

// DecideTrigger decides whether a new pending instance must be created for
// the template as of today. It is a pure function of the template's state:
// repeated calls with an unchanged LastReminded return identical results,
// which is what makes a missed or crashed tick self-healing.
//
// Suppression is unconditional once LastReminded reaches the current
// period's trigger date. Whether the user ever answered is the lifecycle's
// concern, not this decision's.
func (s *reminderService) DecideTrigger(tpl *models.RecurringTemplate, today time.Time) (bool, *time.Time) {
	if !tpl.IsActive {
		return false, nil
	}

	trigger := recurrence.MostRecent(tpl.Rule(), today, tpl.LastReminded)

	if tpl.LastReminded == nil || dayBefore(*tpl.LastReminded, trigger) {
		return true, &trigger
	}
	return false, nil
}

// CreatePending creates the instance for a trigger date and advances the
// template's LastReminded in the same transaction. The advance is a
// conditional write: if another tick already moved LastReminded to (or
// past) this trigger date, zero rows match, the transaction rolls back,
// and ErrAlreadyTriggered is returned. Together with the pre-create
// existence check this keeps at most one awaiting instance per template
// even when ticks overlap.
func (s *reminderService) CreatePending(tpl *models.RecurringTemplate, triggerDate time.Time) (*models.PendingInstance, error) {
	triggerDate = recurrence.Midnight(triggerDate)

	var count int64
	err := s.db.Model(&models.PendingInstance{}).
		Where("template_id = ? AND awaiting_confirmation = ?", tpl.ID, true).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrPendingExists
	}

	instance := &models.PendingInstance{
		UserID:               tpl.UserID,
		TemplateID:           tpl.ID,
		Name:                 tpl.Name,
		Amount:               tpl.Amount,
		DueDate:              triggerDate,
		Category:             tpl.Category,
		AwaitingConfirmation: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RecurringTemplate{}).
			Where("id = ? AND (last_reminded IS NULL OR last_reminded < ?)", tpl.ID, triggerDate).
			Update("last_reminded", triggerDate)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrAlreadyTriggered
		}
		return tx.Create(instance).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tpl.LastReminded = &triggerDate
	return instance, nil
}

// Confirm commits the pending instance as an expense and retires it. The
// expense carries the instance's due date, not the day of the reply, so a
// bill due at month end stays in that month however late the confirmation
// arrives. The expense is written first (that path retries once internally;
// losing a confirmed expense is worse than a duplicate attempt), then the
// template's LastUserAction is stamped and the instance row removed.
func (s *reminderService) Confirm(userID, instanceID string, adjustedAmount *float64) (*models.Expense, string, error) {
	instance, err := s.getAwaiting(userID, instanceID)
	if err != nil {
		return nil, "", err
	}

	amount := instance.Amount
	if adjustedAmount != nil {
		if *adjustedAmount <= 0 {
			return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "adjusted amount must be positive")
		}
		amount = *adjustedAmount
	}

	expense, warning, err := s.expenses.CommitExpense(userID, instance.Name, amount, instance.Category, instance.DueDate)
	if err != nil {
		return nil, "", err
	}

	if err := s.retire(instance, s.clk.Today()); err != nil {
		return nil, "", err
	}

	return expense, warning, nil
}

// Skip retires the pending instance without committing an expense.
func (s *reminderService) Skip(userID, instanceID string) error {
	instance, err := s.getAwaiting(userID, instanceID)
	if err != nil {
		return err
	}
	return s.retire(instance, s.clk.Today())
}

// GetAwaiting returns a paginated list of the user's pending instances.
func (s *reminderService) GetAwaiting(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PendingInstance], error) {
	page.Normalize()

	base := s.db.Model(&models.PendingInstance{}).
		Where("user_id = ? AND awaiting_confirmation = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var instances []models.PendingInstance
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&instances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(instances, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// LatestAwaiting returns the user's most recently created pending instance.
// Inbound replies carry no instance reference, so they apply to this one.
func (s *reminderService) LatestAwaiting(userID string) (*models.PendingInstance, error) {
	var instance models.PendingInstance
	err := s.db.Where("user_id = ? AND awaiting_confirmation = ?", userID, true).
		Order("created_at DESC, id DESC").
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNothingPending
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &instance, nil
}

func (s *reminderService) getAwaiting(userID, instanceID string) (*models.PendingInstance, error) {
	var instance models.PendingInstance
	err := s.db.Where("id = ? AND user_id = ? AND awaiting_confirmation = ?", instanceID, userID, true).
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstanceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &instance, nil
}

// retire executes a terminal transition: stamp the template's
// LastUserAction and remove the instance row. The template may already be
// canceled; a zero-row update is fine.
func (s *reminderService) retire(instance *models.PendingInstance, today time.Time) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RecurringTemplate{}).
			Where("id = ?", instance.TemplateID).
			Update("last_user_action", today).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(instance).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// dayBefore reports whether a falls on an earlier calendar day than b,
// ignoring time of day and location of record.
func dayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
