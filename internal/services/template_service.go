package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/models"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/recurrence"
)

// templateService handles recurring-template business logic.
type templateService struct {
	db *gorm.DB
}

// NewTemplateService creates a new TemplateServicer.
func NewTemplateService(db *gorm.DB) TemplateServicer {
	return &templateService{db: db}
}

// CreateTemplate validates the recurrence rule and stores a new template.
// Invalid rules are rejected here so the trigger engine only ever sees
// well-formed schedules.
func (s *templateService) CreateTemplate(userID, name string, amount float64, category string, rule recurrence.Rule) (*models.RecurringTemplate, error) {
	if name == "" || category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and category are required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if err := rule.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRule, err.Error())
	}

	tpl := &models.RecurringTemplate{
		UserID:      userID,
		Name:        name,
		Amount:      amount,
		Category:    category,
		Frequency:   rule.Frequency,
		DayOfMonth:  rule.DayOfMonth,
		LastOfMonth: rule.LastOfMonth,
		IsActive:    true,
	}
	if rule.Frequency == recurrence.FrequencyWeekly || rule.Frequency == recurrence.FrequencyBiweekly {
		dow := int(rule.DayOfWeek)
		tpl.DayOfWeek = &dow
	}

	if err := s.db.Create(tpl).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return tpl, nil
}

// GetUserTemplates returns a paginated list of the user's templates.
func (s *templateService) GetUserTemplates(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTemplate], error) {
	page.Normalize()

	base := s.db.Model(&models.RecurringTemplate{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.RecurringTemplate
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTemplateByID returns a template by ID if it belongs to the user.
func (s *templateService) GetTemplateByID(userID, templateID string) (*models.RecurringTemplate, error) {
	var tpl models.RecurringTemplate
	if err := s.db.Where("id = ? AND user_id = ?", templateID, userID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tpl, nil
}

// Cancel deactivates a template and removes any outstanding pending
// instance. Already-committed expenses are left untouched, which is why
// templates are deactivated rather than deleted.
func (s *templateService) Cancel(userID, templateID string) error {
	tpl, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tpl).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("template_id = ?", tpl.ID).
			Delete(&models.PendingInstance{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
