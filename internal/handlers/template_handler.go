package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/recurrence"
	"pocketwatch/internal/services"
)

// TemplateHandler handles recurring-template requests.
type TemplateHandler struct {
	templateService services.TemplateServicer
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService services.TemplateServicer) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// CreateTemplateRequest represents the request payload for creating a
// recurring template. Exactly one schedule shape must be present for the
// chosen frequency; the rule validator rejects the rest.
type CreateTemplateRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required,min=1,max=50"`
	Frequency   string  `json:"frequency" binding:"required,frequency"`
	DayOfMonth  int     `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	LastOfMonth bool    `json:"last_of_month"`
	DayOfWeek   *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
}

// ListTemplatesRequest holds query parameters for listing templates.
type ListTemplatesRequest struct {
	pagination.PageRequest
	IsActive *bool `form:"is_active"`
}

func (r *CreateTemplateRequest) rule() recurrence.Rule {
	rule := recurrence.Rule{
		Frequency:   recurrence.Frequency(r.Frequency),
		DayOfMonth:  r.DayOfMonth,
		LastOfMonth: r.LastOfMonth,
	}
	if r.DayOfWeek != nil {
		rule.DayOfWeek = time.Weekday(*r.DayOfWeek)
	}
	return rule
}

// Create stores a new recurring template.
func (h *TemplateHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tpl, err := h.templateService.CreateTemplate(userID, req.Name, req.Amount, req.Category, req.rule())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

// List returns the user's templates.
func (h *TemplateHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.templateService.GetUserTemplates(userID, req.PageRequest, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get returns one template.
func (h *TemplateHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tpl, err := h.templateService.GetTemplateByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

// Cancel deactivates a template and removes its outstanding reminder.
func (h *TemplateHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.templateService.Cancel(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "canceled"})
}
