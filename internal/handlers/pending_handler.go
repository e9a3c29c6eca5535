package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/pagination"
	"pocketwatch/internal/services"
)

// PendingHandler handles pending expense instances.
type PendingHandler struct {
	reminderService services.ReminderServicer
}

// NewPendingHandler creates a new PendingHandler.
func NewPendingHandler(reminderService services.ReminderServicer) *PendingHandler {
	return &PendingHandler{reminderService: reminderService}
}

// ConfirmRequest represents the request payload for confirming a pending
// expense. Amount, when present, replaces the template amount.
type ConfirmRequest struct {
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
}

// List returns the user's pending instances awaiting confirmation.
func (h *PendingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req pagination.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.reminderService.GetAwaiting(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Confirm commits a pending instance as an expense.
func (h *PendingHandler) Confirm(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The body is optional; a bare confirm uses the template amount.
	var req ConfirmRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	expense, warning, err := h.reminderService.Confirm(userID, c.Param("id"), req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"expense": expense}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// Skip dismisses a pending instance without recording an expense.
func (h *PendingHandler) Skip(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reminderService.Skip(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "skipped"})
}
