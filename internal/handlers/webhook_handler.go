package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketwatch/internal/errors"
	"pocketwatch/internal/reply"
	"pocketwatch/internal/services"
)

// WebhookHandler receives inbound messages from the gateway and applies
// them to the sender's most recent pending expense.
type WebhookHandler struct {
	userService     services.UserServicer
	reminderService services.ReminderServicer
	templateService services.TemplateServicer
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(userService services.UserServicer, reminderService services.ReminderServicer, templateService services.TemplateServicer) *WebhookHandler {
	return &WebhookHandler{
		userService:     userService,
		reminderService: reminderService,
		templateService: templateService,
	}
}

// InboundMessageRequest represents an inbound message from the gateway.
type InboundMessageRequest struct {
	From string `json:"from" binding:"required,e164"`
	Body string `json:"body" binding:"required"`
}

// InboundMessageResponse tells the gateway whether the message was applied
// and what to text back.
type InboundMessageResponse struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply"`
}

const helpReply = "Sorry, I didn't understand that. Reply YES, YES <amount>, SKIP, CANCEL, or DELETE."

// Receive applies an inbound message. Replies carry no reference to a
// specific reminder, so every action targets the sender's most recently
// created pending instance.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByPhone(req.From)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action, amount := reply.Parse(req.Body)
	if action == reply.ActionUnknown {
		c.JSON(http.StatusOK, InboundMessageResponse{Handled: false, Reply: helpReply})
		return
	}

	instance, err := h.reminderService.LatestAwaiting(user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNothingPending) {
			c.JSON(http.StatusOK, InboundMessageResponse{
				Handled: false,
				Reply:   "There's nothing waiting for a reply right now.",
			})
			return
		}
		respondWithError(c, err)
		return
	}

	switch action {
	case reply.ActionConfirm:
		expense, warning, err := h.reminderService.Confirm(user.ID, instance.ID, amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		text := fmt.Sprintf("Recorded $%.2f for %s.", expense.Amount, expense.Name)
		if warning != "" {
			text += "\n" + warning
		}
		c.JSON(http.StatusOK, InboundMessageResponse{Handled: true, Reply: text})

	case reply.ActionSkip:
		if err := h.reminderService.Skip(user.ID, instance.ID); err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, InboundMessageResponse{
			Handled: true,
			Reply:   fmt.Sprintf("Okay, skipped %s this time.", instance.Name),
		})

	case reply.ActionCancelRequest:
		// Cancellation is destructive, so it takes two messages. Nothing is
		// stored between them; DELETE works whether or not CANCEL came first.
		c.JSON(http.StatusOK, InboundMessageResponse{
			Handled: true,
			Reply:   fmt.Sprintf("Reply DELETE to permanently cancel the recurring bill %s.", instance.Name),
		})

	case reply.ActionDelete:
		if err := h.templateService.Cancel(user.ID, instance.TemplateID); err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, InboundMessageResponse{
			Handled: true,
			Reply:   fmt.Sprintf("Canceled the recurring bill %s. Already-recorded expenses are kept.", instance.Name),
		})

	default:
		c.JSON(http.StatusOK, InboundMessageResponse{Handled: false, Reply: helpReply})
	}
}
