package scheduler

import (
	"pocketwatch/internal/logger"
	"pocketwatch/internal/models"
)

// Notifier delivers a reminder for a freshly created pending instance.
// Production wires an SMS gateway here; anything transient should be
// retried inside the implementation because the scheduler will not call
// again until the next billing period.
type Notifier interface {
	Notify(user *models.User, instance *models.PendingInstance) error
}

// LogNotifier writes reminders to the application log. It stands in for a
// real gateway in development and keeps ticks observable in production
// when no gateway is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(user *models.User, instance *models.PendingInstance) error {
	logger.Get().Infow("reminder",
		"user_id", user.ID,
		"phone", user.Phone,
		"instance_id", instance.ID,
		"name", instance.Name,
		"amount", instance.Amount,
		"due_date", instance.DueDate.Format("2006-01-02"),
	)
	return nil
}
