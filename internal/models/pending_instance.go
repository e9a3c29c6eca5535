package models

import "time"

// PendingInstance is one concrete occurrence of a recurring template
// awaiting the user's confirmation. At most one instance per template may
// be awaiting confirmation at any time; the row is removed on every
// terminal transition (confirm, skip, cancel).
type PendingInstance struct {
	Base
	UserID               string    `gorm:"type:uuid;index;not null" json:"user_id"`
	TemplateID           string    `gorm:"type:uuid;index;not null" json:"template_id"`
	Name                 string    `gorm:"not null" json:"name"`
	Amount               float64   `gorm:"not null" json:"amount"`
	DueDate              time.Time `gorm:"not null" json:"due_date"`
	Category             string    `gorm:"not null" json:"category"`
	AwaitingConfirmation bool      `gorm:"default:true" json:"awaiting_confirmation"`

	// Relationships
	Template RecurringTemplate `gorm:"foreignKey:TemplateID" json:"-"`
}
