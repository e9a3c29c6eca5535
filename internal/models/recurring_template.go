package models

import (
	"time"

	"pocketwatch/internal/recurrence"
)

// RecurringTemplate is the rule describing a repeating expense (rent, a
// subscription) together with its progress markers.
//
// LastReminded is the trigger date of the most recent pending instance this
// template produced; it is only ever advanced by the trigger engine, and a
// non-nil value always corresponds to a trigger date that produced (or
// superseded) a pending instance. LastUserAction is the date of the most
// recent user response to any instance of this template and is only written
// by confirmation handling. Templates are deactivated, never hard-deleted,
// so committed expenses keep a valid parent.
type RecurringTemplate struct {
	Base
	UserID      string               `gorm:"type:uuid;index;not null" json:"user_id"`
	Name        string               `gorm:"not null" json:"name"`
	Amount      float64              `gorm:"not null" json:"amount"`
	Category    string               `gorm:"not null" json:"category"`
	Frequency   recurrence.Frequency `gorm:"not null" json:"frequency"`
	DayOfMonth  int                  `json:"day_of_month,omitempty"`
	LastOfMonth bool                 `gorm:"default:false" json:"last_of_month,omitempty"`
	DayOfWeek   *int                 `json:"day_of_week,omitempty"` // 0 = Sunday
	IsActive    bool                 `gorm:"default:true" json:"is_active"`

	LastReminded   *time.Time `json:"last_reminded,omitempty"`
	LastUserAction *time.Time `json:"last_user_action,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Rule assembles the recurrence rule from the stored schedule fields.
func (t *RecurringTemplate) Rule() recurrence.Rule {
	r := recurrence.Rule{
		Frequency:   t.Frequency,
		DayOfMonth:  t.DayOfMonth,
		LastOfMonth: t.LastOfMonth,
	}
	if t.DayOfWeek != nil {
		r.DayOfWeek = time.Weekday(*t.DayOfWeek)
	}
	return r
}
