package models

import "time"

// Expense is a committed spending record. Once written it is immutable;
// there is no update path.
type Expense struct {
	Base
	UserID   string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Name     string    `gorm:"not null" json:"name"`
	Amount   float64   `gorm:"not null" json:"amount"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	Category string    `gorm:"index;not null" json:"category"`
}
