package models

import "time"

// User represents an account holder. Phone is the identity inbound SMS
// confirmations are resolved against.
type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Phone       string     `gorm:"uniqueIndex;not null" json:"phone"`
	FirstName   string     `json:"first_name"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	RefreshTokenHash string `gorm:"size:64" json:"-"`

	// Relationships
	Templates []RecurringTemplate `gorm:"foreignKey:UserID" json:"templates,omitempty"`
	Expenses  []Expense           `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Budgets   []Budget            `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}
