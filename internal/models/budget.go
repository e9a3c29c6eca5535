package models

// Budget is a monthly spending cap. Category scopes the cap to one
// category; an empty category is the cap on total monthly spending.
type Budget struct {
	Base
	UserID   string  `gorm:"type:uuid;index;not null" json:"user_id"`
	Category string  `gorm:"index" json:"category"`
	Amount   float64 `gorm:"not null" json:"amount"`
	IsActive bool    `gorm:"default:true" json:"is_active"`
}

// IsTotal reports whether this cap covers total monthly spending rather
// than a single category.
func (b *Budget) IsTotal() bool {
	return b.Category == ""
}
