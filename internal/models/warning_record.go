package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthlyWarningRecord remembers which total-budget threshold bands have
// already warned in a given month, so each band fires at most once. The
// over-budget band is never stored here: dropping back under 100% and
// crossing again always warns. Records are created lazily and go stale
// naturally when the month rolls over.
type MonthlyWarningRecord struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_warning_user_period" json:"user_id"`
	Period string `gorm:"not null;uniqueIndex:idx_warning_user_period" json:"period"`
	// WarnedLevels holds the already-warned band levels (50, 90, 95) as a
	// comma-separated list.
	WarnedLevels string `json:"warned_levels"`
}

// PeriodKey builds the "{year}-{month:02d}" key a record is stored under.
func PeriodKey(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d", year, int(month))
}

// HasLevel reports whether the given band level has already warned.
func (r *MonthlyWarningRecord) HasLevel(level int) bool {
	for _, l := range r.levels() {
		if l == level {
			return true
		}
	}
	return false
}

// AddLevel records a band level as warned. Adding an existing level is a
// no-op, keeping the set monotonic under concurrent read-then-write.
func (r *MonthlyWarningRecord) AddLevel(level int) {
	if r.HasLevel(level) {
		return
	}
	if r.WarnedLevels == "" {
		r.WarnedLevels = strconv.Itoa(level)
		return
	}
	r.WarnedLevels += "," + strconv.Itoa(level)
}

func (r *MonthlyWarningRecord) levels() []int {
	if r.WarnedLevels == "" {
		return nil
	}
	parts := strings.Split(r.WarnedLevels, ",")
	levels := make([]int, 0, len(parts))
	for _, p := range parts {
		if l, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			levels = append(levels, l)
		}
	}
	return levels
}
