// Package recurrence implements the date arithmetic behind recurring
// expenses: given a recurrence rule and a reference date, compute the next
// or most recent date the rule fires on. Everything here is pure and works
// at whole-day granularity.
package recurrence

import (
	"fmt"
	"time"
)

// Frequency is the cadence of a recurrence rule.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
)

// Rule describes when a recurring expense falls due.
//
// Monthly rules carry either DayOfMonth (1-31, clamped to shorter months)
// or LastOfMonth, never both. Weekly and biweekly rules carry DayOfWeek.
type Rule struct {
	Frequency   Frequency    `json:"frequency"`
	DayOfMonth  int          `json:"day_of_month,omitempty"`
	LastOfMonth bool         `json:"last_of_month,omitempty"`
	DayOfWeek   time.Weekday `json:"day_of_week,omitempty"`
}

// Validate rejects rules missing the schedule field their frequency
// requires. Invalid rules are stopped at template creation and never reach
// the trigger engine.
func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyMonthly:
		if r.LastOfMonth && r.DayOfMonth != 0 {
			return fmt.Errorf("monthly rule cannot set both day_of_month and last_of_month")
		}
		if !r.LastOfMonth && (r.DayOfMonth < 1 || r.DayOfMonth > 31) {
			return fmt.Errorf("monthly rule requires day_of_month between 1 and 31, or last_of_month")
		}
	case FrequencyWeekly, FrequencyBiweekly:
		if r.DayOfWeek < time.Sunday || r.DayOfWeek > time.Saturday {
			return fmt.Errorf("%s rule requires day_of_week between 0 (Sunday) and 6 (Saturday)", r.Frequency)
		}
		if r.DayOfMonth != 0 || r.LastOfMonth {
			return fmt.Errorf("%s rule cannot set monthly schedule fields", r.Frequency)
		}
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	return nil
}
