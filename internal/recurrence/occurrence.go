package recurrence

import (
	"math"
	"time"
)

// MostRecent returns the largest occurrence of the rule on or before asOf.
//
// For biweekly rules the weekly occurrence is folded onto a true 14-day
// cadence anchored on lastReminded: a naive weekly date landing within 13
// days after the anchor is shifted back an additional week. This makes
// biweekly resolution state-dependent on purpose, so callers must thread
// the template's last reminded date through. Other frequencies ignore it.
func MostRecent(r Rule, asOf time.Time, lastReminded *time.Time) time.Time {
	asOf = Midnight(asOf)

	switch r.Frequency {
	case FrequencyMonthly:
		occ := monthlyOccurrence(r, asOf.Year(), asOf.Month(), asOf.Location())
		if occ.After(asOf) {
			// This month's occurrence hasn't arrived yet; step back a month.
			// time.Date normalizes month 0 to December of the prior year.
			occ = monthlyOccurrence(r, asOf.Year(), asOf.Month()-1, asOf.Location())
		}
		return occ

	case FrequencyWeekly:
		return weeklyMostRecent(r, asOf)

	case FrequencyBiweekly:
		occ := weeklyMostRecent(r, asOf)
		if d := daysAfter(lastReminded, occ); d > 0 && d < 14 {
			occ = occ.AddDate(0, 0, -7)
		}
		return occ
	}

	return time.Time{}
}

// Next returns the smallest occurrence of the rule strictly after the
// reference date. The biweekly fold works as in MostRecent, shifting
// forward instead of back.
func Next(r Rule, after time.Time, lastReminded *time.Time) time.Time {
	after = Midnight(after)

	switch r.Frequency {
	case FrequencyMonthly:
		occ := monthlyOccurrence(r, after.Year(), after.Month(), after.Location())
		if !occ.After(after) {
			occ = monthlyOccurrence(r, after.Year(), after.Month()+1, after.Location())
		}
		return occ

	case FrequencyWeekly:
		return weeklyNext(r, after)

	case FrequencyBiweekly:
		occ := weeklyNext(r, after)
		if d := daysAfter(lastReminded, occ); d > 0 && d < 14 {
			occ = occ.AddDate(0, 0, 7)
		}
		return occ
	}

	return time.Time{}
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// monthlyOccurrence resolves the rule's day within the given month,
// clamping day_of_month to the month's length (the 31st in February
// resolves to the 28th or 29th).
func monthlyOccurrence(r Rule, year int, month time.Month, loc *time.Location) time.Time {
	last := daysInMonth(year, month)
	day := r.DayOfMonth
	if r.LastOfMonth || day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// weeklyMostRecent finds the matching weekday in [asOf-6, asOf]. A
// reference date already on the rule's weekday is returned as-is.
func weeklyMostRecent(r Rule, asOf time.Time) time.Time {
	back := int(asOf.Weekday() - r.DayOfWeek)
	if back < 0 {
		back += 7
	}
	return asOf.AddDate(0, 0, -back)
}

// weeklyNext finds the matching weekday in (after, after+7]. A reference
// date already on the rule's weekday skips ahead a full week.
func weeklyNext(r Rule, after time.Time) time.Time {
	ahead := int(r.DayOfWeek - after.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return after.AddDate(0, 0, ahead)
}

// daysInMonth returns the number of calendar days in the given month.
// Day 0 of the following month normalizes to this month's last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// daysAfter returns how many whole days t falls after the anchor, or 0
// when there is no anchor.
func daysAfter(anchor *time.Time, t time.Time) int {
	if anchor == nil {
		return 0
	}
	a := Midnight(*anchor)
	b := Midnight(t)
	// Round so a DST transition between the two midnights doesn't shave a day.
	return int(math.Round(b.Sub(a).Hours() / 24))
}
