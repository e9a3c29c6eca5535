// Package clock abstracts "what day is it" so scheduling decisions can be
// made in the user's timezone and pinned in tests. The core never reads
// time.Now directly; an explicit Clock is passed in instead of process-wide
// state.
package clock

import "time"

// Clock provides the current instant and the current calendar day.
type Clock interface {
	Now() time.Time
	// Today is Now truncated to midnight. All trigger decisions are
	// day-granular and use this.
	Today() time.Time
}

// Wall is a Clock in a fixed named timezone. Trigger days must be computed
// in the user-facing timezone, not UTC: a tick running late evening UTC-5
// would otherwise see tomorrow's date and fire a day early.
type Wall struct {
	loc *time.Location
}

// NewWall loads the named timezone (e.g. "America/New_York") and returns a
// wall clock in it.
func NewWall(name string) (*Wall, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return &Wall{loc: loc}, nil
}

func (w *Wall) Now() time.Time {
	return time.Now().In(w.loc)
}

func (w *Wall) Today() time.Time {
	n := w.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, w.loc)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

func (f Fixed) Today() time.Time {
	return time.Date(f.T.Year(), f.T.Month(), f.T.Day(), 0, 0, 0, 0, f.T.Location())
}
