// Package window enforces the maximum date span each endpoint accepts and
// normalizes the granularity tokens that pick that span.
//
// Calendar arithmetic uses time.Time.AddDate throughout, so month and year
// increments normalize overflowing days: 2024-01-31 plus one month is
// 2024-03-02.
package window

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrWindow is matched by every *WindowError via errors.Is.
var ErrWindow = errors.New("invalid date window")

// PeriodClass names the largest span a window may cover.
type PeriodClass int

const (
	None PeriodClass = iota
	Week
	Month
	Year
)

func (p PeriodClass) String() string {
	switch p {
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return "none"
	}
}

// Limit returns the latest end allowed for a window starting at start.
// The second result is false for None.
func (p PeriodClass) Limit(start time.Time) (time.Time, bool) {
	switch p {
	case Week:
		return AddDays(start, 7), true
	case Month:
		return AddMonths(start, 1), true
	case Year:
		return AddYears(start, 1), true
	default:
		return time.Time{}, false
	}
}

// WindowError reports a reversed window or one wider than its period class.
type WindowError struct {
	Start   time.Time
	End     time.Time
	Class   PeriodClass
	MaxDays int
}

func (e *WindowError) Error() string {
	if e.End.Before(e.Start) {
		return fmt.Sprintf("end %s is before start %s",
			e.End.Format(time.DateTime), e.Start.Format(time.DateTime))
	}
	return fmt.Sprintf("window %s to %s exceeds the maximum span of one %s (%d days)",
		e.Start.Format(time.DateTime), e.End.Format(time.DateTime), e.Class, e.MaxDays)
}

func (e *WindowError) Is(target error) bool {
	return target == ErrWindow
}

// Validate fails when end precedes start or end lies beyond start plus the
// class increment. An end exactly on the limit is accepted.
func Validate(start, end time.Time, class PeriodClass) error {
	if end.Before(start) {
		return &WindowError{Start: start, End: end, Class: class}
	}

	limit, ok := class.Limit(start)
	if !ok {
		return nil
	}
	if end.After(limit) {
		return &WindowError{
			Start:   start,
			End:     end,
			Class:   class,
			MaxDays: int(math.Round(limit.Sub(start).Hours() / 24)),
		}
	}
	return nil
}

func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

func AddYears(t time.Time, n int) time.Time {
	return t.AddDate(n, 0, 0)
}
