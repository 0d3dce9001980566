package service

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/facility-ops-api/internal/models"
)

// startClock opens the working day on a fresh clock.
func startClock(clock *models.Clock, now time.Time) error {
	if clock.State != "" {
		return ErrAlreadyCheckedIn
	}
	clock.CheckInAt = timePtr(now)
	clock.CheckOutAt = nil
	clock.BreakStartedAt = nil
	clock.BreakMinutes = 0
	clock.BreakCount = 0
	clock.TotalHours = 0
	clock.State = models.ClockStateCheckedIn
	return nil
}

func startBreak(clock *models.Clock, now time.Time) error {
	switch clock.State {
	case models.ClockStateCheckedIn:
	case models.ClockStateOnBreak:
		return fmt.Errorf("%w: break already started", ErrClockTransition)
	case models.ClockStateCheckedOut:
		return fmt.Errorf("%w: already checked out", ErrClockTransition)
	default:
		return fmt.Errorf("%w: not checked in", ErrClockTransition)
	}
	clock.BreakStartedAt = timePtr(now)
	clock.BreakCount++
	clock.State = models.ClockStateOnBreak
	return nil
}

func endBreak(clock *models.Clock, now time.Time) error {
	if clock.State != models.ClockStateOnBreak || clock.BreakStartedAt == nil {
		return fmt.Errorf("%w: no break in progress", ErrClockTransition)
	}
	elapsed := now.Sub(*clock.BreakStartedAt).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}
	clock.BreakMinutes = round2(clock.BreakMinutes + elapsed)
	clock.BreakStartedAt = nil
	clock.State = models.ClockStateCheckedIn
	return nil
}

// finishClock closes the day and returns the attendance status earned by the worked hours.
func finishClock(clock *models.Clock, now time.Time, halfDayHours float64) (string, error) {
	switch clock.State {
	case models.ClockStateCheckedIn:
	case models.ClockStateOnBreak:
		return "", fmt.Errorf("%w: end the break before checking out", ErrClockTransition)
	case models.ClockStateCheckedOut:
		return "", fmt.Errorf("%w: already checked out", ErrClockTransition)
	default:
		return "", fmt.Errorf("%w: not checked in", ErrClockTransition)
	}
	if clock.CheckInAt == nil {
		return "", fmt.Errorf("%w: missing check-in time", ErrClockTransition)
	}

	clock.CheckOutAt = timePtr(now)
	clock.TotalHours = workedHours(*clock.CheckInAt, now, clock.BreakMinutes)
	clock.State = models.ClockStateCheckedOut

	if clock.TotalHours < halfDayHours {
		return models.AttendanceStatusHalfDay, nil
	}
	return models.AttendanceStatusPresent, nil
}

// workedHours is the time between in and out minus breaks, never negative.
func workedHours(in, out time.Time, breakMinutes float64) float64 {
	hours := out.Sub(in).Hours() - breakMinutes/60
	if hours < 0 {
		return 0
	}
	return round2(hours)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
