package schedule

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// Slots enumerates the candidate slot start instants for a date, from
// open to close in slot-duration steps; a slot must end by closing
// time. The sequence is deterministic for a fixed date and policy. It
// fails with a non-working-day error when the policy rejects the date
// (including blackout dates) and propagates the window's invalid-date
// error for dates outside the horizon.
func (p *Policy) Slots(date, now time.Time) ([]time.Time, error) {
	if !p.IsWorkingDay(date) {
		return nil, apperrors.NewNonWorkingDay("office is closed on this date")
	}

	open, close, err := p.DayWindow(date, now)
	if err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0, close.Sub(open)/p.slotDuration)
	for t := open; !t.Add(p.slotDuration).After(close); t = t.Add(p.slotDuration) {
		slots = append(slots, t)
	}
	return slots, nil
}

// ValidateSlot checks one candidate booking instant: the date must be a
// working day inside the horizon, the time must lie on a slot boundary,
// the whole slot must fit inside the daily window, and it must not be
// in the past.
func (p *Policy) ValidateSlot(slot, now time.Time) error {
	if !p.IsWorkingDay(slot) {
		return apperrors.NewNonWorkingDay("office is closed on this date")
	}

	open, close, err := p.DayWindow(slot, now)
	if err != nil {
		return err
	}

	if slot.Before(open) || slot.Add(p.slotDuration).After(close) {
		return apperrors.NewInvalidSlot("time is outside business hours")
	}
	if slot.Sub(open)%p.slotDuration != 0 {
		return apperrors.NewInvalidSlot("time is not on a slot boundary")
	}
	if slot.Before(now) {
		return apperrors.NewInvalidSlot("time has already passed")
	}
	return nil
}

// ParseTimeOfDay parses an HH:MM or HH:MM:SS value into an offset from
// midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, apperrors.NewInvalidSlot(fmt.Sprintf("invalid time %q, want HH:MM or HH:MM:SS", s))
}
