package schedule

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// Config is the raw business-hours configuration as it appears in the
// config file. New parses it into an immutable Policy.
type Config struct {
	WorkingDays   []string      `mapstructure:"working_days"`
	Open          string        `mapstructure:"open"`
	Close         string        `mapstructure:"close"`
	SlotDuration  time.Duration `mapstructure:"slot_duration"`
	BlackoutDates []string      `mapstructure:"blackout_dates"`
	HorizonDays   int           `mapstructure:"horizon_days"`
	Timezone      string        `mapstructure:"timezone"`
}

// Policy is the office booking calendar: worked weekdays, the daily
// window, slot length, blackout dates and the booking horizon. It is
// built once at boot and read-only afterwards.
type Policy struct {
	workingDays  map[time.Weekday]bool
	open         time.Duration // offset from midnight
	close        time.Duration
	slotDuration time.Duration
	blackouts    map[string]struct{} // keyed by YYYY-MM-DD
	horizonDays  int
	loc          *time.Location
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

const dateKeyLayout = "2006-01-02"

// New validates the configuration and builds a Policy.
func New(cfg Config) (*Policy, error) {
	if len(cfg.WorkingDays) == 0 {
		return nil, fmt.Errorf("schedule: at least one working day required")
	}

	days := make(map[time.Weekday]bool, len(cfg.WorkingDays))
	for _, name := range cfg.WorkingDays {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("schedule: unknown weekday %q", name)
		}
		days[wd] = true
	}

	open, err := parseClock(cfg.Open)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid open time: %w", err)
	}
	close, err := parseClock(cfg.Close)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid close time: %w", err)
	}
	if close <= open {
		return nil, fmt.Errorf("schedule: close %s must be after open %s", cfg.Close, cfg.Open)
	}
	if cfg.SlotDuration <= 0 {
		return nil, fmt.Errorf("schedule: slot duration must be positive")
	}
	if cfg.SlotDuration > close-open {
		return nil, fmt.Errorf("schedule: slot duration %s exceeds the daily window", cfg.SlotDuration)
	}
	if cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("schedule: booking horizon must be positive")
	}

	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("schedule: load timezone %q: %w", cfg.Timezone, err)
		}
	}

	blackouts := make(map[string]struct{}, len(cfg.BlackoutDates))
	for _, raw := range cfg.BlackoutDates {
		d, err := time.ParseInLocation(dateKeyLayout, strings.TrimSpace(raw), loc)
		if err != nil {
			return nil, fmt.Errorf("schedule: invalid blackout date %q: %w", raw, err)
		}
		blackouts[d.Format(dateKeyLayout)] = struct{}{}
	}

	return &Policy{
		workingDays:  days,
		open:         open,
		close:        close,
		slotDuration: cfg.SlotDuration,
		blackouts:    blackouts,
		horizonDays:  cfg.HorizonDays,
		loc:          loc,
	}, nil
}

// Location is the calendar's time zone; all dates and slots are
// interpreted in it.
func (p *Policy) Location() *time.Location {
	return p.loc
}

// SlotDuration is the fixed length of one bookable slot.
func (p *Policy) SlotDuration() time.Duration {
	return p.slotDuration
}

// IsWorkingDay reports whether the office takes appointments on the
// given date. Blackout dates are not working days regardless of
// weekday.
func (p *Policy) IsWorkingDay(date time.Time) bool {
	if !p.workingDays[date.In(p.loc).Weekday()] {
		return false
	}
	_, blackout := p.blackouts[date.In(p.loc).Format(dateKeyLayout)]
	return !blackout
}

// DayWindow returns the open and close instants for the date. It fails
// with an invalid-date error when the date is a blackout date or falls
// outside [today, today+horizon] relative to now.
func (p *Policy) DayWindow(date, now time.Time) (time.Time, time.Time, error) {
	day := p.DayStart(date)

	if _, blackout := p.blackouts[day.Format(dateKeyLayout)]; blackout {
		return time.Time{}, time.Time{}, apperrors.NewInvalidDate("date is not available for booking")
	}

	today := p.DayStart(now)
	if day.Before(today) {
		return time.Time{}, time.Time{}, apperrors.NewInvalidDate("date is in the past")
	}
	if day.After(today.AddDate(0, 0, p.horizonDays)) {
		return time.Time{}, time.Time{}, apperrors.NewInvalidDate(
			fmt.Sprintf("date is more than %d days ahead", p.horizonDays))
	}

	return day.Add(p.open), day.Add(p.close), nil
}

// DayStart normalizes an instant to midnight of its calendar date in
// the policy's time zone.
func (p *Policy) DayStart(t time.Time) time.Time {
	t = t.In(p.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

// ParseDate parses a YYYY-MM-DD value in the policy's time zone.
func (p *Policy) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateKeyLayout, s, p.loc)
	if err != nil {
		return time.Time{}, apperrors.NewInvalidDate(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", s))
	}
	return d, nil
}

func parseClock(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q, want HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
