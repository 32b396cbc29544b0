package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func testPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := New(Config{
		WorkingDays:   []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Open:          "09:00",
		Close:         "17:00",
		SlotDuration:  30 * time.Minute,
		BlackoutDates: []string{"2024-06-12"},
		HorizonDays:   90,
		Timezone:      "UTC",
	})
	require.NoError(t, err)
	return p
}

func TestNewRejectsBadConfig(t *testing.T) {
	base := func() Config {
		return Config{
			WorkingDays:  []string{"monday"},
			Open:         "09:00",
			Close:        "17:00",
			SlotDuration: 30 * time.Minute,
			HorizonDays:  90,
			Timezone:     "UTC",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no working days", func(c *Config) { c.WorkingDays = nil }},
		{"unknown weekday", func(c *Config) { c.WorkingDays = []string{"funday"} }},
		{"bad open", func(c *Config) { c.Open = "nine" }},
		{"close before open", func(c *Config) { c.Close = "08:00" }},
		{"zero slot duration", func(c *Config) { c.SlotDuration = 0 }},
		{"slot longer than window", func(c *Config) { c.SlotDuration = 9 * time.Hour }},
		{"zero horizon", func(c *Config) { c.HorizonDays = 0 }},
		{"bad blackout date", func(c *Config) { c.BlackoutDates = []string{"June 12"} }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestIsWorkingDay(t *testing.T) {
	p := testPolicy(t)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	blackoutWednesday := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	assert.True(t, p.IsWorkingDay(monday))
	assert.False(t, p.IsWorkingDay(saturday))
	assert.False(t, p.IsWorkingDay(blackoutWednesday), "blackout overrides weekday")
}

func TestDayWindow(t *testing.T) {
	p := testPolicy(t)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	open, close, err := p.DayWindow(monday, testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), open)
	assert.Equal(t, time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC), close)

	// same day is inside the horizon
	_, _, err = p.DayWindow(testNow, testNow)
	require.NoError(t, err)
}

func TestDayWindowInvalidDates(t *testing.T) {
	p := testPolicy(t)

	tests := []struct {
		name string
		date time.Time
	}{
		{"blackout", time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"past", time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)},
		{"beyond horizon", testNow.AddDate(0, 0, 91)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := p.DayWindow(tt.date, testNow)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDate))
		})
	}
}

func TestParseDate(t *testing.T) {
	p := testPolicy(t)

	d, err := p.ParseDate("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = p.ParseDate("10/06/2024")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDate))
}
