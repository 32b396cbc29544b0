package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func TestSlotsFullDay(t *testing.T) {
	p := testPolicy(t)
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	slots, err := p.Slots(monday, testNow)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), slots[0])
	assert.Equal(t, time.Date(2024, 6, 10, 16, 30, 0, 0, time.UTC), slots[len(slots)-1])

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 30*time.Minute, slots[i].Sub(slots[i-1]), "slots must be evenly stepped")
	}
}

func TestSlotsDeterministic(t *testing.T) {
	p := testPolicy(t)
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	first, err := p.Slots(monday, testNow)
	require.NoError(t, err)
	second, err := p.Slots(monday, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSlotsRejectsNonWorkingDays(t *testing.T) {
	p := testPolicy(t)

	_, err := p.Slots(time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), testNow) // Saturday
	assert.True(t, apperrors.Is(err, apperrors.ErrNonWorkingDay))

	_, err = p.Slots(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), testNow) // blackout
	assert.True(t, apperrors.Is(err, apperrors.ErrNonWorkingDay))
}

func TestSlotsRejectsDatesOutsideHorizon(t *testing.T) {
	p := testPolicy(t)

	farAhead := testNow.AddDate(0, 0, 120)
	for !p.IsWorkingDay(farAhead) {
		farAhead = farAhead.AddDate(0, 0, 1)
	}

	_, err := p.Slots(farAhead, testNow)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDate))
}

func TestValidateSlot(t *testing.T) {
	p := testPolicy(t)
	day := func(h, m int) time.Time {
		return time.Date(2024, 6, 10, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		slot     time.Time
		wantCode apperrors.ErrorCode
	}{
		{"first slot", day(9, 0), 0},
		{"last slot", day(16, 30), 0},
		{"exactly at close", day(17, 0), apperrors.ErrInvalidSlot},
		{"slot would end after close", day(16, 45), apperrors.ErrInvalidSlot},
		{"before open", day(8, 30), apperrors.ErrInvalidSlot},
		{"off the slot grid", day(10, 15), apperrors.ErrInvalidSlot},
		{"saturday", time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC), apperrors.ErrNonWorkingDay},
		{"blackout", time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC), apperrors.ErrNonWorkingDay},
		{"past date", time.Date(2024, 5, 27, 10, 0, 0, 0, time.UTC), apperrors.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateSlot(tt.slot, testNow)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestValidateSlotRejectsPastTimeToday(t *testing.T) {
	p := testPolicy(t)

	// 10:00 now; 09:30 today already passed, 10:30 is fine.
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) // a Monday
	err := p.ValidateSlot(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC), now)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSlot))

	assert.NoError(t, p.ValidateSlot(time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC), now))
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"10:00", 10 * time.Hour, false},
		{"16:30:00", 16*time.Hour + 30*time.Minute, false},
		{" 09:00 ", 9 * time.Hour, false},
		{"25:00", 0, true},
		{"banana", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSlot))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
