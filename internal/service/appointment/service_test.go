package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	"github.com/jwalitptl/booking-api/internal/schedule"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memory.AppointmentRepository) {
	t.Helper()

	policy, err := schedule.New(schedule.Config{
		WorkingDays:   []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Open:          "09:00",
		Close:         "17:00",
		SlotDuration:  30 * time.Minute,
		BlackoutDates: []string{"2024-06-12"},
		HorizonDays:   90,
		Timezone:      "UTC",
	})
	require.NoError(t, err)

	repo := memory.NewAppointmentRepository()
	catalogSvc := catalog.NewService(memory.NewServiceRepository(
		&model.Service{Code: "tax-declaration", Name: "Φορολογική Δήλωση", Active: true, Position: 1},
		&model.Service{Code: "bookkeeping", Name: "Λογιστική Παρακολούθηση", Active: true, Position: 2},
		&model.Service{Code: "payroll", Name: "Μισθοδοσία", Active: false, Position: 3},
	), 0)

	svc := NewService(repo, catalogSvc, policy, metrics.New("test"))
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func bookingRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		ClientName:      "Μαρία Παππά",
		ClientEmail:     "maria@example.gr",
		ClientPhone:     "+302101234567",
		AppointmentDate: "2024-06-10",
		AppointmentTime: "10:00",
		ServiceType:     "tax-declaration",
	}
}

func slotStrings(slots []time.Time) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Format(model.TimeLayout)
	}
	return out
}

func TestFreeSlotsFullDay(t *testing.T) {
	svc, _ := newTestService(t)

	slots, err := svc.FreeSlots(context.Background(), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots, 16)

	times := slotStrings(slots)
	assert.Equal(t, "09:00:00", times[0])
	assert.Equal(t, "16:30:00", times[15])
}

func TestBookRemovesSlotFromAvailability(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, appt.Status)
	assert.Equal(t, "10:00:00", appt.AppointmentTime.Format(model.TimeLayout))

	slots, err := svc.FreeSlots(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, slots, 15)
	assert.NotContains(t, slotStrings(slots), "10:00:00")
}

func TestBookRejectsOccupiedSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, bookingRequest())
	require.NoError(t, err)

	req := bookingRequest()
	req.ClientName = "Νίκος Οικονόμου"
	req.ClientEmail = "nikos@example.gr"
	_, err = svc.Book(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsSlotTaken(err))
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	const attempts = 24
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(ctx, bookingRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case apperrors.IsSlotTaken(err):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)

	times, err := repo.ListBookedTimes(ctx, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, times, 1)
}

func TestBookRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.CreateAppointmentRequest)
		code   apperrors.ErrorCode
	}{
		{
			name:   "close time is not bookable",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentTime = "17:00" },
			code:   apperrors.ErrInvalidSlot,
		},
		{
			name:   "off-grid time",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentTime = "10:15" },
			code:   apperrors.ErrInvalidSlot,
		},
		{
			name:   "before opening",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentTime = "08:30" },
			code:   apperrors.ErrInvalidSlot,
		},
		{
			name:   "saturday",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentDate = "2024-06-08" },
			code:   apperrors.ErrNonWorkingDay,
		},
		{
			name:   "blackout date",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentDate = "2024-06-12" },
			code:   apperrors.ErrNonWorkingDay,
		},
		{
			name:   "past date",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentDate = "2024-05-20" },
			code:   apperrors.ErrInvalidDate,
		},
		{
			name:   "beyond booking horizon",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentDate = "2024-09-30" },
			code:   apperrors.ErrInvalidDate,
		},
		{
			name:   "malformed date",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentDate = "10-06-2024" },
			code:   apperrors.ErrInvalidDate,
		},
		{
			name:   "malformed time",
			mutate: func(r *model.CreateAppointmentRequest) { r.AppointmentTime = "ten thirty" },
			code:   apperrors.ErrInvalidSlot,
		},
		{
			name:   "unknown service",
			mutate: func(r *model.CreateAppointmentRequest) { r.ServiceType = "auditing" },
			code:   apperrors.ErrBadRequest,
		},
		{
			name:   "inactive service",
			mutate: func(r *model.CreateAppointmentRequest) { r.ServiceType = "payroll" },
			code:   apperrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingRequest()
			tt.mutate(req)
			_, err := svc.Book(ctx, req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	appt, err := svc.Book(ctx, bookingRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	slots, err := svc.FreeSlots(ctx, date)
	require.NoError(t, err)
	assert.Contains(t, slotStrings(slots), "10:00:00")

	// Cancel again: idempotent, record unchanged.
	again, err := svc.Cancel(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, again.Status)

	rebooked, err := svc.Book(ctx, bookingRequest())
	require.NoError(t, err)
	assert.NotEqual(t, appt.ID, rebooked.ID)

	events := repo.Events()
	require.Len(t, events, 3)
	assert.Equal(t, model.EventTypeAppointmentBooked, events[0].EventType)
	assert.Equal(t, model.EventTypeAppointmentCancelled, events[1].EventType)
	assert.Equal(t, model.EventTypeAppointmentBooked, events[2].EventType)
}

func TestFreeSlotsFiltersPassedTimesToday(t *testing.T) {
	svc, _ := newTestService(t)
	svc.now = func() time.Time { return time.Date(2024, 6, 3, 12, 10, 0, 0, time.UTC) }

	slots, err := svc.FreeSlots(context.Background(), time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots, 9)
	assert.Equal(t, "12:30:00", slotStrings(slots)[0])
}

func TestIsFree(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	free, err := svc.IsFree(ctx, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.Book(ctx, bookingRequest())
	require.NoError(t, err)

	free, err = svc.IsFree(ctx, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, free)

	_, err = svc.IsFree(ctx, time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNonWorkingDay))
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService(t)

	from := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.List(context.Background(), &model.AppointmentFilters{From: &from, To: &to})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidFilter))
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.List(context.Background(), &model.AppointmentFilters{Status: "pending"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidFilter))
}

func TestListFiltersAndOrders(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	second := bookingRequest()
	second.AppointmentTime = "14:30"
	third := bookingRequest()
	third.AppointmentDate = "2024-06-11"
	third.ServiceType = "bookkeeping"

	for _, req := range []*model.CreateAppointmentRequest{third, second, bookingRequest()} {
		_, err := svc.Book(ctx, req)
		require.NoError(t, err)
	}

	appointments, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, appointments, 3)
	assert.Equal(t, "10:00:00", appointments[0].AppointmentTime.Format(model.TimeLayout))
	assert.Equal(t, "14:30:00", appointments[1].AppointmentTime.Format(model.TimeLayout))
	assert.Equal(t, "2024-06-11", appointments[2].AppointmentDate.Format(model.DateLayout))

	byService, err := svc.List(ctx, &model.AppointmentFilters{Service: "bookkeeping"})
	require.NoError(t, err)
	require.Len(t, byService, 1)
	assert.Equal(t, "bookkeeping", byService[0].ServiceType)

	from := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	byRange, err := svc.List(ctx, &model.AppointmentFilters{From: &from})
	require.NoError(t, err)
	require.Len(t, byRange, 1)
}
