package appointment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	"github.com/jwalitptl/booking-api/internal/schedule"
	appointmentsvc "github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	policy, err := schedule.New(schedule.Config{
		WorkingDays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Open:         "09:00",
		Close:        "17:00",
		SlotDuration: 30 * time.Minute,
		HorizonDays:  60,
		Timezone:     "UTC",
	})
	require.NoError(t, err)

	svc := appointmentsvc.NewService(
		memory.NewAppointmentRepository(),
		catalog.NewService(memory.NewServiceRepository(
			&model.Service{Code: "tax-declaration", Name: "Φορολογική Δήλωση", Active: true, Position: 1},
			&model.Service{Code: "bookkeeping", Name: "Λογιστική Παρακολούθηση", Active: true, Position: 2},
		), 0),
		policy,
		metrics.New("test"),
	)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Validation(middleware.DefaultValidationConfig()))

	h := NewHandler(svc)
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin"))
	return r
}

// The clock is real in these tests, so bookings target the next Monday
// at least a week out to stay inside working days and the horizon.
func upcomingMonday() string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(model.DateLayout)
}

func upcomingSunday() string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(model.DateLayout)
}

func bookingBody(date, slot string) map[string]any {
	return map[string]any{
		"client_name":      "Μαρία Παππά",
		"client_email":     "maria@example.gr",
		"client_phone":     "+302101234567",
		"appointment_date": date,
		"appointment_time": slot,
		"service_type":     "tax-declaration",
	}
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func TestGetAvailabilityReturnsFullDay(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()

	w := doRequest(t, r, http.MethodGet, "/api/v1/availability?date="+date, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	assert.Equal(t, "success", env.Status)

	var avail availabilityResponse
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.Equal(t, date, avail.Date)
	require.Len(t, avail.Slots, 16)
	assert.Equal(t, "09:00:00", avail.Slots[0])
	assert.Equal(t, "16:30:00", avail.Slots[15])
}

func TestGetAvailabilityRequiresDate(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/availability", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "date query parameter is required", env.Message)
}

func TestGetAvailabilityRejectsMalformedDate(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/availability?date=10-06-2024", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w).Status)
}

func TestBookAppointmentCreatesBooking(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()

	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(date, "10:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	assert.Equal(t, "success", env.Status)

	var appt appointmentResponse
	require.NoError(t, json.Unmarshal(env.Data, &appt))
	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Equal(t, model.AppointmentStatusBooked, appt.Status)
	assert.Equal(t, date, appt.AppointmentDate)
	assert.Equal(t, "10:00:00", appt.AppointmentTime)

	// The slot is gone from availability.
	w = doRequest(t, r, http.MethodGet, "/api/v1/availability?date="+date, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail availabilityResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &avail))
	assert.Len(t, avail.Slots, 15)
	assert.NotContains(t, avail.Slots, "10:00:00")
}

func TestBookAppointmentRejectsTakenSlot(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()

	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(date, "10:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(date, "10:00"))
	require.Equal(t, http.StatusConflict, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "time slot already booked", env.Message)
}

func TestBookAppointmentRejectsNonWorkingDay(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(upcomingSunday(), "10:00"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "office is closed on this date", env.Message)
}

func TestBookAppointmentFieldValidation(t *testing.T) {
	r := newTestRouter(t)

	body := bookingBody(upcomingMonday(), "10:00")
	body["client_name"] = ""
	body["client_phone"] = "call me"

	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Status string                       `json:"status"`
		Errors []middleware.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)

	fields := make(map[string]string, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "field is required", fields["client_name"])
	assert.Equal(t, "must be a valid phone number", fields["client_phone"])
}

func TestBookAppointmentRejectsBadTimeFormat(t *testing.T) {
	r := newTestRouter(t)

	body := bookingBody(upcomingMonday(), "25:99")
	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors []middleware.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "appointment_time", resp.Errors[0].Field)
	assert.Equal(t, "must be a time such as 10:30", resp.Errors[0].Message)
}

func TestBookAppointmentRejectsMalformedJSON(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w).Status)
}

func TestGetAppointment(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()

	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(date, "11:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created appointmentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))

	w = doRequest(t, r, http.MethodGet, "/api/v1/admin/appointments/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched appointmentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Μαρία Παππά", fetched.ClientName)
}

func TestGetAppointmentRejectsBadID(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/admin/appointments/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid appointment ID", decodeEnvelope(t, w).Message)
}

func TestGetAppointmentNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/admin/appointments/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w).Status)
}

func TestListAppointments(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()

	for _, slot := range []string{"10:00", "09:00"} {
		w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(date, slot))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doRequest(t, r, http.MethodGet, "/api/v1/admin/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []appointmentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "09:00:00", listed[0].AppointmentTime)
	assert.Equal(t, "10:00:00", listed[1].AppointmentTime)

	path := fmt.Sprintf("/api/v1/admin/appointments?from=%s&to=%s&status=booked&service=tax-declaration", date, date)
	w = doRequest(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &listed))
	assert.Len(t, listed, 2)
}

func TestListAppointmentsRejectsInvertedRange(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()
	earlier := time.Now().UTC().Format(model.DateLayout)

	w := doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/admin/appointments?from=%s&to=%s", date, earlier), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "from date is after to date", decodeEnvelope(t, w).Message)
}

func TestListAppointmentsRejectsUnknownStatus(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/admin/appointments?status=pending", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown status", decodeEnvelope(t, w).Message)
}

func TestListAppointmentsRejectsBadPagination(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/admin/appointments?limit=many", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit must be an integer", decodeEnvelope(t, w).Message)
}

func TestCancelAppointment(t *testing.T) {
	r := newTestRouter(t)
	date := upcomingMonday()

	w := doRequest(t, r, http.MethodPost, "/api/v1/appointments", bookingBody(date, "10:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created appointmentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))

	w = doRequest(t, r, http.MethodPost, "/api/v1/admin/appointments/"+created.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cancelled appointmentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &cancelled))
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// The slot is bookable again.
	w = doRequest(t, r, http.MethodGet, "/api/v1/availability?date="+date, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail availabilityResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &avail))
	assert.Contains(t, avail.Slots, "10:00:00")
}

func TestCancelAppointmentNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/v1/admin/appointments/"+uuid.NewString()+"/cancel", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w).Status)
}
