package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public booking endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.GetAvailability)
	r.POST("/appointments", h.BookAppointment)
}

// RegisterAdminRoutes mounts the authenticated back-office endpoints.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
}

type availabilityResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type appointmentResponse struct {
	ID              uuid.UUID               `json:"id"`
	ClientName      string                  `json:"client_name"`
	ClientEmail     string                  `json:"client_email"`
	ClientPhone     string                  `json:"client_phone"`
	AppointmentDate string                  `json:"appointment_date"`
	AppointmentTime string                  `json:"appointment_time"`
	ServiceType     string                  `json:"service_type"`
	Notes           string                  `json:"notes,omitempty"`
	Status          model.AppointmentStatus `json:"status"`
	CreatedAt       time.Time               `json:"created_at"`
	CancelledAt     *time.Time              `json:"cancelled_at,omitempty"`
}

func toAppointmentResponse(a *model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		ClientName:      a.ClientName,
		ClientEmail:     a.ClientEmail,
		ClientPhone:     a.ClientPhone,
		AppointmentDate: a.AppointmentDate.Format(model.DateLayout),
		AppointmentTime: a.AppointmentTime.Format(model.TimeLayout),
		ServiceType:     a.ServiceType,
		Notes:           a.Notes,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		CancelledAt:     a.CancelledAt,
	}
}

func toAppointmentResponses(appointments []*model.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, len(appointments))
	for i, a := range appointments {
		out[i] = toAppointmentResponse(a)
	}
	return out
}

func (h *Handler) GetAvailability(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		c.Error(apperrors.NewInvalidDate("date query parameter is required"))
		return
	}
	date, err := h.service.ParseDate(raw)
	if err != nil {
		c.Error(err)
		return
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		return
	}

	times := make([]string, len(slots))
	for i, slot := range slots {
		times[i] = slot.Format(model.TimeLayout)
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(availabilityResponse{
		Date:  date.Format(model.DateLayout),
		Slots: times,
	}))
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequest(err.Error(), err))
		return
	}

	appt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(toAppointmentResponse(appt)))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(toAppointmentResponse(appt)))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters, err := h.parseFilters(c)
	if err != nil {
		c.Error(err)
		return
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(toAppointmentResponses(appointments)))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(toAppointmentResponse(appt)))
}

func (h *Handler) parseFilters(c *gin.Context) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{
		Status:  model.AppointmentStatus(c.Query("status")),
		Service: c.Query("service"),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := h.service.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewInvalidFilter("invalid from date, want YYYY-MM-DD")
		}
		filters.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := h.service.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewInvalidFilter("invalid to date, want YYYY-MM-DD")
		}
		filters.To = &to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewInvalidFilter("limit must be an integer")
		}
		filters.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewInvalidFilter("offset must be an integer")
		}
		filters.Offset = offset
	}

	return filters, nil
}
