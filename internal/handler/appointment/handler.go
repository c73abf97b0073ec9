package appointment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

const dayLayout = "2006-01-02"

type Service interface {
	CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (*model.AppointmentDetails, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, req model.UpdateAppointmentRequest) (*model.AppointmentDetails, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error)
	ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetails, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetails, error)
	CheckIn(ctx context.Context, id uuid.UUID, req model.CheckInRequest) (*model.CheckInResult, error)
	IssueQRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type Handler struct {
	service  Service
	auth     *middleware.AuthMiddleware
	location *time.Location
}

// NewHandler serves the appointment routes. Calendar days in query
// parameters are read in location.
func NewHandler(service Service, auth *middleware.AuthMiddleware, location *time.Location) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{service: service, auth: auth, location: location}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		// scanned at the reception desk, no session
		appointments.PATCH("/:id/checkin", h.CheckIn)

		protected := appointments.Group("", h.auth.Authenticate())
		protected.GET("", h.ListAppointments)
		protected.POST("", h.CreateAppointment)
		protected.GET("/patient/:patientId", h.ListByPatient)
		protected.GET("/doctor/:doctorId", h.ListByDoctor)
		protected.GET("/:id", h.GetAppointment)
		protected.GET("/:id/qrcode", h.QRCode)
		protected.PUT("/:id", h.UpdateAppointment)
		protected.PATCH("/:id/cancel", h.CancelAppointment)
		protected.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointment)
}

// ListAppointments accepts status, patient, doctor, date (one calendar day),
// start/end (a range, dates or RFC 3339 instants), sort and limit.
func (h *Handler) ListAppointments(c *gin.Context) {
	filters := model.AppointmentFilters{
		Status: model.AppointmentStatus(c.Query("status")),
		Sort:   model.SortAsc,
	}

	var ok bool
	if filters.PatientID, ok = handler.QueryID(c, "patient"); !ok {
		return
	}
	if filters.DoctorID, ok = handler.QueryID(c, "doctor"); !ok {
		return
	}
	if filters.Limit, ok = handler.QueryInt(c, "limit", 0); !ok {
		return
	}

	switch c.Query("sort") {
	case "", string(model.SortAsc):
	case string(model.SortDesc):
		filters.Sort = model.SortDesc
	default:
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid query parameter", map[string]string{
			"sort": "sort must be asc or desc",
		}))
		return
	}

	if err := h.applyDates(c, &filters); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) applyDates(c *gin.Context, filters *model.AppointmentFilters) error {
	if day := c.Query("date"); day != "" {
		start, err := time.ParseInLocation(dayLayout, day, h.location)
		if err != nil {
			return dateError("date")
		}
		end := start.AddDate(0, 0, 1)
		filters.From, filters.To = &start, &end
		return nil
	}

	if raw := c.Query("start"); raw != "" {
		start, _, err := h.parseBound(raw)
		if err != nil {
			return dateError("start")
		}
		filters.From = &start
	}
	if raw := c.Query("end"); raw != "" {
		end, wholeDay, err := h.parseBound(raw)
		if err != nil {
			return dateError("end")
		}
		// an end day is inclusive
		if wholeDay {
			end = end.AddDate(0, 0, 1)
		}
		filters.To = &end
	}
	return nil
}

func (h *Handler) parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dayLayout, raw, h.location); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

func dateError(field string) error {
	return apperrors.NewValidation("Invalid date", map[string]string{
		field: fmt.Sprintf("%s must be YYYY-MM-DD or RFC 3339", field),
	})
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "patientId")
	if !ok {
		return
	}

	appointments, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListByDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "doctorId")
	if !ok {
		return
	}

	appointments, err := h.service.ListByDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.UpdateAppointment(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.CancelAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Appointment cancelled", appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.DeleteAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Appointment deleted", appointment)
}

// CheckIn answers with the check-in result itself rather than the usual
// envelope; reception screens read success and checkInDetails directly.
func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.CheckInRequest
	// an empty body is a bare scan
	if !handler.BindOptionalJSON(c, &req) {
		return
	}

	result, err := h.service.CheckIn(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) QRCode(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	png, err := h.service.IssueQRCode(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
