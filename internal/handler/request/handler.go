package request

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	CreateRequest(ctx context.Context, in model.CreateAppointmentRequestInput, clientIP string) (*model.AppointmentRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*model.AppointmentRequest, error)
	ListRequests(ctx context.Context, filters model.RequestFilters) ([]*model.AppointmentRequest, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, in model.UpdateRequestStatusInput, processedBy *uuid.UUID) (*model.AppointmentRequest, error)
	Convert(ctx context.Context, id uuid.UUID, in model.ConvertRequestInput, processedBy *uuid.UUID) (*model.AppointmentDetails, error)
	Stats(ctx context.Context) ([]model.RequestStat, error)
}

type Handler struct {
	service Service
	auth    *middleware.AuthMiddleware
	// guards the public intake endpoint
	intake []gin.HandlerFunc
}

// NewHandler serves the booking request routes. intake runs in front of the
// public create endpoint, typically a rate limiter.
func NewHandler(service Service, auth *middleware.AuthMiddleware, intake ...gin.HandlerFunc) *Handler {
	return &Handler{service: service, auth: auth, intake: intake}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/appointment-requests")
	{
		public := append(append([]gin.HandlerFunc{}, h.intake...), h.CreateRequest)
		requests.POST("", public...)

		protected := requests.Group("", h.auth.Authenticate())
		protected.GET("/:id", h.GetRequest)

		desk := protected.Group("", h.auth.Authorize(model.RoleAdmin, model.RoleStaff))
		desk.GET("", h.ListRequests)
		desk.PATCH("/:id/status", h.UpdateStatus)
		desk.POST("/:id/convert", h.Convert)

		protected.GET("/stats/summary", h.auth.Authorize(model.RoleAdmin), h.Stats)
	}
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var in model.CreateAppointmentRequestInput
	if !handler.BindJSON(c, &in) {
		return
	}

	req, err := h.service.CreateRequest(c.Request.Context(), in, c.ClientIP())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusCreated, "Appointment request received", req)
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	req, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, req)
}

func (h *Handler) ListRequests(c *gin.Context) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid pagination", map[string]string{
			"page": "page and limit must be numbers",
		}))
		return
	}
	page = page.Normalize()

	filters := model.RequestFilters{
		Status:     model.RequestStatus(c.Query("status")),
		Pagination: page,
	}

	requests, total, err := h.service.ListRequests(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithPagination(c, requests, page.Page, page.Limit, total)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var in model.UpdateRequestStatusInput
	if !handler.BindJSON(c, &in) {
		return
	}

	req, err := h.service.UpdateStatus(c.Request.Context(), id, in, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, req)
}

func (h *Handler) Convert(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var in model.ConvertRequestInput
	if !handler.BindJSON(c, &in) {
		return
	}

	appointment, err := h.service.Convert(c.Request.Context(), id, in, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Request converted to appointment", appointment)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, stats)
}
