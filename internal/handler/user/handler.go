package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	CreateUser(ctx context.Context, in model.UserInput) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in model.UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, role model.Role, activeOnly bool) ([]*model.User, error)
	ListDoctors(ctx context.Context) ([]*model.User, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type Handler struct {
	service Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := h.auth.Authorize(model.RoleAdmin)

	users := r.Group("/users", h.auth.Authenticate(), admin)
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	doctors := r.Group("/doctors")
	{
		// landing page
		doctors.GET("/public", h.ListPublicDoctors)

		protected := doctors.Group("", h.auth.Authenticate())
		protected.GET("", h.ListDoctors)
		protected.GET("/:id", h.GetDoctor)
		protected.GET("/:id/availability", h.GetAvailability)
		protected.POST("", admin, h.CreateDoctor)
		protected.PUT("/:id", admin, h.UpdateDoctor)
		protected.DELETE("/:id", admin, h.DeleteDoctor)
	}
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in model.UserInput
	if !handler.BindJSON(c, &in) {
		return
	}
	h.create(c, in)
}

func (h *Handler) create(c *gin.Context, in model.UserInput) {
	user, err := h.service.CreateUser(c.Request.Context(), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, user)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var in model.UserInput
	if !handler.BindJSON(c, &in) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "User deleted", nil)
}

// ListUsers filters by role and, with active=true, hides deactivated accounts.
func (h *Handler) ListUsers(c *gin.Context) {
	role := model.Role(c.Query("role"))
	if role != "" && !role.Valid() {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid query parameter", map[string]string{
			"role": "role must be one of: admin doctor staff",
		}))
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), role, handler.QueryBool(c, "active", false))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, users)
}

// publicDoctor is what the landing page may show about a doctor.
type publicDoctor struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Specialization pq.StringArray `json:"specialization"`
	LicenseNumber  *string        `json:"licenseNumber,omitempty"`
	Experience     *int           `json:"experience,omitempty"`
}

func (h *Handler) ListPublicDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out := make([]publicDoctor, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, publicDoctor{
			ID:             d.ID,
			Name:           d.Name,
			Email:          d.Email,
			Specialization: d.Specialization,
			LicenseNumber:  d.LicenseNumber,
			Experience:     d.Experience,
		})
	}
	httputil.RespondWithSuccess(c, out)
}

// ListDoctors includes inactive doctors for the back office.
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListUsers(c.Request.Context(), model.RoleDoctor, handler.QueryBool(c, "active", false))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, ok := h.doctor(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

// GetAvailability returns the stored weekly schedule. It is informational
// and not consulted when booking.
func (h *Handler) GetAvailability(c *gin.Context) {
	doctor, ok := h.doctor(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, doctor.Availability)
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var in model.UserInput
	if !handler.BindJSON(c, &in) {
		return
	}
	in.Role = model.RoleDoctor
	h.create(c, in)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	doctor, ok := h.doctor(c)
	if !ok {
		return
	}

	var in model.UserInput
	if !handler.BindJSON(c, &in) {
		return
	}
	in.Role = model.RoleDoctor

	user, err := h.service.UpdateUser(c.Request.Context(), doctor.ID, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	doctor, ok := h.doctor(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), doctor.ID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Doctor deleted", nil)
}

func (h *Handler) doctor(c *gin.Context) (*model.User, bool) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return nil, false
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, false
	}
	return doctor, true
}
