package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	CreateService(ctx context.Context, in model.ServiceInput) (*model.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, in model.ServiceInput) (*model.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
	ListServices(ctx context.Context, category model.ServiceCategory, activeOnly bool) ([]*model.Service, error)
}

type Handler struct {
	service Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.GET("/public", h.ListPublicServices)

		protected := services.Group("", h.auth.Authenticate())
		protected.GET("", h.ListServices)
		protected.GET("/category/:category", h.ListByCategory)
		protected.GET("/:id", h.GetService)

		admin := protected.Group("", h.auth.Authorize(model.RoleAdmin))
		admin.POST("", h.CreateService)
		admin.PUT("/:id", h.UpdateService)
		admin.DELETE("/:id", h.DeleteService)
	}
}

type publicService struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Duration    int                   `json:"duration"`
	Price       decimal.Decimal       `json:"price"`
	Category    model.ServiceCategory `json:"category"`
}

func (h *Handler) ListPublicServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context(), "", true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out := make([]publicService, 0, len(services))
	for _, s := range services {
		out = append(out, publicService{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Duration:    s.Duration,
			Price:       s.Price,
			Category:    s.Category,
		})
	}
	httputil.RespondWithSuccess(c, out)
}

// ListServices shows active services unless all=true.
func (h *Handler) ListServices(c *gin.Context) {
	h.list(c, model.ServiceCategory(c.Query("category")))
}

func (h *Handler) ListByCategory(c *gin.Context) {
	h.list(c, model.ServiceCategory(c.Param("category")))
}

func (h *Handler) list(c *gin.Context, category model.ServiceCategory) {
	if category != "" && !category.Valid() {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid category", map[string]string{
			"category": "category must be one of: general orthodontics surgery cosmetic pediatric other",
		}))
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), category, !handler.QueryBool(c, "all", false))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, services)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	service, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, service)
}

func (h *Handler) CreateService(c *gin.Context) {
	var in model.ServiceInput
	if !handler.BindJSON(c, &in) {
		return
	}

	service, err := h.service.CreateService(c.Request.Context(), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, service)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var in model.ServiceInput
	if !handler.BindJSON(c, &in) {
		return
	}

	service, err := h.service.UpdateService(c.Request.Context(), id, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, service)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteService(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Service deleted", nil)
}
