package patient

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
	CreatePatient(ctx context.Context, in model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, in model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, search string, page model.Pagination) ([]*model.Patient, int, error)
}

type Handler struct {
	service Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients", h.auth.Authenticate())
	{
		patients.GET("", h.ListPatients)
		patients.GET("/search/:query", h.SearchPatients)
		patients.GET("/document/:documentNumber", h.GetByDocument)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.CreatePatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.auth.Authorize(model.RoleAdmin), h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) GetByDocument(c *gin.Context) {
	patient, err := h.service.GetByDocument(c.Request.Context(), c.Param("documentNumber"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.UpdatePatient(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Patient deleted", nil)
}

// ListPatients takes an optional search term in q plus page and limit.
func (h *Handler) ListPatients(c *gin.Context) {
	h.list(c, c.Query("q"))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	h.list(c, c.Param("query"))
}

func (h *Handler) list(c *gin.Context, search string) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid pagination", map[string]string{
			"page": "page and limit must be numbers",
		}))
		return
	}
	page = page.Normalize()

	patients, total, err := h.service.ListPatients(c.Request.Context(), search, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithPagination(c, patients, page.Page, page.Limit, total)
}
