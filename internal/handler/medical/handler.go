package medical

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	CreateMedicalRecord(ctx context.Context, in model.MedicalRecordInput) (*model.MedicalRecord, error)
	GetMedicalRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	UpdateMedicalRecord(ctx context.Context, id uuid.UUID, in model.MedicalRecordInput) (*model.MedicalRecord, error)
	DeleteMedicalRecord(ctx context.Context, id uuid.UUID) error
	ListMedicalRecords(ctx context.Context, filters model.MedicalRecordFilters) ([]*model.MedicalRecord, error)
}

type Handler struct {
	service Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/medical-records", h.auth.Authenticate())
	{
		records.GET("", h.ListRecords)
		records.GET("/patient/:patientId", h.ListByPatient)
		records.GET("/doctor/:doctorId", h.ListByDoctor)
		records.GET("/search/:query", h.Search)
		records.GET("/:id", h.GetRecord)
		records.POST("", h.CreateRecord)
		records.PUT("/:id", h.UpdateRecord)
		records.DELETE("/:id", h.DeleteRecord)
	}
}

// ListRecords accepts patient, doctor, q and limit.
func (h *Handler) ListRecords(c *gin.Context) {
	var (
		filters model.MedicalRecordFilters
		ok      bool
	)
	if filters.PatientID, ok = handler.QueryID(c, "patient"); !ok {
		return
	}
	if filters.DoctorID, ok = handler.QueryID(c, "doctor"); !ok {
		return
	}
	if filters.Limit, ok = handler.QueryInt(c, "limit", 0); !ok {
		return
	}
	filters.Query = c.Query("q")

	h.list(c, filters)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "patientId")
	if !ok {
		return
	}
	h.list(c, model.MedicalRecordFilters{PatientID: id})
}

func (h *Handler) ListByDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "doctorId")
	if !ok {
		return
	}
	h.list(c, model.MedicalRecordFilters{DoctorID: id})
}

func (h *Handler) Search(c *gin.Context) {
	h.list(c, model.MedicalRecordFilters{Query: c.Param("query")})
}

func (h *Handler) list(c *gin.Context, filters model.MedicalRecordFilters) {
	records, err := h.service.ListMedicalRecords(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetMedicalRecord(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, record)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var in model.MedicalRecordInput
	if !handler.BindJSON(c, &in) {
		return
	}

	record, err := h.service.CreateMedicalRecord(c.Request.Context(), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, record)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var in model.MedicalRecordInput
	if !handler.BindJSON(c, &in) {
		return
	}

	record, err := h.service.UpdateMedicalRecord(c.Request.Context(), id, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMedicalRecord(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Medical record deleted", nil)
}
