package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

var _ Service = (*mockService)(nil)

func (m *mockService) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) UpdateAppointment(ctx context.Context, id uuid.UUID, req model.UpdateAppointmentRequest) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) CancelAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) DeleteAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) GetAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, filters)
	v, _ := args.Get(0).([]*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, patientID)
	v, _ := args.Get(0).([]*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, doctorID)
	v, _ := args.Get(0).([]*model.AppointmentDetails)
	return v, args.Error(1)
}

func (m *mockService) CheckIn(ctx context.Context, id uuid.UUID, req model.CheckInRequest) (*model.CheckInResult, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*model.CheckInResult)
	return v, args.Error(1)
}

func (m *mockService) IssueQRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

type tokens struct{}

func (tokens) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	if token != "staff" {
		return nil, apperrors.Unauthorized(errors.New("bad token"))
	}
	return &model.TokenClaims{UserID: uuid.New(), Role: model.RoleStaff}, nil
}

var cest = time.FixedZone("CEST", 2*60*60)

func setup(t *testing.T) (*gin.Engine, *mockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())
	svc := &mockService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	r := gin.New()
	NewHandler(svc, middleware.NewAuthMiddleware(tokens{}), cest).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func do(r http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer staff")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func details(id uuid.UUID) *model.AppointmentDetails {
	return &model.AppointmentDetails{
		Appointment: model.Appointment{ID: id, Status: model.AppointmentStatusScheduled},
		Patient:     model.PatientSummary{Name: "Lucia Martin"},
	}
}

func TestCreateAppointment(t *testing.T) {
	r, svc := setup(t)
	patient, doctor, service := uuid.New(), uuid.New(), uuid.New()
	id := uuid.New()

	svc.On("CreateAppointment", mock.Anything, mock.MatchedBy(func(req model.CreateAppointmentRequest) bool {
		return req.Patient == patient.String() && req.Doctor == doctor.String() && req.Date != nil &&
			req.Date.Equal(time.Date(2024, 6, 12, 8, 30, 0, 0, time.UTC))
	})).Return(details(id), nil)

	body := `{"patient":"` + patient.String() + `","doctor":"` + doctor.String() + `","service":"` + service.String() + `","date":"2024-06-12T08:30:00Z"}`
	w := do(r, http.MethodPost, "/api/v1/appointments", body, true)

	require.Equal(t, http.StatusCreated, w.Code)
	e := decode(t, w)
	assert.Equal(t, "success", e.Status)
	assert.Contains(t, string(e.Data), id.String())
}

func TestCreateAppointmentErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"slot conflict", apperrors.NewSlotConflict(), http.StatusBadRequest, "Time slot is already booked"},
		{"unique index", apperrors.NewDoubleBooked(errors.New("23505")), http.StatusConflict, "Time slot is already booked"},
		{"missing reference", apperrors.NewReferenceNotFound(map[string]string{"doctor": "Doctor not found"}), http.StatusBadRequest, "Invalid references"},
		{"store down", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setup(t)
			svc.On("CreateAppointment", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := do(r, http.MethodPost, "/api/v1/appointments", `{"notes":"x"}`, true)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decode(t, w).Message)
		})
	}
}

func TestCreateAppointmentRequiresAuth(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/v1/appointments", `{}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAppointmentRejectsBadDuration(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/v1/appointments", `{"duration":0}`, true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Details, "duration")
}

func TestGetAppointment(t *testing.T) {
	r, svc := setup(t)
	id, missing := uuid.New(), uuid.New()
	svc.On("GetAppointment", mock.Anything, id).Return(details(id), nil)
	svc.On("GetAppointment", mock.Anything, missing).Return(nil, apperrors.NewNotFound("Appointment", nil))

	w := do(r, http.MethodGet, "/api/v1/appointments/"+id.String(), "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/appointments/"+missing.String(), "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/appointments/not-a-uuid", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decode(t, w).Message)
}

func TestListAppointmentsByDay(t *testing.T) {
	r, svc := setup(t)
	doctor := uuid.New()

	svc.On("ListAppointments", mock.Anything, mock.MatchedBy(func(f model.AppointmentFilters) bool {
		return f.DoctorID == doctor &&
			f.Status == model.AppointmentStatusConfirmed &&
			f.Sort == model.SortDesc &&
			f.Limit == 5 &&
			f.From.Equal(time.Date(2024, 6, 9, 22, 0, 0, 0, time.UTC)) &&
			f.To.Equal(time.Date(2024, 6, 10, 22, 0, 0, 0, time.UTC))
	})).Return([]*model.AppointmentDetails{}, nil)

	w := do(r, http.MethodGet, "/api/v1/appointments?date=2024-06-10&doctor="+doctor.String()+"&status=confirmed&sort=desc&limit=5", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAppointmentsByRange(t *testing.T) {
	r, svc := setup(t)

	svc.On("ListAppointments", mock.Anything, mock.MatchedBy(func(f model.AppointmentFilters) bool {
		return f.From.Equal(time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)) &&
			f.To.Equal(time.Date(2024, 6, 14, 22, 0, 0, 0, time.UTC))
	})).Return([]*model.AppointmentDetails{}, nil)

	w := do(r, http.MethodGet, "/api/v1/appointments?start=2024-06-10T07:00:00Z&end=2024-06-14", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAppointmentsRejectsBadQuery(t *testing.T) {
	r, _ := setup(t)

	for _, q := range []string{"date=10/06/2024", "sort=sideways", "doctor=nope", "limit=-1", "end=tomorrow"} {
		w := do(r, http.MethodGet, "/api/v1/appointments?"+q, "", true)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestListByPatientAndDoctor(t *testing.T) {
	r, svc := setup(t)
	patient, doctor := uuid.New(), uuid.New()
	svc.On("ListByPatient", mock.Anything, patient).Return([]*model.AppointmentDetails{details(uuid.New())}, nil)
	svc.On("ListByDoctor", mock.Anything, doctor).Return([]*model.AppointmentDetails{}, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/appointments/patient/"+patient.String(), "", true).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/appointments/doctor/"+doctor.String(), "", true).Code)
}

func TestUpdateAppointment(t *testing.T) {
	r, svc := setup(t)
	id := uuid.New()

	svc.On("UpdateAppointment", mock.Anything, id, mock.MatchedBy(func(req model.UpdateAppointmentRequest) bool {
		return req.Notes != nil && *req.Notes == "bring x-rays" && req.Date == nil && req.Doctor == nil
	})).Return(details(id), nil)

	w := do(r, http.MethodPut, "/api/v1/appointments/"+id.String(), `{"notes":"bring x-rays"}`, true)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCancelAndDelete(t *testing.T) {
	r, svc := setup(t)
	id := uuid.New()
	cancelled := details(id)
	cancelled.Status = model.AppointmentStatusCancelled
	svc.On("CancelAppointment", mock.Anything, id).Return(cancelled, nil)
	svc.On("DeleteAppointment", mock.Anything, id).Return(details(id), nil)

	w := do(r, http.MethodPatch, "/api/v1/appointments/"+id.String()+"/cancel", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"cancelled"`)

	w = do(r, http.MethodDelete, "/api/v1/appointments/"+id.String(), "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), id.String())
}

func TestCheckInIsPublic(t *testing.T) {
	r, svc := setup(t)
	id := uuid.New()
	result := &model.CheckInResult{
		Success:        true,
		Message:        "Check-in successful",
		Appointment:    details(id),
		CheckInDetails: model.CheckInDetails{PatientName: "Lucia Martin", AppointmentTime: "10:30"},
	}
	svc.On("CheckIn", mock.Anything, id, mock.MatchedBy(func(req model.CheckInRequest) bool {
		return req.QRData != nil && req.QRData.AppointmentID == id.String() && req.SecretaryID == "desk-2"
	})).Return(result, nil)

	w := do(r, http.MethodPatch, "/api/v1/appointments/"+id.String()+"/checkin",
		`{"qrData":{"appointmentId":"`+id.String()+`"},"secretaryId":"desk-2"}`, false)

	require.Equal(t, http.StatusOK, w.Code)
	var body model.CheckInResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "10:30", body.CheckInDetails.AppointmentTime)
}

func TestCheckInWithoutBody(t *testing.T) {
	r, svc := setup(t)
	id := uuid.New()
	svc.On("CheckIn", mock.Anything, id, model.CheckInRequest{}).Return(nil, apperrors.NewOutOfWindow())

	w := do(r, http.MethodPatch, "/api/v1/appointments/"+id.String()+"/checkin", "", false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "appointment is not scheduled for today", decode(t, w).Message)
}

func TestCheckInWithChunkedEmptyBody(t *testing.T) {
	r, svc := setup(t)
	id := uuid.New()
	svc.On("CheckIn", mock.Anything, id, model.CheckInRequest{}).
		Return(&model.CheckInResult{Success: true, Message: "Check-in successful"}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id.String()+"/checkin", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestCheckInRejectsMalformedBody(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPatch, "/api/v1/appointments/"+uuid.NewString()+"/checkin", `{"qrData":`, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRCode(t *testing.T) {
	r, svc := setup(t)
	id := uuid.New()
	svc.On("IssueQRCode", mock.Anything, id).Return([]byte{0x89, 'P', 'N', 'G'}, nil)

	w := do(r, http.MethodGet, "/api/v1/appointments/"+id.String()+"/qrcode", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes())
}
