package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

func TestCreatePatient(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, logger.Nop())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Patient) bool {
		return p.Status == model.PatientStatusActive &&
			p.DocumentType == model.DocumentTypeDNI &&
			p.Address.Data.City == "Valencia"
	})).Return(nil)

	patient, err := svc.CreatePatient(context.Background(), model.CreatePatientRequest{
		Name:           "Marta Soler",
		DocumentNumber: "X1234567L",
		Phone:          "+34600999888",
		Address:        &model.Address{City: "Valencia"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, patient.ID)
	repo.AssertExpectations(t)
}

func TestCreatePatient_DuplicateDocument(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, logger.Nop())
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.CreatePatient(context.Background(), model.CreatePatientRequest{Name: "A", DocumentNumber: "1", Phone: "2"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "documentNumber")
}

func TestUpdatePatient_Partial(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, logger.Nop())
	id := uuid.New()
	existing := &model.Patient{ID: id, Name: "Marta Soler", Phone: "1", Email: "old@example.com"}

	repo.On("Get", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	email := "marta@example.com"
	updated, err := svc.UpdatePatient(context.Background(), id, model.UpdatePatientRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Marta Soler", updated.Name)
	assert.Equal(t, email, updated.Email)
}

func TestDeletePatient(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, logger.Nop())
	busy, missing := uuid.New(), uuid.New()
	repo.On("Delete", mock.Anything, busy).Return(repository.ErrInUse)
	repo.On("Delete", mock.Anything, missing).Return(repository.ErrNotFound)

	assert.True(t, apperrors.HasCode(svc.DeletePatient(context.Background(), busy), apperrors.ErrInvalidState))
	assert.True(t, apperrors.HasCode(svc.DeletePatient(context.Background(), missing), apperrors.ErrNotFound))
}

func TestListPatients_NormalizesPage(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, logger.Nop())
	repo.On("List", mock.Anything, "soler", model.Pagination{Page: 1, Limit: 100}).
		Return([]*model.Patient{{Name: "Marta Soler"}}, 1, nil)

	list, total, err := svc.ListPatients(context.Background(), "soler", model.Pagination{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
}
