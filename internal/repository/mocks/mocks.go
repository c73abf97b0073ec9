// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type AppointmentRepository struct {
	mock.Mock
}

var _ repository.AppointmentRepository = (*AppointmentRepository)(nil)

func (m *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	apt, _ := args.Get(0).(*model.Appointment)
	return apt, args.Error(1)
}

func (m *AppointmentRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id)
	details, _ := args.Get(0).(*model.AppointmentDetails)
	return details, args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *AppointmentRepository) List(ctx context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).([]*model.AppointmentDetails)
	return list, args.Error(1)
}

func (m *AppointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, doctorID, date, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *AppointmentRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, from, to)
	list, _ := args.Get(0).([]*model.AppointmentDetails)
	return list, args.Error(1)
}

func (m *AppointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *AppointmentRepository) MarkQRGenerated(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type AppointmentRequestRepository struct {
	mock.Mock
}

var _ repository.AppointmentRequestRepository = (*AppointmentRequestRepository)(nil)

func (m *AppointmentRequestRepository) Create(ctx context.Context, req *model.AppointmentRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *AppointmentRequestRepository) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentRequest, error) {
	args := m.Called(ctx, id)
	req, _ := args.Get(0).(*model.AppointmentRequest)
	return req, args.Error(1)
}

func (m *AppointmentRequestRepository) Update(ctx context.Context, req *model.AppointmentRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *AppointmentRequestRepository) List(ctx context.Context, filters model.RequestFilters) ([]*model.AppointmentRequest, int, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).([]*model.AppointmentRequest)
	return list, args.Int(1), args.Error(2)
}

func (m *AppointmentRequestRepository) Stats(ctx context.Context) ([]model.RequestStat, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).([]model.RequestStat)
	return stats, args.Error(1)
}

func (m *AppointmentRequestRepository) Convert(ctx context.Context, conv *repository.Conversion) error {
	return m.Called(ctx, conv).Error(0)
}

type PatientRepository struct {
	mock.Mock
}

var _ repository.PatientRepository = (*PatientRepository)(nil)

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error) {
	args := m.Called(ctx, documentNumber)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, search string, page model.Pagination) ([]*model.Patient, int, error) {
	args := m.Called(ctx, search, page)
	list, _ := args.Get(0).([]*model.Patient)
	return list, args.Int(1), args.Error(2)
}

type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepository) List(ctx context.Context, role model.Role, activeOnly bool) ([]*model.User, error) {
	args := m.Called(ctx, role, activeOnly)
	list, _ := args.Get(0).([]*model.User)
	return list, args.Error(1)
}

type ServiceRepository struct {
	mock.Mock
}

var _ repository.ServiceRepository = (*ServiceRepository)(nil)

func (m *ServiceRepository) Create(ctx context.Context, service *model.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	args := m.Called(ctx, id)
	service, _ := args.Get(0).(*model.Service)
	return service, args.Error(1)
}

func (m *ServiceRepository) Update(ctx context.Context, service *model.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ServiceRepository) List(ctx context.Context, category model.ServiceCategory, activeOnly bool) ([]*model.Service, error) {
	args := m.Called(ctx, category, activeOnly)
	list, _ := args.Get(0).([]*model.Service)
	return list, args.Error(1)
}

type MedicalRecordRepository struct {
	mock.Mock
}

var _ repository.MedicalRecordRepository = (*MedicalRecordRepository)(nil)

func (m *MedicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MedicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*model.MedicalRecord)
	return record, args.Error(1)
}

func (m *MedicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MedicalRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MedicalRecordRepository) List(ctx context.Context, filters model.MedicalRecordFilters) ([]*model.MedicalRecord, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).([]*model.MedicalRecord)
	return list, args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

var _ repository.OutboxRepository = (*OutboxRepository)(nil)

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]*model.OutboxEvent)
	return list, args.Error(1)
}

func (m *OutboxRepository) UpdateStatus(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
