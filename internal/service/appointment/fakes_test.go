package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/qrcode"
)

// memStore is an in-memory appointment store with the same conflict
// semantics as the postgres one.
type memStore struct {
	mu             sync.Mutex
	rows           map[uuid.UUID]model.Appointment
	patients       map[uuid.UUID]model.PatientSummary
	doctors        map[uuid.UUID]model.DoctorSummary
	services       map[uuid.UUID]model.ServiceSummary
	conflictChecks int
	remindersSent  map[uuid.UUID]time.Time
	qrIssued       map[uuid.UUID]time.Time
}

var _ repository.AppointmentRepository = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		rows:          map[uuid.UUID]model.Appointment{},
		patients:      map[uuid.UUID]model.PatientSummary{},
		doctors:       map[uuid.UUID]model.DoctorSummary{},
		services:      map[uuid.UUID]model.ServiceSummary{},
		remindersSent: map[uuid.UUID]time.Time{},
		qrIssued:      map[uuid.UUID]time.Time{},
	}
}

func (m *memStore) Create(_ context.Context, apt *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[apt.ID] = *apt
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &apt, nil
}

func (m *memStore) GetDetails(_ context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.details(apt), nil
}

func (m *memStore) details(apt model.Appointment) *model.AppointmentDetails {
	return &model.AppointmentDetails{
		Appointment: apt,
		Patient:     m.patients[apt.PatientID],
		Doctor:      m.doctors[apt.DoctorID],
		Service:     m.services[apt.ServiceID],
	}
}

func (m *memStore) Update(_ context.Context, apt *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[apt.ID] = *apt
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) List(_ context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AppointmentDetails
	for _, apt := range m.rows {
		if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		if filters.DoctorID != uuid.Nil && apt.DoctorID != filters.DoctorID {
			continue
		}
		if filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		out = append(out, m.details(apt))
	}
	sort.Slice(out, func(i, j int) bool {
		if filters.Sort == model.SortDesc {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *memStore) HasConflict(_ context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflictChecks++
	for _, apt := range m.rows {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if apt.DoctorID == doctorID && apt.Date.Equal(date) && apt.Status != model.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListDueForReminder(_ context.Context, from, to time.Time) ([]*model.AppointmentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AppointmentDetails
	for _, apt := range m.rows {
		if apt.Date.Before(from) || !apt.Date.Before(to) || apt.ReminderSent {
			continue
		}
		if apt.Status != model.AppointmentStatusScheduled && apt.Status != model.AppointmentStatusConfirmed {
			continue
		}
		out = append(out, m.details(apt))
	}
	return out, nil
}

func (m *memStore) MarkReminderSent(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	apt.ReminderSent = true
	apt.ReminderScheduledFor = &at
	m.rows[id] = apt
	m.remindersSent[id] = at
	return nil
}

func (m *memStore) MarkQRGenerated(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	apt.QRGenerated = true
	apt.QRGeneratedAt = &at
	m.rows[id] = apt
	m.qrIssued[id] = at
	return nil
}

type notifyCall struct {
	kind model.NotificationKind
	id   uuid.UUID
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, kind model.NotificationKind, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{kind: kind, id: id})
	return n.err
}

func (n *recordingNotifier) kinds() []model.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]model.NotificationKind, 0, len(n.calls))
	for _, c := range n.calls {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = nil
}

type doctorDirectory map[uuid.UUID]*model.User

func (d doctorDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := d[id]; ok && u.Role == model.RoleDoctor {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type serviceCatalog map[uuid.UUID]*model.Service

func (c serviceCatalog) GetService(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if s, ok := c[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type stubGenerator struct {
	png  []byte
	last *qrcode.Payload
}

func (g *stubGenerator) Generate(payload qrcode.Payload) []byte {
	g.last = &payload
	return g.png
}
