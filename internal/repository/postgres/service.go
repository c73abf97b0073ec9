package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const serviceColumns = `
	id, name, description, duration, price, category, active, required_equipment,
	notes, created_at, updated_at`

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (
			id, name, description, duration, price, category, active, required_equipment,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.Category,
		service.Active,
		service.RequiredEquipment,
		service.Notes,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", translate(err))
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", translate(err))
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, duration = $3, price = $4, category = $5,
			active = $6, required_equipment = $7, notes = $8, updated_at = $9
		WHERE id = $10
	`
	service.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.Category,
		service.Active,
		service.RequiredEquipment,
		service.Notes,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", translate(err))
	}
	return expectRows(result)
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", translate(err))
	}
	return expectRows(result)
}

func (r *serviceRepository) List(ctx context.Context, category model.ServiceCategory, activeOnly bool) ([]*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE 1=1`
	args := []interface{}{}

	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY name ASC"

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
