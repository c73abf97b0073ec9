package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const userColumns = `
	id, email, password_hash, name, phone, role, active, photo, specialization,
	primary_specialization, license_number, experience, availability, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, name, phone, role, active, photo, specialization,
			primary_specialization, license_number, experience, availability, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Role,
		user.Active,
		user.Photo,
		user.Specialization,
		user.PrimarySpecialization,
		user.LicenseNumber,
		user.Experience,
		user.Availability,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, phone = $4, role = $5, active = $6,
			photo = $7, specialization = $8, primary_specialization = $9, license_number = $10,
			experience = $11, availability = $12, updated_at = $13
		WHERE id = $14
	`
	user.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Role,
		user.Active,
		user.Photo,
		user.Specialization,
		user.PrimarySpecialization,
		user.LicenseNumber,
		user.Experience,
		user.Availability,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err))
	}
	return expectRows(result)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", translate(err))
	}
	return expectRows(result)
}

func (r *userRepository) List(ctx context.Context, role model.Role, activeOnly bool) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}

	if role != "" {
		args = append(args, role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY name ASC"

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
