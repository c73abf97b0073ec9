package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff:
		return true
	}
	return false
}

type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DayAvailability struct {
	IsAvailable bool        `json:"isAvailable"`
	Schedules   []TimeRange `json:"schedules"`
}

// Availability is keyed by weekday name. It is stored for display only.
type Availability map[string]DayAvailability

// User is a clinic account. Doctors are users with RoleDoctor.
type User struct {
	ID                    uuid.UUID           `db:"id" json:"id"`
	Email                 string              `db:"email" json:"email"`
	PasswordHash          *string             `db:"password_hash" json:"-"`
	Name                  string              `db:"name" json:"name"`
	Phone                 string              `db:"phone" json:"phone,omitempty"`
	Role                  Role                `db:"role" json:"role"`
	Active                bool                `db:"active" json:"active"`
	Photo                 *string             `db:"photo" json:"photo"`
	Specialization        pq.StringArray      `db:"specialization" json:"specialization"`
	PrimarySpecialization *string             `db:"primary_specialization" json:"primarySpecialization,omitempty"`
	LicenseNumber         *string             `db:"license_number" json:"licenseNumber,omitempty"`
	Experience            *int                `db:"experience" json:"experience,omitempty"`
	Availability          JSONB[Availability] `db:"availability" json:"availability"`
	Timestamps
}

// UserInput carries the fields accepted when creating or replacing a user.
type UserInput struct {
	Email                 string       `json:"email" binding:"required,email"`
	Password              string       `json:"password"`
	Name                  string       `json:"name" binding:"required"`
	Phone                 string       `json:"phone"`
	Role                  Role         `json:"role" binding:"omitempty,oneof=admin doctor staff"`
	Active                *bool        `json:"active"`
	Photo                 *string      `json:"photo"`
	Specialization        []string     `json:"specialization"`
	PrimarySpecialization string       `json:"primarySpecialization"`
	LicenseNumber         string       `json:"licenseNumber"`
	Experience            *int         `json:"experience"`
	Availability          Availability `json:"availability"`
}

// Validate applies the required-field set of the input's role.
func (in UserInput) Validate() map[string]string {
	var details map[string]string
	switch in.Role {
	case RoleAdmin:
		details = validateAdmin(in)
	case RoleDoctor:
		details = validateDoctor(in)
	default:
		details = validateStaff(in)
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func validateStaff(in UserInput) map[string]string {
	details := map[string]string{}
	if in.Name == "" {
		details["name"] = "Name is required"
	}
	if in.Email == "" {
		details["email"] = "Email is required"
	}
	return details
}

func validateAdmin(in UserInput) map[string]string {
	details := validateStaff(in)
	if in.Password == "" {
		details["password"] = "Password is required for admin users"
	}
	return details
}

func validateDoctor(in UserInput) map[string]string {
	details := validateStaff(in)
	if in.Phone == "" {
		details["phone"] = "Phone is required for doctors"
	}
	if len(in.Specialization) == 0 {
		details["specialization"] = "At least one specialization is required for doctors"
	}
	if in.LicenseNumber == "" {
		details["licenseNumber"] = "License number is required for doctors"
	}
	if in.Experience == nil {
		details["experience"] = "Experience is required for doctors"
	}
	if in.PrimarySpecialization != "" && len(in.Specialization) > 0 && !contains(in.Specialization, in.PrimarySpecialization) {
		details["primarySpecialization"] = "Primary specialization must be one of the listed specializations"
	}
	return details
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
