package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/repository"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

// refs holds the parsed references of a booking payload. Nil means absent.
type refs struct {
	patient *uuid.UUID
	doctor  *uuid.UUID
	service *uuid.UUID
}

func parseRefs(patient, doctor, service *string) (refs, error) {
	invalid := map[string]string{}
	parse := func(field, label string, raw *string) *uuid.UUID {
		if raw == nil {
			return nil
		}
		id, err := uuid.Parse(*raw)
		if err != nil {
			invalid[field] = fmt.Sprintf("Invalid %s ID format", label)
			return nil
		}
		return &id
	}

	r := refs{
		patient: parse("patient", "patient", patient),
		doctor:  parse("doctor", "doctor", doctor),
		service: parse("service", "service", service),
	}
	if len(invalid) > 0 {
		return refs{}, apperrors.NewValidation("Invalid ID format", invalid)
	}
	return r, nil
}

// resolveRefs checks that every present reference exists.
func (s *Service) resolveRefs(ctx context.Context, r refs) error {
	notFound := map[string]string{}

	if r.patient != nil {
		if _, err := s.patients.Get(ctx, *r.patient); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to resolve patient: %w", err)
			}
			notFound["patient"] = "Patient not found"
		}
	}
	if r.doctor != nil {
		if _, err := s.doctors.GetDoctor(ctx, *r.doctor); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to resolve doctor: %w", err)
			}
			notFound["doctor"] = "Doctor not found"
		}
	}
	if r.service != nil {
		if _, err := s.services.GetService(ctx, *r.service); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to resolve service: %w", err)
			}
			notFound["service"] = "Service not found"
		}
	}

	if len(notFound) > 0 {
		return apperrors.NewReferenceNotFound(notFound)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || apperrors.HasCode(err, apperrors.ErrNotFound)
}
