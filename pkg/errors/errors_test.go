package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NewNotFound("appointment", nil), http.StatusNotFound},
		{"validation", NewValidation("Missing required fields", nil), http.StatusBadRequest},
		{"reference", NewReferenceNotFound(map[string]string{"patient": "Patient not found"}), http.StatusBadRequest},
		{"slot conflict", NewSlotConflict(), http.StatusBadRequest},
		{"double booked", NewDoubleBooked(nil), http.StatusConflict},
		{"invalid state", NewInvalidState("only approved requests can be converted"), http.StatusBadRequest},
		{"payload mismatch", NewPayloadMismatch(), http.StatusBadRequest},
		{"out of window", NewOutOfWindow(), http.StatusBadRequest},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"internal", NewInternal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create appointment: %w", NewSlotConflict())

	assert.True(t, HasCode(err, ErrSlotConflict))
	assert.False(t, HasCode(err, ErrNotFound))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "Time slot is already booked", appErr.Message)
}

func TestErrorIncludesCause(t *testing.T) {
	err := NewInternal(fmt.Errorf("connection refused"))
	assert.Equal(t, "internal server error: connection refused", err.Error())
}
