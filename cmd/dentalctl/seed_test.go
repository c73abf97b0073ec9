package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/pkg/validator"
)

func TestFakePatientPassesRequestValidation(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		p := fakePatient(now)
		require.NoError(t, v.Struct(p))
		assert.Len(t, p.DocumentNumber, 9)
		require.NotNil(t, p.DateOfBirth)
		assert.True(t, p.DateOfBirth.Before(now.AddDate(-3, 0, 1)))
	}
}

func TestDefaultServicesAreValid(t *testing.T) {
	names := map[string]bool{}
	for _, s := range defaultServices {
		assert.True(t, s.Category.Valid(), s.Name)
		assert.Positive(t, s.Duration, s.Name)
		assert.True(t, s.Price.IsPositive(), s.Name)
		assert.False(t, names[s.Name], "duplicate %s", s.Name)
		names[s.Name] = true
	}
}
