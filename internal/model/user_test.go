package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestUserInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   UserInput
		invalid []string
	}{
		{
			name:  "staff needs only name and email",
			input: UserInput{Role: RoleStaff, Name: "Ana", Email: "ana@clinic.test"},
		},
		{
			name:    "admin requires password",
			input:   UserInput{Role: RoleAdmin, Name: "Root", Email: "root@clinic.test"},
			invalid: []string{"password"},
		},
		{
			name:    "doctor requires professional fields",
			input:   UserInput{Role: RoleDoctor, Name: "Dr. Ruiz", Email: "ruiz@clinic.test"},
			invalid: []string{"phone", "specialization", "licenseNumber", "experience"},
		},
		{
			name: "primary specialization must be listed",
			input: UserInput{
				Role: RoleDoctor, Name: "Dr. Ruiz", Email: "ruiz@clinic.test", Phone: "600000000",
				Specialization: []string{"orthodontics"}, PrimarySpecialization: "surgery",
				LicenseNumber: "L-1", Experience: intPtr(4),
			},
			invalid: []string{"primarySpecialization"},
		},
		{
			name: "valid doctor",
			input: UserInput{
				Role: RoleDoctor, Name: "Dr. Ruiz", Email: "ruiz@clinic.test", Phone: "600000000",
				Specialization: []string{"orthodontics", "surgery"}, PrimarySpecialization: "surgery",
				LicenseNumber: "L-1", Experience: intPtr(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := tt.input.Validate()
			if len(tt.invalid) == 0 {
				assert.Nil(t, details)
				return
			}
			assert.Len(t, details, len(tt.invalid))
			for _, field := range tt.invalid {
				assert.Contains(t, details, field)
			}
		})
	}
}
