package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

type staticTokens map[string]*model.TokenClaims

func (s staticTokens) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, apperrors.Unauthorized(errors.New("token is malformed"))
	}
	return claims, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(t *testing.T, roles ...model.Role) (*gin.Engine, uuid.UUID) {
	t.Helper()
	staffID := uuid.New()
	m := NewAuthMiddleware(staticTokens{
		"staff-token": {UserID: staffID, Email: "front@clinic.test", Role: model.RoleStaff},
		"admin-token": {UserID: uuid.New(), Email: "admin@clinic.test", Role: model.RoleAdmin},
	})

	r := gin.New()
	handlers := []gin.HandlerFunc{m.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, m.Authorize(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})
	r.GET("/private", handlers...)
	return r, staffID
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, staffID := newAuthEngine(t)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"valid token", "Bearer staff-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, staffID.String(), w.Body.String())
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	r, _ := newAuthEngine(t, model.RoleAdmin)

	w := get(r, "Bearer staff-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "User role staff is not authorized")

	w = get(r, "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeWithoutAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(staticTokens{})
	r := gin.New()
	r.GET("/private", m.Authorize(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
