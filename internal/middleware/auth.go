package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

var (
	errMissingToken = errors.New("missing authorization header")
	errTokenFormat  = errors.New("invalid authorization format")
)

// TokenValidator resolves a bearer token into its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the JWT token and sets the user identity in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.Unauthorized(errMissingToken))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abort(c, apperrors.Unauthorized(errTokenFormat))
			return
		}

		claims, err := m.tokens.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// Authorize lets the request through only when the authenticated role is
// one of roles. It must run after Authenticate.
func (m *AuthMiddleware) Authorize(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			abort(c, apperrors.Unauthorized(errMissingToken))
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		abort(c, apperrors.Forbidden(fmt.Sprintf("User role %s is not authorized to access this route", role)))
	}
}

// CurrentUserID returns the authenticated user, if any.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func CurrentRole(c *gin.Context) (model.Role, bool) {
	v, ok := c.Get(ContextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(model.Role)
	return role, ok
}

func abort(c *gin.Context, err error) {
	httputil.RespondWithError(c, err)
	c.Abort()
}
