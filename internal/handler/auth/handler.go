package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type Handler struct {
	svc   Service
	users UserLookup
	auth  *middleware.AuthMiddleware
}

func NewHandler(svc Service, users UserLookup, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, users: users, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", h.auth.Authenticate(), h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}

// Me returns the account behind the bearer token.
func (h *Handler) Me(c *gin.Context) {
	id, _ := middleware.CurrentUserID(c)

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, user)
}
