package handler

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/middleware"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
	"github.com/jwalitptl/dental-api/pkg/validator"
)

// BindJSON decodes the body into dst and answers 400 with per-field details
// when it does not validate. It reports whether the handler may continue.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httputil.RespondWithError(c, bindError(err))
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for routes where the body may be omitted.
// An empty body leaves dst untouched, whether or not it was sent chunked.
func BindOptionalJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	httputil.RespondWithError(c, bindError(err))
	return false
}

func bindError(err error) error {
	if details := validator.FieldErrors(err); details != nil {
		return apperrors.NewValidation("Validation failed", details)
	}
	return apperrors.NewBadRequest("Invalid request body", err)
}

// ParamID parses the named path parameter as a uuid, answering 400 when it
// is malformed.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid ID format", map[string]string{
			name: fmt.Sprintf("%q is not a valid ID", c.Param(name)),
		}))
		return uuid.Nil, false
	}
	return id, true
}

// QueryID parses an optional uuid query parameter. Absent yields uuid.Nil.
func QueryID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid ID format", map[string]string{
			name: fmt.Sprintf("%q is not a valid ID", raw),
		}))
		return uuid.Nil, false
	}
	return id, true
}

var errNotANumber = errors.New("not a number")

// QueryInt reads an optional non-negative integer query parameter.
func QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httputil.RespondWithError(c, apperrors.NewValidation("Invalid query parameter", map[string]string{
			name: errNotANumber.Error(),
		}))
		return 0, false
	}
	return n, true
}

// QueryBool reads an optional boolean query parameter.
func QueryBool(c *gin.Context, name string, def bool) bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// Actor returns the authenticated user id, or nil on public routes.
func Actor(c *gin.Context) *uuid.UUID {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil
	}
	return &id
}
