package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithMessage sends a success response with a human readable message.
func RespondWithMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// RespondWithError sends an error response. Errors that are not an
// AppError become a 500 whose cause is only exposed in debug mode.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok && appErr.Code != errors.ErrInternal {
		c.JSON(appErr.StatusCode(), Response{
			Status:  "error",
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	// picked up by the request logger
	_ = c.Error(err)

	resp := Response{
		Status:  "error",
		Message: "Internal server error",
	}
	if gin.IsDebugging() {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, items interface{}, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: PaginatedResponse{
			Items: items,
			Pagination: Pagination{
				Page:      page,
				Limit:     limit,
				Total:     total,
				TotalPage: totalPages,
			},
		},
	})
}
