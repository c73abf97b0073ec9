package router

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

const APIVersion = "1.0"

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	AllowedOrigins []string
	// HSTS is only sent outside development.
	HSTS        bool
	MaxBodySize int64
}

type Router struct {
	engine   *gin.Engine
	handlers []Handler
}

func NewRouter(log *logger.Logger, httpMetrics *middleware.HTTPMetrics, config RouterConfig, handlers ...Handler) (*Router, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}

	engine := gin.New()

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
	)
	if httpMetrics != nil {
		engine.Use(httpMetrics.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(config.HSTS)),
		middleware.CORS(middleware.DefaultCORSConfig(config.AllowedOrigins...)),
		middleware.BodyLimit(config.MaxBodySize),
	)

	return &Router{engine: engine, handlers: handlers}, nil
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", APIVersion)
		c.Next()
	})

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
