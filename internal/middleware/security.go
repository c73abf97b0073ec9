package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig represents security headers configuration
type SecurityConfig struct {
	HSTS           bool
	HSTSMaxAge     int
	FrameOptions   string
	ReferrerPolicy string
	CSP            string
}

// DefaultSecurityConfig suits a JSON API that also serves PNG check-in codes.
func DefaultSecurityConfig(hsts bool) SecurityConfig {
	return SecurityConfig{
		HSTS:           hsts,
		HSTSMaxAge:     31536000,
		FrameOptions:   "DENY",
		ReferrerPolicy: "no-referrer",
		CSP:            "default-src 'none'; img-src 'self'; frame-ancestors 'none'",
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge)

	return func(c *gin.Context) {
		if config.HSTS {
			c.Header("Strict-Transport-Security", hsts)
		}
		c.Header("X-Frame-Options", config.FrameOptions)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", config.ReferrerPolicy)
		if config.CSP != "" {
			c.Header("Content-Security-Policy", config.CSP)
		}
		c.Next()
	}
}
