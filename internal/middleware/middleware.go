package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CORS middleware for the admin API
func CORS() gin.HandlerFunc {
	return corsHeaders(map[string]string{
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Allow-Methods":  "GET, POST, PATCH, DELETE, OPTIONS",
		"Access-Control-Allow-Headers":  "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID",
		"Access-Control-Expose-Headers": "Content-Length, Content-Disposition, X-Request-ID",
	})
}

// PricingCORSHeaders is the header set of every public pricing response
var PricingCORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

// PublicCORS middleware for the public pricing endpoint
func PublicCORS() gin.HandlerFunc {
	return corsHeaders(PricingCORSHeaders)
}

// PublicCORSHeaders sets the pricing CORS headers on every request under
// prefix. Registered globally ahead of the rate and size limits so their
// rejections carry the headers as well.
func PublicCORSHeaders(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			for k, v := range PricingCORSHeaders {
				c.Header(k, v)
			}
		}
		c.Next()
	}
}

func corsHeaders(headers map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range headers {
			c.Header(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Recovery turns a panic into a 500 carrying the raw panic message
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprint(recovered),
		})
	})
}
