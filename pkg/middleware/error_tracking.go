package middleware

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/sofraeats/marketplace/pkg/errors"
	"github.com/sofraeats/marketplace/pkg/logger"
)

// SentryMiddleware returns the sentry-gin handler that binds a hub to each request
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorTracking records request breadcrumbs and reports server errors to Sentry
func ErrorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		apperrors.AddBreadcrumbForRequest(c.Request.Method, c.FullPath(), status, time.Since(start))

		for _, ginErr := range c.Errors {
			if !apperrors.ShouldReportError(ginErr.Err, status) {
				continue
			}
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("correlation_id", GetCorrelationID(c))
					scope.SetContext("request", map[string]interface{}{
						"method": c.Request.Method,
						"path":   c.FullPath(),
						"status": status,
					})
					hub.CaptureException(ginErr.Err)
				})
			}
		}
	}
}

// RecoveryWithSentry recovers from panics, reports them, and returns a 500
func RecoveryWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", r)
				}

				logger.ErrorContext(c.Request.Context(), "panic recovered",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetLevel(sentry.LevelFatal)
						scope.SetTag("correlation_id", GetCorrelationID(c))
						hub.Recover(r)
					})
				} else {
					sentry.CurrentHub().Recover(r)
				}

				c.AbortWithStatusJSON(500, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "An unexpected error occurred",
					},
				})
			}
		}()

		c.Next()
	}
}
