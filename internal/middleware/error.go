package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/service"
)

const internalErrorDetail = "internal server error"

// ErrorHandler writes the JSON response for the last error a handler
// recorded with c.Error, unless a response was already written.
func ErrorHandler() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := Translate(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
		}
		c.JSON(status, body)
	}
}

// Recovery turns panics into a logged 500 response
func Recovery() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": internalErrorDetail})
	})
}

// Translate maps an error to its HTTP status and response body
func Translate(err error) (int, gin.H) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
		forbiddenErr  *service.ForbiddenError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, gin.H{validationErr.Field: []string{validationErr.Message}}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, gin.H{"detail": notFoundErr.Message}
	case errors.As(err, &conflictErr):
		return http.StatusBadRequest, gin.H{"errors": conflictErr.Message}
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden, gin.H{"detail": forbiddenErr.Message}
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, gin.H{"detail": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"detail": internalErrorDetail}
	}
}
