package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/transport_incident_system/internal/apperr"
	"github.com/sirupsen/logrus"
)

// resolveError сопоставляет вид ошибки сервиса с HTTP-кодом.
// Только ErrStore прячет детали за generic-сообщением, остальные виды
// отдаются вызывающему как есть.
func resolveError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, apperr.ErrUnknownCaller):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown caller"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
