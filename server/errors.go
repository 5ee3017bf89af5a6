package server

import (
	"errors"
	"net/http"

	"gridiron/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusFor maps a service error kind to an HTTP status. Consistency is
// checked first because it also matches ErrNotFound.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrConsistency):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Domain messages are shown to
// the client; anything else is logged and replaced with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)

	var domainErr *service.DomainError
	if status == http.StatusInternalServerError || !errors.As(err, &domainErr) {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(fallback)
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	body := gin.H{"error": domainErr.Message}
	if len(domainErr.Context) > 0 {
		body["details"] = domainErr.Context
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
