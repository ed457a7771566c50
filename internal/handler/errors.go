package handler

import (
	"errors"
	"net/http"

	"supplydesk/internal/middleware"
	"supplydesk/internal/service"
	"supplydesk/pkg/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps service errors onto HTTP statuses. Unclassified errors are
// logged and answered with the fixed fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, response.Error("Item not found"))
	case errors.Is(err, service.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, response.Error("Request not found"))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, response.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response.Error("Invalid password"))
	default:
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, response.Error(fallback))
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
}

func actor(c *gin.Context) string {
	if a := c.GetString(middleware.ActorKey); a != "" {
		return a
	}
	return service.AdminSubject
}
