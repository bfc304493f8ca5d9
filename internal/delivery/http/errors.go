package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dough-store/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: message})
}

// respondError maps service errors onto HTTP statuses. Internal details of
// unexpected failures are logged, not returned.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrSignature):
		newErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		newErrorResponse(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidTransition):
		newErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPaymentProvider):
		newErrorResponse(c, http.StatusBadGateway, "payment provider unavailable, please try again")
	default:
		rid, _ := c.Get(requestIDKey)
		logrus.WithError(err).WithFields(logrus.Fields{
			"rid":  rid,
			"path": c.FullPath(),
		}).Error("request failed")
		newErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
