package controllers

import (
	"errors"
	"net/http"

	"gatherly-api/services"
	"gatherly-api/utils"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[services.Kind]int{
	services.KindNotFound:     http.StatusNotFound,
	services.KindInvalidState: http.StatusConflict,
	services.KindForbidden:    http.StatusForbidden,
	services.KindValidation:   http.StatusBadRequest,
	services.KindUnavailable:  http.StatusServiceUnavailable,
}

// respondError writes the HTTP response for an engine error. Unavailable
// errors are attached to the context so ErrorHandler logs the cause.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "service temporarily unavailable, retry later"
	var e *services.Error
	if kind != services.KindUnavailable && errors.As(err, &e) && e.Message != "" {
		message = e.Message
	}
	if kind == services.KindUnavailable {
		_ = c.Error(err)
	}

	utils.SendErrorMessage(c, status, string(kind), message)
}
