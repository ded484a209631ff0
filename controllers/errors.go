// File: /controllers/errors.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventhub-api/services"
	"eventhub-api/utils"
)

const genericErrorMessage = "Something went wrong. Please try again."

// userMessage returns the text shown for a service error. expected is false
// for errors the caller did not cause, which are logged.
func userMessage(err error) (message string, expected bool) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": "), true
	case errors.Is(err, services.ErrNothingToCancel):
		return "No RSVP found to cancel.", true
	case errors.Is(err, services.ErrNotFound):
		return "The requested item does not exist.", true
	case errors.Is(err, services.ErrCapacityExceeded):
		return "This event is full and cannot accept more participants.", true
	case errors.Is(err, services.ErrDuplicate):
		return capitalize(err.Error()) + ".", true
	case errors.Is(err, services.ErrAuthentication):
		return "Invalid username or password.", true
	case errors.Is(err, services.ErrNotActivated):
		return "Please activate your account before logging in.", true
	case errors.Is(err, services.ErrAuthorization):
		return "You do not have permission to access this page.", true
	}
	return genericErrorMessage, false
}

// redirectWithError flashes the error and redirects to location.
func redirectWithError(c *gin.Context, log *logrus.Entry, err error, location string) {
	message, expected := userMessage(err)
	if !expected {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	utils.RedirectWithFlash(c, utils.FlashError, message, location)
}

// renderError answers a page request that cannot be served.
func renderError(c *gin.Context, log *logrus.Entry, err error) {
	message, expected := userMessage(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAuthorization):
		status = http.StatusForbidden
	case !expected:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	utils.AddFlash(c, utils.FlashError, message)
	utils.SendPageStatus(c, status, "error", gin.H{"status": status})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
