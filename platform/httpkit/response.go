// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"leadflow_backend/platform/apperr"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Envelope is the standard response format for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Page is the listing payload placed in Envelope.Data.
type Page[T any] struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Data  []T `json:"data"`
}

// JSON sends a successful envelope with the given status code.
func JSON(c *gin.Context, status int, message string, payload interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: payload})
}

// Error sends an error envelope with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Envelope{Success: false, Message: message, Details: details})
}

// OK sends a 200 OK envelope with the given payload.
func OK(c *gin.Context, message string, payload interface{}) {
	JSON(c, http.StatusOK, message, payload)
}

// Created sends a 201 Created envelope with the given payload.
func Created(c *gin.Context, message string, payload interface{}) {
	JSON(c, http.StatusCreated, message, payload)
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind for the status code and code field.
// Anything else is reported as an internal error and captured by Sentry.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		if domainErr.Kind == apperr.KindInternal || domainErr.Kind == apperr.KindUnknown {
			captureError(c, err)
		}
		_ = c.Error(err)
		c.JSON(domainErr.HTTPStatus(), Envelope{
			Success: false,
			Message: domainErr.Message,
			Code:    domainErr.Code(),
			Details: domainErr.Details,
		})
		return true
	}

	captureError(c, err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "internal server error",
		Code:    "internal_error",
	})
	return true
}

func captureError(c *gin.Context, err error) {
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTag("path", c.FullPath())
	hub.Scope().SetTag("method", c.Request.Method)
	if requestID := c.GetString(ContextRequestIDKey); requestID != "" {
		hub.Scope().SetTag("request_id", requestID)
	}
	hub.CaptureException(err)
}
