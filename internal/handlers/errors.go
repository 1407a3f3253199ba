package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sentinel/internal/common"
	"sentinel/internal/services"
	"sentinel/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Stable error codes understood by the frontend.
const (
	CodeValidationFailed    = "validation_failed"
	CodeOrgLabelRequired    = "org_label_required"
	CodeAlreadyActivated    = "already_activated"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeAccountNotActivated = "account_not_activated"
	CodeTooManyAttempts     = "too_many_attempts"
	CodeNotFound            = "not_found"
	CodeUnauthorized        = "unauthorized"
	CodeInternal            = "internal_error"
)

// NewHTTPErrorHandler maps service errors to status codes and the JSON error body.
func NewHTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.WithError(writeErr).Warn("failed to write error response")
		}
	}
}

func errorResponse(err error) (int, *common.ErrorResponse) {
	var verr *validation.Errors
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &common.ErrorResponse{
			Code:       CodeValidationFailed,
			Error:      "Validation failed.",
			Violations: verr.Violations,
		}
	case errors.Is(err, services.ErrOrgLabelRequired):
		return http.StatusUnprocessableEntity, common.NewErrorResponse(CodeOrgLabelRequired, "Organization label is required for company admin registration.")
	case errors.Is(err, services.ErrInvalidActivationToken):
		return http.StatusNotFound, &common.ErrorResponse{Error: "Invalid activation token."}
	case errors.Is(err, services.ErrAlreadyActivated):
		return http.StatusConflict, common.NewErrorResponse(CodeAlreadyActivated, "Account is already activated.")
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.NewErrorResponse(CodeInvalidCredentials, "Invalid credentials.")
	case errors.Is(err, services.ErrAccountNotActivated):
		return http.StatusForbidden, common.NewErrorResponse(CodeAccountNotActivated, "Account is not activated. Please check your email.")
	case errors.Is(err, services.ErrTooManyAttempts):
		return http.StatusTooManyRequests, common.NewErrorResponse(CodeTooManyAttempts, "Too many failed login attempts. Please try again later.")
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, common.NewErrorResponse(CodeNotFound, "Not Found")
	case errors.As(err, &httpErr):
		return httpErr.Code, common.NewErrorResponse(statusCode(httpErr.Code), httpMessage(httpErr))
	default:
		return http.StatusInternalServerError, common.NewErrorResponse(CodeInternal, "An internal error occurred.")
	}
}

func statusCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusInternalServerError:
		return CodeInternal
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}

func httpMessage(err *echo.HTTPError) string {
	if msg, ok := err.Message.(string); ok {
		return msg
	}
	return fmt.Sprint(err.Message)
}
