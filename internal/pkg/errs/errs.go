/*
Package errs provides the typed error results used across the server.

This file defines CustomError, which implements the error interface and
carries a business code, a human-readable reason, and the HTTP status used
when the error surfaces on the API.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"teamchat/internal/pkg/logx"
)

// CustomError is the error type returned by every rejectable operation.
// Callers can branch on Code to distinguish validation, authorization,
// not-found, and transient store failures.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the human-readable reason surfaced to clients.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Retryable reports whether the failure is transient. Only store and
// archive availability errors qualify; all business rejections are final.
func (e CustomError) Retryable() bool {
	return e.Code == ErrStoreUnavailable || e.Code == ErrArchiveFailed
}

// NewError constructs a *CustomError from a predefined code. Optional
// details are applied printf-style to message templates that carry
// placeholders. Unknown codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(
				originalErr,
				"Handling ErrUnknown with underlying error",
			)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			)
		}
	}

	return &customErr
}
