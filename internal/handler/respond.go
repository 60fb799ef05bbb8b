// Package handler exposes the HTTP handlers for the produce market
// API. Every response, success or failure, is wrapped in the same
// envelope: {success, data|error, timestamp}.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Error taxonomy. Handlers never invent codes outside this set.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeConflict           = "CONFLICT"
	CodeListingInactive    = "LISTING_INACTIVE"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Envelope is the uniform response shape of the API.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// ErrorBody carries the taxonomy code, a human-readable message and
// optional structured details (field errors for validation failures).
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func statusFor(code string) int {
	switch code {
	case CodeValidation, CodeListingInactive:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden, CodeAccountDeactivated:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeEmailTaken, CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// OK writes a success envelope with the given status (200 or 201).
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Timestamp: now()})
}

// Fail writes a failure envelope; the HTTP status follows the code.
func Fail(c echo.Context, code, message string) error {
	return FailDetails(c, code, message, nil)
}

// FailDetails is Fail with a structured details payload.
func FailDetails(c echo.Context, code, message string, details any) error {
	return c.JSON(statusFor(code), Envelope{
		Success:   false,
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
		Timestamp: now(),
	})
}

// Pagination is the paging block returned by list endpoints.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination derives the paging block from a page, limit and total
// row count.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}
