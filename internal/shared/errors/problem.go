// Package errors renders failures as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is the application/problem+json body.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with key set. The receiver's map is left untouched.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

const (
	TypeValidation        = "/problems/validation-error"
	TypeInvalidTransition = "/problems/invalid-transition"
	TypeNotFound          = "/problems/not-found"
	TypeConflict          = "/problems/conflict"
	TypeInternal          = "/problems/internal-error"
	TypeUnauthorized      = "/problems/unauthorized"
	TypeForbidden         = "/problems/forbidden"
	TypeBadRequest        = "/problems/bad-request"
)

// Templates. Callers copy them through the With* methods.
var (
	ErrValidation        = ProblemDetail{Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest}
	ErrInvalidTransition = ProblemDetail{Type: TypeInvalidTransition, Title: "Invalid Status Transition", Status: http.StatusBadRequest}
	ErrBadRequest        = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}
	ErrUnauthorized      = ProblemDetail{Type: TypeUnauthorized, Title: "Unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden         = ProblemDetail{Type: TypeForbidden, Title: "Forbidden", Status: http.StatusForbidden}
	ErrNotFound          = ProblemDetail{Type: TypeNotFound, Title: "Resource Not Found", Status: http.StatusNotFound}
	ErrConflict          = ProblemDetail{Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict}
	ErrInternal          = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}
)

// NewValidationProblem reports per-field failures under the "fields" extension.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewInvalidStatusProblem reports an unknown status value along with the accepted ones.
func NewInvalidStatusProblem(detail string, valid []string) ProblemDetail {
	return ErrValidation.WithDetail(detail).WithExtension("valid_statuses", valid)
}

// NewInvalidTransitionProblem reports a status move the lifecycle rejects.
func NewInvalidTransitionProblem(detail, current, requested string, allowed []string) ProblemDetail {
	return ErrInvalidTransition.
		WithDetail(detail).
		WithExtension("current_status", current).
		WithExtension("requested_status", requested).
		WithExtension("allowed_transitions", allowed)
}

// NewNotFoundProblem names the missing resource kind, e.g. "Order not found".
func NewNotFoundProblem(resourceType string) ProblemDetail {
	return ErrNotFound.
		WithDetail(resourceType + " not found").
		WithExtension("resource_type", resourceType)
}
