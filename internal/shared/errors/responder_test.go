package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSoldOut = errors.New("sold out")

func soldOutMapper(err error) (ProblemDetail, bool) {
	if errors.Is(err, errSoldOut) {
		return ErrConflict.WithDetail("sold out"), true
	}
	return ProblemDetail{}, false
}

func respond(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders/7", nil)
	fn(c)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	return w, problem
}

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	a := ErrInvalidTransition.WithExtension("current_status", "packing")
	b := a.WithExtension("requested_status", "pending")

	assert.Nil(t, ErrInvalidTransition.Extensions)
	assert.Len(t, a.Extensions, 1)
	assert.Len(t, b.Extensions, 2)
}

func TestResponder_UsesMappers(t *testing.T) {
	r := NewResponder("", soldOutMapper)

	w, problem := respond(t, func(c *gin.Context) { r.RespondError(c, fmt.Errorf("reserve: %w", errSoldOut)) })
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, "/api/v1/orders/7", problem.Instance)
	assert.Equal(t, "sold out", problem.Detail)
}

func TestResponder_PassesThroughWrappedProblem(t *testing.T) {
	r := NewResponder("", soldOutMapper)

	w, problem := respond(t, func(c *gin.Context) {
		r.RespondError(c, fmt.Errorf("lookup: %w", NewNotFoundProblem("Order")))
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", problem.Detail)
	assert.Equal(t, "Order", problem.Extensions["resource_type"])
}

func TestResponder_HidesUnknownErrors(t *testing.T) {
	r := NewResponder("https://errors.example.com", soldOutMapper)

	w, problem := respond(t, func(c *gin.Context) { r.RespondError(c, errors.New("dial tcp 10.0.0.5:5432: refused")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "unexpected error", problem.Detail)
	assert.Equal(t, "https://errors.example.com"+TypeInternal, problem.Type)
}

func TestResponder_Helpers(t *testing.T) {
	r := NewResponder("")

	_, problem := respond(t, func(c *gin.Context) { r.ValidationFailed(c, map[string]string{"status": "required"}) })
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, map[string]any{"status": "required"}, problem.Extensions["fields"])

	w, problem := respond(t, func(c *gin.Context) { r.Unauthorized(c, "missing X-Actor-ID header") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, TypeUnauthorized, problem.Type)

	w, problem = respond(t, func(c *gin.Context) { r.BadRequest(c, "order id must be a positive integer") })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, TypeBadRequest, problem.Type)
}

func TestLifecycleProblems(t *testing.T) {
	transition := NewInvalidTransitionProblem("nope", "packing", "pending", []string{"shipping", "cancelled"})
	assert.Equal(t, http.StatusBadRequest, transition.Status)
	assert.Equal(t, "packing", transition.Extensions["current_status"])
	assert.Equal(t, "pending", transition.Extensions["requested_status"])
	assert.Equal(t, []string{"shipping", "cancelled"}, transition.Extensions["allowed_transitions"])

	status := NewInvalidStatusProblem("bad", []string{"pending"})
	assert.Equal(t, TypeValidation, status.Type)
	assert.Equal(t, []string{"pending"}, status.Extensions["valid_statuses"])
}
