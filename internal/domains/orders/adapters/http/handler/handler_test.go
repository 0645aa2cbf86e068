package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/authz"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/memory"
	orderapp "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-order-lifecycle/internal/shared/errors"
)

type problemBody struct {
	Type       string         `json:"type"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Extensions map[string]any `json:"extensions"`
}

type stubService struct {
	ports.Service
	err error
}

func (s stubService) UpdateStatus(context.Context, types.UpdateStatusInput) (*types.UpdateStatusResult, error) {
	return nil, s.err
}

func newRouter(svc ports.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewOrdersAPI(svc).Register(r.Group("/api/v1"))
	return r
}

func newTestRouter() *gin.Engine {
	store := memory.NewStore()
	svc := orderapp.NewService(store.Repositories(), store, authz.NewStoreOwnerAuthorizer(store))
	return newRouter(svc)
}

type caller struct {
	actor   string
	storeID string
	role    string
}

var (
	adminCaller = caller{actor: "ops-1", role: "admin"}
	staffCaller = caller{actor: "staff-1", storeID: "1"}
	otherCaller = caller{actor: "staff-2", storeID: "2"}
)

func do(t *testing.T, r *gin.Engine, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who.actor != "" {
		req.Header.Set(HeaderActorID, who.actor)
	}
	if who.storeID != "" {
		req.Header.Set(HeaderStoreID, who.storeID)
	}
	if who.role != "" {
		req.Header.Set(HeaderActorRole, who.role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createOrder(t *testing.T, r *gin.Engine, storeID int64) int64 {
	t.Helper()
	w := do(t, r, adminCaller, http.MethodPost, "/api/v1/orders", map[string]any{"store_id": storeID, "customer_id": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID int64 `json:"id"`
	}](t, w).ID
}

func setStatus(t *testing.T, r *gin.Engine, who caller, id int64, status string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, r, who, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", id), map[string]any{"status": status})
}

func TestListStatuses(t *testing.T) {
	r := newTestRouter()
	w := do(t, r, caller{}, http.MethodGet, "/api/v1/order-statuses", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Statuses    []string            `json:"statuses"`
		Transitions map[string][]string `json:"transitions"`
	}](t, w)
	assert.Len(t, body.Statuses, 8)
	assert.Equal(t, []string{"refunded"}, body.Transitions["delivered"])
	assert.Equal(t, []string{}, body.Transitions["cancelled"])
}

func TestIdentityRequired(t *testing.T) {
	r := newTestRouter()
	w := do(t, r, caller{}, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ContentTypeProblemJSON, w.Header().Get("Content-Type"))

	w = do(t, r, caller{actor: "x", storeID: "abc"}, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus_Success(t *testing.T) {
	r := newTestRouter()
	id := createOrder(t, r, 1)

	w := setStatus(t, r, staffCaller, id, "confirmed")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]string](t, w)
	assert.Equal(t, map[string]string{
		"old_status":         "pending",
		"new_status":         "confirmed",
		"fulfillment_status": "unfulfilled",
	}, body)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	r := newTestRouter()
	id := createOrder(t, r, 1)

	w := setStatus(t, r, staffCaller, id, "teleported")
	require.Equal(t, http.StatusBadRequest, w.Code)
	problem := decode[problemBody](t, w)
	assert.Equal(t, apierrors.TypeValidation, problem.Type)
	assert.Len(t, problem.Extensions["valid_statuses"], 8)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	r := newTestRouter()
	id := createOrder(t, r, 1)
	for _, s := range []string{"confirmed", "processing", "packing"} {
		require.Equal(t, http.StatusOK, setStatus(t, r, adminCaller, id, s).Code)
	}

	w := setStatus(t, r, staffCaller, id, "pending")
	require.Equal(t, http.StatusBadRequest, w.Code)
	problem := decode[problemBody](t, w)
	assert.Equal(t, apierrors.TypeInvalidTransition, problem.Type)
	assert.Equal(t, "packing", problem.Extensions["current_status"])
	assert.Equal(t, "pending", problem.Extensions["requested_status"])
	assert.Equal(t, []any{"shipping", "cancelled"}, problem.Extensions["allowed_transitions"])
}

func TestUpdateStatus_ErrorStatuses(t *testing.T) {
	r := newTestRouter()
	id := createOrder(t, r, 1)

	assert.Equal(t, http.StatusForbidden, setStatus(t, r, otherCaller, id, "confirmed").Code)
	w := setStatus(t, r, staffCaller, 999, "confirmed")
	require.Equal(t, http.StatusNotFound, w.Code)
	notFound := decode[problemBody](t, w)
	assert.Equal(t, "Order not found", notFound.Detail)
	assert.Equal(t, "Order", notFound.Extensions["resource_type"])
	assert.Equal(t, http.StatusBadRequest, setStatus(t, r, staffCaller, 0, "confirmed").Code)
}

func TestUpdateStatus_BlankStatusListsValidStatuses(t *testing.T) {
	r := newTestRouter()
	id := createOrder(t, r, 1)

	for _, body := range []map[string]any{{"status": ""}, {"notes": "no status"}} {
		w := do(t, r, staffCaller, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", id), body)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		problem := decode[problemBody](t, w)
		assert.Equal(t, apierrors.TypeValidation, problem.Type)
		assert.Len(t, problem.Extensions["valid_statuses"], 8)
		assert.NotContains(t, problem.Extensions, "fields")
	}
}

func TestUpdateStatus_ConflictAndPersistence(t *testing.T) {
	w := setStatus(t, newRouter(stubService{err: orderapp.ErrConflict}), staffCaller, 1, "confirmed")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = setStatus(t, newRouter(stubService{err: fmt.Errorf("%w: connection reset", orderapp.ErrPersistence)}), staffCaller, 1, "confirmed")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestBulkUpdateStatus(t *testing.T) {
	r := newTestRouter()
	foreign := createOrder(t, r, 2)
	own := createOrder(t, r, 1)

	w := do(t, r, staffCaller, http.MethodPost, "/api/v1/orders/bulk-status", map[string]any{
		"order_ids": []int64{404, foreign, own},
		"status":    "confirmed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		UpdatedCount int `json:"updated_count"`
		Errors       []struct {
			OrderID int64  `json:"order_id"`
			Error   string `json:"error"`
		} `json:"errors"`
	}](t, w)
	assert.Equal(t, 1, body.UpdatedCount)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, int64(404), body.Errors[0].OrderID)
	assert.Equal(t, "Order not found", body.Errors[0].Error)
	assert.Equal(t, foreign, body.Errors[1].OrderID)
	assert.Equal(t, "Access denied", body.Errors[1].Error)

	w = do(t, r, staffCaller, http.MethodPost, "/api/v1/orders/bulk-status", map[string]any{"order_ids": []int64{own}, "status": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, staffCaller, http.MethodPost, "/api/v1/orders/bulk-status", map[string]any{"order_ids": []int64{}, "status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, staffCaller, http.MethodPost, "/api/v1/orders/bulk-status", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	problem := decode[problemBody](t, w)
	assert.Equal(t, map[string]any{"order_ids": "required"}, problem.Extensions["fields"])
}

func TestTransitionsHistoryAndListing(t *testing.T) {
	r := newTestRouter()
	id := createOrder(t, r, 1)
	require.Equal(t, http.StatusOK, setStatus(t, r, staffCaller, id, "confirmed").Code)
	require.Equal(t, http.StatusOK, setStatus(t, r, staffCaller, id, "cancelled").Code)

	w := do(t, r, staffCaller, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/transitions", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"order_id":%d,"current_status":"cancelled","allowed_transitions":[]}`, id), w.Body.String())

	w = do(t, r, staffCaller, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/status-history", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		History []struct {
			OldStatus string `json:"old_status"`
			NewStatus string `json:"new_status"`
			ChangedBy string `json:"changed_by"`
		} `json:"history"`
	}](t, w)
	require.Len(t, history.History, 2)
	assert.Equal(t, "cancelled", history.History[0].NewStatus)
	assert.Equal(t, "staff-1", history.History[0].ChangedBy)

	w = do(t, r, staffCaller, http.MethodGet, "/api/v1/orders?status=cancelled,pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(t, r, staffCaller, http.MethodGet, "/api/v1/orders/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[map[string]int](t, w)
	assert.Equal(t, 1, summary["cancelled"])
	assert.Equal(t, 0, summary["pending"])

	w = do(t, r, staffCaller, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode[map[string]any](t, w)["fulfillment_status"])
}
