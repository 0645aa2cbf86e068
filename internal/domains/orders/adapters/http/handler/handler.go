package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-order-lifecycle/internal/shared/errors"
)

// Identity headers set by the upstream auth layer.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderStoreID   = "X-Store-ID"
	HeaderActorRole = "X-Actor-Role"
)

const actorKey = "orders.actor"

var registerFieldNames sync.Once

// OrdersAPI serves the order lifecycle endpoints.
type OrdersAPI struct {
	service   ports.Service
	responder *apierrors.Responder
}

// NewOrdersAPI wires dependencies.
func NewOrdersAPI(service ports.Service) *OrdersAPI {
	registerFieldNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
	return &OrdersAPI{
		service:   service,
		responder: apierrors.NewResponder("", ProblemFromError),
	}
}

// Register mounts the routes on r, normally the /api/v1 group.
func (api *OrdersAPI) Register(r gin.IRouter) {
	r.GET("/order-statuses", api.ListStatuses)

	orders := r.Group("/orders", api.identity)
	orders.POST("", api.PlaceOrder)
	orders.GET("", api.ListOrders)
	orders.GET("/summary", api.StatusSummary)
	orders.POST("/bulk-status", api.BulkUpdateStatus)
	orders.GET("/:id", api.GetOrder)
	orders.PUT("/:id/status", api.UpdateStatus)
	orders.GET("/:id/transitions", api.AvailableTransitions)
	orders.GET("/:id/status-history", api.History)
}

// Get /api/v1/order-statuses
func (api *OrdersAPI) ListStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.Catalogue())
}

// Post /api/v1/orders
func (api *OrdersAPI) PlaceOrder(c *gin.Context) {
	var payload mapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.bindError(c, err)
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), types.PlaceOrderInput{
		Actor:      actorFrom(c),
		StoreID:    payload.StoreID,
		CustomerID: payload.CustomerID,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainOrder(order))
}

// Get /api/v1/orders?status=a&status=b
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	var statuses []string
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, part)
			}
		}
	}
	orders, err := api.service.ListOrders(c.Request.Context(), types.ListOrdersInput{Actor: actorFrom(c), Statuses: statuses})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrders(orders))
}

// Get /api/v1/orders/summary
func (api *OrdersAPI) StatusSummary(c *gin.Context) {
	summary, err := api.service.StatusSummary(c.Request.Context(), actorFrom(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.Summary(summary))
}

// Get /api/v1/orders/:id
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	id, ok := api.orderID(c)
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), types.OrderRef{Actor: actorFrom(c), OrderID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

// Put /api/v1/orders/:id/status
func (api *OrdersAPI) UpdateStatus(c *gin.Context) {
	id, ok := api.orderID(c)
	if !ok {
		return
	}
	var payload mapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.bindError(c, err)
		return
	}
	result, err := api.service.UpdateStatus(c.Request.Context(), mapper.ToUpdateStatusInput(actorFrom(c), id, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromUpdateStatusResult(result))
}

// Post /api/v1/orders/bulk-status
// Partial failures still answer 200; see the errors array.
func (api *OrdersAPI) BulkUpdateStatus(c *gin.Context) {
	var payload mapper.BulkStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.bindError(c, err)
		return
	}
	result, err := api.service.BulkUpdateStatus(c.Request.Context(), types.BulkUpdateInput{
		Actor:    actorFrom(c),
		OrderIDs: payload.OrderIDs,
		Status:   payload.Status,
		Notes:    payload.Notes,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromBulkResult(result))
}

// Get /api/v1/orders/:id/transitions
func (api *OrdersAPI) AvailableTransitions(c *gin.Context) {
	id, ok := api.orderID(c)
	if !ok {
		return
	}
	result, err := api.service.AvailableTransitions(c.Request.Context(), types.OrderRef{Actor: actorFrom(c), OrderID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromAvailableTransitions(result))
}

// Get /api/v1/orders/:id/status-history
func (api *OrdersAPI) History(c *gin.Context) {
	id, ok := api.orderID(c)
	if !ok {
		return
	}
	history, err := api.service.History(c.Request.Context(), types.OrderRef{Actor: actorFrom(c), OrderID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromHistory(history))
}

func (api *OrdersAPI) identity(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(HeaderActorID))
	if id == "" {
		api.responder.Unauthorized(c, "missing "+HeaderActorID+" header")
		c.Abort()
		return
	}
	actor := domain.Actor{ID: id, Role: domain.RoleStaff}
	if raw := strings.TrimSpace(c.GetHeader(HeaderStoreID)); raw != "" {
		storeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || storeID <= 0 {
			api.responder.BadRequest(c, HeaderStoreID+" must be a positive integer")
			c.Abort()
			return
		}
		actor.StoreID = storeID
	}
	if strings.EqualFold(strings.TrimSpace(c.GetHeader(HeaderActorRole)), string(domain.RoleAdmin)) {
		actor.Role = domain.RoleAdmin
	}
	c.Set(actorKey, actor)
	c.Next()
}

// bindError reports missing required fields per field and anything else as a malformed body.
func (api *OrdersAPI) bindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		api.responder.ValidationFailed(c, fields)
		return
	}
	api.responder.BadRequest(c, err.Error())
}

// jsonFieldName reports validation failures under the wire name of the field.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func (api *OrdersAPI) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		api.responder.BadRequest(c, "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

// ProblemFromError maps lifecycle errors to problem details. Internal causes are not echoed.
func ProblemFromError(err error) (apierrors.ProblemDetail, bool) {
	var invalidStatus *domain.InvalidStatusError
	var invalidTransition *domain.InvalidTransitionError
	switch {
	case errors.As(err, &invalidStatus):
		return apierrors.NewInvalidStatusProblem(invalidStatus.Error(), mapper.Statuses(invalidStatus.Valid)), true
	case errors.As(err, &invalidTransition):
		return apierrors.NewInvalidTransitionProblem(
			invalidTransition.Error(),
			string(invalidTransition.From),
			string(invalidTransition.To),
			mapper.Statuses(invalidTransition.Allowed),
		), true
	case errors.Is(err, orderapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail("Access denied"), true
	case errors.Is(err, orderapp.ErrNotFound):
		return apierrors.NewNotFoundProblem("Order"), true
	case errors.Is(err, orderapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail("Order was modified concurrently, retry"), true
	case errors.Is(err, orderapp.ErrPersistence):
		return apierrors.ErrInternal.WithDetail("Failed to update order"), true
	}
	return apierrors.ProblemDetail{}, false
}
