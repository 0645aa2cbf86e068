//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	pacttest "github.com/Apurer/go-gin-order-lifecycle/test/pact"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/authz"
	orderhandler "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/http/handler"
	ordermemory "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestOrdersProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateOrdersBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateOrderPacking: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedPackingOrder(t)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp swaps in a fresh store per provider state so seeded IDs start at 1.
type contractProviderApp struct {
	service atomic.Pointer[orderapp.Service]
	router  atomic.Pointer[gin.Engine]
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.router.Load().ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset() {
	store := ordermemory.NewStore()
	core := orderapp.NewService(store.Repositories(), store, authz.NewStoreOwnerAuthorizer(store))
	router := gin.New()
	router.Use(gin.Recovery())
	orderhandler.NewOrdersAPI(orderobs.New(core)).Register(router.Group("/api/v1"))
	a.service.Store(core)
	a.router.Store(router)
}

func (a *contractProviderApp) seedPackingOrder(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	svc := a.service.Load()
	actor := domain.Actor{ID: "pact-seed", Role: domain.RoleAdmin}
	order, err := svc.PlaceOrder(ctx, types.PlaceOrderInput{Actor: actor, StoreID: pacttest.StoreID, CustomerID: 1})
	require.NoError(t, err)
	require.Equal(t, pacttest.PackingOrderID, order.ID)
	for _, status := range []string{"confirmed", "processing", "packing"} {
		_, err := svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: actor, OrderID: order.ID, Status: status})
		require.NoError(t, err)
	}
}
