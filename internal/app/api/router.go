package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	orderhandler "github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/adapters/http/handler"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-lifecycle/internal/platform/metrics"
)

// NewRouter builds the HTTP engine: middleware, probes, and the /api/v1 order routes.
func NewRouter(serviceName string, allowedOrigins []string, service ports.Service, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(m.Middleware())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	orderhandler.NewOrdersAPI(service).Register(router.Group("/api/v1"))
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			orderhandler.HeaderActorID, orderhandler.HeaderStoreID, orderhandler.HeaderActorRole,
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
