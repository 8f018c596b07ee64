package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/billing"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/counter"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/generate"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/config"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/metrics"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/middleware"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server/respond"
)

// RouterDeps carries the handlers wired by bootstrap.
type RouterDeps struct {
	Config          config.Config
	GenerateHandler *generate.Handler
	CounterHandler  *counter.Handler
	ProfileHandler  *profiles.Handler
	BillingHandler  *billing.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	// The counter is public social proof; everything else requires identity.
	deps.CounterHandler.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.Auth())
	deps.GenerateHandler.RegisterRoutes(authed)
	deps.ProfileHandler.RegisterRoutes(authed)
	deps.BillingHandler.RegisterRoutes(authed)

	if deps.Config.Env == "dev" {
		dev := authed.Group("/dev")
		deps.ProfileHandler.RegisterDevRoutes(dev)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
