package router

import (
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/interfaces/http/handler"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies holds everything NewEngine wires into the HTTP surface
type Dependencies struct {
	Logger        *zap.Logger
	HTTP          config.HTTPConfig
	Tracing       middleware.TracingConfig
	Version       string
	Opportunities handler.OpportunityStore
	Customers     handler.CustomerAdmin
	// Health checks reported by GET /system/ping, keyed by name
	Health map[string]handler.Pinger
}

// NewEngine builds the gin engine with the global middleware chain and every
// /api/v1 route registered.
func NewEngine(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
			deps.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	}

	engine.Use(
		logger.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.TracingWithConfig(deps.Tracing),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(deps.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(deps.HTTP)),
		middleware.BodyLimit(deps.HTTP.MaxBodySize),
	)

	opportunities := handler.NewOpportunityHandler(deps.Opportunities)
	customers := handler.NewCustomerHandler(deps.Customers)

	systemOpts := []handler.SystemOption{handler.WithVersion(deps.Version)}
	for name, p := range deps.Health {
		systemOpts = append(systemOpts, handler.WithDependency(name, p))
	}
	system := handler.NewSystemHandler(systemOpts...)

	customerGroup := NewDomainGroup("customers", "/customers").
		POST("", customers.Create).
		GET("/ids", customers.ListIDs).
		GET("/:id", customers.GetByID).
		DELETE("/:id", customers.Delete)
	customerGroup.Group("customer-opportunities", "/:id/opportunities").
		POST("", opportunities.Create).
		GET("/recent", opportunities.Recent).
		GET("/ids", opportunities.ListIDs)

	opportunityGroup := NewDomainGroup("opportunities", "/opportunities").
		GET("/:id", opportunities.GetByID).
		PUT("/:id", opportunities.Update).
		DELETE("/:id", opportunities.Delete)

	adminGroup := NewDomainGroup("admin", "/admin").
		POST("/cache/reset", opportunities.ResetCache)

	systemGroup := NewDomainGroup("system", "/system").
		GET("/ping", system.Ping).
		GET("/info", system.GetSystemInfo)

	NewRouter(engine).
		Register(customerGroup).
		Register(opportunityGroup).
		Register(adminGroup).
		Register(systemGroup).
		Setup()

	return engine
}
