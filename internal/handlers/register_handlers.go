package handlers

import (
	"github.com/fondoapps/fondo_ledger_app/cmd/docs"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	"github.com/fondoapps/fondo_ledger_app/pkg/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/", GetHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	registerAuthRoutes(r, cfg, services)
	setupAPIV1Routes(r, cfg, services)
	setupSwaggerRoutes(r, cfg)
}

func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	authHandler := newAuthHandler(cfg, services.User)

	// Login is rate limited per client IP to slow down credential guessing.
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		rate, _ = limiter.NewRateFromFormatted("100-M")
	}
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := r.Group("/auth", middleware.RateLimit(ipLimiter))
	{
		auth.POST("/login", authHandler.login)
	}
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	RegisterLedgerRoutes(v1, services)
}

// RegisterLedgerRoutes wires the ledger endpoints onto the given group.
func RegisterLedgerRoutes(v1 *gin.RouterGroup, services *portssvc.ServiceContainer) {
	ledgerHandler := newLedgerHandler(services.Ledger)
	movementHandler := newMovementHandler(services.Movement, services.Ledger)
	closingHandler := newClosingHandler(services.Closing)

	ledger := v1.Group("/ledger/:companyID")
	{
		ledger.GET("/balances", ledgerHandler.getBalances)

		ledger.GET("/movements", movementHandler.listMovements)
		ledger.POST("/movements", movementHandler.createMovement)
		ledger.PUT("/movements/:movementID", movementHandler.updateMovement)
		ledger.DELETE("/movements/:movementID", movementHandler.deleteMovement)

		ledger.GET("/closings", closingHandler.listClosings)
		ledger.POST("/closings", closingHandler.recordClosing)
		ledger.PUT("/closings/:closingID", closingHandler.updateClosing)
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
