package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "shopbill/docs"
	"shopbill/internal/domain"
	"shopbill/internal/handler"
	"shopbill/internal/middleware"
	"shopbill/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	invoiceH *handler.InvoiceHandler,
	catalogH *handler.CatalogHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
	log zerolog.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	session := protected.Group("/auth")
	session.GET("/me", authH.Me)
	session.PUT("/shop", authH.SwitchShop)

	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleCashier)
	protected.PUT("/grocery/:id/restock", staff, catalogH.RestockGrocery)
	protected.PUT("/fertilizer/:id/restock", staff, catalogH.RestockFertilizer)

	invoices := protected.Group("/invoices")
	invoices.Use(staff)
	invoices.POST("", invoiceH.Create)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.POST("/:id/payments", invoiceH.Settle)
	invoices.GET("/:id/receipt", invoiceH.Receipt)
	invoices.POST("/:id/receipt/share", invoiceH.ShareReceipt)

	return r
}
