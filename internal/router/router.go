package router

import (
	"github.com/gin-gonic/gin"
	"github.com/statelink/statelink-backend/config"
	"github.com/statelink/statelink-backend/internal/app/controller"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/middleware"
)

type Router struct {
	businessController *controller.BusinessController
	checkoutController *controller.CheckoutController
	adminController    *controller.AdminController
	authMiddleware     *middleware.AuthMiddleware
	sessionMiddleware  *middleware.SessionMiddleware
	config             *config.Config
}

func NewRouter(
	businessController *controller.BusinessController,
	checkoutController *controller.CheckoutController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	sessionMiddleware *middleware.SessionMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		businessController: businessController,
		checkoutController: checkoutController,
		adminController:    adminController,
		authMiddleware:     authMiddleware,
		sessionMiddleware:  sessionMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "StateLink API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		businesses := v1.Group("/businesses")
		{
			businesses.GET("", r.businessController.Search)
			businesses.GET("/search", r.businessController.Autocomplete)
			businesses.GET("/:reference_id", r.businessController.GetBusiness)
			businesses.GET("/:reference_id/services", r.businessController.GetServices)
			businesses.POST("/:reference_id/compliance-requests", r.sessionMiddleware.Ensure(), r.checkoutController.StartCheckout)
		}

		forms := v1.Group("/service-forms", r.sessionMiddleware.Ensure())
		{
			forms.GET("/:request_id", r.checkoutController.GetServiceForm)
			forms.POST("/:request_id", r.checkoutController.SubmitServiceForm)
		}

		payments := v1.Group("/payments", r.sessionMiddleware.Ensure())
		{
			payments.GET("/:request_id", r.checkoutController.GetPayment)
			payments.POST("/:request_id", r.checkoutController.SubmitPayment)
			payments.GET("/:request_id/confirmation", r.checkoutController.GetConfirmation)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/login", r.adminController.Login)

			staff := admin.Group("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.AdminRoleAdmin), string(model.AdminRoleStaff)),
			)
			{
				staff.POST("/logout", r.adminController.Logout)
				staff.GET("/compliance-requests", r.adminController.ListRequests)
				staff.GET("/ws", r.adminController.LiveFeed)
			}

			full := admin.Group("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.AdminRoleAdmin)),
			)
			{
				full.POST("/compliance-requests/:request_id/complete", r.adminController.CompleteRequest)
				full.POST("/businesses/import", r.adminController.ImportBusinesses)
				full.POST("/exports", r.adminController.ExportPaidOrders)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
