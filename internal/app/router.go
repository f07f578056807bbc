package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"transit/internal/handler"
	"transit/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler      *handler.BookingHandler
	DriverHandler       *handler.DriverHandler
	AvailabilityHandler *handler.AvailabilityHandler
	BusHandler          *handler.BusHandler
	RouteHandler        *handler.RouteHandler
	UserHandler         *handler.UserHandler
	NotificationHandler *handler.NotificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
	AllowedOrigins      []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Role resolution.
		v1.GET("/identity/:uid", deps.UserHandler.ResolveIdentity)

		// Client profiles.
		clients := v1.Group("/clients")
		{
			clients.POST("/register", deps.UserHandler.RegisterClient)
			clients.GET("/:id", deps.UserHandler.GetClient)
		}

		// Owner profiles plus the owner's live fleet view and activity feed.
		owners := v1.Group("/owners")
		{
			owners.POST("/register", deps.UserHandler.RegisterOwner)
			owners.GET("/:id", deps.UserHandler.GetOwner)
			owners.GET("/:id/buses/active", deps.AvailabilityHandler.ByOwner)
			owners.GET("/:id/notifications", deps.NotificationHandler.Feed)
		}

		// Companies and their driver rosters.
		companies := v1.Group("/companies")
		{
			companies.POST("", deps.UserHandler.CreateCompany)
			companies.GET("", deps.UserHandler.ListCompanies)
			companies.GET("/:id/drivers", deps.DriverHandler.ListByCompany)
		}

		// Routes and the availability index per route.
		routes := v1.Group("/routes")
		{
			routes.POST("", deps.RouteHandler.Create)
			routes.GET("", deps.RouteHandler.GetAll)
			routes.GET("/:id", deps.RouteHandler.Get)
			routes.GET("/:id/buses", deps.AvailabilityHandler.ByRoute)
			routes.GET("/:id/buses/watch", deps.AvailabilityHandler.Watch)
		}

		// Fleet registry.
		buses := v1.Group("/buses")
		{
			buses.POST("", deps.BusHandler.Register)
			buses.GET("", deps.BusHandler.GetAll)
			buses.GET("/:id", deps.BusHandler.Get)
			buses.GET("/:id/availability", deps.AvailabilityHandler.ByBus)
			buses.GET("/:id/bookings", deps.BookingHandler.Manifest)
		}

		// Drivers and the activation protocol.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.POST("/:id/activate", deps.DriverHandler.Activate)
			drivers.POST("/:id/deactivate", deps.DriverHandler.Deactivate)
		}

		// Bookings.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.ListByClient)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.POST("/:id/pickup", deps.BookingHandler.Pickup)
			bookings.POST("/:id/dropoff", deps.BookingHandler.Dropoff)
		}
	}

	return router
}
