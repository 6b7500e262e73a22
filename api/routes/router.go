// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"boxoffice/internal/bookings"
	"boxoffice/internal/holds"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived engine components built at startup
type Dependencies struct {
	Inventory *seats.Inventory
	Manager   *holds.Manager
	Bookings  *bookings.Service
	Cache     cache.Service // nil when Redis is disabled
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	deps   Dependencies
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, deps Dependencies) *Router {
	return &Router{
		config: cfg,
		db:     db,
		deps:   deps,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupSeatRoutes(api)
		r.setupHoldRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if r.db != nil {
			if err := r.db.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"error":     err.Error(),
					"timestamp": time.Now(),
					"service":   "boxoffice-backend",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "boxoffice-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"seats_total": r.deps.Inventory.Size(),
			"timestamp":   time.Now(),
		})
	})
}

// setupSeatRoutes configures the seat listing and maintenance routes. The
// inventory's change listener is bound to the controller's cache invalidation
// so the seat listing never serves a transition stale beyond the cache TTL.
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	seatController := seats.NewController(
		r.deps.Inventory,
		r.deps.Cache,
		r.config.Redis.SeatListTTL,
		r.config.Seats,
		r.deps.Manager,
	)
	r.deps.Inventory.SetChangeListener(seatController.InvalidateCache)

	seats.SetupSeatRoutes(rg, seatController, r.config.AdminEndpointsEnabled)
}

// setupHoldRoutes configures the hold lifecycle routes
func (r *Router) setupHoldRoutes(rg *gin.RouterGroup) {
	holdController := holds.NewController(r.deps.Manager)
	holds.SetupHoldRoutes(rg, holdController)
}

// setupBookingRoutes configures the payment and booking routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingController := bookings.NewController(r.deps.Bookings)
	bookings.SetupBookingRoutes(rg, bookingController)
}
