package seats

import (
	"github.com/gin-gonic/gin"
)

// SetupSeatRoutes wires the seat listing and maintenance endpoints. Hold
// creation lives with the hold manager's routes.
func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller, adminEnabled bool) {
	rg.GET("/seats", controller.ListSeats) // GET /api/v1/seats

	if adminEnabled {
		rg.POST("/seats/bulk", controller.CreateSeats)       // POST /api/v1/seats/bulk
		rg.POST("/admin/seats/reset", controller.ResetSeats) // POST /api/v1/admin/seats/reset
	}
}
