package holds

import (
	"github.com/gin-gonic/gin"
)

// SetupHoldRoutes wires the hold lifecycle endpoints
func SetupHoldRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/seats/hold", controller.HoldSeats)             // POST /api/v1/seats/hold
	rg.DELETE("/seats/hold/:holdId", controller.ReleaseHold) // DELETE /api/v1/seats/hold/:holdId
}
