package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes wires the payment and booking endpoints
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/payment/create-order", controller.CreateOrder) // POST /api/v1/payment/create-order
	rg.POST("/payment/confirm", controller.ConfirmPayment)   // POST /api/v1/payment/confirm
	rg.GET("/bookings/:id", controller.GetBooking)           // GET /api/v1/bookings/:id
}
