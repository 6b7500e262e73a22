package bookings

import (
	"errors"
	"net/http"

	"boxoffice/internal/holds"
	"boxoffice/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// CreateOrder handles POST /payment/create-order. The amount is quoted in
// minor currency units and must match the sum of the held seats' prices.
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	holdID, err := uuid.Parse(req.HoldIDs[0])
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid hold ID",
		})
		return
	}

	order, err := c.service.CreatePaymentOrder(ctx.Request.Context(), holdID, req.Amount)
	if err != nil {
		var mismatch *AmountMismatchError
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			status = http.StatusNotFound
		case errors.Is(err, holds.ErrHoldNotActive):
			status = http.StatusGone
		case errors.As(err, &mismatch):
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orderId":  order.OrderID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"key":      order.Key,
	})
}

// ConfirmPayment handles POST /payment/confirm
func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	var req ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	holdID, err := uuid.Parse(req.HoldIDs[0])
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid hold ID",
		})
		return
	}

	booking, err := c.service.ConfirmPayment(ctx.Request.Context(), ConfirmPaymentInput{
		HoldID:    holdID,
		OrderRef:  req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrOrderNotFound), errors.Is(err, holds.ErrHoldNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrPaymentVerification):
			status = http.StatusPaymentRequired
		case errors.Is(err, holds.ErrHoldNotActive):
			status = http.StatusGone
		case errors.Is(err, ErrOrderNotPayable):
			status = http.StatusConflict
		}
		ctx.JSON(status, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"bookingId": booking.ID.String(),
		"message":   "Booking confirmed",
	})
}

// GetBooking handles GET /bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch booking", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking fetched successfully", booking.ToResponse(), nil)
}
