package holds

import (
	"errors"
	"net/http"
	"time"

	"boxoffice/internal/seats"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	manager *Manager
}

func NewController(manager *Manager) *Controller {
	return &Controller{manager: manager}
}

// HoldSeats handles POST /seats/hold. The response keeps the contract shape
// the seat-grid client consumes: holdIds stays an array even though one
// multi-seat hold is created per request.
func (c *Controller) HoldSeats(ctx *gin.Context) {
	var req HoldSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	for _, idStr := range req.SeatIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid seat ID: " + idStr,
			})
			return
		}
		seatIDs = append(seatIDs, id)
	}

	hold, err := c.manager.Create(ctx.Request.Context(), seatIDs, req.UserDetails)
	if err != nil {
		var conflict *seats.ConflictError
		if errors.As(err, &conflict) {
			conflicts := make([]string, 0, len(conflict.SeatIDs))
			for _, id := range conflict.SeatIDs {
				conflicts = append(conflicts, id.String())
			}
			ctx.JSON(http.StatusConflict, gin.H{
				"success":   false,
				"message":   err.Error(),
				"conflicts": conflicts,
			})
			return
		}

		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"holdIds":   []string{hold.ID.String()},
		"expiresAt": hold.ExpiresAt.Format(time.RFC3339),
		"message":   "Seats held successfully",
	})
}

// ReleaseHold handles DELETE /seats/hold/:holdId (buyer dismissed payment)
func (c *Controller) ReleaseHold(ctx *gin.Context) {
	holdID, err := uuid.Parse(ctx.Param("holdId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid hold ID",
		})
		return
	}

	if err := c.manager.Cancel(ctx.Request.Context(), holdID); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrHoldNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrHoldNotActive):
			status = http.StatusGone
		}
		ctx.JSON(status, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Hold cancelled and seats released",
	})
}
