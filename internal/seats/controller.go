package seats

import (
	"context"
	"net/http"
	"time"

	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/utils/response"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// seatListCacheKey caches the GET /seats payload. Staleness is bounded by the
// short TTL plus invalidation on every inventory transition.
const seatListCacheKey = "seats:list"

// HoldPurger clears all hold bookkeeping during an inventory reset
// (interface declared consumer-side to avoid a package cycle)
type HoldPurger interface {
	PurgeAll()
}

type Controller struct {
	inventory    *Inventory
	cacheService cache.Service
	cacheTTL     time.Duration
	seatCfg      config.SeatConfig
	holdPurger   HoldPurger
}

func NewController(inventory *Inventory, cacheService cache.Service, cacheTTL time.Duration, seatCfg config.SeatConfig, holdPurger HoldPurger) *Controller {
	return &Controller{
		inventory:    inventory,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
		seatCfg:      seatCfg,
		holdPurger:   holdPurger,
	}
}

// InvalidateCache drops the cached seat listing; wired as the inventory's
// change listener.
func (c *Controller) InvalidateCache() {
	if c.cacheService == nil {
		return
	}
	if err := c.cacheService.Delete(context.Background(), seatListCacheKey); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat listing cache", "error", err)
	}
}

// ListSeats handles GET /seats. The response is the contract shape consumed
// by the presentation layer: a bare array of seat snapshots.
func (c *Controller) ListSeats(ctx *gin.Context) {
	if c.cacheService != nil {
		var cached []SeatResponse
		if err := c.cacheService.Get(ctx.Request.Context(), seatListCacheKey, &cached); err == nil {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	seats := c.inventory.ListSeats()
	resp := make([]SeatResponse, 0, len(seats))
	for i := range seats {
		resp = append(resp, seats[i].ToResponse())
	}

	if c.cacheService != nil {
		if err := c.cacheService.Set(ctx.Request.Context(), seatListCacheKey, resp, c.cacheTTL); err != nil {
			logger.GetDefault().Debug("failed to cache seat listing", "error", err)
		}
	}

	ctx.JSON(http.StatusOK, resp)
}

// CreateSeats handles POST /seats/bulk: creates seats from a label list at
// the default price
func (c *Controller) CreateSeats(ctx *gin.Context) {
	var req CreateSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	newSeats := make([]Seat, 0, len(req.SeatNumbers))
	for _, label := range req.SeatNumbers {
		newSeats = append(newSeats, Seat{
			ID:         uuid.New(),
			SeatNumber: label,
			Price:      c.seatCfg.DefaultPrice,
			Status:     StatusAvailable,
		})
	}

	if err := c.inventory.Add(ctx.Request.Context(), newSeats); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create seats", nil, err.Error())
		return
	}

	resp := make([]SeatResponse, 0, len(newSeats))
	for i := range newSeats {
		resp = append(resp, newSeats[i].ToResponse())
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats created successfully", resp, nil)
}

// ResetSeats handles POST /admin/seats/reset: clears every hold and returns
// all seats to AVAILABLE
func (c *Controller) ResetSeats(ctx *gin.Context) {
	if c.holdPurger != nil {
		c.holdPurger.PurgeAll()
	}

	if err := c.inventory.Reset(ctx.Request.Context()); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to reset seats", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat inventory reset", gin.H{
		"total_seats": c.inventory.Size(),
	}, nil)
}
