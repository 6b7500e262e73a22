package seats

import (
	"context"
	"fmt"
	"log/slog"

	"boxoffice/internal/shared/config"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// Seed tops the inventory up to the configured minimum of AVAILABLE seats,
// labelling new seats A1..A10, B1.. and so on at the default price.
func Seed(ctx context.Context, inv *Inventory, cfg config.SeatConfig) error {
	available := 0
	for _, seat := range inv.ListSeats() {
		if seat.IsAvailable() {
			available++
		}
	}

	total := inv.Size()
	appLogger := logger.GetDefault()
	appLogger.Info("Seat inventory check",
		slog.Int("total", total),
		slog.Int("available", available),
		slog.Int("minimum", cfg.MinAvailable),
	)

	if available >= cfg.MinAvailable {
		return nil
	}

	toAdd := cfg.MinAvailable - available
	newSeats := make([]Seat, 0, toAdd)
	for i := 0; i < toAdd; i++ {
		newSeats = append(newSeats, Seat{
			ID:         uuid.New(),
			SeatNumber: SeatNumberFor(total+i+1, cfg.PerRow),
			Price:      cfg.DefaultPrice,
			Status:     StatusAvailable,
		})
	}

	if err := inv.Add(ctx, newSeats); err != nil {
		return fmt.Errorf("failed to seed seats: %w", err)
	}

	appLogger.Info("Seeded seats", slog.Int("created", toAdd))
	return nil
}

// SeatNumberFor generates a label like A1, A2, ... A10, B1 for the n-th seat
func SeatNumberFor(n, perRow int) string {
	if perRow <= 0 {
		perRow = 10
	}
	row := (n - 1) / perRow
	seatInRow := ((n - 1) % perRow) + 1
	return fmt.Sprintf("%c%d", 'A'+rune(row), seatInRow)
}
