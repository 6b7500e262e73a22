package holds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/seats"
)

func newTestRouter(t *testing.T, seatCount int, ttl time.Duration) (*gin.Engine, *Manager, []uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	inv := seats.NewInventory(nil)
	ids := make([]uuid.UUID, 0, seatCount)
	rows := make([]seats.Seat, 0, seatCount)
	for i := 0; i < seatCount; i++ {
		id := uuid.New()
		ids = append(ids, id)
		rows = append(rows, seats.Seat{
			ID:         id,
			SeatNumber: fmt.Sprintf("A%d", i+1),
			Price:      15000,
			Status:     seats.StatusAvailable,
		})
	}
	require.NoError(t, inv.Add(context.Background(), rows))

	manager := NewManager(inv, nil, nil, ttl)
	engine := gin.New()
	SetupHoldRoutes(engine.Group("/api/v1"), NewController(manager))
	return engine, manager, ids
}

func holdPayload(seatIDs []uuid.UUID) []byte {
	ids := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		ids = append(ids, id.String())
	}
	body, _ := json.Marshal(map[string]interface{}{
		"seatIds": ids,
		"userDetails": map[string]string{
			"name":  "Ravi Kumar",
			"email": "ravi@example.com",
			"phone": "9876543210",
		},
	})
	return body
}

func TestHoldSeatsEndpoint(t *testing.T) {
	engine, _, ids := newTestRouter(t, 2, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seats/hold", bytes.NewReader(holdPayload(ids)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool     `json:"success"`
		HoldIDs   []string `json:"holdIds"`
		ExpiresAt string   `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.HoldIDs, 1)
	_, err := uuid.Parse(resp.HoldIDs[0])
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339, resp.ExpiresAt)
	assert.NoError(t, err)
}

func TestHoldSeatsConflictResponse(t *testing.T) {
	engine, manager, ids := newTestRouter(t, 2, time.Minute)

	_, err := manager.Create(context.Background(), ids[:1], Contact{
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Phone: "9876500000",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seats/hold", bytes.NewReader(holdPayload(ids)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Success   bool     `json:"success"`
		Conflicts []string `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, []string{ids[0].String()}, resp.Conflicts)
}

func TestHoldSeatsRejectsBadSeatID(t *testing.T) {
	engine, _, _ := newTestRouter(t, 1, time.Minute)

	body, _ := json.Marshal(map[string]interface{}{
		"seatIds": []string{"not-a-uuid"},
		"userDetails": map[string]string{
			"name":  "Ravi Kumar",
			"email": "ravi@example.com",
			"phone": "9876543210",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seats/hold", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReleaseHoldEndpoint(t *testing.T) {
	engine, manager, ids := newTestRouter(t, 1, time.Minute)

	hold, err := manager.Create(context.Background(), ids, Contact{
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
		Phone: "9876543210",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/seats/hold/"+hold.ID.String(), nil)
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Already terminal
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/seats/hold/"+hold.ID.String(), nil))
	assert.Equal(t, http.StatusGone, rec.Code)

	// Unknown hold
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/seats/hold/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
