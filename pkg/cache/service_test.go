package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatView struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestGetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	want := []seatView{{ID: "a1", Status: "AVAILABLE"}}
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet("seats:list").SetVal(string(payload))

	var got []seatView
	require.NoError(t, svc.Get(context.Background(), "seats:list", &got))
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("seats:list").RedisNil()

	var got []seatView
	err := svc.Get(context.Background(), "seats:list", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMarshalsJSON(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	value := seatView{ID: "a1", Status: "HELD"}
	payload, err := json.Marshal(value)
	require.NoError(t, err)

	mock.ExpectSet("seats:list", payload, 5*time.Second).SetVal("OK")

	require.NoError(t, svc.Set(context.Background(), "seats:list", value, 5*time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectDel("seats:list").SetVal(1)

	require.NoError(t, svc.Delete(context.Background(), "seats:list"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectExists("seats:list").SetVal(1)
	assert.True(t, svc.Exists(context.Background(), "seats:list"))

	mock.ExpectExists("missing").SetVal(0)
	assert.False(t, svc.Exists(context.Background(), "missing"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
