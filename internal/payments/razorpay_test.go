package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/shared/config"
)

func newTestGateway(baseURL string) *RazorpayGateway {
	return NewRazorpayGateway(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
		BaseURL:   baseURL,
		Currency:  "INR",
	})
}

func TestCreateOrderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "test_secret", pass)

		var req razorpayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(30000), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(razorpayOrderResponse{
			ID:       "order_test123",
			Amount:   req.Amount,
			Currency: req.Currency,
		})
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	order, err := gw.CreateOrder(context.Background(), 30000, "INR", "hold-receipt")
	require.NoError(t, err)

	assert.Equal(t, "order_test123", order.OrderID)
	assert.Equal(t, int64(30000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.Key)
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	order, err := gw.CreateOrder(context.Background(), 1, "INR", "hold-receipt")
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestCreateOrderMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	_, err := gw.CreateOrder(context.Background(), 30000, "INR", "hold-receipt")
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	gw := newTestGateway("http://unused")

	mac := hmac.New(sha256.New, []byte("test_secret"))
	mac.Write([]byte("order_test123|pay_test456"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, gw.VerifySignature("order_test123", "pay_test456", valid))
	assert.False(t, gw.VerifySignature("order_test123", "pay_test456", "deadbeef"))
	assert.False(t, gw.VerifySignature("order_other", "pay_test456", valid))
	assert.False(t, gw.VerifySignature("order_test123", "pay_test456", ""))
}
