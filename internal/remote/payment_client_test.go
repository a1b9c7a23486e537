package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
)

func newTestPaymentAPI(t *testing.T, handler http.Handler) *PaymentAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("payment-api", srv.URL, 5*time.Second)
	require.NoError(t, err)
	return NewPaymentAPI(c)
}

func TestCreateIntent_RoundTrip(t *testing.T) {
	var got domain.PaymentIntentRequest
	api := newTestPaymentAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payments/create-payment-intent", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.PaymentIntent{
			ClientSecret:    "cs_test_1",
			PaymentIntentID: "pi_test_1",
			Amount:          got.Amount,
			Currency:        got.Currency,
			Status:          "requires_payment_method",
		})
	}))

	intent, err := api.CreateIntent(context.Background(), domain.PaymentIntentRequest{
		UserID: 42, Amount: 1250, Currency: "mxn", CartID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", intent.ClientSecret)
	assert.Equal(t, int64(1250), intent.Amount)
	assert.Equal(t, int64(42), got.UserID)
}

func TestConfirmPayment_RoundTrip(t *testing.T) {
	api := newTestPaymentAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/confirm-payment", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.PaymentConfirmation{
			Success:   true,
			PaymentID: "pay_1",
		})
	}))

	conf, err := api.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{
		PaymentIntentID: "pi_test_1", PaymentMethodID: "pm_1", UserID: 42, CartID: 3,
	})
	require.NoError(t, err)
	assert.True(t, conf.Success)
	assert.Equal(t, "pay_1", conf.PaymentID)
}

func TestPaymentMethods_RoundTrip(t *testing.T) {
	api := newTestPaymentAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/payment-methods", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("userId"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]domain.PaymentMethod{
			{ID: "pm_1", Type: "card", Card: &domain.CardDetails{Brand: "visa", Last4: "4242"}, IsDefault: true},
		})
	}))

	methods, err := api.PaymentMethods(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "Visa •••• 4242", methods[0].DisplayName())
}

func TestBreaker_OpensAfterConsecutiveServerErrors(t *testing.T) {
	var hits atomic.Int64
	api := newTestPaymentAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))

	for i := 0; i < 6; i++ {
		_, err := api.PaymentMethods(context.Background(), 42)
		require.Error(t, err)
	}
	require.Equal(t, int64(6), hits.Load())

	// The breaker is open now: the next call fails fast, still classified
	// transient for callers.
	_, err := api.PaymentMethods(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int64(6), hits.Load(), "open breaker must not hit the upstream")
}

func TestBreaker_IgnoresBusinessRejections(t *testing.T) {
	var hits atomic.Int64
	api := newTestPaymentAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "amount below minimum", http.StatusBadRequest)
	}))

	for i := 0; i < 10; i++ {
		_, err := api.CreateIntent(context.Background(), domain.PaymentIntentRequest{
			UserID: 42, Amount: 10, Currency: "mxn", CartID: 3,
		})
		require.Error(t, err)
		re := AsError(err)
		require.NotNil(t, re)
		assert.Equal(t, KindBusiness, re.Kind)
	}
	assert.Equal(t, int64(10), hits.Load(), "business rejections never trip the breaker")
}
