package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

func TestClient_CreateCheckoutSession(t *testing.T) {
	orderID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req payment.SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, orderID, req.OrderID)
		assert.Equal(t, int64(2500), req.AmountCents)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payment.Session{ID: "cs_1", URL: "https://pay.example/cs_1", Status: payment.SessionOpen})
	}))
	defer srv.Close()

	c := payment.NewClient(srv.URL+"/", "sk_test", time.Second)

	s, err := c.CreateCheckoutSession(context.Background(), payment.SessionRequest{OrderID: orderID, AmountCents: 2500})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, payment.SessionOpen, s.Status)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "NotFound", status: http.StatusNotFound, wantErr: payment.ErrNotFound},
		{name: "ServerError", status: http.StatusBadGateway, wantErr: payment.ErrUnavailable},
		{name: "RateLimited", status: http.StatusTooManyRequests, wantErr: payment.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := payment.NewClient(srv.URL, "", time.Second).RetrieveSession(context.Background(), "cs_1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := payment.NewClient(srv.URL, "", 20*time.Millisecond).RetrieveSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, payment.ErrUnavailable)
}
