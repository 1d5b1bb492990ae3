package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/consignd/internal/auth"
)

const secret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	userID := uuid.New()

	token, err := auth.IssueToken(secret, userID, auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	p, err := auth.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, auth.RoleAdmin, p.Role)
	assert.Equal(t, "admin:"+userID.String(), p.Actor())
}

func TestParse_Rejects(t *testing.T) {
	userID := uuid.New()

	valid, err := auth.IssueToken(secret, userID, auth.RoleBuyer, time.Hour)
	require.NoError(t, err)

	expired, err := auth.IssueToken(secret, userID, auth.RoleBuyer, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{name: "WrongSecret", secret: "other", token: valid},
		{name: "Expired", secret: secret, token: expired},
		{name: "Garbage", secret: secret, token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Parse(tt.secret, tt.token)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestIssueToken_UnknownRole(t *testing.T) {
	_, err := auth.IssueToken(secret, uuid.New(), "owner", time.Hour)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	buyer := uuid.New()
	buyerToken, err := auth.IssueToken(secret, buyer, auth.RoleBuyer, time.Hour)
	require.NoError(t, err)

	adminToken, err := auth.IssueToken(secret, uuid.New(), auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, found := auth.FromContext(r.Context())
		if !found {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("X-Actor", p.Actor())
		w.WriteHeader(http.StatusOK)
	})

	buyerChain := auth.Middleware(secret)(ok)
	adminChain := auth.Middleware(secret)(auth.RequireAdmin(ok))

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		want    int
	}{
		{name: "NoHeader", handler: buyerChain, want: http.StatusUnauthorized},
		{name: "NotBearer", handler: buyerChain, header: "Basic abc", want: http.StatusUnauthorized},
		{name: "Buyer", handler: buyerChain, header: "Bearer " + buyerToken, want: http.StatusOK},
		{name: "BuyerOnAdmin", handler: adminChain, header: "Bearer " + buyerToken, want: http.StatusForbidden},
		{name: "Admin", handler: adminChain, header: "Bearer " + adminToken, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("ActorFromBuyerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+buyerToken)

		rec := httptest.NewRecorder()
		buyerChain.ServeHTTP(rec, req)

		assert.Equal(t, "buyer:"+buyer.String(), rec.Header().Get("X-Actor"))
	})
}
