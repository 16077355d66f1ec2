package paystack

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
)

func testClient(url string) *Client {
	c := New(url, "sk_test_x", "")
	c.backoff = 0
	return c
}

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))

		var req struct {
			Email     string `json:"email"`
			Amount    int64  `json:"amount"`
			Reference string `json:"reference"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "crew@example.com", req.Email)
		assert.Equal(t, int64(95000), req.Amount, "950 naira must be sent as kobo")
		assert.Equal(t, "ref-123", req.Reference)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc",
				"reference":         "ref-123",
			},
		})
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Initialize(context.Background(), "crew@example.com", 950, "ref-123")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)
	assert.Equal(t, "ref-123", res.Reference)
}

func TestVerifyStatusMapping(t *testing.T) {
	cases := map[string]Status{
		"success":   StatusSuccess,
		"failed":    StatusFailed,
		"ongoing":   StatusOngoing,
		"pending":   StatusPending,
		"abandoned": StatusPending, // unmodeled statuses collapse to pending
		"":          StatusPending,
	}
	for raw, want := range cases {
		raw, want := raw, want
		t.Run("status_"+raw, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/ref-9", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": true,
					"data":   map[string]any{"status": raw},
				})
			}))
			defer srv.Close()

			got, err := testClient(srv.URL).Verify(context.Background(), "ref-9")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "success"},
		})
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Verify(context.Background(), "ref-retry")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := testClient(srv.URL).Verify(ctx, "ref-bad")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
