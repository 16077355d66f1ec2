package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendVerification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Name         string `json:"name"`
			Email        string `json:"email"`
			Verification string `json:"verification"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada Lovelace", req.Name)
		assert.Equal(t, "ada@example.com", req.Email)
		assert.Equal(t, "482913", req.Verification)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := New(srv.URL).SendVerification(context.Background(), "Ada Lovelace", "ada@example.com", "482913")
	require.NoError(t, err)
}

func TestSendVerificationRetriesOutages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.backoff = 0
	require.NoError(t, c.SendVerification(context.Background(), "A B", "a@b.com", "000000"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendVerificationRejectedIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.backoff = 0
	assert.Error(t, c.SendVerification(context.Background(), "A B", "a@b.com", "000000"))
	assert.Equal(t, int32(1), calls.Load())
}
