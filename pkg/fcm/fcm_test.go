package fcm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"apotek/pkg/fcm"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := fcm.NewClient(fcm.Config{URL: srv.URL, ServerKey: "secret"})
	ok, err := c.Send(context.Background(), "device-1", "Order Update", "Your order #1 status: confirmed")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "device-1", got["to"])
	assert.Equal(t, "Order Update", got["notification"].(map[string]interface{})["title"])
}

func TestClient_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ok, err := fcm.NewClient(fcm.Config{URL: srv.URL, ServerKey: "wrong"}).Send(context.Background(), "d", "t", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_NotConfigured(t *testing.T) {
	ok, err := fcm.NewClient(fcm.Config{}).Send(context.Background(), "d", "t", "b")
	assert.ErrorIs(t, err, fcm.ErrNotConfigured)
	assert.False(t, ok)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := fcm.NewClient(fcm.Config{URL: srv.URL, ServerKey: "secret"})
	for i := 0; i < 5; i++ {
		_, err := c.Send(context.Background(), "d", "t", "b")
		assert.Error(t, err)
	}

	_, err := c.Send(context.Background(), "d", "t", "b")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}
