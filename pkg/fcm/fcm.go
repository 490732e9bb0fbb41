package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// DefaultURL is the legacy FCM HTTP endpoint.
const DefaultURL = "https://fcm.googleapis.com/fcm/send"

// ErrNotConfigured is returned when no server key is set.
var ErrNotConfigured = errors.New("fcm server key is not configured")

// Config holds FCM connection details.
type Config struct {
	URL       string
	ServerKey string
	Timeout   time.Duration
}

// Client sends push notifications through FCM. Calls go through a circuit
// breaker so an unreachable provider fails fast.
type Client struct {
	url        string
	serverKey  string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

type message struct {
	To           string       `json:"to"`
	Notification notification `json:"notification"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewClient creates a new FCM client.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	st := gobreaker.Settings{
		Name:        "FCMCircuitBreaker",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}

	return &Client{
		url:        cfg.URL,
		serverKey:  cfg.ServerKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         gobreaker.NewCircuitBreaker(st),
	}
}

// Send pushes a notification to one device. ok reports whether FCM
// answered 200; a non-200 answer is not an error.
func (c *Client) Send(ctx context.Context, deviceToken, title, body string) (bool, error) {
	if c.serverKey == "" {
		return false, ErrNotConfigured
	}
	if deviceToken == "" {
		return false, nil
	}

	payload, err := json.Marshal(message{
		To:           deviceToken,
		Notification: notification{Title: title, Body: body},
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal fcm message: %w", err)
	}

	status, err := c.cb.Execute(func() (interface{}, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		return false, err
	}
	return status.(int) == http.StatusOK, nil
}

// post returns the response status. Only transport failures and 5xx count
// against the breaker.
func (c *Client) post(ctx context.Context, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build fcm request: %w", err)
	}
	req.Header.Set("Authorization", "key="+c.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, fmt.Errorf("fcm returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
