package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smallbiznis/sairex/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewaySendsSingleGetWithQuery(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("hash"))
		assert.Equal(t, "923001234567", q.Get("receiver"))
		assert.Equal(t, "SAIREX-SMS", q.Get("sender"))
		assert.Equal(t, "hello & bye", q.Get("message"))
		_, _ = w.Write([]byte("STATUS: SUCCESSFUL\n"))
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{URL: srv.URL, HashKey: "secret", SenderID: "SAIREX-SMS", Timeout: time.Second})
	resp, err := g.Send(context.Background(), Message{Receiver: "923001234567", Text: "hello & bye"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "STATUS: SUCCESSFUL", resp.Body)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGatewayNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGateway(GatewayConfig{URL: srv.URL, HashKey: "secret", SenderID: "S"})
	resp, err := g.Send(context.Background(), Message{Receiver: "92300", Text: "x"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestGatewayTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g := NewGateway(GatewayConfig{URL: srv.URL, HashKey: "secret", SenderID: "S", Timeout: 50 * time.Millisecond})
	_, err := g.Send(context.Background(), Message{Receiver: "92300", Text: "x"})
	require.Error(t, err)
}

func TestGatewayRequiresConfiguration(t *testing.T) {
	g := NewGateway(GatewayConfig{URL: "http://localhost"})
	_, err := g.Send(context.Background(), Message{Receiver: "92300", Text: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewFromConfigDisabled(t *testing.T) {
	p := NewFromConfig(config.Config{SMS: config.SMSConfig{Enabled: false}})
	_, err := p.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrDisabled)
}
