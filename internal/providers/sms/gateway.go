package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBody = 64 << 10

// GatewayConfig addresses a Veevo-style HTTP GET gateway.
type GatewayConfig struct {
	URL      string
	HashKey  string
	SenderID string
	Timeout  time.Duration
}

type Gateway struct {
	cfg    GatewayConfig
	client *http.Client
}

func NewGateway(cfg GatewayConfig) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Send issues exactly one GET request with hash, receiver, sender and message
// query parameters.
func (g *Gateway) Send(ctx context.Context, msg Message) (Response, error) {
	if strings.TrimSpace(g.cfg.URL) == "" || strings.TrimSpace(g.cfg.HashKey) == "" {
		return Response{}, ErrNotConfigured
	}
	endpoint, err := url.Parse(g.cfg.URL)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	query := endpoint.Query()
	query.Set("hash", g.cfg.HashKey)
	query.Set("receiver", msg.Receiver)
	query.Set("sender", g.cfg.SenderID)
	query.Set("message", msg.Text)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Response{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%w: %v", ErrUnreadableBody, err)
	}
	out := Response{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &StatusError{StatusCode: resp.StatusCode, Body: out.Body}
	}
	return out, nil
}
