package sms

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDisabled       = errors.New("sms gateway disabled")
	ErrNotConfigured  = errors.New("sms gateway not configured")
	ErrUnreadableBody = errors.New("sms gateway response unreadable")
)

type Message struct {
	Receiver string
	Text     string
}

type Response struct {
	StatusCode int
	Body       string
}

type Provider interface {
	Send(ctx context.Context, msg Message) (Response, error)
}

// StatusError is returned for any non-2xx gateway reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sms gateway returned status %d", e.StatusCode)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) (Response, error) {
	return Response{}, ErrDisabled
}
