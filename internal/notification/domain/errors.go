package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPhone     = errors.New("invalid_phone")
	ErrDispatch         = errors.New("dispatch_failed")
	ErrUnsupportedEvent = errors.New("unsupported_event")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrOutboxNotFound   = errors.New("outbox_message_not_found")
)

// Dispatch failure reasons.
const (
	ReasonInvalidPhone   = "invalid_phone"
	ReasonTemplate       = "template"
	ReasonGatewayStatus  = "gateway_status"
	ReasonTransport      = "transport"
	ReasonTimeout        = "timeout"
	ReasonUnreadableBody = "unreadable_body"
	ReasonDisabled       = "gateway_disabled"
)

// DispatchError describes why a notification was not delivered. It never
// fails the operation that produced the notification.
type DispatchError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *DispatchError) Error() string {
	msg := "dispatch failed: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DispatchError) Unwrap() error { return e.Err }

func (e *DispatchError) Is(target error) bool { return target == ErrDispatch }

// Permanent reports whether retrying cannot help.
func (e *DispatchError) Permanent() bool {
	switch e.Reason {
	case ReasonInvalidPhone, ReasonTemplate, ReasonDisabled:
		return true
	}
	return false
}
