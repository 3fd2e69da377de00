package server

import (
	"errors"
	"strings"
	"time"
)

var errInvalidPaidAt = errors.New("invalid_paid_at")

// paidAtLayouts are tried in order; desk clerks usually send a bare date.
var paidAtLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parsePaidAt returns the zero time for an empty value so the payment
// service stamps its own clock.
func parsePaidAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range paidAtLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errInvalidPaidAt
}
