package pdf

import (
	"context"
	"io"
)

// Provider renders printable documents.
type Provider interface {
	GenerateChallan(ctx context.Context, data ChallanData) (io.Reader, error)
}
