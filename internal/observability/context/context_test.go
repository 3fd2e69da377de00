package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestScopedValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithOrgCode(ctx, "SAIR-GLOBAL")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "SAIR-GLOBAL", OrgCodeFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
