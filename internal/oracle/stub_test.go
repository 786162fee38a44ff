package oracle

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubExtract(t *testing.T) {
	t.Parallel()

	s := NewStub()
	raw, err := s.Extract(context.Background(), "invoices/any.pdf", "prompt")
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &payload), "stub reply must be plain JSON")
	assert.Equal(t, "N12345", payload["tail_number"])
	assert.Equal(t, "stub", s.Name())
}

func TestStubExtract_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStub().Extract(ctx, "invoices/any.pdf", "prompt")
	assert.ErrorIs(t, err, context.Canceled)
}
