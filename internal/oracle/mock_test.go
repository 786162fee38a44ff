package oracle

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/seanpattencode/invoice-cli/internal/doctext"
	"github.com/seanpattencode/invoice-cli/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) Complete(ctx context.Context, req anthropic.CompletionRequest) (*anthropic.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Completion), args.Error(1)
}

// --- Document Reader Mock ---

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Text(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// --- Ensure interface compliance ---
var (
	_ anthropic.Client = (*mockAnthropicClient)(nil)
	_ doctext.Reader   = (*mockReader)(nil)
)
