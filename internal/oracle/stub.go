package oracle

import "context"

// stubResponse mirrors the example object in the extraction prompt, so
// offline runs exercise the full normalize and reconcile path with a
// parseable reply.
const stubResponse = `{"date": "03/15/2024", "tail_number": "N12345", "event_type": "REPLACEMENT", "component_description": "alternator"}`

// Stub is an offline oracle with a canned reply. It lets the pipeline, sinks
// and store run end to end with no binary, key, or network.
type Stub struct{}

// NewStub returns a stub oracle.
func NewStub() *Stub { return &Stub{} }

// Extract implements Oracle.
func (s *Stub) Extract(ctx context.Context, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return stubResponse, nil
}

// Name implements Oracle.
func (s *Stub) Name() string { return "stub" }
