package oracle

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Script replays canned responses from a YAML fixture keyed by document
// basename. Attempt k gets entry k; once the list runs out the last entry
// repeats, and unknown documents get an empty reply. Powers offline runs
// and the pipeline tests.
type Script struct {
	mu        sync.Mutex
	responses map[string][]string
	served    map[string]int
}

// NewScript loads a script oracle from a YAML file.
func NewScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "oracle: read script %s", path)
	}

	// The YAML has a top-level "responses" key
	var wrapper struct {
		Responses map[string][]string `yaml:"responses"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "oracle: parse script")
	}

	return NewScriptFromMap(wrapper.Responses), nil
}

// NewScriptFromMap builds a script oracle directly from a response map.
func NewScriptFromMap(responses map[string][]string) *Script {
	if responses == nil {
		responses = make(map[string][]string)
	}
	return &Script{
		responses: responses,
		served:    make(map[string]int),
	}
}

// Name identifies the adapter in logs and run records.
func (s *Script) Name() string { return "script" }

// Extract returns the next canned response for the document.
func (s *Script) Extract(ctx context.Context, documentPath, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "oracle: context cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.Base(documentPath)
	replies := s.responses[name]
	if len(replies) == 0 {
		return "", nil
	}

	i := s.served[name]
	s.served[name]++
	if i >= len(replies) {
		i = len(replies) - 1
	}
	return replies[i], nil
}
