package extract

import (
	"strings"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

// ClassifyRemoval decides whether a component came off on schedule or
// because it failed. Matching is case-insensitive substring, component
// rules first: oil filters only ever come off on schedule, air filters
// default to failure unless the event was routine, and otherwise the event
// type alone decides. Unknown or missing inputs fall through to Failure.
func ClassifyRemoval(eventType, component string) model.RemovalReason {
	event := strings.ToLower(eventType)
	comp := strings.ToLower(component)

	switch {
	case strings.Contains(comp, "oil filter"):
		return model.RemovalScheduled
	case strings.Contains(comp, "air filter"):
		if strings.Contains(event, "replacement") {
			return model.RemovalFailure
		}
		if strings.Contains(event, "service") || strings.Contains(event, "inspection") {
			return model.RemovalScheduled
		}
		return model.RemovalFailure
	case strings.Contains(event, "inspection"),
		strings.Contains(event, "annual"),
		strings.Contains(event, "service"):
		return model.RemovalScheduled
	}
	return model.RemovalFailure
}
