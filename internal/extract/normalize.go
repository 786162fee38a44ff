package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

// Normalize turns one raw oracle reply into a record. Fences and prose
// around the JSON object are tolerated; a reply with no object at all is an
// all-null record and no error. Only invalid JSON inside the object span
// returns an error, and even then the record is usable (all null) so the
// caller can log and keep going.
func Normalize(raw string) (model.ExtractionRecord, error) {
	var rec model.ExtractionRecord

	text := stripFences(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return rec, nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return rec, eris.Wrap(err, "extract: parse oracle json")
	}

	for _, name := range model.FieldNames() {
		rec.SetField(name, coerce(payload[name]))
	}
	return rec, nil
}

// stripFences removes a markdown code fence line by line: the opening line
// is dropped whole (it may carry a language tag) and the closing line only
// when it is exactly ```.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && lines[n-1] == "```" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

// coerce flattens a decoded JSON value into the field's string form. Strings
// are trimmed, null and absent collapse to "", bare numbers and booleans are
// printed as-is, and structured values are treated as not found.
func coerce(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64, bool:
		return fmt.Sprint(val)
	default:
		return ""
	}
}
