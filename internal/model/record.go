package model

// Field names of the four extraction targets, in canonical column order.
// These match the JSON keys the oracle is instructed to emit.
const (
	FieldDate      = "date"
	FieldTail      = "tail_number"
	FieldEvent     = "event_type"
	FieldComponent = "component_description"
)

// FieldNames returns the four extraction field names in canonical order.
func FieldNames() []string {
	return []string{FieldDate, FieldTail, FieldEvent, FieldComponent}
}

// ExtractionRecord holds one structured guess for a document. The empty
// string is the null state for every field: the oracle reporting "" and
// reporting null mean the same thing ("not found") and are folded together
// during normalization.
type ExtractionRecord struct {
	Date                 string `json:"date"`
	TailNumber           string `json:"tail_number"`
	EventType            string `json:"event_type"`
	ComponentDescription string `json:"component_description"`
}

// Field returns the value of the named field. Unknown names return "".
func (r ExtractionRecord) Field(name string) string {
	switch name {
	case FieldDate:
		return r.Date
	case FieldTail:
		return r.TailNumber
	case FieldEvent:
		return r.EventType
	case FieldComponent:
		return r.ComponentDescription
	}
	return ""
}

// SetField sets the named field. Unknown names are ignored.
func (r *ExtractionRecord) SetField(name, value string) {
	switch name {
	case FieldDate:
		r.Date = value
	case FieldTail:
		r.TailNumber = value
	case FieldEvent:
		r.EventType = value
	case FieldComponent:
		r.ComponentDescription = value
	}
}

// IsEmpty reports whether every field is null.
func (r ExtractionRecord) IsEmpty() bool {
	return r.Date == "" && r.TailNumber == "" && r.EventType == "" && r.ComponentDescription == ""
}

// ExtractionAttempt tags one record with its 1-based attempt index. Attempts
// exist only while the reconciler is reducing a document; nothing downstream
// sees them.
type ExtractionAttempt struct {
	Index  int
	Record ExtractionRecord
}

// ReconciliationResult is the reduction of N attempts into one record plus a
// conflict report. A field appears in Conflicts only when the attempts
// produced two or more distinct non-null values for it; the slice preserves
// first-seen attempt order.
type ReconciliationResult struct {
	Final       ExtractionRecord    `json:"final"`
	HasConflict bool                `json:"has_conflict"`
	Conflicts   map[string][]string `json:"conflicts,omitempty"`
}

// RemovalReason categorizes why a component came off the aircraft.
type RemovalReason string

const (
	RemovalScheduled RemovalReason = "Scheduled"
	RemovalFailure   RemovalReason = "Failure"
)
