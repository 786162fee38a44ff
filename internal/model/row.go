package model

import (
	"fmt"
	"strings"
	"time"
)

// maxFilenameLen caps the Filename column; invoice scans often carry long
// scanner-generated names that wreck column alignment in spreadsheets.
const maxFilenameLen = 30

// OutputHeaders is the column order every sink writes.
func OutputHeaders() []string {
	return []string{
		"Filename",
		"Date",
		"Tail_Number",
		"Event_Type",
		"Component_Description",
		"Reason_for_Removal",
		"Conflict_Flag",
		"Conflict_Details",
	}
}

// DebugHeaders is the column order of the single-document debug export,
// which omits the conflict pair because a single attempt cannot conflict.
func DebugHeaders() []string {
	return []string{
		"Filename",
		"Date",
		"Tail_Number",
		"Event_Type",
		"Component_Description",
		"Reason_for_Removal",
	}
}

// OutputRow is one document's flattened result, ready for a sink.
type OutputRow struct {
	Filename             string        `json:"filename"`
	Date                 string        `json:"date"`
	TailNumber           string        `json:"tail_number"`
	EventType            string        `json:"event_type"`
	ComponentDescription string        `json:"component_description"`
	Reason               RemovalReason `json:"reason"`
	ConflictFlag         string        `json:"conflict_flag,omitempty"`
	ConflictDetails      string        `json:"conflict_details,omitempty"`
}

// Values returns the row in OutputHeaders order.
func (r OutputRow) Values() []string {
	return []string{
		r.Filename,
		r.Date,
		r.TailNumber,
		r.EventType,
		r.ComponentDescription,
		string(r.Reason),
		r.ConflictFlag,
		r.ConflictDetails,
	}
}

// DebugValues returns the row in DebugHeaders order.
func (r OutputRow) DebugValues() []string {
	return []string{
		r.Filename,
		r.Date,
		r.TailNumber,
		r.EventType,
		r.ComponentDescription,
		string(r.Reason),
	}
}

// ConflictFlagged marks rows whose attempts disagreed; clean rows carry an
// empty flag so spreadsheet filters light up only the contested ones.
const ConflictFlagged = "CONFLICT"

// BuildOutputRow flattens a reconciled document into its output row. The
// filename is truncated to 30 runes and conflict details list each contested
// field's distinct values in attempt order.
func BuildOutputRow(filename string, rec ReconciliationResult, reason RemovalReason) OutputRow {
	row := OutputRow{
		Filename:             TruncateFilename(filename),
		Date:                 rec.Final.Date,
		TailNumber:           rec.Final.TailNumber,
		EventType:            rec.Final.EventType,
		ComponentDescription: rec.Final.ComponentDescription,
		Reason:               reason,
	}
	if rec.HasConflict {
		row.ConflictFlag = ConflictFlagged
		row.ConflictDetails = FormatConflicts(rec.Conflicts)
	}
	return row
}

// TruncateFilename shortens a name to the column cap without splitting a
// multibyte character.
func TruncateFilename(name string) string {
	runes := []rune(name)
	if len(runes) <= maxFilenameLen {
		return name
	}
	return string(runes[:maxFilenameLen])
}

// conflictLabels maps field names to the labels used in Conflict_Details.
var conflictLabels = map[string]string{
	FieldDate:      "Dates",
	FieldTail:      "Tails",
	FieldEvent:     "Events",
	FieldComponent: "Components",
}

// FormatConflicts renders a conflict map as "Label: [a, b]; Label: [c, d]"
// with fields in canonical order. Fields without a conflict are omitted.
func FormatConflicts(conflicts map[string][]string) string {
	var parts []string
	for _, name := range FieldNames() {
		values, ok := conflicts[name]
		if !ok || len(values) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: [%s]", conflictLabels[name], strings.Join(values, ", ")))
	}
	return strings.Join(parts, "; ")
}

// DocumentResult is what the pipeline records per document: the output row
// plus enough detail to audit it later. Errors counts oracle attempts that
// returned an error rather than output.
type DocumentResult struct {
	ID          string               `json:"id"`
	RunID       string               `json:"run_id"`
	Filename    string               `json:"filename"`
	Row         OutputRow            `json:"row"`
	Attempts    int                  `json:"attempts"`
	Errors      int                  `json:"errors,omitempty"`
	Result      ReconciliationResult `json:"result"`
	ProcessedAt time.Time            `json:"processed_at"`
}

// RunStatus tracks a run's lifecycle in the store.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one invocation of the extraction pipeline over a document set.
type Run struct {
	ID          string     `json:"id"`
	InputDir    string     `json:"input_dir"`
	OutputPath  string     `json:"output_path"`
	Oracle      string     `json:"oracle"`
	Attempts    int        `json:"attempts"`
	Status      RunStatus  `json:"status"`
	Stats       RunStats   `json:"stats"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunStats aggregates per-document outcomes for a run.
type RunStats struct {
	Documents int `json:"documents"`
	Conflicts int `json:"conflicts"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
}
