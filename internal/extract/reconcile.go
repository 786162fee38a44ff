package extract

import (
	"github.com/seanpattencode/invoice-cli/internal/model"
)

// Reconcile reduces a document's attempts to a single record plus a conflict
// report. Per field, the final value is the first non-null value in attempt
// order; a field conflicts when the attempts produced two or more distinct
// non-null values. The reduction is deterministic: the same attempt sequence
// always yields the same result, and a single attempt can never conflict.
func Reconcile(attempts []model.ExtractionAttempt) model.ReconciliationResult {
	var result model.ReconciliationResult
	for _, name := range model.FieldNames() {
		distinct := distinctValues(attempts, name)
		if len(distinct) == 0 {
			continue
		}
		result.Final.SetField(name, distinct[0])
		if len(distinct) > 1 {
			if result.Conflicts == nil {
				result.Conflicts = make(map[string][]string)
			}
			result.Conflicts[name] = distinct
			result.HasConflict = true
		}
	}
	return result
}

// distinctValues collects the distinct non-null values one field took across
// the attempts, preserving first-seen order.
func distinctValues(attempts []model.ExtractionAttempt, field string) []string {
	var values []string
	seen := make(map[string]bool)
	for _, attempt := range attempts {
		v := attempt.Record.Field(field)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
