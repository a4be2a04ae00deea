// pkg/model/cleaning.go
package model

import (
	"time"
)

// Operation names recorded for every field change made by the pipeline
const (
	OperationLiteralReplacement = "literal_replacement"
	OperationTimespanFill       = "timespan_fill"
	OperationRuleRewrite        = "rule_rewrite"
	OperationFieldDeletion      = "field_deletion"
)

// FieldOperation represents a single change made to one field of a status line
type FieldOperation struct {
	RunID         string    `db:"run_id"`         // Identifies one pipeline run (one photo)
	Position      int       `db:"position"`       // Absolute index in the sequence at the time of the change
	Trigger       string    `db:"trigger_token"`  // Rule trigger token, empty for non-rule stages
	Operation     string    `db:"operation"`      // One of the Operation* constants
	OriginalValue string    `db:"original_value"` // Value before the change
	NewValue      string    `db:"new_value"`      // Value after the change (empty for deletions)
	Reason        string    `db:"reason"`         // Short machine-readable reason
	CleanedAt     time.Time `db:"cleaned_at"`     // When the change was made
}
