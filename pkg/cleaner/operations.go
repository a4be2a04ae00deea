// pkg/cleaner/operations.go
package cleaner

import (
	"strings"
	"time"

	"github.com/David-Botos/statusline/pkg/model"
)

// snapshot copies the sequence so a stage's changes can be diffed afterwards
func snapshot(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// diffFields records one operation for every position whose value changed
func diffFields(
	runID string,
	before, after []string,
	trigger, operation, reason string,
) []model.FieldOperation {
	n := len(before)
	if len(after) < n {
		n = len(after)
	}

	var ops []model.FieldOperation
	now := time.Now()
	for i := 0; i < n; i++ {
		if before[i] == after[i] {
			continue
		}
		ops = append(ops, model.FieldOperation{
			RunID:         runID,
			Position:      i,
			Trigger:       trigger,
			Operation:     operation,
			OriginalValue: before[i],
			NewValue:      after[i],
			Reason:        reason,
			CleanedAt:     now,
		})
	}
	return ops
}

// deletionOperations records the fields removed by the ledger
func deletionOperations(runID string, before []string, removed []int) []model.FieldOperation {
	if len(removed) == 0 {
		return nil
	}

	ops := make([]model.FieldOperation, 0, len(removed))
	now := time.Now()
	for _, pos := range removed {
		ops = append(ops, model.FieldOperation{
			RunID:         runID,
			Position:      pos,
			Operation:     model.OperationFieldDeletion,
			OriginalValue: before[pos],
			Reason:        "marked_by_rule",
			CleanedAt:     now,
		})
	}
	return ops
}

// joinNonEmpty joins the non-empty fields, keeping duplicates
func joinNonEmpty(items []string, separator string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, separator)
}
