// pkg/cleaner/ledger.go
package cleaner

// Ledger collects field positions to delete once all rules have run.
// Deleting while rules are still running would shift positions that
// later rules, or earlier marks, refer to.
type Ledger struct {
	marks []int
}

// NewLedger creates an empty ledger; each pipeline run owns its own
func NewLedger() *Ledger {
	return &Ledger{}
}

// Mark records an absolute position for deletion
func (l *Ledger) Mark(pos int) {
	l.marks = append(l.marks, pos)
}

// Marks returns the recorded positions in recording order
func (l *Ledger) Marks() []int {
	out := make([]int, len(l.marks))
	copy(out, l.marks)
	return out
}

// Len returns the number of recorded marks, duplicates included
func (l *Ledger) Len() int {
	return len(l.marks)
}

// Reset clears all marks
func (l *Ledger) Reset() {
	l.marks = l.marks[:0]
}

// Apply removes every marked position that is in range and holds a non-empty
// value. All positions refer to items as passed in and are removed in one pass,
// so neither recording order nor duplicates change the result. It returns the
// remaining fields and the removed positions in ascending order.
func (l *Ledger) Apply(items []string) ([]string, []int) {
	drop := make(map[int]bool, len(l.marks))
	for _, pos := range l.marks {
		if pos < 0 || pos >= len(items) || items[pos] == "" {
			continue
		}
		drop[pos] = true
	}

	if len(drop) == 0 {
		return items, nil
	}

	kept := make([]string, 0, len(items)-len(drop))
	removed := make([]int, 0, len(drop))
	for i, item := range items {
		if drop[i] {
			removed = append(removed, i)
			continue
		}
		kept = append(kept, item)
	}

	return kept, removed
}
