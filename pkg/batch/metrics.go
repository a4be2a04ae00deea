package batch

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Summary aggregates the results of a batch
type Summary struct {
	TotalLines  int
	Succeeded   int
	Failed      int
	Changed     int
	Cached      int
	Operations  int
	RuleFirings map[string]int
	ErrorCounts map[ErrorCategory]int
	StartTime   time.Time
	EndTime     time.Time

	mu sync.Mutex
}

// NewSummary creates an empty summary starting now
func NewSummary() *Summary {
	return &Summary{
		RuleFirings: make(map[string]int),
		ErrorCounts: make(map[ErrorCategory]int),
		StartTime:   time.Now(),
	}
}

// AddResult folds one line result into the summary
func (s *Summary) AddResult(result LineResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalLines++
	if result.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
	if result.Cached {
		s.Cached++
	}
	if result.Operations > 0 {
		s.Changed++
	}
	s.Operations += result.Operations

	for _, trigger := range result.Fired {
		s.RuleFirings[trigger]++
	}
	for _, rec := range result.Errors {
		s.ErrorCounts[rec.Category]++
	}
	for _, rec := range result.Warnings {
		s.ErrorCounts[rec.Category]++
	}
}

// Complete marks the end of the batch
func (s *Summary) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
}

// Duration returns the batch duration so far
func (s *Summary) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// SuccessRate returns the share of successful lines in percent
func (s *Summary) SuccessRate() float64 {
	return getPercentage(float64(s.Succeeded), float64(s.TotalLines))
}

// Throughput returns lines per second
func (s *Summary) Throughput() float64 {
	seconds := s.Duration().Seconds()
	if seconds == 0 {
		return 0
	}
	return float64(s.TotalLines) / seconds
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// Report creates a human-readable summary report
func (s *Summary) Report() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := fmt.Sprintf(`
Status Line Report
==================
Duration:                %s
Lines:                   %d
Succeeded:               %d (%.1f%%)
Failed:                  %d (%.1f%%)
Changed by rules:        %d
Served from cache:       %d
Field operations:        %d
Throughput:              %.2f lines/sec
`,
		formatDuration(s.Duration()),
		s.TotalLines,
		s.Succeeded, getPercentage(float64(s.Succeeded), float64(s.TotalLines)),
		s.Failed, getPercentage(float64(s.Failed), float64(s.TotalLines)),
		s.Changed,
		s.Cached,
		s.Operations,
		s.Throughput(),
	)

	if len(s.RuleFirings) > 0 {
		report += "\nRule Firings\n------------\n"
		triggers := make([]string, 0, len(s.RuleFirings))
		for trigger := range s.RuleFirings {
			triggers = append(triggers, trigger)
		}
		sort.Strings(triggers)
		for _, trigger := range triggers {
			report += fmt.Sprintf("- %s: %d\n", trigger, s.RuleFirings[trigger])
		}
	}

	if len(s.ErrorCounts) > 0 {
		report += "\nError Distribution\n------------------\n"
		for category := ErrorCategoryWarning; category <= ErrorCategoryCritical; category++ {
			if count := s.ErrorCounts[category]; count > 0 {
				report += fmt.Sprintf("- %s: %d\n", category, count)
			}
		}
	}

	return report
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}
