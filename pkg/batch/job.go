package batch

import (
	"time"

	"github.com/google/uuid"
)

// LineJob is one photo's field sequence waiting to be formatted
type LineJob struct {
	ID        string    // Unique job identifier
	Index     int       // Position of the line in the batch
	Fields    []string  // Extracted fields, empty positions included
	CreatedAt time.Time // Job creation timestamp
}

// NewLineJob creates a new line job
func NewLineJob(index int, fields []string) LineJob {
	return LineJob{
		ID:        uuid.New().String(),
		Index:     index,
		Fields:    fields,
		CreatedAt: time.Now(),
	}
}

// LineResult represents the outcome of formatting one line
type LineResult struct {
	JobID      string
	Index      int
	Text       string
	Success    bool
	Cached     bool
	Fired      []string
	Operations int
	Errors     []ErrorRecord
	Warnings   []ErrorRecord // Side channel failures, the line is still usable
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	WorkerID   int
}

// NewLineResult initializes a result for a job
func NewLineResult(job LineJob, workerID int) *LineResult {
	return &LineResult{
		JobID:     job.ID,
		Index:     job.Index,
		StartTime: time.Now(),
		WorkerID:  workerID,
	}
}

// Complete marks the line as done and calculates duration
func (r *LineResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError adds an error to the result
func (r *LineResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// AddWarning adds a warning to the result without failing it
func (r *LineResult) AddWarning(warning ErrorRecord) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors checks if any errors occurred
func (r *LineResult) HasErrors() bool {
	return len(r.Errors) > 0
}
