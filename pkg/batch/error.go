package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/cleaner"
)

// Action defines the recommended action after an error
type Action int

const (
	// ActionContinue indicates processing should continue despite the error
	ActionContinue Action = iota
	// ActionSkipLine indicates the current line is left unformatted
	ActionSkipLine
	// ActionAbort indicates the entire batch should be aborted
	ActionAbort
)

// ErrorCategory defines categories of errors during a batch
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryLineLevel
	ErrorCategoryConfiguration
	ErrorCategoryCritical
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryLineLevel:
		return "LineLevel"
	case ErrorCategoryConfiguration:
		return "Configuration"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// SinkError wraps a failure of an optional side channel (audit store, cache).
// The line itself was still produced.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// ErrorRecord represents a single error during a batch
type ErrorRecord struct {
	Category  ErrorCategory
	LineIndex int
	Fields    []string
	Error     error
	Message   string // Derived from Error but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		LineIndex: -1,
		Error:     err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithLine adds line information to the error record
func (r ErrorRecord) WithLine(index int, fields []string) ErrorRecord {
	r.LineIndex = index
	r.Fields = fields
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.LineIndex >= 0 {
		sb.WriteString(fmt.Sprintf("Line: %d ", r.LineIndex))
	}

	if len(r.Fields) > 0 {
		sb.WriteString(fmt.Sprintf("Fields: %q ", r.Fields))
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

// ErrorHandler manages error handling during a batch
type ErrorHandler struct {
	logger          *zap.Logger
	errorThresholds map[ErrorCategory]int
	errorCounts     map[ErrorCategory]int
	sampleErrors    map[ErrorCategory][]ErrorRecord
	mu              sync.Mutex
	maxSamples      int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ErrorHandler{
		logger: logger,
		errorThresholds: map[ErrorCategory]int{
			ErrorCategoryWarning:       1000, // Sink hiccups are tolerated for a while
			ErrorCategoryLineLevel:     100,
			ErrorCategoryConfiguration: 0, // Tables and field layout disagree, every line is suspect
			ErrorCategoryCritical:      0,
		},
		errorCounts:  make(map[ErrorCategory]int),
		sampleErrors: make(map[ErrorCategory][]ErrorRecord),
		maxSamples:   5, // Store up to 5 sample errors per category
	}
}

// CategorizeError determines the category of an error
func (eh *ErrorHandler) CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var sinkErr *SinkError
	var category ErrorCategory

	switch {
	case errors.As(err, &sinkErr):
		category = ErrorCategoryWarning
	case errors.Is(err, cleaner.ErrTooManyTimespanLevels):
		category = ErrorCategoryConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		category = ErrorCategoryCritical
	default:
		category = ErrorCategoryLineLevel
	}

	eh.logger.Debug("Categorized error",
		zap.String("error", err.Error()),
		zap.String("category", category.String()))

	return category
}

// HandleError records an error and determines the action
func (eh *ErrorHandler) HandleError(record ErrorRecord) Action {
	eh.RecordError(record)

	switch record.Category {
	case ErrorCategoryNone, ErrorCategoryWarning:
		if eh.thresholdExceeded(record.Category) {
			return ActionAbort
		}
		return ActionContinue

	case ErrorCategoryLineLevel:
		if eh.thresholdExceeded(record.Category) {
			return ActionAbort
		}
		return ActionSkipLine

	case ErrorCategoryConfiguration, ErrorCategoryCritical:
		eh.logger.Error("Aborting batch",
			zap.String("category", record.Category.String()),
			zap.String("error", record.Message))
		return ActionAbort

	default:
		return ActionContinue
	}
}

// RecordError saves an error occurrence
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++

	samples := eh.sampleErrors[record.Category]
	if len(samples) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(samples, record)
	}

	logLevel := zap.InfoLevel
	switch record.Category {
	case ErrorCategoryWarning:
		logLevel = zap.WarnLevel
	case ErrorCategoryConfiguration, ErrorCategoryCritical:
		logLevel = zap.ErrorLevel
	}

	eh.logger.Log(logLevel, "Status line error",
		zap.String("category", record.Category.String()),
		zap.Int("line", record.LineIndex),
		zap.String("error", record.Message))
}

// thresholdExceeded reports whether a category has gone past its threshold
func (eh *ErrorHandler) thresholdExceeded(category ErrorCategory) bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	threshold, exists := eh.errorThresholds[category]
	return exists && eh.errorCounts[category] > threshold
}

// GetErrorSummary returns the error counts per category
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int)
	for category, count := range eh.errorCounts {
		summary[category] = count
	}

	return summary
}

// GetErrorSamples returns sample errors for each category
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord)
	for category, records := range eh.sampleErrors {
		categorySamples := make([]ErrorRecord, len(records))
		copy(categorySamples, records)
		samples[category] = categorySamples
	}

	return samples
}

// IsErrorThresholdExceeded checks if any error category has exceeded its threshold
func (eh *ErrorHandler) IsErrorThresholdExceeded() bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	for category, count := range eh.errorCounts {
		threshold, exists := eh.errorThresholds[category]
		if exists && count > threshold {
			return true
		}
	}

	return false
}
