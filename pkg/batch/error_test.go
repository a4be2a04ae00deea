package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/cleaner"
)

func TestErrorHandler_CategorizeError(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{name: "nil", err: nil, want: ErrorCategoryNone},
		{name: "sink", err: &SinkError{Sink: "cache", Err: errors.New("timeout")}, want: ErrorCategoryWarning},
		{
			name: "depth",
			err:  fmt.Errorf("postprocess failed: %w", &cleaner.TimespanDepthError{Level: "NY", Length: 3}),
			want: ErrorCategoryConfiguration,
		},
		{name: "cancelled", err: context.Canceled, want: ErrorCategoryCritical},
		{name: "deadline", err: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), want: ErrorCategoryCritical},
		{name: "other", err: errors.New("boom"), want: ErrorCategoryLineLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eh.CategorizeError(tt.err))
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	assert.Equal(t, ActionContinue, eh.HandleError(NewErrorRecord(errors.New("w"), ErrorCategoryWarning)))
	assert.Equal(t, ActionSkipLine, eh.HandleError(NewErrorRecord(errors.New("l"), ErrorCategoryLineLevel)))
	assert.Equal(t, ActionAbort, eh.HandleError(NewErrorRecord(errors.New("c"), ErrorCategoryConfiguration)))
	assert.Equal(t, ActionAbort, eh.HandleError(NewErrorRecord(errors.New("x"), ErrorCategoryCritical)))

	summary := eh.GetErrorSummary()
	assert.Equal(t, 1, summary[ErrorCategoryWarning])
	assert.Equal(t, 1, summary[ErrorCategoryLineLevel])
	assert.Equal(t, 1, summary[ErrorCategoryConfiguration])
}

func TestErrorHandler_LineLevelThreshold(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	var last Action
	for i := 0; i <= 100; i++ {
		last = eh.HandleError(NewErrorRecord(errors.New("bad line"), ErrorCategoryLineLevel).WithLine(i, nil))
	}
	assert.Equal(t, ActionAbort, last)
	assert.Len(t, eh.GetErrorSamples()[ErrorCategoryLineLevel], 5)
	assert.True(t, eh.IsErrorThresholdExceeded())
}

func TestErrorRecord_String(t *testing.T) {
	record := NewErrorRecord(errors.New("boom"), ErrorCategoryLineLevel).WithLine(3, []string{"a", ""})
	assert.Equal(t, `[LineLevel] Line: 3 Fields: ["a" ""] Error: boom`, record.String())

	bare := NewErrorRecord(nil, ErrorCategoryWarning)
	assert.Equal(t, -1, bare.LineIndex)
	assert.Equal(t, "[Warning] ", bare.String())
}
