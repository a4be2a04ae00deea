package batch

import (
	"context"

	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/model"
	"github.com/David-Botos/statusline/pkg/statusline"
)

// Recorder persists the operations of a pipeline run
type Recorder interface {
	RecordOperations(ctx context.Context, operations []model.FieldOperation) error
}

// Cache stores finished lines keyed by their fields
type Cache interface {
	Get(ctx context.Context, fields []string, separator string) (string, bool, error)
	Set(ctx context.Context, fields []string, separator, line string) error
}

// Worker formats lines taken from a job channel
type Worker struct {
	ID           int
	formatter    *statusline.Formatter
	recorder     Recorder
	cache        Cache
	errorHandler *ErrorHandler
	logger       *zap.Logger
}

// NewWorker creates a new worker. recorder and cache may be nil.
func NewWorker(
	id int,
	formatter *statusline.Formatter,
	recorder Recorder,
	cache Cache,
	errorHandler *ErrorHandler,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		ID:           id,
		formatter:    formatter,
		recorder:     recorder,
		cache:        cache,
		errorHandler: errorHandler,
		logger:       logger.With(zap.Int("workerID", id)),
	}
}

// Start begins the worker processing loop
func (w *Worker) Start(ctx context.Context, jobs <-chan LineJob, results chan<- LineResult) {
	w.logger.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Worker stopping due to context cancellation")
			return

		case job, ok := <-jobs:
			if !ok {
				// Channel closed, no more jobs
				w.logger.Debug("Worker stopping due to closed job channel")
				return
			}

			result := w.ProcessJob(ctx, job)

			select {
			case results <- result:
			case <-ctx.Done():
				w.logger.Warn("Context cancelled while sending result", zap.Int("line", job.Index))
				return
			}
		}
	}
}

// ProcessJob formats a single line
func (w *Worker) ProcessJob(ctx context.Context, job LineJob) LineResult {
	result := NewLineResult(job, w.ID)
	separator := w.formatter.Settings().Separator

	if w.cache != nil {
		line, ok, err := w.cache.Get(ctx, job.Fields, separator)
		if err != nil {
			w.addSinkWarning(result, job, "cache", err)
		} else if ok {
			result.Text = line
			result.Cached = true
			result.Complete(true)
			return *result
		}
	}

	line, err := w.formatter.Build(job.Fields)
	if err != nil {
		record := NewErrorRecord(err, w.errorHandler.CategorizeError(err)).WithLine(job.Index, job.Fields)
		result.AddError(record)
		result.Complete(false)
		return *result
	}

	result.Text = line.Text
	if line.Result != nil {
		result.Fired = line.Result.Fired
		result.Operations = len(line.Result.Operations)

		if w.recorder != nil && len(line.Result.Operations) > 0 {
			if err := w.recorder.RecordOperations(ctx, line.Result.Operations); err != nil {
				w.addSinkWarning(result, job, "audit", err)
			}
		}
	}

	if w.cache != nil {
		if err := w.cache.Set(ctx, job.Fields, separator, line.Text); err != nil {
			w.addSinkWarning(result, job, "cache", err)
		}
	}

	result.Complete(true)
	w.logger.Debug("Line formatted",
		zap.Int("line", job.Index),
		zap.Strings("fired", result.Fired),
		zap.Duration("duration", result.Duration))

	return *result
}

func (w *Worker) addSinkWarning(result *LineResult, job LineJob, sink string, err error) {
	sinkErr := &SinkError{Sink: sink, Err: err}
	record := NewErrorRecord(sinkErr, w.errorHandler.CategorizeError(sinkErr)).WithLine(job.Index, job.Fields)
	result.AddWarning(record)
}
