package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/statusline"
)

// Processor formats many photos' field sequences concurrently
type Processor struct {
	formatter    *statusline.Formatter
	recorder     Recorder
	cache        Cache
	errorHandler *ErrorHandler
	logger       *zap.Logger
	workerCount  int
}

// NewProcessor creates a Processor with one worker per CPU
func NewProcessor(formatter *statusline.Formatter, logger *zap.Logger) (*Processor, error) {
	if formatter == nil {
		return nil, errors.New("formatter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	logger = logger.Named("batch")
	return &Processor{
		formatter:    formatter,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		workerCount:  runtime.NumCPU(),
	}, nil
}

// WithWorkerCount overrides the number of workers; values below one are ignored
func (p *Processor) WithWorkerCount(count int) *Processor {
	if count > 0 {
		p.workerCount = count
	}
	return p
}

// WithRecorder sends every run's field operations to r
func (p *Processor) WithRecorder(r Recorder) *Processor {
	p.recorder = r
	return p
}

// WithCache serves and stores finished lines through c
func (p *Processor) WithCache(c Cache) *Processor {
	p.cache = c
	return p
}

// GetErrorSummary returns error counts by category for all runs so far
func (p *Processor) GetErrorSummary() map[ErrorCategory]int {
	return p.errorHandler.GetErrorSummary()
}

// Run formats every line and returns the results in input order. A
// configuration error aborts the batch; lines not reached keep Success false.
func (p *Processor) Run(ctx context.Context, lines [][]string) ([]LineResult, *Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := p.workerCount
	if workerCount > len(lines) {
		workerCount = len(lines)
	}

	summary := NewSummary()
	out := make([]LineResult, len(lines))
	for i := range out {
		out[i].Index = i
	}
	if workerCount == 0 {
		summary.Complete()
		return out, summary, nil
	}

	jobs := make(chan LineJob, workerCount*10) // Buffer size is 10x worker count
	results := make(chan LineResult, workerCount*10)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		worker := NewWorker(i, p.formatter, p.recorder, p.cache, p.errorHandler, p.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for i, fields := range lines {
			select {
			case jobs <- NewLineJob(i, fields):
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var runErr error
	for result := range results {
		out[result.Index] = result
		summary.AddResult(result)

		if result.HasErrors() {
			p.logger.Debug("Line not formatted",
				zap.Int("line", result.Index),
				zap.Int("worker", result.WorkerID),
				zap.Int("errors", len(result.Errors)))
		}

		for _, record := range append(result.Errors, result.Warnings...) {
			if p.errorHandler.HandleError(record) == ActionAbort && runErr == nil {
				runErr = fmt.Errorf("batch aborted at line %d: %w", result.Index, record.Error)
				cancel()
			}
		}
	}
	summary.Complete()

	p.logger.Info("Batch completed",
		zap.Int("lines", summary.TotalLines),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("changed", summary.Changed),
		zap.Int("cached", summary.Cached),
		zap.Duration("duration", summary.Duration()))

	return out, summary, runErr
}
