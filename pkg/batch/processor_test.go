package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/cleaner"
	"github.com/David-Botos/statusline/pkg/config"
	"github.com/David-Botos/statusline/pkg/model"
	"github.com/David-Botos/statusline/pkg/statusline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newFormatter(t *testing.T, tables *config.RuleTables) *statusline.Formatter {
	t.Helper()
	if tables == nil {
		var err error
		tables, err = config.DefaultRuleTables()
		require.NoError(t, err)
	}
	c, err := cleaner.NewCleaner(tables, zap.NewNop())
	require.NoError(t, err)
	f, err := statusline.NewFormatter(statusline.LineSettings{Separator: ", "}, c, zap.NewNop())
	require.NoError(t, err)
	return f
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []model.FieldOperation
	err error
}

func (r *fakeRecorder) RecordOperations(_ context.Context, ops []model.FieldOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.ops = append(r.ops, ops...)
	return nil
}

type fakeCache struct {
	mu    sync.Mutex
	lines map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{lines: make(map[string]string)}
}

func (c *fakeCache) key(fields []string, separator string) string {
	return separator + "|" + strings.Join(fields, "\x1f")
}

func (c *fakeCache) Get(_ context.Context, fields []string, separator string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line, ok := c.lines[c.key(fields, separator)]
	return line, ok, nil
}

func (c *fakeCache) Set(_ context.Context, fields []string, separator, line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[c.key(fields, separator)] = line
	return nil
}

func TestNewProcessor_RejectsNil(t *testing.T) {
	_, err := NewProcessor(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewProcessor(newFormatter(t, nil), nil)
	assert.Error(t, err)
}

func TestProcessor_Run_PreservesOrder(t *testing.T) {
	f := newFormatter(t, nil)
	p, err := NewProcessor(f, zap.NewNop())
	require.NoError(t, err)
	p.WithWorkerCount(4)

	var lines [][]string
	for i := 0; i < 50; i++ {
		lines = append(lines,
			[]string{"", "Seoul", "Gangnam-gu", "Südkorea", "1.5.2019", fmt.Sprintf("Creator %d", i)})
	}

	results, summary, err := p.Run(context.Background(), lines)
	require.NoError(t, err)
	require.Len(t, results, len(lines))

	for i, result := range results {
		assert.Equal(t, i, result.Index)
		assert.True(t, result.Success)
		assert.Equal(t, fmt.Sprintf("Seoul, Südkorea, 1.5.2019, Creator %d", i), result.Text)
	}

	assert.Equal(t, 50, summary.TotalLines)
	assert.Equal(t, 50, summary.Succeeded)
	assert.Equal(t, 50, summary.Changed)
	assert.Equal(t, 50, summary.RuleFirings["Südkorea"])
	assert.Equal(t, float64(100), summary.SuccessRate())
	assert.Contains(t, summary.Report(), "Südkorea: 50")
}

func TestProcessor_Run_Empty(t *testing.T) {
	p, err := NewProcessor(newFormatter(t, nil), zap.NewNop())
	require.NoError(t, err)

	results, summary, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, summary.TotalLines)
}

func TestProcessor_Run_RecordsOperations(t *testing.T) {
	recorder := &fakeRecorder{}
	p, err := NewProcessor(newFormatter(t, nil), zap.NewNop())
	require.NoError(t, err)
	p.WithWorkerCount(2).WithRecorder(recorder)

	lines := [][]string{
		{"", "Winterthur", "Kanton Zürich", "Schweiz", "1.6.2018", "Creator"},
		{"Name", "", "Lübeck", "", "Deutschland", "1.1.2018", "Creator"},
	}
	results, summary, err := p.Run(context.Background(), lines)
	require.NoError(t, err)

	assert.Equal(t, "Winterthur ZH, Schweiz, 1.6.2018, Creator", results[0].Text)
	assert.Equal(t, "Name, Lübeck, Deutschland, 1.1.2018, Creator", results[1].Text)

	// one rewrite and one deletion for the Swiss line, nothing for the other
	assert.Len(t, recorder.ops, 2)
	assert.Equal(t, 2, summary.Operations)
	assert.Equal(t, 1, summary.Changed)
}

func TestProcessor_Run_RecorderFailureIsWarning(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("connection refused")}
	p, err := NewProcessor(newFormatter(t, nil), zap.NewNop())
	require.NoError(t, err)
	p.WithRecorder(recorder)

	results, _, err := p.Run(context.Background(), [][]string{
		{"", "Winterthur", "Kanton Zürich", "Schweiz", "1.6.2018", "Creator"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Success)
	assert.Equal(t, "Winterthur ZH, Schweiz, 1.6.2018, Creator", results[0].Text)
	require.Len(t, results[0].Warnings, 1)
	assert.Equal(t, ErrorCategoryWarning, results[0].Warnings[0].Category)
	assert.Equal(t, 1, p.GetErrorSummary()[ErrorCategoryWarning])
}

func TestProcessor_Run_Cache(t *testing.T) {
	lineCache := newFakeCache()
	p, err := NewProcessor(newFormatter(t, nil), zap.NewNop())
	require.NoError(t, err)
	p.WithWorkerCount(1).WithCache(lineCache)

	line := []string{"", "Himmelpfort", "Fürstenberg", "Mark", "Deutschland", "5.5.2018", "Creator"}

	first, _, err := p.Run(context.Background(), [][]string{line})
	require.NoError(t, err)
	assert.False(t, first[0].Cached)

	second, summary, err := p.Run(context.Background(), [][]string{line})
	require.NoError(t, err)
	assert.True(t, second[0].Cached)
	assert.Equal(t, first[0].Text, second[0].Text)
	assert.Equal(t, 1, summary.Cached)
}

func TestProcessor_Run_AbortsOnDepthError(t *testing.T) {
	tables := &config.RuleTables{
		Timespans: []model.Timespan{
			{Start: "20200101", End: "20201231", Levels: []string{"A", "B", "C"}},
		},
	}
	p, err := NewProcessor(newFormatter(t, tables), zap.NewNop())
	require.NoError(t, err)
	p.WithWorkerCount(1)

	lines := [][]string{
		{"", "", "", "Land", "1.1.2019", "Creator"},
		{"", "1.6.2020", "Creator"},
		{"", "", "", "Land", "1.1.2019", "Creator"},
	}
	results, _, err := p.Run(context.Background(), lines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cleaner.ErrTooManyTimespanLevels))
	assert.Contains(t, err.Error(), "line 1")

	require.Len(t, results, 3)
	assert.False(t, results[1].Success)
	require.Len(t, results[1].Errors, 1)
	assert.Equal(t, ErrorCategoryConfiguration, results[1].Errors[0].Category)
}

func TestProcessor_Run_CancelledContext(t *testing.T) {
	p, err := NewProcessor(newFormatter(t, nil), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines := make([][]string, 20)
	for i := range lines {
		lines[i] = []string{"", "Berlin", "Deutschland", "1.1.2018", "Creator"}
	}
	results, summary, err := p.Run(ctx, lines)
	require.NoError(t, err)
	assert.Len(t, results, 20)
	assert.LessOrEqual(t, summary.TotalLines, 20)
}
