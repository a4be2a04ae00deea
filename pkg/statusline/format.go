// pkg/statusline/format.go
package statusline

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/cleaner"
)

// LineSettings controls how fields are joined when no postprocessor is set
type LineSettings struct {
	// Separator is inserted between fields
	Separator string
	// Uniquify drops repeated values, first occurrence wins. It has no effect
	// with a postprocessor, whose multi-field output is always deduplicated and
	// whose single-field output is used verbatim.
	Uniquify bool
	// HideEmpty drops empty fields. Keep it off when postprocessing, rules
	// rely on every field holding its position.
	HideEmpty bool
}

// Finalize joins a postprocessed sequence. A single item is used verbatim;
// otherwise empties and duplicates are dropped unconditionally.
func Finalize(items []string, separator string) string {
	if len(items) == 1 {
		return items[0]
	}
	return join(items, separator, true, true)
}

// join applies the hide-empty and uniquify settings independently
func join(items []string, separator string, hideEmpty, uniquify bool) string {
	seen := make(map[string]bool, len(items))
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if hideEmpty && item == "" {
			continue
		}
		if uniquify {
			if seen[item] {
				continue
			}
			seen[item] = true
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, separator)
}

// Postprocessor reshapes the fields before they are joined
type Postprocessor interface {
	Clean(items []string, separator string) (*cleaner.Result, error)
}

// Line is a finished status line and, when postprocessed, the run behind it
type Line struct {
	Text   string
	Result *cleaner.Result
}

// Formatter turns a photo's extracted fields into its status line
type Formatter struct {
	settings    LineSettings
	postprocess Postprocessor
	logger      *zap.Logger
}

// NewFormatter creates a Formatter. postprocess may be nil.
func NewFormatter(settings LineSettings, postprocess Postprocessor, logger *zap.Logger) (*Formatter, error) {
	if settings.Separator == "" {
		return nil, errors.New("separator cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if postprocess != nil && settings.HideEmpty {
		logger.Warn("Hiding empty fields shifts positions seen by the postprocessor")
	}

	return &Formatter{
		settings:    settings,
		postprocess: postprocess,
		logger:      logger.Named("statusline"),
	}, nil
}

// Settings returns the formatter's line settings
func (f *Formatter) Settings() LineSettings {
	return f.settings
}

// Format builds the status line text for one photo
func (f *Formatter) Format(fields []string) (string, error) {
	line, err := f.Build(fields)
	if err != nil {
		return "", err
	}
	return line.Text, nil
}

// Build builds the status line for one photo, keeping the postprocessing result
func (f *Formatter) Build(fields []string) (*Line, error) {
	if f.postprocess == nil {
		return &Line{
			Text: join(fields, f.settings.Separator, f.settings.HideEmpty, f.settings.Uniquify),
		}, nil
	}

	input := fields
	if f.settings.HideEmpty {
		input = dropEmpty(fields)
	}

	res, err := f.postprocess.Clean(input, f.settings.Separator)
	if err != nil {
		return nil, fmt.Errorf("postprocess failed: %w", err)
	}

	line := &Line{
		Text:   Finalize(res.Items, f.settings.Separator),
		Result: res,
	}
	f.logger.Debug("Formatted status line", zap.String("line", line.Text))
	return line, nil
}

// Split breaks a joined line into fields, keeping empty positions
func Split(line, separator string) []string {
	if separator == "" {
		return []string{line}
	}
	return strings.Split(line, separator)
}

func dropEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
