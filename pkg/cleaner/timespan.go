// pkg/cleaner/timespan.go
package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/David-Botos/statusline/pkg/model"
)

// dateOffset is the reverse offset of the date field (second to last)
const dateOffset = 2

// ErrTooManyTimespanLevels signals a timespan chain deeper than the field sequence
var ErrTooManyTimespanLevels = errors.New("too many timespan levels for this field sequence")

// TimespanDepthError reports which timespan level ran past the start of the sequence
type TimespanDepthError struct {
	Span   model.Timespan
	Level  string
	Length int
}

func (e *TimespanDepthError) Error() string {
	return fmt.Sprintf("%v: %s >>> %q (sequence has %d fields)",
		ErrTooManyTimespanLevels, e.Span, e.Level, e.Length)
}

// Unwrap lets errors.Is match ErrTooManyTimespanLevels
func (e *TimespanDepthError) Unwrap() error {
	return ErrTooManyTimespanLevels
}

// ResolveTimespan backfills empty location fields from the timespans that contain
// the photo's date. The date is the second to last field, written D.M.YYYY.
// Populated fields are never overwritten, so for overlapping ranges the entry
// listed first wins field by field.
func ResolveTimespan(items []string, spans []model.Timespan) ([]string, error) {
	// we need at least country, date and something after it
	if len(items) <= dateOffset {
		return items, nil
	}

	date, ok := normalizeDate(items[len(items)-dateOffset])
	if !ok {
		return items, nil
	}

	for _, span := range spans {
		if !span.Contains(date) {
			continue
		}
		if err := consumeTimespan(items, span); err != nil {
			return items, err
		}
	}

	return items, nil
}

// consumeTimespan walks the span's levels, moving one field further left per level
func consumeTimespan(items []string, span model.Timespan) error {
	pos := dateOffset
	for _, level := range span.Levels {
		pos++
		idx := len(items) - pos
		if idx < 0 {
			return &TimespanDepthError{Span: span, Level: level, Length: len(items)}
		}
		if level == "" {
			continue
		}
		if items[idx] == "" {
			items[idx] = level
		}
	}
	return nil
}

// normalizeDate converts D.M.YYYY into YYYYMMDD for lexical range comparison
func normalizeDate(field string) (string, bool) {
	parts := strings.Split(field, ".")
	if len(parts) != 3 {
		return "", false
	}
	return parts[2] + zeroPad(parts[1]) + zeroPad(parts[0]), true
}

func zeroPad(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}
