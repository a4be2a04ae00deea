// pkg/model/metadata.go
package model

import "strings"

// Replacement is one literal substring replacement applied to every field
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Canton maps a Swiss canton's full name to its short code
type Canton struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// Timespan maps an inclusive date range to a chain of location levels.
// Start and End are YYYYMMDD. Levels run from the broadest (country) to the
// finest; an empty level leaves the matching field untouched.
type Timespan struct {
	Start  string   `yaml:"start"`
	End    string   `yaml:"end"`
	Levels []string `yaml:"levels"`
}

// Contains reports whether date (YYYYMMDD) falls inside the range, both ends included
func (t Timespan) Contains(date string) bool {
	return date >= t.Start && date <= t.End
}

// Depth returns the number of fields the chain reaches back from the date field
func (t Timespan) Depth() int {
	return len(t.Levels)
}

// Overlaps reports whether two ranges share at least one day
func (t Timespan) Overlaps(other Timespan) bool {
	return t.Start <= other.End && other.Start <= t.End
}

// String returns a compact representation used in logs and errors
func (t Timespan) String() string {
	return t.Start + "-" + t.End + " [" + strings.Join(t.Levels, " > ") + "]"
}
