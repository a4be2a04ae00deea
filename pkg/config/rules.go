// pkg/config/rules.go
package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/David-Botos/statusline/pkg/model"
)

//go:embed defaults.yaml
var defaultRules []byte

// dateKeyPattern matches the YYYYMMDD keys used for timespan ranges
var dateKeyPattern = regexp.MustCompile(`^\d{8}$`)

// RuleTables holds the read-only tables shared by every pipeline run.
// Lists are used instead of maps because iteration order is significant.
type RuleTables struct {
	Replacements []model.Replacement `yaml:"replacements"`
	Cantons      []model.Canton      `yaml:"cantons"`
	Timespans    []model.Timespan    `yaml:"timespans"`
}

// DefaultRuleTables returns the tables compiled into the binary
func DefaultRuleTables() (*RuleTables, error) {
	return ParseRuleTables(defaultRules)
}

// LoadRuleTables reads rule tables from a YAML file, or the defaults when path is empty
func LoadRuleTables(path string) (*RuleTables, error) {
	if path == "" {
		return DefaultRuleTables()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	tables, err := ParseRuleTables(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return tables, nil
}

// ParseRuleTables decodes rule tables from YAML
func ParseRuleTables(data []byte) (*RuleTables, error) {
	var tables RuleTables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, err
	}
	return &tables, nil
}

// Validate checks the tables against the configured field count.
// A fieldCount of zero skips the depth check.
func (t *RuleTables) Validate(fieldCount int) error {
	for i, r := range t.Replacements {
		if r.From == "" {
			return fmt.Errorf("replacement %d: empty search string", i)
		}
	}

	for i, c := range t.Cantons {
		if c.Name == "" || c.Code == "" {
			return fmt.Errorf("canton %d: name and code are required", i)
		}
	}

	starts := make(map[string]bool, len(t.Timespans))
	for i, ts := range t.Timespans {
		if !dateKeyPattern.MatchString(ts.Start) || !dateKeyPattern.MatchString(ts.End) {
			return fmt.Errorf("timespan %d (%s): dates must be YYYYMMDD", i, ts)
		}
		if ts.Start > ts.End {
			return fmt.Errorf("timespan %d (%s): start is after end", i, ts)
		}
		if starts[ts.Start] {
			return fmt.Errorf("timespan %d (%s): duplicate start date", i, ts)
		}
		starts[ts.Start] = true

		if len(ts.Levels) == 0 {
			return fmt.Errorf("timespan %d (%s): at least one level is required", i, ts)
		}
		// the chain starts one field left of the date, which is second to last
		if fieldCount > 0 && ts.Depth()+2 > fieldCount {
			return fmt.Errorf("timespan %d (%s): %d levels do not fit %d fields",
				i, ts, ts.Depth(), fieldCount)
		}
	}

	return nil
}

// Overlaps returns a description of every pair of overlapping timespans.
// Overlaps are allowed; the earlier entry wins for each field.
func (t *RuleTables) Overlaps() []string {
	var out []string
	for i := 0; i < len(t.Timespans); i++ {
		for j := i + 1; j < len(t.Timespans); j++ {
			if t.Timespans[i].Overlaps(t.Timespans[j]) {
				out = append(out, fmt.Sprintf("%s overlaps %s", t.Timespans[i], t.Timespans[j]))
			}
		}
	}
	return out
}

// Fingerprint returns a stable hash of the tables, used to scope cached results
func (t *RuleTables) Fingerprint() (string, error) {
	if t == nil {
		return "", errors.New("rule tables cannot be nil")
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to encode rule tables: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}
