// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/config"
	"github.com/David-Botos/statusline/pkg/model"
)

// Result describes one pipeline run
type Result struct {
	RunID      string
	Items      []string
	Fired      []string // triggers in the order their rules ran
	Operations []model.FieldOperation
}

// Changed reports whether any stage touched the sequence
func (r *Result) Changed() bool {
	return len(r.Operations) > 0
}

// Cleaner normalizes a photo's status line fields before they are joined
type Cleaner struct {
	tables  *config.RuleTables
	rules   RuleSet
	prejoin bool
	logger  *zap.Logger
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithRules replaces the default location rules
func WithRules(rules RuleSet) Option {
	return func(c *Cleaner) {
		c.rules = rules
	}
}

// WithPrejoin makes the cleaner return a single, already joined item.
// Empty fields are dropped but duplicates are kept.
func WithPrejoin(prejoin bool) Option {
	return func(c *Cleaner) {
		c.prejoin = prejoin
	}
}

// NewCleaner creates a Cleaner over read-only rule tables
func NewCleaner(tables *config.RuleTables, logger *zap.Logger, opts ...Option) (*Cleaner, error) {
	if tables == nil {
		return nil, errors.New("rule tables cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c := &Cleaner{
		tables: tables,
		logger: logger.Named("cleaner"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules == nil {
		c.rules = DefaultRules(tables.Cantons)
	}

	return c, nil
}

// Postprocess is the host-facing form of the pipeline: it takes the extracted
// fields and the separator and returns the fields to display
func (c *Cleaner) Postprocess(items []string, separator string) ([]string, error) {
	res, err := c.Clean(items, separator)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Clean runs literal replacement, timespan resolution and the location rules
// over a copy of items, then applies the deletions the rules recorded.
// A single item is an already joined line: it only gets the literal replacements.
func (c *Cleaner) Clean(items []string, separator string) (*Result, error) {
	res := &Result{RunID: uuid.New().String()}
	work := append([]string(nil), items...)

	before := snapshot(work)
	ReplaceLiterals(work, c.tables.Replacements)
	res.Operations = append(res.Operations,
		diffFields(res.RunID, before, work, "", model.OperationLiteralReplacement, "global_replacement")...)

	if len(work) == 1 {
		res.Items = work
		return res, nil
	}

	// the ledger lives for this run only
	ledger := NewLedger()

	before = snapshot(work)
	if _, err := ResolveTimespan(work, c.tables.Timespans); err != nil {
		c.logger.Error("Timespan resolution failed",
			zap.String("run_id", res.RunID),
			zap.Strings("items", work),
			zap.Error(err))
		return nil, fmt.Errorf("failed to resolve timespan: %w", err)
	}
	res.Operations = append(res.Operations,
		diffFields(res.RunID, before, work, "", model.OperationTimespanFill, "date_in_timespan")...)

	for ix := 0; ix < len(work); ix++ {
		rule, ok := c.rules.Lookup(work[ix])
		if !ok {
			continue
		}

		before = snapshot(work)
		work = rule.Apply(work, ix, ledger)
		res.Fired = append(res.Fired, rule.Trigger())
		res.Operations = append(res.Operations,
			diffFields(res.RunID, before, work, rule.Trigger(), model.OperationRuleRewrite, "location_rule")...)

		c.logger.Debug("Location rule fired",
			zap.String("trigger", rule.Trigger()),
			zap.Int("position", ix))
	}

	if len(res.Fired) == 0 {
		c.logger.Debug("Status line unfiltered", zap.Strings("items", work))
	} else {
		before = snapshot(work)
		var removed []int
		work, removed = ledger.Apply(work)
		res.Operations = append(res.Operations, deletionOperations(res.RunID, before, removed)...)

		c.logger.Debug("Status line changed",
			zap.Strings("items", work),
			zap.Ints("deleted", removed))
	}

	if c.prejoin {
		work = []string{joinNonEmpty(work, separator)}
	}

	res.Items = work
	return res, nil
}
