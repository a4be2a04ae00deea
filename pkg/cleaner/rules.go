// pkg/cleaner/rules.go
package cleaner

import (
	"sort"

	"github.com/David-Botos/statusline/pkg/model"
)

// Rule rewrites fields around a trigger token. Offsets are relative to ix,
// the trigger's position. Rules never delete directly; they mark positions
// in the ledger instead.
type Rule interface {
	// Trigger returns the field value that activates the rule
	Trigger() string
	// Apply mutates items in place and returns them
	Apply(items []string, ix int, ledger *Ledger) []string
}

// RuleSet maps trigger tokens to rules
type RuleSet map[string]Rule

// NewRuleSet builds a RuleSet; a later rule replaces an earlier one with the same trigger
func NewRuleSet(rules ...Rule) RuleSet {
	set := make(RuleSet, len(rules))
	for _, r := range rules {
		set[r.Trigger()] = r
	}
	return set
}

// Lookup returns the rule for a field value
func (s RuleSet) Lookup(value string) (Rule, bool) {
	r, ok := s[value]
	return r, ok
}

// Triggers returns the registered trigger tokens in sorted order
func (s RuleSet) Triggers() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DefaultRules returns the location rules for South Korea, Morocco,
// Switzerland and the Mark region
func DefaultRules(cantons []model.Canton) RuleSet {
	return NewRuleSet(
		NewKoreaRule(),
		NewMoroccoRule(),
		NewSwissRule(cantons),
		NewMarkRule(),
	)
}

// field returns items[i], or "" when i is out of range
func field(items []string, i int) string {
	if i < 0 || i >= len(items) {
		return ""
	}
	return items[i]
}

// setField writes items[i] when i is in range
func setField(items []string, i int, value string) bool {
	if i < 0 || i >= len(items) {
		return false
	}
	items[i] = value
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
