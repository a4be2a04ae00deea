// pkg/cleaner/rules_location.go
package cleaner

import (
	"strings"

	"github.com/David-Botos/statusline/pkg/model"
)

// KoreaRule handles the layout Info, Quarter, District/City, Province, Südkorea.
// The province at -1 has its "-do" suffix stripped upstream.
type KoreaRule struct {
	Token string
	// Island has no province distinction, nothing is dropped for it
	Island string
	// KeepCity lists metropolitan provinces whose name is the city name; the district is dropped
	KeepCity []string
	// KeepProvince lists metropolitan provinces kept as they are
	KeepProvince []string
	// Landmarks maps a quarter at -3 to the place name written to -4
	Landmarks map[string]string
}

// NewKoreaRule creates the South Korea rule with its known exceptions
func NewKoreaRule() *KoreaRule {
	return &KoreaRule{
		Token:        "Südkorea",
		Island:       "Jeju",
		KeepCity:     []string{"Seoul"},
		KeepProvince: []string{"Busan"},
		Landmarks: map[string]string{
			"Pungcheon-myeon":  "Hahoe",
			"Sanga-dong":       "Woryeonggyo-Brücke",
			"Jinhyeon-dong":    "Bulguksa",
			"Cheongnyong-dong": "Beomeosa",
		},
	}
}

func (r *KoreaRule) Trigger() string { return r.Token }

func (r *KoreaRule) Apply(items []string, ix int, ledger *Ledger) []string {
	province := field(items, ix-1)
	if province != r.Island {
		if containsString(r.KeepCity, province) {
			ledger.Mark(ix - 2)
		} else if !containsString(r.KeepProvince, province) {
			ledger.Mark(ix - 1)
		}
	}

	if landmark, ok := r.Landmarks[field(items, ix-3)]; ok {
		setField(items, ix-4, landmark)
	}

	// the quarter is never kept
	ledger.Mark(ix - 3)
	return items
}

// MoroccoRule drops the province unless it names Marrakesch
type MoroccoRule struct {
	Token string
	// KeepProvince is a substring that keeps the province field
	KeepProvince string
	// Village at -2 rewrites -4 to Valley
	Village string
	Valley  string
}

// NewMoroccoRule creates the Morocco rule
func NewMoroccoRule() *MoroccoRule {
	return &MoroccoRule{
		Token:        "Marokko",
		KeepProvince: "Marrakesch",
		Village:      "M'Semrir",
		Valley:       "Gorges du Dades",
	}
}

func (r *MoroccoRule) Trigger() string { return r.Token }

func (r *MoroccoRule) Apply(items []string, ix int, ledger *Ledger) []string {
	if !strings.Contains(field(items, ix-1), r.KeepProvince) {
		ledger.Mark(ix - 1)
	}
	if field(items, ix-2) == r.Village {
		setField(items, ix-4, r.Valley)
	}
	return items
}

// SwissRule turns "Someplace, Kanton Zürich" into "Someplace ZH".
// The city is left bare when it is part of the canton's name.
type SwissRule struct {
	Token   string
	Cantons []model.Canton
}

// NewSwissRule creates the Switzerland rule for the given canton table
func NewSwissRule(cantons []model.Canton) *SwissRule {
	return &SwissRule{Token: "Schweiz", Cantons: cantons}
}

func (r *SwissRule) Trigger() string { return r.Token }

func (r *SwissRule) Apply(items []string, ix int, ledger *Ledger) []string {
	for _, canton := range r.Cantons {
		// re-read both fields, an earlier canton may have rewritten -1
		region := field(items, ix-1)
		city := field(items, ix-2)
		if !strings.Contains(region, canton.Name) {
			continue
		}

		suffix := ""
		if !strings.Contains(canton.Name, city) {
			suffix = " " + canton.Code
		}
		// the city moves into the canton's field
		ledger.Mark(ix - 2)
		setField(items, ix-1, city+suffix)
	}
	return items
}

// MarkRule turns "Someplace, Mark" into "Someplace (Mark)".
// Place at -1 under Parent at -2 collapses into Parent.
type MarkRule struct {
	Token  string
	Place  string
	Parent string
}

// NewMarkRule creates the rule for the Mark region marker
func NewMarkRule() *MarkRule {
	return &MarkRule{
		Token:  "Mark",
		Place:  "Fürstenberg",
		Parent: "Himmelpfort",
	}
}

func (r *MarkRule) Trigger() string { return r.Token }

func (r *MarkRule) Apply(items []string, ix int, ledger *Ledger) []string {
	place := field(items, ix-1)
	ledger.Mark(ix - 1)

	if place == r.Place && field(items, ix-2) == r.Parent {
		place = r.Parent
		ledger.Mark(ix - 2)
	}

	setField(items, ix, place+" ("+r.Token+")")
	return items
}
