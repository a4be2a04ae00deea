// pkg/cleaner/replace.go
package cleaner

import (
	"strings"

	"github.com/David-Botos/statusline/pkg/model"
)

// ReplaceLiterals applies every replacement to every field, in table order.
// Later replacements see the result of earlier ones on the same field.
func ReplaceLiterals(items []string, replacements []model.Replacement) []string {
	for i := range items {
		for _, r := range replacements {
			// an empty search string would insert r.To between every rune
			if r.From == "" {
				continue
			}
			items[i] = strings.ReplaceAll(items[i], r.From, r.To)
		}
	}
	return items
}
