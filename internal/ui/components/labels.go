package components

import (
	"strings"

	"github.com/abhisek/synthgen/internal/ui/theme"
)

// LabelChips renders labels as a row of chips.
func LabelChips(labels []string) string {
	if len(labels) == 0 {
		return theme.Hint.Render("(none)")
	}
	chips := make([]string, len(labels))
	for i, l := range labels {
		chips[i] = theme.LabelChip.Render(l)
	}
	return strings.Join(chips, " ")
}

// KeyValue renders an aligned "key: value" line.
func KeyValue(key string, width int, value string) string {
	pad := max(width-len(key), 0)
	return theme.Key.Render(key+":") + strings.Repeat(" ", pad+1) + value
}
