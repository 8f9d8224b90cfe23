// Package shoppinglist formats aggregated cart ingredients and renders them as a PDF.
package shoppinglist

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item is the summed amount of one (ingredient name, unit) group.
type Item struct {
	Name   string
	Unit   string
	Amount int64
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(s[:size]) + lower.String(s[size:])
}

// FormatLine renders an item as "Flour (g) — 500".
func FormatLine(it Item) string {
	return fmt.Sprintf("%s (%s) — %d", Capitalize(it.Name), it.Unit, it.Amount)
}

// Lines formats every item, keeping their order.
func Lines(items []Item) []string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = FormatLine(it)
	}
	return lines
}
