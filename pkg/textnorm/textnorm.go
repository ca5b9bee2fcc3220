// Package textnorm folds player-facing strings (item names, actions,
// answers, narrative) into a canonical lowercase form so they can be
// compared without caring about case or surrounding whitespace.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold trims surrounding whitespace and lowercases s using Unicode case
// rules, so "  МЕЧ " and "меч" fold to the same value.
// Casers are stateful, so one is built per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Equal reports whether a and b are the same name once folded.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Contains reports whether text contains substr, ignoring case.
// An empty substr never matches.
func Contains(text, substr string) bool {
	if strings.TrimSpace(substr) == "" {
		return false
	}
	return strings.Contains(cases.Lower(language.Und).String(text), Fold(substr))
}

// FoldSet folds every non-blank name and returns them as a set.
func FoldSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		f := Fold(n)
		if f == "" {
			continue
		}
		set[f] = true
	}
	return set
}
