package polarity

import (
	"strings"

	"spacebio/internal/domain"
)

// rule binds one keyword group to the label it produces. Rules are
// evaluated in table order and the first group with any match wins, so
// no-effect phrasing short-circuits increase and decrease stems even when
// a snippet contains both ("no significant increase").
type rule struct {
	label    domain.Polarity
	keywords []string
}

// rules is the fixed, ordered classification table. Changing contents or
// order changes classification results, so it is part of the contract.
var rules = []rule{
	{domain.NoEffect, []string{"no significant", "no effect", "not significantly", "no change", "no difference"}},
	{domain.Increase, []string{"increase", "enhanced", "higher", "improved", "promote", "stimulat"}},
	{domain.Decrease, []string{"decrease", "reduced", "reduction", "inhibit", "lower", "suppres"}},
}

// Classify maps a snippet to a direction-of-effect label by case-insensitive
// substring matching against the rule table. Empty or unmatched text is
// unclear. Pure and deterministic: same input, same label.
func Classify(snippet string) domain.Polarity {
	if snippet == "" {
		return domain.Unclear
	}
	t := strings.ToLower(snippet)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.label
			}
		}
	}
	return domain.Unclear
}
