package polarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spacebio/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    domain.Polarity
	}{
		{"increase keyword", "Bone formation increased after 30 days of flight", domain.Increase},
		{"increase stem", "expression was stimulated by radiation exposure", domain.Increase},
		{"decrease keyword", "muscle mass was reduced in the flight group", domain.Decrease},
		{"decrease stem", "the pathway was suppressed under microgravity", domain.Decrease},
		{"decrease noun", "a marked reduction in bone density was observed in flight animals", domain.Decrease},
		{"no effect phrase", "there was no significant difference between groups", domain.NoEffect},
		{"no change phrase", "we observed no change in enzyme activity", domain.NoEffect},
		{"case insensitive", "Expression Was ENHANCED In Flight Samples", domain.Increase},
		{"empty snippet", "", domain.Unclear},
		{"no keywords", "samples were collected on day 14 and frozen", domain.Unclear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.snippet))
		})
	}
}

func TestClassify_NoEffectPrecedence(t *testing.T) {
	// A snippet matching both groups resolves to no_effect: the
	// no-effect group short-circuits increase and decrease stems.
	snippet := "there was no significant increase in bone density"
	assert.Equal(t, domain.NoEffect, Classify(snippet))

	snippet = "no effect on the decreased expression was found"
	assert.Equal(t, domain.NoEffect, Classify(snippet))
}

func TestClassify_IncreaseBeforeDecrease(t *testing.T) {
	// Both directional groups present: the increase group is evaluated
	// first in the rule table.
	snippet := "levels increased in flight but decreased after recovery"
	assert.Equal(t, domain.Increase, Classify(snippet))
}
