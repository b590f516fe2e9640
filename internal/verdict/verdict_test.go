package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spacebio/internal/domain"
)

func TestAggregate_AgreeThreshold(t *testing.T) {
	agg := Aggregate([]domain.Polarity{domain.Increase, domain.Increase, domain.Increase, domain.Decrease})

	assert.Equal(t, domain.Increase, agg.Primary)
	assert.InDelta(t, 0.75, agg.PrimaryFraction, 1e-9)
	assert.Equal(t, domain.VerdictAgree, agg.Verdict)
	assert.Equal(t, 3, agg.Counts[domain.Increase])
	assert.Equal(t, 1, agg.Counts[domain.Decrease])
}

func TestAggregate_InsufficientEvidence(t *testing.T) {
	agg := Aggregate([]domain.Polarity{domain.Unclear, domain.Unclear})

	assert.Equal(t, domain.Unclear, agg.Primary)
	assert.Equal(t, domain.VerdictInsufficient, agg.Verdict)
}

func TestAggregate_UnclearMajorityOverThreePassages(t *testing.T) {
	// Three or more passages with an unclear majority is no longer
	// "insufficient"; it falls through to the fraction rules.
	agg := Aggregate([]domain.Polarity{domain.Unclear, domain.Unclear, domain.Unclear})

	assert.Equal(t, domain.VerdictAgree, agg.Verdict)
}

func TestAggregate_Mixed(t *testing.T) {
	agg := Aggregate([]domain.Polarity{domain.Increase, domain.Decrease})

	assert.InDelta(t, 0.5, agg.PrimaryFraction, 1e-9)
	assert.Equal(t, domain.VerdictMixed, agg.Verdict)
}

func TestAggregate_TieBreakFirstAppearance(t *testing.T) {
	// decrease and increase tie 2-2; decrease appeared first.
	agg := Aggregate([]domain.Polarity{domain.Decrease, domain.Increase, domain.Increase, domain.Decrease})
	assert.Equal(t, domain.Decrease, agg.Primary)

	// Same multiset, different order: increase wins the tie now.
	agg = Aggregate([]domain.Polarity{domain.Increase, domain.Decrease, domain.Decrease, domain.Increase})
	assert.Equal(t, domain.Increase, agg.Primary)
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name    string
		verdict domain.Verdict
		primary domain.Polarity
		want    string
	}{
		{
			"insufficient ignores primary",
			domain.VerdictInsufficient, domain.Increase,
			"There is not enough clear information in the retrieved passages to form a confident conclusion.",
		},
		{
			"agree increase",
			domain.VerdictAgree, domain.Increase,
			"Most retrieved studies report an increase or enhancement for the queried phenomenon.",
		},
		{
			"agree decrease",
			domain.VerdictAgree, domain.Decrease,
			"Most retrieved studies report a decrease or inhibition for the queried phenomenon.",
		},
		{
			"agree no effect",
			domain.VerdictAgree, domain.NoEffect,
			"Most retrieved studies report no significant effect for the queried phenomenon.",
		},
		{
			"agree unclear falls back to qualitative",
			domain.VerdictAgree, domain.Unclear,
			"Most retrieved passages share a common direction, but it is described in qualitative terms.",
		},
		{
			"mixed",
			domain.VerdictMixed, domain.Increase,
			"The literature is mixed: retrieved passages show varying outcomes (increase, decrease, or no effect). See evidence below.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(tt.verdict, tt.primary))
		})
	}
}

func TestLimitEvidence(t *testing.T) {
	cards := make([]domain.EvidenceCard, 10)
	assert.Len(t, LimitEvidence(cards, 6), 6)
	assert.Len(t, LimitEvidence(cards[:4], 6), 4)
	assert.Empty(t, LimitEvidence(nil, 6))
}

func TestConfidence_Rounding(t *testing.T) {
	assert.Equal(t, 0.667, Confidence(2.0/3.0))
	assert.Equal(t, 0.75, Confidence(0.75))
	assert.Equal(t, 0.0, Confidence(0))
}
