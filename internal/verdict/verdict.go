package verdict

import (
	"math"

	"spacebio/internal/domain"
)

// agreeThreshold is the primary-label fraction at which the evidence is
// considered to agree. Below it the verdict is Mixed; the original
// system's intermediate 0.45 branch produced the same Mixed outcome and
// is collapsed here.
const agreeThreshold = 0.70

// maxUnclearForInsufficient: an unclear majority over this few passages
// yields no verdict at all.
const maxUnclearForInsufficient = 2

// EvidenceLimit bounds the evidence list returned with an answer.
const EvidenceLimit = 6

// Aggregation is the outcome of tallying polarity labels across the
// retrieved evidence.
type Aggregation struct {
	Counts          map[domain.Polarity]int
	Primary         domain.Polarity
	PrimaryFraction float64
	Verdict         domain.Verdict
}

// Aggregate tallies labels, picks the primary label and derives the
// verdict. The primary label is the most frequent one; on a count tie the
// label whose first occurrence appears earliest in the input wins, which
// keeps the result deterministic for any input ordering. Labels must be
// non-empty; the caller short-circuits to Insufficient evidence at k=0.
func Aggregate(labels []domain.Polarity) Aggregation {
	counts := make(map[domain.Polarity]int, 4)
	var order []domain.Polarity
	for _, l := range labels {
		if counts[l] == 0 {
			order = append(order, l)
		}
		counts[l]++
	}
	primary := domain.Unclear
	best := 0
	for _, l := range order {
		if counts[l] > best {
			primary = l
			best = counts[l]
		}
	}
	total := len(labels)
	fraction := 0.0
	if total > 0 {
		fraction = float64(best) / float64(total)
	}

	var v domain.Verdict
	switch {
	case primary == domain.Unclear && total <= maxUnclearForInsufficient:
		v = domain.VerdictInsufficient
	case fraction >= agreeThreshold:
		v = domain.VerdictAgree
	default:
		v = domain.VerdictMixed
	}
	return Aggregation{Counts: counts, Primary: primary, PrimaryFraction: fraction, Verdict: v}
}

// Compose renders the fixed answer sentence for a verdict and its primary
// label. The sentences are templates, not generated text.
func Compose(v domain.Verdict, primary domain.Polarity) string {
	if v == domain.VerdictInsufficient {
		return "There is not enough clear information in the retrieved passages to form a confident conclusion."
	}
	if v == domain.VerdictAgree {
		switch primary {
		case domain.Increase:
			return "Most retrieved studies report an increase or enhancement for the queried phenomenon."
		case domain.Decrease:
			return "Most retrieved studies report a decrease or inhibition for the queried phenomenon."
		case domain.NoEffect:
			return "Most retrieved studies report no significant effect for the queried phenomenon."
		default:
			return "Most retrieved passages share a common direction, but it is described in qualitative terms."
		}
	}
	return "The literature is mixed: retrieved passages show varying outcomes (increase, decrease, or no effect). See evidence below."
}

// LimitEvidence truncates cards to at most n entries. Truncation, not an
// error: callers may retrieve far more passages than they display.
func LimitEvidence(cards []domain.EvidenceCard, n int) []domain.EvidenceCard {
	if len(cards) > n {
		return cards[:n]
	}
	return cards
}

// Confidence is the primary fraction rounded to three decimal digits.
func Confidence(fraction float64) float64 {
	return math.Round(fraction*1000) / 1000
}
