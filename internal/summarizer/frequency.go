package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// minUsableText mirrors the behavior of the upstream summarization
// pipeline: anything shorter is reported as unsummarizable rather than
// summarized badly.
const minUsableText = 50

// NoSufficientText is returned for inputs too short to summarize.
const NoSufficientText = "No sufficient text to summarize."

// FrequencySummarizer ranks sentences by word frequency (stopwords
// filtered) and emits the best ones, in original order, within a
// character budget.
type FrequencySummarizer struct {
	tokenPattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	citationPattern *regexp.Regexp
	yearCitePattern *regexp.Regexp
	urlPattern      *regexp.Regexp
	spacePattern    *regexp.Regexp
	stopwords       map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		citationPattern: regexp.MustCompile(`\(.*?et al\.,? ?\d{4}.*?\)`),
		yearCitePattern: regexp.MustCompile(`\([^)]+\d{4}[^)]*\)`),
		urlPattern:      regexp.MustCompile(`https?://\S+`),
		spacePattern:    regexp.MustCompile(`\s+`),
		stopwords:       defaultStopwords(),
	}
}

// Summarize returns a short extract of text no longer than maxLen
// characters, aiming for at least minLen. Inputs under 50 characters
// yield a fixed "no sufficient text" sentence.
func (s *FrequencySummarizer) Summarize(text string, maxLen, minLen int) (string, error) {
	text = s.clean(text)
	if len(strings.TrimSpace(text)) < minUsableText {
		return NoSufficientText, nil
	}
	if maxLen <= 0 {
		maxLen = 1000
	}
	sentences := s.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return truncate(strings.TrimSpace(text), maxLen), nil
	}

	// Token frequencies across the whole text, normalized to [0,1].
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	// Score sentences, length-normalized to avoid favoring long ones.
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		sc := 0.0
		for _, tok := range toks {
			sc += freq[tok]
		}
		if l := float64(len(toks)); l > 0 {
			sc /= math.Sqrt(l)
		}
		scores[i] = pair{i, sc}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	// Take the best sentences until the budget is met, then restore the
	// original sentence order. Sentences that would break the budget are
	// skipped, including the first.
	var selected []int
	used := 0
	for _, p := range scores {
		l := len(strings.TrimSpace(sentences[p.idx]))
		if used+l+1 > maxLen {
			if used > 0 && used >= minLen {
				break
			}
			continue
		}
		selected = append(selected, p.idx)
		used += l + 1
		if used >= maxLen {
			break
		}
	}
	if len(selected) == 0 {
		// Every sentence alone exceeds the budget: cut the best one down.
		return truncate(strings.TrimSpace(sentences[scores[0].idx]), maxLen), nil
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

// clean strips citation parentheticals and URLs that pollute frequency
// counts in scientific prose, then collapses whitespace.
func (s *FrequencySummarizer) clean(text string) string {
	text = s.citationPattern.ReplaceAllString(text, "")
	text = s.urlPattern.ReplaceAllString(text, "")
	text = s.yearCitePattern.ReplaceAllString(text, "")
	text = s.spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
