package criteria

import (
	"fmt"
	"regexp"
)

// Metric names a structural measurement a bonus can condition on.
type Metric string

// Every metric is non-decreasing as text is appended.
const (
	MetricWords     Metric = "words"
	MetricSentences Metric = "sentences"
	MetricChars     Metric = "chars"
	MetricPattern   Metric = "pattern"
)

// HeuristicArgs configures a linear keyword/structure heuristic:
//
//	score = baseline
//	      + Σ terms.points × matches
//	      + Σ densities.points × (matches / words × 100)
//	      + Σ bonuses.points when metric > above
type HeuristicArgs struct {
	Baseline  float64     `mapstructure:"baseline"`
	Terms     []TermArgs  `mapstructure:"terms"`
	Densities []TermArgs  `mapstructure:"densities"`
	Bonuses   []BonusArgs `mapstructure:"bonuses"`
}

// TermArgs matches either a word list (word-bounded) or a raw pattern.
// Matching is always case-insensitive.
type TermArgs struct {
	Words   []string `mapstructure:"words"`
	Pattern string   `mapstructure:"pattern"`
	Points  float64  `mapstructure:"points"`
}

// BonusArgs awards Points when the metric is strictly greater than Above.
// A nil Above awards the bonus unconditionally. Below is decoded only to be
// rejected: an upper bound would take points away as a draft grows.
type BonusArgs struct {
	Metric  Metric   `mapstructure:"metric"`
	Pattern string   `mapstructure:"pattern"`
	Above   *float64 `mapstructure:"above"`
	Below   *float64 `mapstructure:"below"`
	Points  float64  `mapstructure:"points"`
}

type term struct {
	re     *regexp.Regexp
	points float64
}

type bonus struct {
	metric Metric
	re     *regexp.Regexp
	above  *float64
	points float64
}

type heuristicCriterion struct {
	base
	baseline  float64
	terms     []term
	densities []term
	bonuses   []bonus
}

func newHeuristic(b base, args HeuristicArgs) (Criterion, error) {
	h := &heuristicCriterion{base: b, baseline: args.Baseline}

	var err error
	if h.terms, err = compileTerms(b.id, "terms", args.Terms); err != nil {
		return nil, err
	}
	if h.densities, err = compileTerms(b.id, "densities", args.Densities); err != nil {
		return nil, err
	}

	for i, ba := range args.Bonuses {
		if ba.Points < 0 {
			return nil, fmt.Errorf("criterion %q: bonuses[%d]: points must not be negative", b.id, i)
		}
		if ba.Below != nil {
			return nil, fmt.Errorf("criterion %q: bonuses[%d]: upper bounds are not supported, use above", b.id, i)
		}
		bn := bonus{metric: ba.Metric, above: ba.Above, points: ba.Points}
		switch ba.Metric {
		case MetricWords, MetricSentences, MetricChars:
		case MetricPattern:
			if ba.Pattern == "" {
				return nil, fmt.Errorf("criterion %q: bonuses[%d]: pattern metric requires a pattern", b.id, i)
			}
			re, err := regexp.Compile("(?i)" + ba.Pattern)
			if err != nil {
				return nil, fmt.Errorf("criterion %q: bonuses[%d]: invalid pattern %q: %w", b.id, i, ba.Pattern, err)
			}
			bn.re = re
		default:
			return nil, fmt.Errorf("criterion %q: bonuses[%d]: unknown metric %q", b.id, i, ba.Metric)
		}
		h.bonuses = append(h.bonuses, bn)
	}

	return h, nil
}

// compileTerms rejects negative points. Term counts never shrink as text
// grows, so this keeps terms monotonic; densities stay monotonic for added
// matches because each match adds at most one word.
func compileTerms(id, field string, args []TermArgs) ([]term, error) {
	var terms []term
	for i, ta := range args {
		if ta.Points < 0 {
			return nil, fmt.Errorf("criterion %q: %s[%d]: points must not be negative", id, field, i)
		}

		var re *regexp.Regexp
		var err error
		switch {
		case ta.Pattern != "" && len(ta.Words) > 0:
			return nil, fmt.Errorf("criterion %q: %s[%d]: set either words or pattern, not both", id, field, i)
		case ta.Pattern != "":
			re, err = regexp.Compile("(?i)" + ta.Pattern)
		default:
			re, err = wordPattern(ta.Words)
		}
		if err != nil {
			return nil, fmt.Errorf("criterion %q: %s[%d]: %w", id, field, i, err)
		}
		if re == nil {
			return nil, fmt.Errorf("criterion %q: %s[%d]: words or pattern is required", id, field, i)
		}
		terms = append(terms, term{re: re, points: ta.Points})
	}
	return terms, nil
}

func (h *heuristicCriterion) Kind() Kind { return KindHeuristic }

func (h *heuristicCriterion) Evaluate(in *Input) Evaluation {
	var text string
	if in != nil {
		text = in.Text
	}
	stats := Measure(text)

	score := h.baseline
	for _, t := range h.terms {
		score += t.points * float64(countMatches(t.re, text))
	}
	for _, d := range h.densities {
		score += d.points * (float64(countMatches(d.re, text)) / float64(stats.Words) * 100)
	}
	for _, b := range h.bonuses {
		v, ok := b.value(text, stats)
		if ok && b.applies(v) {
			score += b.points
		}
	}

	return h.verdict(score)
}

func (b bonus) value(text string, s Stats) (float64, bool) {
	switch b.metric {
	case MetricWords:
		return float64(s.Words), true
	case MetricSentences:
		return float64(s.Sentences), true
	case MetricChars:
		return float64(s.Chars), true
	case MetricPattern:
		return float64(countMatches(b.re, text)), true
	}
	return 0, false
}

func (b bonus) applies(v float64) bool {
	return b.above == nil || v > *b.above
}
