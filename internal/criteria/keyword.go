package criteria

import (
	"fmt"
	"strings"
)

// KeywordArgs holds the arguments for a keyword criterion.
type KeywordArgs struct {
	// MustContain lists keywords that must appear in the text (case-insensitive).
	MustContain []string `mapstructure:"must_contain"`
	// MustNotContain lists keywords that must NOT appear in the text (case-insensitive).
	MustNotContain []string `mapstructure:"must_not_contain"`
}

// keywordCriterion scores the share of keyword checks that hold.
type keywordCriterion struct {
	base
	mustContain    []string
	mustNotContain []string
}

func newKeyword(b base, args KeywordArgs) Criterion {
	return &keywordCriterion{
		base:           b,
		mustContain:    args.MustContain,
		mustNotContain: args.MustNotContain,
	}
}

func (kc *keywordCriterion) Kind() Kind { return KindKeyword }

func (kc *keywordCriterion) Evaluate(in *Input) Evaluation {
	var failures []string
	var text string
	if in != nil {
		text = in.Text
	}
	lower := strings.ToLower(text)

	for _, keyword := range kc.mustContain {
		if !strings.Contains(lower, strings.ToLower(keyword)) {
			failures = append(failures, fmt.Sprintf("Missing expected keyword: %s", keyword))
		}
	}

	for _, keyword := range kc.mustNotContain {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			failures = append(failures, fmt.Sprintf("Found forbidden keyword: %s", keyword))
		}
	}

	ev := kc.verdict(ratioScore(len(kc.mustContain)+len(kc.mustNotContain), len(failures)))
	if ev.Feedback == "" {
		ev.Feedback = "All keyword checks passed"
		if len(failures) > 0 {
			ev.Feedback = strings.Join(failures, "; ")
		}
	}
	return ev
}

// ratioScore maps passed/total checks onto 0..100; no checks is a full score.
func ratioScore(total, failed int) float64 {
	if total == 0 {
		return MaxScore
	}
	return float64(total-failed) / float64(total) * MaxScore
}
