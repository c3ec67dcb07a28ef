package criteria

import (
	"fmt"
	"regexp"
	"strings"
)

// RegexArgs holds the arguments for a regex criterion.
type RegexArgs struct {
	MustMatch    []string `mapstructure:"must_match"`
	MustNotMatch []string `mapstructure:"must_not_match"`
}

// regexCriterion scores the share of pattern checks that hold.
// Patterns are compiled once, when the criterion is created.
type regexCriterion struct {
	base
	mustMatch    []*regexp.Regexp
	mustNotMatch []*regexp.Regexp
}

func newRegex(b base, args RegexArgs) (Criterion, error) {
	rc := &regexCriterion{base: b}

	for _, pattern := range args.MustMatch {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("criterion %q: invalid must_match regex pattern %q: %w", b.id, pattern, err)
		}
		rc.mustMatch = append(rc.mustMatch, re)
	}

	for _, pattern := range args.MustNotMatch {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("criterion %q: invalid must_not_match regex pattern %q: %w", b.id, pattern, err)
		}
		rc.mustNotMatch = append(rc.mustNotMatch, re)
	}

	return rc, nil
}

func (rc *regexCriterion) Kind() Kind { return KindRegex }

func (rc *regexCriterion) Evaluate(in *Input) Evaluation {
	var failures []string
	var text string
	if in != nil {
		text = in.Text
	}

	for _, re := range rc.mustMatch {
		if !re.MatchString(text) {
			failures = append(failures, fmt.Sprintf("Missing expected pattern: %s", re))
		}
	}

	for _, re := range rc.mustNotMatch {
		if re.MatchString(text) {
			failures = append(failures, fmt.Sprintf("Found forbidden pattern: %s", re))
		}
	}

	ev := rc.verdict(ratioScore(len(rc.mustMatch)+len(rc.mustNotMatch), len(failures)))
	if ev.Feedback == "" {
		ev.Feedback = "All patterns matched"
		if len(failures) > 0 {
			ev.Feedback = strings.Join(failures, "; ")
		}
	}
	return ev
}
