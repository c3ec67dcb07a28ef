// Package abtest holds the helpers behind the A/B test design exercise:
// sample-size estimation, test elements with worked examples, and
// generated variation ideas.
package abtest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
)

// Field names a design fills in. They match the abtest rubric's params.
const (
	FieldVersionA   = "version_a"
	FieldVersionB   = "version_b"
	FieldHypothesis = "hypothesis"
	FieldSampleSize = "sample_size"
)

const (
	DefaultLift   = 0.2
	MinSampleSize = 500
	MaxSampleSize = 10000
)

var leadingRate = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// ParseRate reads the leading percentage of a performance note such as
// "22% open rate" or "3.5% CTR" and returns it as a fraction.
func ParseRate(s string) (float64, error) {
	m := leadingRate.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("no leading rate in %q", s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing rate %q: %w", s, err)
	}
	return v / 100, nil
}

// EstimateSampleSize is the per-variation sample needed to detect a
// relative lift on a baseline rate, using the 16·p(1−p)/δ² rule of thumb
// and clamped to [MinSampleSize, MaxSampleSize]. A lift <= 0 uses
// DefaultLift. Rates outside (0, 1) yield MaxSampleSize.
func EstimateSampleSize(rate, lift float64) int {
	if lift <= 0 {
		lift = DefaultLift
	}
	if rate <= 0 || rate >= 1 {
		return MaxSampleSize
	}
	delta := rate * lift
	n := 16 * rate * (1 - rate) / (delta * delta)
	// The epsilon keeps exact results like 4600 from rounding up to 4601.
	size := int(math.Ceil(n - 1e-9))
	return max(MinSampleSize, min(MaxSampleSize, size))
}

// EstimateForScenario estimates from the scenario's "current" metadata.
func EstimateForScenario(sc models.Scenario, lift float64) (int, error) {
	rate, err := ParseRate(sc.Metadata["current"])
	if err != nil {
		return 0, fmt.Errorf("scenario %q: %w", sc.ID, err)
	}
	return EstimateSampleSize(rate, lift), nil
}

// Similarity is the share of a's words that also appear in b.
func Similarity(a, b string) float64 {
	return criteria.Similarity(a, b)
}

// Design is one filled-in A/B test.
type Design struct {
	VersionA   string `json:"version_a"`
	VersionB   string `json:"version_b"`
	Hypothesis string `json:"hypothesis"`
	SampleSize int    `json:"sample_size"`
}

// Fields returns the design as named selections. A zero sample size is
// left out so the field reads as missing.
func (d Design) Fields() map[string]string {
	f := map[string]string{
		FieldVersionA:   d.VersionA,
		FieldVersionB:   d.VersionB,
		FieldHypothesis: d.Hypothesis,
	}
	if d.SampleSize != 0 {
		f[FieldSampleSize] = strconv.Itoa(d.SampleSize)
	}
	return f
}

// Input maps the design onto criterion input.
func (d Design) Input() *criteria.Input {
	return &criteria.Input{Fields: d.Fields()}
}

// DesignFromFields is the inverse of Fields. An unparsable sample size
// reads as zero.
func DesignFromFields(f map[string]string) Design {
	n, _ := strconv.Atoi(strings.TrimSpace(f[FieldSampleSize]))
	return Design{
		VersionA:   f[FieldVersionA],
		VersionB:   f[FieldVersionB],
		Hypothesis: f[FieldHypothesis],
		SampleSize: n,
	}
}
