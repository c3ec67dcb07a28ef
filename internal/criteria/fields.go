package criteria

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldLengthArgs requires each listed field to be longer than MinChars
// after trimming.
type FieldLengthArgs struct {
	Fields   []string `mapstructure:"fields"`
	MinChars int      `mapstructure:"min_chars"`
}

// FieldContainsArgs requires a field longer than MinChars that contains
// every term (case-insensitive).
type FieldContainsArgs struct {
	Field    string   `mapstructure:"field"`
	MinChars int      `mapstructure:"min_chars"`
	Terms    []string `mapstructure:"terms"`
}

// DistinctFieldsArgs requires two fields to be meaningfully different.
type DistinctFieldsArgs struct {
	A             string  `mapstructure:"a"`
	B             string  `mapstructure:"b"`
	MaxSimilarity float64 `mapstructure:"max_similarity"`
}

// NumericRangeArgs requires a field to parse as an integer within [Min, Max].
type NumericRangeArgs struct {
	Field string `mapstructure:"field"`
	Min   int    `mapstructure:"min"`
	Max   int    `mapstructure:"max"`
}

type fieldLengthCriterion struct {
	base
	fields   []string
	minChars int
}

func newFieldLength(b base, args FieldLengthArgs) (Criterion, error) {
	if len(args.Fields) == 0 {
		return nil, fmt.Errorf("criterion %q: field_length requires at least one field", b.id)
	}
	return &fieldLengthCriterion{base: b, fields: args.Fields, minChars: args.MinChars}, nil
}

func (c *fieldLengthCriterion) Kind() Kind { return KindFieldLength }

func (c *fieldLengthCriterion) Evaluate(in *Input) Evaluation {
	for _, f := range c.fields {
		if len(strings.TrimSpace(in.Field(f))) <= c.minChars {
			return c.verdict(MinScore)
		}
	}
	return c.verdict(MaxScore)
}

type fieldContainsCriterion struct {
	base
	field    string
	minChars int
	terms    []string
}

func newFieldContains(b base, args FieldContainsArgs) (Criterion, error) {
	if args.Field == "" {
		return nil, fmt.Errorf("criterion %q: field_contains requires a field", b.id)
	}
	return &fieldContainsCriterion{base: b, field: args.Field, minChars: args.MinChars, terms: args.Terms}, nil
}

func (c *fieldContainsCriterion) Kind() Kind { return KindFieldContains }

func (c *fieldContainsCriterion) Evaluate(in *Input) Evaluation {
	value := strings.TrimSpace(in.Field(c.field))
	if len(value) <= c.minChars {
		return c.verdict(MinScore)
	}
	lower := strings.ToLower(value)
	for _, t := range c.terms {
		if !strings.Contains(lower, strings.ToLower(t)) {
			return c.verdict(MinScore)
		}
	}
	return c.verdict(MaxScore)
}

type distinctFieldsCriterion struct {
	base
	a, b          string
	maxSimilarity float64
}

func newDistinctFields(b base, args DistinctFieldsArgs) (Criterion, error) {
	if args.A == "" || args.B == "" {
		return nil, fmt.Errorf("criterion %q: distinct_fields requires fields a and b", b.id)
	}
	if args.MaxSimilarity <= 0 || args.MaxSimilarity > 1 {
		return nil, fmt.Errorf("criterion %q: max_similarity must be within (0, 1], got %g", b.id, args.MaxSimilarity)
	}
	return &distinctFieldsCriterion{base: b, a: args.A, b: args.B, maxSimilarity: args.MaxSimilarity}, nil
}

func (c *distinctFieldsCriterion) Kind() Kind { return KindDistinctFields }

func (c *distinctFieldsCriterion) Evaluate(in *Input) Evaluation {
	if Similarity(in.Field(c.a), in.Field(c.b)) < c.maxSimilarity {
		return c.verdict(MaxScore)
	}
	return c.verdict(MinScore)
}

// Similarity is the share of a's space-separated words that occur inside b,
// compared case-insensitively. Identical texts have similarity 1.
func Similarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 1
	}
	words := strings.Split(a, " ")
	shared := 0
	for _, w := range words {
		if strings.Contains(lb, strings.ToLower(w)) {
			shared++
		}
	}
	return float64(shared) / float64(len(words))
}

type numericRangeCriterion struct {
	base
	field    string
	min, max int
}

func newNumericRange(b base, args NumericRangeArgs) (Criterion, error) {
	if args.Field == "" {
		return nil, fmt.Errorf("criterion %q: numeric_range requires a field", b.id)
	}
	if args.Min > args.Max {
		return nil, fmt.Errorf("criterion %q: min %d exceeds max %d", b.id, args.Min, args.Max)
	}
	return &numericRangeCriterion{base: b, field: args.Field, min: args.Min, max: args.Max}, nil
}

func (c *numericRangeCriterion) Kind() Kind { return KindNumericRange }

func (c *numericRangeCriterion) Evaluate(in *Input) Evaluation {
	n, err := strconv.Atoi(strings.TrimSpace(in.Field(c.field)))
	if err != nil || n < c.min || n > c.max {
		return c.verdict(MinScore)
	}
	return c.verdict(MaxScore)
}
