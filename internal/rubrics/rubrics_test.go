package rubrics

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/scoring"
	"github.com/stretchr/testify/require"
)

const strongInsight = `Our attendance data shows that participants who attend the first 4 weeks complete at 89% compared to 34% for irregular attenders, versus a baseline of 52% last year. Specifically, the analysis measured 120 participants against the program average. The benefit is a lower cost per graduate and better program effectiveness.

RECOMMENDATION: We should implement a week-one check-in call and focus staff on early attendance. Next steps: start a pilot, increase outreach, and track the impact on participants, donors, and the community.`

func mustBuiltinScorer(t *testing.T, name string) (*Rubric, *scoring.Scorer) {
	t.Helper()
	r, err := Builtin(name)
	require.NoError(t, err)
	s, err := r.Scorer()
	require.NoError(t, err)
	return r, s
}

func TestBuiltins(t *testing.T) {
	require.Equal(t, []string{"abtest", "authenticity", "insight"}, Builtins())

	for _, name := range Builtins() {
		t.Run(name, func(t *testing.T) {
			r, s := mustBuiltinScorer(t, name)
			require.Equal(t, name, r.Name)
			require.NotEmpty(t, r.Scenarios)
			require.NoError(t, scoring.CheckWeights(s.Criteria(), 0))
		})
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := Builtin("sentiment")
	require.True(t, errors.Is(err, ErrUnknownRubric))
	require.ErrorContains(t, err, "available: abtest, authenticity, insight")
}

func TestInsight_EmptyDraft(t *testing.T) {
	_, s := mustBuiltinScorer(t, "insight")

	res := s.ScoreText("")
	require.Equal(t, 14, res.OverallScore)
	require.LessOrEqual(t, res.OverallScore, 20)
	require.False(t, res.Passed)
	require.Equal(t, 70, res.PerCriterion["clarity"])
	require.Equal(t, 4, res.Count(models.CategoryCritical))
}

func TestInsight_StrongDraft(t *testing.T) {
	_, s := mustBuiltinScorer(t, "insight")

	res := s.ScoreText(strongInsight)
	require.Equal(t, map[string]int{
		"specificity":   100,
		"actionability": 100,
		"impact":        96,
		"evidence":      80,
		"clarity":       100,
	}, res.PerCriterion)
	require.Equal(t, 96, res.OverallScore)
	require.True(t, res.Passed)
	require.Zero(t, res.Count(models.CategoryCritical))
	require.Equal(t, 5, res.Count(models.CategoryStrength))
	require.Empty(t, res.Recommendations)
	require.Equal(t, "Good use of specific data points", res.FeedbackItems[0].Description)
}

func TestInsight_OneCriterionSatisfied(t *testing.T) {
	_, s := mustBuiltinScorer(t, "insight")

	res := s.ScoreText("12% 34% 56% 78% 90% 11 22")
	require.Equal(t, 100, res.PerCriterion["specificity"])
	require.Equal(t, 85, res.PerCriterion["clarity"])
	require.Equal(t, 37, res.OverallScore)
	require.False(t, res.Passed)
	require.Equal(t, 3, res.Count(models.CategoryCritical))
	require.Equal(t, []string{
		"Improve actionability: provides clear next steps and recommendations",
		"Improve impact: connects the finding to organizational goals and outcomes",
		"Improve evidence: supported by data analysis and meaningful comparisons",
		"Include concrete next steps with clear ownership and timelines",
		"Connect findings to organizational goals and stakeholder benefits",
	}, res.Recommendations)
}

func TestInsight_Deterministic(t *testing.T) {
	_, s := mustBuiltinScorer(t, "insight")
	require.Equal(t, s.ScoreText(strongInsight), s.ScoreText(strongInsight))
}

func TestInsight_Bounded(t *testing.T) {
	_, s := mustBuiltinScorer(t, "insight")
	inputs := []string{"", " ", "...", "!!!\n\n", strongInsight + strongInsight + strongInsight, "data data data data data data data data data data data data"}
	for _, in := range inputs {
		res := s.ScoreText(in)
		require.GreaterOrEqual(t, res.OverallScore, 0)
		require.LessOrEqual(t, res.OverallScore, 100)
		for id, v := range res.PerCriterion {
			require.GreaterOrEqual(t, v, 0, id)
			require.LessOrEqual(t, v, 100, id)
		}
		if res.Passed {
			require.GreaterOrEqual(t, res.OverallScore, s.Threshold())
			require.False(t, res.HasCritical())
		}
	}
}

func TestAuthenticity(t *testing.T) {
	_, s := mustBuiltinScorer(t, "authenticity")

	t.Run("personal story", func(t *testing.T) {
		story := "Last spring I missed my daughter's recital because I stayed late to finish a grant report. " +
			"I felt sick when I saw the empty seat in the photos. I was afraid she would think work mattered more than her, " +
			"and honestly I was nervous to even bring it up. I told her exactly what happened and that I was sad. " +
			"We made a plan together, and I have not missed one since. I think everyone who loves their work has felt that pull."
		res := s.ScoreText(story)
		require.Equal(t, map[string]int{
			"authenticity":  100,
			"vulnerability": 100,
			"specificity":   75,
			"emotion":       100,
			"universality":  85,
		}, res.PerCriterion)
		require.Equal(t, 93, res.OverallScore)
		require.True(t, res.Passed)
	})

	t.Run("impersonal report", func(t *testing.T) {
		res := s.ScoreText("The program served many families this year and the outcomes were positive across all metrics.")
		require.Equal(t, 50, res.OverallScore)
		require.False(t, res.Passed)
		require.Equal(t, 4, res.Count(models.CategoryCritical))
		require.Len(t, res.Recommendations, 8)
	})
}

func TestABTest(t *testing.T) {
	r, s := mustBuiltinScorer(t, "abtest")
	require.Len(t, r.Scenarios, 3)
	require.Equal(t, "22% open rate", r.Scenarios[0].Metadata["current"])

	t.Run("missing because still passes", func(t *testing.T) {
		res := s.Score(&criteria.Input{Fields: map[string]string{
			"version_a":   "Help us reach our goal",
			"version_b":   "You can change Sarah's life today",
			"hypothesis":  "Personal stories outperform generic appeals",
			"sample_size": "1000",
		}})
		require.Equal(t, 75, res.OverallScore)
		require.Equal(t, 0, res.PerCriterion["hypothesis"])
		require.False(t, res.HasCritical())
		require.True(t, res.Passed)
	})

	t.Run("identical versions fail distinctness", func(t *testing.T) {
		res := s.Score(&criteria.Input{Fields: map[string]string{
			"version_a":   "Support our mission today",
			"version_b":   "support our mission today",
			"hypothesis":  "Nothing changes because the copy is the same",
			"sample_size": "20000",
		}})
		require.Equal(t, 0, res.PerCriterion["distinct"])
		require.Equal(t, 0, res.PerCriterion["sample"])
		require.Equal(t, 50, res.OverallScore)
		require.False(t, res.Passed)
	})
}

// matchingAdditions lists, per built-in criterion, text that counts as more
// of what that criterion rewards.
var matchingAdditions = map[string][]string{
	"insight/specificity":        {" 45%", " specifically", " versus 12"},
	"insight/actionability":      {" we should", " recommend", "\nNext steps: start"},
	"insight/impact":             {" impact", " donors", " revenue"},
	"insight/evidence":           {" data", " compared to baseline", " survey"},
	"insight/clarity":            {"\n- more structure here", "\n\nRECOMMENDATION: act", "\n1. first step", " words."},
	"authenticity/authenticity":  {" I", " felt", " my heart"},
	"authenticity/vulnerability": {" afraid", " me", " nervous"},
	"authenticity/specificity":   {" exactly", " actually", " literally"},
	"authenticity/emotion":       {" sad", " myself", " excited"},
	"authenticity/universality":  {" everyone", " we", " together"},
}

// fieldAdditions appends to named fields for criteria that count what a
// field contains. Criteria comparing values (distinct_fields, numeric_range)
// have no notion of "more matches" and are not listed.
var fieldAdditions = map[string]map[string]string{
	"abtest/versions":   {"version_a": " today", "version_b": " now"},
	"abtest/hypothesis": {"hypothesis": " because stories work"},
}

func TestBuiltins_MonotonicInMatches(t *testing.T) {
	textSeeds := []string{
		"",
		"Short note.",
		strings.Repeat("word ", 496) + "\n\nRECOMMENDATION:",
		strongInsight,
		"I walked home alone and thought about the day.",
	}
	fieldSeeds := []map[string]string{
		{},
		{"version_a": "Help", "version_b": "Give", "hypothesis": "B wins"},
		{"version_a": "Help us reach our goal", "version_b": "You can change a life", "hypothesis": "Stories win because they are personal", "sample_size": "1000"},
	}

	for _, name := range Builtins() {
		_, s := mustBuiltinScorer(t, name)
		for _, c := range s.Criteria() {
			key := name + "/" + c.ID()
			t.Run(key, func(t *testing.T) {
				switch c.Kind() {
				case criteria.KindDistinctFields, criteria.KindNumericRange:
					t.Skipf("%s compares values rather than counting matches", c.Kind())
				case criteria.KindFieldLength, criteria.KindFieldContains:
					adds, ok := fieldAdditions[key]
					require.True(t, ok, "no field additions for %s", key)
					for _, seed := range fieldSeeds {
						fields := maps.Clone(seed)
						prev := c.Evaluate(&criteria.Input{Fields: fields}).Score
						for i := 0; i < 3; i++ {
							for f, add := range adds {
								fields[f] += add
							}
							next := c.Evaluate(&criteria.Input{Fields: fields}).Score
							require.GreaterOrEqual(t, next, prev, "fields %v", fields)
							prev = next
						}
					}
				default:
					adds, ok := matchingAdditions[key]
					require.True(t, ok, "no matching additions for %s", key)
					for _, seed := range textSeeds {
						text := seed
						prev := c.Evaluate(&criteria.Input{Text: text}).Score
						for i := 0; i < 3; i++ {
							for _, add := range adds {
								text += add
								next := c.Evaluate(&criteria.Input{Text: text}).Score
								require.GreaterOrEqual(t, next, prev, "after appending %q", add)
								prev = next
							}
						}
					}
				}
			})
		}
	}
}

func TestThresholdZeroIsKept(t *testing.T) {
	r, err := Parse([]byte(`name: lenient
threshold: 0
bands:
  strength: 100
  concern: 0
criteria:
  - id: thanks
    weight: 1
    kind: keyword
    params:
      must_contain: [thank]
scenarios:
  - id: strict
    title: Strict
    context: Thank the board
    thresholds:
      pass: 90
  - id: open
    title: Open
    context: Thank a volunteer
    thresholds:
      pass: 0
`))
	require.NoError(t, err)
	require.Equal(t, 0, r.PassThreshold())

	s, err := r.Scorer()
	require.NoError(t, err)
	require.Equal(t, 0, s.Threshold())
	require.True(t, s.ScoreText("no gratitude here").Passed)

	strict, ok := r.Scenario("strict")
	require.True(t, ok)
	require.Equal(t, 90, s.WithThreshold(strict.Thresholds.Pass).Threshold())

	open, ok := r.Scenario("open")
	require.True(t, ok)
	require.NotNil(t, open.Thresholds.Pass)
	require.Equal(t, 0, s.WithThreshold(open.Thresholds.Pass).Threshold())

	unset, err := Parse([]byte("name: unset\ncriteria:\n  - id: x\n    weight: 1\n    kind: keyword\n    params:\n      must_contain: [hello]\n"))
	require.NoError(t, err)
	require.Nil(t, unset.Threshold)
	require.Equal(t, scoring.DefaultThreshold, unset.PassThreshold())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("name: demo\ncriteria:\n  - id: x\n    weight: 1\n    kind: sentiment\n"))
	require.ErrorContains(t, err, "schema validation")
	require.ErrorContains(t, err, "/criteria/0/kind")

	_, err = Parse([]byte(`name: demo
criteria:
  - id: x
    weight: 1
    kind: regex
    params:
      must_match: ['(unclosed']
`))
	require.ErrorContains(t, err, `rubric "demo"`)

	_, err = Parse([]byte(`name: demo
hints:
  - criterion: missing
    below: 50
    message: nope
criteria:
  - id: x
    weight: 1
    kind: keyword
    params:
      must_contain: [hello]
`))
	require.ErrorContains(t, err, "unknown criterion")
}

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "greeting.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`name: greeting
threshold: 60
criteria:
  - id: thanks
    weight: 1
    kind: keyword
    params:
      must_contain: [thank]
scenarios:
  - id: reply
    context: Reply to a donor
    thresholds:
      min_chars: 10
`), 0o644))

	r, err := Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "greeting", r.Name)

	s, err := r.Scorer()
	require.NoError(t, err)
	require.True(t, s.ScoreText("Thank you so much").Passed)

	sc, ok := r.Scenario("reply")
	require.True(t, ok)
	require.Equal(t, 10, r.MinCharsFor(sc))
	require.Equal(t, DefaultMinChars, r.MinCharsFor(models.Scenario{}))
	_, ok = r.Scenario("missing")
	require.False(t, ok)

	builtin, err := Resolve("insight")
	require.NoError(t, err)
	require.Equal(t, 50, builtin.MinCharsFor(builtin.Scenarios[0]))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "reading rubric")
}

func TestResolveInAndListDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.yml"), []byte(`name: greeting
criteria:
  - id: thanks
    weight: 1
    kind: keyword
    params:
      must_contain: [thank]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	r, err := ResolveIn("greeting", []string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)
	require.Equal(t, "greeting", r.Name)

	r, err = ResolveIn("insight", []string{dir})
	require.NoError(t, err)
	require.Equal(t, "insight", r.Name)

	_, err = ResolveIn("nope", []string{dir})
	require.True(t, errors.Is(err, ErrUnknownRubric))

	files, err := ListDir(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "greeting.yml")}, files)

	files, err = ListDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.Empty(t, files)
}
