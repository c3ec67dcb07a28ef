package criteria

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeywordCriterion_Evaluate(t *testing.T) {
	t.Run("all must_contain keywords found", func(t *testing.T) {
		c := mustCreate(t, Spec{ID: "kw", Kind: KindKeyword, Params: map[string]any{
			"must_contain": []string{"hello", "world"},
		}})

		ev := c.Evaluate(&Input{Text: "hello world"})
		require.Equal(t, 100, ev.Score)
		require.Equal(t, "All keyword checks passed", ev.Feedback)
	})

	t.Run("must_contain keyword missing", func(t *testing.T) {
		c := mustCreate(t, Spec{ID: "kw", Kind: KindKeyword, Params: map[string]any{
			"must_contain": []string{"hello", "missing"},
		}})

		ev := c.Evaluate(&Input{Text: "hello world"})
		require.Equal(t, 50, ev.Score)
		require.Contains(t, ev.Feedback, "Missing expected keyword: missing")
	})

	t.Run("case-insensitive matching", func(t *testing.T) {
		c := mustCreate(t, Spec{ID: "kw", Kind: KindKeyword, Params: map[string]any{
			"must_contain": []string{"HELLO", "World"},
		}})

		require.Equal(t, 100, c.Evaluate(&Input{Text: "Hello World"}).Score)
	})

	t.Run("combined partial failure", func(t *testing.T) {
		c := mustCreate(t, Spec{ID: "kw", Kind: KindKeyword, Params: map[string]any{
			"must_contain":     []string{"thank", "donate"},
			"must_not_contain": []string{"urgent", "final notice"},
		}})

		ev := c.Evaluate(&Input{Text: "Thank you! This is URGENT."})
		// 2 of 4 checks fail: missing "donate", found "urgent"
		require.Equal(t, 50, ev.Score)
		require.Contains(t, ev.Feedback, "Missing expected keyword: donate")
		require.Contains(t, ev.Feedback, "Found forbidden keyword: urgent")
	})

	t.Run("no keywords yields a full score", func(t *testing.T) {
		c := mustCreate(t, Spec{ID: "kw", Kind: KindKeyword})
		require.Equal(t, 100, c.Evaluate(&Input{Text: "anything"}).Score)
	})

	t.Run("configured feedback wins over the generated message", func(t *testing.T) {
		c := mustCreate(t, Spec{
			ID:       "kw",
			Kind:     KindKeyword,
			Params:   map[string]any{"must_contain": []string{"thank"}},
			Feedback: Feedback{Pass: "Gratitude is clear", Fail: "Thank the reader"},
		})

		require.Equal(t, "Thank the reader", c.Evaluate(&Input{Text: "hi"}).Feedback)
		require.Equal(t, "Gratitude is clear", c.Evaluate(&Input{Text: "thanks!"}).Feedback)
	})
}

func TestRegexCriterion_Evaluate(t *testing.T) {
	c := mustCreate(t, Spec{ID: "rx", Kind: KindRegex, Params: map[string]any{
		"must_match":     []string{`(?m)^RECOMMENDATION:`},
		"must_not_match": []string{`(?i)lorem ipsum`},
	}})
	require.Equal(t, KindRegex, c.Kind())

	ev := c.Evaluate(&Input{Text: "Data shows growth.\nRECOMMENDATION: expand the pilot"})
	require.Equal(t, 100, ev.Score)
	require.Equal(t, "All patterns matched", ev.Feedback)

	ev = c.Evaluate(&Input{Text: "Lorem Ipsum only"})
	require.Equal(t, 0, ev.Score)
	require.Contains(t, ev.Feedback, "Missing expected pattern")
	require.Contains(t, ev.Feedback, "Found forbidden pattern")
}
