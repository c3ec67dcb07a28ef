package criteria

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Stats holds the structural measurements heuristics condition on.
type Stats struct {
	Words     int
	Sentences int
	Chars     int
}

// Measure computes word, sentence, and character counts.
//
// Words are space-separated segments, so the empty string counts as one word
// and densities never divide by zero. Sentences are non-blank segments
// between runs of terminal punctuation.
func Measure(text string) Stats {
	s := Stats{
		Words: len(strings.Split(text, " ")),
		Chars: utf8.RuneCountInString(text),
	}
	for _, part := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			s.Sentences++
		}
	}
	return s
}

// CountWords returns the number of non-empty whitespace-separated words.
// Used for display; heuristics use Stats.Words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// wordPattern compiles a case-insensitive, word-bounded alternation.
func wordPattern(words []string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return nil, nil
	}
	return regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func countMatches(re *regexp.Regexp, text string) int {
	if re == nil || text == "" {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}
