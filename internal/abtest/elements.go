package abtest

import (
	"fmt"
	"strings"
)

// Variation is one candidate pair of versions with the reason B might win.
type Variation struct {
	A          string `json:"a"`
	B          string `json:"b"`
	Hypothesis string `json:"hypothesis"`
}

// Element is a part of an email that can be tested.
type Element struct {
	ID          string
	Name        string
	Description string
	Examples    []Variation
}

var elements = []Element{
	{
		ID:          "subject",
		Name:        "Subject Line",
		Description: "Test different email subjects",
		Examples: []Variation{{
			A:          "Help us reach our goal",
			B:          "You can change Sarah's life today",
			Hypothesis: "Personal stories outperform generic appeals",
		}},
	},
	{
		ID:          "cta",
		Name:        "Call to Action",
		Description: "Test button text and placement",
		Examples: []Variation{{
			A:          "Donate Now",
			B:          "Yes, I'll Help!",
			Hypothesis: "Emotional CTAs drive more clicks",
		}},
	},
	{
		ID:          "opening",
		Name:        "Opening Line",
		Description: "Test different hooks",
		Examples: []Variation{{
			A:          "Dear Friend,",
			B:          "I have an urgent update for you...",
			Hypothesis: "Urgency increases open rates",
		}},
	},
	{
		ID:          "format",
		Name:        "Email Format",
		Description: "Test layout and structure",
		Examples: []Variation{{
			A:          "Long-form story",
			B:          "Bullet points with images",
			Hypothesis: "Visual formats improve engagement",
		}},
	},
}

// Elements lists the testable elements in display order.
func Elements() []Element {
	out := make([]Element, len(elements))
	copy(out, elements)
	return out
}

// FindElement looks an element up by id.
func FindElement(id string) (Element, error) {
	for _, e := range elements {
		if e.ID == id {
			return e, nil
		}
	}
	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ID
	}
	return Element{}, fmt.Errorf("unknown test element %q (available: %s)", id, strings.Join(ids, ", "))
}

// FallbackVariations are offered when no generated ideas are available.
func FallbackVariations() []Variation {
	return []Variation{
		{
			A:          "Support Our Mission Today",
			B:          "Your Gift Changes Lives: See How Inside",
			Hypothesis: "Specific impact preview increases curiosity and opens",
		},
		{
			A:          "December Newsletter",
			B:          "Sarah's Story + Your Year-End Impact Report",
			Hypothesis: "Personal story combined with donor recognition drives engagement",
		},
		{
			A:          "Help Us Reach Our Goal",
			B:          "48 Hours Left: Double Your Impact",
			Hypothesis: "Time limit and matching gift create urgency",
		},
	}
}
