// Package alignment estimates how well a change strategy lines up a set of
// stakeholders behind an initiative.
package alignment

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/scoring"
	"gopkg.in/yaml.v3"
)

// Stance is a stakeholder's starting attitude toward the change.
type Stance string

const (
	StanceChampion  Stance = "champion"
	StanceSupporter Stance = "supporter"
	StanceNeutral   Stance = "neutral"
	StanceSkeptic   Stance = "skeptic"
	StanceResistant Stance = "resistant"
)

const (
	// DefaultEffectiveness applies to stances a strategy does not rate.
	DefaultEffectiveness = 50
	ActionBonus          = 10
	VisionBonus          = 10
	// VisionMinChars is the vision length that earns VisionBonus; the
	// statement must be strictly longer.
	VisionMinChars = 50
)

type Stakeholder struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Role      string   `yaml:"role" json:"role"`
	Stance    Stance   `yaml:"stance" json:"stance"`
	Influence int      `yaml:"influence" json:"influence"`
	Concerns  []string `yaml:"concerns" json:"concerns"`
	// Response is the stakeholder's reply once engaged.
	Response string `yaml:"response" json:"response"`
}

type Scenario struct {
	ID           string        `yaml:"id" json:"id"`
	Title        string        `yaml:"title" json:"title"`
	Context      string        `yaml:"context" json:"context"`
	Challenge    string        `yaml:"challenge" json:"challenge"`
	Goals        []string      `yaml:"goals" json:"goals"`
	Stakeholders []Stakeholder `yaml:"stakeholders" json:"stakeholders"`
}

type Strategy struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	Description   string         `yaml:"description" json:"description"`
	Approach      []string       `yaml:"approach" json:"approach"`
	Effectiveness map[Stance]int `yaml:"effectiveness" json:"effectiveness"`
}

// StakeholderResult is one stakeholder's contribution to the score.
type StakeholderResult struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Alignment int             `json:"alignment"`
	Engaged   bool            `json:"engaged"`
	Category  models.Category `json:"category"`
}

type Result struct {
	Score        int                 `json:"score"`
	Strategy     string              `json:"strategy"`
	VisionBonus  bool                `json:"vision_bonus"`
	Stakeholders []StakeholderResult `json:"stakeholders"`
}

// Calculate scores a strategy against a scenario. actions maps stakeholder
// ids to the action taken with them; any non-empty action counts.
//
//	score = min(100, round(Σ (effectiveness + action) × influence/100 / n + vision))
func Calculate(sc Scenario, st Strategy, actions map[string]string, vision string) Result {
	res := Result{Strategy: st.ID}
	if len(sc.Stakeholders) == 0 {
		return res
	}

	var total float64
	for _, sh := range sc.Stakeholders {
		eff, ok := st.Effectiveness[sh.Stance]
		if !ok {
			eff = DefaultEffectiveness
		}
		engaged := strings.TrimSpace(actions[sh.ID]) != ""
		if engaged {
			eff += ActionBonus
		}
		total += float64(eff) * float64(sh.Influence) / 100

		res.Stakeholders = append(res.Stakeholders, StakeholderResult{
			ID:        sh.ID,
			Name:      sh.Name,
			Alignment: eff,
			Engaged:   engaged,
			Category:  scoring.DefaultBands.Category(eff),
		})
	}

	raw := total / float64(len(sc.Stakeholders))
	if len(vision) > VisionMinChars {
		raw += VisionBonus
		res.VisionBonus = true
	}
	res.Score = criteria.Clamp(raw)
	return res
}

//go:embed scenarios.yaml
var catalogYAML []byte

type catalog struct {
	Scenarios  []Scenario `yaml:"scenarios"`
	Strategies []Strategy `yaml:"strategies"`
}

var loadCatalog = sync.OnceValues(func() (catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return c, fmt.Errorf("decoding alignment catalog: %w", err)
	}
	return c, nil
})

// Scenarios returns the built-in change scenarios.
func Scenarios() []Scenario {
	c, err := loadCatalog()
	if err != nil {
		panic(err)
	}
	return c.Scenarios
}

// Strategies returns the built-in change strategies.
func Strategies() []Strategy {
	c, err := loadCatalog()
	if err != nil {
		panic(err)
	}
	return c.Strategies
}

func FindScenario(id string) (Scenario, error) {
	for _, s := range Scenarios() {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown alignment scenario %q", id)
}

func FindStrategy(id string) (Strategy, error) {
	var ids []string
	for _, s := range Strategies() {
		if s.ID == id {
			return s, nil
		}
		ids = append(ids, s.ID)
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q (available: %s)", id, strings.Join(ids, ", "))
}

// EngageAll returns an action map engaging every stakeholder with their
// canned response.
func EngageAll(sc Scenario) map[string]string {
	actions := make(map[string]string, len(sc.Stakeholders))
	for _, sh := range sc.Stakeholders {
		resp := sh.Response
		if resp == "" {
			resp = "I'm ready to support this initiative."
		}
		actions[sh.ID] = resp
	}
	return actions
}
