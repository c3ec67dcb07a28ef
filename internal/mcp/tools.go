package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lyra-ai/mentor/internal/abtest"
	"github.com/lyra-ai/mentor/internal/alignment"
	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/rubrics"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/segmentio/encoding/json"
)

// ScoreTextTool handles the score_text MCP tool.
type ScoreTextTool struct {
	resolve       func(ref string) (*rubrics.Rubric, error)
	defaultRubric string
	logger        *slog.Logger
}

func NewScoreTextTool(resolve func(string) (*rubrics.Rubric, error), defaultRubric string, logger *slog.Logger) *ScoreTextTool {
	return &ScoreTextTool{resolve: resolve, defaultRubric: defaultRubric, logger: logger}
}

func (t *ScoreTextTool) Definition() mcp.Tool {
	return mcp.NewTool("score_text",
		mcp.WithDescription("Score a draft against a rubric and return per-criterion scores, feedback and recommendations as JSON."),
		mcp.WithString("text",
			mcp.Description("The draft to score"),
		),
		mcp.WithString("rubric",
			mcp.Description("Built-in rubric name or path to a rubric file (default: "+t.defaultRubric+")"),
		),
		mcp.WithString("scenario",
			mcp.Description("Scenario id whose pass threshold overrides the rubric's"),
		),
		mcp.WithObject("fields",
			mcp.Description("Named selections for field-based rubrics, e.g. {\"version_a\": \"...\", \"sample_size\": \"1419\"}"),
		),
	)
}

func (t *ScoreTextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	fields := stringMap(req.GetArguments()["fields"])
	if strings.TrimSpace(text) == "" && len(fields) == 0 {
		return mcp.NewToolResultError("'text' or 'fields' is required"), nil
	}

	ref := req.GetString("rubric", t.defaultRubric)
	r, err := t.resolve(ref)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load rubric: %v", err)), nil
	}
	scorer, err := r.Scorer()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rubric: %v", err)), nil
	}

	if id := req.GetString("scenario", ""); id != "" {
		sc, ok := r.Scenario(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("rubric %s has no scenario %q", r.Name, id)), nil
		}
		scorer = scorer.WithThreshold(sc.Thresholds.Pass)
	}

	result := scorer.Score(&criteria.Input{Text: text, Fields: fields})
	t.logger.Debug("Scored text via MCP", "rubric", r.Name, "score", result.OverallScore, "passed", result.Passed)
	return jsonResult(result)
}

// ListRubricsTool handles the list_rubrics MCP tool.
type ListRubricsTool struct{}

func NewListRubricsTool() *ListRubricsTool { return &ListRubricsTool{} }

func (t *ListRubricsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_rubrics",
		mcp.WithDescription("List the built-in rubrics with their criteria and scenarios."),
	)
}

type rubricSummary struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Threshold int      `json:"threshold"`
	Criteria  []string `json:"criteria"`
	Scenarios []string `json:"scenarios"`
}

func (t *ListRubricsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []rubricSummary
	for _, name := range rubrics.Builtins() {
		r, err := rubrics.Builtin(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s := rubricSummary{Name: r.Name, Title: r.Title, Threshold: r.PassThreshold()}
		for _, c := range r.Criteria {
			s.Criteria = append(s.Criteria, c.ID)
		}
		for _, sc := range r.Scenarios {
			s.Scenarios = append(s.Scenarios, sc.ID)
		}
		out = append(out, s)
	}
	return jsonResult(out)
}

// SampleSizeTool handles the estimate_sample_size MCP tool.
type SampleSizeTool struct{}

func NewSampleSizeTool() *SampleSizeTool { return &SampleSizeTool{} }

func (t *SampleSizeTool) Definition() mcp.Tool {
	return mcp.NewTool("estimate_sample_size",
		mcp.WithDescription("Estimate recipients per variation for an email A/B test, clamped to 500-10000."),
		mcp.WithString("current",
			mcp.Required(),
			mcp.Description("Current performance with a leading percentage, e.g. '22% open rate'"),
		),
		mcp.WithNumber("lift",
			mcp.Description("Relative lift to detect (default 0.2)"),
		),
	)
}

func (t *SampleSizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rate, err := abtest.ParseRate(req.GetString("current", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lift := req.GetFloat("lift", abtest.DefaultLift)
	n := abtest.EstimateSampleSize(rate, lift)
	return mcp.NewToolResultText(fmt.Sprintf("%d recipients per variation (baseline %.1f%%, lift %.0f%%)", n, rate*100, lift*100)), nil
}

// AlignmentTool handles the stakeholder_alignment MCP tool.
type AlignmentTool struct{}

func NewAlignmentTool() *AlignmentTool { return &AlignmentTool{} }

func (t *AlignmentTool) Definition() mcp.Tool {
	return mcp.NewTool("stakeholder_alignment",
		mcp.WithDescription("Score how well a change strategy aligns stakeholders in a built-in scenario."),
		mcp.WithString("scenario",
			mcp.Required(),
			mcp.Description("Scenario id, e.g. ai-adoption"),
		),
		mcp.WithString("strategy",
			mcp.Required(),
			mcp.Description("Strategy id: inclusive, pilot or education"),
		),
		mcp.WithString("engaged",
			mcp.Description("Comma-separated stakeholder ids with a planned action (default: all)"),
		),
		mcp.WithString("vision",
			mcp.Description("Vision statement; more than 50 characters earns a bonus"),
		),
	)
}

func (t *AlignmentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sc, err := alignment.FindScenario(req.GetString("scenario", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := alignment.FindStrategy(req.GetString("strategy", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	engaged := alignment.EngageAll(sc)
	if ids := req.GetString("engaged", ""); ids != "" {
		all := engaged
		engaged = map[string]string{}
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if resp, ok := all[id]; ok {
				engaged[id] = resp
			}
		}
	}

	return jsonResult(alignment.Calculate(sc, st, engaged, req.GetString("vision", "")))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// stringMap converts a JSON object argument to string values.
func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		switch x := val.(type) {
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}
