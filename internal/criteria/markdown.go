package criteria

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownStructureArgs rewards block-level structure found by parsing the
// draft as Markdown: every list and heading, and every paragraph after the
// first, earns PointsPerBlock on top of Baseline.
type MarkdownStructureArgs struct {
	Baseline       float64 `mapstructure:"baseline"`
	PointsPerBlock float64 `mapstructure:"points_per_block"`
}

type markdownStructureCriterion struct {
	base
	baseline       float64
	pointsPerBlock float64
}

func newMarkdownStructure(b base, args MarkdownStructureArgs) Criterion {
	return &markdownStructureCriterion{base: b, baseline: args.Baseline, pointsPerBlock: args.PointsPerBlock}
}

func (c *markdownStructureCriterion) Kind() Kind { return KindMarkdownStructure }

func (c *markdownStructureCriterion) Evaluate(in *Input) Evaluation {
	var src string
	if in != nil {
		src = in.Text
	}
	blocks := CountBlocks(src)

	extra := blocks.Lists + blocks.Headings
	if blocks.Paragraphs > 1 {
		extra += blocks.Paragraphs - 1
	}
	return c.verdict(c.baseline + c.pointsPerBlock*float64(extra))
}

// Blocks counts Markdown block elements.
type Blocks struct {
	Lists      int
	Headings   int
	Paragraphs int
}

// CountBlocks parses source as Markdown and tallies its block elements.
func CountBlocks(source string) Blocks {
	var b Blocks
	if source == "" {
		return b
	}

	md := goldmark.New()
	reader := text.NewReader([]byte(source))
	doc := md.Parser().Parse(reader)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.List:
			b.Lists++
		case *ast.Heading:
			b.Headings++
		case *ast.Paragraph:
			b.Paragraphs++
		}
		return ast.WalkContinue, nil
	})
	return b
}
