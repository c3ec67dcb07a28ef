package generation

import "context"

// StaticGenerator answers every request with canned text and is the offline
// default. An empty Text makes [GenerateOr] use the caller's fallback, so a
// zero StaticGenerator means "always fall back".
type StaticGenerator struct {
	Text string
}

func (s StaticGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(err)
	}
	return &Response{Content: s.Text, Model: "static"}, nil
}
