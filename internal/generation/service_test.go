package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingBackend answers with resp after failing with each of errs in turn.
type countingBackend struct {
	calls atomic.Int32
	errs  []error
	resp  Response
	block chan struct{}
}

func (b *countingBackend) Generate(ctx context.Context, req *Request) (*Response, error) {
	n := int(b.calls.Add(1))
	if b.block != nil {
		<-b.block
	}
	if n <= len(b.errs) {
		return nil, b.errs[n-1]
	}
	resp := b.resp
	resp.Content = resp.Content + " " + req.Prompt
	return &resp, nil
}

func newTestService(b Generator, cfg ServiceConfig) (*Service, *[]time.Duration) {
	s := NewService(b, cfg)
	var slept []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return s, &slept
}

func TestServiceCachesResponses(t *testing.T) {
	b := &countingBackend{resp: Response{Content: "tip:", Usage: Usage{TotalTokens: 10}}}
	s, _ := newTestService(b, ServiceConfig{})

	first, err := s.Generate(context.Background(), &Request{Prompt: "a"})
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := s.Generate(context.Background(), &Request{Prompt: "a"})
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Content, second.Content)
	require.EqualValues(t, 1, b.calls.Load())

	// Different temperature is a different cache entry.
	temp := 0.1
	_, err = s.Generate(context.Background(), &Request{Prompt: "a", Temperature: &temp})
	require.NoError(t, err)
	require.EqualValues(t, 2, b.calls.Load())

	_, err = s.Generate(context.Background(), &Request{Prompt: "a", NoCache: true})
	require.NoError(t, err)
	require.EqualValues(t, 3, b.calls.Load())

	st := s.Stats()
	require.Equal(t, 4, st.Requests)
	require.Equal(t, 1, st.CacheHits)
	require.Equal(t, 30, st.Usage.TotalTokens)
	require.Equal(t, 2, st.CacheSize)

	s.ClearCache()
	require.Equal(t, 0, s.Stats().CacheSize)
}

func TestServiceRetriesWithBackoff(t *testing.T) {
	b := &countingBackend{
		errs: []error{errors.New("upstream internal error"), errors.New("network is unreachable")},
		resp: Response{Content: "ok"},
	}
	s, slept := newTestService(b, ServiceConfig{})

	resp, err := s.Generate(context.Background(), &Request{Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "ok p", resp.Content)
	require.EqualValues(t, 3, b.calls.Load())
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	require.Equal(t, 2, s.Stats().Retries)
}

func TestServiceGivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("upstream internal error")
	b := &countingBackend{errs: []error{boom, boom, boom, boom}}
	s, _ := newTestService(b, ServiceConfig{RetryBase: time.Millisecond})

	_, err := s.Generate(context.Background(), &Request{Prompt: "p"})
	require.ErrorIs(t, err, boom)
	require.EqualValues(t, DefaultMaxAttempts, b.calls.Load())

	st := s.Stats()
	require.Equal(t, 1, st.Failures)
	require.Contains(t, st.LastError, "upstream internal error")
	require.False(t, st.LastErrorAt.IsZero())
}

func TestServiceNonRetryableShortCircuits(t *testing.T) {
	for _, err := range []error{
		errors.New("invalid_api_key"),
		errors.New("invalid request: max_tokens"),
		context.Canceled,
	} {
		t.Run(err.Error(), func(t *testing.T) {
			b := &countingBackend{errs: []error{err, err, err}}
			s, slept := newTestService(b, ServiceConfig{})

			_, got := s.Generate(context.Background(), &Request{Prompt: "p"})
			require.ErrorIs(t, got, err)
			require.EqualValues(t, 1, b.calls.Load())
			require.Empty(t, *slept)
		})
	}
}

func TestServiceDeduplicatesInFlight(t *testing.T) {
	b := &countingBackend{resp: Response{Content: "shared"}, block: make(chan struct{})}
	s := NewService(b, ServiceConfig{})

	const callers = 5
	var (
		wg      sync.WaitGroup
		results = make([]string, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.Generate(context.Background(), &Request{Prompt: "same"})
			if err == nil {
				results[i] = resp.Content
			}
		}()
	}

	require.Eventually(t, func() bool { return b.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(b.block)
	wg.Wait()

	require.LessOrEqual(t, b.calls.Load(), int32(2))
	for _, r := range results {
		require.Equal(t, "shared same", r)
	}
}

func TestServiceCanceledCallerDoesNotCancelSharedCall(t *testing.T) {
	b := &countingBackend{resp: Response{Content: "shared"}, block: make(chan struct{})}
	s := NewService(b, ServiceConfig{})

	quitter, cancel := context.WithCancel(context.Background())
	quitErr := make(chan error, 1)
	go func() {
		_, err := s.Generate(quitter, &Request{Prompt: "same"})
		quitErr <- err
	}()
	require.Eventually(t, func() bool { return b.calls.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		resp *Response
		err  error
	}
	stayed := make(chan outcome, 1)
	go func() {
		resp, err := s.Generate(context.Background(), &Request{Prompt: "same"})
		stayed <- outcome{resp, err}
	}()
	// Let the second caller join the in-flight call.
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-quitErr:
		var ge *GenerationError
		require.ErrorAs(t, err, &ge)
		require.Equal(t, CodeCanceled, ge.Code)
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting for the shared call")
	}

	close(b.block)
	got := <-stayed
	require.NoError(t, got.err)
	require.Equal(t, "shared same", got.resp.Content)
	require.LessOrEqual(t, b.calls.Load(), int32(2))
	require.Equal(t, 1, s.Stats().Failures)

	// The shared result was cached even though its first caller left.
	resp, err := s.Generate(context.Background(), &Request{Prompt: "same"})
	require.NoError(t, err)
	require.True(t, resp.Cached)
}

func TestServiceRateLimit(t *testing.T) {
	b := &countingBackend{resp: Response{Content: "ok"}}
	s := NewService(b, ServiceConfig{RatePerMinute: 2})

	for range 2 {
		_, err := s.Generate(context.Background(), &Request{Prompt: "p", NoCache: true})
		require.NoError(t, err)
	}

	// The budget is spent and the next token is 30s away.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.Generate(ctx, &Request{Prompt: "p", NoCache: true})
	require.Equal(t, CodeRateLimit, Classify(err).Code)
	require.EqualValues(t, 2, b.calls.Load())
}

func TestServiceDefaults(t *testing.T) {
	s := NewService(StaticGenerator{}, ServiceConfig{})
	require.Equal(t, DefaultMaxAttempts, s.cfg.MaxAttempts)
	require.Equal(t, DefaultCacheTTL, s.cfg.CacheTTL)
	require.Equal(t, DefaultCacheSize, s.cfg.CacheSize)
	require.Equal(t, DefaultRatePerMinute, s.cfg.RatePerMinute)

	unlimited := NewService(StaticGenerator{}, ServiceConfig{RatePerMinute: -1})
	for range 100 {
		require.NoError(t, unlimited.limiter.Wait(context.Background()))
	}
}
