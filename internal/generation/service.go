package generation

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lyra-ai/mentor/internal/cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts   = 3
	DefaultRetryBase     = time.Second
	DefaultRatePerMinute = 50
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheSize     = 100
)

// ServiceConfig tunes a Service. Zero values take the defaults above.
type ServiceConfig struct {
	// Model fills requests that don't name one.
	Model       string
	MaxAttempts int
	RetryBase   time.Duration
	// RatePerMinute below zero disables rate limiting.
	RatePerMinute int
	CacheTTL      time.Duration
	CacheSize     int
}

// Stats is a snapshot of a Service's counters.
type Stats struct {
	Requests    int       `json:"requests"`
	CacheHits   int       `json:"cache_hits"`
	Retries     int       `json:"retries"`
	Failures    int       `json:"failures"`
	CacheSize   int       `json:"cache_size"`
	Usage       Usage     `json:"usage"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitzero"`
}

// Service wraps a backend with a response cache, de-duplication of
// identical in-flight requests, retries with exponential backoff and a
// request rate limit. It is safe for concurrent use.
type Service struct {
	backend Generator
	cfg     ServiceConfig

	cache   *cache.TTL[Response]
	group   singleflight.Group
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	stats Stats
}

// NewService wraps backend.
func NewService(backend Generator, cfg ServiceConfig) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRetryBase
	}
	if cfg.RatePerMinute == 0 {
		cfg.RatePerMinute = DefaultRatePerMinute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}

	return &Service{
		backend: backend,
		cfg:     cfg,
		cache:   cache.NewTTL[Response](cfg.CacheTTL, cfg.CacheSize),
		limiter: limiter,
		sleep:   sleepContext,
	}
}

// Generate serves req from the cache when possible and otherwise calls the
// backend. Concurrent identical requests share one backend call, which runs
// detached from any single caller's cancellation; each caller stops waiting
// when its own ctx is done.
func (s *Service) Generate(ctx context.Context, req *Request) (*Response, error) {
	r := withDefaults(req, s.cfg.Model)
	key := cache.Key(r.Model, r.Prompt, r.Context, strconv.FormatFloat(*r.Temperature, 'f', -1, 64))

	s.mu.Lock()
	s.stats.Requests++
	s.mu.Unlock()

	if !r.NoCache {
		if cached, ok := s.cache.Get(key); ok {
			s.mu.Lock()
			s.stats.CacheHits++
			s.mu.Unlock()
			cached.Cached = true
			return &cached, nil
		}
	}

	// The first attempt's rate-limit token is taken against the caller's own
	// deadline; retries inside the shared call wait on the detached context.
	if err := s.wait(ctx); err != nil {
		s.recordFailure(err)
		return nil, err
	}

	flight := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		resp, err := s.generateWithRetry(flight, &r)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, *resp)
		s.mu.Lock()
		s.stats.Usage.PromptTokens += resp.Usage.PromptTokens
		s.stats.Usage.CompletionTokens += resp.Usage.CompletionTokens
		s.stats.Usage.TotalTokens += resp.Usage.TotalTokens
		s.mu.Unlock()
		return resp, nil
	})

	select {
	case <-ctx.Done():
		err := Classify(ctx.Err())
		s.recordFailure(err)
		return nil, err
	case res := <-ch:
		if res.Err != nil {
			s.recordFailure(res.Err)
			return nil, res.Err
		}
		out := *res.Val.(*Response)
		return &out, nil
	}
}

// wait takes one token from the rate limiter.
func (s *Service) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return Classify(ctx.Err())
		}
		return newError(CodeRateLimit, "local request budget exhausted", err)
	}
	return nil
}

func (s *Service) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Failures++
	s.stats.LastError = err.Error()
	s.stats.LastErrorAt = time.Now()
}

// generateWithRetry waits RetryBase, then twice that, and so on between
// attempts. A backend's RetryAfter hint is not honoured here since it can
// be as long as an hour.
func (s *Service) generateWithRetry(ctx context.Context, req *Request) (*Response, error) {
	var lastErr *GenerationError
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			s.mu.Lock()
			s.stats.Retries++
			s.mu.Unlock()
			if err := s.sleep(ctx, s.cfg.RetryBase<<(attempt-1)); err != nil {
				return nil, Classify(err)
			}
			if err := s.wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := s.backend.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = Classify(err)
		if !lastErr.Retryable || lastErr.Code == CodeCanceled {
			break
		}
	}
	return nil, lastErr
}

// Stats returns a snapshot of the counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.CacheSize = s.cache.Len()
	return st
}

// ClearCache drops every cached response.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
