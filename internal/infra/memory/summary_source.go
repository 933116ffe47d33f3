package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/domain"
)

// CachedSummarySource caches the published list with a TTL to avoid hitting
// the backing source on every /quizzes.json request.
type CachedSummarySource struct {
	source app.SummarySource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.QuizSummary
	expiresAt time.Time
}

func NewCachedSummarySource(source app.SummarySource, ttl time.Duration) *CachedSummarySource {
	return &CachedSummarySource{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedSummarySource) ListSummaries(ctx context.Context) ([]domain.QuizSummary, error) {
	if list, ok := c.fresh(c.clock()); ok {
		return list, nil
	}

	result, err, _ := c.sf.Do("summaries", func() (interface{}, error) {
		now := c.clock()
		if list, ok := c.fresh(now); ok {
			return list, nil
		}

		list, err := c.source.ListSummaries(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = list
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.QuizSummary(nil), result.([]domain.QuizSummary)...), nil
}

// Invalidate drops the cached list.
func (c *CachedSummarySource) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *CachedSummarySource) fresh(now time.Time) ([]domain.QuizSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached != nil && c.expiresAt.After(now) {
		return append([]domain.QuizSummary(nil), c.cached...), true
	}
	return nil, false
}

func (c *CachedSummarySource) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticSummarySource serves a fixed list (useful for tests/demos).
type StaticSummarySource struct {
	summaries []domain.QuizSummary
}

func NewStaticSummarySource(summaries []domain.QuizSummary) *StaticSummarySource {
	return &StaticSummarySource{summaries: summaries}
}

func (s *StaticSummarySource) ListSummaries(_ context.Context) ([]domain.QuizSummary, error) {
	return append([]domain.QuizSummary{}, s.summaries...), nil
}
