package remote

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/logging"
	"skolapp-quizsync/internal/metrics"
)

// DefaultInterval is the refresh period of Run.
const DefaultInterval = 60 * time.Second

// State is what view-layer consumers observe.
type State struct {
	Quizzes    []domain.QuizSummary `json:"quizzes"`
	Loading    bool                 `json:"loading"`
	Error      string               `json:"error,omitempty"`
	LastSynced *time.Time           `json:"lastSynced,omitempty"`
	Offline    bool                 `json:"offline"`
}

func (s State) clone() State {
	out := s
	out.Quizzes = append([]domain.QuizSummary{}, s.Quizzes...)
	if s.LastSynced != nil {
		t := *s.LastSynced
		out.LastSynced = &t
	}
	return out
}

// Option customises a Loader.
type Option func(*Loader)

func WithInterval(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) { l.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// Loader keeps a read-only copy of the remote quiz list fresh. Every load
// that succeeds overwrites the cached snapshot; a failed load falls back to
// that snapshot and flags the state offline. The loader never writes to the
// network.
//
// Overlapping loads are not deduplicated. A load whose context is cancelled
// before it finishes is discarded without touching the state.
type Loader struct {
	fetcher  Fetcher
	docs     app.DocumentStore
	interval time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	state       State
	subscribers map[chan State]struct{}
}

func NewLoader(fetcher Fetcher, docs app.DocumentStore, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     fetcher,
		docs:        docs,
		interval:    DefaultInterval,
		now:         time.Now,
		log:         logging.Discard(),
		state:       State{Quizzes: []domain.QuizSummary{}, Loading: true},
		subscribers: make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run loads immediately and then on every interval tick until ctx is done.
func (l *Loader) Run(ctx context.Context) error {
	l.Refresh(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Refresh(ctx)
		}
	}
}

// Refresh performs one load and applies its outcome.
func (l *Loader) Refresh(ctx context.Context) {
	l.update(ctx, func(s *State) { s.Loading = true })

	started := l.now()
	data, err := l.fetcher.FetchQuizzes(ctx)
	if ctx.Err() != nil {
		return
	}
	elapsed := l.now().Sub(started).Seconds()

	if err == nil {
		synced := l.now()
		applied := l.update(ctx, func(s *State) {
			s.Quizzes = data
			s.Loading = false
			s.Error = ""
			s.Offline = false
			s.LastSynced = &synced
		})
		if !applied {
			return
		}
		l.metrics.RemoteLoad(metrics.OutcomeFresh, elapsed)
		if werr := WriteSnapshot(ctx, l.docs, Snapshot{Data: data, TS: synced.UnixMilli()}); werr != nil {
			l.metrics.PersistFailure(app.RemoteCacheKey)
			l.log.WithError(werr).Warn("could not cache remote quiz list")
		}
		return
	}

	l.log.WithError(err).Warn("remote quiz list fetch failed")
	snap, serr := ReadSnapshot(ctx, l.docs)
	if serr == nil {
		synced := snap.Time()
		if l.update(ctx, func(s *State) {
			s.Quizzes = snap.Data
			s.Loading = false
			s.Error = ""
			s.Offline = true
			s.LastSynced = &synced
		}) {
			l.metrics.RemoteLoad(metrics.OutcomeCached, elapsed)
			l.log.WithField("cachedAt", synced).Info("serving cached quiz list")
		}
		return
	}

	if l.update(ctx, func(s *State) {
		s.Loading = false
		s.Error = err.Error()
		s.Offline = true
	}) {
		l.metrics.RemoteLoad(metrics.OutcomeFailed, elapsed)
	}
}

// State returns a snapshot of the current state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.clone()
}

// Subscribe returns a channel that receives the current state and every
// change after it. Slow receivers only see the latest state. The caller must
// invoke the returned cancel function to avoid leaks.
func (l *Loader) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	ch <- l.state.clone()
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// update mutates the state unless ctx is already done, then notifies subscribers.
func (l *Loader) update(ctx context.Context, fn func(*State)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	fn(&l.state)
	l.broadcastLocked()
	return true
}

func (l *Loader) broadcastLocked() {
	for ch := range l.subscribers {
		snapshot := l.state.clone()
		select {
		case ch <- snapshot:
		default:
			// drop the stale state so the receiver sees the latest one
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
