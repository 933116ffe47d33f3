package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/logging"
	"skolapp-quizsync/internal/metrics"
)

// Option customises a store.
type Option func(*storeConfig)

type storeConfig struct {
	now     func() time.Time
	newID   func() string
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	failure FailureSimulator
}

func newStoreConfig(opts []Option) storeConfig {
	cfg := storeConfig{
		now:   time.Now,
		newID: uuid.NewString,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) { c.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *storeConfig) { c.newID = newID }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *storeConfig) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *storeConfig) { c.metrics = m }
}

// WithFailureSimulator injects a persistence failure point.
func WithFailureSimulator(f FailureSimulator) Option {
	return func(c *storeConfig) { c.failure = f }
}

func (c storeConfig) timestamp() string {
	return domain.FormatTimestamp(c.now())
}
