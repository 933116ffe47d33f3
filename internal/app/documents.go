package app

import (
	"context"
	"sync/atomic"

	"skolapp-quizsync/internal/domain"
)

// Durable storage keys; each holds one JSON document. No store touches another store's key.
const (
	LocalQuizzesKey  = "quizzes-local"
	SharedQuizzesKey = "shared-quizzes"
	RemoteCacheKey   = "quizzes-cache"
)

// DocumentStore abstracts durable key/value storage of whole JSON documents
// (memory, file, Redis, Postgres). Get returns domain.ErrDocumentNotFound for unknown keys.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// FailureSimulator lets tests force persistence failures deterministically.
// A non-nil error from Fail aborts the write before it reaches the DocumentStore.
type FailureSimulator interface {
	Fail(key string) error
}

// QuotaSwitch is a FailureSimulator that fails every write with
// domain.ErrQuotaExceeded while enabled.
type QuotaSwitch struct {
	on atomic.Bool
}

// Set toggles the forced quota error.
func (s *QuotaSwitch) Set(on bool) {
	s.on.Store(on)
}

func (s *QuotaSwitch) Fail(string) error {
	if s.on.Load() {
		return domain.ErrQuotaExceeded
	}
	return nil
}
