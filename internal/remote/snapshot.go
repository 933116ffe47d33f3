package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/domain"
)

// Snapshot is the last good remote list, stored under app.RemoteCacheKey.
type Snapshot struct {
	Data []domain.QuizSummary `json:"data"`
	TS   int64                `json:"ts"` // epoch millis
}

// Time returns the moment the snapshot was taken.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.TS)
}

// ReadSnapshot loads the cached snapshot. It returns domain.ErrDocumentNotFound
// when no load has ever succeeded.
func ReadSnapshot(ctx context.Context, docs app.DocumentStore) (Snapshot, error) {
	raw, err := docs.Get(ctx, app.RemoteCacheKey)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode cached quiz list: %w", err)
	}
	if snap.Data == nil {
		snap.Data = []domain.QuizSummary{}
	}
	return snap, nil
}

// WriteSnapshot overwrites the cached snapshot.
func WriteSnapshot(ctx context.Context, docs app.DocumentStore, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cached quiz list: %w", err)
	}
	return docs.Set(ctx, app.RemoteCacheKey, data)
}
