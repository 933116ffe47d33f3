package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"skolapp-quizsync/internal/domain"
)

// SummarySource reads the published quiz list from quiz_summaries.
type SummarySource struct {
	pool *pgxpool.Pool
}

func NewSummarySource(pool *pgxpool.Pool) *SummarySource {
	return &SummarySource{pool: pool}
}

func (s *SummarySource) ListSummaries(ctx context.Context) ([]domain.QuizSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, updated_at FROM quiz_summaries ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	out := []domain.QuizSummary{}
	for rows.Next() {
		var (
			summary   domain.QuizSummary
			updatedAt time.Time
		)
		if err := rows.Scan(&summary.ID, &summary.Title, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary.UpdatedAt = domain.FormatTimestamp(updatedAt)
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return out, nil
}

// Publish inserts or updates a summary row.
func (s *SummarySource) Publish(ctx context.Context, summary domain.QuizSummary) error {
	updatedAt, err := time.Parse(domain.TimestampLayout, summary.UpdatedAt)
	if err != nil {
		updatedAt, err = time.Parse(time.RFC3339, summary.UpdatedAt)
		if err != nil {
			return fmt.Errorf("publish %s: bad updatedAt %q", summary.ID, summary.UpdatedAt)
		}
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_summaries (id, title, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, updated_at=EXCLUDED.updated_at`,
		summary.ID, summary.Title, updatedAt)
	if err != nil {
		return fmt.Errorf("publish %s: %w", summary.ID, err)
	}
	return nil
}
