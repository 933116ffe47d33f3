package app

import (
	"context"

	"skolapp-quizsync/internal/domain"
)

// SummarySource loads the authoritative published quiz list served at /quizzes.json.
type SummarySource interface {
	ListSummaries(ctx context.Context) ([]domain.QuizSummary, error)
}
