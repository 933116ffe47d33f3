package app

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"skolapp-quizsync/internal/domain"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SharedQuizStore is the device-local ledger of published quizzes with their
// comments, ratings and report flag. It is persisted under SharedQuizzesKey.
// Write failures are logged and otherwise swallowed; unlike LocalQuizStore no
// persistence error ever reaches the caller.
//
// SharedQuizStore is not safe for concurrent use; callers serialize access.
type SharedQuizStore struct {
	docs    DocumentStore
	cfg     storeConfig
	quizzes []domain.SharedQuiz
}

// NewSharedQuizStore hydrates the store from docs.
func NewSharedQuizStore(ctx context.Context, docs DocumentStore, opts ...Option) *SharedQuizStore {
	s := &SharedQuizStore{docs: docs, cfg: newStoreConfig(opts)}
	s.quizzes = loadList[domain.SharedQuiz](ctx, docs, SharedQuizzesKey, s.cfg)
	return s
}

// Quizzes returns a copy of the list, newest first.
func (s *SharedQuizStore) Quizzes() []domain.SharedQuiz {
	return cloneShared(s.quizzes)
}

// ShareQuiz publishes a snapshot of source. The question count is not kept in
// sync with later edits of the source quiz.
func (s *SharedQuizStore) ShareQuiz(ctx context.Context, source domain.LocalQuiz, authorName string, tags []string) domain.SharedQuiz {
	shared := domain.SharedQuiz{
		ID:             s.cfg.newID(),
		OriginalQuizID: source.ID,
		Title:          source.Title,
		AuthorName:     authorName,
		PublishedAt:    s.cfg.timestamp(),
		Tags:           append([]string{}, tags...),
		Comments:       []domain.SharedQuizComment{},
		Ratings:        []domain.SharedQuizRating{},
		QuestionCount:  len(source.Questions),
	}
	s.quizzes = append([]domain.SharedQuiz{shared}, s.quizzes...)
	s.persist(ctx)
	return shared.Clone()
}

// AddComment prepends a comment with trimmed text.
func (s *SharedQuizStore) AddComment(ctx context.Context, quizID, authorName, text string) (domain.SharedQuiz, error) {
	comment := domain.SharedQuizComment{
		ID:         s.cfg.newID(),
		AuthorName: authorName,
		Text:       strings.TrimSpace(text),
		CreatedAt:  s.cfg.timestamp(),
	}
	return s.update(ctx, quizID, func(q *domain.SharedQuiz) bool {
		q.Comments = append([]domain.SharedQuizComment{comment}, q.Comments...)
		return true
	})
}

// AddRating records userID's rating, clamped to [1,5]. A user's earlier rating
// is replaced. Average and total are recomputed from the full rating set.
func (s *SharedQuizStore) AddRating(ctx context.Context, quizID, userID string, rating int) (domain.SharedQuiz, error) {
	entry := domain.SharedQuizRating{
		UserID:    userID,
		Rating:    clampRating(rating),
		CreatedAt: s.cfg.timestamp(),
	}
	return s.update(ctx, quizID, func(q *domain.SharedQuiz) bool {
		ratings := make([]domain.SharedQuizRating, 0, len(q.Ratings)+1)
		for _, r := range q.Ratings {
			if r.UserID != userID {
				ratings = append(ratings, r)
			}
		}
		q.Ratings = append(ratings, entry)
		q.AverageRating = averageRating(q.Ratings)
		q.TotalRatings = len(q.Ratings)
		return true
	})
}

// ReportQuiz flags a quiz for moderation. Reporting twice changes nothing.
func (s *SharedQuizStore) ReportQuiz(ctx context.Context, quizID string) (domain.SharedQuiz, error) {
	return s.update(ctx, quizID, func(q *domain.SharedQuiz) bool {
		if q.IsReported {
			return false
		}
		q.IsReported = true
		return true
	})
}

// SearchQuizzes matches query case-insensitively against title, author and tags.
// A blank query returns everything.
func (s *SharedQuizStore) SearchQuizzes(query string) []domain.SharedQuiz {
	if strings.TrimSpace(query) == "" {
		return s.Quizzes()
	}
	needle := strings.ToLower(query)
	out := []domain.SharedQuiz{}
	for _, q := range s.quizzes {
		if strings.Contains(strings.ToLower(q.Title), needle) ||
			strings.Contains(strings.ToLower(q.AuthorName), needle) ||
			anyTagContains(q.Tags, needle) {
			out = append(out, q.Clone())
		}
	}
	return out
}

// FilterByTags returns quizzes carrying at least one of tags. No tags returns everything.
func (s *SharedQuizStore) FilterByTags(tags []string) []domain.SharedQuiz {
	if len(tags) == 0 {
		return s.Quizzes()
	}
	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}
	out := []domain.SharedQuiz{}
	for _, q := range s.quizzes {
		for _, t := range q.Tags {
			if _, ok := wanted[t]; ok {
				out = append(out, q.Clone())
				break
			}
		}
	}
	return out
}

// update applies fn to the quiz with id. fn reports whether it changed anything;
// unchanged quizzes are not written again.
func (s *SharedQuizStore) update(ctx context.Context, id string, fn func(*domain.SharedQuiz) bool) (domain.SharedQuiz, error) {
	for i := range s.quizzes {
		if s.quizzes[i].ID != id {
			continue
		}
		q := s.quizzes[i].Clone()
		if fn(&q) {
			next := append([]domain.SharedQuiz(nil), s.quizzes...)
			next[i] = q
			s.quizzes = next
			s.persist(ctx)
		}
		return q.Clone(), nil
	}
	return domain.SharedQuiz{}, domain.ErrSharedQuizNotFound
}

func (s *SharedQuizStore) persist(ctx context.Context) {
	if err := persistList(ctx, s.docs, SharedQuizzesKey, s.quizzes, s.cfg); err != nil {
		s.cfg.metrics.PersistFailure(SharedQuizzesKey)
		s.cfg.log.WithError(err).WithField("key", SharedQuizzesKey).Warn("shared quizzes not persisted")
	}
}

func clampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// averageRating is the arithmetic mean rounded half-up to one decimal, 0 when empty.
func averageRating(ratings []domain.SharedQuizRating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1).Float64()
	return avg
}

func anyTagContains(tags []string, needle string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func cloneShared(list []domain.SharedQuiz) []domain.SharedQuiz {
	out := make([]domain.SharedQuiz, len(list))
	for i, q := range list {
		out[i] = q.Clone()
	}
	return out
}
