package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"skolapp-quizsync/internal/domain"
)

// AIDraftTitlePrefix is prepended by the draft generator and stripped on accept.
const AIDraftTitlePrefix = "AI-draft:"

// Display markers appended to local titles in the merged list.
const (
	LocalMarker   = " (local)"
	AIDraftMarker = " (AI draft)"
)

// LocalQuizStore is the device-local ledger of authored quizzes. The whole
// list is written to LocalQuizzesKey after every mutation. A failed write is
// reported but never rolled back: the in-memory list stays ahead of storage
// for the rest of the session.
//
// LocalQuizStore is not safe for concurrent use; callers serialize access.
type LocalQuizStore struct {
	docs    DocumentStore
	cfg     storeConfig
	quizzes []domain.LocalQuiz
}

// NewLocalQuizStore hydrates the store from docs. Unreadable or corrupt
// documents start the store empty.
func NewLocalQuizStore(ctx context.Context, docs DocumentStore, opts ...Option) *LocalQuizStore {
	s := &LocalQuizStore{docs: docs, cfg: newStoreConfig(opts)}
	s.quizzes = loadList[domain.LocalQuiz](ctx, docs, LocalQuizzesKey, s.cfg)
	return s
}

// Quizzes returns a copy of the list, newest first.
func (s *LocalQuizStore) Quizzes() []domain.LocalQuiz {
	out := make([]domain.LocalQuiz, len(s.quizzes))
	for i, q := range s.quizzes {
		out[i] = q.Clone()
	}
	return out
}

// CreateQuiz validates and stores a new quiz. A *ValidationError means nothing
// was stored. An error wrapping domain.ErrLocalSave means the quiz was kept in
// memory (and is returned) but could not be persisted.
func (s *LocalQuizStore) CreateQuiz(ctx context.Context, title string, questions []domain.LocalQuestion, description string) (domain.LocalQuiz, error) {
	if msgs := Validate(title, questions); len(msgs) > 0 {
		return domain.LocalQuiz{}, &ValidationError{Messages: msgs}
	}

	quiz := domain.LocalQuiz{
		ID:          s.cfg.newID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Questions:   s.assignIDs(domain.CloneQuestions(questions)),
		CreatedAt:   s.cfg.timestamp(),
		Local:       true,
	}
	next := append([]domain.LocalQuiz{quiz}, s.quizzes...)
	return quiz.Clone(), s.commit(ctx, next)
}

// AddAIDraft stores a generator draft as-is, keeping its id and generation time.
// Re-adding a draft with a known id replaces the earlier record in place.
func (s *LocalQuizStore) AddAIDraft(ctx context.Context, draft domain.AIDraft) (domain.LocalQuiz, error) {
	quiz := domain.LocalQuiz{
		ID:        draft.ID,
		Title:     draft.Title,
		Questions: s.draftQuestions(draft),
		CreatedAt: draft.GeneratedAt,
		Local:     true,
		IsAIDraft: true,
		AIMetadata: &domain.AIMetadata{
			Topic:       draft.Topic,
			Sources:     append([]string{}, draft.Sources...),
			GeneratedAt: draft.GeneratedAt,
		},
	}

	next := s.copyList()
	if idx := s.indexOf(draft.ID); idx >= 0 {
		next[idx] = quiz
	} else {
		next = append([]domain.LocalQuiz{quiz}, next...)
	}
	return quiz.Clone(), s.commit(ctx, next)
}

// AcceptAIDraft turns a draft into a normal quiz. The draft record is replaced
// at its position by a record with a fresh id and creation time; if the draft
// was never stored the accepted quiz is prepended.
func (s *LocalQuizStore) AcceptAIDraft(ctx context.Context, draft domain.AIDraft) (domain.LocalQuiz, error) {
	quiz := domain.LocalQuiz{
		ID:        s.cfg.newID(),
		Title:     strings.TrimSpace(strings.TrimPrefix(draft.Title, AIDraftTitlePrefix)),
		Questions: s.draftQuestions(draft),
		CreatedAt: s.cfg.timestamp(),
		Local:     true,
	}

	next := s.copyList()
	if idx := s.indexOf(draft.ID); idx >= 0 {
		next[idx] = quiz
	} else {
		next = append([]domain.LocalQuiz{quiz}, next...)
	}
	return quiz.Clone(), s.commit(ctx, next)
}

// DiscardAIDraft removes the record with draftID. Removal sticks in memory
// even when the write fails. Unknown ids are a no-op.
func (s *LocalQuizStore) DiscardAIDraft(ctx context.Context, draftID string) error {
	idx := s.indexOf(draftID)
	if idx < 0 {
		return nil
	}
	next := make([]domain.LocalQuiz, 0, len(s.quizzes)-1)
	next = append(next, s.quizzes[:idx]...)
	next = append(next, s.quizzes[idx+1:]...)
	return s.commit(ctx, next)
}

// Draft rebuilds the generator draft stored under id, so a draft can be
// accepted in a later session. ok is false when id is not an AI draft.
func (s *LocalQuizStore) Draft(id string) (draft domain.AIDraft, ok bool) {
	idx := s.indexOf(id)
	if idx < 0 || !s.quizzes[idx].IsAIDraft {
		return domain.AIDraft{}, false
	}
	q := s.quizzes[idx]
	draft = domain.AIDraft{ID: q.ID, Title: q.Title, GeneratedAt: q.CreatedAt, Sources: []string{}}
	if q.AIMetadata != nil {
		draft.Topic = q.AIMetadata.Topic
		draft.Sources = append(draft.Sources, q.AIMetadata.Sources...)
	}
	for _, lq := range q.Questions {
		g := domain.AIGeneratedQuestion{ID: lq.ID, Text: lq.Text, CorrectAnswer: lq.CorrectAnswer}
		for _, opt := range lq.Options {
			g.Options = append(g.Options, opt.Text)
			if opt.IsCorrect {
				g.CorrectAnswer = opt.Text
			}
		}
		draft.Questions = append(draft.Questions, g)
	}
	return draft, true
}

// Merged combines the local list with remote summaries for display.
func (s *LocalQuizStore) Merged(remote []domain.QuizSummary) []domain.MergedEntry {
	return MergeSummaries(s.quizzes, remote)
}

// MergeSummaries projects local quizzes to display rows, appends the remote
// rows and sorts newest first by updatedAt string. Neither input is modified.
func MergeSummaries(local []domain.LocalQuiz, remote []domain.QuizSummary) []domain.MergedEntry {
	out := make([]domain.MergedEntry, 0, len(local)+len(remote))
	for _, q := range local {
		marker := LocalMarker
		if q.IsAIDraft {
			marker = AIDraftMarker
		}
		out = append(out, domain.MergedEntry{
			ID:        q.ID,
			Title:     q.Title + marker,
			UpdatedAt: q.CreatedAt,
			Local:     true,
			AIDraft:   q.IsAIDraft,
		})
	}
	for _, r := range remote {
		out = append(out, domain.MergedEntry{ID: r.ID, Title: r.Title, UpdatedAt: r.UpdatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out
}

func (s *LocalQuizStore) commit(ctx context.Context, next []domain.LocalQuiz) error {
	s.quizzes = next
	if err := persistList(ctx, s.docs, LocalQuizzesKey, next, s.cfg); err != nil {
		s.cfg.metrics.PersistFailure(LocalQuizzesKey)
		s.cfg.log.WithError(err).WithField("key", LocalQuizzesKey).Warn("local quizzes kept in memory only")
		return fmt.Errorf("%w: %w", domain.ErrLocalSave, err)
	}
	return nil
}

func (s *LocalQuizStore) indexOf(id string) int {
	for i := range s.quizzes {
		if s.quizzes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *LocalQuizStore) copyList() []domain.LocalQuiz {
	return append([]domain.LocalQuiz(nil), s.quizzes...)
}

func (s *LocalQuizStore) assignIDs(questions []domain.LocalQuestion) []domain.LocalQuestion {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = s.cfg.newID()
		}
		for j := range questions[i].Options {
			if questions[i].Options[j].ID == "" {
				questions[i].Options[j].ID = s.cfg.newID()
			}
		}
	}
	return questions
}

// draftQuestions converts generated questions to mcq questions whose correct
// option is the one matching the generated answer. Questions without options
// become short-text questions.
func (s *LocalQuizStore) draftQuestions(draft domain.AIDraft) []domain.LocalQuestion {
	out := make([]domain.LocalQuestion, 0, len(draft.Questions))
	for _, g := range draft.Questions {
		id := g.ID
		if id == "" {
			id = s.cfg.newID()
		}
		if len(g.Options) == 0 {
			out = append(out, domain.LocalQuestion{
				ID:            id,
				Text:          g.Text,
				Type:          domain.QuestionShortText,
				CorrectAnswer: g.CorrectAnswer,
			})
			continue
		}
		q := domain.LocalQuestion{ID: id, Text: g.Text, Type: domain.QuestionMCQ}
		marked := false
		for _, opt := range g.Options {
			correct := !marked && opt == g.CorrectAnswer
			marked = marked || correct
			q.Options = append(q.Options, domain.AnswerOption{ID: s.cfg.newID(), Text: opt, IsCorrect: correct})
		}
		out = append(out, q)
	}
	return out
}

// loadList reads a JSON array document; any failure yields an empty list.
func loadList[T any](ctx context.Context, docs DocumentStore, key string, cfg storeConfig) []T {
	raw, err := docs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			cfg.log.WithError(err).WithField("key", key).Warn("could not read stored list, starting empty")
		}
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		cfg.log.WithField("key", key).Warn("stored list is not a JSON array, starting empty")
		return []T{}
	}
	return list
}

func persistList[T any](ctx context.Context, docs DocumentStore, key string, list []T, cfg storeConfig) error {
	if cfg.failure != nil {
		if err := cfg.failure.Fail(key); err != nil {
			return err
		}
	}
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return docs.Set(ctx, key, data)
}
