package domain

// QuestionType selects which of Options or CorrectAnswer is meaningful.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true-false"
	QuestionShortText QuestionType = "short-text"
)

// AnswerOption is one selectable answer of an mcq or true-false question.
type AnswerOption struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// LocalQuestion is a question authored on this device.
type LocalQuestion struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	Type          QuestionType   `json:"type"`
	TimeLimit     *int           `json:"timeLimit,omitempty"` // seconds
	Options       []AnswerOption `json:"options,omitempty"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
}

// AIMetadata records where an AI draft came from.
type AIMetadata struct {
	Topic       string   `json:"topic"`
	Sources     []string `json:"sources"`
	GeneratedAt string   `json:"generatedAt"`
}

// LocalQuiz is a quiz stored only on the current device.
type LocalQuiz struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Questions   []LocalQuestion `json:"questions"`
	CreatedAt   string          `json:"createdAt"`
	Local       bool            `json:"local"`
	IsAIDraft   bool            `json:"isAIDraft,omitempty"`
	AIMetadata  *AIMetadata     `json:"aiMetadata,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (q LocalQuiz) Clone() LocalQuiz {
	out := q
	out.Questions = CloneQuestions(q.Questions)
	if q.AIMetadata != nil {
		meta := *q.AIMetadata
		meta.Sources = append([]string(nil), q.AIMetadata.Sources...)
		out.AIMetadata = &meta
	}
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(questions []LocalQuestion) []LocalQuestion {
	if questions == nil {
		return nil
	}
	out := make([]LocalQuestion, len(questions))
	for i, q := range questions {
		out[i] = q
		if q.TimeLimit != nil {
			limit := *q.TimeLimit
			out[i].TimeLimit = &limit
		}
		if q.Options != nil {
			out[i].Options = append([]AnswerOption(nil), q.Options...)
		}
	}
	return out
}

// AIGeneratedQuestion is a question as produced by the draft generator.
type AIGeneratedQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
	Source        string   `json:"source,omitempty"`
}

// AIDraft is the generator's output contract.
type AIDraft struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Topic       string                `json:"topic"`
	Questions   []AIGeneratedQuestion `json:"questions"`
	GeneratedAt string                `json:"generatedAt"`
	Sources     []string              `json:"sources"`
}

// SharedQuizComment is a community comment on a shared quiz.
type SharedQuizComment struct {
	ID         string `json:"id"`
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
	CreatedAt  string `json:"createdAt"`
}

// SharedQuizRating is one user's star rating, 1-5.
type SharedQuizRating struct {
	UserID    string `json:"userId"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"createdAt"`
}

// SharedQuiz is a published copy of a local quiz with social metadata.
// AverageRating, TotalRatings and QuestionCount are computed on write.
type SharedQuiz struct {
	ID             string              `json:"id"`
	OriginalQuizID string              `json:"originalQuizId"`
	Title          string              `json:"title"`
	AuthorName     string              `json:"authorName"`
	PublishedAt    string              `json:"publishedAt"`
	Tags           []string            `json:"tags"`
	Comments       []SharedQuizComment `json:"comments"`
	Ratings        []SharedQuizRating  `json:"ratings"`
	AverageRating  float64             `json:"averageRating"`
	TotalRatings   int                 `json:"totalRatings"`
	IsReported     bool                `json:"isReported"`
	QuestionCount  int                 `json:"questionCount"`
}

// Clone returns a deep copy of the shared quiz.
func (q SharedQuiz) Clone() SharedQuiz {
	out := q
	out.Tags = append([]string{}, q.Tags...)
	out.Comments = append([]SharedQuizComment{}, q.Comments...)
	out.Ratings = append([]SharedQuizRating{}, q.Ratings...)
	return out
}

// QuizSummary is the remote catalog projection.
type QuizSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updatedAt"`
}

// MergedEntry is one row of the combined local + remote display list.
type MergedEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updatedAt"`
	Local     bool   `json:"_local,omitempty"`
	AIDraft   bool   `json:"_aiDraft,omitempty"`
}
