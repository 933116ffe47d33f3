package domain

import "github.com/google/uuid"

// Labels used for the two options of a true-false question.
const (
	TrueLabel  = "Sant"
	FalseLabel = "Falskt"
)

// DefaultTimeLimit is applied to newly authored questions, in seconds.
const DefaultTimeLimit = 30

// NewMCQQuestion returns a multiple-choice question with the given option texts.
// The option at correct is marked correct; an out-of-range index leaves the first option correct.
func NewMCQQuestion(text string, options []string, correct int) LocalQuestion {
	q := LocalQuestion{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      QuestionMCQ,
		TimeLimit: intPtr(DefaultTimeLimit),
		Options:   make([]AnswerOption, 0, len(options)),
	}
	for _, opt := range options {
		q.Options = append(q.Options, AnswerOption{ID: uuid.NewString(), Text: opt})
	}
	if err := SetCorrectOption(&q, correct); err != nil && len(q.Options) > 0 {
		q.Options[0].IsCorrect = true
	}
	return q
}

// NewTrueFalseQuestion returns a question with Sant/Falskt options.
func NewTrueFalseQuestion(text string, answer bool) LocalQuestion {
	q := LocalQuestion{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      QuestionTrueFalse,
		TimeLimit: intPtr(DefaultTimeLimit),
		Options: []AnswerOption{
			{ID: uuid.NewString(), Text: TrueLabel, IsCorrect: answer},
			{ID: uuid.NewString(), Text: FalseLabel, IsCorrect: !answer},
		},
	}
	return q
}

// NewShortTextQuestion returns a free-text question.
func NewShortTextQuestion(text, correctAnswer string) LocalQuestion {
	return LocalQuestion{
		ID:            uuid.NewString(),
		Text:          text,
		Type:          QuestionShortText,
		TimeLimit:     intPtr(DefaultTimeLimit),
		CorrectAnswer: correctAnswer,
	}
}

// SetCorrectOption marks the option at index as the only correct one.
func SetCorrectOption(q *LocalQuestion, index int) error {
	if q.Type == QuestionShortText {
		return ErrNoOptions
	}
	if index < 0 || index >= len(q.Options) {
		return ErrOptionNotFound
	}
	for i := range q.Options {
		q.Options[i].IsCorrect = i == index
	}
	return nil
}

// ChangeType switches the question type and resets the answer fields the way
// the quiz editor does: two blank options for mcq, Sant/Falskt for true-false,
// an empty correct answer for short-text.
func ChangeType(q *LocalQuestion, t QuestionType) {
	switch t {
	case QuestionMCQ:
		q.Options = []AnswerOption{
			{ID: uuid.NewString(), IsCorrect: true},
			{ID: uuid.NewString()},
		}
		q.CorrectAnswer = ""
	case QuestionTrueFalse:
		q.Options = []AnswerOption{
			{ID: uuid.NewString(), Text: TrueLabel, IsCorrect: true},
			{ID: uuid.NewString(), Text: FalseLabel},
		}
		q.CorrectAnswer = ""
	case QuestionShortText:
		q.Options = nil
		q.CorrectAnswer = ""
	}
	q.Type = t
}

// CorrectCount reports how many options are marked correct.
func CorrectCount(q LocalQuestion) int {
	n := 0
	for _, opt := range q.Options {
		if opt.IsCorrect {
			n++
		}
	}
	return n
}

func intPtr(v int) *int { return &v }
