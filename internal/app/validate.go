package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"skolapp-quizsync/internal/domain"
)

const (
	MaxTitleLength = 120
	MinTimeLimit   = 5
	MaxTimeLimit   = 300
)

// ValidationError carries every violated rule, in evaluation order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid quiz: " + strings.Join(e.Messages, "; ")
}

// Validate checks a quiz draft and returns all violated-rule messages.
// An empty result means the quiz can be saved.
func Validate(title string, questions []domain.LocalQuestion) []string {
	errs := []string{}
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if len(questions) == 0 {
		errs = append(errs, "at least one question is required")
	}

	for i, q := range questions {
		n := i + 1
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %d: text is required", n))
		}

		switch q.Type {
		case domain.QuestionMCQ:
			switch {
			case len(q.Options) < 2:
				errs = append(errs, fmt.Sprintf("question %d: multiple choice needs at least 2 options", n))
			case domain.CorrectCount(q) == 0:
				errs = append(errs, fmt.Sprintf("question %d: multiple choice needs a correct option", n))
			case blankOption(q.Options):
				errs = append(errs, fmt.Sprintf("question %d: all options need text", n))
			}
		case domain.QuestionTrueFalse:
			if domain.CorrectCount(q) != 1 {
				errs = append(errs, fmt.Sprintf("question %d: true/false needs exactly one correct answer", n))
			}
		case domain.QuestionShortText:
			if strings.TrimSpace(q.CorrectAnswer) == "" {
				errs = append(errs, fmt.Sprintf("question %d: short answer needs a correct answer", n))
			}
		default:
			errs = append(errs, fmt.Sprintf("question %d: unknown question type %q", n, q.Type))
		}

		if q.TimeLimit != nil && (*q.TimeLimit < MinTimeLimit || *q.TimeLimit > MaxTimeLimit) {
			errs = append(errs, fmt.Sprintf("question %d: time limit must be between %d and %d seconds", n, MinTimeLimit, MaxTimeLimit))
		}
	}
	return errs
}

func blankOption(options []domain.AnswerOption) bool {
	for _, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return true
		}
	}
	return false
}
