package aidraft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"skolapp-quizsync/internal/domain"
)

// Error codes reported by the generator.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNetworkError  = "NETWORK_ERROR"
	CodeAPIError      = "API_ERROR"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
)

const (
	DefaultQuestionCount = 5
	TitlePrefix          = "AI-draft: "
	questionSource       = "AI-genererat från säkra kunskapsbaser"
)

// Error is a generator failure with a machine-readable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

type template struct {
	question string
	answer   string
	wrong    [3]string
}

var templates = []template{
	{"Vad hände under %s?", "Detta är ett AI-genererat exempel svar om %s", [3]string{"Detta är ett felaktigt alternativ A", "Detta är ett felaktigt alternativ B", "Detta är ett felaktigt alternativ C"}},
	{"När ägde %s rum?", "Detta är tidpunkt för %s", [3]string{"Felaktigt datum A", "Felaktigt datum B", "Felaktigt datum C"}},
	{"Vilka var huvudpersonerna inom %s?", "Viktiga personer inom %s", [3]string{"Irrelevanta personer A", "Irrelevanta personer B", "Irrelevanta personer C"}},
	{"Vilka konsekvenser hade %s?", "Långsiktiga effekter av %s", [3]string{"Felaktiga konsekvenser A", "Felaktiga konsekvenser B", "Felaktiga konsekvenser C"}},
	{"Var ägde %s rum?", "Platser relevanta för %s", [3]string{"Irrelevant plats A", "Irrelevant plats B", "Irrelevant plats C"}},
}

var sources = []string{
	"Skolverket kunskapsbank",
	"Nationalencyklopedin (begränsad)",
	"Svenska läroplaner",
	"AI-baserad syntes",
}

type request struct {
	Topic string `validate:"required,min=3"`
	Count int    `validate:"min=0"`
}

// Generator produces templated quiz drafts. It stands in for a real model API.
type Generator struct {
	// Latency simulates the model round trip.
	Latency  time.Duration
	now      func() time.Time
	validate *validator.Validate
}

func NewGenerator(latency time.Duration) *Generator {
	return &Generator{Latency: latency, now: time.Now, validate: validator.New()}
}

// Generate returns a draft with up to count questions about topic
// (DefaultQuestionCount when count is 0).
func (g *Generator) Generate(ctx context.Context, topic string, count int) (domain.AIDraft, error) {
	topic = strings.TrimSpace(topic)
	if err := g.validate.Struct(request{Topic: topic, Count: count}); err != nil {
		return domain.AIDraft{}, inputError(err)
	}
	if count == 0 {
		count = DefaultQuestionCount
	}

	if g.Latency > 0 {
		timer := time.NewTimer(g.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.AIDraft{}, &Error{Code: CodeNetworkError, Message: ctx.Err().Error()}
		case <-timer.C:
		}
	}

	now := g.now()
	stamp := now.UnixMilli()
	n := count
	if n > len(templates) {
		n = len(templates)
	}
	questions := make([]domain.AIGeneratedQuestion, 0, n)
	for i := 0; i < n; i++ {
		tpl := templates[i]
		answer := fmt.Sprintf(tpl.answer, topic)
		questions = append(questions, domain.AIGeneratedQuestion{
			ID:            fmt.Sprintf("ai-q-%d-%d", stamp, i),
			Text:          fmt.Sprintf(tpl.question, topic),
			CorrectAnswer: answer,
			Options:       []string{answer, tpl.wrong[0], tpl.wrong[1], tpl.wrong[2]},
			Source:        questionSource,
		})
	}

	return domain.AIDraft{
		ID:          fmt.Sprintf("ai-draft-%d", stamp),
		Title:       TitlePrefix + topic,
		Topic:       topic,
		Questions:   questions,
		GeneratedAt: domain.FormatTimestamp(now),
		Sources:     append([]string{}, sources...),
	}, nil
}

func inputError(err error) *Error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			switch {
			case fe.Field() == "Topic" && fe.Tag() == "required":
				return &Error{Code: CodeInvalidInput, Message: "topic is required"}
			case fe.Field() == "Topic" && fe.Tag() == "min":
				return &Error{Code: CodeInvalidInput, Message: "topic must be at least 3 characters"}
			case fe.Field() == "Count":
				return &Error{Code: CodeInvalidInput, Message: "question count cannot be negative"}
			}
		}
	}
	return &Error{Code: CodeAPIError, Message: "could not generate quiz, try again later"}
}
