package domain

import (
	"errors"
	"testing"
)

func TestSetCorrectOptionKeepsExactlyOne(t *testing.T) {
	q := NewMCQQuestion("Vilken är störst?", []string{"1", "2", "3", "4"}, 0)

	for _, idx := range []int{2, 2, 0, 3, 1, 3} {
		if err := SetCorrectOption(&q, idx); err != nil {
			t.Fatalf("set correct %d: %v", idx, err)
		}
		if n := CorrectCount(q); n != 1 {
			t.Fatalf("expected exactly one correct option, got %d", n)
		}
		if !q.Options[idx].IsCorrect {
			t.Fatalf("expected option %d correct", idx)
		}
	}
}

func TestSetCorrectOptionRejectsBadTargets(t *testing.T) {
	q := NewTrueFalseQuestion("Jorden är rund", true)
	if err := SetCorrectOption(&q, 5); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("expected option not found, got %v", err)
	}
	if !q.Options[0].IsCorrect || q.Options[1].IsCorrect {
		t.Fatalf("failed call must not change options: %+v", q.Options)
	}

	short := NewShortTextQuestion("Huvudstad?", "Stockholm")
	if err := SetCorrectOption(&short, 0); !errors.Is(err, ErrNoOptions) {
		t.Fatalf("expected no options error, got %v", err)
	}
}

func TestTrueFalseLabels(t *testing.T) {
	q := NewTrueFalseQuestion("Vatten kokar vid 100 grader", false)
	if q.Options[0].Text != TrueLabel || q.Options[1].Text != FalseLabel {
		t.Fatalf("unexpected labels: %+v", q.Options)
	}
	if q.Options[0].IsCorrect || !q.Options[1].IsCorrect {
		t.Fatalf("expected Falskt correct: %+v", q.Options)
	}
}

func TestChangeTypeResetsAnswers(t *testing.T) {
	q := NewShortTextQuestion("Vad heter kungen?", "Carl XVI Gustaf")

	ChangeType(&q, QuestionMCQ)
	if len(q.Options) != 2 || q.CorrectAnswer != "" || CorrectCount(q) != 1 {
		t.Fatalf("unexpected mcq reset: %+v", q)
	}

	ChangeType(&q, QuestionShortText)
	if q.Options != nil || q.Type != QuestionShortText {
		t.Fatalf("unexpected short-text reset: %+v", q)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := LocalQuiz{
		ID:        "a",
		Questions: []LocalQuestion{NewMCQQuestion("q", []string{"x", "y"}, 1)},
		AIMetadata: &AIMetadata{
			Topic:   "Vikingatiden",
			Sources: []string{"s1"},
		},
	}
	cp := orig.Clone()
	cp.Questions[0].Options[0].Text = "changed"
	*cp.Questions[0].TimeLimit = 99
	cp.AIMetadata.Sources[0] = "changed"

	if orig.Questions[0].Options[0].Text != "x" {
		t.Fatalf("option text leaked through clone")
	}
	if *orig.Questions[0].TimeLimit != DefaultTimeLimit {
		t.Fatalf("time limit leaked through clone")
	}
	if orig.AIMetadata.Sources[0] != "s1" {
		t.Fatalf("sources leaked through clone")
	}
}
