package cli

import (
	"os"
	"path/filepath"
	"testing"

	"skolapp-quizsync/internal/domain"
)

func TestReadQuizFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.yaml")
	body := `
title: Bråk
description: Åk 6
questions:
  - text: Vad är 1/2 + 1/4?
    options: ["3/4", "2/6", "1/8"]
    correct: 0
  - text: 0,5 är lika med 1/2
    type: true-false
    answer: "true"
  - text: Skriv 3/4 som decimaltal
    type: short-text
    answer: "0,75"
    timeLimit: 60
  - text: Rita en cirkel
    type: drawing
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	qf, err := readQuizFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if qf.Title != "Bråk" || qf.Description != "Åk 6" {
		t.Fatalf("unexpected header %+v", qf)
	}
	questions, err := qf.questions()
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(questions))
	}
	if questions[0].Type != domain.QuestionMCQ || !questions[0].Options[0].IsCorrect {
		t.Fatalf("unexpected mcq %+v", questions[0])
	}
	if questions[1].Options[0].Text != domain.TrueLabel || !questions[1].Options[0].IsCorrect {
		t.Fatalf("unexpected true-false %+v", questions[1])
	}
	if questions[2].CorrectAnswer != "0,75" || *questions[2].TimeLimit != 60 {
		t.Fatalf("unexpected short-text %+v", questions[2])
	}
	if questions[3].Type != "drawing" {
		t.Fatalf("expected unknown type kept, got %q", questions[3].Type)
	}
}

func TestQuizFileRejectsBadTrueFalse(t *testing.T) {
	qf := quizFile{Questions: []questionFile{{Text: "Sant?", Type: "true-false", Answer: "kanske"}}}
	if _, err := qf.questions(); err == nil {
		t.Fatalf("expected error for unparsable answer")
	}
}

func TestQuizFileRejectsOutOfRangeCorrect(t *testing.T) {
	for _, correct := range []int{-1, 3, 7} {
		qf := quizFile{Questions: []questionFile{{Text: "Välj", Options: []string{"a", "b", "c"}, Correct: correct}}}
		if _, err := qf.questions(); err == nil {
			t.Fatalf("expected error for correct=%d", correct)
		}
	}

	qf := quizFile{Questions: []questionFile{{Text: "Välj", Options: []string{"a", "b", "c"}, Correct: 2}}}
	questions, err := qf.questions()
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if !questions[0].Options[2].IsCorrect || questions[0].Options[0].IsCorrect {
		t.Fatalf("expected only the chosen option correct, got %+v", questions[0].Options)
	}
}
