package cli

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
	"skolapp-quizsync/internal/domain"
)

// quizFile is the YAML form accepted by "quiz create":
//
//	title: Bråk
//	description: Åk 6
//	questions:
//	  - text: Vad är 1/2 + 1/4?
//	    type: mcq
//	    options: ["3/4", "2/6", "1/8"]
//	    correct: 0
//	  - text: 0,5 är lika med 1/2
//	    type: true-false
//	    answer: "true"
//	  - text: Skriv 3/4 som decimaltal
//	    type: short-text
//	    answer: "0,75"
//	    timeLimit: 60
type quizFile struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Questions   []questionFile `yaml:"questions"`
}

type questionFile struct {
	Text      string   `yaml:"text"`
	Type      string   `yaml:"type"`
	Options   []string `yaml:"options"`
	Correct   int      `yaml:"correct"`
	Answer    string   `yaml:"answer"`
	TimeLimit *int     `yaml:"timeLimit"`
}

func readQuizFile(path string) (quizFile, error) {
	var qf quizFile
	data, err := os.ReadFile(path)
	if err != nil {
		return qf, err
	}
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return qf, fmt.Errorf("parse %s: %w", path, err)
	}
	return qf, nil
}

// questions converts the file entries. Unknown types pass through so that
// validation reports them alongside every other problem.
func (qf quizFile) questions() ([]domain.LocalQuestion, error) {
	out := make([]domain.LocalQuestion, 0, len(qf.Questions))
	for i, f := range qf.Questions {
		var q domain.LocalQuestion
		switch domain.QuestionType(f.Type) {
		case domain.QuestionMCQ, "":
			if len(f.Options) > 0 && (f.Correct < 0 || f.Correct >= len(f.Options)) {
				return nil, fmt.Errorf("question %d: correct must be between 0 and %d", i+1, len(f.Options)-1)
			}
			q = domain.NewMCQQuestion(f.Text, f.Options, f.Correct)
		case domain.QuestionTrueFalse:
			answer, err := strconv.ParseBool(f.Answer)
			if err != nil {
				return nil, fmt.Errorf("question %d: answer must be true or false", i+1)
			}
			q = domain.NewTrueFalseQuestion(f.Text, answer)
		case domain.QuestionShortText:
			q = domain.NewShortTextQuestion(f.Text, f.Answer)
		default:
			q = domain.LocalQuestion{Text: f.Text, Type: domain.QuestionType(f.Type)}
		}
		if f.TimeLimit != nil {
			limit := *f.TimeLimit
			q.TimeLimit = &limit
		}
		out = append(out, q)
	}
	return out, nil
}
