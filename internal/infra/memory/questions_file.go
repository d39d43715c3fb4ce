package memory

import (
	"errors"
	"fmt"
	"io"
	"os"

	"advent-quiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type questionsFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// ReadQuestions decodes a YAML seed file:
//
//	questions:
//	  - day_number: 9
//	    text: How fast can a cheetah run?
//	    correct_answer: 110 km/h
func ReadQuestions(r io.Reader) ([]domain.Question, error) {
	var f questionsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	seen := make(map[int]bool, len(f.Questions))
	for i, q := range f.Questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("question #%d (day %d): %w", i+1, q.DayNumber, err)
		}
		if seen[q.DayNumber] {
			return nil, fmt.Errorf("question #%d: day %d defined twice", i+1, q.DayNumber)
		}
		seen[q.DayNumber] = true
	}
	return f.Questions, nil
}

// ReadQuestionsFile opens path and calls ReadQuestions.
func ReadQuestionsFile(path string) ([]domain.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadQuestions(f)
}
