package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bank is the process-wide question bank: loaded once at startup, read-only
// afterwards.
type Bank struct {
	questions  []EvalQuestion
	byID       map[string]EvalQuestion
	categories []string
}

type bankFile struct {
	Questions []EvalQuestion `yaml:"questions"`
}

func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	return NewBank(file.Questions)
}

func NewBank(questions []EvalQuestion) (*Bank, error) {
	bank := &Bank{
		questions: questions,
		byID:      make(map[string]EvalQuestion, len(questions)),
	}

	seenCategory := map[string]bool{}
	for _, question := range questions {
		if question.ID == "" || question.Question == "" {
			return nil, fmt.Errorf("question bank entry missing id or question text: %+v", question)
		}
		if _, ok := bank.byID[question.ID]; ok {
			return nil, fmt.Errorf("duplicate question id %q in bank", question.ID)
		}

		bank.byID[question.ID] = question
		if !seenCategory[question.Category] {
			seenCategory[question.Category] = true
			bank.categories = append(bank.categories, question.Category)
		}
	}

	return bank, nil
}

func (b *Bank) Questions() []EvalQuestion {
	return b.questions
}

func (b *Bank) ByID(id string) (EvalQuestion, bool) {
	question, ok := b.byID[id]
	return question, ok
}

func (b *Bank) ByCategory(category string) []EvalQuestion {
	var questions []EvalQuestion
	for _, question := range b.questions {
		if question.Category == category {
			questions = append(questions, question)
		}
	}
	return questions
}

// Categories returns category names in first-seen order.
func (b *Bank) Categories() []string {
	return b.categories
}
