package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stemsi/mock-exam/internal/model"
	"github.com/stemsi/mock-exam/internal/service"
	"gopkg.in/yaml.v3"
)

var errUnsupportedFormat = errors.New("unsupported file format")

// bankFile is the wrapped form; a bare list is accepted as well.
type bankFile struct {
	Questions []model.BankQuestion `json:"questions" yaml:"questions"`
}

func loadQuestions(path string) ([]model.BankQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var questions []model.BankQuestion
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		questions, err = decodeJSON(data)
	case ".yaml", ".yml":
		questions, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, errors.New("file holds no questions")
	}
	for i, q := range questions {
		err := service.ValidateQuestion(model.Question{
			Text:               q.Text,
			Options:            q.Options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
		})
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions[i].Text = strings.TrimSpace(q.Text)
	}
	return questions, nil
}

func decodeJSON(data []byte) ([]model.BankQuestion, error) {
	var list []model.BankQuestion
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped bankFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return wrapped.Questions, nil
}

func decodeYAML(data []byte) ([]model.BankQuestion, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var list []model.BankQuestion
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return list, nil
	}

	var wrapped bankFile
	if err := node.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return wrapped.Questions, nil
}
