// Package generator drafts fresh mock papers with the Gemini API.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrMissingAPIKey is returned by NewClient when no API key is configured.
	ErrMissingAPIKey = errors.New("generator api key not configured")
	// ErrEmptyResponse is returned when the model produced no questions.
	ErrEmptyResponse = errors.New("generator returned no questions")
)

// Request describes the paper to draft.
type Request struct {
	Exam   string
	Count  int
	Topics []string
	Style  string
}

// RawQuestion is a question exactly as the model returns it. It is not
// validated here.
type RawQuestion struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex"`
	Topic              string   `json:"topic"`
	Explanation        string   `json:"explanation"`
}

// Config configures a Client. BaseURL overrides the API endpoint and is
// mostly useful for proxies and tests.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client generates questions through the Gemini content API.
type Client struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// NewClient creates a Client. It does not contact the API.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		models:  client.Models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// questionSchema constrains the model output to an array of questions.
var questionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"text": {Type: genai.TypeString},
			"options": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"correctAnswerIndex": {Type: genai.TypeInteger},
			"topic":              {Type: genai.TypeString},
			"explanation":        {Type: genai.TypeString},
		},
		Required: []string{"text", "options", "correctAnswerIndex", "topic", "explanation"},
	},
}

// Generate asks the model for req.Count questions.
func (c *Client) Generate(ctx context.Context, req Request) ([]RawQuestion, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(Prompt(req)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	questions, err := decode([]byte(resp.Text()))
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyResponse
	}
	return questions, nil
}

// Prompt renders the instruction sent to the model.
func Prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice questions for the %s exam.\n", req.Count, req.Exam)
	fmt.Fprintf(&b, "The questions should be difficult and cover these topics: %s.\n", strings.Join(req.Topics, ", "))
	if req.Style != "" {
		fmt.Fprintf(&b, "Focus on %s.\n", req.Style)
	}
	b.WriteString("\nEnsure the output is a valid JSON array. Each question must have:\n")
	b.WriteString("- text: The question stem.\n")
	b.WriteString("- options: An array of exactly 4 strings.\n")
	b.WriteString("- correctAnswerIndex: The index (0-3) of the correct option.\n")
	b.WriteString("- topic: One of the topics listed.\n")
	b.WriteString("- explanation: A brief explanation of why the answer is correct.\n")
	return b.String()
}

// decode accepts either a bare JSON array or an object wrapping it under
// "questions".
func decode(raw []byte) ([]RawQuestion, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}

	if raw[0] == '[' {
		var qs []RawQuestion
		if err := json.Unmarshal(raw, &qs); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		return qs, nil
	}

	var wrapped struct {
		Questions []RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return wrapped.Questions, nil
}
