// Package classify labels a user query as a summary request or a question.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/bull/ytchat/internal/prompt"
)

// Category is the routing label for a query.
type Category string

const (
	Summary        Category = "summary"
	QuestionAnswer Category = "question_answer"
)

// Categories lists every valid Category.
var Categories = []Category{Summary, QuestionAnswer}

var (
	// ErrMalformedClassification means the model's reply did not match the schema.
	ErrMalformedClassification = errors.New("malformed classification")
	// ErrUnknownCategory means a string is not one of Categories.
	ErrUnknownCategory = errors.New("unknown category")
)

// ParseCategory converts s to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Generator produces a JSON object reply for a prompt.
type Generator interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// Schema returns the JSON schema of a classification reply.
func Schema() *jsonschema.Schema {
	enum := make([]any, len(Categories))
	for i, c := range Categories {
		enum[i] = string(c)
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"category": {
				Type:        "string",
				Description: "The category of the query, either 'summary' or 'question_answer'.",
				Enum:        enum,
			},
		},
		Required: []string{"category"},
	}
}

// FormatInstructions renders the schema as instructions appended to the prompt.
func FormatInstructions(schema *jsonschema.Schema) (string, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	return `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"title": "Foo", "description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```\n" + string(raw) + "\n```", nil
}

// Classifier asks the model for a category and validates the reply.
type Classifier struct {
	llm          Generator
	schema       *jsonschema.Resolved
	instructions string
	logger       *slog.Logger
}

// New creates a Classifier.
func New(llm Generator, logger *slog.Logger) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	schema := Schema()
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve classification schema: %w", err)
	}
	instructions, err := FormatInstructions(schema)
	if err != nil {
		return nil, err
	}

	return &Classifier{
		llm:          llm,
		schema:       resolved,
		instructions: instructions,
		logger:       logger,
	}, nil
}

// Classify labels query. A reply that does not conform to the schema is
// ErrMalformedClassification; there is no retry.
func (c *Classifier) Classify(ctx context.Context, query string) (Category, error) {
	rendered, err := prompt.Classification.Render(map[string]string{
		prompt.VarUserQuery:          query,
		prompt.VarFormatInstructions: c.instructions,
	})
	if err != nil {
		return "", err
	}

	reply, err := c.llm.CompleteJSON(ctx, rendered)
	if err != nil {
		return "", fmt.Errorf("classify query: %w", err)
	}

	category, err := c.parse(reply)
	if err != nil {
		c.logger.Warn("Classification reply rejected", "reply", truncate(reply, 200), "error", err)
		return "", err
	}

	c.logger.Debug("Query classified", "category", category)
	return category, nil
}

func (c *Classifier) parse(reply string) (Category, error) {
	var instance any
	if err := json.Unmarshal([]byte(extractJSON(reply)), &instance); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}
	if err := c.schema.Validate(instance); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}

	obj, _ := instance.(map[string]any)
	value, _ := obj["category"].(string)
	category, err := ParseCategory(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}
	return category, nil
}

// extractJSON finds the first JSON object in a string (handles code fences).
func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
