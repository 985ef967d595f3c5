package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

var ErrEmptyResponse = errors.New("empty response from LLM")

const defaultSystemTemplate = "You are a proofreader. Fix spelling, spacing and punctuation errors in the user's text. " +
	"Keep the meaning, language and line breaks. Return only the corrected text with no explanation."

// CorrectorConfig represents the configuration for an LLM backed corrector.
type CorrectorConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	SystemTemplate string
	BaseURL        string // Ollama server URL

	// LLM overrides the Ollama client, mainly for tests.
	LLM llms.Model
}

// Corrector asks a chat model to proofread a piece of text.
type Corrector struct {
	config CorrectorConfig
	llm    llms.Model
}

// NewWithConfig creates a new Corrector with the given configuration.
func NewWithConfig(config CorrectorConfig) (*Corrector, error) {
	if config.Model == "" {
		config.Model = "mistral" // Default Ollama model
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = defaultSystemTemplate
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	model := config.LLM
	if model == nil {
		var err error
		model, err = ollama.New(ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM: %w", err)
		}
	}

	return &Corrector{
		config: config,
		llm:    model,
	}, nil
}

// Correct returns the model's corrected version of text.
func (c *Corrector) Correct(ctx context.Context, text string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, c.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	response, err := c.llm.GenerateContent(ctx, content,
		llms.WithTemperature(c.config.Temperature),
		llms.WithMaxTokens(c.config.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("correction error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", ErrEmptyResponse
	}

	corrected := strings.TrimSpace(response.Choices[0].Content)
	if corrected == "" {
		return "", ErrEmptyResponse
	}
	return corrected, nil
}
