package main

import (
	"fmt"

	"github.com/xhad/docprep/internal/types"
	"github.com/xhad/docprep/pkg/config"
	"github.com/xhad/docprep/pkg/llm"
	"github.com/xhad/docprep/pkg/spellcheck"
)

// newCorrector builds the configured backend. A nil Corrector means
// correction is disabled.
func newCorrector(c config.CorrectorSection) (types.Corrector, error) {
	switch c.Backend {
	case config.BackendSpellcheck:
		client, err := spellcheck.NewWithConfig(spellcheck.Config{
			Endpoint:  c.Endpoint,
			Timeout:   c.Timeout,
			RateLimit: c.RateLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize spellcheck client: %w", err)
		}
		return client, nil
	case config.BackendOllama:
		engine, err := llm.NewWithConfig(llm.CorrectorConfig{
			Model:       c.Model,
			Temperature: c.Temperature,
			MaxTokens:   c.MaxTokens,
			BaseURL:     c.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM corrector: %w", err)
		}
		return engine, nil
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown correction backend %q", c.Backend)
	}
}
