package config

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/xhad/docprep/pkg/corrector"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Processor config
	if c.Processor.MaxChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.max_chunk_size",
			Message: "max_chunk_size must be positive",
		})
	}

	if c.Processor.OverlapSize >= c.Processor.MaxChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.overlap_size",
			Message: "overlap_size must be less than max_chunk_size",
		})
	}

	if c.Processor.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "processor.workers",
			Message: "workers cannot be negative",
		})
	}

	if c.Processor.Boilerplate.LineRatio < 0 || c.Processor.Boilerplate.LineRatio > 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.boilerplate.line_ratio",
			Message: "line_ratio must be between 0 and 1",
		})
	}

	// Validate Corrector config
	switch c.Corrector.Backend {
	case BackendNone:
	case BackendSpellcheck:
		if _, err := url.ParseRequestURI(c.Corrector.Endpoint); err != nil {
			errors = append(errors, ValidationError{
				Field:   "corrector.endpoint",
				Message: "a valid spellcheck endpoint URL is required",
			})
		}
	case BackendOllama:
		if _, err := url.ParseRequestURI(c.Corrector.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "corrector.base_url",
				Message: "invalid Ollama base URL",
			})
		}
		if c.Corrector.Temperature < 0 || c.Corrector.Temperature > 1 {
			errors = append(errors, ValidationError{
				Field:   "corrector.temperature",
				Message: "temperature must be between 0 and 1",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "corrector.backend",
			Message: fmt.Sprintf("unknown backend %q", c.Corrector.Backend),
		})
	}

	if c.Corrector.Concurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "corrector.concurrency",
			Message: "concurrency must be positive",
		})
	}

	if c.Corrector.Timeout < 0 || c.Corrector.BatchPause < 0 || c.Corrector.RetryDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "corrector.timeout",
			Message: "durations cannot be negative",
		})
	}

	if c.Corrector.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "corrector.rate_limit",
			Message: "rate_limit cannot be negative",
		})
	}

	if c.Corrector.MaxSegmentLength < 1 || c.Corrector.MaxSegmentLength > corrector.MaxSegmentLength {
		errors = append(errors, ValidationError{
			Field:   "corrector.max_segment_length",
			Message: fmt.Sprintf("max_segment_length must be between 1 and %d", corrector.MaxSegmentLength),
		})
	}

	// Validate Server and Log config
	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Message: "listen address is required",
		})
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level %q", c.Log.Level),
		})
	}

	return errors
}
