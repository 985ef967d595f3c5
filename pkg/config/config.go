package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xhad/docprep/pkg/chunker"
	"github.com/xhad/docprep/pkg/corrector"
	"github.com/xhad/docprep/pkg/processor"
)

const (
	BackendNone       = "none"
	BackendSpellcheck = "spellcheck"
	BackendOllama     = "ollama"
)

type ProcessorSection struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
	// OverlapSize below zero disables overlap.
	OverlapSize     int    `yaml:"overlap_size"`
	Separator       string `yaml:"separator"`
	Workers         int    `yaml:"workers"`
	HeaderMaxLength int    `yaml:"header_max_length"`

	Boilerplate struct {
		MaxLineLength int     `yaml:"max_line_length"`
		MinRepeats    int     `yaml:"min_repeats"`
		LineRatio     float64 `yaml:"line_ratio"`
	} `yaml:"boilerplate"`
}

type CorrectorSection struct {
	Backend string `yaml:"backend"`

	// spellcheck
	Endpoint  string  `yaml:"endpoint"`
	RateLimit float64 `yaml:"rate_limit"`

	// ollama
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	Concurrency      int           `yaml:"concurrency"`
	BatchPause       time.Duration `yaml:"batch_pause"`
	Timeout          time.Duration `yaml:"timeout"`
	// MaxRetries of 0 selects the default; a negative value disables retries.
	MaxRetries       int           `yaml:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	MaxSegmentLength int           `yaml:"max_segment_length"`
}

type Config struct {
	Processor ProcessorSection `yaml:"processor"`
	Corrector CorrectorSection `yaml:"corrector"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docprep/config.yaml"),
			"/etc/docprep/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	p := &config.Processor
	if p.MaxChunkSize == 0 {
		p.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if p.OverlapSize == 0 {
		p.OverlapSize = chunker.DefaultOverlapSize
	}
	if p.HeaderMaxLength == 0 {
		p.HeaderMaxLength = chunker.DefaultHeaderMaxLength
	}
	if p.Boilerplate.MaxLineLength == 0 {
		p.Boilerplate.MaxLineLength = chunker.DefaultBoilerplateMaxLineLength
	}
	if p.Boilerplate.MinRepeats == 0 {
		p.Boilerplate.MinRepeats = chunker.DefaultBoilerplateMinRepeats
	}
	if p.Boilerplate.LineRatio == 0 {
		p.Boilerplate.LineRatio = chunker.DefaultBoilerplateLineRatio
	}

	c := &config.Corrector
	if c.Backend == "" {
		if c.Endpoint != "" {
			c.Backend = BackendSpellcheck
		} else {
			c.Backend = BackendNone
		}
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "mistral"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2000
	}
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}
	if c.BatchPause == 0 {
		c.BatchPause = time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 45 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.MaxSegmentLength == 0 {
		c.MaxSegmentLength = corrector.MaxSegmentLength
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if endpoint := os.Getenv("SPELLCHECK_URL"); endpoint != "" {
		config.Corrector.Endpoint = endpoint
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Corrector.BaseURL = baseURL
	}
	if addr := os.Getenv("DOCPREP_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	if level := os.Getenv("DOCPREP_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}

// ProcessorConfig maps the processor section onto the pipeline's options.
func (c *Config) ProcessorConfig() processor.ProcessorConfig {
	return processor.ProcessorConfig{
		MaxChunkSize:             c.Processor.MaxChunkSize,
		OverlapSize:              c.Processor.OverlapSize,
		Separator:                c.Processor.Separator,
		Workers:                  c.Processor.Workers,
		BoilerplateMaxLineLength: c.Processor.Boilerplate.MaxLineLength,
		BoilerplateMinRepeats:    c.Processor.Boilerplate.MinRepeats,
		BoilerplateLineRatio:     c.Processor.Boilerplate.LineRatio,
		HeaderMaxLength:          c.Processor.HeaderMaxLength,
	}
}

// OrchestratorConfig maps the corrector section onto the orchestrator's
// options. Logger and OnProgress are left for the caller.
func (c *Config) OrchestratorConfig() corrector.OrchestratorConfig {
	return corrector.OrchestratorConfig{
		Concurrency: c.Corrector.Concurrency,
		BatchPause:  c.Corrector.BatchPause,
		Timeout:     c.Corrector.Timeout,
		MaxRetries:  c.Corrector.MaxRetries,
		RetryDelay:  c.Corrector.RetryDelay,
	}
}
