package spellcheck

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var ErrMalformedResponse = errors.New("malformed spellcheck response")

type Config struct {
	// Endpoint is the full URL of the check route, e.g. http://localhost:5000/check.
	Endpoint string
	Timeout  time.Duration
	// RateLimit caps requests per second; 0 disables client side pacing.
	RateLimit float64
}

// CheckResponse is the JSON body returned by the spellcheck service.
type CheckResponse struct {
	Corrected string `json:"corrected"`
	Original  string `json:"original"`
	Result    struct {
		ErrataCount int `json:"errata_count"`
	} `json:"result"`
	Error string `json:"error,omitempty"`
}

// Client posts text to a spellcheck service as a form field and returns the
// corrected text.
type Client struct {
	config  Config
	http    *resty.Client
	limiter *rate.Limiter
}

func NewWithConfig(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, errors.New("spellcheck endpoint is required")
	}
	if _, err := url.ParseRequestURI(config.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid spellcheck endpoint: %w", err)
	}
	if config.Timeout == 0 {
		config.Timeout = 45 * time.Second
	}

	c := &Client{
		config: config,
		http: resty.New().
			SetTimeout(config.Timeout).
			SetHeader("Accept", "application/json"),
	}
	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return c, nil
}

func (c *Client) Correct(ctx context.Context, text string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var body CheckResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"text": text}).
		SetResult(&body).
		Post(c.config.Endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call spellcheck service: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("spellcheck service returned status %d", resp.StatusCode())
	}
	if body.Error != "" {
		return "", fmt.Errorf("spellcheck service error: %s", body.Error)
	}
	if strings.TrimSpace(body.Corrected) == "" {
		return "", ErrMalformedResponse
	}

	return body.Corrected, nil
}
