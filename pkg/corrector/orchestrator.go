package corrector

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/xhad/docprep/internal/types"
)

var ErrEmptyCorrection = errors.New("corrector returned empty text")

type OrchestratorConfig struct {
	// Concurrency is the batch width: calls in flight at once.
	Concurrency int
	// BatchPause is waited between batches to respect the corrector's rate limit.
	BatchPause time.Duration
	Timeout    time.Duration
	// MaxRetries counts retries after the first attempt. Zero selects the
	// default of 3; a negative value disables retries.
	MaxRetries int
	// RetryDelay grows linearly: RetryDelay × attempt.
	RetryDelay time.Duration
	Logger     *log.Logger
	OnProgress func(done, total int)
}

// Orchestrator runs a Corrector over many segments with bounded concurrency,
// per-call timeouts and retries. It never fails: a segment that cannot be
// corrected comes back unchanged.
type Orchestrator struct {
	config    OrchestratorConfig
	corrector types.Corrector
}

// NewWithConfig creates an Orchestrator. A nil corrector puts it in
// passthrough mode.
func NewWithConfig(corrector types.Corrector, config OrchestratorConfig) *Orchestrator {
	if config.Concurrency <= 0 {
		config.Concurrency = 2
	}
	if config.BatchPause <= 0 {
		config.BatchPause = time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = 45 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	} else if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	return &Orchestrator{
		config:    config,
		corrector: corrector,
	}
}

// Passthrough reports whether segments are returned without calling out.
func (o *Orchestrator) Passthrough() bool {
	return o.corrector == nil
}

// CorrectSegments returns one string per input segment, in input order.
func (o *Orchestrator) CorrectSegments(ctx context.Context, segments []string) []string {
	out := make([]string, len(segments))
	copy(out, segments)
	if o.Passthrough() {
		o.report(len(segments), len(segments))
		return out
	}

	var done atomic.Int64
	width := o.config.Concurrency
	for start := 0; start < len(segments); start += width {
		if start > 0 && !o.pause(ctx) {
			o.config.Logger.Warn("correction interrupted", "remaining", len(segments)-start, "error", ctx.Err())
			break
		}

		var g errgroup.Group
		for i := start; i < min(start+width, len(segments)); i++ {
			g.Go(func() error {
				out[i] = o.correctOne(ctx, i, segments[i])
				o.report(int(done.Add(1)), len(segments))
				return nil
			})
		}
		_ = g.Wait()
	}

	return out
}

func (o *Orchestrator) correctOne(ctx context.Context, index int, segment string) string {
	clean := sanitize(segment)
	if utf8.RuneCountInString(clean) < 2 {
		return segment
	}

	var (
		corrected string
		attempt   int
	)
	backoff := retry.WithMaxRetries(uint64(o.config.MaxRetries), linearBackoff(o.config.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		result, err := o.call(ctx, clean)
		if err != nil {
			o.config.Logger.Debug("correction attempt failed", "segment", index, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		corrected = result
		return nil
	})
	if err != nil {
		o.config.Logger.Warn("using original segment", "segment", index, "attempts", attempt, "error", err)
		return segment
	}
	return corrected
}

// call runs one correction under the per-call timeout. A call that outlives
// the timeout is abandoned; its result is dropped.
func (o *Orchestrator) call(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := o.corrector.Correct(ctx, text)
		ch <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", r.err
		}
		if strings.TrimSpace(r.text) == "" {
			return "", ErrEmptyCorrection
		}
		return r.text, nil
	}
}

func (o *Orchestrator) pause(ctx context.Context) bool {
	timer := time.NewTimer(o.config.BatchPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (o *Orchestrator) report(done, total int) {
	if o.config.OnProgress != nil {
		o.config.OnProgress(done, total)
	}
}

// linearBackoff waits delay × n before the n-th retry.
func linearBackoff(delay time.Duration) retry.Backoff {
	var attempt atomic.Int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		return delay * time.Duration(attempt.Add(1)), false
	})
}

func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
