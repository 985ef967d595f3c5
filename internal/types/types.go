package types

import (
	"context"
)

// Core interfaces
type Chunker interface {
	Chunk(text string) ([]string, error)
}

// Corrector fixes up a single piece of text. Implementations may fail or block;
// callers bound them with ctx.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

type CorrectorFunc func(ctx context.Context, text string) (string, error)

func (f CorrectorFunc) Correct(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
