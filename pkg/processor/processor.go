package processor

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/pkg/chunker"
)

type ProcessorConfig struct {
	MaxChunkSize int
	// OverlapSize applies to the generic chunker; negative disables overlap.
	OverlapSize int
	Separator   string

	BoilerplateMaxLineLength int
	BoilerplateMinRepeats    int
	BoilerplateLineRatio     float64
	HeaderMaxLength          int

	// Workers bounds Process; documents are independent.
	Workers int
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MaxChunkSize == 0 {
		config.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if config.OverlapSize == 0 {
		config.OverlapSize = chunker.DefaultOverlapSize
	}
	if config.Separator == "" {
		config.Separator = models.DefaultSeparator
	}
	if config.Workers == 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	return Processor{
		config: config,
	}
}

func (p *Processor) chunkerOptions() chunker.Options {
	return chunker.Options{
		MaxChunkSize:             p.config.MaxChunkSize,
		OverlapSize:              p.config.OverlapSize,
		BoilerplateMaxLineLength: p.config.BoilerplateMaxLineLength,
		BoilerplateMinRepeats:    p.config.BoilerplateMinRepeats,
		BoilerplateLineRatio:     p.config.BoilerplateLineRatio,
		HeaderMaxLength:          p.config.HeaderMaxLength,
	}
}

// Preprocess normalizes text, chunks it with the strategy for docType and
// joins the chunks with separator on its own line. An empty separator uses
// the configured one. Input is expected to be validated by the caller.
func (p *Processor) Preprocess(text string, docType models.DocType, separator string) (*models.PreprocessResult, error) {
	if separator == "" {
		separator = p.config.Separator
	}

	originalLength, normalized := Normalize(text)

	chunks, err := chunker.ForDocType(docType, p.chunkerOptions()).Chunk(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk %s document: %w", docType, err)
	}

	return models.NewPreprocessResult(originalLength, chunks, separator), nil
}

// Process preprocesses docs concurrently. Results keep the input order.
func (p *Processor) Process(ctx context.Context, docs []models.Document) ([]models.ProcessedDocument, error) {
	processed := make([]models.ProcessedDocument, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := p.Preprocess(doc.Text, doc.DocType, "")
			if err != nil {
				return fmt.Errorf("failed to process document %s: %w", doc.ID, err)
			}
			processed[i] = models.ProcessedDocument{Document: doc, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return processed, nil
}
