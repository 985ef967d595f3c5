package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/pkg/htmltext"
	"github.com/xhad/docprep/pkg/processor"
)

var chunkOpts struct {
	docType      string
	maxChunkSize int
	overlap      int
	separator    string
	html         bool
	json         bool
}

var chunkCmd = &cobra.Command{
	Use:   "chunk [file|-]...",
	Short: "Normalize and chunk documents",
	Long: `Normalize documents and split them into chunks using the strategy for their
type (generic, legal, tabular, paper). Reads stdin when no file is given.
Several files are processed in parallel and printed in argument order.`,
	RunE: runChunk,
}

func init() {
	f := chunkCmd.Flags()
	f.StringVarP(&chunkOpts.docType, "type", "t", "generic", "document type (generic, legal, tabular, paper)")
	f.IntVar(&chunkOpts.maxChunkSize, "max-chunk-size", 0, "maximum chunk length in characters")
	f.IntVar(&chunkOpts.overlap, "overlap", 0, "generic chunk overlap in characters (0 disables)")
	f.StringVar(&chunkOpts.separator, "separator", "", "separator placed between chunks")
	f.BoolVar(&chunkOpts.html, "html", false, "treat input as HTML")
	f.BoolVar(&chunkOpts.json, "json", false, "print the full result as JSON")
}

func runChunk(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("max-chunk-size") {
		cfg.Processor.MaxChunkSize = chunkOpts.maxChunkSize
	}
	if cmd.Flags().Changed("overlap") {
		if chunkOpts.overlap == 0 {
			cfg.Processor.OverlapSize = -1
		} else {
			cfg.Processor.OverlapSize = chunkOpts.overlap
		}
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cmd.Flags().Changed("separator") {
		cfg.Processor.Separator = chunkOpts.separator
	}

	docType, err := models.ParseDocType(chunkOpts.docType)
	if err != nil {
		return err
	}
	docs, err := loadDocuments(args, cmd.InOrStdin(), docType)
	if err != nil {
		return err
	}

	p := processor.NewWithConfig(cfg.ProcessorConfig())
	processed, err := p.Process(cmd.Context(), docs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if chunkOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		var v interface{} = processed[0].Result
		if len(processed) > 1 {
			outputs := make([]chunkOutput, len(processed))
			for i, doc := range processed {
				outputs[i] = chunkOutput{Path: sourcePath(doc.Document), Result: doc.Result}
			}
			v = outputs
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}

	for _, doc := range processed {
		result := doc.Result
		logger.Debug("Chunked document", "path", sourcePath(doc.Document), "type", docType, "chunks", result.Stats.ChunkCount)

		if !chunkOpts.json {
			if len(processed) > 1 {
				fmt.Fprintf(out, "==> %s <==\n", sourcePath(doc.Document))
			}
			fmt.Fprintln(out, result.ProcessedText)
		}
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ %s: %d chunks, %d → %d characters\n",
			sourcePath(doc.Document), result.Stats.ChunkCount, result.Stats.OriginalLength, result.Stats.ProcessedLength)
	}
	return nil
}

type chunkOutput struct {
	Path   string                   `json:"path"`
	Result *models.PreprocessResult `json:"result"`
}

// loadDocuments reads every input, extracting HTML when asked, and rejects
// blank ones before any chunking starts.
func loadDocuments(args []string, stdin io.Reader, docType models.DocType) ([]models.Document, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	docs := make([]models.Document, 0, len(args))
	for i, arg := range args {
		text, err := readInput([]string{arg}, stdin)
		if err != nil {
			return nil, err
		}
		if chunkOpts.html {
			if text, err = htmltext.Extract(strings.NewReader(text)); err != nil {
				return nil, err
			}
		}
		if err := models.ValidateText(text); err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}

		path := arg
		if path == "-" {
			path = "stdin"
		}
		docs = append(docs, models.Document{
			ID:       fmt.Sprintf("doc-%d", i),
			Text:     text,
			DocType:  docType,
			Metadata: map[string]interface{}{"path": path},
		})
	}
	return docs, nil
}

func sourcePath(doc models.Document) string {
	if path, ok := doc.Metadata["path"].(string); ok {
		return path
	}
	return doc.ID
}
