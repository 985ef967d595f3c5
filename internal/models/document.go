package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DocType tags a document with the chunking strategy it needs.
type DocType string

const (
	DocTypeGeneric DocType = "generic"
	DocTypeLegal   DocType = "legal"
	DocTypeTabular DocType = "tabular"
	DocTypePaper   DocType = "paper"
)

// DefaultSeparator is placed on its own line between chunks in PreprocessResult.ProcessedText.
const DefaultSeparator = "@@@"

var (
	ErrEmptyText      = errors.New("text is empty")
	ErrInvalidDocType = errors.New("invalid document type")
)

var docTypeAliases = map[string]DocType{
	"":            DocTypeGeneric,
	"generic":     DocTypeGeneric,
	"legal":       DocTypeLegal,
	"regulation":  DocTypeLegal,
	"regulatory":  DocTypeLegal,
	"tabular":     DocTypeTabular,
	"table":       DocTypeTabular,
	"sheet":       DocTypeTabular,
	"spreadsheet": DocTypeTabular,
	"csv":         DocTypeTabular,
	"paper":       DocTypePaper,
	"research":    DocTypePaper,
	"report":      DocTypePaper,
}

// ParseDocType resolves a user supplied document type, accepting a few aliases.
func ParseDocType(s string) (DocType, error) {
	if dt, ok := docTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return dt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDocType, s)
}

// ValidateText rejects input the pipeline must never see.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

type Document struct {
	ID       string
	Text     string
	DocType  DocType
	Metadata map[string]interface{}
}

type Stats struct {
	OriginalLength  int `json:"originalLength"`
	ProcessedLength int `json:"processedLength"`
	ChunkCount      int `json:"chunkCount"`
}

type PreprocessResult struct {
	ProcessedText string   `json:"processedText"`
	Chunks        []string `json:"chunks"`
	Stats         Stats    `json:"stats"`
}

// NewPreprocessResult joins chunks around separator and derives the stats from the result.
func NewPreprocessResult(originalLength int, chunks []string, separator string) *PreprocessResult {
	if separator == "" {
		separator = DefaultSeparator
	}
	if chunks == nil {
		chunks = []string{}
	}
	processed := strings.Join(chunks, "\n\n"+separator+"\n\n")

	return &PreprocessResult{
		ProcessedText: processed,
		Chunks:        chunks,
		Stats: Stats{
			OriginalLength:  originalLength,
			ProcessedLength: utf8.RuneCountInString(processed),
			ChunkCount:      len(chunks),
		},
	}
}

type ProcessedDocument struct {
	Document
	Result *PreprocessResult
}
