package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/pkg/corrector"
	"github.com/xhad/docprep/pkg/htmltext"
	"github.com/xhad/docprep/pkg/processor"
)

// ChunkRequest is the body for POST /v1/chunk.
type ChunkRequest struct {
	Text    string `json:"text"`
	DocType string `json:"docType,omitempty"`
	// Format is "text" (default) or "html".
	Format       string `json:"format,omitempty"`
	MaxChunkSize *int   `json:"maxChunkSize,omitempty"`
	// OverlapSize of 0 disables overlap.
	OverlapSize *int   `json:"overlapSize,omitempty"`
	Separator   string `json:"separator,omitempty"`
}

// CorrectRequest is the body for POST /v1/correct.
type CorrectRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"maxLength,omitempty"`
}

type CorrectResponse struct {
	Segments []string `json:"segments"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// validationError marks input problems that map to 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// asValidation finds a validationError anywhere in err's chain.
func asValidation(err error) (*validationError, bool) {
	var verr *validationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req ChunkRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.chunk(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req CorrectRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	segments, err := s.correct(r.Context(), req, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CorrectResponse{Segments: segments})
}

func (s *Server) chunk(req ChunkRequest) (*models.PreprocessResult, error) {
	text := req.Text
	switch strings.ToLower(req.Format) {
	case "", "text":
	case "html":
		extracted, err := htmltext.Extract(strings.NewReader(text))
		if err != nil {
			return nil, invalid("%v", err)
		}
		text = extracted
	default:
		return nil, invalid("unknown format %q", req.Format)
	}

	if err := models.ValidateText(text); err != nil {
		return nil, invalid("%v", err)
	}
	docType, err := models.ParseDocType(req.DocType)
	if err != nil {
		return nil, invalid("%v", err)
	}

	cfg := s.config.Processor
	if req.MaxChunkSize != nil {
		if *req.MaxChunkSize < 1 {
			return nil, invalid("maxChunkSize must be positive")
		}
		cfg.MaxChunkSize = *req.MaxChunkSize
	}
	if req.OverlapSize != nil {
		switch {
		case *req.OverlapSize < 0:
			return nil, invalid("overlapSize cannot be negative")
		case *req.OverlapSize >= cfg.MaxChunkSize:
			return nil, invalid("overlapSize must be less than maxChunkSize")
		case *req.OverlapSize == 0:
			cfg.OverlapSize = -1
		default:
			cfg.OverlapSize = *req.OverlapSize
		}
	}

	p := processor.NewWithConfig(cfg)
	result, err := p.Preprocess(text, docType, req.Separator)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess text: %w", err)
	}
	return result, nil
}

func (s *Server) correct(ctx context.Context, req CorrectRequest, onProgress func(done, total int)) ([]string, error) {
	if err := models.ValidateText(req.Text); err != nil {
		return nil, invalid("%v", err)
	}
	if req.MaxLength < 0 || req.MaxLength > corrector.MaxSegmentLength {
		return nil, invalid("maxLength must be between 1 and %d", corrector.MaxSegmentLength)
	}
	maxLength := req.MaxLength
	if maxLength == 0 {
		maxLength = s.config.MaxSegmentLength
	}

	return corrector.SegmentAndCorrect(ctx, req.Text, maxLength, s.orchestrator(onProgress)), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid request body: %v", err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if verr, ok := asValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation", Message: verr.msg})
		return
	}
	s.logger.Error("Request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
