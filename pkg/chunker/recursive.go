package chunker

import (
	"strings"
)

// separators are tried in order; the empty separator cuts at the character level.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Recursive splits text on progressively finer separators and carries a tail
// of each emitted chunk into the next one.
type Recursive struct {
	maxChunkSize int
	overlapSize  int
}

// NewRecursive creates a recursive chunker. An overlap that does not fit
// inside the chunk budget is reduced to a quarter of it.
func NewRecursive(maxChunkSize, overlapSize int) *Recursive {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if overlapSize < 0 {
		overlapSize = 0
	}
	if overlapSize >= maxChunkSize {
		overlapSize = maxChunkSize / 4
	}
	return &Recursive{maxChunkSize: maxChunkSize, overlapSize: overlapSize}
}

func (r *Recursive) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return r.split(text, 0), nil
}

func (r *Recursive) split(text string, tier int) []string {
	if runeLen(text) <= r.maxChunkSize {
		return appendChunk(nil, text)
	}

	sep := separators[tier]
	if sep == "" {
		return hardCut(text, r.maxChunkSize)
	}
	glue := strings.TrimLeft(sep, ".")

	var (
		chunks []string
		buf    string
	)
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if runeLen(buf)+runeLen(piece) <= r.maxChunkSize {
			buf += piece
			continue
		}

		if runeLen(piece) > r.maxChunkSize {
			chunks = appendChunk(chunks, buf)
			buf = ""
			chunks = append(chunks, r.split(piece, tier+1)...)
			continue
		}

		emitted := strings.TrimSpace(buf)
		chunks = appendChunk(chunks, emitted)
		buf = r.seed(emitted, glue, piece) + piece
	}

	return appendChunk(chunks, buf)
}

// seed returns the overlap window that opens the buffer after prev was
// emitted. The window shrinks so that window+glue+next stays in budget.
func (r *Recursive) seed(prev, glue, next string) string {
	if r.overlapSize == 0 || prev == "" {
		return ""
	}
	room := r.maxChunkSize - runeLen(glue) - runeLen(next)
	window := trimLeftSpace(lastRunes(prev, min(r.overlapSize, room)))
	if window == "" {
		return ""
	}
	return window + glue
}
