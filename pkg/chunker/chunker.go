package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/internal/types"
)

const (
	DefaultMaxChunkSize = 4000
	DefaultOverlapSize  = 200

	DefaultBoilerplateMaxLineLength = 50
	DefaultBoilerplateMinRepeats    = 3
	DefaultBoilerplateLineRatio     = 0.01
	DefaultHeaderMaxLength          = 100
)

// Options carries the knobs shared by every strategy. Zero values select the
// defaults above; a negative OverlapSize disables overlap.
type Options struct {
	MaxChunkSize int
	OverlapSize  int

	// Page header/footer detection for papers and reports.
	BoilerplateMaxLineLength int
	BoilerplateMinRepeats    int
	BoilerplateLineRatio     float64

	HeaderMaxLength int
}

func (o Options) withDefaults() Options {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = DefaultMaxChunkSize
	}
	if o.OverlapSize == 0 {
		o.OverlapSize = DefaultOverlapSize
	}
	if o.BoilerplateMaxLineLength <= 0 {
		o.BoilerplateMaxLineLength = DefaultBoilerplateMaxLineLength
	}
	if o.BoilerplateMinRepeats <= 0 {
		o.BoilerplateMinRepeats = DefaultBoilerplateMinRepeats
	}
	if o.BoilerplateLineRatio <= 0 {
		o.BoilerplateLineRatio = DefaultBoilerplateLineRatio
	}
	if o.HeaderMaxLength <= 0 {
		o.HeaderMaxLength = DefaultHeaderMaxLength
	}
	return o
}

type factory func(Options) types.Chunker

var strategies = map[models.DocType]factory{
	models.DocTypeGeneric: func(o Options) types.Chunker {
		return NewRecursive(o.MaxChunkSize, o.OverlapSize)
	},
	models.DocTypeLegal: func(o Options) types.Chunker {
		return NewArticle(o.MaxChunkSize)
	},
	models.DocTypePaper: func(o Options) types.Chunker {
		return NewHeader(o)
	},
	models.DocTypeTabular: func(o Options) types.Chunker {
		return NewSheet(o.MaxChunkSize)
	},
}

// ForDocType returns the strategy registered for docType, falling back to the
// generic recursive chunker.
func ForDocType(docType models.DocType, opts Options) types.Chunker {
	opts = opts.withDefaults()
	if f, ok := strategies[docType]; ok {
		return f(opts)
	}
	return strategies[models.DocTypeGeneric](opts)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// lastRunes returns the trailing n runes of s.
func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := len(s); i > 0; {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
		if count == n {
			return s[i:]
		}
	}
	return s
}

// hardCut slices s into pieces of at most n runes.
func hardCut(s string, n int) []string {
	var chunks []string
	runes := []rune(s)
	for start := 0; start < len(runes); start += n {
		end := min(start+n, len(runes))
		chunks = appendChunk(chunks, string(runes[start:end]))
	}
	return chunks
}

func appendChunk(chunks []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func trimLeftSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
