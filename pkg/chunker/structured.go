package chunker

import (
	"regexp"
	"strings"
)

var (
	// 제1조, 제 3 장, 제2조의2, Article 5, Chapter 2 ...
	articleMarker = regexp.MustCompile(`^\s*(?:제\s*\d+\s*(?:조|장|절|편|관)(?:\s*의\s*\d+)?|(?:Article|ARTICLE|Art\.|Chapter|CHAPTER)\s+\d+)`)

	// 1. / 2.1 / 1.2.3. / IV. / Chapter 3 / Section 2.1 / 제1장, followed by header text.
	// A lone number needs its dot so "100 people attended" stays prose.
	sectionHeader = regexp.MustCompile(`^(?:(?:Chapter|CHAPTER|Section|SECTION)\s+(?:\d+(?:\.\d+)*|[IVXLC]+)\.?|제\s*\d+\s*[장절]|\d{1,3}(?:\.\d{1,3})+\.?|\d{1,3}\.|[IVXLC]{1,7}\.)\s+\S`)

	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Article keeps legal provisions whole: one unit per article or chapter
// marker, small units packed together up to the budget.
type Article struct {
	maxChunkSize int
	fallback     *Recursive
}

func NewArticle(maxChunkSize int) *Article {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &Article{
		maxChunkSize: maxChunkSize,
		fallback:     NewRecursive(maxChunkSize, 0),
	}
}

func (a *Article) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	units, found := splitUnits(text, articleMarker.MatchString)
	if !found {
		return a.fallback.Chunk(text)
	}
	return mergeUnits(units, a.maxChunkSize, a.fallback)
}

// Header chunks papers and reports along numbered section headers after
// dropping repeated page headers and footers.
type Header struct {
	opts        Options
	overlapping *Recursive
	plain       *Recursive
}

func NewHeader(opts Options) *Header {
	opts = opts.withDefaults()
	return &Header{
		opts:        opts,
		overlapping: NewRecursive(opts.MaxChunkSize, opts.OverlapSize),
		plain:       NewRecursive(opts.MaxChunkSize, 0),
	}
}

func (h *Header) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	cleaned := h.stripBoilerplate(text)
	units, found := splitUnits(cleaned, h.isHeader)
	if !found {
		return h.overlapping.Chunk(cleaned)
	}
	return mergeUnits(units, h.opts.MaxChunkSize, h.plain)
}

func (h *Header) isHeader(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || runeLen(line) > h.opts.HeaderMaxLength {
		return false
	}
	return sectionHeader.MatchString(line)
}

// stripBoilerplate removes short lines that repeat often enough to be page
// furniture. If nothing would survive, text is returned unchanged.
func (h *Header) stripBoilerplate(text string) string {
	lines := strings.Split(text, "\n")

	counts := make(map[string]int)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && runeLen(trimmed) <= h.opts.BoilerplateMaxLineLength {
			counts[trimmed]++
		}
	}

	threshold := max(h.opts.BoilerplateMinRepeats, int(float64(len(lines))*h.opts.BoilerplateLineRatio))
	boilerplate := make(map[string]bool)
	for line, n := range counts {
		if n >= threshold {
			boilerplate[line] = true
		}
	}
	if len(boilerplate) == 0 {
		return text
	}

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if !boilerplate[strings.TrimSpace(line)] {
			kept = append(kept, line)
		}
	}
	cleaned := strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(kept, "\n"), "\n\n"))
	if cleaned == "" {
		return text
	}
	return cleaned
}

// splitUnits starts a new unit at every line for which isMarker holds. Lines
// before the first marker form their own unit.
func splitUnits(text string, isMarker func(string) bool) (units []string, found bool) {
	var current []string
	flush := func() {
		if unit := strings.TrimSpace(strings.Join(current, "\n")); unit != "" {
			units = append(units, unit)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if isMarker(line) {
			found = true
			flush()
		}
		current = append(current, line)
	}
	flush()

	return units, found
}

// mergeUnits re-splits oversized units and greedily packs neighbours joined
// by a blank line while they fit in maxChunkSize.
func mergeUnits(units []string, maxChunkSize int, splitter *Recursive) ([]string, error) {
	var (
		chunks  []string
		current string
	)
	for _, unit := range units {
		parts := []string{unit}
		if runeLen(unit) > maxChunkSize {
			var err error
			if parts, err = splitter.Chunk(unit); err != nil {
				return nil, err
			}
		}

		for _, part := range parts {
			switch {
			case current == "":
				current = part
			case runeLen(current)+2+runeLen(part) <= maxChunkSize:
				current += "\n\n" + part
			default:
				chunks = append(chunks, current)
				current = part
			}
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks, nil
}
