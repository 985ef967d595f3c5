package chunker

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// [Sales], [Sheet: Sales], [시트: 매출]
var sheetMarker = regexp.MustCompile(`^\[(?:(?:Sheet|SHEET|시트)\s*:\s*)?([^\[\]]+)\]$`)

// Sheet renders comma separated sheets as markdown tables. Every chunk carries
// the sheet title and header row so it can be read on its own.
type Sheet struct {
	maxChunkSize int
	fallback     *Recursive
}

func NewSheet(maxChunkSize int) *Sheet {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &Sheet{
		maxChunkSize: maxChunkSize,
		fallback:     NewRecursive(maxChunkSize, 0),
	}
}

type sheet struct {
	name string
	body []string
}

func (s *Sheet) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var chunks []string
	for i, sh := range splitSheets(text) {
		rows, err := parseRows(strings.Join(sh.body, "\n"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse sheet %q: %w", sh.name, err)
		}
		if len(rows) == 0 {
			continue
		}
		title := sh.name
		if title == "" {
			title = fmt.Sprintf("Sheet%d", i+1)
		}
		chunks = append(chunks, s.chunkSheet(title, rows)...)
	}

	if len(chunks) == 0 {
		return s.fallback.Chunk(text)
	}
	return chunks, nil
}

func (s *Sheet) chunkSheet(title string, rows [][]string) []string {
	width := len(rows[0])
	head := renderRow(rows[0], width) + "\n" + separatorRow(width)
	open := func(t string) string {
		return "### " + t + "\n\n" + head
	}

	var chunks []string
	current := open(title)
	inChunk := 0
	for _, row := range rows[1:] {
		line := renderRow(row, width)
		if inChunk > 0 && runeLen(current)+1+runeLen(line) > s.maxChunkSize {
			chunks = append(chunks, current)
			current = open(title + " (continued)")
			inChunk = 0
		}
		current += "\n" + line
		inChunk++
	}
	return append(chunks, current)
}

func splitSheets(text string) []sheet {
	var sheets []sheet
	current := sheet{}
	for _, line := range strings.Split(text, "\n") {
		if m := sheetMarker.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if current.name != "" || strings.TrimSpace(strings.Join(current.body, "")) != "" {
				sheets = append(sheets, current)
			}
			current = sheet{name: strings.TrimSpace(m[1])}
			continue
		}
		current.body = append(current.body, line)
	}
	return append(sheets, current)
}

// parseRows reads body as CSV. Rows whose cells are all blank are dropped.
func parseRows(body string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(body))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blankRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func blankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func renderRow(cells []string, width int) string {
	parts := make([]string, max(width, len(cells)))
	for i := range parts {
		if i < len(cells) {
			parts[i] = escapeCell(cells[i])
		}
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

func separatorRow(width int) string {
	parts := make([]string, width)
	for i := range parts {
		parts[i] = "---"
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

var cellEscaper = strings.NewReplacer("\r\n", " ", "\n", " ", "|", `\|`)

func escapeCell(cell string) string {
	return cellEscaper.Replace(strings.TrimSpace(cell))
}
