package processor

import (
	"strings"
	"unicode/utf8"
)

// Segment splits text into pieces of at most maxLength runes for the
// correction pipeline. Lines are kept whole where possible; a line longer than
// maxLength is cut into fixed-width slices. Blank segments are never returned.
func Segment(text string, maxLength int) []string {
	if maxLength < 1 {
		maxLength = 1
	}

	var (
		segments []string
		buf      strings.Builder
		bufLen   int
		buffered bool
	)
	flush := func() {
		if buffered && strings.TrimSpace(buf.String()) != "" {
			segments = append(segments, buf.String())
		}
		buf.Reset()
		bufLen = 0
		buffered = false
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if lineLen > maxLength {
			flush()
			runes := []rune(line)
			for start := 0; start < len(runes); start += maxLength {
				piece := string(runes[start:min(start+maxLength, len(runes))])
				if strings.TrimSpace(piece) != "" {
					segments = append(segments, piece)
				}
			}
			continue
		}

		if buffered && bufLen+1+lineLen > maxLength {
			flush()
		}
		if buffered {
			buf.WriteByte('\n')
			bufLen++
		}
		buf.WriteString(line)
		bufLen += lineLen
		buffered = true
	}
	flush()

	return segments
}
