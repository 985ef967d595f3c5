package processor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	horizontalRuns = regexp.MustCompile(`[ \t]+`)
	newlineRuns    = regexp.MustCompile(`\n{3,}`)

	spaceAfterParen  = regexp.MustCompile(`\([ \t]+`)
	spaceBeforeParen = regexp.MustCompile(`[ \t]+\)`)
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([,.])`)
	repeatedPeriods  = regexp.MustCompile(`\.{2,}`)
	repeatedBangs    = regexp.MustCompile(`!{2,}`)
	repeatedQuestion = regexp.MustCompile(`\?{2,}`)
)

// Normalize cleans extracted text before chunking. It returns the rune length
// of the raw input together with the normalized text. Normalize is idempotent.
func Normalize(text string) (int, string) {
	originalLength := utf8.RuneCountInString(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = dedupParagraphs(text)
	text = stripCharacters(text)
	text = normalizeWhitespace(text)
	text = cleanPunctuation(text)

	// punctuation and whitespace cleanup can make two paragraphs equal
	return originalLength, dedupParagraphs(text)
}

func dedupParagraphs(text string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n\n")
}

// disallowed reports control characters other than tab and newline, the
// replacement character and invisible format characters (zero-width
// spaces and joiners, BOM, soft hyphen).
func disallowed(r rune) bool {
	switch {
	case r == '\t' || r == '\n':
		return false
	case r == utf8.RuneError:
		return true
	case unicode.IsControl(r):
		return true
	case unicode.Is(unicode.Cf, r):
		return true
	}
	return false
}

func exoticSpace(r rune) rune {
	if r != ' ' && r != '\t' && r != '\n' && unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func stripCharacters(text string) string {
	// transformers carry state, so each call builds its own chain
	t := transform.Chain(runes.Map(exoticSpace), runes.Remove(runes.Predicate(disallowed)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func normalizeWhitespace(text string) string {
	text = horizontalRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func cleanPunctuation(text string) string {
	text = spaceAfterParen.ReplaceAllString(text, "(")
	text = spaceBeforeParen.ReplaceAllString(text, ")")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = repeatedPeriods.ReplaceAllString(text, ".")
	text = repeatedBangs.ReplaceAllString(text, "!")
	return repeatedQuestion.ReplaceAllString(text, "?")
}
