// Package htmltext turns an HTML page into plain text the chunkers understand.
package htmltext

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	noiseSelector = "script, style, noscript, nav, header, footer"
	blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, table"
)

// Try to find main content area before falling back to body.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".documentation",
	"#documentation",
}

// Extract returns the readable text of an HTML document. Blocks are separated
// by a blank line and every table becomes a "[Table N]" marker followed by CSV
// rows, which is the input format of the sheet chunker.
func Extract(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	root := mainContent(doc)

	var blocks []string
	tables := 0
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are already part of their parent's text.
		if s.ParentsUntilSelection(root).Filter(blockSelector).Length() > 0 {
			return
		}

		if goquery.NodeName(s) == "table" {
			tables++
			if block := renderTable(s, tables); block != "" {
				blocks = append(blocks, block)
			}
			return
		}

		var text string
		if goquery.NodeName(s) == "pre" {
			text = strings.TrimSpace(s.Text())
		} else {
			text = collapse(s.Text())
		}
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return collapse(root.Text()), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			return selected.First()
		}
	}
	return doc.Find("body")
}

func renderTable(table *goquery.Selection, n int) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	rows := 0
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(table) {
			return
		}
		var record []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			record = append(record, collapse(cell.Text()))
		})
		if len(record) == 0 {
			return
		}
		w.Write(record)
		rows++
	})
	w.Flush()

	if rows == 0 || w.Error() != nil {
		return ""
	}
	return fmt.Sprintf("[Table %d]\n%s", n, strings.TrimRight(b.String(), "\n"))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
