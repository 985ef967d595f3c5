package chunker_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/pkg/chunker"
)

func TestArticle_TwoArticles(t *testing.T) {
	text := "제1조 내용...\n제2조 내용..."

	tests := []struct {
		name    string
		maxSize int
		want    []string
	}{
		{
			name:    "merged when they fit",
			maxSize: 4000,
			want:    []string{"제1조 내용...\n\n제2조 내용..."},
		},
		{
			name:    "separate when merging overflows",
			maxSize: 10,
			want:    []string{"제1조 내용...", "제2조 내용..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := chunker.NewArticle(tt.maxSize).Chunk(text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, chunks)

			joined := strings.ReplaceAll(strings.Join(chunks, "\n"), "\n\n", "\n")
			assert.Equal(t, text, joined)
		})
	}
}

func TestArticle_KeepsProvisionsTogether(t *testing.T) {
	var b strings.Builder
	b.WriteString("부칙에 앞선 전문입니다.\n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, "제%d조(목적)\n", i)
		b.WriteString("① 이 법은 다음 사항을 규정한다.\n② 세부 사항은 대통령령으로 정한다.\n")
	}

	chunks, err := chunker.NewArticle(120).Chunk(b.String())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 120)
		// a provision body never starts a chunk without its marker
		assert.False(t, strings.HasPrefix(chunk, "①"), chunk)
	}
	assert.Equal(t, "부칙에 앞선 전문입니다.", strings.SplitN(chunks[0], "\n", 2)[0])
}

func TestArticle_OversizedArticleIsResplit(t *testing.T) {
	body := strings.Repeat("이 조항은 매우 길다. ", 40)
	text := "Article 1\n" + body + "\nArticle 2\nshort"

	chunks, err := chunker.NewArticle(100).Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
	}
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "Article 2\nshort"))
}

func TestArticle_FallsBackWithoutMarkers(t *testing.T) {
	para := strings.Repeat("plain words without structure ", 10)
	text := para + "\n\n" + para

	chunks, err := chunker.NewArticle(100).Chunk(text)
	require.NoError(t, err)

	// A naive paragraph split would yield two oversized chunks.
	assert.Greater(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
	}
	assert.Equal(t, stripSpace(text), stripSpace(strings.Join(chunks, "")))
}

func TestHeader_RemovesBoilerplate(t *testing.T) {
	var b strings.Builder
	for page := 1; page <= 4; page++ {
		b.WriteString("Journal of Testing Vol. 3\n")
		fmt.Fprintf(&b, "%d. Section %d\n", page, page)
		fmt.Fprintf(&b, "Body text of section %d goes here.\n", page)
		b.WriteString("Confidential draft\n")
	}

	chunks, err := chunker.NewHeader(chunker.Options{MaxChunkSize: 60}).Chunk(b.String())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	joined := strings.Join(chunks, "\n")
	assert.NotContains(t, joined, "Journal of Testing")
	assert.NotContains(t, joined, "Confidential draft")
	assert.Contains(t, joined, "1. Section 1\nBody text of section 1 goes here.")
	assert.Contains(t, joined, "4. Section 4\nBody text of section 4 goes here.")
}

func TestHeader_UnitPerSection(t *testing.T) {
	text := strings.Join([]string{
		"Abstract line.",
		"I. Introduction",
		strings.Repeat("intro ", 10),
		"2.1 Methods",
		strings.Repeat("method ", 10),
		"Chapter 3 Results",
		strings.Repeat("result ", 10),
	}, "\n")

	chunks, err := chunker.NewHeader(chunker.Options{MaxChunkSize: 95}).Chunk(text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.True(t, strings.HasPrefix(chunks[0], "Abstract line.\n\nI. Introduction"))
	assert.True(t, strings.HasPrefix(chunks[1], "2.1 Methods"))
	assert.True(t, strings.HasPrefix(chunks[2], "Chapter 3 Results"))
}

func TestHeader_NumberedProseIsNotAHeader(t *testing.T) {
	text := "Intro line.\n100 people attended the event.\n2024 was a busy year."

	chunks, err := chunker.NewHeader(chunker.Options{MaxChunkSize: 200}).Chunk(text)
	require.NoError(t, err)
	assert.Equal(t, []string{text}, chunks)
}

func TestHeader_FallsBackToOverlap(t *testing.T) {
	text := strings.Repeat("No numbered headings in this prose at all. ", 20)

	chunks, err := chunker.NewHeader(chunker.Options{MaxChunkSize: 100, OverlapSize: 15}).Chunk(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	window := strings.TrimLeft(lastRunes(chunks[0], 15), " ")
	assert.True(t, strings.HasPrefix(chunks[1], window))
}

func TestForDocType(t *testing.T) {
	opts := chunker.Options{MaxChunkSize: 500}

	assert.IsType(t, &chunker.Recursive{}, chunker.ForDocType(models.DocTypeGeneric, opts))
	assert.IsType(t, &chunker.Article{}, chunker.ForDocType(models.DocTypeLegal, opts))
	assert.IsType(t, &chunker.Header{}, chunker.ForDocType(models.DocTypePaper, opts))
	assert.IsType(t, &chunker.Sheet{}, chunker.ForDocType(models.DocTypeTabular, opts))
	assert.IsType(t, &chunker.Recursive{}, chunker.ForDocType(models.DocType("poetry"), opts))
}
