package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xhad/docprep/pkg/processor"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"duplicate paragraphs", "Hello world.\n\nHello world.\n\nFoo bar.", "Hello world.\n\nFoo bar."},
		{"dedup is case sensitive", "Intro\n\nintro", "Intro\n\nintro"},
		{"control and zero width", "a\x00b\u200bc\ufeff\ufffdd\x07", "abcd"},
		{"exotic spaces", "a\u00a0b\u3000c\u2009d", "a b c d"},
		{"tabs and spaces", "a \t  b\t\tc", "a b c"},
		{"blank line runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"whitespace only lines", "a\n   \n \t \n\nb", "a\n\nb"},
		{"trim lines", "  a  \n  b  ", "a\nb"},
		{"crlf", "a\r\nb\r\n\r\nc", "a\nb\n\nc"},
		{"repeated punctuation", "Wait... what?! Really??? Yes!!!", "Wait. what?! Really? Yes!"},
		{"parentheses", "see ( the note ) here", "see (the note) here"},
		{"space before comma and period", "one , two .", "one, two."},
		{"spaced dots collapse", "end . .", "end."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := processor.Normalize(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_OriginalLengthCountsRunes(t *testing.T) {
	n, _ := processor.Normalize("가나다  라")
	assert.Equal(t, 6, n)
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello world.\n\nHello world.\n\nFoo bar.",
		"Hi .\n\nHi.\n\nHi .",
		"  제1조 ( 목적 ) 이 법은...  \n\n\n\n제2조 , 정의 !!\n\u200b",
		"a\tb\n \n\n\n( x )\n\n( x)",
		"line one\nline two..\n\nline one\nline two.",
	}

	for _, in := range inputs {
		_, once := processor.Normalize(in)
		_, twice := processor.Normalize(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}
