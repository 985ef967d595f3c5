package corrector

import (
	"context"

	"github.com/xhad/docprep/pkg/processor"
)

// MaxSegmentLength is the largest segment the correction service accepts.
const MaxSegmentLength = 500

// SegmentAndCorrect cuts text into segments of at most maxLength runes
// (clamped to [1, MaxSegmentLength]; zero selects MaxSegmentLength) and runs
// them through o.
func SegmentAndCorrect(ctx context.Context, text string, maxLength int, o *Orchestrator) []string {
	switch {
	case maxLength == 0 || maxLength > MaxSegmentLength:
		maxLength = MaxSegmentLength
	case maxLength < 1:
		maxLength = 1
	}
	return o.CorrectSegments(ctx, processor.Segment(text, maxLength))
}
