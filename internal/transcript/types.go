package transcript

import (
	"fmt"
	"strings"
)

// Word is a single word with its timing, as produced by the transcriber.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Segment is one transcribed utterance span. Segments are immutable once
// produced and are assumed ordered by start time and non-overlapping.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Chunk is a contiguous group of segments bounded by a target duration,
// the unit of LLM prompting during context mapping.
type Chunk struct {
	Segments  []Segment
	StartTime float64
	EndTime   float64
}

// FormatSegments renders segments as timestamped transcript lines suitable
// for inclusion in a prompt, e.g. "[12.5s - 14.2s] we should ship it".
func FormatSegments(segs []Segment) string {
	var sb strings.Builder
	for _, seg := range segs {
		fmt.Fprintf(&sb, "[%gs - %gs] %s\n", seg.Start, seg.End, seg.Text)
	}
	return sb.String()
}

// FullText joins all segment texts into the flat transcript string.
func FullText(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
