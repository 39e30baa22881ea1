package transcript

import (
	"strings"
	"testing"
)

func TestChunkByTime_Empty(t *testing.T) {
	chunks := ChunkByTime(nil, 600)
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for nil segments, got %d", len(chunks))
	}
}

func TestChunkByTime_SingleChunkUnderDuration(t *testing.T) {
	segs := []Segment{
		{Start: 0, End: 5, Text: "hello"},
		{Start: 5, End: 12, Text: "world"},
	}
	chunks := ChunkByTime(segs, 600)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].StartTime != 0 || chunks[0].EndTime != 12 {
		t.Errorf("chunk bounds = [%g, %g], want [0, 12]", chunks[0].StartTime, chunks[0].EndTime)
	}
}

func TestChunkByTime_ClosesOnDuration(t *testing.T) {
	// The segment ending at 605s pushes the chunk past 600s and closes it.
	segs := []Segment{
		{Start: 0, End: 5, Text: "intro"},
		{Start: 5, End: 300, Text: "budget talk"},
		{Start: 300, End: 605, Text: "budget talk cont"},
		{Start: 605, End: 610, Text: "wrap up"},
	}
	chunks := ChunkByTime(segs, 600)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].StartTime != 0 || chunks[0].EndTime != 605 {
		t.Errorf("chunk 0 bounds = [%g, %g], want [0, 605]", chunks[0].StartTime, chunks[0].EndTime)
	}
	if chunks[1].StartTime != 605 || chunks[1].EndTime != 610 {
		t.Errorf("chunk 1 bounds = [%g, %g], want [605, 610]", chunks[1].StartTime, chunks[1].EndTime)
	}
	if len(chunks[0].Segments) != 3 || len(chunks[1].Segments) != 1 {
		t.Errorf("segment split = %d/%d, want 3/1", len(chunks[0].Segments), len(chunks[1].Segments))
	}
}

func TestChunkByTime_Coverage(t *testing.T) {
	// Concatenating all chunks must reproduce the input exactly.
	var segs []Segment
	for i := 0; i < 137; i++ {
		start := float64(i) * 17
		segs = append(segs, Segment{ID: i, Start: start, End: start + 17, Text: "seg"})
	}

	chunks := ChunkByTime(segs, 300)

	var got []Segment
	for _, c := range chunks {
		got = append(got, c.Segments...)
	}
	if len(got) != len(segs) {
		t.Fatalf("coverage: got %d segments back, want %d", len(got), len(segs))
	}
	for i := range segs {
		if got[i].ID != segs[i].ID {
			t.Fatalf("segment %d out of order: got id %d", i, got[i].ID)
		}
	}
}

func TestChunkByTime_DurationLowerBound(t *testing.T) {
	var segs []Segment
	for i := 0; i < 50; i++ {
		start := float64(i) * 40
		segs = append(segs, Segment{Start: start, End: start + 40, Text: "seg"})
	}

	const dur = 300.0
	chunks := ChunkByTime(segs, dur)
	for i, c := range chunks[:len(chunks)-1] {
		if c.EndTime-c.StartTime < dur {
			t.Errorf("non-final chunk %d spans %g s, want >= %g", i, c.EndTime-c.StartTime, dur)
		}
	}
}

func TestFormatSegments(t *testing.T) {
	segs := []Segment{
		{Start: 0, End: 2.5, Text: "good morning"},
		{Start: 2.5, End: 4, Text: "let's begin"},
	}
	out := FormatSegments(segs)
	if !strings.Contains(out, "[0s - 2.5s] good morning") {
		t.Errorf("missing first line in:\n%s", out)
	}
	if !strings.Contains(out, "[2.5s - 4s] let's begin") {
		t.Errorf("missing second line in:\n%s", out)
	}
}

func TestFullText(t *testing.T) {
	segs := []Segment{
		{Start: 0, End: 1, Text: " hello "},
		{Start: 1, End: 2, Text: ""},
		{Start: 2, End: 3, Text: "world"},
	}
	if got := FullText(segs); got != "hello world" {
		t.Errorf("FullText = %q, want %q", got, "hello world")
	}
}
