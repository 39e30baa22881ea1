package minutes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/stenoworks/minuted/internal/gemini"
	"github.com/stenoworks/minuted/internal/transcript"
)

// errorNote is the sentinel emitted when note generation fails for a section.
// The run carries on; one bad section never aborts the whole report.
const errorNote = "Error generating notes"

// Notewriter turns one finalized context at a time into a Section with
// 3-8 short bullet notes.
type Notewriter struct {
	llm    *gemini.Client
	logger *slog.Logger
}

func NewNotewriter(llm *gemini.Client, logger *slog.Logger) *Notewriter {
	return &Notewriter{llm: llm, logger: logger}
}

type notesResponse struct {
	Notes []string `json:"notes"`
}

// SectionSummary generates notes for the segments falling inside the
// context's time bounds. Segments straddling a boundary are excluded from
// both neighbouring sections.
func (n *Notewriter) SectionSummary(ctx context.Context, c Context, segments []transcript.Segment) Section {
	section := Section{
		Name:      c.Name,
		StartTime: round2(c.FromTime),
		EndTime:   round2(c.EndTime),
	}

	var inside []transcript.Segment
	for _, seg := range segments {
		if seg.Start >= c.FromTime && seg.End <= c.EndTime {
			inside = append(inside, seg)
		}
	}

	prompt := fmt.Sprintf(sectionNotesPrompt, c.Name, c.FromTime, c.EndTime, transcript.FormatSegments(inside))

	raw, err := n.llm.Generate(ctx, prompt)
	if err != nil {
		n.logger.Error("section notes call failed", "section", c.Name, "error", err)
		section.Notes = []string{errorNote}
		return section
	}

	var resp notesResponse
	if err := json.Unmarshal([]byte(gemini.CleanResponse(raw)), &resp); err != nil {
		n.logger.Error("invalid section notes response", "section", c.Name, "error", err)
		section.Notes = []string{errorNote}
		return section
	}

	section.Notes = resp.Notes
	return section
}

// round2 rounds presentation timestamps to 2 decimal places. Segment
// selection above uses the raw bounds.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
