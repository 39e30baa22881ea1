package minutes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stenoworks/minuted/internal/gemini"
	"github.com/stenoworks/minuted/internal/transcript"
)

// typeDetectionSegments is how many leading segments feed the meeting type
// classifier prompt.
const typeDetectionSegments = 10

// Assembler aggregates per-section notes into the overall summary,
// conclusion and action items, plus the incident extension when warranted.
type Assembler struct {
	llm    *gemini.Client
	logger *slog.Logger
}

func NewAssembler(llm *gemini.Client, logger *slog.Logger) *Assembler {
	return &Assembler{llm: llm, logger: logger}
}

// ReportBody is the assembled top-level portion of the minutes.
type ReportBody struct {
	Summary        string            `json:"summary"`
	Conclusion     string            `json:"conclusion"`
	ActionItems    []ActionItemGroup `json:"action_items"`
	IncidentReport *IncidentReport   `json:"-"`
}

// Assemble produces the overall summary from the section notes. For incident
// reports it issues one further call to build the formal incident structure.
// Failures here are fatal to the run and surface at the job level.
func (a *Assembler) Assemble(ctx context.Context, sections []Section, meetingType MeetingType) (*ReportBody, error) {
	digest := SectionsDigest(sections)

	raw, err := a.llm.Generate(ctx, fmt.Sprintf(finalSummaryPrompt, digest))
	if err != nil {
		return nil, fmt.Errorf("final summary: %w", err)
	}

	var body ReportBody
	if err := json.Unmarshal([]byte(gemini.CleanResponse(raw)), &body); err != nil {
		return nil, fmt.Errorf("parse final summary: %w", err)
	}

	if meetingType == MeetingIncident {
		a.logger.Info("generating incident report section")
		raw, err := a.llm.Generate(ctx, fmt.Sprintf(incidentReportPrompt, digest))
		if err != nil {
			return nil, fmt.Errorf("incident report: %w", err)
		}
		var inc IncidentReport
		if err := json.Unmarshal([]byte(gemini.CleanResponse(raw)), &inc); err != nil {
			return nil, fmt.Errorf("parse incident report: %w", err)
		}
		body.IncidentReport = &inc
	}

	return &body, nil
}

// DetectMeetingType classifies the transcript from its opening segments.
// Any failure defaults to a regular meeting.
func (a *Assembler) DetectMeetingType(ctx context.Context, segments []transcript.Segment) MeetingType {
	sample := segments
	if len(sample) > typeDetectionSegments {
		sample = sample[:typeDetectionSegments]
	}

	var sb strings.Builder
	for _, seg := range sample {
		sb.WriteString(seg.Text)
		sb.WriteString(" ")
	}

	raw, err := a.llm.Generate(ctx, fmt.Sprintf(meetingTypePrompt, sb.String()))
	if err != nil {
		a.logger.Warn("meeting type detection failed, defaulting to regular", "error", err)
		return MeetingRegular
	}

	if strings.Contains(strings.ToUpper(strings.TrimSpace(raw)), "INCIDENT") {
		return MeetingIncident
	}
	return MeetingRegular
}

// SectionsDigest flattens all section notes into the textual digest fed to
// the final summary and incident prompts.
func SectionsDigest(sections []Section) string {
	var sb strings.Builder
	for _, sec := range sections {
		fmt.Fprintf(&sb, "\n%s (%gs - %gs):\n", sec.Name, sec.StartTime, sec.EndTime)
		for _, note := range sec.Notes {
			fmt.Fprintf(&sb, "  - %s\n", note)
		}
	}
	return sb.String()
}
