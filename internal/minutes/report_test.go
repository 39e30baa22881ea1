package minutes

import (
	"context"
	"strings"
	"testing"

	"github.com/stenoworks/minuted/internal/transcript"
)

func sampleSections() []Section {
	return []Section{
		{Name: "Budget Review", StartTime: 0, EndTime: 300, Notes: []string{"Q3 budget approved"}},
		{Name: "Hiring Plan", StartTime: 300, EndTime: 600, Notes: []string{"Two backend roles opened"}},
	}
}

func TestAssemble_RegularMeeting(t *testing.T) {
	llm, log := scriptedClient(t, []scriptedCall{
		{text: `{"summary":"Budget and hiring were settled.","conclusion":"Plan approved.","action_items":[{"action_for":"Finance","action_items":["Circulate forecast"]}]}`},
	})
	a := NewAssembler(llm, discardLogger())

	body, err := a.Assemble(context.Background(), sampleSections(), MeetingRegular)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Summary == "" || body.Conclusion == "" {
		t.Errorf("missing summary/conclusion: %+v", body)
	}
	if len(body.ActionItems) != 1 || body.ActionItems[0].ActionFor != "Finance" {
		t.Errorf("action items = %+v", body.ActionItems)
	}
	if body.IncidentReport != nil {
		t.Error("regular meeting should not carry an incident report")
	}
	if log.count() != 1 {
		t.Errorf("expected 1 LLM call, got %d", log.count())
	}

	// The digest must mention each section with its notes.
	if !strings.Contains(log.prompt(0), "Budget Review (0s - 300s):") {
		t.Errorf("digest missing section header:\n%s", log.prompt(0))
	}
	if !strings.Contains(log.prompt(0), "  - Q3 budget approved") {
		t.Errorf("digest missing note line:\n%s", log.prompt(0))
	}
}

func TestAssemble_IncidentReport(t *testing.T) {
	llm, log := scriptedClient(t, []scriptedCall{
		{text: `{"summary":"s","conclusion":"c","action_items":[]}`},
		{text: "```json\n" + `{"background":"An incident occurred.","key_facts":["fact"],"timeline":[{"time_period":"Morning","events":["e1"]}],"concerns_identified":[{"category":"Policy Violations","details":["d"]}],"evidence_collected":["ev"],"parties_involved":[{"name":"Jordan Smith (Nurse)","involvement":"present"}]}` + "\n```"},
	})
	a := NewAssembler(llm, discardLogger())

	body, err := a.Assemble(context.Background(), sampleSections(), MeetingIncident)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.IncidentReport == nil {
		t.Fatal("expected incident report")
	}
	if body.IncidentReport.Background != "An incident occurred." {
		t.Errorf("background = %q", body.IncidentReport.Background)
	}
	if len(body.IncidentReport.Timeline) != 1 || body.IncidentReport.Timeline[0].TimePeriod != "Morning" {
		t.Errorf("timeline = %+v", body.IncidentReport.Timeline)
	}
	if log.count() != 2 {
		t.Errorf("expected 2 LLM calls for incident meeting, got %d", log.count())
	}
}

func TestAssemble_InvalidFinalJSON(t *testing.T) {
	llm, _ := scriptedClient(t, []scriptedCall{
		{text: "no json here"},
	})
	a := NewAssembler(llm, discardLogger())

	if _, err := a.Assemble(context.Background(), sampleSections(), MeetingRegular); err == nil {
		t.Fatal("expected error for unparseable final summary")
	}
}

func TestDetectMeetingType(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  MeetingType
	}{
		{"exact incident", "INCIDENT_REPORT", MeetingIncident},
		{"exact regular", "REGULAR_MEETING", MeetingRegular},
		{"incident in prose", "This transcript is an incident report.", MeetingIncident},
		{"unrelated reply", "hard to say", MeetingRegular},
	}

	segments := []transcript.Segment{{Start: 0, End: 1, Text: "hello"}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm, _ := scriptedClient(t, []scriptedCall{{text: tt.reply}})
			a := NewAssembler(llm, discardLogger())
			if got := a.DetectMeetingType(context.Background(), segments); got != tt.want {
				t.Errorf("DetectMeetingType = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectMeetingType_DefaultsOnFailure(t *testing.T) {
	llm, _ := scriptedClient(t, []scriptedCall{{status: 500}})
	a := NewAssembler(llm, discardLogger())

	if got := a.DetectMeetingType(context.Background(), []transcript.Segment{{Text: "x"}}); got != MeetingRegular {
		t.Errorf("DetectMeetingType on failure = %v, want regular", got)
	}
}

func TestDetectMeetingType_SamplesFirstTenSegments(t *testing.T) {
	llm, log := scriptedClient(t, []scriptedCall{{text: "REGULAR_MEETING"}})
	a := NewAssembler(llm, discardLogger())

	var segments []transcript.Segment
	for i := 0; i < 15; i++ {
		segments = append(segments, transcript.Segment{Text: "seg" + string(rune('a'+i))})
	}
	a.DetectMeetingType(context.Background(), segments)

	p := log.prompt(0)
	if !strings.Contains(p, "segj") {
		t.Errorf("prompt should include the 10th segment:\n%s", p)
	}
	if strings.Contains(p, "segk") {
		t.Errorf("prompt should not include the 11th segment:\n%s", p)
	}
}
