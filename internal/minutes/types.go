package minutes

import "time"

// MeetingType classifies a transcript and controls which report sections
// are generated.
type MeetingType string

const (
	MeetingRegular  MeetingType = "REGULAR_MEETING"
	MeetingIncident MeetingType = "INCIDENT_REPORT"
)

// Context status values while mapping.
const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// Context is one contiguous topical span of the transcript. It is mutable
// only while held open by the mapper; once appended to the finalized list it
// is never touched again.
type Context struct {
	Name           string  `json:"name"`
	FromTime       float64 `json:"from_time"`
	EndTime        float64 `json:"end_time"`
	Status         string  `json:"status"`
	Summary        string  `json:"summary,omitempty"`
	IsContinuation bool    `json:"is_continuation,omitempty"`
}

// Section is a finalized context plus its generated notes.
type Section struct {
	Name      string   `json:"section_name"`
	StartTime float64  `json:"start_time"`
	EndTime   float64  `json:"end_time"`
	Notes     []string `json:"notes"`
}

// ActionItemGroup holds the action items assigned to one person or team.
type ActionItemGroup struct {
	ActionFor   string   `json:"action_for"`
	ActionItems []string `json:"action_items"`
}

// IncidentTimelineEntry is one period of the incident timeline.
type IncidentTimelineEntry struct {
	TimePeriod string   `json:"time_period"`
	Events     []string `json:"events"`
}

// IncidentConcern groups concerns under one category.
type IncidentConcern struct {
	Category string   `json:"category"`
	Details  []string `json:"details"`
}

// IncidentParty is a person involved in the incident under investigation.
type IncidentParty struct {
	Name        string `json:"name"`
	Involvement string `json:"involvement"`
}

// IncidentReport is the formal investigation extension generated for
// INCIDENT_REPORT transcripts.
type IncidentReport struct {
	Background         string                  `json:"background"`
	KeyFacts           []string                `json:"key_facts"`
	Timeline           []IncidentTimelineEntry `json:"timeline"`
	ConcernsIdentified []IncidentConcern       `json:"concerns_identified"`
	EvidenceCollected  []string                `json:"evidence_collected"`
	PartiesInvolved    []IncidentParty         `json:"parties_involved"`
}

// Minutes is the terminal, persisted report artifact.
type Minutes struct {
	SessionID        string            `json:"session_id"`
	MeetingType      MeetingType       `json:"meeting_type"`
	GeneratedAt      time.Time         `json:"generated_at"`
	TranscriptLength int               `json:"transcript_length"`
	Sections         []Section         `json:"sections"`
	Summary          string            `json:"summary"`
	Conclusion       string            `json:"conclusion"`
	ActionItems      []ActionItemGroup `json:"action_items"`
	IncidentReport   *IncidentReport   `json:"incident_report,omitempty"`
}

// ContextCache is the persisted context mapping for a session, letting
// repeated minutes generation skip the mapping pass when the meeting type
// is unchanged or auto-detected.
type ContextCache struct {
	MeetingType MeetingType `json:"meeting_type"`
	Contexts    []Context   `json:"contexts"`
	GeneratedAt time.Time   `json:"generated_at"`
}
