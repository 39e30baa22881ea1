package minutes

import (
	"fmt"
	"strings"

	"github.com/stenoworks/minuted/internal/transcript"
)

const meetingTypePrompt = `Analyze this transcript excerpt and determine if it's a REGULAR_MEETING or INCIDENT_REPORT.

Transcript excerpt:
%s

Respond with ONLY one word: REGULAR_MEETING or INCIDENT_REPORT

REGULAR_MEETING: Normal business meetings, discussions, planning sessions, team meetings
INCIDENT_REPORT: Investigation, incident review, disciplinary meeting, accident report, complaint investigation`

const freshContextPrompt = `Analyze this transcript chunk and identify contexts (distinct topics/discussions).
%s

Current chunk (%gs - %gs):
%s

CONTEXT IDENTIFICATION RULES:
- Context = A distinct topic or discussion thread
- Use CONCISE names (2-5 words): "Budget Review", "Incident Report", "Product Demo"
- Maximum 2 chunks per context - plan names that can be subdivided if needed
- Be conservative: Fewer, well-defined contexts > many small fragments
- If entire chunk is ONE topic, return ONE context

STATUS DECISION:
- "finished": Topic concludes within this chunk
- "ongoing": Topic clearly continues beyond this chunk

CRITICAL RULES:
- Use EXACT timestamps from transcript (not rounded)
- NO gaps or overlaps between contexts
- Each context MUST have a summary (1-2 sentences)

Return JSON array (typically 1-2 contexts per chunk):
[
  {
    "name": "Concise Context Name",
    "from_time": [exact timestamp from transcript],
    "end_time": [exact timestamp from transcript],
    "status": "finished" or "ongoing",
    "summary": "Brief 1-2 sentence summary of what was discussed"
  }
]

CRITICAL: Return ONLY valid JSON array, no markdown, no explanation.`

const continuationPrompt = `Previous context information:
Ongoing context: "%s" (started at %gs)
  Chunks spanned: %d of MAXIMUM 2
  Summary so far: %s
%s

Current chunk (%gs - %gs):
%s

CONTEXT RULES:
- Maximum 2 chunks per context - if exceeding, break into subcontexts
- Subcontext format: "Base Topic: Specific Aspect" (both parts 2-4 words)
- Only mark "ongoing" if discussion truly continues beyond this chunk
- Mark "finished" if topic concludes or shifts significantly

DECISION TREE:
1. Is this a CONTINUATION of "%s"?
   - YES, same topic: set is_continuation true
     * Continues beyond this chunk: status "ongoing"
     * Concludes in this chunk: status "finished"
2. Is this a NEW topic/discussion?
   - YES, different topic: set is_continuation false
     * Finish ongoing context at transition point
     * Create new context starting at transition point

CRITICAL RULES:
- from_time and end_time must be EXACT timestamps from the transcript
- NO gaps between contexts (end_time of one = from_time of next)
- NO overlaps allowed
- If entire chunk is continuation, return ONE context with is_continuation true

Return JSON array (1-2 contexts):
[
  {
    "name": "Context name (keep concise: 2-5 words)",
    "from_time": [exact timestamp],
    "end_time": [exact timestamp],
    "status": "finished" or "ongoing",
    "is_continuation": true or false,
    "summary": "1-2 sentences describing what was discussed"
  }
]

CRITICAL: Return ONLY valid JSON array, no markdown, no explanation.`

const forcedSplitPrompt = `Previous context information:
Ongoing context: "%s" (started at %gs, has spanned %d chunks)
  Summary so far: %s

CRITICAL: This context has exceeded the maximum of 2 chunks. You MUST break it into subcontexts NOW.

Current chunk (%gs - %gs):
%s

SUBCONTEXT NAMING RULES (MANDATORY):
- Base topic name: "%s"
- Format: "Base Topic: Specific Aspect"
- Keep base name SHORT (2-4 words max)
- Subcontext should be descriptive but concise (2-4 words)

REQUIRED ACTIONS:
1. End the ongoing context "%s" at the point where the subtopic shifts in this chunk
2. Create a NEW subcontext: "%s: [New Specific Aspect]"
3. The end_time of the first context MUST equal the from_time of the second (no gaps/overlaps)

Return JSON array with EXACTLY 2 contexts:
[
  {
    "name": "%s",
    "from_time": %g,
    "end_time": [exact timestamp where this ends],
    "status": "finished",
    "is_continuation": true,
    "summary": "Brief summary of what was covered in THIS portion"
  },
  {
    "name": "%s: [Concise New Aspect Name]",
    "from_time": [same as end_time above],
    "end_time": %g,
    "status": "finished" or "ongoing",
    "summary": "Brief summary of the new subcontext"
  }
]

CRITICAL: Return ONLY valid JSON array, no markdown, no explanation.`

const sectionNotesPrompt = `Analyze this section of a meeting and provide CONCISE notes with only KEY information.

Section: %s
Time: %gs - %gs

Transcript:
%s

Provide BRIEF, CONCISE notes focusing on:
- Key discussion points (summarize, don't repeat everything)
- Important decisions made
- Critical concerns mentioned
- Action items discussed

IMPORTANT GUIDELINES:
- Keep notes SHORT and to the point
- Only include KEY information, not every detail
- Provide 3-5 notes per section (maximum 8 if needed)
- Each note should be 1-2 sentences

Return JSON:
{
  "notes": [
    "Brief key point 1",
    "Brief key point 2",
    "Brief key point 3"
  ]
}

IMPORTANT: Return ONLY valid JSON, no markdown.`

const finalSummaryPrompt = `Based on this meeting analysis, provide:

Sections discussed:
%s

Return JSON:
{
  "summary": "Comprehensive summary of the meeting discussions and decisions",
  "conclusion": "Key takeaways and outcomes from the meeting",
  "action_items": [
    {
      "action_for": "Person/Team responsible",
      "action_items": [
        "Specific action 1",
        "Specific action 2"
      ]
    }
  ]
}

IMPORTANT: Return ONLY valid JSON, no markdown.`

const incidentReportPrompt = `You are generating the INCIDENT REPORT section of a formal investigation report.

Based on these meeting minutes:
%s

CRITICAL INSTRUCTIONS:
1. EXTRACT ALL NAMES: Identify every person mentioned in the INCIDENT (not meeting attendees)
2. CONCISE TIMELINE: List key events chronologically - be brief and factual
3. KEY FACTS ONLY: Include only the most important facts (3-5 facts, max 8)
4. USE MARKDOWN: Use markdown formatting (bold, italic, lists) inside strings
5. FORMAL TONE: Write like an official investigation report

Return JSON with this EXACT structure:
{
  "background": "Brief 2-3 sentence background.",
  "key_facts": ["fact 1", "fact 2", "fact 3"],
  "timeline": [
    {"time_period": "period label", "events": ["event 1", "event 2"]}
  ],
  "concerns_identified": [
    {"category": "Policy Violations", "details": ["concern 1"]},
    {"category": "Other Concerns", "details": ["concern 1"]}
  ],
  "evidence_collected": ["evidence 1", "evidence 2"],
  "parties_involved": [
    {"name": "Person's Full Name (Role)", "involvement": "Brief 1-2 sentence description"}
  ]
}

IMPORTANT:
- Return ONLY valid JSON (strings can contain markdown)
- Keep everything CONCISE and to the point
- Extract names of people involved in the INCIDENT, not meeting participants
- Provide 3-5 items per section (maximum 8 if needed)`

// contextHistory renders a continuity hint about the last finished context
// for inclusion in mapper prompts.
func contextHistory(last *Context) string {
	if last == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nLast finished context: %q (%gs - %gs)", last.Name, last.FromTime, last.EndTime)
	if last.Summary != "" {
		fmt.Fprintf(&sb, "\n  Summary: %s", last.Summary)
	}
	return sb.String()
}

func buildFreshPrompt(chunk transcript.Chunk, last *Context) string {
	return fmt.Sprintf(freshContextPrompt,
		contextHistory(last),
		chunk.StartTime, chunk.EndTime,
		transcript.FormatSegments(chunk.Segments),
	)
}

func buildContinuationPrompt(chunk transcript.Chunk, ongoing *Context, ongoingChunks int, last *Context) string {
	summary := ongoing.Summary
	if summary == "" {
		summary = "N/A"
	}
	return fmt.Sprintf(continuationPrompt,
		ongoing.Name, ongoing.FromTime,
		ongoingChunks+1,
		summary,
		contextHistory(last),
		chunk.StartTime, chunk.EndTime,
		transcript.FormatSegments(chunk.Segments),
		ongoing.Name,
	)
}

func buildForcedSplitPrompt(chunk transcript.Chunk, ongoing *Context, ongoingChunks int) string {
	summary := ongoing.Summary
	if summary == "" {
		summary = "N/A"
	}
	base := baseName(ongoing.Name)
	return fmt.Sprintf(forcedSplitPrompt,
		ongoing.Name, ongoing.FromTime, ongoingChunks,
		summary,
		chunk.StartTime, chunk.EndTime,
		transcript.FormatSegments(chunk.Segments),
		base,
		ongoing.Name,
		base,
		ongoing.Name, ongoing.FromTime,
		base, chunk.EndTime,
	)
}

// baseName extracts the base topic from a possibly already-subdivided
// context name ("Product Launch: Budget" yields "Product Launch").
func baseName(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}
