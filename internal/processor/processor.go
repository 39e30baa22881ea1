// Package processor orchestrates the minutes pipeline: transcription intake,
// context mapping, per-section notewriting and report assembly. Each request
// runs on its own goroutine to completion; all LLM calls within a run are
// strictly sequential because later prompts depend on earlier merge state.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/stenoworks/minuted/internal/bus"
	"github.com/stenoworks/minuted/internal/gemini"
	"github.com/stenoworks/minuted/internal/minutes"
	"github.com/stenoworks/minuted/internal/progress"
	"github.com/stenoworks/minuted/internal/store"
	"github.com/stenoworks/minuted/internal/transcribe"
	"github.com/stenoworks/minuted/internal/transcript"
)

// MeetingTypeAuto asks the pipeline to detect (or reuse) the meeting type
// instead of forcing one.
const MeetingTypeAuto = "auto"

// ErrSummarizationDisabled is returned when a minutes job is requested but
// no LLM credentials are configured. Not a failure, a feature flag.
var ErrSummarizationDisabled = errors.New("summarization disabled: no api keys configured")

// Store is the document persistence the pipeline needs; satisfied by
// *store.Store.
type Store interface {
	SaveSession(ctx context.Context, sess store.Session) error
	GetSession(ctx context.Context, sessionID string) (*store.Session, error)
	SaveContextCache(ctx context.Context, sessionID string, cache minutes.ContextCache) error
	GetContextCache(ctx context.Context, sessionID string) (*minutes.ContextCache, error)
	SaveMinutesDoc(ctx context.Context, sessionID string, doc any) error
}

type Processor struct {
	store     Store
	llm       *gemini.Client
	mapper    *minutes.Mapper
	notes     *minutes.Notewriter
	assembler *minutes.Assembler
	asr       *transcribe.Client
	bus       *bus.Client
	tracker   *progress.Tracker
	logger    *slog.Logger
}

func New(db Store, llm *gemini.Client, asr *transcribe.Client, b *bus.Client, tracker *progress.Tracker, logger *slog.Logger) *Processor {
	return &Processor{
		store:     db,
		llm:       llm,
		mapper:    minutes.NewMapper(llm, logger),
		notes:     minutes.NewNotewriter(llm, logger),
		assembler: minutes.NewAssembler(llm, logger),
		asr:       asr,
		bus:       b,
		tracker:   tracker,
		logger:    logger,
	}
}

// MinutesToken is the progress-table key for a session's minutes job,
// distinct from the ingest job's key (the bare session id).
func MinutesToken(sessionID string) string {
	return "minutes_" + sessionID
}

// StartIngest transcribes uploaded audio on a background goroutine, persists
// the session and announces it on the bus.
func (p *Processor) StartIngest(sessionID, filename string, wav io.Reader) {
	p.tracker.Set(sessionID, progress.Status{Status: "starting", Progress: 0})
	go p.runIngest(sessionID, filename, wav)
}

func (p *Processor) runIngest(sessionID, filename string, wav io.Reader) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("ingest panicked", "session_id", sessionID, "panic", r)
			p.tracker.Set(sessionID, progress.Status{Status: "error", Progress: 0, Error: fmt.Sprintf("internal error: %v", r)})
		}
	}()

	p.tracker.Set(sessionID, progress.Status{Status: "transcribing", Progress: 30})
	res, err := p.asr.Transcribe(ctx, filename, wav)
	if err != nil {
		p.logger.Error("transcription failed", "session_id", sessionID, "error", err)
		p.tracker.Set(sessionID, progress.Status{Status: "error", Progress: 0, Error: err.Error()})
		return
	}

	p.tracker.Set(sessionID, progress.Status{Status: "saving", Progress: 75})
	sess := store.Session{
		SessionID: sessionID,
		Name:      filename,
		Text:      transcript.FullText(res.Segments),
		Segments:  res.Segments,
	}
	if err := p.store.SaveSession(ctx, sess); err != nil {
		p.logger.Error("session save failed", "session_id", sessionID, "error", err)
		p.tracker.Set(sessionID, progress.Status{Status: "error", Progress: 0, Error: err.Error()})
		return
	}

	if err := p.bus.Publish(bus.SubjectTranscriptStored, bus.TranscriptStored{
		SessionID: sessionID,
		Name:      filename,
		Segments:  len(res.Segments),
	}); err != nil {
		p.logger.Warn("failed to publish transcript stored", "session_id", sessionID, "error", err)
	}

	p.tracker.Set(sessionID, progress.Status{Status: "complete", Progress: 100})
	p.logger.Info("session ingested", "session_id", sessionID, "segments", len(res.Segments))
}

// HandleTranscriptStored is the bus handler that kicks off minutes
// generation for freshly stored transcripts.
func (p *Processor) HandleTranscriptStored(subject string, data []byte) {
	var evt bus.TranscriptStored
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse transcript event", "error", err)
		return
	}
	if err := p.StartMinutesJob(evt.SessionID, MeetingTypeAuto); err != nil {
		p.logger.Warn("skipping minutes generation", "session_id", evt.SessionID, "error", err)
	}
}

// StartMinutesJob launches minutes generation for a session on its own
// goroutine. The override is "auto" or an explicit meeting type.
func (p *Processor) StartMinutesJob(sessionID, override string) error {
	if !p.llm.Enabled() {
		return ErrSummarizationDisabled
	}

	token := MinutesToken(sessionID)
	p.tracker.Set(token, progress.Status{Status: "starting", Progress: 0, Step: "Initializing..."})
	go p.runMinutes(sessionID, override)
	return nil
}

func (p *Processor) runMinutes(sessionID, override string) {
	ctx := context.Background()

	// A panic in any pipeline stage must leave an error record behind, not
	// take the process down.
	defer func() {
		if r := recover(); r != nil {
			p.failMinutes(ctx, sessionID, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := p.generateMinutes(ctx, sessionID, override); err != nil {
		p.failMinutes(ctx, sessionID, err)
	}
}

// failMinutes records a failed generation run: an error document in place of
// the minutes, a bus notification and an error progress status.
func (p *Processor) failMinutes(ctx context.Context, sessionID string, err error) {
	p.logger.Error("minutes generation failed", "session_id", sessionID, "error", err)

	errDoc := store.GenerationError{
		SessionID:   sessionID,
		Error:       err.Error(),
		GeneratedAt: time.Now().UTC(),
	}
	if saveErr := p.store.SaveMinutesDoc(ctx, sessionID, errDoc); saveErr != nil {
		p.logger.Error("failed to persist error document", "session_id", sessionID, "error", saveErr)
	}
	if p.bus != nil {
		_ = p.bus.Publish(bus.SubjectMinutesFailed, map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	p.tracker.Set(MinutesToken(sessionID), progress.Status{Status: "error", Progress: 0, Step: "Error occurred", Error: err.Error()})
}

func (p *Processor) generateMinutes(ctx context.Context, sessionID, override string) error {
	token := MinutesToken(sessionID)

	p.tracker.Set(token, progress.Status{Status: "detecting_type", Progress: 10, Step: "Detecting meeting type..."})

	sess, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	cache, err := p.store.GetContextCache(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load context cache: %w", err)
	}

	meetingType := resolveMeetingType(override, cache, func() minutes.MeetingType {
		return p.assembler.DetectMeetingType(ctx, sess.Segments)
	})

	p.tracker.Set(token, progress.Status{
		Status:   "mapping_contexts",
		Progress: 20,
		Step:     fmt.Sprintf("Mapping contexts (%s)...", meetingType),
	})

	var contexts []minutes.Context
	if reuseCache(cache, override, meetingType) {
		contexts = cache.Contexts
		p.logger.Info("reusing cached context mapping", "session_id", sessionID, "contexts", len(contexts))
	} else {
		contexts, err = p.mapper.MapContexts(ctx, sess.Segments)
		if err != nil {
			return fmt.Errorf("map contexts: %w", err)
		}
		if err := p.store.SaveContextCache(ctx, sessionID, minutes.ContextCache{
			MeetingType: meetingType,
			Contexts:    contexts,
			GeneratedAt: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("save context cache: %w", err)
		}
	}

	p.tracker.Set(token, progress.Status{
		Status:   "generating_notes",
		Progress: 40,
		Step:     fmt.Sprintf("Generating detailed notes for %d contexts individually...", len(contexts)),
	})

	sections := make([]minutes.Section, 0, len(contexts))
	for idx, c := range contexts {
		sections = append(sections, p.notes.SectionSummary(ctx, c, sess.Segments))

		p.tracker.Set(token, progress.Status{
			Status:   "generating_notes",
			Progress: 40 + int(float64(idx+1)/float64(len(contexts))*40),
			Step:     fmt.Sprintf("Processing context %d/%d: %s", idx+1, len(contexts), c.Name),
		})
	}

	p.tracker.Set(token, progress.Status{Status: "finalizing", Progress: 85, Step: "Generating summary and conclusion..."})

	body, err := p.assembler.Assemble(ctx, sections, meetingType)
	if err != nil {
		return err
	}

	doc := minutes.Minutes{
		SessionID:        sessionID,
		MeetingType:      meetingType,
		GeneratedAt:      time.Now().UTC(),
		TranscriptLength: len(sess.Segments),
		Sections:         sections,
		Summary:          body.Summary,
		Conclusion:       body.Conclusion,
		ActionItems:      body.ActionItems,
		IncidentReport:   body.IncidentReport,
	}
	if err := p.store.SaveMinutesDoc(ctx, sessionID, doc); err != nil {
		return fmt.Errorf("save minutes: %w", err)
	}

	if p.bus != nil {
		if err := p.bus.Publish(bus.SubjectMinutesGenerated, map[string]any{
			"session_id":   sessionID,
			"meeting_type": meetingType,
			"sections":     len(sections),
		}); err != nil {
			p.logger.Warn("failed to publish minutes generated", "session_id", sessionID, "error", err)
		}
	}

	p.tracker.Set(token, progress.Status{Status: "complete", Progress: 100, Step: "Complete!"})
	p.logger.Info("minutes generated",
		"session_id", sessionID,
		"meeting_type", meetingType,
		"sections", len(sections),
	)
	return nil
}

// resolveMeetingType picks the effective type: an explicit override wins;
// "auto" trusts the cache when present and only then falls back to the
// detector.
func resolveMeetingType(override string, cache *minutes.ContextCache, detect func() minutes.MeetingType) minutes.MeetingType {
	if override != MeetingTypeAuto {
		return minutes.MeetingType(override)
	}
	if cache != nil {
		return cache.MeetingType
	}
	return detect()
}

// reuseCache reports whether the cached mapping can serve this run. An
// explicit override conflicting with the cached type forces a remap.
func reuseCache(cache *minutes.ContextCache, override string, meetingType minutes.MeetingType) bool {
	if cache == nil {
		return false
	}
	return override == MeetingTypeAuto || cache.MeetingType == meetingType
}
