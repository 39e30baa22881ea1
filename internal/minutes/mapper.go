package minutes

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/stenoworks/minuted/internal/gemini"
	"github.com/stenoworks/minuted/internal/transcript"
)

// maxOngoingChunks is the span cap: once an open context has covered this
// many chunks the oracle is forced to split it into subcontexts.
const maxOngoingChunks = 2

// Mapper walks fixed-duration transcript chunks, prompts the LLM once per
// chunk and merges the per-chunk judgments into a single gap-free,
// non-overlapping timeline of contexts.
type Mapper struct {
	llm           *gemini.Client
	logger        *slog.Logger
	chunkDuration float64
}

func NewMapper(llm *gemini.Client, logger *slog.Logger) *Mapper {
	return &Mapper{llm: llm, logger: logger, chunkDuration: transcript.ChunkDuration}
}

// contextCandidate is the oracle-boundary form of a context. Required fields
// are pointers so missing keys can be rejected here instead of leaking zero
// values into the merge state.
type contextCandidate struct {
	Name            *string  `json:"name"`
	FromTime        *float64 `json:"from_time"`
	EndTime         *float64 `json:"end_time"`
	Status          *string  `json:"status"`
	Summary         string   `json:"summary"`
	IsContinuation  bool     `json:"is_continuation"`
	EndedInPrevious bool     `json:"ended_in_previous"`
}

func (c contextCandidate) valid() bool {
	return c.Name != nil && c.FromTime != nil && c.EndTime != nil && c.Status != nil
}

func (c contextCandidate) toContext() Context {
	return Context{
		Name:           *c.Name,
		FromTime:       *c.FromTime,
		EndTime:        *c.EndTime,
		Status:         *c.Status,
		Summary:        c.Summary,
		IsContinuation: c.IsContinuation,
	}
}

// mapState is the merge state carried across chunk iterations. At most one
// context is ever open.
type mapState struct {
	contexts      []Context
	ongoing       *Context
	ongoingChunks int
	lastFinished  *Context
}

func (st *mapState) finalizeOngoing() {
	done := *st.ongoing
	done.Status = StatusFinished
	st.contexts = append(st.contexts, done)
	st.lastFinished = &done
	st.ongoing = nil
	st.ongoingChunks = 0
}

// MapContexts runs the context-mapping pass over the whole transcript and
// returns the finalized, ordered context list covering
// [segments[0].Start, segments[last].End] with no gaps or overlaps.
func (m *Mapper) MapContexts(ctx context.Context, segments []transcript.Segment) ([]Context, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	chunks := transcript.ChunkByTime(segments, m.chunkDuration)
	st := &mapState{}

	m.logger.Info("mapping contexts", "chunks", len(chunks), "segments", len(segments))

	for i, chunk := range chunks {
		var prompt string
		switch {
		case st.ongoing == nil:
			prompt = buildFreshPrompt(chunk, st.lastFinished)
		case st.ongoingChunks >= maxOngoingChunks:
			prompt = buildForcedSplitPrompt(chunk, st.ongoing, st.ongoingChunks)
		default:
			prompt = buildContinuationPrompt(chunk, st.ongoing, st.ongoingChunks, st.lastFinished)
		}

		raw, err := m.llm.Generate(ctx, prompt)
		if err != nil {
			// Skip the chunk; the merge state is left untouched so the next
			// emitted context widens over the gap rather than losing data.
			m.logger.Error("context mapping call failed", "chunk", i+1, "error", err)
			continue
		}

		var candidates []contextCandidate
		if err := json.Unmarshal([]byte(gemini.CleanResponse(raw)), &candidates); err != nil {
			m.logger.Error("invalid context mapping response", "chunk", i+1, "error", err)
			continue
		}

		m.merge(st, candidates)
		m.logger.Debug("chunk mapped", "chunk", i+1, "candidates", len(candidates), "finalized", len(st.contexts))
	}

	// Whatever is still open becomes the last context.
	if st.ongoing != nil {
		st.finalizeOngoing()
	}

	return normalize(st.contexts, segments), nil
}

// merge applies the oracle's candidate contexts for one chunk to the state.
func (m *Mapper) merge(st *mapState, candidates []contextCandidate) {
	for _, cand := range candidates {
		if !cand.valid() {
			m.logger.Warn("context candidate missing required fields, skipping")
			continue
		}

		// The oracle may report that the open context actually ended in the
		// previous chunk; close it at the reported boundary.
		if cand.EndedInPrevious && st.ongoing != nil {
			st.ongoing.EndTime = *cand.EndTime
			if cand.Summary != "" {
				st.ongoing.Summary = cand.Summary
			}
			st.finalizeOngoing()
			continue
		}

		if cand.IsContinuation && st.ongoing != nil {
			st.ongoing.EndTime = *cand.EndTime
			if cand.Summary != "" {
				st.ongoing.Summary = cand.Summary
			}
			if *cand.Status == StatusFinished {
				st.finalizeOngoing()
			} else {
				st.ongoingChunks++
			}
			continue
		}

		// New topic: close any open context at the new one's start so the
		// timeline stays gap-free.
		if st.ongoing != nil {
			st.ongoing.EndTime = *cand.FromTime
			st.finalizeOngoing()
		}

		c := cand.toContext()
		if c.Status == StatusOngoing {
			st.ongoing = &c
			st.ongoingChunks = 1
		} else {
			st.contexts = append(st.contexts, c)
			st.lastFinished = &c
		}
	}
}

// normalize enforces the output contract on the finalized list regardless of
// what the oracle answered: sorted by from_time, first context starts at the
// first segment, last context ends at the last segment, and every boundary
// is shared exactly between neighbours.
func normalize(contexts []Context, segments []transcript.Segment) []Context {
	if len(contexts) == 0 {
		// Degenerate transcript or every chunk failed: one catch-all context
		// still covers the full span.
		return []Context{{
			Name:     "Meeting Discussion",
			FromTime: segments[0].Start,
			EndTime:  segments[len(segments)-1].End,
			Status:   StatusFinished,
		}}
	}

	sort.SliceStable(contexts, func(i, j int) bool {
		return contexts[i].FromTime < contexts[j].FromTime
	})

	contexts[0].FromTime = segments[0].Start
	for i := 1; i < len(contexts); i++ {
		contexts[i].FromTime = contexts[i-1].EndTime
	}
	contexts[len(contexts)-1].EndTime = segments[len(segments)-1].End

	for i := range contexts {
		if contexts[i].EndTime < contexts[i].FromTime {
			contexts[i].EndTime = contexts[i].FromTime
		}
		contexts[i].Status = StatusFinished
	}

	return contexts
}
