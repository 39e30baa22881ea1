package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stenoworks/minuted/internal/minutes"
	"github.com/stenoworks/minuted/internal/transcript"
)

// Session is the persisted transcript document for one recording.
type Session struct {
	SessionID string               `json:"session_id"`
	Name      string               `json:"name"`
	AudioURL  string               `json:"audio_url,omitempty"`
	Text      string               `json:"text"`
	Segments  []transcript.Segment `json:"segments"`
}

// SessionRef is the listing form of a session.
type SessionRef struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

// GenerationError is the document persisted under the minutes key when a
// generation run fails outright.
type GenerationError struct {
	SessionID   string    `json:"session_id"`
	Error       string    `json:"error"`
	GeneratedAt time.Time `json:"generated_at"`
}

const contextCacheSuffix = "_contexts"

func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.upsertDoc(ctx, "sessions", sess.SessionID, doc)
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	doc, err := s.getDoc(ctx, "sessions", sessionID)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(doc, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]SessionRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, coalesce(doc->>'name', 'Untitled')
		FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var refs []SessionRef
	for rows.Next() {
		var ref SessionRef
		if err := rows.Scan(&ref.SessionID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// SaveContextCache persists the finalized context mapping keyed by the
// session, under the same identity convention the summaries use.
func (s *Store) SaveContextCache(ctx context.Context, sessionID string, cache minutes.ContextCache) error {
	doc, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("marshal context cache: %w", err)
	}
	return s.upsertDoc(ctx, "context_caches", sessionID+contextCacheSuffix, doc)
}

func (s *Store) GetContextCache(ctx context.Context, sessionID string) (*minutes.ContextCache, error) {
	doc, err := s.getDoc(ctx, "context_caches", sessionID+contextCacheSuffix)
	if err != nil {
		return nil, err
	}
	var cache minutes.ContextCache
	if err := json.Unmarshal(doc, &cache); err != nil {
		return nil, fmt.Errorf("unmarshal context cache: %w", err)
	}
	return &cache, nil
}

// SaveMinutesDoc persists either a minutes.Minutes or a GenerationError
// under the session's minutes key.
func (s *Store) SaveMinutesDoc(ctx context.Context, sessionID string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal minutes: %w", err)
	}
	return s.upsertDoc(ctx, "minutes", sessionID, raw)
}

// GetMinutesRaw returns the stored minutes document verbatim; callers serve
// it without re-validating, since an error document is also a valid answer.
func (s *Store) GetMinutesRaw(ctx context.Context, sessionID string) (json.RawMessage, error) {
	doc, err := s.getDoc(ctx, "minutes", sessionID)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(doc), nil
}
