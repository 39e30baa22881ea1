//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stenoworks/minuted/internal/minutes"
	"github.com/stenoworks/minuted/internal/transcript"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SessionRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sessionID := "it-" + uuid.New().String()[:8]

	sess := Session{
		SessionID: sessionID,
		Name:      "standup.wav",
		Text:      "hello world",
		Segments: []transcript.Segment{
			{Start: 0, End: 1.5, Text: "hello world", Words: []transcript.Word{{Start: 0, End: 0.7, Word: "hello"}}},
		},
	}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := s.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Name != "standup.wav" || len(got.Segments) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	refs, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	found := false
	for _, ref := range refs {
		if ref.SessionID == sessionID && ref.Name == "standup.wav" {
			found = true
		}
	}
	if !found {
		t.Errorf("session %s not in listing", sessionID)
	}
}

func TestIntegration_ContextCacheUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sessionID := "it-" + uuid.New().String()[:8]

	if _, err := s.GetContextCache(ctx, sessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing cache, got %v", err)
	}

	cache := minutes.ContextCache{
		MeetingType: minutes.MeetingRegular,
		Contexts:    []minutes.Context{{Name: "A", FromTime: 0, EndTime: 10, Status: minutes.StatusFinished}},
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.SaveContextCache(ctx, sessionID, cache); err != nil {
		t.Fatalf("SaveContextCache failed: %v", err)
	}

	// Overwrite with a new meeting type; last writer wins.
	cache.MeetingType = minutes.MeetingIncident
	if err := s.SaveContextCache(ctx, sessionID, cache); err != nil {
		t.Fatalf("SaveContextCache upsert failed: %v", err)
	}

	got, err := s.GetContextCache(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetContextCache failed: %v", err)
	}
	if got.MeetingType != minutes.MeetingIncident || len(got.Contexts) != 1 {
		t.Errorf("cache mismatch: %+v", got)
	}
}

func TestIntegration_MinutesDoc(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sessionID := "it-" + uuid.New().String()[:8]

	doc := minutes.Minutes{
		SessionID:   sessionID,
		MeetingType: minutes.MeetingRegular,
		GeneratedAt: time.Now().UTC(),
		Summary:     "summary",
	}
	if err := s.SaveMinutesDoc(ctx, sessionID, doc); err != nil {
		t.Fatalf("SaveMinutesDoc failed: %v", err)
	}

	raw, err := s.GetMinutesRaw(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetMinutesRaw failed: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("empty minutes document")
	}
}
