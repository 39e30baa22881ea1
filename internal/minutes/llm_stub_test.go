package minutes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stenoworks/minuted/internal/gemini"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedCall is one canned LLM exchange. A non-zero status short-circuits
// with an API error instead of a completion.
type scriptedCall struct {
	text   string
	status int
}

type callLog struct {
	mu      sync.Mutex
	prompts []string
}

func (l *callLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

func (l *callLog) prompt(i int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prompts[i]
}

// scriptedClient builds a gemini client backed by a test server that replays
// the scripted calls in order and records every prompt it receives.
func scriptedClient(t *testing.T, calls []scriptedCall) (*gemini.Client, *callLog) {
	t.Helper()
	log := &callLog{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("stub failed to decode request: %v", err)
		}

		log.mu.Lock()
		idx := len(log.prompts)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			log.prompts = append(log.prompts, req.Contents[0].Parts[0].Text)
		} else {
			log.prompts = append(log.prompts, "")
		}
		log.mu.Unlock()

		if idx >= len(calls) {
			t.Errorf("unexpected extra LLM call %d", idx)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		call := calls[idx]
		if call.status != 0 && call.status != http.StatusOK {
			w.WriteHeader(call.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": call.status, "status": "UNAVAILABLE", "message": "scripted failure"},
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": call.text}}}},
			},
		})
	}))
	t.Cleanup(server.Close)

	c := gemini.NewClient(gemini.NewKeyRing([]string{"test-key"}), "test-model")
	c.SetTestTransport(server.URL)
	return c, log
}
