// Package transcribe is the HTTP boundary to the external ASR engine. The
// engine is a black box; this client only cares that it returns ordered,
// word-timestamped segments.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/stenoworks/minuted/internal/transcript"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Long-form audio can take a while to transcribe.
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

// Result is the transcriber's answer for one recording.
type Result struct {
	Language string               `json:"language"`
	Duration float64              `json:"duration"`
	Segments []transcript.Segment `json:"segments"`
}

// Transcribe uploads WAV audio and returns the parsed segments. Word-level
// timestamps are expected to arrive already merged into each segment.
func (c *Client) Transcribe(ctx context.Context, filename string, wav io.Reader) (*Result, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, wav); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asr call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("asr %s: %s", resp.Status, strings.TrimSpace(string(errBody)))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}

	for i := range out.Segments {
		out.Segments[i].ID = i
		out.Segments[i].Text = strings.TrimSpace(out.Segments[i].Text)
	}
	return &out, nil
}
