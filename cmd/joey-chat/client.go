package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/joey/internal/conversation"
)

const (
	fallbackChat   = "Error fetching response."
	fallbackURL    = "Failed to fetch URL."
	fallbackUpload = "Failed to upload file."
)

// session holds the local conversation and talks to a gateway.
type session struct {
	baseURL string
	http    *http.Client
	history []conversation.Message
}

func newSession(baseURL string, timeout time.Duration) *session {
	return &session{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ask appends the user's text, sends the whole history, and records the reply.
func (s *session) Ask(ctx context.Context, text string) string {
	s.history = append(s.history, conversation.Message{Role: conversation.User, Text: text})

	body, err := json.Marshal(conversation.ChatRequest{Messages: s.history})
	if err != nil {
		return s.reply(fallbackChat)
	}

	var resp chatResponse
	if err := s.post(ctx, "/api/chat", "application/json", bytes.NewReader(body), &resp); err != nil {
		return s.reply(fallbackChat)
	}
	return s.reply(resp.text())
}

// FetchURL asks the gateway to ingest a web page.
func (s *session) FetchURL(ctx context.Context, address string) string {
	body, err := json.Marshal(map[string]string{"url": strings.TrimSpace(address)})
	if err != nil {
		return s.reply(fallbackURL)
	}

	var resp ackResponse
	if err := s.post(ctx, "/api/fetch_url", "application/json", bytes.NewReader(body), &resp); err != nil {
		return s.reply(fallbackURL)
	}
	return s.reply(resp.text())
}

// Upload sends a local file to the gateway as multipart form data.
func (s *session) Upload(ctx context.Context, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return s.reply(fallbackUpload)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return s.reply(fallbackUpload)
	}
	part.Write(data)
	if err := mw.Close(); err != nil {
		return s.reply(fallbackUpload)
	}

	var resp ackResponse
	if err := s.post(ctx, "/api/upload", mw.FormDataContentType(), &buf, &resp); err != nil {
		return s.reply(fallbackUpload)
	}
	return s.reply(resp.text())
}

// reply records gateway output as an assistant turn, like the web UI does.
func (s *session) reply(text string) string {
	s.history = append(s.history, conversation.Message{Role: conversation.Assistant, Text: text})
	return text
}

type chatResponse struct {
	Reply  string `json:"reply"`
	Detail string `json:"detail"`
}

// text falls back to the error detail the gateway sends in hard-fail mode.
func (c chatResponse) text() string {
	if c.Reply == "" && c.Detail != "" {
		return c.Detail
	}
	return c.Reply
}

type ackResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (a ackResponse) text() string {
	if a.Message == "" && a.Detail != "" {
		return a.Detail
	}
	return a.Message
}

func (s *session) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
