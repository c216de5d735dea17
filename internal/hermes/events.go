package hermes

import (
	"time"

	"github.com/google/uuid"
)

// Subjects published by the gateway.
const (
	SubjectSourceIngested = "joey.source.ingested"
	SubjectChatCompleted  = "joey.chat.completed"
	SubjectRegistered     = "joey.gateway.registered"
)

// SubjectIngestRequest carries IngestRequest messages from other services.
const SubjectIngestRequest = "joey.source.ingest"

// Envelope fields shared by every event.
type Envelope struct {
	EventID   string `json:"event_id"`
	Timestamp string `json:"timestamp"`
}

// NewEnvelope stamps an event with a fresh ID and the current UTC time.
func NewEnvelope() Envelope {
	return Envelope{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SourceIngested is emitted after a source is stored.
type SourceIngested struct {
	Envelope
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`      // text | pdf | docx | html
	Origin     string `json:"origin"`    // upload | url | watch
	RawChars   int    `json:"raw_chars"` // before the per-source budget
	Stored     int    `json:"stored_chars"`
	Truncated  bool   `json:"truncated"`
}

// ChatCompleted is emitted for every chat request that reached the
// completion endpoint.
type ChatCompleted struct {
	Envelope
	Model        string `json:"model"`
	HistoryLen   int    `json:"history_len"`
	WindowLen    int    `json:"window_len"`
	ContextChars int    `json:"context_chars"`
	ReplyChars   int    `json:"reply_chars"`
	Outcome      string `json:"outcome"` // ok | error
	DurationMS   int64  `json:"duration_ms"`
}

// Registered announces a gateway instance on startup.
type Registered struct {
	Envelope
	Port  int    `json:"port"`
	Mode  string `json:"mode"`
	Model string `json:"model"`
}

// IngestRequest asks the gateway to store a source. Exactly one of URL or
// Filename is set; Content is the raw file and travels base64-encoded.
type IngestRequest struct {
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Content  []byte `json:"content,omitempty"`
}
