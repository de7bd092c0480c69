package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Raw provider message
// =============================================================================

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PartBody carries base64url encoded content.
type PartBody struct {
	Data string `json:"data,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type MessagePart struct {
	PartID   string         `json:"part_id,omitempty"`
	MimeType string         `json:"mime_type"`
	Filename string         `json:"filename,omitempty"`
	Headers  []Header       `json:"headers,omitempty"`
	Body     *PartBody      `json:"body,omitempty"`
	Parts    []*MessagePart `json:"parts,omitempty"`
}

// RawMessage is a fetched mailbox message. It is never mutated after fetch.
type RawMessage struct {
	ID           string       `json:"id"`
	ThreadID     string       `json:"thread_id"`
	Snippet      string       `json:"snippet"`
	InternalDate int64        `json:"internal_date"` // epoch millis
	LabelIDs     []string     `json:"label_ids,omitempty"`
	Payload      *MessagePart `json:"payload,omitempty"`
}

// Header returns the first header value matching name, case-insensitively.
func (m *RawMessage) Header(name string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ReceivedAt converts InternalDate; zero when unset.
func (m *RawMessage) ReceivedAt() time.Time {
	if m == nil || m.InternalDate <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.InternalDate)
}

// NormalizedMessage is a RawMessage decoded to plain text.
type NormalizedMessage struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	Date       string    `json:"date"`
	Body       string    `json:"body"`
	Snippet    string    `json:"snippet"`
	ReceivedAt time.Time `json:"received_at"`
}
