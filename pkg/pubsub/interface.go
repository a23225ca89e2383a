package pubsub

import (
	"context"
	"encoding/json"
	"time"
)

// Event is the envelope carried on the bus for a mirrored stream message.
// Source and Seq identify the relay instance that emitted it and its
// position in that instance's output, so consumers reading several
// instances can drop duplicates and notice gaps.
type Event struct {
	Type      string          `json:"type"`
	StudentID string          `json:"student_id,omitempty"`
	Source    string          `json:"source,omitempty"`
	Seq       uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent wraps an already encoded stream message.
func NewEvent(eventType, studentID string, payload json.RawMessage) *Event {
	return &Event{
		Type:      eventType,
		StudentID: studentID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// UnmarshalPayload decodes the wrapped stream message into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher delivers events to a named channel. Implementations are safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
	Close() error
}
