package kafka

import (
	"context"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

// FlagEvent is the exported form of a violation. Evidence (screenshots and
// captured text) and unrecognised producer fields stay in the service.
type FlagEvent struct {
	Type       string       `json:"type"` // "flag_received"
	StudentID  string       `json:"studentId"`
	FlagType   string       `json:"flagType"`
	Domain     domain.Value `json:"domain"`
	FullURL    domain.Value `json:"fullUrl,omitempty"`
	Timestamp  domain.Value `json:"timestamp"`
	ReceivedAt string       `json:"receivedAt"`
}

// Event types
const (
	EventFlagReceived = "flag_received"
)

// NewFlagEvent strips evidence from a record.
func NewFlagEvent(record domain.FlagRecord) *FlagEvent {
	return &FlagEvent{
		Type:       EventFlagReceived,
		StudentID:  record.StudentID,
		FlagType:   record.FlagType,
		Domain:     record.Domain,
		FullURL:    record.FullURL,
		Timestamp:  record.Timestamp,
		ReceivedAt: record.ReceivedAt,
	}
}

// FlagEventProducer exports appended violations to downstream consumers.
type FlagEventProducer interface {
	ProduceFlag(ctx context.Context, record domain.FlagRecord) error
	// Failed returns how many events the broker rejected after they were queued.
	Failed() int64
	Close() error
}
