package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

// ErrValidation marks a rejected request. Nothing was stored or broadcast.
var ErrValidation = errors.New("validation failed")

var (
	ErrMissingOffer  = errors.New("offer is required")
	ErrMissingAnswer = errors.New("answer is required")
)

// ExportStatus reports the optional flag export for /health.
type ExportStatus struct {
	Enabled          bool  `json:"enabled"`
	DeliveryFailures int64 `json:"deliveryFailures"`
}

// MonitorService maps student and monitor actions onto the stores and the hub.
type MonitorService interface {
	// ReportFlag appends a violation and announces it to monitors.
	ReportFlag(ctx context.Context, req *domain.FlagRequest) (domain.FlagRecord, error)

	// UpdateLiveState replaces the student's live entry and announces it.
	UpdateLiveState(ctx context.Context, req *domain.LiveUpdateRequest) (domain.LiveStateEntry, error)

	// LiveScreens returns every student's latest entry.
	LiveScreens(ctx context.Context) map[string]domain.LiveStateEntry

	// Flags returns the violation log, most recent first.
	Flags(ctx context.Context) []domain.FlagRecord

	// FlagStats returns the dashboard counters.
	FlagStats(ctx context.Context) domain.FlagStats

	// PostOffer stores a student's offer, clearing its old answer, and
	// tells monitors the student is waiting.
	PostOffer(ctx context.Context, req *domain.OfferRequest) error

	// PostAnswer stores the monitor's answer for the student to poll.
	PostAnswer(ctx context.Context, req *domain.AnswerRequest) error

	// Answer returns the stored answer, or false when none is available yet.
	Answer(ctx context.Context, studentID string) (json.RawMessage, bool)

	// Offers returns the pending offer of every student.
	Offers(ctx context.Context) map[string]json.RawMessage

	// FlagExport reports whether flags are exported and how many the
	// broker rejected.
	FlagExport(ctx context.Context) ExportStatus
}
