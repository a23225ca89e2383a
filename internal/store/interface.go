package store

import (
	"encoding/json"
	"errors"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

var (
	ErrMissingStudentID = errors.New("studentId is required")
	ErrMissingFlagType  = errors.New("flagType is required")
)

// LiveStateStore keeps the latest status per student. Last write wins.
type LiveStateStore interface {
	Update(studentID string, entry domain.LiveStateEntry) domain.LiveStateEntry
	Get(studentID string) (domain.LiveStateEntry, bool)
	Snapshot() map[string]domain.LiveStateEntry
	Len() int
}

// ViolationLog is an append-only, arrival-ordered record of flags.
type ViolationLog interface {
	Append(record domain.FlagRecord) error
	// All returns the records most recent first.
	All() []domain.FlagRecord
	Stats() domain.FlagStats
	Len() int
}

// SignalingRelay holds at most one pending offer and one answer per student.
type SignalingRelay interface {
	PutOffer(studentID string, offer json.RawMessage) error
	PutAnswer(studentID string, answer json.RawMessage) error
	GetAnswer(studentID string) (json.RawMessage, bool)
	AllOffers() map[string]json.RawMessage
	State(studentID string) domain.SessionState
}
