package store

import (
	"sync"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

// MemoryViolationLog is an in-memory ViolationLog. It grows without bound for
// the lifetime of the process.
type MemoryViolationLog struct {
	records []domain.FlagRecord
	mu      sync.RWMutex
}

// NewMemoryViolationLog creates an empty log.
func NewMemoryViolationLog() *MemoryViolationLog {
	return &MemoryViolationLog{}
}

// Append adds record to the end of the log.
func (l *MemoryViolationLog) Append(record domain.FlagRecord) error {
	if record.StudentID == "" {
		return ErrMissingStudentID
	}
	if record.FlagType == "" {
		return ErrMissingFlagType
	}

	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()
	return nil
}

// All returns a copy of the log, most recent first.
func (l *MemoryViolationLog) All() []domain.FlagRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.FlagRecord, len(l.records))
	for i, record := range l.records {
		result[len(l.records)-1-i] = record
	}
	return result
}

// Stats counts flags, distinct flagged students and distinct domains.
func (l *MemoryViolationLog) Stats() domain.FlagStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	students := make(map[string]struct{})
	domains := make(map[string]struct{})
	for _, record := range l.records {
		students[record.StudentID] = struct{}{}
		if d := record.Domain.String(); d != "" {
			domains[d] = struct{}{}
		}
	}

	return domain.FlagStats{
		TotalFlags:      len(l.records),
		StudentsFlagged: len(students),
		UniqueDomains:   len(domains),
	}
}

// Len returns the number of records.
func (l *MemoryViolationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

var _ ViolationLog = (*MemoryViolationLog)(nil)
