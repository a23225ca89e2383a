package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Owoblo/exam-monitor/pkg/log"
)

// Audit actions for the monitor.
const (
	ActionFlagReceived  = "flag.received"
	ActionOfferPosted   = "signal.offer"
	ActionAnswerPosted  = "signal.answer"
	ActionMonitorJoined = "monitor.join"
	ActionMonitorLeft   = "monitor.leave"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, studentID string, msg string) {
	newEvent(ctx, action, studentID).Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, studentID string, detail string, msg string) {
	newEvent(ctx, action, studentID).Str(FieldDetail, detail).Msg(msg)
}

// newEvent starts an audit event. Monitor connections concern no student, so
// student_id is left out when empty.
func newEvent(ctx context.Context, action, studentID string) *zerolog.Event {
	l := log.Ctx(ctx)
	evt := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action)
	if studentID != "" {
		evt = evt.Str(log.FieldStudentID, studentID)
	}
	return evt
}
