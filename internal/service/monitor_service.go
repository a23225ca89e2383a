package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Owoblo/exam-monitor/internal/audit"
	"github.com/Owoblo/exam-monitor/internal/domain"
	"github.com/Owoblo/exam-monitor/internal/hub"
	"github.com/Owoblo/exam-monitor/internal/kafka"
	"github.com/Owoblo/exam-monitor/internal/store"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
)

type monitorService struct {
	hub           *hub.Hub
	liveState     store.LiveStateStore
	violations    store.ViolationLog
	relay         store.SignalingRelay
	kafkaProducer kafka.FlagEventProducer

	now func() time.Time
}

// NewMonitorService creates a new MonitorService. kafkaProducer may be nil.
func NewMonitorService(
	h *hub.Hub,
	liveState store.LiveStateStore,
	violations store.ViolationLog,
	relay store.SignalingRelay,
	kafkaProducer kafka.FlagEventProducer,
) MonitorService {
	return &monitorService{
		hub:           h,
		liveState:     liveState,
		violations:    violations,
		relay:         relay,
		kafkaProducer: kafkaProducer,
		now:           time.Now,
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func emptyPayload(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func (s *monitorService) ReportFlag(ctx context.Context, req *domain.FlagRequest) (domain.FlagRecord, error) {
	if req.StudentID == "" {
		return domain.FlagRecord{}, invalid(store.ErrMissingStudentID)
	}

	record := req.ToRecord(s.now())
	if err := s.violations.Append(record); err != nil {
		return domain.FlagRecord{}, invalid(err)
	}

	l := pkglog.Ctx(ctx)
	l.Info().
		Str(pkglog.FieldStudentID, record.StudentID).
		Str(pkglog.FieldFlagType, record.FlagType).
		Str(pkglog.FieldDomain, record.Domain.String()).
		Msg("flag received")
	audit.LogWithDetail(ctx, audit.ActionFlagReceived, record.StudentID, record.FlagType, "violation recorded")

	s.broadcast(ctx, domain.MsgTypeNewFlag, domain.NewFlagEvent(record))

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.ProduceFlag(ctx, record); err != nil {
			l.Warn().Err(err).Str(pkglog.FieldStudentID, record.StudentID).Msg("failed to export flag")
		}
	}

	return record, nil
}

func (s *monitorService) UpdateLiveState(ctx context.Context, req *domain.LiveUpdateRequest) (domain.LiveStateEntry, error) {
	if req.StudentID == "" {
		return domain.LiveStateEntry{}, invalid(store.ErrMissingStudentID)
	}

	entry := s.liveState.Update(req.StudentID, req.ToEntry(s.now()))

	l := pkglog.Ctx(ctx)
	l.Debug().
		Str(pkglog.FieldStudentID, req.StudentID).
		Str("current_url", entry.CurrentURL.String()).
		Msg("live state updated")

	s.broadcast(ctx, domain.MsgTypeLiveScreenUpdate, domain.NewLiveScreenEvent(req.StudentID, entry))

	return entry, nil
}

func (s *monitorService) LiveScreens(ctx context.Context) map[string]domain.LiveStateEntry {
	return s.liveState.Snapshot()
}

func (s *monitorService) Flags(ctx context.Context) []domain.FlagRecord {
	return s.violations.All()
}

func (s *monitorService) FlagStats(ctx context.Context) domain.FlagStats {
	return s.violations.Stats()
}

func (s *monitorService) PostOffer(ctx context.Context, req *domain.OfferRequest) error {
	if req.StudentID == "" {
		return invalid(store.ErrMissingStudentID)
	}
	if emptyPayload(req.Offer) {
		return invalid(ErrMissingOffer)
	}

	if err := s.relay.PutOffer(req.StudentID, req.Offer); err != nil {
		return invalid(err)
	}

	audit.Log(ctx, audit.ActionOfferPosted, req.StudentID, "webrtc offer stored")

	s.broadcast(ctx, domain.MsgTypeWebRTCOffer, domain.NewOfferEvent(req.StudentID, req.Offer))

	return nil
}

func (s *monitorService) PostAnswer(ctx context.Context, req *domain.AnswerRequest) error {
	if req.StudentID == "" {
		return invalid(store.ErrMissingStudentID)
	}
	if emptyPayload(req.Answer) {
		return invalid(ErrMissingAnswer)
	}

	if err := s.relay.PutAnswer(req.StudentID, req.Answer); err != nil {
		return invalid(err)
	}

	// Students poll for answers; nothing is pushed.
	audit.Log(ctx, audit.ActionAnswerPosted, req.StudentID, "webrtc answer stored")

	return nil
}

func (s *monitorService) Answer(ctx context.Context, studentID string) (json.RawMessage, bool) {
	return s.relay.GetAnswer(studentID)
}

func (s *monitorService) Offers(ctx context.Context) map[string]json.RawMessage {
	return s.relay.AllOffers()
}

func (s *monitorService) FlagExport(ctx context.Context) ExportStatus {
	if s.kafkaProducer == nil {
		return ExportStatus{}
	}
	return ExportStatus{Enabled: true, DeliveryFailures: s.kafkaProducer.Failed()}
}

// broadcast runs after the store call returns, so no store lock is held
// while the hub iterates its subscribers.
func (s *monitorService) broadcast(ctx context.Context, eventType string, message interface{}) {
	delivered, err := s.hub.Broadcast(eventType, message)
	l := pkglog.Ctx(ctx)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldEventType, eventType).Msg("failed to broadcast")
		return
	}
	l.Debug().
		Str(pkglog.FieldEventType, eventType).
		Int("delivered", delivered).
		Msg("event broadcast")
}
