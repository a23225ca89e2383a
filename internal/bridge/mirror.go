package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Owoblo/exam-monitor/internal/domain"
	"github.com/Owoblo/exam-monitor/internal/hub"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
	"github.com/Owoblo/exam-monitor/pkg/pubsub"
)

const (
	TransportMirror = "mirror"
	publishTimeout  = 5 * time.Second
)

// Mirror republishes every stream message to an external bus, scoped to
// the student it concerns. It is an ordinary hub subscriber and is dropped
// like any other when it falls behind, after which it resubscribes.
type Mirror struct {
	hub       *hub.Hub
	publisher pubsub.Publisher
	source    string
	seq       atomic.Uint64
}

// NewMirror creates a Mirror with a fresh source id for this process.
func NewMirror(h *hub.Hub, publisher pubsub.Publisher) *Mirror {
	return &Mirror{
		hub:       h,
		publisher: publisher,
		source:    uuid.NewString(),
	}
}

// Source returns the id stamped on every event this mirror publishes.
func (m *Mirror) Source() string { return m.source }

// Run forwards events until ctx is cancelled or the hub closes.
func (m *Mirror) Run(ctx context.Context) error {
	l := pkglog.L()

	for {
		sub := m.hub.Subscribe(TransportMirror)
		err := m.hub.Drain(ctx, sub, func(event hub.Event) error {
			m.forward(ctx, event)
			return nil
		})
		m.hub.Unsubscribe(sub)

		if ctx.Err() != nil || m.hub.Closed() {
			return nil
		}
		if !errors.Is(err, hub.ErrSubscriberDropped) {
			return err
		}

		l.Warn().Str(pkglog.FieldSubscriberID, sub.ID).Msg("mirror fell behind, resubscribing")
	}
}

// messageScope picks the student id out of any stream message shape.
type messageScope struct {
	StudentID string `json:"studentId"`
	Data      struct {
		StudentID string `json:"studentId"`
	} `json:"data"`
}

func studentOf(data []byte) string {
	var scope messageScope
	if err := json.Unmarshal(data, &scope); err != nil {
		return ""
	}
	if scope.StudentID != "" {
		return scope.StudentID
	}
	return scope.Data.StudentID
}

// forward never fails the drain loop; a bus outage only costs the mirrored copy.
func (m *Mirror) forward(ctx context.Context, event hub.Event) {
	if event.Type == domain.MsgTypeHeartbeat {
		return
	}

	studentID := studentOf(event.Data)
	channel := pubsub.StudentEventsChannel(studentID)

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	out := pubsub.NewEvent(event.Type, studentID, event.Data)
	out.Source = m.source
	out.Seq = m.seq.Add(1)

	if err := m.publisher.Publish(pubCtx, channel, out); err != nil {
		l := pkglog.L()
		l.Error().
			Err(err).
			Str("channel", channel).
			Str(pkglog.FieldEventType, event.Type).
			Msg("failed to mirror event")
	}
}
