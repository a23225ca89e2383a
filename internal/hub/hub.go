package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Owoblo/exam-monitor/internal/config"
	"github.com/Owoblo/exam-monitor/internal/domain"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
)

const (
	defaultQueueSize         = 64
	defaultHeartbeatInterval = 30 * time.Second
)

// ErrSubscriberDropped is returned by Drain when the hub removed the
// subscriber, either because its queue overflowed or the hub closed.
var ErrSubscriberDropped = errors.New("subscriber dropped")

var heartbeatPayload = []byte(`{"type":"` + domain.MsgTypeHeartbeat + `"}`)

// Event is one encoded stream message.
type Event struct {
	Type string
	Data []byte
}

// HeartbeatEvent returns the keep-alive message sent on idle streams.
func HeartbeatEvent() Event {
	return Event{Type: domain.MsgTypeHeartbeat, Data: heartbeatPayload}
}

// Subscriber is a monitor connection registered with the hub.
type Subscriber struct {
	ID        string
	Transport string
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events returns the subscriber's delivery queue.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Done is closed once the subscriber is removed from the hub.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Hub fans stream messages out to every registered subscriber.
// Publishing never blocks: a subscriber whose queue is full is dropped.
type Hub struct {
	subscribers map[string]*Subscriber
	mu          sync.RWMutex
	closed      bool
	config      config.StreamConfig
}

// NewHub creates a new Hub.
func NewHub(cfg config.StreamConfig) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		config:      cfg,
	}
}

// Subscribe registers a new subscriber. It receives every message
// published after this call returns.
func (h *Hub) Subscribe(transport string) *Subscriber {
	sub := &Subscriber{
		ID:        uuid.New().String(),
		Transport: transport,
		events:    make(chan Event, h.config.QueueSize),
		done:      make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub
	}
	h.subscribers[sub.ID] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	l := pkglog.L()
	l.Info().
		Str(pkglog.FieldSubscriberID, sub.ID).
		Str(pkglog.FieldTransport, transport).
		Int("subscribers", count).
		Msg("monitor subscribed")

	return sub
}

// Unsubscribe removes the subscriber. Calling it more than once is safe.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if h.remove(sub) {
		l := pkglog.L()
		l.Info().
			Str(pkglog.FieldSubscriberID, sub.ID).
			Str(pkglog.FieldTransport, sub.Transport).
			Msg("monitor unsubscribed")
	}
}

func (h *Hub) remove(sub *Subscriber) bool {
	h.mu.Lock()
	_, ok := h.subscribers[sub.ID]
	if ok {
		delete(h.subscribers, sub.ID)
	}
	h.mu.Unlock()

	sub.close()
	return ok
}

// Publish enqueues the event for every current subscriber and returns
// the number of subscribers it was delivered to.
func (h *Hub) Publish(event Event) int {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		select {
		case <-sub.done:
			continue
		default:
		}

		select {
		case sub.events <- event:
			delivered++
		default:
			// Subscriber too slow, drop it
			if h.remove(sub) {
				l := pkglog.L()
				l.Warn().
					Str(pkglog.FieldSubscriberID, sub.ID).
					Str(pkglog.FieldTransport, sub.Transport).
					Str(pkglog.FieldEventType, event.Type).
					Int("queue_size", h.config.QueueSize).
					Msg("monitor queue full, dropping subscriber")
			}
		}
	}

	return delivered
}

// Broadcast encodes message as JSON and publishes it.
func (h *Hub) Broadcast(eventType string, message interface{}) (int, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal %s message: %w", eventType, err)
	}
	return h.Publish(Event{Type: eventType, Data: data}), nil
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HeartbeatInterval returns the idle window after which Drain emits a heartbeat.
func (h *Hub) HeartbeatInterval() time.Duration {
	return h.config.HeartbeatInterval
}

// Closed reports whether Close has been called.
func (h *Hub) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// Close drops every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subscribers
	h.subscribers = make(map[string]*Subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
