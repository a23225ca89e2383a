package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Owoblo/exam-monitor/internal/config"
	"github.com/Owoblo/exam-monitor/internal/domain"
	"github.com/Owoblo/exam-monitor/internal/hub"
	"github.com/Owoblo/exam-monitor/pkg/pubsub"
)

type published struct {
	channel string
	event   *pubsub.Event
}

type fakePublisher struct {
	mu      sync.Mutex
	calls   []published
	entered chan struct{}
	release chan struct{}
	err     error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{entered: make(chan struct{}, 16)}
}

func (f *fakePublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	f.entered <- struct{}{}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, published{channel: channel, event: event})
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.calls...)
}

func waitCount(t *testing.T, h *hub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Count = %d, want %d", h.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitCalls(t *testing.T, f *fakePublisher, n int) []published {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		calls := f.snapshot()
		if len(calls) >= n {
			return calls
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d publishes, want %d", len(calls), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func startMirror(t *testing.T, h *hub.Hub, p pubsub.Publisher) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewMirror(h, p).Run(ctx) }()
	t.Cleanup(cancel)
	waitCount(t, h, 1)
	return done
}

func TestMirrorScopesByStudent(t *testing.T) {
	h := hub.NewHub(config.StreamConfig{QueueSize: 8, HeartbeatInterval: time.Hour})
	p := newFakePublisher()
	startMirror(t, h, p)

	flag := domain.NewFlagEvent(domain.FlagRecord{StudentID: "S1", FlagType: domain.FlagPaste})
	h.Broadcast(flag.Type, flag)
	live := domain.NewLiveScreenEvent("S2", domain.LiveStateEntry{CurrentTitle: domain.Text("Docs")})
	h.Broadcast(live.Type, live)

	calls := waitCalls(t, p, 2)
	if calls[0].channel != "monitor:student:S1:events" || calls[0].event.Type != domain.MsgTypeNewFlag {
		t.Errorf("first publish = %s %s", calls[0].channel, calls[0].event.Type)
	}
	if calls[1].channel != "monitor:student:S2:events" || calls[1].event.StudentID != "S2" {
		t.Errorf("second publish = %s %+v", calls[1].channel, calls[1].event)
	}

	if calls[0].event.Seq != 1 || calls[1].event.Seq != 2 {
		t.Errorf("seq = %d, %d, want 1, 2", calls[0].event.Seq, calls[1].event.Seq)
	}
	if calls[0].event.Source == "" || calls[0].event.Source != calls[1].event.Source {
		t.Errorf("source = %q, %q, want one non-empty id", calls[0].event.Source, calls[1].event.Source)
	}

	var decoded domain.NewFlagMessage
	if err := calls[0].event.UnmarshalPayload(&decoded); err != nil || decoded.Data.StudentID != "S1" {
		t.Errorf("payload = %+v, %v", decoded, err)
	}
}

func TestMirrorSkipsHeartbeats(t *testing.T) {
	h := hub.NewHub(config.StreamConfig{QueueSize: 8, HeartbeatInterval: 10 * time.Millisecond})
	p := newFakePublisher()
	startMirror(t, h, p)

	time.Sleep(50 * time.Millisecond)
	if calls := p.snapshot(); len(calls) != 0 {
		t.Errorf("heartbeats mirrored: %+v", calls)
	}
}

func TestMirrorSurvivesPublishErrors(t *testing.T) {
	h := hub.NewHub(config.StreamConfig{QueueSize: 8, HeartbeatInterval: time.Hour})
	p := newFakePublisher()
	p.err = errors.New("redis down")
	startMirror(t, h, p)

	for i := 0; i < 3; i++ {
		msg := domain.NewOfferEvent("S1", []byte(`{}`))
		h.Broadcast(msg.Type, msg)
	}
	waitCalls(t, p, 3)
	if h.Count() != 1 {
		t.Errorf("mirror unsubscribed after publish errors")
	}
}

func TestMirrorResubscribesAfterDrop(t *testing.T) {
	h := hub.NewHub(config.StreamConfig{QueueSize: 1, HeartbeatInterval: time.Hour})
	p := newFakePublisher()
	p.release = make(chan struct{})
	startMirror(t, h, p)

	msg := domain.NewOfferEvent("S1", []byte(`{}`))
	h.Broadcast(msg.Type, msg)
	<-p.entered // mirror is blocked inside the first publish

	h.Broadcast(msg.Type, msg) // fills the queue
	h.Broadcast(msg.Type, msg) // overflows it
	if h.Count() != 0 {
		t.Fatalf("Count = %d, mirror should have been dropped", h.Count())
	}

	close(p.release)
	waitCount(t, h, 1)
}

func TestMirrorStopsWhenHubCloses(t *testing.T) {
	h := hub.NewHub(config.StreamConfig{QueueSize: 8, HeartbeatInterval: time.Hour})
	done := startMirror(t, h, newFakePublisher())

	h.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mirror did not stop after hub closed")
	}
}

func TestStudentOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"type":"new_flag","data":{"studentId":"A"}}`, "A"},
		{`{"type":"live_screen_update","studentId":"B","data":{}}`, "B"},
		{`{"type":"webrtc_offer","studentId":"C","offer":{}}`, "C"},
		{`{"type":"heartbeat"}`, ""},
		{`not json`, ""},
	}
	for _, tt := range tests {
		if got := studentOf([]byte(tt.in)); got != tt.want {
			t.Errorf("studentOf(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMirrorSourceIsPerInstance(t *testing.T) {
	h := hub.NewHub(config.StreamConfig{QueueSize: 8, HeartbeatInterval: time.Hour})
	a, b := NewMirror(h, newFakePublisher()), NewMirror(h, newFakePublisher())
	if a.Source() == "" || a.Source() == b.Source() {
		t.Errorf("sources = %q, %q, want distinct non-empty ids", a.Source(), b.Source())
	}
}
