package store

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

func TestLiveStateLastWriteWins(t *testing.T) {
	s := NewMemoryLiveStateStore()

	v1 := domain.LiveStateEntry{Screenshot: domain.Text("img-1"), CurrentURL: domain.Text("https://a.example"), Timestamp: domain.Text("t1")}
	v2 := domain.LiveStateEntry{Screenshot: domain.Text("img-2"), CurrentURL: domain.Text("https://b.example"), Timestamp: domain.Text("t2")}

	if got := s.Update("S1", v1); !reflect.DeepEqual(got, v1) {
		t.Errorf("Update() returned %+v, want %+v", got, v1)
	}
	s.Update("S1", v2)

	snap := s.Snapshot()
	if !reflect.DeepEqual(snap["S1"], v2) {
		t.Errorf("Snapshot()[S1] = %+v, want %+v", snap["S1"], v2)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestLiveStateSnapshotIsCopy(t *testing.T) {
	s := NewMemoryLiveStateStore()
	s.Update("S1", domain.LiveStateEntry{CurrentTitle: domain.Text("Exam")})

	snap := s.Snapshot()
	snap["S1"] = domain.LiveStateEntry{CurrentTitle: domain.Text("tampered")}
	delete(snap, "S1")

	got, ok := s.Get("S1")
	if !ok || got.CurrentTitle.String() != "Exam" {
		t.Errorf("Get(S1) = %+v, %v; snapshot mutation leaked into store", got, ok)
	}
}

func TestLiveStateGetUnknown(t *testing.T) {
	s := NewMemoryLiveStateStore()
	if _, ok := s.Get("nobody"); ok {
		t.Error("Get(nobody) ok = true, want false")
	}
	if len(s.Snapshot()) != 0 {
		t.Error("Snapshot() of empty store should be empty")
	}
}

func TestLiveStateConcurrentUpdates(t *testing.T) {
	s := NewMemoryLiveStateStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("S%d", i%10)
			for j := 0; j < 20; j++ {
				s.Update(id, domain.LiveStateEntry{Screenshot: domain.Text(id), Timestamp: domain.Text(fmt.Sprint(j))})
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	if len(snap) != 10 {
		t.Fatalf("Snapshot() has %d students, want 10", len(snap))
	}
	for id, entry := range snap {
		// Screenshot and key are written together; a torn entry would differ.
		if got := entry.Screenshot.String(); got != id {
			t.Errorf("entry for %s has screenshot %q", id, got)
		}
	}
}
