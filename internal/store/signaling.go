package store

import (
	"encoding/json"
	"sync"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

// MemorySignalingRelay is an in-memory SignalingRelay.
//
// Both maps share one lock: a new offer must clear the old answer atomically,
// otherwise a poller could pair the stale answer with the new offer.
// Nothing expires; entries live until overwritten.
type MemorySignalingRelay struct {
	offers  map[string]json.RawMessage // studentID -> SDP offer
	answers map[string]json.RawMessage // studentID -> SDP answer
	mu      sync.RWMutex
}

// NewMemorySignalingRelay creates an empty relay.
func NewMemorySignalingRelay() *MemorySignalingRelay {
	return &MemorySignalingRelay{
		offers:  make(map[string]json.RawMessage),
		answers: make(map[string]json.RawMessage),
	}
}

// PutOffer stores offer for studentID and discards any previous answer.
func (r *MemorySignalingRelay) PutOffer(studentID string, offer json.RawMessage) error {
	if studentID == "" {
		return ErrMissingStudentID
	}

	offer = cloneRaw(offer)

	r.mu.Lock()
	r.offers[studentID] = offer
	delete(r.answers, studentID)
	r.mu.Unlock()
	return nil
}

// PutAnswer stores answer for studentID, replacing any previous answer.
func (r *MemorySignalingRelay) PutAnswer(studentID string, answer json.RawMessage) error {
	if studentID == "" {
		return ErrMissingStudentID
	}

	answer = cloneRaw(answer)

	r.mu.Lock()
	r.answers[studentID] = answer
	r.mu.Unlock()
	return nil
}

// GetAnswer returns the stored answer, or false when there is none yet.
func (r *MemorySignalingRelay) GetAnswer(studentID string) (json.RawMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	answer, ok := r.answers[studentID]
	return answer, ok
}

// AllOffers returns a copy of the offer mapping.
func (r *MemorySignalingRelay) AllOffers() map[string]json.RawMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]json.RawMessage, len(r.offers))
	for id, offer := range r.offers {
		result[id] = offer
	}
	return result
}

// State reports where the exchange for studentID stands.
func (r *MemorySignalingRelay) State(studentID string) domain.SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.answers[studentID]; ok {
		return domain.SessionAnswered
	}
	if _, ok := r.offers[studentID]; ok {
		return domain.SessionOfferPending
	}
	return domain.SessionNoOffer
}

// cloneRaw detaches the payload from the caller's request buffer.
func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

var _ SignalingRelay = (*MemorySignalingRelay)(nil)
