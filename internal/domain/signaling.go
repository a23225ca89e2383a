package domain

import "encoding/json"

// SessionState is where a student's offer/answer exchange currently stands.
type SessionState string

const (
	SessionNoOffer      SessionState = "no_offer"
	SessionOfferPending SessionState = "offer_pending"
	SessionAnswered     SessionState = "answered"
)

// OfferRequest is the POST /signal/offer body. The SDP payload is opaque.
type OfferRequest struct {
	StudentID string          `json:"studentId"`
	Offer     json.RawMessage `json:"offer"`
}

// AnswerRequest is the POST /signal/answer body.
type AnswerRequest struct {
	StudentID string          `json:"studentId"`
	Answer    json.RawMessage `json:"answer"`
}

// AnswerResponse is returned by GET /signal/answer/:studentId. Answer is null
// until the monitor side has posted one.
type AnswerResponse struct {
	Answer json.RawMessage `json:"answer"`
}

// UnmarshalJSON accepts a string or numeric studentId.
func (r *OfferRequest) UnmarshalJSON(data []byte) error {
	type plain OfferRequest
	var aux struct {
		plain
		StudentID Value `json:"studentId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = OfferRequest(aux.plain)
	r.StudentID = aux.StudentID.Key()
	return nil
}

// UnmarshalJSON accepts a string or numeric studentId.
func (r *AnswerRequest) UnmarshalJSON(data []byte) error {
	type plain AnswerRequest
	var aux struct {
		plain
		StudentID Value `json:"studentId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = AnswerRequest(aux.plain)
	r.StudentID = aux.StudentID.Key()
	return nil
}
