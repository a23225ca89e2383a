package domain

import (
	"encoding/json"
	"time"
)

// LiveStateEntry is the latest status a student uploaded. Producer fields
// are stored as given.
type LiveStateEntry struct {
	Screenshot   Value  `json:"screenshot"`
	CurrentURL   Value  `json:"currentUrl"`
	CurrentTitle Value  `json:"currentTitle"`
	Timestamp    Value  `json:"timestamp"`
	LastUpdate   string `json:"lastUpdate"`
}

// LiveUpdateRequest is the POST /live-update body.
type LiveUpdateRequest struct {
	StudentID    string `json:"studentId"`
	Screenshot   Value  `json:"screenshot"`
	CurrentURL   Value  `json:"currentUrl"`
	CurrentTitle Value  `json:"currentTitle"`
	Timestamp    Value  `json:"timestamp"`
}

// UnmarshalJSON accepts a string or numeric studentId; other payload fields
// may hold any JSON value.
func (r *LiveUpdateRequest) UnmarshalJSON(data []byte) error {
	type plain LiveUpdateRequest
	var aux struct {
		plain
		StudentID Value `json:"studentId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = LiveUpdateRequest(aux.plain)
	r.StudentID = aux.StudentID.Key()
	return nil
}

// ToEntry stamps the update with the server receipt time.
func (r *LiveUpdateRequest) ToEntry(receivedAt time.Time) LiveStateEntry {
	return LiveStateEntry{
		Screenshot:   r.Screenshot,
		CurrentURL:   r.CurrentURL,
		CurrentTitle: r.CurrentTitle,
		Timestamp:    r.Timestamp,
		LastUpdate:   receivedAt.Format(ReceivedAtLayout),
	}
}
