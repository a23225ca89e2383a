package domain

import (
	"encoding/json"
	"time"
)

// ReceivedAtLayout formats server receipt times the way dashboards display them.
const ReceivedAtLayout = "2006-01-02 03:04:05 PM"

// Violation kinds reported by the browser extension. The set is open; any
// non-empty tag is accepted.
const (
	FlagSiteVisit       = "SITE_VISIT"
	FlagPaste           = "PASTE"
	FlagCopy            = "COPY"
	FlagTyping          = "TYPING"
	FlagAIDetected      = "AI_DETECTED"
	FlagTabSwitch       = "TAB_SWITCH"
	FlagFocusLost       = "FOCUS_LOST"
	FlagExtendedAbsence = "EXTENDED_ABSENCE"
)

// FlagRecord is one violation event. It is never modified after it has been
// appended to the log. Fields the producer sent beyond the known ones are
// kept in Extra and encoded alongside them.
type FlagRecord struct {
	StudentID  string `json:"studentId"`
	FlagType   string `json:"flagType"`
	Domain     Value  `json:"domain"`
	FullURL    Value  `json:"fullUrl,omitempty"`
	Screenshot Value  `json:"screenshot,omitempty"`

	// Captured text evidence, truncated by the producer.
	PastedText Value `json:"pastedText,omitempty"`
	CopiedText Value `json:"copiedText,omitempty"`
	TypedText  Value `json:"typedText,omitempty"`
	TextLength Value `json:"textLength,omitempty"`

	Timestamp  Value  `json:"timestamp"`
	ReceivedAt string `json:"received_at"`

	Extra map[string]json.RawMessage `json:"-"`
}

// flagFields are the member names FlagRecord and FlagRequest decode
// themselves. received_at is always set by the server.
var flagFields = map[string]struct{}{
	"studentId":   {},
	"flagType":    {},
	"domain":      {},
	"fullUrl":     {},
	"screenshot":  {},
	"pastedText":  {},
	"copiedText":  {},
	"typedText":   {},
	"textLength":  {},
	"timestamp":   {},
	"received_at": {},
}

func (r FlagRecord) MarshalJSON() ([]byte, error) {
	type plain FlagRecord
	known, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return known, err
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+len(flagFields))
	for name, raw := range r.Extra {
		merged[name] = raw
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for name, raw := range fields {
		merged[name] = raw
	}
	return json.Marshal(merged)
}

func (r *FlagRecord) UnmarshalJSON(data []byte) error {
	type plain FlagRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, flagFields)
	if err != nil {
		return err
	}
	*r = FlagRecord(p)
	r.Extra = extra
	return nil
}

// FlagRequest is the POST /flag body.
type FlagRequest struct {
	StudentID  string `json:"studentId"`
	FlagType   string `json:"flagType"`
	Domain     Value  `json:"domain"`
	FullURL    Value  `json:"fullUrl"`
	Screenshot Value  `json:"screenshot"`
	PastedText Value  `json:"pastedText"`
	CopiedText Value  `json:"copiedText"`
	TypedText  Value  `json:"typedText"`
	TextLength Value  `json:"textLength"`
	Timestamp  Value  `json:"timestamp"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts string or numeric studentId and flagType, any JSON
// value in the payload fields, and collects unknown members into Extra.
func (r *FlagRequest) UnmarshalJSON(data []byte) error {
	type plain FlagRequest
	var aux struct {
		plain
		StudentID Value `json:"studentId"`
		FlagType  Value `json:"flagType"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	extra, err := extraFields(data, flagFields)
	if err != nil {
		return err
	}
	*r = FlagRequest(aux.plain)
	r.StudentID = aux.StudentID.Key()
	r.FlagType = aux.FlagType.Key()
	r.Extra = extra
	return nil
}

// ToRecord builds the immutable record, defaulting the kind to a site visit
// when the producer did not tag one.
func (r *FlagRequest) ToRecord(receivedAt time.Time) FlagRecord {
	flagType := r.FlagType
	if flagType == "" {
		flagType = FlagSiteVisit
	}
	return FlagRecord{
		StudentID:  r.StudentID,
		FlagType:   flagType,
		Domain:     r.Domain,
		FullURL:    r.FullURL,
		Screenshot: r.Screenshot,
		PastedText: r.PastedText,
		CopiedText: r.CopiedText,
		TypedText:  r.TypedText,
		TextLength: r.TextLength,
		Timestamp:  r.Timestamp,
		ReceivedAt: receivedAt.Format(ReceivedAtLayout),
		Extra:      r.Extra,
	}
}

// FlagStats are the dashboard header counters.
type FlagStats struct {
	TotalFlags      int `json:"totalFlags"`
	StudentsFlagged int `json:"studentsFlagged"`
	UniqueDomains   int `json:"uniqueDomains"`
}
