package domain

import "encoding/json"

// Stream message types sent to monitors.
const (
	MsgTypeNewFlag          = "new_flag"
	MsgTypeLiveScreenUpdate = "live_screen_update"
	MsgTypeWebRTCOffer      = "webrtc_offer"
	MsgTypeHeartbeat        = "heartbeat"
)

// BaseMessage is the base structure for all stream messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// NewFlagMessage announces an appended violation.
type NewFlagMessage struct {
	Type string     `json:"type"`
	Data FlagRecord `json:"data"`
}

// LiveScreenUpdateMessage carries a student's latest live state.
type LiveScreenUpdateMessage struct {
	Type      string         `json:"type"`
	StudentID string         `json:"studentId"`
	Data      LiveStateEntry `json:"data"`
}

// WebRTCOfferMessage tells monitors a student is waiting for an answer.
type WebRTCOfferMessage struct {
	Type      string          `json:"type"`
	StudentID string          `json:"studentId"`
	Offer     json.RawMessage `json:"offer"`
}

// NewFlagEvent wraps a record for the stream.
func NewFlagEvent(record FlagRecord) *NewFlagMessage {
	return &NewFlagMessage{Type: MsgTypeNewFlag, Data: record}
}

// NewLiveScreenEvent wraps a live entry for the stream.
func NewLiveScreenEvent(studentID string, entry LiveStateEntry) *LiveScreenUpdateMessage {
	return &LiveScreenUpdateMessage{Type: MsgTypeLiveScreenUpdate, StudentID: studentID, Data: entry}
}

// NewOfferEvent wraps a pending offer for the stream.
func NewOfferEvent(studentID string, offer json.RawMessage) *WebRTCOfferMessage {
	return &WebRTCOfferMessage{Type: MsgTypeWebRTCOffer, StudentID: studentID, Offer: offer}
}
