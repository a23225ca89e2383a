package pubsub

import (
	"encoding/json"
	"testing"
)

func TestStudentEventsChannel(t *testing.T) {
	if got := StudentEventsChannel("S1"); got != "monitor:student:S1:events" {
		t.Errorf("StudentEventsChannel(S1) = %q", got)
	}
	if got := StudentEventsChannel(""); got != "monitor:student:all:events" {
		t.Errorf("StudentEventsChannel(\"\") = %q", got)
	}
}

func TestChannelToTopicAndKey(t *testing.T) {
	tests := []struct {
		channel string
		topic   string
		key     string
		wantErr bool
	}{
		{StudentEventsChannel("S1"), TopicMonitorEvents, "S1", false},
		{StudentEventsChannel(""), TopicMonitorEvents, AllStudents, false},
		{"monitor:room:S1:events", "", "", true},
		{"monitor:student::events", "", "", true},
		{"garbage", "", "", true},
	}
	for _, tt := range tests {
		topic, key, err := channelToTopicAndKey(tt.channel)
		if (err != nil) != tt.wantErr {
			t.Errorf("channelToTopicAndKey(%q) error = %v, wantErr %v", tt.channel, err, tt.wantErr)
			continue
		}
		if topic != tt.topic || key != tt.key {
			t.Errorf("channelToTopicAndKey(%q) = (%q, %q), want (%q, %q)", tt.channel, topic, key, tt.topic, tt.key)
		}
	}
}

func TestEventPayloadIsEmbeddedVerbatim(t *testing.T) {
	ev := NewEvent("new_flag", "S1", json.RawMessage(`{"type":"new_flag"}`))
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Type      string          `json:"type"`
		StudentID string          `json:"student_id"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.StudentID != "S1" || string(decoded.Payload) != `{"type":"new_flag"}` {
		t.Errorf("decoded = %+v", decoded)
	}

	var msg struct{ Type string }
	if err := ev.UnmarshalPayload(&msg); err != nil || msg.Type != "new_flag" {
		t.Errorf("UnmarshalPayload = %+v, %v", msg, err)
	}
}
