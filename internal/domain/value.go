package domain

import (
	"bytes"
	"encoding/json"
)

// Value is a producer-supplied JSON value kept exactly as it arrived, so a
// number, object or string is echoed to dashboards unchanged. An absent
// value encodes as an empty string.
type Value json.RawMessage

// Text builds a Value holding the JSON string s.
func Text(s string) Value {
	b, _ := json.Marshal(s)
	return b
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte(`""`), nil
	}
	return v, nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

// IsZero reports whether the value was absent or null.
func (v Value) IsZero() bool {
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// String returns the content of a JSON string, or the raw JSON text of any
// other value. Absent and null values are empty.
func (v Value) String() string {
	if v.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

// Key returns v as an identifier. Strings are used as is and numbers by
// their literal text; any other value yields "".
func (v Value) Key() string {
	if v.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

// extraFields returns the members of the JSON object data whose names are
// not in known.
func extraFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	for name, raw := range all {
		if _, ok := known[name]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[name] = raw
	}
	return extra, nil
}
