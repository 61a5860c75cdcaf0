package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const jsonIndent = "  "

// FormatJSON re-indents a raw JSON document. Values and key order are kept
// exactly as received.
func FormatJSON(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", jsonIndent); err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	return buf.String(), nil
}

// MarshalJSON encodes v with the same indentation as FormatJSON
func MarshalJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", jsonIndent)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data), nil
}

// ErrorMarker is the inline placeholder for a failed query: {"error": msg}.
func ErrorMarker(err error) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return data
}

// Section is one named entry of an Aggregate
type Section struct {
	Name string
	Data json.RawMessage
}

// Aggregate is an ordered JSON object. Encoding keeps section order, unlike
// a map.
type Aggregate []Section

// MarshalJSON implements json.Marshaler
func (a Aggregate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(s.Data) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(s.Data)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the data of the named section
func (a Aggregate) Get(name string) (json.RawMessage, bool) {
	for _, s := range a {
		if s.Name == name {
			return s.Data, true
		}
	}
	return nil, false
}
