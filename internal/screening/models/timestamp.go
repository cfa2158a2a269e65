package models

import (
	"bytes"
	"encoding/json"
	"time"

	"regscope/pkg/validation"
)

const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a transaction time as clients send it: ISO 8601 with or without an
// offset (T or space separated), a bare date, or Unix epoch seconds. A value sent
// without an offset stays naive and is rendered without one.
type Timestamp struct {
	time.Time
	Naive bool
}

// NewTimestamp wraps an instant with a known offset.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// JSONSchema lets validation.Decode accept every supported form.
func (Timestamp) JSONSchema() map[string]any {
	return map[string]any{"type": []any{"string", "number"}, "format": validation.FormatDateTime}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	parsed, naive, err := validation.ParseDateTime(v)
	if err != nil {
		return err
	}
	t.Time, t.Naive = parsed, naive
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// String renders RFC 3339, or ISO 8601 without an offset for naive values.
func (t Timestamp) String() string {
	if t.Naive {
		return t.Time.Format(naiveLayout)
	}
	return t.Time.Format(time.RFC3339Nano)
}
