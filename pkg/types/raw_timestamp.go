package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RawTimestamp keeps a timestamp in whatever JSON shape it was stored with.
// Booking anchors were imported from a schemaless store and appear as ISO
// strings, epoch numbers and {seconds,nanoseconds} objects; interpretation is
// left to the window package.
type RawTimestamp json.RawMessage

// NewRawTimestamp encodes v as a RawTimestamp.
func NewRawTimestamp(v any) (RawTimestamp, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode raw timestamp: %w", err)
	}
	return RawTimestamp(data), nil
}

// RawTimestampFromTime stores t as an RFC3339Nano string.
func RawTimestampFromTime(t time.Time) RawTimestamp {
	data, _ := json.Marshal(t.UTC().Format(time.RFC3339Nano))
	return RawTimestamp(data)
}

// IsZero reports whether no value (or JSON null) is stored.
func (r RawTimestamp) IsZero() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Value implements driver.Valuer. The JSON text is sent as a string so jsonb
// columns accept it under the simple protocol.
func (r RawTimestamp) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return string(r), nil
}

// Scan implements sql.Scanner.
func (r *RawTimestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append(RawTimestamp(nil), v...)
	case string:
		*r = RawTimestamp(v)
	case time.Time:
		*r = RawTimestampFromTime(v)
	default:
		return fmt.Errorf("RawTimestamp: unsupported Scan type %T", src)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r RawTimestamp) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawTimestamp) UnmarshalJSON(data []byte) error {
	*r = append(RawTimestamp(nil), data...)
	return nil
}
