// Package window decides whether a holding period anchored on a stored
// timestamp has elapsed.
package window

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

var (
	// ErrMissingAnchor means the anchor field is absent or null.
	ErrMissingAnchor = stdErrors.New("timestamp anchor is missing")
	// ErrUnparseable means the anchor is present in a shape we do not understand.
	ErrUnparseable = stdErrors.New("timestamp anchor could not be parsed")
)

// Epoch is the {seconds, nanoseconds} shape written by document stores.
type Epoch struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// millisecondThreshold separates epoch seconds from epoch milliseconds. Seconds
// values above it would land past the year 33000.
const millisecondThreshold = 1e12

// Anchors must fall between years 0001 and 9999. Anything outside is corrupt
// data, and converting it would wrap int64 or overflow time arithmetic.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
	maxEpochMillis  = maxEpochSeconds * 1000
)

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts any supported timestamp representation into a UTC instant.
// Errors carry the DATA_QUALITY code and wrap ErrMissingAnchor or ErrUnparseable.
func Normalize(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, missing()
	case time.Time:
		if v.IsZero() {
			return time.Time{}, missing()
		}
		return v.UTC(), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, missing()
		}
		return v.UTC(), nil
	case types.RawTimestamp:
		if v.IsZero() {
			return time.Time{}, missing()
		}
		return normalizeJSON(v)
	case json.RawMessage:
		return normalizeJSON(v)
	case []byte:
		return normalizeJSON(v)
	case string:
		return normalizeString(v)
	case json.Number:
		return normalizeNumberString(v.String())
	case int:
		return fromEpoch(float64(v), raw)
	case int64:
		return fromEpoch(float64(v), raw)
	case float64:
		return fromEpoch(v, raw)
	case Epoch:
		return fromUnix(v.Seconds, v.Nanoseconds, raw)
	case *Epoch:
		if v == nil {
			return time.Time{}, missing()
		}
		return fromUnix(v.Seconds, v.Nanoseconds, raw)
	case map[string]any:
		return normalizeMap(v)
	}
	return time.Time{}, unparseable(raw)
}

// HasElapsed reports whether now is at or past anchor+window. A deadline that
// overflows the time range never elapses.
func HasElapsed(anchor time.Time, window time.Duration, now time.Time) bool {
	deadline, ok := addWindow(anchor, window)
	if !ok {
		return false
	}
	return !now.Before(deadline)
}

// HasWindowElapsed normalizes raw and compares it against now. When the anchor
// cannot be interpreted it reports false together with the data-quality error,
// so callers never release money on bad data.
func HasWindowElapsed(raw any, window time.Duration, now time.Time) (bool, error) {
	anchor, err := Normalize(raw)
	if err != nil {
		return false, err
	}
	return HasElapsed(anchor, window, now), nil
}

// Deadline returns the instant at which the window closes.
func Deadline(raw any, window time.Duration) (time.Time, error) {
	anchor, err := Normalize(raw)
	if err != nil {
		return time.Time{}, err
	}
	deadline, ok := addWindow(anchor, window)
	if !ok {
		return time.Time{}, unparseable(raw)
	}
	return deadline, nil
}

func addWindow(anchor time.Time, window time.Duration) (time.Time, bool) {
	// Time.Add saturates at the ends of the range, so a clipped result shows up
	// as a shorter distance.
	deadline := anchor.Add(window)
	if deadline.Sub(anchor) != window {
		return time.Time{}, false
	}
	return deadline, true
}

func normalizeJSON(data []byte) (time.Time, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return time.Time{}, missing()
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return time.Time{}, unparseable(string(trimmed))
	}
	switch decoded.(type) {
	case string, json.Number, map[string]any, nil:
		return Normalize(decoded)
	}
	return time.Time{}, unparseable(string(trimmed))
}

func normalizeString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, missing()
	}
	for _, layout := range stringLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, unparseable(value)
}

func normalizeNumberString(value string) (time.Time, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return time.Time{}, unparseable(value)
	}
	return fromEpoch(parsed, value)
}

func normalizeMap(m map[string]any) (time.Time, error) {
	secondsRaw, ok := firstPresent(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, unparseable(m)
	}
	seconds, ok := toInt64(secondsRaw)
	if !ok {
		return time.Time{}, unparseable(m)
	}
	var nanos int64
	if nanosRaw, ok := firstPresent(m, "nanoseconds", "_nanoseconds"); ok {
		if nanos, ok = toInt64(nanosRaw); !ok {
			return time.Time{}, unparseable(m)
		}
	}
	return fromUnix(seconds, nanos, m)
}

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(n)
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

// floatToInt64 refuses values int64 cannot hold instead of letting the
// conversion wrap.
func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func fromEpoch(value float64, raw any) (time.Time, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return time.Time{}, unparseable(raw)
	}
	if math.Abs(value) >= millisecondThreshold {
		if value < minEpochSeconds*1000 || value > maxEpochMillis {
			return time.Time{}, unparseable(raw)
		}
		return time.UnixMilli(int64(value)).UTC(), nil
	}
	whole, frac := math.Modf(value)
	return fromUnix(int64(whole), int64(frac*1e9), raw)
}

func fromUnix(seconds, nanos int64, raw any) (time.Time, error) {
	if seconds < minEpochSeconds || seconds > maxEpochSeconds || nanos <= -1e9 || nanos >= 1e9 {
		return time.Time{}, unparseable(raw)
	}
	return time.Unix(seconds, nanos).UTC(), nil
}

func missing() error {
	return pkgerrors.Wrap(pkgerrors.CodeDataQuality, ErrMissingAnchor, "timestamp anchor is missing")
}

func unparseable(raw any) error {
	return pkgerrors.Wrap(pkgerrors.CodeDataQuality, fmt.Errorf("%w: %v", ErrUnparseable, raw), "timestamp anchor could not be parsed")
}
