package window

import (
	"encoding/json"
	stdErrors "errors"
	"math"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

func TestNormalizeShapes(t *testing.T) {
	want := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	local := want.In(time.FixedZone("EET", 2*60*60))

	cases := []struct {
		name string
		raw  any
		want time.Time
	}{
		{name: "time", raw: local, want: want},
		{name: "time pointer", raw: &local, want: want},
		{name: "rfc3339", raw: "2024-05-10T12:30:00Z", want: want},
		{name: "rfc3339 offset", raw: "2024-05-10T14:30:00+02:00", want: want},
		{name: "naive", raw: "2024-05-10T12:30:00", want: want},
		{name: "date only", raw: "2024-05-10", want: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		{name: "epoch seconds", raw: want.Unix(), want: want},
		{name: "epoch millis", raw: float64(want.UnixMilli()), want: want},
		{name: "epoch struct", raw: Epoch{Seconds: want.Unix()}, want: want},
		{name: "seconds map", raw: map[string]any{"seconds": float64(want.Unix()), "nanoseconds": float64(0)}, want: want},
		{name: "underscore map", raw: map[string]any{"_seconds": want.Unix(), "_nanoseconds": 500}, want: want.Add(500 * time.Nanosecond)},
		{name: "raw iso", raw: types.RawTimestamp(`"2024-05-10T12:30:00Z"`), want: want},
		{name: "raw object", raw: types.RawTimestamp(`{"_seconds":1715344200,"_nanoseconds":0}`), want: want},
		{name: "raw number", raw: json.RawMessage(`1715344200`), want: want},
		{name: "json number", raw: json.Number("1715344200000"), want: want},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("Normalize() = %s, want %s", got, tc.want)
			}
			if got.Location() != time.UTC {
				t.Fatalf("expected UTC, got %s", got.Location())
			}
		})
	}
}

func TestNormalizeMissing(t *testing.T) {
	var nilTime *time.Time
	for _, raw := range []any{nil, time.Time{}, nilTime, "", "  ", types.RawTimestamp(nil), types.RawTimestamp("null")} {
		_, err := Normalize(raw)
		if !stdErrors.Is(err, ErrMissingAnchor) {
			t.Fatalf("Normalize(%#v) error = %v, want ErrMissingAnchor", raw, err)
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeDataQuality) {
			t.Fatalf("expected DATA_QUALITY code, got %v", err)
		}
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	cases := []any{
		"next tuesday",
		true,
		map[string]any{"when": "soon"},
		types.RawTimestamp(`[1,2]`),
		types.RawTimestamp(`{broken`),
		struct{}{},
		math.NaN(),
		math.Inf(1),
		float64(1e300),
		float64(-1e300),
		json.Number("1e300"),
		types.RawTimestamp(`1e300`),
		int64(math.MaxInt64),
		float64(500000000000),
		map[string]any{"seconds": float64(1e300)},
		map[string]any{"_seconds": json.Number("1e300")},
		map[string]any{"seconds": float64(1715344200), "nanoseconds": float64(1e300)},
		Epoch{Seconds: math.MaxInt64},
		Epoch{Seconds: 1715344200, Nanoseconds: 5e9},
	}
	for _, raw := range cases {
		_, err := Normalize(raw)
		if !stdErrors.Is(err, ErrUnparseable) {
			t.Fatalf("Normalize(%#v) error = %v, want ErrUnparseable", raw, err)
		}
		elapsed, err := HasWindowElapsed(raw, 24*time.Hour, time.Now())
		if elapsed || err == nil {
			t.Fatalf("HasWindowElapsed(%#v) = %v, %v; out-of-range anchors must fail safe", raw, elapsed, err)
		}
	}
}

func TestNormalizeAcceptsRangeEdges(t *testing.T) {
	last := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	got, err := Normalize(map[string]any{"seconds": float64(last.Unix())})
	if err != nil || !got.Equal(last) {
		t.Fatalf("Normalize(last second) = %s, %v", got, err)
	}
	got, err = Normalize(float64(last.UnixMilli()))
	if err != nil || !got.Equal(last) {
		t.Fatalf("Normalize(last millisecond) = %s, %v", got, err)
	}
}

func TestHasElapsedOverflowNeverElapses(t *testing.T) {
	// The last representable second; adding a day clips.
	anchor := time.Unix(math.MaxInt64-62135596800, 0)
	if HasElapsed(anchor, 24*time.Hour, anchor.Add(time.Hour)) {
		t.Fatal("a deadline past the time range must not elapse")
	}
	if !HasElapsed(time.Unix(0, 0), 24*time.Hour, time.Unix(0, 0).Add(24*time.Hour)) {
		t.Fatal("ordinary anchors still elapse at the deadline")
	}
}

func TestHasElapsedBoundary(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	if HasElapsed(anchor, window, anchor.Add(window-time.Second)) {
		t.Fatal("window must not elapse one second early")
	}
	if !HasElapsed(anchor, window, anchor.Add(window)) {
		t.Fatal("window must elapse exactly at the deadline")
	}
	if !HasElapsed(anchor, window, anchor.Add(window+time.Second)) {
		t.Fatal("window must elapse one second late")
	}
}

func TestHasWindowElapsedFailsSafe(t *testing.T) {
	now := time.Now()
	elapsed, err := HasWindowElapsed("garbage", time.Hour, now)
	if elapsed {
		t.Fatal("unparseable anchors must never count as elapsed")
	}
	if err == nil {
		t.Fatal("expected a data-quality error")
	}

	elapsed, err = HasWindowElapsed(types.RawTimestampFromTime(now.Add(-2*time.Hour)), time.Hour, now)
	if err != nil || !elapsed {
		t.Fatalf("expected elapsed window, got %v, %v", elapsed, err)
	}
}

func TestDeadline(t *testing.T) {
	deadline, err := Deadline("2024-01-01T00:00:00Z", 24*time.Hour)
	if err != nil {
		t.Fatalf("Deadline() error = %v", err)
	}
	if !deadline.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected deadline %s", deadline)
	}
}
