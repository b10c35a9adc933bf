package pagination

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	id uuid.UUID
	at time.Time
}

func (r row) PageKey() Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

func TestSliceEncodesNextCursor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{id: uuid.New(), at: base.Add(3 * time.Minute)},
		{id: uuid.New(), at: base.Add(2 * time.Minute)},
		{id: uuid.New(), at: base.Add(time.Minute)},
	}

	page := Slice(rows, 2)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	cursor, err := ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("ParseCursor() error = %v", err)
	}
	if cursor.ID != rows[1].id || !cursor.CreatedAt.Equal(rows[1].at) {
		t.Fatalf("unexpected cursor %+v", cursor)
	}

	last := Slice(rows[:1], 2)
	if last.NextCursor != "" || len(last.Items) != 1 {
		t.Fatalf("expected final page, got %+v", last)
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(7) != 7 {
		t.Fatal("unexpected limit normalization")
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); c != nil || err != nil {
		t.Fatalf("empty cursor should be nil, got %v, %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCursorIsQuerySafe(t *testing.T) {
	// Offsets like +02:00 would yield '+' and '/' in standard base64.
	at := time.Date(2026, 3, 1, 23, 59, 59, 999999999, time.FixedZone("EET", 2*60*60))
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: uuid.New()})
	if strings.ContainsAny(encoded, "+/=") {
		t.Fatalf("cursor %q is not query-safe", encoded)
	}
	decoded, err := ParseCursor(encoded)
	if err != nil || !decoded.CreatedAt.Equal(at) {
		t.Fatalf("round trip failed: %v %v", decoded, err)
	}
}

func TestKeysetScopeResumesAfterCursor(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	type item struct {
		ID        uuid.UUID `gorm:"type:text;primaryKey"`
		CreatedAt time.Time
	}
	if err := conn.AutoMigrate(&item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var all []row
	for i := 0; i < 5; i++ {
		it := item{ID: uuid.New(), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := conn.Create(&it).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
		all = append(all, row{id: it.ID, at: it.CreatedAt})
	}

	var seen []uuid.UUID
	var cursor *Cursor
	for pages := 0; pages < 10; pages++ {
		var items []item
		if err := conn.Model(&item{}).Scopes(Keyset(cursor, 2)).Find(&items).Error; err != nil {
			t.Fatalf("query: %v", err)
		}
		rows := make([]row, 0, len(items))
		for _, it := range items {
			rows = append(rows, row{id: it.ID, at: it.CreatedAt})
		}
		page := Slice(rows, 2)
		for _, r := range page.Items {
			seen = append(seen, r.id)
		}
		if page.NextCursor == "" {
			break
		}
		if cursor, err = ParseCursor(page.NextCursor); err != nil {
			t.Fatalf("parse cursor: %v", err)
		}
	}

	if len(seen) != len(all) {
		t.Fatalf("expected %d rows across pages, got %d", len(all), len(seen))
	}
	for i, id := range seen {
		if want := all[len(all)-1-i].id; id != want {
			t.Fatalf("row %d: expected %s got %s", i, want, id)
		}
	}
}
