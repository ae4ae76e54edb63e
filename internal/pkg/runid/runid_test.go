package runid

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestEncodeTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"Zero timestamp", 0, "000000"},
		{"One second", 1, "000001"},
		{"62 seconds", 62, "000010"},
		{"One minute", 60, "00000y"},
		{"One hour", 3600, "0000w4"},
		{"One day", 86400, "000MTY"},
		{"2024-01-01", 1704067200, "1rK5iq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := encodeTimestamp(tt.seconds)
			if result != tt.expected {
				t.Errorf("encodeTimestamp(%d) = %s, want %s", tt.seconds, result, tt.expected)
			}
		})
	}
}

func TestRandomBase62(t *testing.T) {
	id := randomBase62(24)
	if len(id) != 24 {
		t.Errorf("length = %d, want 24", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			t.Errorf("non-base62 character %c in %s", c, id)
		}
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := randomBase62(24)
		if seen[id] {
			t.Errorf("duplicate id: %s", id)
		}
		seen[id] = true
	}
}

func TestNewFormat(t *testing.T) {
	id := New("scrape")

	if len(id) != len("scrape_")+timestampLength+randomLength {
		t.Errorf("id length incorrect: got %d in %s", len(id), id)
	}

	matched, _ := regexp.MatchString(`^scrape_[0-9A-Za-z]{24}$`, id)
	if !matched {
		t.Errorf("id format doesn't match expected pattern: %s", id)
	}
}

func TestNewUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := New("scrape")
		if ids[id] {
			t.Errorf("duplicate id: %s", id)
		}
		ids[id] = true
	}
}

func TestNewTimeSortability(t *testing.T) {
	extract := func(id string) string {
		parts := strings.Split(id, "_")
		if len(parts) != 2 {
			t.Fatalf("unexpected id format: %s", id)
		}
		return parts[1][:timestampLength]
	}

	id1 := New("scrape")
	time.Sleep(10 * time.Millisecond)
	id2 := New("scrape")

	if extract(id1) > extract(id2) {
		t.Errorf("timestamps not sorted: %s > %s", extract(id1), extract(id2))
	}
}
