package engine

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	cases := []struct {
		name             string
		stored           int
		today, yesterday int
		want             int
	}{
		{"first ever completion", 0, 0, 0, 1},
		{"continues from yesterday", 4, 0, 2, 5},
		{"reset after a gap", 9, 0, 0, 1},
		{"second completion today is a no-op", 5, 1, 3, 5},
		{"many completions today still a no-op", 5, 7, 0, 5},
	}
	for _, c := range cases {
		if got := nextStreak(c.stored, c.today, c.yesterday); got != c.want {
			t.Errorf("%s: nextStreak(%d,%d,%d)=%d, want %d", c.name, c.stored, c.today, c.yesterday, got, c.want)
		}
	}
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	start, end := dayBounds(at, time.UTC)
	if !start.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start=%v", start)
	}
	if !end.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end=%v", end)
	}
	if got := nextMidnight(at, time.UTC); !got.Equal(end) {
		t.Fatalf("nextMidnight=%v, want %v", got, end)
	}
}
