package cache

import (
	"math"
	"testing"
	"time"
)

func TestKeyDeterministic(t *testing.T) {
	from := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)

	a := NewKey("prop").
		Int("player", 237).
		Str("category", "pra").
		Float("line", 24.5).
		Date("from", from).
		Ints("exclude", []int64{9, 3, 3, 5}).
		String()

	b := NewKey("prop").
		Ints("exclude", []int64{5, 9, 3}).
		Date("from", from.Add(30*time.Minute)).
		Float("line", 24.5).
		Str("category", "pra").
		Int("player", 237).
		String()

	if a != b {
		t.Errorf("keys differ:\n%s\n%s", a, b)
	}
	want := "prop|category=pra|exclude=3,5,9|from=2024-01-01|line=24.5|player=237"
	if a != want {
		t.Errorf("key = %s, want %s", a, want)
	}
}

func TestKeyDistinguishesParameters(t *testing.T) {
	tests := []struct {
		name string
		a, b *Key
	}{
		{"namespace", NewKey("prop").Int("player", 1), NewKey("metrics").Int("player", 1)},
		{"line", NewKey("prop").Float("line", 20), NewKey("prop").Float("line", 20.5)},
		{"exclude", NewKey("prop").Ints("exclude", nil), NewKey("prop").Ints("exclude", []int64{4})},
		{"zero date", NewKey("prop").Date("to", time.Time{}), NewKey("prop").Date("to", time.Unix(0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.String() == tt.b.String() {
				t.Errorf("expected different keys, both %s", tt.a.String())
			}
		})
	}
}

func TestKeyNegativeZero(t *testing.T) {
	neg := NewKey("prop").Float("line", math.Copysign(0, -1)).String()
	pos := NewKey("prop").Float("line", 0).String()
	if neg != pos {
		t.Errorf("negative zero line gave %s, want %s", neg, pos)
	}
}
