package repository

import "testing"

func TestNormalizeInterval(t *testing.T) {
	tests := map[string]Interval{
		"":    Interval1d,
		"1h":  Interval1h,
		"4h":  Interval4h,
		"1w":  Interval1w,
		"15m": Interval1d,
	}
	for in, want := range tests {
		if got := NormalizeInterval(in); got != want {
			t.Fatalf("NormalizeInterval(%q) = %s, want %s", in, got, want)
		}
	}
}
