package dates

import (
	"testing"
	"time"
)

func TestIsValidDate(t *testing.T) {
	valid := []string{"2025-01-01", "2024-02-29"}
	invalid := []string{"2025-1-1", "2025-02-30", "2023-02-29", "today", ""}

	for _, d := range valid {
		if !IsValidDate(d) {
			t.Errorf("expected %q to be valid", d)
		}
	}
	for _, d := range invalid {
		if IsValidDate(d) {
			t.Errorf("expected %q to be invalid", d)
		}
	}
}

func TestParseDatetime(t *testing.T) {
	valid := []string{
		"2025-01-01T10:30:00Z",
		"2025-06-15T14:00:00+05:00",
		"2025-01-01T10:30",
		"2025-01-01T10:30:45",
	}
	for _, dt := range valid {
		if _, err := ParseDatetime(dt, time.UTC); err != nil {
			t.Errorf("ParseDatetime(%q): %v", dt, err)
		}
	}
	for _, dt := range []string{"", "2025-01-01", "10:30", "2025-13-01T10:30"} {
		if _, err := ParseDatetime(dt, time.UTC); err == nil {
			t.Errorf("expected %q to be invalid", dt)
		}
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 2, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		arg  string
		want time.Time
	}{
		{"today", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)},
		{" Yesterday ", time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"2025-02-01", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-02-01T08:15", time.Date(2025, 2, 1, 8, 15, 0, 0, time.UTC)},
		{"2025-02-01T08:15:00Z", time.Date(2025, 2, 1, 8, 15, 0, 0, time.UTC)},
		{"90m", time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC)},
		{"48h", time.Date(2025, 2, 13, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseSince(tt.arg, now)
			if err != nil {
				t.Fatalf("ParseSince(%q): %v", tt.arg, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "02-01-2025", "tomorrowish", "-5h"} {
		if _, err := ParseSince(bad, now); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
