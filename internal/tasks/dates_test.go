package tasks

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-09-25", time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC), false},
		{"2025-09-25T14:30:00", time.Date(2025, 9, 25, 14, 30, 0, 0, time.UTC), false},
		{"2025-09-25T14:30:00Z", time.Date(2025, 9, 25, 14, 30, 0, 0, time.UTC), false},
		{"next week", time.Time{}, true},
		{"", time.Time{}, true},
		{"25/09/2025", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsValidation(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseNaturalDate(t *testing.T) {
	now := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)

	got, err := ParseNaturalDate("today", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 20 || got.Hour() != 23 || got.Minute() != 59 {
		t.Errorf("today: got %v", got)
	}

	got, err = ParseNaturalDate("tomorrow", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 21 {
		t.Errorf("tomorrow: got %v", got)
	}

	got, err = ParseNaturalDate("in 3 days", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 23 {
		t.Errorf("in 3 days: got %v", got)
	}

	got, err = ParseNaturalDate("2025-10-01", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Month() != 10 || got.Day() != 1 {
		t.Errorf("iso fallback: got %v", got)
	}

	if _, err := ParseNaturalDate("whenever", now); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestPriorityFromText(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"this is URGENT", PriorityHigh},
		{"do it asap", PriorityHigh},
		{"low effort chore", PriorityLow},
		{"get to it eventually", PriorityLow},
		{"buy groceries", PriorityMedium},
	}
	for _, tt := range tests {
		if got := PriorityFromText(tt.in); got != tt.want {
			t.Errorf("PriorityFromText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusFromText(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"mark as done please", StatusDone},
		{"I finished it", StatusDone},
		{"start working on it", StatusInProgress},
		{"back to todo", StatusPending},
		{"hello there", ""},
	}
	for _, tt := range tests {
		if got := StatusFromText(tt.in); got != tt.want {
			t.Errorf("StatusFromText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
