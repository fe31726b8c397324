package dateutil

import (
	"testing"
	"time"
)

func TestMonthAbbrev(t *testing.T) {
	tests := []struct {
		month int
		want  string
	}{
		{1, "Jan"},
		{2, "Fev"},
		{5, "Mai"},
		{9, "Set"},
		{12, "Dez"},
	}
	for _, tt := range tests {
		got, err := MonthAbbrev(tt.month)
		if err != nil {
			t.Fatalf("MonthAbbrev(%d): %v", tt.month, err)
		}
		if got != tt.want {
			t.Errorf("MonthAbbrev(%d) = %q, want %q", tt.month, got, tt.want)
		}
	}

	for _, bad := range []int{0, 13, -1} {
		if _, err := MonthAbbrev(bad); err == nil {
			t.Errorf("MonthAbbrev(%d) should fail", bad)
		}
	}
}

func TestIsStrictlyFuture(t *testing.T) {
	now := time.Date(2030, 5, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"tomorrow", "2030-05-11", true},
		{"far future", "2031-01-01", true},
		{"today", "2030-05-10", false},
		{"yesterday", "2030-05-09", false},
		{"malformed", "11/05/2030", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStrictlyFuture(tt.value, now); got != tt.want {
				t.Errorf("IsStrictlyFuture(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDisplay(t *testing.T) {
	if got := FormatDisplay("2030-05-09"); got != "09/05/2030" {
		t.Errorf("FormatDisplay = %q", got)
	}
	// malformed input passes through untouched
	if got := FormatDisplay("not-a-date"); got != "not-a-date" {
		t.Errorf("FormatDisplay fallback = %q", got)
	}
}
