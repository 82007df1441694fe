package utils

import (
	"testing"
	"time"
)

func TestDayKey_SameWallClockDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	late := time.Date(2024, 3, 9, 23, 30, 0, 0, ny)
	early := time.Date(2024, 3, 9, 0, 5, 0, 0, ny)

	if !DayKey(late).Equal(DayKey(early)) {
		t.Errorf("expected same key, got %v and %v", DayKey(late), DayKey(early))
	}
	if got := FormatDay(DayKey(late)); got != "2024-03-09" {
		t.Errorf("expected 2024-03-09, got %s", got)
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	a := time.Date(2024, 3, 9, 12, 0, 0, 0, ny)
	b := time.Date(2024, 3, 11, 12, 0, 0, 0, ny)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("expected 2 days, got %d", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("expected -2 days, got %d", got)
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: "2024-01-02", want: "2024-01-02"},
		{name: "padded", input: " 2024-01-02 ", want: "2024-01-02"},
		{name: "wrong layout", input: "01/02/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && FormatDay(got) != tt.want {
				t.Errorf("ParseDay(%q) = %s, want %s", tt.input, FormatDay(got), tt.want)
			}
		})
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []time.Weekday
		wantErr bool
	}{
		{name: "names", input: "mon,wed,fri", want: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{name: "mixed", input: "Sunday, 6", want: []time.Weekday{time.Sunday, time.Saturday}},
		{name: "out of range", input: "7", wantErr: true},
		{name: "garbage", input: "funday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeekdays(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekdays(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestFormatWeekdays(t *testing.T) {
	got := FormatWeekdays([]time.Weekday{time.Tuesday, time.Thursday})
	if got != "tue,thu" {
		t.Errorf("expected tue,thu, got %s", got)
	}
}
