package density

import (
	"errors"
	"testing"
	"time"

	"github.com/username/holiday-density/pkg/dateutil"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input    string
		wantFrom time.Time
		wantTo   time.Time
		wantLen  int
	}{
		{"2024-03~2024-05", dateutil.Date(2024, 3, 1), dateutil.Date(2024, 5, 31), 92},
		{"2024-01~2024-12", dateutil.Date(2024, 1, 1), dateutil.Date(2024, 12, 31), 366},
		{"2025-07~2026-06", dateutil.Date(2025, 7, 1), dateutil.Date(2026, 6, 30), 365},
		{"2024-02~2024-02", dateutil.Date(2024, 2, 1), dateutil.Date(2024, 2, 29), 29},
		// exactly two times 365 days between the first days of the months
		{"2023-01~2025-01", dateutil.Date(2023, 1, 1), dateutil.Date(2025, 1, 31), 762},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := ParseRange(tt.input)
			if err != nil {
				t.Fatalf("ParseRange() error = %v", err)
			}
			if !r.From.Equal(tt.wantFrom) {
				t.Errorf("From = %v, want %v", r.From, tt.wantFrom)
			}
			if !r.To.Equal(tt.wantTo) {
				t.Errorf("To = %v, want %v", r.To, tt.wantTo)
			}
			if got := r.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if got := len(r.Days()); got != tt.wantLen {
				t.Errorf("len(Days()) = %d, want %d", got, tt.wantLen)
			}
			if got := r.String(); got != tt.input {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	tests := []string{
		"2024-05~2024-03",
		"2024-01~2026-01",
		"2024-01",
		"garbage",
		"2024-13~2025-01",
		"2024-01~2024-02~2024-03",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRange(input)
			if err == nil {
				t.Fatal("ParseRange() expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("ParseRange() error = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestNewRange_SnapsToMonths(t *testing.T) {
	r, err := NewRange(dateutil.Date(2024, 3, 17), dateutil.Date(2024, 4, 2))
	if err != nil {
		t.Fatalf("NewRange() error = %v", err)
	}
	if !r.From.Equal(dateutil.Date(2024, 3, 1)) || !r.To.Equal(dateutil.Date(2024, 4, 30)) {
		t.Errorf("NewRange() = %v..%v, want 2024-03-01..2024-04-30", r.From, r.To)
	}
}

func TestRangeYearsAndContains(t *testing.T) {
	r := MustParseRange("2023-12~2025-11")

	years := r.Years()
	if len(years) != 3 || years[0] != 2023 || years[2] != 2025 {
		t.Errorf("Years() = %v, want [2023 2024 2025]", years)
	}

	tests := []struct {
		day  time.Time
		want bool
	}{
		{dateutil.Date(2023, 11, 30), false},
		{dateutil.Date(2023, 12, 1), true},
		{time.Date(2025, 11, 30, 18, 0, 0, 0, time.UTC), true},
		{dateutil.Date(2025, 12, 1), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.day); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestDefaultRange(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{dateutil.Date(2025, 3, 15), "2025-01~2025-12"},
		{dateutil.Date(2025, 6, 30), "2025-01~2025-12"},
		{dateutil.Date(2025, 7, 1), "2025-07~2026-06"},
		{dateutil.Date(2025, 12, 31), "2025-07~2026-06"},
	}

	for _, tt := range tests {
		if got := DefaultRange(tt.now).String(); got != tt.want {
			t.Errorf("DefaultRange(%s) = %s, want %s", dateutil.DayKey(tt.now), got, tt.want)
		}
	}
}

func TestPresetRanges(t *testing.T) {
	presets := PresetRanges(dateutil.Date(2025, 10, 1))

	if len(presets) != 8 {
		t.Fatalf("len(PresetRanges()) = %d, want 8", len(presets))
	}

	want := []struct {
		label string
		rng   string
	}{
		{"2024", "2024-01~2024-12"},
		{"2024/25", "2024-07~2025-06"},
		{"2027", "2027-01~2027-12"},
		{"2027/28", "2027-07~2028-06"},
	}
	got := []Preset{presets[0], presets[1], presets[6], presets[7]}
	for i, w := range want {
		if got[i].Label != w.label || got[i].Range.String() != w.rng {
			t.Errorf("preset %d = %s %s, want %s %s", i, got[i].Label, got[i].Range, w.label, w.rng)
		}
	}
}
