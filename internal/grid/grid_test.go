package grid

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/username/holiday-density/internal/density"
	"github.com/username/holiday-density/pkg/dateutil"
)

func yearStats(t *testing.T, year int) map[string]density.DayStatistic {
	t.Helper()
	rng, err := density.NewRange(dateutil.Date(year, 1, 1), dateutil.Date(year, 12, 1))
	if err != nil {
		t.Fatalf("NewRange() error = %v", err)
	}

	days := make(map[string]density.DayStatistic)
	for _, d := range rng.Days() {
		days[dateutil.DayKey(d)] = density.DayStatistic{
			Date: d,
			Off:  d.Weekday() == time.Sunday,
		}
	}
	return days
}

func TestBuild_RoundTrip(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2023, 365},
		{2024, 366},
	}

	for _, tt := range tests {
		t.Run(dateutil.Date(tt.year, 1, 1).Format("2006"), func(t *testing.T) {
			months := Build(yearStats(t, tt.year))
			if len(months) != 12 {
				t.Fatalf("len(months) = %d, want 12", len(months))
			}

			keys := Flatten(months)
			if len(keys) != tt.want {
				t.Fatalf("len(Flatten()) = %d, want %d", len(keys), tt.want)
			}

			seen := make(map[string]bool)
			prev := dateutil.Date(tt.year, 1, 1).AddDate(0, 0, -1)
			for _, k := range keys {
				if seen[k] {
					t.Errorf("duplicate key %s", k)
				}
				seen[k] = true

				d, err := dateutil.ParseDate(k)
				if err != nil {
					t.Fatalf("ParseDate(%s) error = %v", k, err)
				}
				if dateutil.DaysBetween(prev, d) != 1 {
					t.Errorf("gap between %s and %s", dateutil.DayKey(prev), k)
				}
				prev = d
			}
		})
	}
}

func TestGroupByMonth(t *testing.T) {
	grouped := GroupByMonth(yearStats(t, 2024))

	if len(grouped) != 12 {
		t.Fatalf("len(grouped) = %d, want 12", len(grouped))
	}
	if got := len(grouped["2024-02"]); got != 29 {
		t.Errorf("len(grouped[2024-02]) = %d, want 29", got)
	}
	if _, ok := grouped["2024-02"]["2024-02-29"]; !ok {
		t.Error("grouped[2024-02] lacks 2024-02-29")
	}
}

func TestMonthWeeks(t *testing.T) {
	months := Build(yearStats(t, 2024))

	tests := []struct {
		key          string
		wantLeading  int
		wantWeeks    int
		wantLastWeek int
	}{
		{"2024-01", 0, 5, 3}, // starts on Monday
		{"2024-09", 6, 6, 1}, // starts on Sunday
		{"2024-02", 3, 5, 4}, // starts and ends on Thursday
	}

	byKey := make(map[string]Month)
	for _, m := range months {
		byKey[m.Key] = m
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := byKey[tt.key]
			if m.Leading != tt.wantLeading {
				t.Errorf("Leading = %d, want %d", m.Leading, tt.wantLeading)
			}

			weeks := m.Weeks()
			if len(weeks) != tt.wantWeeks {
				t.Fatalf("len(Weeks()) = %d, want %d", len(weeks), tt.wantWeeks)
			}
			if got := len(weeks[len(weeks)-1]); got != tt.wantLastWeek {
				t.Errorf("last week has %d cells, want %d (no trailing blanks)", got, tt.wantLastWeek)
			}
			for i := 0; i < tt.wantLeading; i++ {
				if !weeks[0][i].Blank {
					t.Errorf("cell %d of first week is not blank", i)
				}
			}
			if first := weeks[0][tt.wantLeading]; first.Blank || first.Day.Date.Day() != 1 {
				t.Errorf("first day cell = %+v, want day 1", first)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	days := make(map[string]density.DayStatistic)
	fractions := []float64{0.1, 0.4, 0.1, 0}
	for i, f := range fractions {
		d := dateutil.Date(2024, 5, 1+i)
		days[dateutil.DayKey(d)] = density.DayStatistic{
			Date:       d,
			Fraction:   f,
			Off:        i == 0,
			Incomplete: i >= 2,
		}
	}

	months := Build(days)
	if len(months) != 1 {
		t.Fatalf("len(months) = %d, want 1", len(months))
	}
	s := months[0].Summary

	if s.Days != 4 {
		t.Errorf("Days = %d, want 4", s.Days)
	}
	if math.Abs(s.MeanFraction-0.15) > 1e-9 {
		t.Errorf("MeanFraction = %v, want 0.15", s.MeanFraction)
	}
	// 2024-05-04 is a Saturday
	if math.Abs(s.WorkdayMeanFraction-0.2) > 1e-9 {
		t.Errorf("WorkdayMeanFraction = %v, want 0.2", s.WorkdayMeanFraction)
	}
	if s.PeakFraction != 0.4 || !s.PeakDay.Equal(dateutil.Date(2024, 5, 2)) {
		t.Errorf("peak = %v on %v, want 0.4 on 2024-05-02", s.PeakFraction, s.PeakDay)
	}
	if s.OffDays != 1 {
		t.Errorf("OffDays = %d, want 1", s.OffDays)
	}
	if s.IncompleteDays != 2 {
		t.Errorf("IncompleteDays = %d, want 2", s.IncompleteDays)
	}
}

func TestRender(t *testing.T) {
	days := yearStats(t, 2024)
	sept1 := days["2024-09-01"]
	sept1.Fraction = 0.5
	sept1.Incomplete = true
	days["2024-09-01"] = sept1

	months := Build(days)
	var buf bytes.Buffer
	if err := Render(&buf, months[8:9], RenderOptions{Summary: true}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"September 2024\n",
		"Mo        Tu",
		" 1  50%*~\n",
		" 2   0%",
		"off 5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output lacks %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	firstWeek := lines[3]
	if !strings.HasPrefix(firstWeek, strings.Repeat(" ", 6*(cellWidth+1))) {
		t.Errorf("first week %q does not start with six blank cells", firstWeek)
	}
}
