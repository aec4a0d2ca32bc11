package grid

import (
	"fmt"
	"io"
	"strings"
)

const cellWidth = 9

// RenderOptions controls the terminal rendering of months
type RenderOptions struct {
	// MonthTitle returns the heading of a month; defaults to "January 2025"
	MonthTitle func(Month) string
	// Weekdays are the seven Monday-first column headings
	Weekdays []string
	// Summary appends the month summary below each table
	Summary bool
}

var defaultWeekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Render writes one table per month. A cell shows the day and its holiday percentage,
// followed by '*' for days off and '~' for incomplete data.
func Render(w io.Writer, months []Month, opts RenderOptions) error {
	if opts.MonthTitle == nil {
		opts.MonthTitle = func(m Month) string {
			return fmt.Sprintf("%s %d", m.Month, m.Year)
		}
	}
	if len(opts.Weekdays) != 7 {
		opts.Weekdays = defaultWeekdays
	}

	for i, m := range months {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := renderMonth(w, m, opts); err != nil {
			return fmt.Errorf("failed to render %s: %w", m.Key, err)
		}
	}
	return nil
}

func renderMonth(w io.Writer, m Month, opts RenderOptions) error {
	var sb strings.Builder
	rule := strings.Repeat("═", 7*(cellWidth+1)-1)

	sb.WriteString(opts.MonthTitle(m))
	sb.WriteString("\n")
	sb.WriteString(rule)
	sb.WriteString("\n")

	headings := make([]string, 7)
	for i, wd := range opts.Weekdays {
		headings[i] = fmt.Sprintf("%-*s", cellWidth, wd)
	}
	sb.WriteString(strings.TrimRight(strings.Join(headings, " "), " "))
	sb.WriteString("\n")

	for _, week := range m.Weeks() {
		cells := make([]string, len(week))
		for i, c := range week {
			cells[i] = formatCell(c)
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		sb.WriteString("\n")
	}

	if opts.Summary {
		s := m.Summary
		sb.WriteString(strings.Repeat("─", 7*(cellWidth+1)-1))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  mean %.0f%%  workdays %.0f%%  peak %.0f%% (%s)  off %d  incomplete %d\n",
			100*s.MeanFraction, 100*s.WorkdayMeanFraction, 100*s.PeakFraction, s.PeakDay.Format("02.01."),
			s.OffDays, s.IncompleteDays))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatCell(c Cell) string {
	if c.Blank {
		return strings.Repeat(" ", cellWidth)
	}

	off, incomplete := " ", " "
	if c.Day.Off {
		off = "*"
	}
	if c.Day.Incomplete {
		incomplete = "~"
	}
	return fmt.Sprintf("%2d %3.0f%%%s%s", c.Day.Date.Day(), 100*c.Day.Fraction, off, incomplete)
}
