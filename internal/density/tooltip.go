package density

import (
	"strings"
)

// FormatTooltip renders a breakdown as plain text:
//
//	8.3 M residents (10%)
//
//	Germany: 8.3 M residents (10%)
//	Autumn holidays (School holiday in Baden-Württemberg)
//
//	Incomplete data: 1.2 M residents (1%)
//	Austria (Tyrol)
//
// The country line is only written when several countries are selected.
func FormatTooltip(b Breakdown, multiCountry bool, msgs *Messages) string {
	var sb strings.Builder

	if b.HolidayPopulation > 0 {
		sb.WriteString(msgs.FormatShare(b.HolidayPopulation, b.TotalPopulation))
		sb.WriteString("\n")

		for _, cb := range b.Countries {
			if multiCountry {
				sb.WriteString("\n")
				sb.WriteString(cb.Name)
				sb.WriteString(": ")
				sb.WriteString(msgs.FormatShare(cb.HolidayPopulation, cb.Population))
				sb.WriteString("\n")
			}
			for _, line := range cb.Labels {
				sb.WriteString(formatLabelLine(line, msgs))
				sb.WriteString("\n")
			}
		}
	} else {
		sb.WriteString(msgs.NoHoliday)
		sb.WriteString("\n")
	}

	if len(b.IncompleteSources) > 0 {
		sb.WriteString("\n")
		sb.WriteString(msgs.IncompleteData)
		sb.WriteString(": ")
		sb.WriteString(msgs.FormatShare(b.IncompletePopulation, b.TotalPopulation))
		sb.WriteString("\n")
		sb.WriteString(joinNames(b.IncompleteSources))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatLabelLine(line LabelLine, msgs *Messages) string {
	where := msgs.Nationwide
	if !line.Nationwide {
		where = msgs.In + " " + joinNames(line.Regions)
	}
	return msgs.Label(line.Label) + " (" + msgs.KindName(line.Kind) + " " + where + ")"
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
