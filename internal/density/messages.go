package density

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"

	"github.com/username/holiday-density/internal/holiday"
)

// Messages holds the localized strings and formatters used for tooltips and reports
type Messages struct {
	Tag            language.Tag
	PublicHoliday  string
	SchoolHoliday  string
	NoHoliday      string
	In             string
	Nationwide     string
	MioResidents   string
	IncompleteData string
	DataSources    string
	Unnamed        string
	// Months are the month names, January first
	Months         [12]string
	// Weekdays are the Monday-first column headings of the calendar
	Weekdays       []string

	printer *message.Printer
	regions display.Namer
}

var germanMonths = [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember"}

var englishMonths = [12]string{"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

// NewMessages returns German strings for "de" and English ones for anything else
func NewMessages(locale string) *Messages {
	var m *Messages
	if strings.EqualFold(strings.TrimSpace(locale), "de") {
		m = &Messages{
			Tag:            language.German,
			PublicHoliday:  "Feiertag",
			SchoolHoliday:  "Ferien",
			NoHoliday:      "Keine Ferien/Feiertage",
			In:             "in",
			Nationwide:     "landesweit",
			MioResidents:   "Mio. Einwohner",
			IncompleteData: "Unvollständige Datenbasis",
			DataSources:    "Datenquellen",
			Unnamed:        "Unbenannt",
			Months:         germanMonths,
			Weekdays:       []string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"},
		}
	} else {
		m = &Messages{
			Tag:            language.English,
			PublicHoliday:  "Public holiday",
			SchoolHoliday:  "School holiday",
			NoHoliday:      "No holidays",
			In:             "in",
			Nationwide:     "nationwide",
			MioResidents:   "M residents",
			IncompleteData: "Incomplete data",
			DataSources:    "Data sources",
			Unnamed:        "Unnamed",
			Months:         englishMonths,
			Weekdays:       []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"},
		}
	}

	m.printer = message.NewPrinter(m.Tag)
	m.regions = display.Regions(m.Tag)
	return m
}

// Locale returns the base language code ("de" or "en")
func (m *Messages) Locale() string {
	base, _ := m.Tag.Base()
	return base.String()
}

// KindName returns the localized name of a holiday kind
func (m *Messages) KindName(k holiday.Kind) string {
	if k == holiday.KindSchool {
		return m.SchoolHoliday
	}
	return m.PublicHoliday
}

// Label returns the holiday label or the localized fallback for unnamed holidays
func (m *Messages) Label(label string) string {
	if label == "" {
		return m.Unnamed
	}
	return label
}

// MonthTitle returns the localized heading of a month: "März 2025"
func (m *Messages) MonthTitle(month time.Month, year int) string {
	if month < time.January || month > time.December {
		return fmt.Sprintf("%s %d", month, year)
	}
	return fmt.Sprintf("%s %d", m.Months[month-1], year)
}

// CountryName returns the localized country name of an ISO 3166 code, or the code itself
func (m *Messages) CountryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := m.regions.Name(region); name != "" {
		return name
	}
	return code
}

// FormatPopulation formats a head count in millions: "83.2 M residents"
func (m *Messages) FormatPopulation(n int) string {
	return m.printer.Sprintf("%.1f %s", float64(n)/1e6, m.MioResidents)
}

// FormatShare formats a head count with its percentage of total: "8.3 M residents (10%)"
func (m *Messages) FormatShare(n, total int) string {
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(n) / float64(total)
	}
	return m.printer.Sprintf("%.1f %s (%.0f%%)", float64(n)/1e6, m.MioResidents, pct)
}

// Sprintf formats with the locale's number conventions
func (m *Messages) Sprintf(format string, args ...interface{}) string {
	return m.printer.Sprintf(format, args...)
}
