package holiday

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind distinguishes public holidays from school holidays
type Kind int

const (
	KindPublic Kind = iota + 1
	KindSchool
)

// String returns the kind name used in file names and logs
func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindSchool:
		return "school"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "public":
		*k = KindPublic
	case "school":
		*k = KindSchool
	default:
		return fmt.Errorf("unknown holiday kind %q", text)
	}
	return nil
}

// LocalizedText is a translation entry of the OpenHolidays API
type LocalizedText struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// RegionRef references a subdivision or group of a country
type RegionRef struct {
	Code      string `json:"code"`
	ShortName string `json:"shortName,omitempty"`
}

// Record is a raw holiday as delivered by the OpenHolidays API
type Record struct {
	ID           string          `json:"id"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Type         string          `json:"type"`
	Name         []LocalizedText `json:"name"`
	Nationwide   bool            `json:"nationwide"`
	Subdivisions []RegionRef     `json:"subdivisions,omitempty"`
	Groups       []RegionRef     `json:"groups,omitempty"`
}

// Label returns the first available translation of the holiday name
func (r Record) Label() string {
	for _, n := range r.Name {
		if n.Text != "" {
			return n.Text
		}
	}
	return ""
}

// Region is a subdivision or group with its localized name
type Region struct {
	Code      string          `json:"code"`
	ShortName string          `json:"shortName,omitempty"`
	Name      []LocalizedText `json:"name"`
}

// DisplayName returns the first translation of the region name, or its code
func (r Region) DisplayName() string {
	for _, n := range r.Name {
		if n.Text != "" {
			return n.Text
		}
	}
	return r.Code
}

// RegionNames maps region codes to display names. Codes with more than two
// segments also provide a name for their prefix unless the prefix is listed itself.
func RegionNames(regions []Region) map[string]string {
	names := make(map[string]string, len(regions))
	for _, r := range regions {
		if r.Code != "" {
			names[r.Code] = r.DisplayName()
		}
	}
	for _, r := range regions {
		prefix := RegionPrefix(r.Code)
		if _, ok := names[prefix]; !ok && r.Code != "" {
			names[prefix] = r.DisplayName()
		}
	}
	return names
}

// Holiday is a normalized holiday: civil date range, affected regions and nationwide flag
type Holiday struct {
	ID    string
	Label string
	Kind  Kind
	// Start and End are the inclusive effective range, including adjacent weekends for school holidays
	Start time.Time
	End   time.Time
	// LastDay is the end date as published, before weekend expansion
	LastDay    time.Time
	Nationwide bool
	Regions    RegionSet
}

// Covers reports whether the day lies within the effective range
func (h Holiday) Covers(day time.Time) bool {
	return !day.Before(h.Start) && !day.After(h.End)
}

// RegionPrefix reduces a region code to its first two dash segments (DE-BW-XX -> DE-BW)
func RegionPrefix(code string) string {
	parts := strings.SplitN(code, "-", 3)
	if len(parts) < 2 {
		return code
	}
	return parts[0] + "-" + parts[1]
}

// RegionSet is a set of region codes
type RegionSet map[string]struct{}

// Add adds a region code
func (s RegionSet) Add(code string) {
	s[code] = struct{}{}
}

// Has reports whether the code is in the set
func (s RegionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the codes in lexical order
func (s RegionSet) Sorted() []string {
	codes := make([]string, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
