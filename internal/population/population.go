package population

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RegionSource tells which region listings a country entry provides
type RegionSource int

const (
	SourceNone RegionSource = iota
	SourceSubdivisions
	SourceGroups
	SourceBoth
)

// String returns the source name
func (s RegionSource) String() string {
	switch s {
	case SourceSubdivisions:
		return "subdivisions"
	case SourceGroups:
		return "groups"
	case SourceBoth:
		return "subdivisions+groups"
	default:
		return "none"
	}
}

// Regions maps region codes to their population
type Regions map[string]int

// Total returns the population of all regions
func (r Regions) Total() int {
	total := 0
	for _, p := range r {
		total += p
	}
	return total
}

// Has reports whether the region has population data
func (r Regions) Has(code string) bool {
	_, ok := r[code]
	return ok
}

// Codes returns the region codes in lexical order
func (r Regions) Codes() []string {
	codes := make([]string, 0, len(r))
	for c := range r {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Entry is the population record of one country as stored in population.json
type Entry struct {
	Subdivisions map[string]int `json:"subdivisions,omitempty"`
	Groups       map[string]int `json:"groups,omitempty"`
	Source       string         `json:"source,omitempty"`
	URL          string         `json:"url,omitempty"`
}

// Kind returns which region listings the entry carries
func (e Entry) Kind() RegionSource {
	switch {
	case e.Subdivisions != nil && e.Groups != nil:
		return SourceBoth
	case e.Subdivisions != nil:
		return SourceSubdivisions
	case e.Groups != nil:
		return SourceGroups
	default:
		return SourceNone
	}
}

// Regions merges subdivisions and groups into one map; groups win on duplicate codes
func (e Entry) Regions() Regions {
	switch e.Kind() {
	case SourceSubdivisions:
		return copyRegions(e.Subdivisions)
	case SourceGroups:
		return copyRegions(e.Groups)
	case SourceBoth:
		merged := copyRegions(e.Subdivisions)
		for code, p := range e.Groups {
			merged[code] = p
		}
		return merged
	default:
		return Regions{}
	}
}

func copyRegions(m map[string]int) Regions {
	r := make(Regions, len(m))
	for code, p := range m {
		r[code] = p
	}
	return r
}

// Attribution names the statistics provider of a country's figures
type Attribution struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// Store holds the canonical region population of every known country
type Store struct {
	regions      map[string]Regions
	kinds        map[string]RegionSource
	attributions map[string]Attribution
}

// New validates the entries and resolves each one into a canonical region map
func New(entries map[string]Entry) (*Store, error) {
	s := &Store{
		regions:      make(map[string]Regions, len(entries)),
		kinds:        make(map[string]RegionSource, len(entries)),
		attributions: make(map[string]Attribution, len(entries)),
	}

	for country, e := range entries {
		country = strings.ToUpper(strings.TrimSpace(country))
		kind := e.Kind()
		if kind == SourceNone {
			return nil, fmt.Errorf("population of %s has neither subdivisions nor groups", country)
		}

		regions := e.Regions()
		for code, p := range regions {
			if p < 0 {
				return nil, fmt.Errorf("population of %s region %s is negative: %d", country, code, p)
			}
		}

		s.regions[country] = regions
		s.kinds[country] = kind
		if e.Source != "" || e.URL != "" {
			s.attributions[country] = Attribution{Source: e.Source, URL: e.URL}
		}
	}

	return s, nil
}

// Load reads population data from a .json or .csv file
func Load(path string) (*Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	default:
		return LoadJSON(path)
	}
}

// LoadJSON reads a population.json file: country -> {subdivisions, groups, source, url}
func LoadJSON(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read population file: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse population file: %w", err)
	}

	return New(entries)
}

// Regions returns the region population of a country
func (s *Store) Regions(country string) (Regions, bool) {
	r, ok := s.regions[country]
	return r, ok
}

// Kind returns which listings the country's figures were built from
func (s *Store) Kind(country string) RegionSource {
	return s.kinds[country]
}

// Total returns the population of a country, 0 if unknown
func (s *Store) Total(country string) int {
	return s.regions[country].Total()
}

// Has reports whether population data exists for the country
func (s *Store) Has(country string) bool {
	_, ok := s.regions[country]
	return ok
}

// Countries returns all known country codes in lexical order
func (s *Store) Countries() []string {
	countries := make([]string, 0, len(s.regions))
	for c := range s.regions {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// Attributions returns the statistics sources of the given countries, deduplicated by URL
func (s *Store) Attributions(countries []string) []Attribution {
	seen := make(map[string]bool)
	var result []Attribution
	for _, c := range countries {
		a, ok := s.attributions[c]
		if !ok || a.Source == "" || a.URL == "" || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		result = append(result, a)
	}
	return result
}
