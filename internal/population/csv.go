package population

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// csvRow is one line of a population CSV file:
//
//	country,kind,region,population,source,url
//	DE,subdivision,DE-BW,11280257,Destatis,https://www.destatis.de
type csvRow struct {
	Country    string `csv:"country"`
	Kind       string `csv:"kind"`
	Region     string `csv:"region"`
	Population int    `csv:"population"`
	Source     string `csv:"source"`
	URL        string `csv:"url"`
}

// LoadCSV reads population figures from a CSV file with a header row
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open population file: %w", err)
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse population CSV: %w", err)
	}

	entries, err := entriesFromRows(rows)
	if err != nil {
		return nil, err
	}

	return New(entries)
}

func entriesFromRows(rows []*csvRow) (map[string]Entry, error) {
	entries := make(map[string]Entry)

	for i, row := range rows {
		country := strings.ToUpper(strings.TrimSpace(row.Country))
		if country == "" || row.Region == "" {
			return nil, fmt.Errorf("population CSV line %d: country and region are required", i+2)
		}

		e := entries[country]
		switch strings.ToLower(strings.TrimSpace(row.Kind)) {
		case "", "subdivision", "subdivisions":
			if e.Subdivisions == nil {
				e.Subdivisions = make(map[string]int)
			}
			e.Subdivisions[row.Region] = row.Population
		case "group", "groups":
			if e.Groups == nil {
				e.Groups = make(map[string]int)
			}
			e.Groups[row.Region] = row.Population
		default:
			return nil, fmt.Errorf("population CSV line %d: unknown region kind %q", i+2, row.Kind)
		}

		if e.Source == "" {
			e.Source = row.Source
		}
		if e.URL == "" {
			e.URL = row.URL
		}
		entries[country] = e
	}

	return entries, nil
}
