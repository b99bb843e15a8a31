package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
)

// LoadArrivalPoints reads a location,state,zone CSV and keeps the points
// whose zone is one of zones. Points named in opts.Ignore are dropped and
// opts.Add is appended. A header row starting with "location" is skipped.
func LoadArrivalPoints(path string, zones []domain.ZoneCode, opts ArrivalCSVFile) ([]domain.ArrivalPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open arrival points: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	points, err := parseArrivalPoints(f, zones, opts)
	if err != nil {
		return nil, fmt.Errorf("parse arrival points %s: %w", path, err)
	}
	return points, nil
}

func parseArrivalPoints(r io.Reader, zones []domain.ZoneCode, opts ArrivalCSVFile) ([]domain.ArrivalPoint, error) {
	allowed := make(map[domain.ZoneCode]bool, len(zones))
	for _, z := range zones {
		allowed[z] = true
	}
	ignored := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignored[normalizeName(name)] = true
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []domain.ArrivalPoint
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "location") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("row %d: want location,state,zone", row)
		}
		zone, err := domain.ParseZoneCode(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if !allowed[zone] {
			continue
		}
		p := domain.ArrivalPoint{Name: strings.TrimSpace(rec[0]), Region: strings.TrimSpace(rec[1])}
		if ignored[normalizeName(p.Name)] || ignored[p.Key()] {
			continue
		}
		out = append(out, p)
	}

	for _, a := range opts.Add {
		out = append(out, domain.ArrivalPoint{Name: a.Name, Region: a.Region, Alias: a.Alias})
	}
	return out, nil
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
