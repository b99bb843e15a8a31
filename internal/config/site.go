package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// SiteFile is the YAML layout of a forecast office's statement settings.
type SiteFile struct {
	Office           string            `yaml:"office"`
	Timezone         TimezoneFile      `yaml:"timezone"`
	AdvisoryHandling bool              `yaml:"advisory_handling"`
	Zones            []ZoneFile        `yaml:"zones"`
	LocalPhrase      string            `yaml:"local_phrase"`
	LocalActions     string            `yaml:"local_actions"`
	Breakpoints      []BreakpointFile  `yaml:"breakpoints"`
	ArrivalPoints    []ArrivalFile     `yaml:"arrival_points"`
	ArrivalCSV       *ArrivalCSVFile   `yaml:"arrival_csv,omitempty"`
	Counties         []CountyFile      `yaml:"counties"`
	Node             string            `yaml:"node"`
	PILs             map[string]string `yaml:"pils"`
}

// TimezoneFile describes the office's standard time zone.
type TimezoneFile struct {
	ID          string `yaml:"id"`
	OffsetHours int    `yaml:"offset_hours"`
	ObservesDST bool   `yaml:"observes_dst"`
}

// ZoneFile is one coastal zone.
type ZoneFile struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// BreakpointFile is a landmark and its two zone groups.
type BreakpointFile struct {
	Landmark string               `yaml:"landmark"`
	Sides    []BreakpointSideFile `yaml:"sides"`
}

// BreakpointSideFile is one group of a breakpoint.
type BreakpointSideFile struct {
	Direction string   `yaml:"direction"`
	Zones     []string `yaml:"zones"`
}

// CountyFile maps a broadcast county code to the zones it covers.
type CountyFile struct {
	Code  string   `yaml:"code"`
	Zones []string `yaml:"zones"`
}

// ArrivalFile is a forecast point read on air.
type ArrivalFile struct {
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
	Alias  string `yaml:"alias,omitempty"`
}

// ArrivalCSVFile points at a shared arrival-point list. Rows outside the
// office's zones are dropped; Ignore removes points by name and Add appends
// points the list lacks.
type ArrivalCSVFile struct {
	Path   string        `yaml:"path"`
	Add    []ArrivalFile `yaml:"add,omitempty"`
	Ignore []string      `yaml:"ignore,omitempty"`
}

// LoadSite reads the site YAML at path, validates it and converts it to a
// domain.Site. A relative arrival CSV path is resolved against the YAML's
// directory.
func LoadSite(path string) (domain.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Site{}, fmt.Errorf("read site config: %w", err)
	}

	var f SiteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Site{}, fmt.Errorf("parse site config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return domain.Site{}, fmt.Errorf("invalid site config: %w", err)
	}

	site := f.Site()
	if f.ArrivalCSV != nil {
		csvPath := f.ArrivalCSV.Path
		if !filepath.IsAbs(csvPath) {
			csvPath = filepath.Join(filepath.Dir(path), csvPath)
		}
		points, err := LoadArrivalPoints(csvPath, site.ZoneCodes(), *f.ArrivalCSV)
		if err != nil {
			return domain.Site{}, err
		}
		site.ArrivalPoints = append(site.ArrivalPoints, points...)
	}
	return site, nil
}

// Validate checks the fields the composer relies on.
func (f *SiteFile) Validate() error {
	if f.Timezone.OffsetHours < -14 || f.Timezone.OffsetHours > 12 {
		return fmt.Errorf("timezone.offset_hours %d is out of range", f.Timezone.OffsetHours)
	}
	if len(f.Zones) == 0 {
		return fmt.Errorf("at least one zone is required")
	}

	known := make(map[string]bool, len(f.Zones))
	for i, z := range f.Zones {
		if _, err := domain.ParseZoneCode(z.Code); err != nil {
			return fmt.Errorf("zones[%d]: %w", i, err)
		}
		if known[strings.ToUpper(z.Code)] {
			return fmt.Errorf("zones[%d]: duplicate zone %s", i, z.Code)
		}
		known[strings.ToUpper(z.Code)] = true
	}

	for i, bp := range f.Breakpoints {
		if bp.Landmark == "" {
			return fmt.Errorf("breakpoints[%d].landmark is required", i)
		}
		if len(bp.Sides) != 2 {
			return fmt.Errorf("breakpoints[%d] needs exactly two sides, got %d", i, len(bp.Sides))
		}
		for j, side := range bp.Sides {
			if side.Direction == "" {
				return fmt.Errorf("breakpoints[%d].sides[%d].direction is required", i, j)
			}
			if len(side.Zones) == 0 {
				return fmt.Errorf("breakpoints[%d].sides[%d].zones is empty", i, j)
			}
			for _, z := range side.Zones {
				if !known[strings.ToUpper(z)] {
					return fmt.Errorf("breakpoints[%d].sides[%d]: zone %s is not configured", i, j, z)
				}
			}
		}
	}

	for i, a := range f.ArrivalPoints {
		if a.Name == "" {
			return fmt.Errorf("arrival_points[%d].name is required", i)
		}
	}
	if f.ArrivalCSV != nil && f.ArrivalCSV.Path == "" {
		return fmt.Errorf("arrival_csv.path is required")
	}

	for i, c := range f.Counties {
		if c.Code == "" {
			return fmt.Errorf("counties[%d].code is required", i)
		}
		for _, z := range c.Zones {
			if !known[strings.ToUpper(z)] {
				return fmt.Errorf("counties[%d]: zone %s is not configured", i, z)
			}
		}
	}
	for kind := range f.PILs {
		if _, ok := domain.ParseHazardKind(kind); !ok {
			return fmt.Errorf("pils: unknown hazard %q", kind)
		}
	}
	return nil
}

// Site converts the file to the domain model. Call Validate first.
func (f *SiteFile) Site() domain.Site {
	site := domain.Site{
		Office: f.Office,
		Timezone: domain.Timezone{
			ID:          f.Timezone.ID,
			OffsetHours: f.Timezone.OffsetHours,
			ObservesDST: f.Timezone.ObservesDST,
		},
		LocalPhrase:      f.LocalPhrase,
		LocalActions:     f.LocalActions,
		AdvisoryHandling: f.AdvisoryHandling,
		Broadcast: domain.BroadcastProfile{
			Node: f.Node,
			PILs: make(map[domain.HazardKind]string, len(f.PILs)),
		},
	}
	for _, z := range f.Zones {
		site.Zones = append(site.Zones, domain.Zone{Code: domain.ZoneCode(strings.ToUpper(z.Code)), Name: z.Name})
	}
	for _, bp := range f.Breakpoints {
		b := domain.Breakpoint{Landmark: bp.Landmark}
		for i := range b.Sides {
			b.Sides[i] = domain.BreakpointSide{Direction: bp.Sides[i].Direction, Zones: toZoneCodes(bp.Sides[i].Zones)}
		}
		site.Breakpoints = append(site.Breakpoints, b)
	}
	for _, a := range f.ArrivalPoints {
		site.ArrivalPoints = append(site.ArrivalPoints, domain.ArrivalPoint{Name: a.Name, Region: a.Region, Alias: a.Alias})
	}
	for _, c := range f.Counties {
		site.Counties = append(site.Counties, domain.County{Code: c.Code, Zones: toZoneCodes(c.Zones)})
	}
	for kind, pil := range f.PILs {
		k, _ := domain.ParseHazardKind(kind)
		site.Broadcast.PILs[k] = pil
	}
	return site
}

func toZoneCodes(in []string) []domain.ZoneCode {
	out := make([]domain.ZoneCode, len(in))
	for i, z := range in {
		out[i] = domain.ZoneCode(strings.ToUpper(z))
	}
	return out
}
