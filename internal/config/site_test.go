package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guamYAML = `office: GUM
timezone:
  id: chst
  offset_hours: -10
zones:
  - code: guz001
    name: Guam
arrival_points:
  - name: Pago Bay
    region: Guam
  - name: Apra Harbor
    region: Guam
    alias: Apra Harbor
pils:
  warning: TSWGUM
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSite_Inline(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.yaml", guamYAML)

	site, err := LoadSite(path)
	require.NoError(t, err)

	assert.Equal(t, "GUM", site.Office)
	assert.Equal(t, domain.Timezone{ID: "chst", OffsetHours: -10}, site.Timezone)
	assert.Equal(t, []domain.Zone{{Code: "GUZ001", Name: "Guam"}}, site.Zones)
	assert.False(t, site.AdvisoryHandling)
	assert.Len(t, site.ArrivalPoints, 2)
	assert.Equal(t, "TSWGUM", site.Broadcast.PILs[domain.Warning])
}

func TestLoadSite_Sample(t *testing.T) {
	site, err := LoadSite(filepath.Join("..", "..", "config", "site.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "MTR", site.Office)
	assert.Equal(t, domain.Timezone{ID: "pst", OffsetHours: 8, ObservesDST: true}, site.Timezone)
	assert.True(t, site.AdvisoryHandling)
	assert.Equal(t, []domain.ZoneCode{"CAZ006", "CAZ505", "CAZ509", "CAZ529", "CAZ530"}, site.ZoneCodes())
	require.Len(t, site.Breakpoints, 1)
	assert.Equal(t, "coastal areas south of Pigeon Point", site.Breakpoints[0].Phrase(1))
	assert.Equal(t, []domain.ZoneCode{"CAZ529", "CAZ530"}, site.Breakpoints[0].Sides[1].Zones)
	assert.Equal(t, []domain.ArrivalPoint{
		{Name: "San Francisco", Region: "CA"},
		{Name: "Half Moon Bay", Region: "CA"},
		{Name: "Santa Cruz", Region: "CA"},
		{Name: "Monterey", Region: "CA", Alias: "Monterey Harbor"},
	}, site.ArrivalPoints)
	assert.Equal(t, []string{"CAC075", "CAC087", "CAC053"}, site.CountyCodes([]domain.ZoneCode{"CAZ006", "CAZ529"}))
	assert.Equal(t, "SFO", site.Broadcast.Node)
}

func TestLoadSite_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no zones", "office: X\n", "at least one zone"},
		{"bad zone", "zones:\n  - code: CA006\n", "invalid zone code"},
		{"duplicate zone", "zones:\n  - code: CAZ006\n  - code: caz006\n", "duplicate zone"},
		{"offset out of range", "timezone:\n  offset_hours: 20\nzones:\n  - code: CAZ006\n", "offset_hours"},
		{
			"one-sided breakpoint",
			"zones:\n  - code: CAZ006\nbreakpoints:\n  - landmark: Pier\n    sides:\n      - direction: north\n        zones: [CAZ006]\n",
			"exactly two sides",
		},
		{
			"breakpoint zone not configured",
			"zones:\n  - code: CAZ006\nbreakpoints:\n  - landmark: Pier\n    sides:\n      - direction: north\n        zones: [CAZ006]\n      - direction: south\n        zones: [CAZ007]\n",
			"CAZ007 is not configured",
		},
		{"county zone not configured", "zones:\n  - code: CAZ006\ncounties:\n  - code: CAC001\n    zones: [CAZ999]\n", "CAZ999"},
		{"unknown pil hazard", "zones:\n  - code: CAZ006\npils:\n  statement: X\n", "unknown hazard"},
		{"unnamed arrival point", "zones:\n  - code: CAZ006\narrival_points:\n  - region: CA\n", "arrival_points[0].name"},
		{"malformed yaml", "zones: [\n", "parse site config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "site.yaml", tt.yaml)
			_, err := LoadSite(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSite_MissingFile(t *testing.T) {
	_, err := LoadSite(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read site config")
}

func TestParseArrivalPoints(t *testing.T) {
	csv := "location,state,zone\n" +
		"# comment rows are skipped\n" +
		"San Francisco, CA, CAZ006\n" +
		"Point  Reyes,CA,CAZ505\n" +
		"Eureka,CA,CAZ101\n"
	zones := []domain.ZoneCode{"CAZ006", "CAZ505"}

	t.Run("filters by zone", func(t *testing.T) {
		got, err := parseArrivalPoints(strings.NewReader(csv), zones, ArrivalCSVFile{})
		require.NoError(t, err)
		assert.Equal(t, []domain.ArrivalPoint{
			{Name: "San Francisco", Region: "CA"},
			{Name: "Point  Reyes", Region: "CA"},
		}, got)
	})

	t.Run("ignore and add", func(t *testing.T) {
		opts := ArrivalCSVFile{
			Ignore: []string{"point reyes"},
			Add:    []ArrivalFile{{Name: "Bolinas", Region: "CA", Alias: "Bolinas Lagoon"}},
		}
		got, err := parseArrivalPoints(strings.NewReader(csv), zones, opts)
		require.NoError(t, err)
		assert.Equal(t, []domain.ArrivalPoint{
			{Name: "San Francisco", Region: "CA"},
			{Name: "Bolinas", Region: "CA", Alias: "Bolinas Lagoon"},
		}, got)
	})

	t.Run("ignore by name and region", func(t *testing.T) {
		got, err := parseArrivalPoints(strings.NewReader(csv), zones, ArrivalCSVFile{Ignore: []string{"San Francisco CA"}})
		require.NoError(t, err)
		assert.Equal(t, []domain.ArrivalPoint{{Name: "Point  Reyes", Region: "CA"}}, got)
	})

	t.Run("short row", func(t *testing.T) {
		_, err := parseArrivalPoints(strings.NewReader("Eureka,CA\n"), zones, ArrivalCSVFile{})
		assert.ErrorContains(t, err, "row 1")
	})

	t.Run("bad zone", func(t *testing.T) {
		_, err := parseArrivalPoints(strings.NewReader("Eureka,CA,Z101\n"), zones, ArrivalCSVFile{})
		assert.ErrorContains(t, err, "invalid zone code")
	})
}
