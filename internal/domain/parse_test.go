package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestParser_Parse_Standard(t *testing.T) {
	p := NewParser(bayAreaSite(), discardLogger())
	info := p.Parse(readBulletin(t, "standard_warning.txt"))

	assert.True(t, info.Notice.IsZero())
	assert.False(t, info.Test)
	assert.Equal(t, VariantStandard, info.Variant)
	assert.Equal(t, []ZoneCode{"CAZ006", "CAZ505", "CAZ509", "CAZ529", "CAZ530"}, info.ZonesFor(Warning))
	assert.Empty(t, info.ZonesFor(Watch))
	assert.Empty(t, info.ZonesFor(Advisory))
	assert.Equal(t, []IssuanceStatus{StatusNew}, info.Statuses)

	wantArrivals := []string{
		"SAN FRANCISCO CA ON JULY 21 AT 1139 PM",
		"MONTEREY HARBOR ON JULY 21 AT 1152 PM",
	}
	if diff := cmp.Diff(wantArrivals, info.Arrivals[Warning]); diff != "" {
		t.Errorf("arrivals mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "AN EARTHQUAKE WITH A PRELIMINARY MAGNITUDE OF 7.8 OCCURRED 75 MILES SOUTH OF "+
		"PERRYVILLE ALASKA AT 1112 PM PACIFIC DAYLIGHT TIME ON JULY 21 2020.", info.Earthquake)
	assert.Equal(t, "JULY 21 2020 AT 1112 PM PACIFIC DAYLIGHT TIME", info.LocalTime)
}

func TestParser_Parse_RegionalVariants(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		site     Site
		variant  Variant
		kind     HazardKind
		zones    []ZoneCode
		arrivals []string
	}{
		{
			name:    "guam tabular",
			file:    "guam_warning.txt",
			site:    guamSite(),
			variant: VariantTabular,
			kind:    Warning,
			zones:   []ZoneCode{"GUZ001"},
			arrivals: []string{
				"PAGO BAY GUAM ON DECEMBER 9 AT 817 AM",
				"APRA HARBOR GUAM ON DECEMBER 9 AT 821 AM",
			},
		},
		{
			name:     "hawaii earliest arrival",
			file:     "hawaii_watch.txt",
			site:     hawaiiSite(),
			variant:  VariantEarliestArrival,
			kind:     Watch,
			zones:    []ZoneCode{"HIZ001", "HIZ002", "HIZ003"},
			arrivals: []string{"HAWAIIAN ISLANDS ON OCTOBER 19 AT 327 PM HAWAII STANDARD TIME"},
		},
		{
			name:     "caribbean forecast begin",
			file:     "caribbean_advisory.txt",
			site:     caribbeanSite(),
			variant:  VariantForecastBegin,
			kind:     Advisory,
			zones:    []ZoneCode{"PRZ001", "PRZ002", "VIZ001"},
			arrivals: []string{"PUERTO RICO/VIRGIN ISLANDS ON JANUARY 29 AT 1109 PM AST"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewParser(tt.site, discardLogger()).Parse(readBulletin(t, tt.file))

			assert.Equal(t, tt.variant, info.Variant)
			assert.Equal(t, tt.zones, info.ZonesFor(tt.kind))
			assert.Equal(t, tt.arrivals, info.Arrivals[tt.kind])
			assert.Equal(t, []HazardKind{tt.kind}, info.ActiveKinds())
			assert.True(t, info.Notice.IsZero())
		})
	}
}

func TestParser_Parse_StructuredEarthquake(t *testing.T) {
	info := NewParser(hawaiiSite(), discardLogger()).Parse(readBulletin(t, "hawaii_watch.txt"))

	assert.Equal(t, "AN EARTHQUAKE WITH A PRELIMINARY MAGNITUDE OF 7.5 OCCURRED SOUTH OF ALASKA NEAR "+
		"54.7 NORTH 159.6 WEST AT 1055 AM HAWAII STANDARD TIME ON OCTOBER 19 2020", info.Earthquake)
	assert.Equal(t, "OCTOBER 19 2020 AT 1055 AM HAWAII STANDARD TIME", info.LocalTime)
}

func TestParser_Parse_UpgradeAndOutsideZones(t *testing.T) {
	info := NewParser(bayAreaSite(), discardLogger()).Parse(readBulletin(t, "upgrade_warning.txt"))

	assert.Equal(t, []ZoneCode{"CAZ006", "CAZ505", "CAZ509"}, info.ZonesFor(Warning))
	assert.Empty(t, info.ZonesFor(Watch), "oregon watch zones are outside the site")
	assert.Equal(t, []ZoneCode{"CAZ529", "CAZ530"}, info.ZonesFor(Advisory))
	assert.Equal(t, []IssuanceStatus{StatusNew, StatusContinue}, info.Statuses)
	assert.Equal(t, []HazardKind{Warning, Advisory}, info.ActiveKinds())
}

func TestParser_Parse_Cancellation(t *testing.T) {
	info := NewParser(bayAreaSite(), discardLogger()).Parse(readBulletin(t, "cancellation.txt"))

	assert.Empty(t, info.ActiveKinds())
	assert.Equal(t, []IssuanceStatus{StatusFinal}, info.Statuses)
	assert.Equal(t, NoticeCancellation, info.Notice.Kind)
}

func TestParser_Parse_TestBulletin(t *testing.T) {
	info := NewParser(bayAreaSite(), discardLogger()).Parse(readBulletin(t, "exercise_warning.txt"))

	assert.True(t, info.Test)
	assert.Equal(t, NoticeTest, info.Notice.Kind)
	assert.NotEmpty(t, info.Notice.Message)
	assert.Equal(t, []ZoneCode{"CAZ006", "CAZ505"}, info.ZonesFor(Warning))
}

func TestParser_Parse_TestMarkerOnly(t *testing.T) {
	text := "TSUWCA\n\nTHIS IS A TEST MESSAGE\n\nCAZ006-221112-\n/O.NEW.PAAQ.TS.W.0001.200722T0612Z-000000T0000Z/\n$$"
	info := NewParser(bayAreaSite(), discardLogger()).Parse(text)

	assert.True(t, info.Test)
	assert.Equal(t, NoticeTest, info.Notice.Kind)
}

func TestParser_Parse_QuietAndFailure(t *testing.T) {
	p := NewParser(bayAreaSite(), discardLogger())

	t.Run("no hazard for site", func(t *testing.T) {
		info := p.Parse("TSUWCA\n\nORZ021-221112-\n/O.NEW.PAAQ.TS.W.0001.200722T0612Z-000000T0000Z/\n$$")
		assert.Equal(t, NoticeNoHazard, info.Notice.Kind)
		assert.Empty(t, info.ActiveKinds())
	})

	t.Run("invalid encoding", func(t *testing.T) {
		info := p.Parse("TSUWCA \xff\xfe")
		assert.Equal(t, NoticeParseFailure, info.Notice.Kind)
		assert.Empty(t, info.ActiveKinds())
	})

	t.Run("empty text", func(t *testing.T) {
		info := p.Parse("  \n ")
		assert.Equal(t, NoticeParseFailure, info.Notice.Kind)
	})

	t.Run("failure and quiet notices differ", func(t *testing.T) {
		quiet := p.Parse("NOTHING TO SEE")
		broken := p.Parse("")
		assert.NotEqual(t, quiet.Notice, broken.Notice)
	})
}

func TestParser_Parse_ZonesAreSortedAndUnique(t *testing.T) {
	text := "TSUWCA\n\nCAZ530-006-505>509-006-221112-\n/O.NEW.PAAQ.TS.W.0001.200722T0612Z-000000T0000Z/\n$$"
	info := NewParser(bayAreaSite(), discardLogger()).Parse(text)

	assert.Equal(t, []ZoneCode{"CAZ006", "CAZ505", "CAZ509", "CAZ530"}, info.ZonesFor(Warning))
}

func TestParser_Parse_WrappedZoneBlock(t *testing.T) {
	text := "TSUWCA\n\nCAZ006-505-\n509-529-221112-\n/O.NEW.PAAQ.TS.A.0001.200722T0612Z-000000T0000Z/\n$$"
	info := NewParser(bayAreaSite(), discardLogger()).Parse(text)

	assert.Equal(t, []ZoneCode{"CAZ006", "CAZ505", "CAZ509", "CAZ529"}, info.ZonesFor(Watch))
}

func TestParser_Parse_ReferenceYearFromClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2021, time.January, 10, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	text := "TSUWCA\n\nCAZ006-221112-\n/O.NEW.PAAQ.TS.W.0001.200722T0612Z-000000T0000Z/\n\n" +
		"* AN EARTHQUAKE WITH PRELIMINARY MAGNITUDE 8.1 OCCURRED NEAR ADAK ALASKA AT 1000 PM\n" +
		"ALASKA STANDARD TIME ON JANUARY 9.\n$$"
	info := NewParser(bayAreaSite(), discardLogger()).Parse(text)

	assert.Equal(t, "JANUARY 9 2021 AT 1100 PM PACIFIC STANDARD TIME", info.LocalTime)
	assert.Contains(t, info.Earthquake, "AT 1100 PM PACIFIC STANDARD TIME ON JANUARY 9.")
}
