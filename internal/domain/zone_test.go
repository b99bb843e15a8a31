package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandZoneRanges(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"range", "CAZ039>041-", "CAZ039-040-041-"},
		{"single element range", "CAZ041>041-", "CAZ041-"},
		{"mixed with plain codes", "CAZ006-505>507-530-", "CAZ006-505-506-507-530-"},
		{"several ranges", "ORZ001>002-WAZ021>022-", "ORZ001-002-WAZ021-022-"},
		{"reversed range untouched", "CAZ041>039-", "CAZ041>039-"},
		{"no range", "CAZ006-505-", "CAZ006-505-"},
		{"doubled dash after range collapses", "CAZ039>041--221112-", "CAZ039-040-041-221112-"},
		{"dash runs away from ranges kept", "-------\nCAZ006--505-\nCAZ039>040-", "-------\nCAZ006--505-\nCAZ039-040-"},
		{"surrounding text kept", "ZONES\nCAZ039>040-221112-\nTEXT", "ZONES\nCAZ039-040-221112-\nTEXT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandZoneRanges(tt.in))
		})
	}
}

func TestParseZoneCode(t *testing.T) {
	z, err := ParseZoneCode(" caz039 ")
	require.NoError(t, err)
	assert.Equal(t, ZoneCode("CAZ039"), z)

	for _, bad := range []string{"", "CAZ39", "CAC039", "CAZ0399", "1AZ039"} {
		_, err := ParseZoneCode(bad)
		assert.Error(t, err, bad)
	}
}

func TestJoinAndSplitZones(t *testing.T) {
	zones := []ZoneCode{"CAZ006", "CAZ505"}
	assert.Equal(t, "CAZ006-CAZ505", JoinZones(zones))
	assert.Equal(t, zones, SplitZones("CAZ505-CAZ006-CAZ006-bogus-"))
	assert.Empty(t, SplitZones(""))
}

func TestSameZonesAndOverlap(t *testing.T) {
	a := []ZoneCode{"CAZ006", "CAZ505"}

	assert.True(t, SameZones(a, []ZoneCode{"CAZ505", "CAZ006"}))
	assert.False(t, SameZones(a, []ZoneCode{"CAZ006"}))
	assert.False(t, SameZones(a, []ZoneCode{"CAZ006", "CAZ505", "CAZ509"}))
	assert.True(t, SameZones(nil, []ZoneCode{}))

	assert.True(t, ZonesOverlap(a, []ZoneCode{"CAZ505", "CAZ530"}))
	assert.False(t, ZonesOverlap(a, []ZoneCode{"CAZ530"}))
}
