package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(bulletin string) options {
	return options{
		site:        "../../config/site.yaml",
		bulletin:    filepath.Join("../../internal/domain/testdata", bulletin),
		testWording: "auto",
		format:      "text",
		expiry:      time.Hour,
	}
}

func TestRun_Text(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testOptions("standard_warning.txt"), nil, &out))

	assert.True(t, strings.HasPrefix(out.String(), "TSUNAMI WARNING. REPEAT, TSUNAMI WARNING."))
	assert.Contains(t, out.String(), "FOR THE BAY AREA AND CENTRAL COAST.")
}

func TestRun_Stdin(t *testing.T) {
	b, err := os.ReadFile("../../internal/domain/testdata/standard_warning.txt")
	require.NoError(t, err)
	o := testOptions("")
	o.bulletin = "-"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, bytes.NewReader(b), &out))
	assert.Contains(t, out.String(), "TSUNAMI WARNING")
}

func TestRun_Decision(t *testing.T) {
	o := testOptions("upgrade_warning.txt")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, nil, &out))
	assert.Contains(t, out.String(), "needs a decision")
	assert.Contains(t, out.String(), "combined")

	o.decision = "combined"
	o.format = "json"
	out.Reset()
	require.NoError(t, run(context.Background(), o, nil, &out))

	var s domain.Statement
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, []domain.HazardKind{domain.Warning, domain.Advisory}, s.Hazards)
	assert.False(t, s.NeedsDecision)
}

func TestRun_Script(t *testing.T) {
	o := testOptions("standard_warning.txt")
	o.format = "script"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, nil, &out))
	assert.True(t, strings.HasPrefix(out.String(), "\x1baT_ENGSFOTSWMTR"))

	o = testOptions("exercise_warning.txt")
	o.format = "script"
	assert.Error(t, run(context.Background(), o, nil, &out), "test statements have no script")
}

func TestRun_Draft(t *testing.T) {
	o := testOptions("")
	o.draft = "watch"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, nil, &out))
	assert.Contains(t, out.String(), "TSUNAMI WATCH FOR THE FOLLOWING LOCATIONS, XXXXXX.")
}

func TestRun_Canned(t *testing.T) {
	o := testOptions("")
	o.draft = "warning"
	o.canned = "cancel"
	o.zones = "CAZ529-CAZ530"
	o.format = "script"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, nil, &out))
	assert.True(t, strings.HasPrefix(out.String(), "\x1baT_ENGSFOTSWMTR"))
	assert.Contains(t, out.String(), "        CD INCAC087-CAC053c")
	assert.Contains(t, out.String(), "THE TSUNAMI WARNING IS CANCELLED.")
}

func TestRun_RecordsAndWarnsOnOverlap(t *testing.T) {
	o := testOptions("standard_warning.txt")
	o.issuances = filepath.Join(t.TempDir(), "last_issued.txt")
	o.record = true

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, nil, &out))
	assert.NotContains(t, out.String(), "WARNING: overlaps")

	out.Reset()
	require.NoError(t, run(context.Background(), o, nil, &out))
	assert.True(t, strings.HasPrefix(out.String(), "WARNING: overlaps warning broadcast for CAZ006"))
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*options)
	}{
		{name: "unknown decision", modify: func(o *options) { o.decision = "tornado" }},
		{name: "unknown draft", modify: func(o *options) { o.draft = "siren" }},
		{name: "unknown test wording", modify: func(o *options) { o.testWording = "maybe" }},
		{name: "unknown format", modify: func(o *options) { o.format = "xml" }},
		{name: "unknown canned", modify: func(o *options) { o.draft = "warning"; o.canned = "all-clear" }},
		{name: "canned without draft", modify: func(o *options) { o.canned = "cancel" }},
		{name: "missing bulletin", modify: func(o *options) { o.bulletin = "does-not-exist.txt" }},
		{name: "missing site", modify: func(o *options) { o.site = "does-not-exist.yaml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions("standard_warning.txt")
			tt.modify(&o)
			assert.Error(t, run(context.Background(), o, nil, &bytes.Buffer{}))
		})
	}
}
