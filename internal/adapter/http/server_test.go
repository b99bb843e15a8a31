package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	httpadapter "github.com/couchcryptid/tsunami-statement-service/internal/adapter/http"
	"github.com/couchcryptid/tsunami-statement-service/internal/config"
	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/couchcryptid/tsunami-statement-service/internal/pipeline"
	"github.com/couchcryptid/tsunami-statement-service/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, discardLogger())
}

// newAPIServer wires the real transformer and an issuance log in a temp dir.
func newAPIServer(t *testing.T) (*httpadapter.Server, *tracker.Tracker) {
	t.Helper()
	site, err := config.LoadSite("../../../config/site.yaml")
	require.NoError(t, err)
	tr := tracker.New(filepath.Join(t.TempDir(), "last_issued.txt"), discardLogger())
	srv := httpadapter.NewServer(":0", &mockReadiness{}, discardLogger(),
		httpadapter.WithComposer(pipeline.NewTransformer(site, discardLogger())),
		httpadapter.WithIssuanceLog(tr),
	)
	return srv, tr
}

func readBulletin(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("../../domain/testdata", name))
	require.NoError(t, err)
	return string(b)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(fmt.Errorf("not ready yet")), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPIRoutesDisabledWithoutOptions(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/v1/statements", domain.ComposeRequest{Text: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComposeStatement(t *testing.T) {
	srv, _ := newAPIServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/statements", domain.ComposeRequest{
		ProductID: "TSUWCA-1",
		Text:      readBulletin(t, "standard_warning.txt"),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var s domain.Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "TSUWCA-1", s.ProductID)
	assert.Equal(t, []domain.HazardKind{domain.Warning}, s.Hazards)
	assert.Contains(t, s.Text, "TSUNAMI WARNING FOR THE BAY AREA AND CENTRAL COAST.")
	assert.NotEmpty(t, s.Script)
	assert.Empty(t, s.Overlaps)
}

func TestComposeStatement_Errors(t *testing.T) {
	srv, _ := newAPIServer(t)
	text := readBulletin(t, "upgrade_warning.txt")
	watch := domain.Independent(domain.Watch)
	draft := domain.Watch

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "malformed body", body: "not an object", want: http.StatusBadRequest},
		{name: "unknown field", body: map[string]string{"bulletin": text}, want: http.StatusBadRequest},
		{name: "decision for inactive hazard", body: domain.ComposeRequest{Text: text, Decision: &watch}, want: http.StatusUnprocessableEntity},
		{name: "template without hazard", body: domain.ComposeRequest{Text: text, Template: "AAAAAA."}, want: http.StatusUnprocessableEntity},
		{name: "unknown canned statement", body: domain.ComposeRequest{DraftKind: &draft, Canned: "all-clear"}, want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/statements", tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestIssuanceLifecycle(t *testing.T) {
	srv, tr := newAPIServer(t)
	req := domain.ComposeRequest{Text: readBulletin(t, "standard_warning.txt")}

	rec := do(t, srv, http.MethodPost, "/v1/statements", req)
	require.Equal(t, http.StatusOK, rec.Code)
	var first domain.Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = do(t, srv, http.MethodPost, "/v1/issuances", first)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, tr.Records(), 1)

	rec = do(t, srv, http.MethodGet, "/v1/issuances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Records []domain.IssuanceRecord `json:"records"`
		Active  []domain.IssuanceRecord `json:"active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Active, 1)
	assert.Equal(t, domain.Warning, list.Active[0].Kind)
	assert.Equal(t, first.Zones[domain.Warning], list.Active[0].Zones)

	rec = do(t, srv, http.MethodPost, "/v1/statements", req)
	require.Equal(t, http.StatusOK, rec.Code)
	var second domain.Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Len(t, second.Overlaps, 1)
	assert.Equal(t, domain.Warning, second.Overlaps[0].Kind)

	rec = do(t, srv, http.MethodPost, "/v1/issuances/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, tr.Records())
}

func TestIssuanceLifecycle_Cancellation(t *testing.T) {
	srv, tr := newAPIServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/statements", domain.ComposeRequest{Text: readBulletin(t, "standard_warning.txt")})
	require.Equal(t, http.StatusOK, rec.Code)
	var issued domain.Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	rec = do(t, srv, http.MethodPost, "/v1/issuances", issued)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, tr.Active(), 1)

	warning := domain.Warning
	rec = do(t, srv, http.MethodPost, "/v1/statements", domain.ComposeRequest{
		DraftKind: &warning,
		Canned:    domain.CannedCancellation,
		Zones:     issued.Zones[domain.Warning],
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var cancel domain.Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancel))
	assert.True(t, cancel.Cancels())
	assert.Empty(t, cancel.Overlaps, "a cancellation does not overlap the hazard it ends")

	rec = do(t, srv, http.MethodPost, "/v1/issuances", cancel)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, tr.Active())
	assert.Len(t, tr.Records(), 1)
}

func TestRecordIssuance_RejectsTestStatement(t *testing.T) {
	srv, tr := newAPIServer(t)

	rec := do(t, srv, http.MethodPost, "/v1/issuances", domain.Statement{
		Hazards: []domain.HazardKind{domain.Warning},
		Text:    "TEST TSUNAMI WARNING.",
		Test:    true,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, tr.Records())
}
