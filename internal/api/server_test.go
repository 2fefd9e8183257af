package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradeline-audit/internal/config"
	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/report"
	"github.com/sells-group/tradeline-audit/internal/store"
)

func serverConfig() config.ServerConfig {
	return config.ServerConfig{
		RatePerSecond:  1000,
		RateBurst:      1000,
		AllowedOrigins: []string{"*"},
	}
}

func newTestServer(t *testing.T, withStore bool) (*httptest.Server, store.Store) {
	t.Helper()

	var st store.Store
	if withStore {
		sq, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = sq.Close() })
		require.NoError(t, sq.Migrate(t.Context()))
		st = sq
	}

	srv := NewServer(report.NewEngine(nil), st, serverConfig(), 50)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		AccountName:      "Midland Credit",
		DateOpened:       "2018-06-01",
		DOFD:             "2019-03-01",
		DateReported:     "2024-01-10",
		EstimatedRemoval: "2026-03-01",
		Balance:          "$1,240.50",
		AccountStatus:    "Charge Off",
		Bureau:           model.BureauExperian,
		StateCode:        "CA",
		DebtType:         model.DebtCreditCard,
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/v1/analyze", map[string]any{"snapshot": testSnapshot()})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rep := decode[report.SnapshotReport](t, resp)
	assert.True(t, rep.SOL.Resolved)
	assert.Equal(t, 100, rep.Timeline.IntegrityScore)
	require.NotNil(t, rep.ExpectedRemoval)
}

func TestAnalyzeBadBody(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCompareEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	newer := testSnapshot()
	newer.DOFD = "2020-01-01"
	resp := postJSON(t, ts.URL+"/v1/compare", map[string]any{
		"older": testSnapshot(),
		"newer": newer,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Deltas []model.Delta `json:"deltas"`
	}](t, resp)
	require.Len(t, body.Deltas, 1)
	assert.Equal(t, "dofd", body.Deltas[0].Field)
	assert.Equal(t, model.ImpactNegative, body.Deltas[0].Impact)
}

func TestAuditEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	reaged := testSnapshot()
	reaged.DOFD = "2020-01-01"
	readiness := 80.0
	resp := postJSON(t, ts.URL+"/v1/audit", map[string]any{
		"account_id": "acct-1",
		"readiness":  readiness,
		"snapshots": []model.SeriesSnapshot{
			{Snapshot: testSnapshot(), Label: "jan", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Snapshot: reaged, Label: "feb", Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rep := decode[report.AuditReport](t, resp)
	assert.Equal(t, "acct-1", rep.AccountID)
	require.NotEmpty(t, rep.Series.Insights)
	assert.Equal(t, model.InsightReaging, rep.Series.Insights[0].Type)
	// 1 high insight at readiness 80: 12 + 40 = 52.
	assert.Equal(t, 52, rep.Confidence.Score)
}

func TestAuditEndpointRequiresSnapshots(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/v1/audit", map[string]any{"account_id": "acct-1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccountRoutesDisabledWithoutStore(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAccountSnapshotLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, true)

	snap := model.SeriesSnapshot{
		Snapshot:  testSnapshot(),
		Label:     "jan",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	resp := postJSON(t, ts.URL+"/v1/accounts/acct-1/snapshots", snap)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp, err := http.Get(ts.URL + "/v1/accounts/acct-1/snapshots")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	body := decode[struct {
		Snapshots []model.SeriesSnapshot `json:"snapshots"`
	}](t, listResp)
	require.Len(t, body.Snapshots, 1)
	assert.Equal(t, "jan", body.Snapshots[0].Label)
}

func TestAccountAuditPersistsRun(t *testing.T) {
	ts, _ := newTestServer(t, true)

	reaged := testSnapshot()
	reaged.DOFD = "2020-01-01"
	for i, snap := range []model.Snapshot{testSnapshot(), reaged} {
		resp := postJSON(t, ts.URL+"/v1/accounts/acct-1/snapshots", model.SeriesSnapshot{
			Snapshot:  snap,
			Label:     fmt.Sprintf("pull-%d", i),
			Timestamp: time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := postJSON(t, ts.URL+"/v1/accounts/acct-1/audit", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[store.AuditRun](t, resp)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "acct-1", run.AccountID)
	require.NotEmpty(t, run.Report.Series.Insights)

	// The run is retrievable individually and in the account listing.
	getResp, err := http.Get(ts.URL + "/v1/runs/" + run.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
	got := decode[store.AuditRun](t, getResp)
	assert.Equal(t, run.ID, got.ID)

	listResp, err := http.Get(ts.URL + "/v1/runs?account_id=acct-1")
	require.NoError(t, err)
	listBody := decode[struct {
		Runs []store.AuditRun `json:"runs"`
	}](t, listResp)
	require.Len(t, listBody.Runs, 1)
}

func TestAccountAuditNoSnapshots(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp := postJSON(t, ts.URL+"/v1/accounts/acct-404/audit", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetRunNotFound(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/v1/runs/no-such-run")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(report.NewEngine(nil), nil, config.ServerConfig{
		RatePerSecond:  1,
		RateBurst:      1,
		AllowedOrigins: []string{"*"},
	}, 50)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	first, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
