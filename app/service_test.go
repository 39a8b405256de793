package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargeplan/config"
	"github.com/kilianp07/chargeplan/core/factory"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Schedule.Path = filepath.Join(dir, "schedule.json")
	cfg.Schedule.ConditionalPath = filepath.Join(dir, "conditional_schedule.json")
	cfg.Rules.Path = filepath.Join(dir, "rules.json")
	cfg.Audit.Path = filepath.Join(dir, "changes.log")
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceRoutes(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Rules.Path, []byte(`{"rules":[{"id":"always","conditions":{"battery_level":{"operator":">=","value":0}},"action":"netzero","time_range":{"start":"0600","end":"0700"}}]}`), 0o644))
	batteryFile := filepath.Join(t.TempDir(), "zendure_data.json")
	require.NoError(t, os.WriteFile(batteryFile, []byte(`{"properties":{"electricLevel":55}}`), 0o644))
	cfg.Battery.Sources = []factory.ModuleConfig{{Type: "file", Conf: map[string]any{"path": batteryFile}}}

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	report, err := svc.Renderer.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.BatteryAvailable)
	assert.Len(t, report.Result.Fragment, 4)

	srv := httptest.NewServer(svc.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/schedule", strings.NewReader(`{"key":"209901010800","value":300}`))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/schedule")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Success     bool              `json:"success"`
		Entries     []json.RawMessage `json:"entries"`
		Conditional []json.RawMessage `json:"conditional"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Len(t, body.Entries, 1)
	assert.Len(t, body.Conditional, 4)

	resp, err = http.Get(srv.URL + "/api/schedule/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	var hist struct {
		Records []json.RawMessage `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hist))
	assert.Len(t, hist.Records, 1)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServiceRecoversPanics(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer svc.Close()
	svc.Gateway = nil
	svc.Handler = svc.router()

	rr := httptest.NewRecorder()
	svc.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServiceRejectsBadBatterySource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Battery.Sources = []factory.ModuleConfig{{Type: "mqtt", Conf: map[string]any{"topic": "battery"}}}
	_, err := New(cfg)
	assert.Error(t, err, "mqtt sources need a broker")
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Address = "127.0.0.1:0"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx))
}
