package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) (cfgFile, schedulePath string) {
	t.Helper()
	dir := t.TempDir()
	schedulePath = filepath.Join(dir, "schedule.json")
	cfgFile = filepath.Join(dir, "config.yaml")
	cfg := "schedule:\n  path: " + schedulePath + "\n  conditional_path: " + filepath.Join(dir, "conditional.json") +
		"\naudit:\n  backend: none\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))
	return cfgFile, schedulePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		clearSimulate, resolveDate, resolveFormat = false, "", ""
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestClearSimulate(t *testing.T) {
	cfgFile, schedulePath := writeConfig(t)
	require.NoError(t, os.WriteFile(schedulePath, []byte(`{"200001010000": 100, "209912310000": 200}`), 0o644))

	out, err := execute(t, "clear", "--simulate", "-c", cfgFile)
	require.NoError(t, err)
	var res struct {
		Count   int      `json:"count"`
		Entries []string `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"200001010000"}, res.Entries)

	raw, err := os.ReadFile(schedulePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "200001010000", "simulate leaves the file untouched")
}

func TestResolve(t *testing.T) {
	cfgFile, schedulePath := writeConfig(t)
	require.NoError(t, os.WriteFile(schedulePath, []byte(`{"202401141400": -100, "202401141500": "netzero"}`), 0o644))

	out, err := execute(t, "resolve", "--date", "20240114", "-c", cfgFile)
	require.NoError(t, err)
	var res struct {
		Date     string `json:"date"`
		Resolved []struct {
			Time  string          `json:"time"`
			Value json.RawMessage `json:"value"`
		} `json:"resolved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "20240114", res.Date)
	require.Len(t, res.Resolved, 3)
	assert.JSONEq(t, `"netzero"`, string(res.Resolved[2].Value))
}

func TestResolveCSV(t *testing.T) {
	cfgFile, schedulePath := writeConfig(t)
	require.NoError(t, os.WriteFile(schedulePath, []byte(`{"202401141400": -100}`), 0o644))

	out, err := execute(t, "resolve", "--date", "20240114", "--format", "csv", "-c", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "date,time,value,source_key\n20240114,0000,0,\n20240114,1400,-100,202401141400\n", out)

	_, err = execute(t, "resolve", "--format", "xml", "-c", cfgFile)
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "resolve", "-c", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "load config")
}
