package plugins

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargeplan/config"
	"github.com/kilianp07/chargeplan/core/audit"
)

func TestOpenAuditStoreBackends(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []config.AuditConfig{
		{Backend: "jsonl", Path: filepath.Join(dir, "changes.log"), MaxSizeMB: 1},
		{Backend: "sqlite", Path: filepath.Join(dir, "changes.db")},
	} {
		st, err := OpenAuditStore(c)
		require.NoError(t, err, c.Backend)
		rec := audit.NewRecord(audit.OpDelete, time.Now())
		rec.Key = "202401141400"
		require.NoError(t, st.Append(context.Background(), rec), c.Backend)
		got, err := st.Query(context.Background(), audit.Query{Key: "202401141400"})
		require.NoError(t, err, c.Backend)
		assert.Len(t, got, 1, c.Backend)
		require.NoError(t, st.Close())
	}
}

func TestOpenAuditStoreNoneAndUnknown(t *testing.T) {
	st, err := OpenAuditStore(config.AuditConfig{Backend: "none"})
	require.NoError(t, err)
	assert.IsType(t, audit.NopStore{}, st)

	_, err = OpenAuditStore(config.AuditConfig{Backend: "csv"})
	assert.ErrorContains(t, err, "jsonl")
}
