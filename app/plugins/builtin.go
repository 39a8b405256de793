package plugins

import (
	"github.com/kilianp07/chargeplan/config"
	"github.com/kilianp07/chargeplan/core/audit"
)

func init() {
	RegisterAuditStore("none", func(config.AuditConfig) (audit.Store, error) {
		return audit.NopStore{}, nil
	})
	RegisterAuditStore("jsonl", func(c config.AuditConfig) (audit.Store, error) {
		return audit.NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	RegisterAuditStore("sqlite", func(c config.AuditConfig) (audit.Store, error) {
		return audit.NewSQLiteStore(c.Path)
	})
}
