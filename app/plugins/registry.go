// Package plugins maps configured backend names to their implementations.
package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/chargeplan/config"
	"github.com/kilianp07/chargeplan/core/audit"
)

// AuditStoreFactory builds a change audit store from its configuration.
type AuditStoreFactory func(cfg config.AuditConfig) (audit.Store, error)

var AuditStores = map[string]AuditStoreFactory{}

func RegisterAuditStore(name string, f AuditStoreFactory) { AuditStores[name] = f }

// OpenAuditStore creates the store named by cfg.Backend.
func OpenAuditStore(cfg config.AuditConfig) (audit.Store, error) {
	f, ok := AuditStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown audit backend %q (known: %v)", cfg.Backend, names())
	}
	return f(cfg)
}

func names() []string {
	out := make([]string, 0, len(AuditStores))
	for n := range AuditStores {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
