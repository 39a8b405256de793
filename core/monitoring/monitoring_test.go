package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
	done chan struct{}
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
	r.mu.Unlock()
	if r.done != nil {
		close(r.done)
	}
}

func (r *recorder) Flush(time.Duration) {}

func withMonitor(t *testing.T, m Monitor) {
	t.Helper()
	prev := Current()
	Init(m)
	t.Cleanup(func() { Init(prev) })
}

func TestCaptureTags(t *testing.T) {
	rec := &recorder{}
	withMonitor(t, rec)

	Capture(errors.New("boom"), "route", "/api/schedule", "status", "500", "dangling")
	Capture(nil, "ignored", "x")

	require.Len(t, rec.errs, 1)
	assert.Equal(t, map[string]string{"route": "/api/schedule", "status": "500"}, rec.tags[0])
}

func TestInitIgnoresNil(t *testing.T) {
	rec := &recorder{}
	withMonitor(t, rec)
	Init(nil)
	assert.Same(t, rec, Current())
}

func TestGoReportsPanic(t *testing.T) {
	rec := &recorder{done: make(chan struct{})}
	withMonitor(t, rec)

	Go("renderer", func() { panic("bad rule") })
	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("panic not reported")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Contains(t, rec.errs[0].Error(), "bad rule")
	assert.Equal(t, "renderer", rec.tags[0]["component"])
}
